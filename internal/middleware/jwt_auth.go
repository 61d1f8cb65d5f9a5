package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"garith/backend/internal/auth/jwt"
)

// JWTAuth JWT 认证中间件。
//
// 缺少令牌返回 401，令牌无效或过期返回 403，两者对客户端
// 是不同的信号：前者提示登录，后者提示重新登录。
type JWTAuth struct {
	tokens *jwt.Manager
	log    *zap.Logger
}

// NewJWTAuth 创建 JWT 认证中间件。
func NewJWTAuth(tokens *jwt.Manager, log *zap.Logger) *JWTAuth {
	if log == nil {
		log = zap.NewNop()
	}
	return &JWTAuth{tokens: tokens, log: log}
}

// RequireAuth 要求请求携带有效的 Bearer 令牌。
func (ja *JWTAuth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Access token required",
			})
			c.Abort()
			return
		}

		claims, err := ja.tokens.Validate(token)
		if err != nil {
			ja.log.Warn("invalid token",
				zap.String("ip", c.ClientIP()),
				zap.Error(err),
			)
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("nickname", claims.Nickname)

		c.Next()
	}
}

// extractBearer 从 Authorization 头提取 Bearer 令牌。
func extractBearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// UserID 从上下文取出已认证的用户 ID。
func UserID(c *gin.Context) string {
	return c.GetString("userID")
}
