package httptransport

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"garith/backend/internal/auth"
	"garith/backend/internal/domain"
)

// AuthHandler 处理认证相关的 HTTP 请求
type AuthHandler struct {
	authService *auth.Service
	log         *zap.Logger
}

// NewAuthHandler 创建认证处理器实例
func NewAuthHandler(authService *auth.Service, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{authService: authService, log: log}
}

type sendCodeRequest struct {
	Email string `json:"email" binding:"required"`
}

type loginRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Nickname  string   `json:"nickname"`
	Skills    []string `json:"skills"`
	CreatedAt string   `json:"created_at"`
}

func toUserResponse(user *domain.User) userResponse {
	skills := user.Skills
	if skills == nil {
		skills = []string{}
	}
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Nickname:  user.Nickname,
		Skills:    skills,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// SendCode 处理验证码发送请求
func (h *AuthHandler) SendCode(c *gin.Context) {
	var req sendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	err := h.authService.SendCode(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidEmail), errors.Is(err, domain.ErrEmailTooLong):
			BadRequest(c, MsgInvalidEmail)
		case errors.Is(err, domain.ErrCodeRateLimited):
			BadRequest(c, MsgCodeRateLimited)
		default:
			h.log.Error("failed to send verification code", zap.Error(err))
			InternalError(c, MsgCodeSendFailed)
		}
		return
	}

	Success(c, gin.H{"message": "验证码已发送"})
}

// Login 兑换验证码并返回会话令牌
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, MsgInvalidRequest)
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidEmail), errors.Is(err, domain.ErrEmailTooLong):
			BadRequest(c, MsgInvalidEmail)
		case errors.Is(err, domain.ErrInvalidCode):
			BadRequest(c, MsgInvalidRequest)
		// 不存在、过期、不匹配对客户端统一折叠成一种失败，
		// 避免泄露验证码的存在状态
		case errors.Is(err, domain.ErrCodeNotFound),
			errors.Is(err, domain.ErrCodeExpired),
			errors.Is(err, domain.ErrCodeMismatch):
			Unauthorized(c, MsgCodeInvalid)
		default:
			h.log.Error("failed to login", zap.Error(err))
			InternalError(c, MsgLoginFailed)
		}
		return
	}

	Success(c, loginResponse{
		Token: token,
		User:  toUserResponse(user),
	})
}
