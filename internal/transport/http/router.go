package httptransport

import (
	"net/http"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"garith/backend/internal/auth"
	jwtpkg "garith/backend/internal/auth/jwt"
	"garith/backend/internal/config"
	"garith/backend/internal/health"
	"garith/backend/internal/middleware"
	"garith/backend/internal/monitoring"
	"garith/backend/internal/service"
	"garith/backend/internal/websocket"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config              *config.Config
	AuthService         *auth.Service
	ProjectService      *service.ProjectService
	IntentService       *service.IntentService
	ProgressService     *service.ProgressService
	NotificationService *service.NotificationService
	UserService         *service.UserService
	JWTManager          *jwtpkg.Manager
	WebSocketHub        *websocket.Hub
	HealthChecker       *health.HealthChecker
	Metrics             *monitoring.Metrics
	Logger              *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RecoveryHandler(deps.Logger, deps.Metrics))
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.BodySizeLimit(1 * 1024 * 1024))

	if deps.Metrics != nil {
		router.Use(middleware.HTTPMetrics(deps.Metrics))
	}

	// CORS 配置
	corsConfig := gincors.Config{
		AllowOrigins:     deps.Config.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// 允许所有来源时必须关闭凭证支持
	for _, origin := range corsConfig.AllowOrigins {
		if origin == "*" {
			corsConfig.AllowCredentials = false
			break
		}
	}
	router.Use(gincors.New(corsConfig))

	authHandler := NewAuthHandler(deps.AuthService, deps.Logger)
	projectHandler := NewProjectHandler(deps.ProjectService, deps.Logger)
	intentHandler := NewIntentHandler(deps.IntentService, deps.Logger)
	progressHandler := NewProgressHandler(deps.ProgressService, deps.Logger)
	notificationHandler := NewNotificationHandler(deps.NotificationService, deps.Logger)
	meHandler := NewMeHandler(deps.UserService, deps.ProjectService, deps.IntentService, deps.Logger)

	jwtAuth := middleware.NewJWTAuth(deps.JWTManager, deps.Logger)

	// 验证码发送的 IP 级限流，和 CodeStore 的 60 秒重发间隔互补：
	// 前者拦住换地址刷接口，后者拦住同一地址刷重发
	sendCodeLimit := middleware.NewIPRateLimiter(
		rate.Limit(deps.Config.Auth.SendCodeRPS),
		deps.Config.Auth.SendCodeBurst,
	)

	// 健康检查与指标
	if deps.HealthChecker != nil {
		router.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, deps.HealthChecker.CheckHealth())
		})
		router.GET("/live", gin.WrapH(deps.HealthChecker.Handler()))
		router.GET("/ready", gin.WrapH(deps.HealthChecker.Handler()))
	} else {
		router.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.HTTPHandler()))
	}

	// ========== Auth Routes ==========
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/send-code", sendCodeLimit.Middleware(), authHandler.SendCode)
		authRoutes.POST("/login", authHandler.Login)
	}

	// ========== Project Routes ==========
	projectRoutes := router.Group("/projects")
	{
		projectRoutes.GET("", projectHandler.List)
		projectRoutes.GET("/:id", projectHandler.Get)
		projectRoutes.POST("", jwtAuth.RequireAuth(), projectHandler.Create)
		projectRoutes.PATCH("/:id", jwtAuth.RequireAuth(), projectHandler.Update)
		projectRoutes.PATCH("/:id/status", jwtAuth.RequireAuth(), projectHandler.UpdateStatus)
		projectRoutes.DELETE("/:id", jwtAuth.RequireAuth(), projectHandler.Delete)
	}

	// ========== Intent Routes ==========
	intentRoutes := router.Group("/intents")
	intentRoutes.Use(jwtAuth.RequireAuth())
	{
		intentRoutes.POST("/:id", intentHandler.Submit)
		intentRoutes.GET("/:id", intentHandler.ListForProject)
		intentRoutes.PATCH("/:id/intents/:intentId", intentHandler.UpdateStatus)
	}

	// ========== Progress Routes ==========
	progressRoutes := router.Group("/progress")
	{
		progressRoutes.GET("/:id", progressHandler.List)
		progressRoutes.POST("/:id", jwtAuth.RequireAuth(), progressHandler.Add)
	}

	// ========== Notification Routes ==========
	notificationRoutes := router.Group("/notifications")
	notificationRoutes.Use(jwtAuth.RequireAuth())
	{
		notificationRoutes.GET("", notificationHandler.List)
		notificationRoutes.GET("/unread-count", notificationHandler.UnreadCount)
		notificationRoutes.PATCH("/:id/read", notificationHandler.MarkRead)
		notificationRoutes.PATCH("/read-all", notificationHandler.MarkAllRead)
	}

	// ========== Me Routes ==========
	meRoutes := router.Group("/me")
	meRoutes.Use(jwtAuth.RequireAuth())
	{
		meRoutes.GET("/profile", meHandler.GetProfile)
		meRoutes.PATCH("/profile", meHandler.UpdateProfile)
		meRoutes.GET("/projects", meHandler.MyProjects)
		meRoutes.GET("/intents", meHandler.MyIntents)
		meRoutes.GET("/received-intents", meHandler.ReceivedIntents)
	}

	// ========== WebSocket ==========
	if deps.WebSocketHub != nil {
		router.GET("/ws", websocket.HandleWebSocket(deps.WebSocketHub))
	}

	return router
}
