package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"garith/backend/internal/auth"
	jwtpkg "garith/backend/internal/auth/jwt"
	"garith/backend/internal/config"
	"garith/backend/internal/email"
	"garith/backend/internal/health"
	"garith/backend/internal/logger"
	"garith/backend/internal/monitoring"
	"garith/backend/internal/pool"
	"garith/backend/internal/service"
	"garith/backend/internal/storage"
	"garith/backend/internal/storage/memory"
	"garith/backend/internal/storage/postgres"
	redisstore "garith/backend/internal/storage/redis"
	httptransport "garith/backend/internal/transport/http"
	"garith/backend/internal/websocket"
)

// main 启动协作匹配后端的 HTTP API 服务。
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Development)
	defer log.Sync()

	log.Info("starting garith backend",
		zap.String("log_level", cfg.Log.Level),
		zap.Bool("development", cfg.Log.Development),
		zap.Bool("dev_mode", cfg.Auth.DevMode),
	)

	// 存储层：配置了数据库就走 gorm，否则内存存储（开发环境）
	var store storage.Store
	if cfg.Database.Type != "" && cfg.Database.DSN != "" {
		store, err = initializeDatabaseStorage(cfg, log)
		if err != nil {
			panic(fmt.Sprintf("failed to initialize database storage: %v", err))
		}
		log.Info("using database storage", zap.String("type", cfg.Database.Type))
	} else {
		store = memory.NewStore()
		log.Info("using memory storage (development mode)")
	}
	defer store.Close()

	// 验证码存储：Redis 启用时多实例共享，否则进程内存
	// （进程重启会丢弃待兑换验证码，用户重新发送即可）
	var codes auth.CodeStore
	var redisCodes *redisstore.CodeStore
	if cfg.Redis.Enabled {
		redisCodes, err = redisstore.NewCodeStore(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			panic(fmt.Sprintf("failed to connect to redis: %v", err))
		}
		defer redisCodes.Close()
		codes = redisCodes
		log.Info("using redis code store", zap.String("address", cfg.Redis.Address))
	} else {
		codes = auth.NewMemoryCodeStore()
		log.Info("using in-memory code store")
	}

	// 邮件通道：SMTP 未配置时验证码只写日志
	var sender email.Sender
	if cfg.SMTP.Host != "" {
		sender = email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		log.Info("using SMTP sender", zap.String("host", cfg.SMTP.Host))
	} else {
		sender = email.NewLogSender(log)
		log.Info("SMTP not configured, verification codes are logged")
	}

	// 监控与健康检查
	metrics := monitoring.NewMetrics()
	var healthChecker *health.HealthChecker
	if redisCodes != nil {
		healthChecker = health.NewHealthChecker(store, redisCodes.Client(), log)
	} else {
		healthChecker = health.NewHealthChecker(store, nil, log)
	}

	// 协程池承载异步邮件投递与通知推送
	workers := pool.NewWorkerPool(4, 256, log)

	jwtManager := jwtpkg.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)
	log.Info("JWT configuration",
		zap.String("issuer", cfg.JWT.Issuer),
		zap.Duration("expiry", cfg.JWT.Expiry),
	)

	// 服务层
	authService := auth.NewService(codes, store, sender, jwtManager, cfg.Auth.DevMode, log)
	authService.SetWorkerPool(workers)
	authService.SetMetrics(metrics)

	notificationService := service.NewNotificationService(store, log)
	notificationService.SetWorkerPool(workers)
	notificationService.SetMetrics(metrics)

	projectService := service.NewProjectService(store, store, log)
	projectService.SetMetrics(metrics)
	intentService := service.NewIntentService(store, store, notificationService, log)
	intentService.SetMetrics(metrics)
	progressService := service.NewProgressService(store, store, log)
	progressService.SetMetrics(metrics)
	userService := service.NewUserService(store, log)

	// WebSocket 通知推送
	wsHub := websocket.NewHub(cfg.CORS.AllowedOrigins, jwtManager, log)
	wsHub.SetMetrics(metrics)
	notificationService.SetPusher(wsHub)

	// HTTP 服务器
	httpAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	router := httptransport.NewRouter(httptransport.RouterDependencies{
		Config:              cfg,
		AuthService:         authService,
		ProjectService:      projectService,
		IntentService:       intentService,
		ProgressService:     progressService,
		NotificationService: notificationService,
		UserService:         userService,
		JWTManager:          jwtManager,
		WebSocketHub:        wsHub,
		HealthChecker:       healthChecker,
		Metrics:             metrics,
		Logger:              log,
	})

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// 信号处理
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	workers.Start(groupCtx)

	// HTTP 服务器 goroutine
	group.Go(func() error {
		log.Info("starting HTTP server", zap.String("address", httpAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", zap.Error(err))
			return err
		}
		return nil
	})

	// WebSocket Hub goroutine
	group.Go(func() error {
		log.Info("starting WebSocket hub")
		wsHub.Run(groupCtx)
		return nil
	})

	// 优雅关闭 goroutine
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error", zap.Error(err))
		}

		workers.Stop()
		log.Info("server stopped")
		return nil
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		log.Fatal("server error", zap.Error(err))
	}

	log.Info("server exited cleanly")
}

// initializeDatabaseStorage 按配置的数据库类型创建 gorm 存储。
func initializeDatabaseStorage(cfg *config.Config, log *zap.Logger) (storage.Store, error) {
	log.Info("initializing database storage", zap.String("database_type", cfg.Database.Type))

	var store *postgres.Store
	var err error
	switch cfg.Database.Type {
	case "postgres":
		store, err = postgres.NewStore(cfg.Database.DSN)
	case "mysql":
		store, err = postgres.NewMySQLStore(cfg.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.Database.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := store.ConfigurePool(cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime); err != nil {
		return nil, err
	}

	return store, nil
}
