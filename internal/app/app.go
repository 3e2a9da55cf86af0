package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"campus_backend/internal/auth"
	"campus_backend/internal/config"
	"campus_backend/internal/database"
	"campus_backend/internal/email"
	"campus_backend/internal/handlers"
	"campus_backend/internal/imageprocessor"
	"campus_backend/internal/logger"
	"campus_backend/internal/middleware"
	"campus_backend/internal/ratelimit"
	"campus_backend/internal/repositories"
	"campus_backend/internal/routes"
	"campus_backend/internal/services"
	"campus_backend/internal/storage"
	"campus_backend/internal/validator"
	"campus_backend/pkg/apperrors"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	apperrors.SetDebug(cfg.IsDevelopment())
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}
	logger.Info("Database connected")

	ginRouter, cleanup, err := SetupRouter(cfg, gormDB)
	if err != nil {
		logger.Fatal("Failed to set up router", "error", err)
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

// SetupRouter собирает зависимости и маршруты. cleanup освобождает внешние подключения.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, func(), error) {
	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TTL)*time.Minute)
	if err != nil {
		return nil, nil, fmt.Errorf("init token manager: %w", err)
	}

	storageInstance, err := storage.NewStorage(storage.ConfigFromApp(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	logger.Info("Storage initialized", "type", storageInstance.Type())

	emailProvider, err := initializeEmail(cfg)
	if err != nil {
		return nil, nil, err
	}

	var limiter middleware.Limiter
	cleanup := func() {}
	if cfg.Redis.Addr != "" {
		redisLimiter, err := ratelimit.NewRedisFixedWindowLimiter(
			cfg.Redis.Addr,
			cfg.Redis.Password,
			cfg.Redis.Prefix,
			cfg.RateLimit.Limit,
			time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("init rate limiter: %w", err)
		}
		limiter = redisLimiter
		cleanup = func() {
			if err := redisLimiter.Close(); err != nil {
				logger.Warn("Failed to close rate limiter", "error", err)
			}
		}
		logger.Info("Rate limiter enabled", "limit", cfg.RateLimit.Limit, "window_seconds", cfg.RateLimit.WindowSeconds)
	} else {
		logger.Warn("REDIS_ADDR is not set. Rate limiting is disabled.")
	}

	serviceContainer := initializeServices(cfg, tokens, storageInstance, emailProvider)

	if err := seedFirstAdmin(gormDB, cfg, serviceContainer.AuthService); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("seed first admin: %w", err)
	}

	appHandlers := initializeHandlers(serviceContainer)

	ginRouter := initializeGinRouter(cfg, gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers, routes.Guards{Tokens: tokens, Limiter: limiter})

	return ginRouter, cleanup, nil
}

func initializeEmail(cfg *config.Config) (email.Provider, error) {
	templates := email.NewTemplateManager()
	if !cfg.Email.Enabled {
		logger.Warn("Email is disabled. Notifications are only logged.")
		return email.NewNoopProvider(templates), nil
	}

	provider, err := email.NewGomailProvider(email.SMTPConfigFromApp(cfg), templates)
	if err != nil {
		return nil, fmt.Errorf("init email provider: %w", err)
	}
	logger.Info("Email provider initialized", "host", cfg.Email.SMTPHost)
	return provider, nil
}

func initializeServices(cfg *config.Config, tokens *auth.TokenManager, storageInstance storage.Storage, emailProvider email.Provider) *services.ServiceContainer {
	// --- Инициализация репозиториев ---
	userRepo := repositories.NewUserRepository()
	likeRepo := repositories.NewLikeRepository()
	jobRepo := repositories.NewJobRepository()
	fileRepo := repositories.NewFileRepository()

	// --- Инициализация сервисов ---
	processor := imageprocessor.NewProcessor(cfg.Upload.ImageQuality, cfg.Upload.MaxImageSide)
	uploadConfig := services.UploadConfig{
		MaxSize:      cfg.Upload.MaxSize,
		AllowedTypes: cfg.Upload.AllowedTypes,
	}

	notificationService := services.NewNotificationService(emailProvider)

	return &services.ServiceContainer{
		AuthService:         services.NewAuthService(userRepo, tokens),
		UserService:         services.NewUserService(userRepo),
		LikeService:         services.NewLikeService(likeRepo),
		JobService:          services.NewJobService(jobRepo, fileRepo, userRepo, notificationService),
		FileService:         services.NewFileService(fileRepo, jobRepo, storageInstance, processor, uploadConfig),
		NotificationService: notificationService,
		EmailProvider:       emailProvider,
		Storage:             storageInstance,
	}
}

func initializeHandlers(services *services.ServiceContainer) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		AuthHandler:   handlers.NewAuthHandler(baseHandler, services.AuthService),
		UserHandler:   handlers.NewUserHandler(baseHandler, services.UserService),
		LikeHandler:   handlers.NewLikeHandler(baseHandler, services.LikeService),
		JobHandler:    handlers.NewJobHandler(baseHandler, services.JobService),
		FileHandler:   handlers.NewFileHandler(baseHandler, services.FileService),
		HealthHandler: handlers.NewHealthHandler(baseHandler),
	}
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}

func seedFirstAdmin(db *gorm.DB, cfg *config.Config, authService services.AuthService) error {
	if cfg.FirstAdmin.Email == "" || cfg.FirstAdmin.Password == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return authService.SeedFirstAdmin(ctx, db, cfg.FirstAdmin.Email, cfg.FirstAdmin.Username, cfg.FirstAdmin.Password)
}
