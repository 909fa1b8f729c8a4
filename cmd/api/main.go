package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/lexicon-edu/lms-api/api/swagger"
	"github.com/lexicon-edu/lms-api/internal/handler"
	"github.com/lexicon-edu/lms-api/internal/middleware"
	"github.com/lexicon-edu/lms-api/internal/repository"
	"github.com/lexicon-edu/lms-api/internal/service"
	"github.com/lexicon-edu/lms-api/pkg/cache"
	"github.com/lexicon-edu/lms-api/pkg/config"
	"github.com/lexicon-edu/lms-api/pkg/crypto"
	"github.com/lexicon-edu/lms-api/pkg/database"
	"github.com/lexicon-edu/lms-api/pkg/logger"
	corsmiddleware "github.com/lexicon-edu/lms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/lexicon-edu/lms-api/pkg/middleware/requestid"
	"github.com/lexicon-edu/lms-api/pkg/storage"
)

// @title Lexicon LMS API
// @version 1.0.0
// @description Document lifecycle and teacher notification service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	fileStore, err := storage.NewFileStore(cfg.Uploads.StorageDir, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init file storage", "error", err)
	}

	encryptor, err := crypto.NewEncryptor(cfg.Crypto.Secret)
	if err != nil {
		logr.Sugar().Fatalw("failed to init contact encryptor", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	docRepo := repository.NewDocumentRepository(db)
	lookupRepo := repository.NewLookupRepository(db)
	blobRepo := repository.NewBlobRepository(redisClient)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	notificationSvc := service.NewNotificationService(blobRepo, encryptor, validate, logr, service.NotificationServiceConfig{
		NotificationsKey:   cfg.Notifications.NotificationsKey,
		ContactMessagesKey: cfg.Notifications.ContactMessagesKey,
	})
	documentSvc := service.NewDocumentService(docRepo, fileStore, notificationSvc, lookupRepo, validate, logr, service.DocumentServiceConfig{
		MaxFileSize: cfg.Uploads.MaxFileSizeBytes,
	})
	exportSvc := service.NewExportService(docRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc, exportSvc, metricsSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	contactHandler := handler.NewContactHandler(notificationSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/contact", contactHandler.Submit)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.POST("/documents", documentHandler.Upload)
		authed.GET("/documents", documentHandler.List)
		authed.GET("/documents/:id", documentHandler.Get)
		authed.GET("/documents/:id/download", documentHandler.Download)
		authed.DELETE("/documents/:id", documentHandler.Delete)
		authed.PUT("/documents/:id/status", documentHandler.SetStatus)
		authed.GET("/courses/:id/documents/export", documentHandler.Export)

		authed.GET("/notifications", notificationHandler.List)
		authed.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		authed.PUT("/notifications/:id/unread", notificationHandler.MarkUnread)
		authed.DELETE("/notifications/:id", notificationHandler.Delete)

		authed.GET("/contact", contactHandler.List)
		authed.GET("/contact/:id", contactHandler.Decrypt)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
