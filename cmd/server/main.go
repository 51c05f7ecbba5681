package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ikkim/storerating-backend/config"
	"github.com/ikkim/storerating-backend/internal/app/controller"
	"github.com/ikkim/storerating-backend/internal/app/repository"
	"github.com/ikkim/storerating-backend/internal/app/service"
	"github.com/ikkim/storerating-backend/internal/db"
	apperrors "github.com/ikkim/storerating-backend/internal/errors"
	"github.com/ikkim/storerating-backend/internal/middleware"
	"github.com/ikkim/storerating-backend/internal/router"
	"github.com/ikkim/storerating-backend/internal/scheduler"
	"github.com/ikkim/storerating-backend/internal/storage"
	"github.com/ikkim/storerating-backend/internal/validation"
	ws "github.com/ikkim/storerating-backend/internal/websocket"
	"github.com/ikkim/storerating-backend/pkg/logger"
	"github.com/ikkim/storerating-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	format := "json"
	if cfg.Server.IsDevelopment() {
		logLevel = "debug"
		format = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      format,
		EnableColor: true,
	})

	logger.Info("Starting Store Rating Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	apperrors.ExposeInternalErrors(cfg.Server.IsDevelopment())
	if err := validation.Register(); err != nil {
		logger.Fatal("Failed to register validation rules", err)
	}

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(db.GetDB()); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}
	if err := db.SeedAdmin(db.GetDB(), &cfg.Seed); err != nil {
		logger.Warn("Failed to seed admin account", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Token blacklist is optional; without Redis logout is client-side only.
	var revoker service.TokenRevoker
	var revocationChecker middleware.TokenChecker
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Fatal("Failed to initialize Redis", err)
		}
		defer func() {
			if err := redis.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}()
		blacklist := redis.NewBlacklist(redis.GetClient())
		revoker = blacklist
		revocationChecker = blacklist
	} else {
		logger.Warn("Redis disabled, logged out tokens stay valid until expiry")
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := ws.NewHub()
	go hub.Run(hubCtx)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	storeRepo := repository.NewStoreRepository(db.GetDB())
	ratingRepo := repository.NewRatingRepository(db.GetDB())

	// Initialize services
	authService := service.NewAuthService(userRepo, revoker, cfg.JWT.Secret, cfg.JWT.Expiry)
	adminService := service.NewAdminService(userRepo, storeRepo, ratingRepo)
	storeService := service.NewStoreService(storeRepo)
	ratingService := service.NewRatingService(ratingRepo, storeRepo, hub)
	reportService := service.NewReportService(storeRepo, adminService)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	adminController := controller.NewAdminController(adminService, reportService)
	storeController := controller.NewStoreController(storeService)
	ratingController := controller.NewRatingController(ratingService)
	liveController := controller.NewLiveController(hub, cfg.CORS.AllowedOrigins)
	healthController := controller.NewHealthController(db.GetDB())

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, userRepo, revocationChecker)

	r := router.NewRouter(
		authController,
		adminController,
		storeController,
		ratingController,
		liveController,
		healthController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	var archive *scheduler.ReportArchiveScheduler
	if cfg.Report.ArchiveSchedule != "" && cfg.S3.Bucket != "" {
		s3Storage := storage.NewS3Storage(
			cfg.S3.Region,
			cfg.S3.Bucket,
			cfg.S3.AccessKeyID,
			cfg.S3.SecretAccessKey,
			cfg.S3.BaseURL,
			cfg.Report.ArchiveFolder,
		)
		archive = scheduler.NewReportArchiveScheduler(cfg.Report.ArchiveSchedule, reportService, s3Storage)
		if err := archive.Start(); err != nil {
			logger.Fatal("Failed to start report archive scheduler", err)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	stopHub()
	if archive != nil {
		archive.Stop()
	}

	logger.Info("Server stopped successfully")
}
