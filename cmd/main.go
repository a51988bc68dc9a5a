package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/tesseract-hub/cloud-translate-service/internal/cache"
	"github.com/tesseract-hub/cloud-translate-service/internal/clients"
	"github.com/tesseract-hub/cloud-translate-service/internal/config"
	"github.com/tesseract-hub/cloud-translate-service/internal/handlers"
	"github.com/tesseract-hub/cloud-translate-service/internal/metrics"
	"github.com/tesseract-hub/cloud-translate-service/internal/middleware"
	"github.com/tesseract-hub/cloud-translate-service/internal/models"
	"github.com/tesseract-hub/cloud-translate-service/internal/repository"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	log := logger.WithField("service", "cloud-translate-service")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Provider credentials are resolved once. Without them the service
	// still starts and reports the provider as unavailable.
	provider, _ := clients.NewProvider(context.Background(), cfg.Provider, log.WithField("component", "provider"))

	translationCache, err := cache.New(cfg.Cache, log.WithField("component", "cache"))
	if err != nil {
		log.WithError(err).Warn("Invalid cache configuration, continuing without cache")
		translationCache = cache.NoopCache{}
	}

	var stats repository.StatsRepository = repository.NoopStatsRepository{}
	var db *gorm.DB
	if cfg.Database.DSN != "" {
		db, err = initDatabase(cfg.Database, cfg.App.Environment)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize stats database, usage stats disabled")
		} else {
			stats = repository.NewStatsRepository(db)
		}
	}

	handler := handlers.NewTranslationHandler(provider, translationCache, stats, log)
	static := handlers.NewStaticHandler(cfg.Server.StaticDir, log)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	go rateLimiter.RunCleanup(cleanupCtx, time.Minute)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	router.Use(metrics.Middleware())

	handlers.RegisterRoutes(router, handler, static, rateLimiter)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.WithField("addr", addr).Info("Starting translation service")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	stopCleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	if err := translationCache.Close(); err != nil {
		log.WithError(err).Warn("Failed to close Redis connection")
	}

	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	log.Info("Server exited")
}

func initDatabase(cfg config.DatabaseConfig, env string) (*gorm.DB, error) {
	logLevel := gormLogger.Silent
	if env != "production" {
		logLevel = gormLogger.Warn
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormLogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := db.AutoMigrate(&models.TranslationStats{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}
