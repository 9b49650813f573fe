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
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/apostai/engine/internal/api"
	"github.com/apostai/engine/internal/api/handlers"
	"github.com/apostai/engine/internal/api/middleware"
	"github.com/apostai/engine/internal/models"
	"github.com/apostai/engine/internal/providers"
	"github.com/apostai/engine/internal/services"
	"github.com/apostai/engine/internal/websocket"
	"github.com/apostai/engine/pkg/config"
	"github.com/apostai/engine/pkg/database"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Setup logging
	if cfg.IsDevelopment() {
		logrus.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logrus.StandardLogger()

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(&models.User{}, &models.AnalysisRecord{}); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	// Connect to Redis
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logrus.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logrus.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize services
	cacheService := services.NewCacheService(redisClient)
	breakers := services.NewCircuitBreakerService(cfg.CircuitBreakerThreshold, 30*time.Second, logger)
	usageService := services.NewUsageService(db.DB, logger)

	provider := providers.NewFootballDataClient(
		cfg.FootballAPIBaseURL,
		cfg.FootballAPIKey,
		logger,
		providers.WithCache(cacheService),
		providers.WithBreaker(breakers),
		providers.WithTimeout(cfg.ExternalAPITimeout),
		providers.WithRateLimit(cfg.FootballRateLimit),
	)

	hub := websocket.NewAnalysisHub(logger)
	go hub.Run()

	// Background fixture refresher
	var refresher *services.RefreshService
	if cfg.EnableFixtureRefresh {
		refresher = services.NewRefreshService(provider, cacheService, hub, cfg.TrackedTeamIDs, cfg.FixtureRefreshSchedule, logger)
		if err := refresher.Start(); err != nil {
			logrus.Errorf("Failed to start fixture refresher: %v", err)
		} else {
			defer refresher.Stop()
		}
	}

	metrics := middleware.NewMetrics()

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CorsOrigins))
	router.Use(metrics.Middleware())

	// Operational endpoints at root level
	healthHandler := handlers.NewHealthHandler(db, redisClient, breakers, refresher, hub)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/health/status", healthHandler.GetStatus)
	router.GET("/metrics", metrics.Handler())
	router.GET("/ws", hub.HandleWebSocket)

	// API routes under /api/v1
	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, cfg, api.Deps{
		DB:       db,
		Provider: provider,
		Usage:    usageService,
		Hub:      hub,
		Metrics:  metrics,
		Logger:   logger,
	})

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}
