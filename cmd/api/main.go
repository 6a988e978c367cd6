package main

// @title SafeRoute Service API
// @version 1.0.0
// @description Crime-risk-aware walking route service. Computes pedestrian routes that trade a small detour for lower exposure to reported crime.
// @description
// @description Main capabilities:
// @description - Crime-aware route computation with distance/safety weight control
// @description - Shortest-route baseline and route comparison metrics
// @description - Crime density heatmap sampling for map overlays

// @contact.name API Support
// @contact.email support@saferoute-service.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/saferoute-service/docs"
	"github.com/saferoute-service/internal/config"
	httpDelivery "github.com/saferoute-service/internal/delivery/http"
	"github.com/saferoute-service/internal/delivery/http/handler"
	"github.com/saferoute-service/internal/infrastructure/overpass"
	"github.com/saferoute-service/internal/pkg/logger"
	"github.com/saferoute-service/internal/repository/cache"
	"github.com/saferoute-service/internal/repository/postgres"
	"github.com/saferoute-service/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting SafeRoute Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("risk_strategy", cfg.Routing.Strategy),
	)

	// 3. Connect to PostgreSQL (crime incident data)
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}

	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize repositories and providers
	incidentRepo := postgres.NewIncidentRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)
	graphProvider := overpass.NewClient(&cfg.Overpass, log)

	log.Info("Repositories initialized")

	// 7. Initialize use cases
	routeUC := usecase.NewRouteUseCase(
		graphProvider,
		incidentRepo,
		cacheRepo,
		cfg,
		log,
	)

	heatmapUC := usecase.NewHeatmapUseCase(
		incidentRepo,
		cfg,
		log,
	)

	log.Info("Use cases initialized")

	// 8. Initialize HTTP handlers
	routeHandler := handler.NewRouteHandler(routeUC, log)
	heatmapHandler := handler.NewHeatmapHandler(heatmapUC, log)

	// 9. Initialize HTTP server
	server := httpDelivery.NewServer(
		cfg,
		log,
		routeHandler,
		heatmapHandler,
	)

	log.Info("HTTP server initialized")

	// 10. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
