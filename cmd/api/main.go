package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/opsboard/backend/config"
	"github.com/opsboard/backend/internal/api"
	"github.com/opsboard/backend/internal/database"
	"github.com/opsboard/backend/internal/middleware"
	"github.com/opsboard/backend/internal/router"
	"github.com/opsboard/backend/internal/server"
	"github.com/opsboard/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is optional; without it rate limiting and insight caching are off.
	var rateLimiter *middleware.RateLimiter
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, continuing without rate limiting and caching", zap.Error(err))
		redisClient = nil
	} else {
		rateLimiter = middleware.NewMutationRateLimiter(redisClient)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret, logger)
	recipeService := service.NewRecipeService(db, nil, logger)
	supplyService := service.NewSupplyService(db, nil, logger)
	fleetService := service.NewFleetService(db, nil, logger)
	vendorService := service.NewVendorService(db)
	activityService := service.NewActivityService(db, logger)
	insightService := service.NewInsightService(db, redisClient,
		service.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL), nil, logger)
	reportService := service.NewReportService(db, nil)

	handlers := router.Handlers{
		Auth:     api.NewAuthHandler(authService),
		Recipe:   api.NewRecipeHandler(recipeService),
		Supply:   api.NewSupplyHandler(supplyService, cfg.ExpiryWindowDays),
		Fleet:    api.NewFleetHandler(fleetService),
		Vendor:   api.NewVendorHandler(vendorService),
		Activity: api.NewActivityHandler(activityService),
		Insight:  api.NewInsightHandler(insightService),
		Report:   api.NewReportHandler(reportService),
	}

	// Object storage is optional; uploads 503 without it.
	if s3Cfg, err := config.NewS3Config(context.Background(), cfg); err != nil {
		logger.Warn("S3 unavailable, uploads disabled", zap.Error(err))
	} else {
		handlers.Upload = api.NewUploadHandler(service.NewStorageService(s3Cfg))
	}

	engine := router.SetupRouter(handlers, router.Options{
		TokenValidator:   authService,
		ActivityRecorder: activityService,
		RateLimiter:      rateLimiter,
		AllowedOrigins:   nil,
	})

	srv := server.New(cfg, engine, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		logger.Info("received signal", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	logger.Info("server stopped")
}
