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
	"go.uber.org/zap"

	"github.com/skylift-transfers/service-shuttle/internal/application"
	"github.com/skylift-transfers/service-shuttle/internal/config"
	"github.com/skylift-transfers/service-shuttle/internal/handler"
	"github.com/skylift-transfers/service-shuttle/internal/platform/auth"
	"github.com/skylift-transfers/service-shuttle/internal/platform/database"
	"github.com/skylift-transfers/service-shuttle/internal/platform/health"
	"github.com/skylift-transfers/service-shuttle/internal/platform/kafka"
	"github.com/skylift-transfers/service-shuttle/internal/platform/logger"
	"github.com/skylift-transfers/service-shuttle/internal/platform/middleware"
	"github.com/skylift-transfers/service-shuttle/internal/pricing"
	"github.com/skylift-transfers/service-shuttle/internal/repository"
	"github.com/skylift-transfers/service-shuttle/internal/routing"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-shuttle")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-shuttle",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.DBName,
		SSLMode:  cfg.DB.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.BookingModel{},
			&repository.DriverModel{},
			&repository.VehicleModel{},
			&repository.EmailTemplateModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		dbURL := dbConfig.DatabaseURL()
		if err := database.RunMigrations(dbURL, "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWT.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize route resolution: provider, coordinate cache, resolver
	provider, err := routing.NewGoogleProvider(cfg.Routing.GoogleMapsAPIKey)
	if err != nil {
		log.Fatal("failed to create maps client", zap.Error(err))
	}

	var coordCache routing.CoordinateCache
	if cfg.Routing.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Routing.RedisAddr})
		coordCache = routing.NewRedisCoordinateCache(redisClient, 24*time.Hour, log)
		log.Info("using redis coordinate cache", zap.String("addr", cfg.Routing.RedisAddr))
	} else {
		coordCache = routing.NewMemoryCoordinateCache(cfg.Routing.CoordCacheSize)
	}

	resolver := routing.NewResolver(provider, coordCache, routing.SystemClock{}, cfg.Routing.RouteCacheTTL, log)
	debouncer := routing.NewDebouncer(cfg.Routing.DebounceWindow)
	defer debouncer.Stop()

	// Initialize pricing client and recalculator
	pricingClient := pricing.NewClient(cfg.PricingBaseURL)
	recalculator := application.NewFareRecalculator(resolver, pricingClient, log)

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	driverRepo := repository.NewGormDriverRepository(db)
	vehicleRepo := repository.NewGormVehicleRepository(db)
	templateRepo := repository.NewGormTemplateRepository(db)

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		driverRepo,
		vehicleRepo,
		recalculator,
		kafkaProducer,
		log,
	)
	quoteService := application.NewQuoteService(recalculator, resolver, debouncer, log)
	fleetService := application.NewFleetService(driverRepo, vehicleRepo, log)
	templateService := application.NewTemplateService(templateRepo, log)

	// Initialize and start dispatch event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.Kafka.GroupPrefix + "shuttle-service"
	dispatchConsumer := application.NewDispatchEventConsumer(
		cfg.Kafka.Brokers,
		groupID,
		bookingService,
		log,
	)
	defer func() { _ = dispatchConsumer.Close() }()

	go func() {
		log.Info("starting dispatch event consumer")
		if err := dispatchConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("dispatch event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	quoteHandler := handler.NewQuoteHandler(quoteService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	adminHandler := handler.NewAdminHandler(bookingService, fleetService, templateService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-shuttle")
	healthHandler.RegisterRoutes(router)

	// Register routes
	quoteHandler.RegisterRoutes(&router.RouterGroup)
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-shuttle...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-shuttle stopped")
}
