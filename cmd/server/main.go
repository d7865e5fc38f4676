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
	"go.uber.org/zap"

	"github.com/zemo-rentals/service-reservation/internal/application"
	"github.com/zemo-rentals/service-reservation/internal/auth"
	"github.com/zemo-rentals/service-reservation/internal/cache"
	"github.com/zemo-rentals/service-reservation/internal/config"
	"github.com/zemo-rentals/service-reservation/internal/database"
	reservationEvents "github.com/zemo-rentals/service-reservation/internal/events"
	"github.com/zemo-rentals/service-reservation/internal/handler"
	"github.com/zemo-rentals/service-reservation/internal/kafka"
	"github.com/zemo-rentals/service-reservation/internal/logger"
	"github.com/zemo-rentals/service-reservation/internal/metrics"
	"github.com/zemo-rentals/service-reservation/internal/middleware"
	"github.com/zemo-rentals/service-reservation/internal/repository"
	"github.com/zemo-rentals/service-reservation/internal/worker"
)

const serviceName = "service-reservation"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	// Connect to database
	db, err := database.Connect(cfg.DB, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.VehicleModel{},
			&repository.BookingModel{},
			&repository.ExtensionModel{},
			&repository.InspectionModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DB.MigrateURL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Register Prometheus collectors
	if cfg.MetricsEnabled {
		metrics.Register()
	}

	// Initialize the availability cache
	redisClient := cache.NewRedisClient(cfg.Redis)
	defer func() { _ = redisClient.Close() }()
	availabilityCache := cache.NewAvailabilityCache(redisClient, cfg.AvailabilityCacheTTL, log)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	vehicleRepo := repository.NewGormVehicleRepository(db)
	extensionRepo := repository.NewGormExtensionRepository(db)
	inspectionRepo := repository.NewGormInspectionRepository(db)

	// Initialize application services
	reservationService := application.NewReservationService(
		bookingRepo,
		vehicleRepo,
		availabilityCache,
		kafkaProducer,
		log,
	)
	extensionService := application.NewExtensionService(
		bookingRepo,
		extensionRepo,
		availabilityCache,
		kafkaProducer,
		log,
	)
	inspectionService := application.NewInspectionService(
		bookingRepo,
		inspectionRepo,
		kafkaProducer,
		log,
	)

	// Initialize and start payment event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	paymentConsumer := reservationEvents.NewPaymentEventConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.GroupID,
		reservationService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Start the expiry sweeper
	sweeper, err := worker.NewSweeper(
		cfg.SweepSchedule,
		reservationService,
		extensionService,
		cfg.PendingTTL,
		cfg.ExtensionTTL,
		log,
	)
	if err != nil {
		log.Fatal("failed to create expiry sweeper", zap.Error(err))
	}
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(reservationService)
	vehicleHandler := handler.NewVehicleHandler(reservationService)
	extensionHandler := handler.NewExtensionHandler(extensionService)
	inspectionHandler := handler.NewInspectionHandler(inspectionService)
	adminHandler := handler.NewAdminHandler(reservationService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	if cfg.MetricsEnabled {
		router.Use(metrics.Middleware())
		router.GET("/metrics", metrics.Handler())
	}

	// Register health check routes
	healthHandler := handler.NewHealthHandler(db, serviceName)
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	vehicleHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	extensionHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	inspectionHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName + "...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}
