package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Raymond9734/customer-registry/internal/config"
	"github.com/Raymond9734/customer-registry/internal/db"
	"github.com/Raymond9734/customer-registry/internal/handler"
	"github.com/Raymond9734/customer-registry/internal/queue"
	"github.com/Raymond9734/customer-registry/internal/repository"
	"github.com/Raymond9734/customer-registry/internal/service"
	"github.com/Raymond9734/customer-registry/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	logger.Info("starting customer registry API server",
		slog.String("storage", cfg.Database.Driver),
	)

	shutdownTracing, err := telemetry.InitTracing(context.Background(), telemetry.TracingConfig{
		Enabled:      cfg.Telemetry.Enabled,
		ServiceName:  cfg.Telemetry.ServiceName,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		Insecure:     cfg.Telemetry.Insecure,
		SampleRatio:  cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		logger.Error("failed to initialise tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	// Storage
	var (
		customerRepo repository.CustomerRepository
		dbHealth     handler.HealthChecker
	)

	switch cfg.Database.Driver {
	case config.StorageDriverMemory:
		customerRepo = repository.NewInMemoryCustomerRepository()
		logger.Warn("using in-memory storage; records are lost on restart")

	default:
		database, err := db.New(db.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer database.Close()

		logger.Info("connected to database")

		migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = database.Migrate(migrateCtx)
		cancel()
		if err != nil {
			logger.Error("failed to migrate database", slog.String("error", err.Error()))
			os.Exit(1)
		}

		if err := telemetry.RegisterDBPoolMetrics(database.DB, prometheus.DefaultRegisterer); err != nil {
			logger.Warn("failed to register db pool metrics", slog.String("error", err.Error()))
		}

		customerRepo = repository.NewCustomerRepository(database.DB, metrics)
		dbHealth = database
	}

	// Redis backs the import queue and the optional lookup cache
	var (
		importSvc   service.ImportService
		redisHealth handler.HealthChecker
	)

	redisClient, err := db.NewRedis(cfg.Queue.RedisURL)
	if err != nil {
		logger.Warn("Redis unavailable; import and caching disabled", slog.String("error", err.Error()))
	} else {
		queueClient := queue.NewRedisClient(redisClient, cfg.Queue.QueueName, logger)
		defer queueClient.Close()

		importSvc = service.NewImportService(queueClient, logger)
		redisHealth = queueClient

		if cfg.Cache.Enabled {
			customerRepo = repository.NewCachedCustomerRepository(customerRepo, redisClient, cfg.Cache.TTL, metrics, logger)
			logger.Info("customer lookup cache enabled", slog.Duration("ttl", cfg.Cache.TTL))
		}
	}

	// Initialize services
	customerSvc := service.NewCustomerService(customerRepo, logger)
	registrationSvc := service.NewRegistrationService(customerRepo, logger)

	router := handler.NewRouter(handler.RouterConfig{
		CustomerService:     customerSvc,
		RegistrationService: registrationSvc,
		ImportService:       importSvc,
		DB:                  dbHealth,
		Redis:               redisHealth,
		Metrics:             metrics,
		Gatherer:            prometheus.DefaultGatherer,
		Logger:              logger,
	})

	addr := fmt.Sprintf(":%d", cfg.API.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      otelhttp.NewHandler(router, "customer-registry-api"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("API server listening", slog.String("addr", addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}

	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown failed", slog.String("error", err.Error()))
		}
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("tracing shutdown failed", slog.String("error", err.Error()))
		}

		logger.Info("server stopped gracefully")
	}
}
