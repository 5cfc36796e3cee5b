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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Raymond9734/customer-registry/internal/config"
	"github.com/Raymond9734/customer-registry/internal/db"
	"github.com/Raymond9734/customer-registry/internal/queue"
	"github.com/Raymond9734/customer-registry/internal/repository"
	"github.com/Raymond9734/customer-registry/internal/service"
	"github.com/Raymond9734/customer-registry/internal/telemetry"
	"github.com/Raymond9734/customer-registry/internal/worker"
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

	logger.Info("starting customer import worker")

	if cfg.Database.Driver != config.StorageDriverPostgres {
		logger.Error("the import worker requires postgres storage",
			slog.String("storage", cfg.Database.Driver),
		)
		os.Exit(1)
	}

	shutdownTracing, err := telemetry.InitTracing(context.Background(), telemetry.TracingConfig{
		Enabled:      cfg.Telemetry.Enabled,
		ServiceName:  cfg.Telemetry.ServiceName + "-worker",
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		Insecure:     cfg.Telemetry.Insecure,
		SampleRatio:  cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		logger.Error("failed to initialise tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	// Connect to database
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

	if err := telemetry.RegisterDBPoolMetrics(database.DB, prometheus.DefaultRegisterer); err != nil {
		logger.Warn("failed to register db pool metrics", slog.String("error", err.Error()))
	}

	// Connect to Redis queue
	redisClient, err := db.NewRedis(cfg.Queue.RedisURL)
	if err != nil {
		logger.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	queueClient := queue.NewRedisClient(redisClient, cfg.Queue.QueueName, logger)
	defer queueClient.Close()

	logger.Info("connected to Redis queue")

	var customerRepo repository.CustomerRepository = repository.NewCustomerRepository(database.DB, metrics)
	if cfg.Cache.Enabled {
		customerRepo = repository.NewCachedCustomerRepository(customerRepo, redisClient, cfg.Cache.TTL, metrics, logger)
	}

	customerSvc := service.NewCustomerService(customerRepo, logger)
	processor := worker.NewImportProcessor(
		customerSvc,
		queueClient,
		metrics,
		cfg.Worker.MaxRetryCount,
		logger,
	)

	metricsAddr := fmt.Sprintf(":%d", cfg.Worker.MetricsPort)
	metricsServer := &http.Server{
		Addr:              metricsAddr,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting import consumer",
			slog.Int("concurrency", cfg.Worker.Concurrency),
			slog.Int("max_retry_count", cfg.Worker.MaxRetryCount),
		)
		// Consume returns once in-flight jobs are done
		err := queueClient.Consume(gctx, processor.Process, cfg.Worker.Concurrency)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		logger.Info("worker metrics listening", slog.String("addr", metricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down worker")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown failed", slog.String("error", err.Error()))
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("tracing shutdown failed", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("worker error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("worker stopped gracefully")
}
