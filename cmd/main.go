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

	_ "financing-engine/docs"
	"financing-engine/internal/api"
	"financing-engine/internal/batch"
	"financing-engine/internal/config"
	"financing-engine/internal/domain/financing"
	"financing-engine/internal/event"
	"financing-engine/internal/infrastructure/cache"
	"financing-engine/internal/infrastructure/logging"
	"financing-engine/internal/infrastructure/store"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// @title Financing Engine API
// @version 1.0
// @description This is the API documentation for the Financing Engine service.
// @termsOfService http://financing-engine.com/terms/

// @contact.name API Support
// @contact.url http://financing-engine.com/support
// @contact.email support@financing-engine.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()

	snapshotStore, closeStore := initializeStore(cfg, logger)
	defer closeStore()

	simulationCache, closeCache := initializeCache(cfg, logger)
	defer closeCache()

	publisher, closePublisher := initializePublisher(cfg, logger)
	defer closePublisher()

	ledger := financing.NewLedger(snapshotStore, simulationCache, publisher, logger)
	if err := ledger.Load(context.Background()); err != nil {
		logger.Warn("Could not restore loan snapshot, starting with an empty ledger", "error", err)
	}

	overdueJob := batch.NewOverdueScanJob(ledger, logger)
	cronScheduler := startBatchJobs(cfg, logger, overdueJob)
	router := api.SetupRouter(ledger, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	slog.SetDefault(logger)
	logger.Info("Application starting...", "config_source", viper.ConfigFileUsed())

	return cfg, logger
}

func initializeStore(cfg *config.Config, logger *slog.Logger) (financing.SnapshotStore, func()) {
	switch cfg.Storage.Driver {
	case "postgres":
		logger.Info("Initializing PostgreSQL snapshot store...")
		dbPool, err := store.NewConnectionPool(context.Background(), cfg.Storage, logger)
		if err != nil {
			logger.Error("Failed to initialize database connection pool", "error", err)
			os.Exit(1)
		}
		pg := store.NewPostgresStore(dbPool, logger)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			logger.Error("Failed to ensure snapshot schema", "error", err)
			os.Exit(1)
		}
		return pg, func() {
			logger.Info("Closing database connection pool...")
			pg.Close()
		}
	case "sqlite":
		logger.Info("Initializing SQLite snapshot store...", "path", cfg.Storage.Path)
		sq, err := store.NewSQLiteStore(cfg.Storage.Path, logger)
		if err != nil {
			logger.Error("Failed to initialize SQLite store", "error", err)
			os.Exit(1)
		}
		return sq, func() {
			logger.Info("Closing SQLite store...")
			if err := sq.Close(); err != nil {
				logger.Warn("Failed to close SQLite store", "error", err)
			}
		}
	default:
		logger.Info("Using in-memory snapshot store; loans will not survive a restart.")
		return store.NewMemoryStore(), func() {}
	}
}

func initializeCache(cfg *config.Config, logger *slog.Logger) (financing.SimulationCache, func()) {
	if !cfg.Redis.Enabled {
		return cache.NewNoopCache(), func() {}
	}

	logger.Info("Initializing Redis simulation cache...", "addr", cfg.Redis.Addr)
	rc := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.TTL, logger)
	return rc, func() {
		logger.Info("Closing Redis client...")
		if err := rc.Close(); err != nil {
			logger.Warn("Failed to close Redis client", "error", err)
		}
	}
}

func initializePublisher(cfg *config.Config, logger *slog.Logger) (event.EventPublisher, func()) {
	if !cfg.RabbitMQ.Enabled {
		return event.NoopPublisher{}, func() {}
	}

	logger.Info("Connecting to RabbitMQ...", "exchange", cfg.RabbitMQ.ExchangeName)
	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Error("Failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}

	publisher, err := event.NewRabbitMQEventPublisher(conn, cfg.RabbitMQ.ExchangeName, logger)
	if err != nil {
		logger.Error("Failed to initialize RabbitMQ publisher", "error", err)
		os.Exit(1)
	}

	return publisher, func() {
		logger.Info("Closing RabbitMQ connection...")
		if err := conn.Close(); err != nil {
			logger.Warn("Failed to close RabbitMQ connection", "error", err)
		}
	}
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		triggerReason = "server exited"
		logger.Info("Server goroutine finished before signal.", "error", err)
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server graceful shutdown failed", "error", err)
		} else {
			logger.Info("HTTP server shutdown initiated.")
		}
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	logger.Info("Waiting for server goroutine to confirm exit...")
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}

	logger.Info("Application shutdown process complete.")
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, overdueJob *batch.OverdueScanJob) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	scheduleSpec := cfg.Batch.OverdueScanSchedule
	if scheduleSpec == "" {
		scheduleSpec = "0 2 * * *"
		logger.Warn("Batch overdue scan schedule not configured, using default", "schedule", scheduleSpec)
	}
	jobTimeout := cfg.Batch.OverdueScanTimeout
	if jobTimeout <= 0 {
		jobTimeout = 5 * time.Minute
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", "OverdueScan")
		jobLogger.Info("Cron triggered: Running overdue installment scan.")

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if runErr := overdueJob.Run(ctx); runErr != nil {
			jobLogger.Error("Overdue scan finished with error", slog.Any("error", runErr))
		} else {
			jobLogger.Info("Overdue scan finished successfully.")
		}
	}))

	if err != nil {
		logger.Error("Failed to schedule overdue scan job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled overdue scan job", "schedule", scheduleSpec, "job_id", jobID)
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}
