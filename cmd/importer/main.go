package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"wallabag_importer/internal/config"
	"wallabag_importer/internal/domain"
	"wallabag_importer/internal/handler"
	"wallabag_importer/internal/metrics"
	"wallabag_importer/internal/publisher"
	"wallabag_importer/internal/scheduler"
	"wallabag_importer/internal/security"
	"wallabag_importer/internal/service"
	"wallabag_importer/internal/source/wallabag"
	"wallabag_importer/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single import and exit")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	location, err := cfg.Import.Location()
	if err != nil {
		logger.Error("invalid import timezone", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrations(cfg.Database.URL()); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("connected to database")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	opts := []service.Option{service.WithMetrics(collector)}

	if cfg.RabbitMQ.Enabled {
		rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to rabbitmq", "error", err)
			os.Exit(1)
		}
		defer rabbitMQ.Close()
		opts = append(opts, service.WithObserver(rabbitMQ))
	}

	overrides := domain.Overrides{User: cfg.Wallabag.User, Pass: cfg.Wallabag.Pass}
	sanitizer := security.NewTextSanitizer()

	settingsStore := postgres.NewSettingsStore(db, cfg.Import.JobName)
	recordStore := postgres.NewRecordStore(db)
	txManager := postgres.NewTransactionManager(db)
	locker := postgres.NewAdvisoryLocker(db, logger)

	source := wallabag.New(wallabag.Config{
		Timeout:   cfg.Wallabag.Timeout,
		UserAgent: cfg.Wallabag.UserAgent,
	}, logger)

	importService := service.NewImportService(
		source,
		settingsStore,
		recordStore,
		txManager,
		locker,
		service.NewRecordBuilder(sanitizer, location, cfg.Import.FormatTypes),
		overrides,
		logger,
		cfg.Import,
		opts...,
	)
	settingsService := service.NewSettingsService(settingsStore, sanitizer, overrides, cfg.Import.AllowedTypes, logger)

	sched := scheduler.NewScheduler(importService, cfg.Import.Interval, cfg.Import.RunTimeout, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *once {
		if stats := sched.RunOnce(ctx); stats == nil {
			os.Exit(1)
		}
		return
	}

	server := &http.Server{
		Addr: cfg.HTTP.Addr,
		Handler: handler.NewRouter(handler.RouterDeps{
			Admin:      handler.NewAdminHandler(settingsService, importService, cfg.Import.RunTimeout, logger),
			Metrics:    metrics.Handler(registry),
			AdminToken: cfg.HTTP.AdminToken,
			Logger:     logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("admin server listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("admin server error", "error", err)
			cancel()
		}
	}()

	logger.Info("starting wallabag importer",
		"job", cfg.Import.JobName,
		"interval", cfg.Import.Interval,
		"rabbitmq", cfg.RabbitMQ.Enabled,
	)

	err = sched.Start(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown", "error", err)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
