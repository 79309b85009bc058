package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/loglens-io/loglens/internal/alert"
	corecfg "github.com/loglens-io/loglens/internal/core/config"
	"github.com/loglens-io/loglens/internal/core/storage/postgres"
	"github.com/loglens-io/loglens/internal/ingestion"
	"github.com/loglens-io/loglens/internal/mirror"
	"github.com/loglens-io/loglens/internal/provision"
	"github.com/loglens-io/loglens/internal/render"
	"github.com/loglens-io/loglens/internal/report"
	"github.com/loglens-io/loglens/internal/schema"
	"github.com/loglens-io/loglens/internal/server"
)

func main() {
	configPath := flag.String("config", "loglens.yaml", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config",
		"environment", cfg.Telemetry.Environment,
		"dataset", cfg.Telemetry.Dataset(),
		"mode", cfg.Server.Mode)

	// 2. Initialize Analytic Store (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 3. Initialize Alert Channel
	var notifier alert.Notifier = alert.NopNotifier{}
	if cfg.Alert.WebhookURL != "" {
		notifier = alert.NewWebhookNotifier(cfg.Alert.WebhookURL)
		slog.Info("Alert webhook configured")
	}

	// 4. Initialize Log Mirror
	var sink mirror.Sink
	if cfg.Mirror.RedisAddr != "" {
		redisSink, err := mirror.NewRedisSink(
			cfg.Mirror.RedisAddr,
			cfg.Mirror.RedisPassword,
			cfg.Mirror.RedisDB,
			cfg.Telemetry.Environment,
			cfg.Mirror.StreamMaxLen,
		)
		if err != nil {
			slog.Error("Failed to initialize redis mirror", "error", err)
			os.Exit(1)
		}
		defer redisSink.Close()
		sink = redisSink
		slog.Info("Redis mirror configured", "addr", cfg.Mirror.RedisAddr)
	} else {
		sink = mirror.NewSlogSink(logger)
		slog.Info("No redis mirror configured, mirroring to process log")
	}

	// 5. Initialize Ingestion Pipeline
	validator := schema.NewValidator(schema.Defaults{Region: cfg.Telemetry.DefaultRegion})
	provisioner := provision.NewProvisioner(dbAdapter, provision.NewMemoryCache())

	ingestionSvc := ingestion.NewService(
		validator,
		schema.NewNormalizer(),
		provisioner,
		dbAdapter,
		sink,
		notifier,
		cfg.Telemetry.Dataset(),
		cfg.Server.MaxBodySizeMB,
	)

	// 6. Initialize Report Engine
	reportSvc := report.NewService(
		dbAdapter,
		render.NewHTMLRenderer(),
		cfg.Telemetry.Dataset(),
		cfg.Server.PublicURL,
	)

	// 7. Initialize Server
	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter.DB(), cfg.Server.Mode, notifier)
	ingestionSvc.RegisterRoutes(srv.Engine)
	reportSvc.RegisterRoutes(srv.Engine)

	// 8. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
