package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/sentio-labs/chatlens/internal/api"
	"github.com/sentio-labs/chatlens/internal/bus"
	"github.com/sentio-labs/chatlens/internal/config"
	"github.com/sentio-labs/chatlens/internal/processor"
	"github.com/sentio-labs/chatlens/internal/registry"
	"github.com/sentio-labs/chatlens/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("chatlens starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	if cfg.DatabaseURL == "" {
		slog.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Init(ctx); err != nil {
		slog.Error("failed to initialise schema", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected")

	// NATS
	busClient, err := bus.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer busClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	// Analysis pipeline
	reg := registry.New()
	proc := processor.New(db, busClient, reg, slog.Default())

	// Subscribe to export events
	if err := busClient.Subscribe(bus.SubjectExportStored, proc.HandleExportStored); err != nil {
		slog.Error("failed to subscribe to export events", "error", err)
		os.Exit(1)
	}

	// HTTP API
	if cfg.APIToken == "" {
		slog.Warn("CHATLENS_API_TOKEN not set — API runs unauthenticated")
	}
	srv := api.NewServer(cfg.Port, cfg.APIToken, db, proc, reg)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("chatlens ready", "port", cfg.Port)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
	slog.Info("chatlens stopped")
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
