package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/datatidy/internal/audit"
	"github.com/JonMunkholm/datatidy/internal/config"
	"github.com/JonMunkholm/datatidy/internal/core"
	"github.com/JonMunkholm/datatidy/internal/logging"
	"github.com/JonMunkholm/datatidy/internal/metrics"
	"github.com/JonMunkholm/datatidy/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	// Activity history: PostgreSQL when configured, memory otherwise
	var recorder audit.Recorder
	if cfg.History.DatabaseURL != "" {
		pg, err := audit.NewPostgresRecorder(ctx, cfg.History.DatabaseURL, audit.PoolOptions{
			MaxConns: int32(cfg.History.MaxConns),
			MinConns: int32(cfg.History.MinConns),
		})
		if err != nil {
			slog.Error("failed to open activity history database", "error", err)
			os.Exit(1)
		}
		recorder = pg
		slog.Info("activity history stored in database")
	} else {
		recorder = audit.NewMemoryRecorder(cfg.History.MaxEntries)
		slog.Info("activity history kept in memory", "max_entries", cfg.History.MaxEntries)
	}
	defer recorder.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	service := core.NewService(core.Options{
		OutputDir:     cfg.Files.OutputDir,
		MaxFileSize:   cfg.Files.MaxFileSize,
		OperationWait: cfg.Session.OperationWait,
	}, recorder, m)

	server := web.NewServer(service, cfg, m)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", cfg.Server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let a running load, clean or export finish
		if status := service.GateStatus(); status.Active > 0 {
			slog.Info("waiting for operation to complete", "operation", status.Operation)
			if err := service.Drain(shutdownCtx); err != nil {
				slog.Warn("operation did not complete in time", "error", err)
			}
		}
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped", "error", err)
		recorder.Close()
		os.Exit(1)
	}
	slog.Info("server stopped")
}
