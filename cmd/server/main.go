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

	"github.com/JonMunkholm/filemeta/internal/config"
	"github.com/JonMunkholm/filemeta/internal/core"
	"github.com/JonMunkholm/filemeta/internal/logging"
	"github.com/JonMunkholm/filemeta/internal/store"
	"github.com/JonMunkholm/filemeta/internal/web"
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

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"history", cfg.Database.HistoryEnabled(),
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"delimiters", cfg.Detection.Delimiters,
	)

	ctx := context.Background()

	var history core.HistoryStore
	if cfg.Database.HistoryEnabled() {
		pool, err := store.Connect(ctx, cfg.Database)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := store.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare schema", "error", err)
			os.Exit(1)
		}
		history = pg
	} else {
		slog.Info("DATABASE_URL not set, analysis history disabled")
	}

	limiter := core.NewLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	service := core.NewService(core.ServiceConfig{
		Defaults: core.OptionsFromConfig(cfg.Detection),
		History: history,
		Limiter: limiter,
	})

	server := web.NewServer(service, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for analyses to complete", "active", status.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("analyses did not complete in time", "error", err)
			} else {
				slog.Info("all analyses completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
