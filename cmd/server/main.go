package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/rostercheck/internal/config"
	"github.com/JonMunkholm/rostercheck/internal/core"
	"github.com/JonMunkholm/rostercheck/internal/core/sources"
	"github.com/JonMunkholm/rostercheck/internal/logging"
	"github.com/JonMunkholm/rostercheck/internal/mail"
	"github.com/JonMunkholm/rostercheck/internal/metrics"
	"github.com/JonMunkholm/rostercheck/internal/templatestore"
	"github.com/JonMunkholm/rostercheck/internal/web"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
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
		"template_store", cfg.Store.Backend,
		"verify_max_concurrent", cfg.Verify.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	sources.Register(cfg.Sources)
	for _, def := range core.Sources() {
		slog.Debug("source registered", "key", def.Key, "format", def.Format, "columns", len(def.Columns))
	}

	ctx := context.Background()
	store, err := templatestore.Open(ctx, cfg.Store)
	if err != nil {
		slog.Error("failed to open template store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	service := core.NewService(cfg, m)
	composer := mail.NewComposer(store, cfg.Mail)
	server := web.NewServer(service, composer, m, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.LimiterStatus(); status.Active > 0 {
			slog.Info("waiting for verifications to complete", "active", status.Active)
			if err := service.WaitForRuns(shutdownCtx); err != nil {
				slog.Warn("verifications did not complete in time", "error", err)
			} else {
				slog.Info("all verifications completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
