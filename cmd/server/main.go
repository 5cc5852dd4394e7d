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

	"github.com/JonMunkholm/priceexport/internal/config"
	"github.com/JonMunkholm/priceexport/internal/core"
	"github.com/JonMunkholm/priceexport/internal/logging"
	"github.com/JonMunkholm/priceexport/internal/sink"
	"github.com/JonMunkholm/priceexport/internal/web"
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
		"output", cfg.Export.Output,
		"workers", cfg.Export.Workers,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	report, err := core.ParseReportFormat(cfg.Export.Report)
	if err != nil {
		slog.Error("invalid report format", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	out, err := sink.Open(ctx, cfg.Export.Output)
	if err != nil {
		slog.Error("failed to open export output", "output", cfg.Export.Output, "error", err)
		os.Exit(1)
	}
	if c, ok := out.(sink.Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				slog.Warn("closing export output", "error", err)
			}
		}()
	}

	service := core.NewService(out, core.ServiceOptions{
		Pipeline: core.PipelineOptions{
			Workers:    cfg.Export.Workers,
			FilePrefix: cfg.Export.FilePrefix,
			CSV: core.CSVOptions{
				Delimiter: cfg.Export.DelimiterRune(),
				UTF8BOM:   cfg.Export.UTF8BOM,
			},
		},
		MaxFileSize:   cfg.Upload.MaxFileSize,
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
		Timeout:       cfg.Upload.Timeout,
	})

	server := web.NewServer(service, cfg, report)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let running exports commit before closing connections
		if status := service.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for exports to complete", "active", status.Active)
			if err := service.Drain(shutdownCtx); err != nil {
				slog.Warn("exports did not complete in time", "error", err)
			} else {
				slog.Info("all exports completed")
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
