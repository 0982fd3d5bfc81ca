package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/artifact-graph/internal/adapters/http"
	"github.com/kirillkom/artifact-graph/internal/bootstrap"
	"github.com/kirillkom/artifact-graph/internal/config"
	"github.com/kirillkom/artifact-graph/internal/observability/logging"
	"github.com/kirillkom/artifact-graph/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel, slog.String("namespace", cfg.InstanceNamespace))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close(context.Background())

	httpMetrics := metrics.NewHTTPServerMetrics("api")
	router := httpadapter.NewRouter(
		cfg,
		app.IngestUC,
		app.Repo,
		app.ExploreUC,
		app.SearchUC,
		app.Store,
		app.Registry,
		httpMetrics,
	).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api_server_failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_error", "error", err)
	}
}
