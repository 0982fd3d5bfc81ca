package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/artifact-graph/internal/bootstrap"
	"github.com/kirillkom/artifact-graph/internal/config"
	"github.com/kirillkom/artifact-graph/internal/observability/logging"
	"github.com/kirillkom/artifact-graph/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel, slog.String("namespace", cfg.InstanceNamespace))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close(context.Background())

	workerMetrics := metrics.NewWorkerMetrics("worker")
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		logger.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker_metrics_server_failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeArtifactIngested(ctx, func(handlerCtx context.Context, artifactID string) error {
		annotateCtx, cancel := context.WithTimeout(handlerCtx, 5*time.Minute)
		defer cancel()

		if artifact, err := app.Repo.GetByID(annotateCtx, artifactID); err == nil {
			workerMetrics.ObserveQueueLag("worker", time.Since(artifact.UpdatedAt))
		}

		workerMetrics.StartAnnotation()
		start := time.Now()
		written, annotateErr := app.AnnotateUC.AnnotateByID(annotateCtx, artifactID)
		workerMetrics.FinishAnnotation("worker", time.Since(start), annotateErr)
		if annotateErr == nil {
			workerMetrics.ObserveStatementsWritten("worker", written)
		}
		return annotateErr
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
