package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"WeddingSite/internal/api"
	"WeddingSite/internal/metrics"
	"WeddingSite/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API, the metrics endpoint and the reminder scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	// ------------------------------------------------
	// Root Context + Shutdown
	// ------------------------------------------------
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := setup(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	logger := rt.logger
	cfg := rt.cfg

	if err := rt.store.Migrate(ctx); err != nil {
		logger.Error("migrations failed", zap.Error(err))
		return err
	}

	// ------------------------------------------------
	// Metrics
	// ------------------------------------------------
	metrics.Init()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics server started", zap.String("port", cfg.MetricsPort))
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()

	// ------------------------------------------------
	// Reminder Scheduler
	// ------------------------------------------------
	dispatcher, closeEvents, err := rt.newDispatcher()
	if err != nil {
		return err
	}
	defer closeEvents()

	var wg sync.WaitGroup
	if cfg.ReminderInterval > 0 {
		worker.StartScheduler(ctx, &wg, cfg.ReminderInterval, dispatcher, logger.Named("scheduler"))
	} else {
		logger.Info("reminder scheduler disabled; use the admin route or the remind command")
	}

	// ------------------------------------------------
	// HTTP API Server
	// ------------------------------------------------
	apiServer := api.NewHTTPServer(":"+cfg.APIPort, &api.Handler{
		Store:         rt.store,
		Reminders:     dispatcher,
		Templates:     dispatcher.Renderer,
		Log:           logger.Named("api"),
		AdminToken:    cfg.AdminToken,
		RSVPPerMinute: cfg.RSVPRateLimit,
	})
	apiServer.ReadHeaderTimeout = 5 * time.Second

	apiErr := make(chan error, 1)
	go func() {
		logger.Info("api server started", zap.String("port", cfg.APIPort))
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			apiErr <- err
		}
	}()

	// ------------------------------------------------
	// Wait for shutdown
	// ------------------------------------------------
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-apiErr:
		logger.Error("api server error", zap.Error(err))
		stop()
	}

	logger.Info("shutting down services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown failed", zap.Error(err))
	}

	// Wait for an in-flight reminder run to notice cancellation
	wg.Wait()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics shutdown failed", zap.Error(err))
	}

	logger.Info("application shutdown complete")
	return err
}
