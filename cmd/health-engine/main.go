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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/forceweaver/revenue-health/internal/api"
	"github.com/forceweaver/revenue-health/internal/config"
	"github.com/forceweaver/revenue-health/internal/engine"
	"github.com/forceweaver/revenue-health/internal/metrics"
	"github.com/forceweaver/revenue-health/internal/salesforce"
	"github.com/forceweaver/revenue-health/internal/utils"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)
	logger.Info("starting revenue-health", slog.String("address", cfg.Server.Address))

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	sfClient := salesforce.NewClient(salesforce.Config{
		InstanceURL:  cfg.Salesforce.InstanceURL,
		AccessToken:  cfg.Salesforce.AccessToken,
		APIVersion:   cfg.Salesforce.APIVersion,
		QueryTimeout: cfg.Salesforce.QueryTimeout,
		HTTPTimeout:  cfg.Salesforce.HTTPTimeout,
	}, logger)

	catalog, err := engine.LoadCatalog(cfg.Remediation.Path, logger)
	if err != nil {
		logger.Error("failed to load remediation catalog", slog.Any("error", err))
		os.Exit(1)
	}

	checker := engine.NewHealthChecker(logger, sfClient, engine.CheckerOptions{
		BundleLimits: engine.BundleLimits{
			MaxDepth:          cfg.Checks.MaxBundleDepth,
			MaxComponents:     cfg.Checks.MaxComponents,
			ComponentWarnOver: cfg.Checks.ComponentWarning,
		},
		OverrideLimit:   cfg.Checks.MaxAttributeOverrides,
		OverrideWorkers: cfg.Checks.OverrideWorkers,
		Catalog:         catalog,
	})

	handler := api.NewHandler(logger, checker)
	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      handler.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	opsServer, err := api.NewOpsServer(cfg.Server)
	if err != nil {
		logger.Error("failed to create ops server", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		logger.Info("http server listening", slog.String("address", cfg.Server.Address))
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("http server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	go func() {
		logger.Info("ops server listening", slog.String("address", cfg.Server.OpsAddress))
		if serveErr := opsServer.Start(); serveErr != nil {
			logger.Error("ops server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")
	opsServer.SetServing(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("http server shutdown", slog.Any("error", err))
	}
	opsServer.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	// Give remaining goroutines time to finish logging
	time.Sleep(100 * time.Millisecond)
	logger.Info("revenue-health stopped")
}
