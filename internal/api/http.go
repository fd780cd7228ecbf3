package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/forceweaver/revenue-health/internal/metrics"
	"github.com/forceweaver/revenue-health/internal/models"
	"github.com/forceweaver/revenue-health/internal/utils"
)

// Runner executes a full health check pass. The engine's HealthChecker
// satisfies it; tests substitute stubs.
type Runner interface {
	Run(ctx context.Context) models.Report
}

// Handler serves the HTTP surface of the engine.
type Handler struct {
	logger  *slog.Logger
	runner  Runner
	latency *utils.LatencyTracker
}

// NewHandler wires the HTTP handler to a health check runner.
func NewHandler(logger *slog.Logger, runner Runner) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, runner: runner, latency: utils.NewLatencyTracker(256)}
}

// Router builds the route table.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/health-check", h.handleHealthCheck)
	mux.HandleFunc("GET /api/v1/health-check", h.handleHealthCheck)
	mux.HandleFunc("GET /healthz", h.handleHealthz)
	return mux
}

// handleHealthCheck runs a full pass and renders the report. A completed run
// always answers 200; degraded orgs surface through the report itself.
func (h *Handler) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	report := h.runner.Run(r.Context())
	duration := time.Since(started)

	metrics.ObserveHealthCheck(duration, metrics.OutcomeSuccess)
	for kind, entry := range report.Checks {
		metrics.ObserveCheckResult(kind, entry.Status)
	}
	h.observeLatency(duration)

	h.logger.Info("health check served",
		"duration", duration,
		"score", report.OverallHealth.Score,
		"grade", report.OverallHealth.Grade)

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(FormatReportText(report)))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.logger.Error("encode report failed", "error", err)
	}
}

func (h *Handler) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// observeLatency tracks run durations and periodically logs the p95.
func (h *Handler) observeLatency(duration time.Duration) {
	h.latency.Observe(duration)
	if count := h.latency.Count(); count > 0 && count%20 == 0 {
		h.logger.Info("health check latency",
			"p95", h.latency.Percentile(95),
			"samples", count)
	}
}
