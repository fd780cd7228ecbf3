package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels health check runs that produced a report.
	OutcomeSuccess = "success"
	// OutcomeError labels runs aborted before a report was produced.
	OutcomeError = "error"
)

var (
	healthChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "revhealth",
			Name:      "health_checks_total",
			Help:      "Total number of health check runs, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	healthCheckDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "revhealth",
			Name:      "health_check_seconds",
			Help:      "Full health check run latency in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
	)

	checkResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "revhealth",
			Name:      "check_results_total",
			Help:      "Individual check outcomes, partitioned by check and status.",
		},
		[]string{"check", "status"},
	)
)

// Register attaches the engine collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		healthChecksTotal,
		healthCheckDurationSeconds,
		checkResultsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveHealthCheck records a run duration and outcome label.
func ObserveHealthCheck(duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	healthChecksTotal.WithLabelValues(label).Inc()
	if duration < 0 {
		duration = 0
	}
	healthCheckDurationSeconds.Observe(duration.Seconds())
}

// ObserveCheckResult counts one check outcome by boundary status.
func ObserveCheckResult(check, status string) {
	checkResultsTotal.WithLabelValues(check, status).Inc()
}
