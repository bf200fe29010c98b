package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Terminal results of one step execution, used as the result label.
const (
	ResultSuccess        = "success"
	ResultSkip           = "skip"
	ResultTimeout        = "timeout"
	ResultTransportError = "transport_error"
	ResultStatusRejected = "status_rejected"
	ResultBuildError     = "build_error"
	ResultNotFound       = "not_found"
)

var (
	stepExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mimic_step_executions_total",
		Help: "Total step executions by terminal result",
	}, []string{"result"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mimic_step_request_duration_seconds",
		Help:    "Wall-clock duration of step HTTP request attempts",
		Buckets: prometheus.DefBuckets,
	})
)

// ObserveStep counts one finished step execution.
func ObserveStep(result string) {
	stepExecutions.WithLabelValues(result).Inc()
}

// ObserveRequestDuration records the duration of one request attempt.
func ObserveRequestDuration(seconds float64) {
	requestDuration.Observe(seconds)
}
