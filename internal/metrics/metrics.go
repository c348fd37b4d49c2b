// Package metrics provides Prometheus instrumentation for API calls made by
// the sift client.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every collector in this package. It is separate from the
// default registry so exported files only contain client metrics.
var Registry = prometheus.NewRegistry()

var (
	// RequestsTotal counts dispatched requests by operation, method and outcome.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sift",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total API requests by operation, method and outcome.",
		},
		[]string{"operation", "method", "outcome"},
	)

	// RequestDuration observes round trip latency by operation.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sift",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "API request round trip duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"operation"},
	)

	// SoftFailuresTotal counts 2xx replies whose body reports a failure status.
	SoftFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sift",
			Subsystem: "client",
			Name:      "soft_failures_total",
			Help:      "Total 2xx replies carrying a non-zero API status.",
		},
		[]string{"operation"},
	)

	// ValidationFailuresTotal counts calls rejected before any request was built.
	ValidationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sift",
			Subsystem: "client",
			Name:      "validation_failures_total",
			Help:      "Total calls rejected by input validation.",
		},
		[]string{"operation", "kind"},
	)
)

// Outcome labels for RequestsTotal.
const (
	OutcomeTransportError = "transport_error"
	OutcomeMalformed      = "malformed_response"
)

func init() {
	Registry.MustRegister(
		RequestsTotal,
		RequestDuration,
		SoftFailuresTotal,
		ValidationFailuresTotal,
	)
}

// ObserveRequest records one completed dispatch. A status of 0 means no reply
// was received and outcome names the failure instead.
func ObserveRequest(operation, method string, status int, outcome string, d time.Duration) {
	if outcome == "" {
		outcome = StatusBucket(status)
	}
	RequestsTotal.WithLabelValues(operation, method, outcome).Inc()
	RequestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveSoftFailure records a 2xx reply with a failing API status.
func ObserveSoftFailure(operation string) {
	SoftFailuresTotal.WithLabelValues(operation).Inc()
}

// ObserveValidationFailure records a rejected call.
func ObserveValidationFailure(operation, kind string) {
	ValidationFailuresTotal.WithLabelValues(operation, kind).Inc()
}

// WriteTextfile writes the current values in the node_exporter textfile
// format. The file is replaced atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}

// StatusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func StatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
