// Package metrics exposes Prometheus collectors for the portal.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome constants for metric labels.
const (
	ResultSuccess        = "success"
	ResultError          = "error"
	ResultTransportError = "transport_error"
)

// BackendMetrics records PayAssure backend calls.
type BackendMetrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewBackendMetrics registers backend collectors with reg.
func NewBackendMetrics(reg prometheus.Registerer) *BackendMetrics {
	f := promauto.With(reg)
	return &BackendMetrics{
		calls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payassure_backend_requests_total",
				Help: "Number of calls made to the PayAssure backend.",
			},
			[]string{"operation", "outcome"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payassure_backend_request_duration_seconds",
				Help:    "Latency of calls made to the PayAssure backend.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (m *BackendMetrics) ObserveBackendCall(operation, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.calls.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(took.Seconds())
}

// NopObserver discards observations.
type NopObserver struct{}

func (NopObserver) ObserveBackendCall(string, string, time.Duration) {}
