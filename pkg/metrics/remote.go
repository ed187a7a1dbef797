package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RemoteCallMetrics records calls made to the store platform and payment provider.
type RemoteCallMetrics struct {
	duration *prometheus.HistogramVec
	failure  *prometheus.CounterVec
	rotation prometheus.Counter
}

// NewRemoteCallMetrics registers the remote call metrics on the provided registerer.
func NewRemoteCallMetrics(reg prometheus.Registerer) *RemoteCallMetrics {
	if reg == nil {
		return &RemoteCallMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "remote_call_duration_seconds",
		Help:    "Duration of calls to remote commerce APIs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "remote_call_failure",
		Help: "Failed remote commerce API calls.",
	}, []string{"endpoint"})
	rotation := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_token_rotations",
		Help: "Cart tokens replaced because the platform returned a different token.",
	})
	reg.MustRegister(duration, failure, rotation)
	return &RemoteCallMetrics{
		duration: duration,
		failure:  failure,
		rotation: rotation,
	}
}

// ObserveDuration records the duration for the named endpoint.
func (m *RemoteCallMetrics) ObserveDuration(endpoint string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(endpoint)).Observe(duration.Seconds())
}

// IncFailure increments the failure counter for the named endpoint.
func (m *RemoteCallMetrics) IncFailure(endpoint string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(endpoint)).Inc()
}

// IncTokenRotation counts a server-initiated cart token rotation.
func (m *RemoteCallMetrics) IncTokenRotation() {
	if m == nil || m.rotation == nil {
		return
	}
	m.rotation.Inc()
}

func normalizeLabel(endpoint string) string {
	if endpoint == "" {
		return "unknown"
	}
	return endpoint
}
