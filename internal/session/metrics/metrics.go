package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the session module.
type Metrics struct {
	// Lifecycle events: created, claimed, completed, expired, swept
	Lifecycle *prometheus.CounterVec

	// Claims by device kind
	Claims *prometheus.CounterVec

	// Sessions currently not expired, refreshed by the sweeper
	Active prometheus.Gauge
}

// New creates a Metrics instance with all session metrics registered.
func New() *Metrics {
	return &Metrics{
		Lifecycle: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "idverify_sessions_total",
			Help: "Total session lifecycle events",
		}, []string{"event"}),

		Claims: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "idverify_session_claims_total",
			Help: "Total session claims by claiming device kind",
		}, []string{"device"}),

		Active: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "idverify_sessions_active",
			Help: "Sessions currently live (pending or active)",
		}),
	}
}

// IncrementLifecycle records a session lifecycle event.
func (m *Metrics) IncrementLifecycle(event string) {
	if m != nil {
		m.Lifecycle.WithLabelValues(event).Inc()
	}
}

// IncrementClaim records a session claim by device kind.
func (m *Metrics) IncrementClaim(device string) {
	if m != nil {
		m.Claims.WithLabelValues(device).Inc()
	}
}

// SetActive refreshes the live-session gauge.
func (m *Metrics) SetActive(n int) {
	if m != nil {
		m.Active.Set(float64(n))
	}
}
