package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the policy module.
type Metrics struct {
	// Loads that fell back to defaults because the store was empty or unreadable
	FallbackLoads prometheus.Counter

	// Settings writes by operation (update, reset)
	Writes *prometheus.CounterVec
}

// New creates a Metrics instance with all policy metrics registered.
func New() *Metrics {
	return &Metrics{
		FallbackLoads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "idverify_policy_fallback_loads_total",
			Help: "Total settings loads that fell back to defaults",
		}),

		Writes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "idverify_policy_writes_total",
			Help: "Total settings writes by operation",
		}, []string{"operation"}),
	}
}

// IncrementFallback records a load that served the defaults.
func (m *Metrics) IncrementFallback() {
	if m != nil {
		m.FallbackLoads.Inc()
	}
}

// IncrementWrite records a persisted settings change.
func (m *Metrics) IncrementWrite(operation string) {
	if m != nil {
		m.Writes.WithLabelValues(operation).Inc()
	}
}
