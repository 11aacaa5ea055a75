package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the decision module.
type Metrics struct {
	// Final judgements by outcome and review type
	Outcome *prometheus.CounterVec

	// Risk levels assigned to attempts
	Risk *prometheus.CounterVec

	// Overall verification latency including collaborator calls
	VerifyLatency prometheus.Histogram
}

// New creates a Metrics instance with all decision metrics registered.
func New() *Metrics {
	return &Metrics{
		Outcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "idverify_decision_outcomes_total",
			Help: "Total verification judgements by outcome and review type",
		}, []string{"judgement", "review_type"}),

		Risk: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "idverify_decision_risk_levels_total",
			Help: "Total risk level classifications",
		}, []string{"level"}),

		VerifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "idverify_verification_duration_seconds",
			Help:    "Duration of full verification including external collaborator calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// IncrementOutcome records a final judgement.
func (m *Metrics) IncrementOutcome(judgement, reviewType string) {
	if m != nil {
		m.Outcome.WithLabelValues(judgement, reviewType).Inc()
	}
}

// IncrementRisk records a risk level classification.
func (m *Metrics) IncrementRisk(level string) {
	if m != nil {
		m.Risk.WithLabelValues(level).Inc()
	}
}

// ObserveVerifyLatency records the total verification duration.
func (m *Metrics) ObserveVerifyLatency(d time.Duration) {
	if m != nil {
		m.VerifyLatency.Observe(d.Seconds())
	}
}
