package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PricingMetrics records cart mutation and recompute outcomes.
type PricingMetrics struct {
	duration    *prometheus.HistogramVec
	mutations   *prometheus.CounterVec
	offerStates *prometheus.CounterVec
	anomalies   *prometheus.CounterVec
}

// NewPricingMetrics registers the pricing metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewPricingMetrics(reg prometheus.Registerer) *PricingMetrics {
	if reg == nil {
		return &PricingMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_recompute_duration_seconds",
		Help:    "Duration of cart pricing recomputes in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations by operation and outcome.",
	}, []string{"operation", "outcome"})
	offerStates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_offer_evaluations_total",
		Help: "Offer evaluation results per pricing run.",
	}, []string{"state"})
	anomalies := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_pricing_anomalies_total",
		Help: "Non-fatal pricing anomalies attached to snapshots.",
	}, []string{"type"})
	reg.MustRegister(duration, mutations, offerStates, anomalies)
	return &PricingMetrics{
		duration:    duration,
		mutations:   mutations,
		offerStates: offerStates,
		anomalies:   anomalies,
	}
}

// ObserveRecompute records how long a recompute for operation took.
func (m *PricingMetrics) ObserveRecompute(operation string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(d.Seconds())
}

// IncMutation counts a finished mutation; outcome is "ok" or an error code.
func (m *PricingMetrics) IncMutation(operation, outcome string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

// IncOfferState counts the offer state produced by a pricing run.
func (m *PricingMetrics) IncOfferState(state string) {
	if m == nil || m.offerStates == nil {
		return
	}
	m.offerStates.WithLabelValues(normalizeLabel(state)).Inc()
}

// IncAnomaly counts a pricing anomaly by type.
func (m *PricingMetrics) IncAnomaly(kind string) {
	if m == nil || m.anomalies == nil {
		return
	}
	m.anomalies.WithLabelValues(normalizeLabel(kind)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
