package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records outcomes and settlement volume for ledger mutations.
type LedgerMetrics struct {
	mutations *prometheus.CounterVec
	settled   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_mutations_total",
		Help: "Ledger mutations by kind and outcome.",
	}, []string{"kind", "outcome"})
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_settled_cents_total",
		Help: "Settled amounts in cents by leg kind.",
	}, []string{"leg"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_mutation_duration_seconds",
		Help:    "Duration of ledger mutations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	reg.MustRegister(mutations, settled, duration)
	return &LedgerMetrics{
		mutations: mutations,
		settled:   settled,
		duration:  duration,
	}
}

// IncMutation counts one mutation attempt with its outcome label.
func (m *LedgerMetrics) IncMutation(kind, outcome string) {
	if m == nil || m.mutations == nil {
		return
	}
	m.mutations.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

// AddSettled accumulates settled cents for a leg kind.
func (m *LedgerMetrics) AddSettled(leg string, cents int64) {
	if m == nil || m.settled == nil || cents <= 0 {
		return
	}
	m.settled.WithLabelValues(normalizeLabel(leg)).Add(float64(cents))
}

// ObserveDuration records the duration of a mutation in seconds.
func (m *LedgerMetrics) ObserveDuration(kind string, seconds float64) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(kind)).Observe(seconds)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
