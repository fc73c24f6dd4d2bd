package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLedgerMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)

	m.IncMutation("mint", "ok")
	m.IncMutation("mint", "ok")
	m.IncMutation("append", "error")
	m.AddSettled("platform_fee", 10)
	m.AddSettled("payee_share", 90)
	m.AddSettled("refund", 0)
	m.ObserveDuration("mint", 0.25)

	if got := testutil.ToFloat64(m.mutations.WithLabelValues("mint", "ok")); got != 2 {
		t.Fatalf("expected 2 mint/ok mutations, got %v", got)
	}
	if got := testutil.ToFloat64(m.settled.WithLabelValues("platform_fee")); got != 10 {
		t.Fatalf("expected 10 platform fee cents, got %v", got)
	}
	if got := testutil.ToFloat64(m.settled.WithLabelValues("refund")); got != 0 {
		t.Fatalf("zero amounts should not accumulate, got %v", got)
	}
}

func TestLedgerMetricsNilSafe(t *testing.T) {
	var m *LedgerMetrics
	m.IncMutation("mint", "ok")
	m.AddSettled("refund", 5)
	m.ObserveDuration("append", 1)

	empty := NewLedgerMetrics(nil)
	empty.IncMutation("", "")
	empty.AddSettled("", 1)
}
