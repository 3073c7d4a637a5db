package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWithRegistryRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewWithRegistry(registry)

	if m.JournalEntriesPosted == nil || m.HTTPRequests == nil || m.MovementsSettled == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.MovementsSettled.WithLabelValues("payshap_rtp", "completed").Inc()
	m.JournalEntriesPosted.Inc()

	if got := testutil.ToFloat64(m.JournalEntriesPosted); got != 1 {
		t.Fatalf("expected 1 journal entry, got %v", got)
	}

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestNewWithRegistryIsolated(t *testing.T) {
	// Two registries must not collide on metric names.
	_ = NewWithRegistry(prometheus.NewRegistry())
	_ = NewWithRegistry(prometheus.NewRegistry())
}
