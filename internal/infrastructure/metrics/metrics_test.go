package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)

	if m.WalletsCreated == nil || m.Mutations == nil || m.VersionConflicts == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.WalletsCreated.Inc()
	m.Mutations.WithLabelValues("CREDIT", "CREDIT_REFUND").Inc()

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}

	if got := testutil.ToFloat64(m.WalletsCreated); got != 1 {
		t.Fatalf("expected wallets_created_total 1, got %v", got)
	}
}

func TestNewTwiceOnSeparateRegistries(t *testing.T) {
	// Separate registries must not collide.
	_ = New(prometheus.NewRegistry())
	_ = New(prometheus.NewRegistry())
}
