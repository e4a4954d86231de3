package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestMetricsRegistered verifies that all metrics are registered in the
// default registry and become visible once observed.
func TestMetricsRegistered(t *testing.T) {
	// Seed every metric so it appears in the gather output. Counters and
	// histograms are invisible until first observation.
	BackendRequestsTotal.WithLabelValues("test-model", "ok").Inc()
	BackendLatency.WithLabelValues("test-model").Observe(0.1)
	BackendTokensTotal.WithLabelValues("test-model", "input").Add(10)
	StreamsActive.Inc()
	defer StreamsActive.Dec()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}

	expected := map[string]bool{
		"glmbridge_backend_requests_total":  false,
		"glmbridge_backend_latency_seconds": false,
		"glmbridge_backend_tokens_total":    false,
		"glmbridge_streams_active":          false,
	}

	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}

	for name, seen := range expected {
		if !seen {
			t.Errorf("metric %s not found in default registry", name)
		}
	}
}

func TestBackendTokensCounter(t *testing.T) {
	BackendTokensTotal.WithLabelValues("counter-model", "output").Add(21)

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}

	var found *dto.Metric
	for _, mf := range families {
		if mf.GetName() != "glmbridge_backend_tokens_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelValue(m, "model") == "counter-model" && labelValue(m, "direction") == "output" {
				found = m
			}
		}
	}

	if found == nil {
		t.Fatal("expected counter-model/output series")
	}
	if got := found.GetCounter().GetValue(); got != 21 {
		t.Errorf("expected counter value 21, got %v", got)
	}
}

func labelValue(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}
