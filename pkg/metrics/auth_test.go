package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestAuthMetricsRecordOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewAuthMetrics(reg)

	m.ObserveLogin("success")
	m.ObserveLogin("success")
	m.ObserveLogin("Failure")
	m.ObserveSessionEvent("signed_in")
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	byName := map[string]*dto.MetricFamily{}
	for _, fam := range families {
		byName[fam.GetName()] = fam
	}

	logins := byName["auth_login_attempts"]
	if logins == nil {
		t.Fatalf("expected auth_login_attempts family")
	}
	counts := map[string]float64{}
	for _, metric := range logins.GetMetric() {
		for _, label := range metric.GetLabel() {
			if label.GetName() == "outcome" {
				counts[label.GetValue()] = metric.GetCounter().GetValue()
			}
		}
	}
	if counts["success"] != 2 {
		t.Fatalf("expected 2 successes, got %v", counts["success"])
	}
	if counts["failure"] != 1 {
		t.Fatalf("expected lowercased failure label with count 1, got %v", counts["failure"])
	}

	gauge := byName["auth_active_sessions"]
	if gauge == nil {
		t.Fatalf("expected auth_active_sessions family")
	}
	if got := gauge.GetMetric()[0].GetGauge().GetValue(); got != 1 {
		t.Fatalf("expected 1 active session, got %v", got)
	}
}

func TestAuthMetricsNilReceiverSafe(t *testing.T) {
	var m *AuthMetrics
	m.ObserveLogin("success")
	m.SessionOpened()
	m.SessionClosed()

	empty := NewAuthMetrics(nil)
	empty.ObserveSessionEvent("signed_out")
}
