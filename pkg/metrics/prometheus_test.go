package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewExporterRegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := NewExporter(reg)

	e.QueueDepth.WithLabelValues("m1").Set(3)
	e.GateInUse.WithLabelValues("m1").Set(1)
	e.GateLimit.WithLabelValues("m1").Set(4)
	e.RequestsTotal.WithLabelValues("m1", "ok").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	byName := map[string]*dto.MetricFamily{}
	for _, f := range families {
		byName[f.GetName()] = f
	}

	for _, name := range []string{
		"scheduler_queue_depth",
		"scheduler_gate_in_use",
		"scheduler_gate_limit",
		"scheduler_reservation_state",
		"scheduler_request_duration_seconds",
		"scheduler_requests_total",
	} {
		if _, ok := byName[name]; !ok {
			t.Errorf("expected metric family %q to be registered", name)
		}
	}

	depth := byName["scheduler_queue_depth"]
	if got := depth.GetMetric()[0].GetGauge().GetValue(); got != 3 {
		t.Errorf("scheduler_queue_depth = %v, want 3", got)
	}
}

func TestNewExporterDoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewExporter(reg)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected registering a second exporter against the same registry to panic")
		}
	}()
	NewExporter(reg)
}
