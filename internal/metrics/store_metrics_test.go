package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewStoreMetricsWithRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetricsWithRegisterer(reg)

	if m == nil {
		t.Fatal("NewStoreMetricsWithRegisterer should not return nil")
	}
	if m.writes == nil || m.writeDuration == nil || m.queueDepth == nil {
		t.Fatal("writer collectors should not be nil")
	}
	if m.bridgeOutcomes == nil || m.validationRejections == nil {
		t.Fatal("bridge collectors should not be nil")
	}
	if m.liveSubscriptions == nil || m.notifications == nil {
		t.Fatal("live and notification collectors should not be nil")
	}
}

func TestNewStoreMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewStoreMetricsWithRegisterer(reg)
	second := NewStoreMetricsWithRegisterer(reg)

	first.RecordBridgeOutcome("completed")
	second.RecordBridgeOutcome("completed")

	if got := counterValue(t, first.bridgeOutcomes.WithLabelValues("completed")); got != 2 {
		t.Fatalf("expected shared counter value 2, got %v", got)
	}
}

func TestRecordWrite(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetricsWithRegisterer(reg)

	m.RecordWrite("plate", "insert", "completed", 3*time.Millisecond)
	m.RecordWrite("plate", "insert", "completed", 5*time.Millisecond)
	m.RecordWrite("plate", "insert", "failed", time.Millisecond)

	if got := counterValue(t, m.writes.WithLabelValues("plate", "insert", "completed")); got != 2 {
		t.Fatalf("expected 2 completed writes, got %v", got)
	}
	if got := counterValue(t, m.writes.WithLabelValues("plate", "insert", "failed")); got != 1 {
		t.Fatalf("expected 1 failed write, got %v", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var samples uint64
	for _, family := range families {
		if family.GetName() != "fleetfeast_write_duration_seconds" {
			continue
		}
		for _, metric := range family.GetMetric() {
			samples += metric.GetHistogram().GetSampleCount()
		}
	}
	if samples != 3 {
		t.Fatalf("expected 3 duration samples, got %d", samples)
	}
}

func TestQueueDepthAndSubscriptions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetricsWithRegisterer(reg)

	m.SetQueueDepth(7)
	if got := gaugeValue(t, m.queueDepth); got != 7 {
		t.Fatalf("expected queue depth 7, got %v", got)
	}

	m.LiveSubscriptionOpened()
	m.LiveSubscriptionOpened()
	m.LiveSubscriptionClosed()
	if got := gaugeValue(t, m.liveSubscriptions); got != 1 {
		t.Fatalf("expected 1 live subscription, got %v", got)
	}
}

func TestNilStoreMetricsIsNoop(t *testing.T) {
	var m *StoreMetrics
	m.RecordWrite("order", "update", "completed", time.Millisecond)
	m.SetQueueDepth(1)
	m.RecordBridgeOutcome("timed_out")
	m.RecordValidationRejection("order")
	m.LiveSubscriptionOpened()
	m.LiveSubscriptionClosed()
	m.RecordNotification("SMS", "sent")
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("write counter: %v", err)
	}
	return metric.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var metric dto.Metric
	if err := g.Write(&metric); err != nil {
		t.Fatalf("write gauge: %v", err)
	}
	return metric.GetGauge().GetValue()
}
