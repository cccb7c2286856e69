package monitoring

import (
	"testing"
)

func TestMonitor_GetMetrics(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)

	metrics := m.GetMetrics()

	// Check if our metric is present
	value, exists := metrics["test_metric"]
	if !exists {
		t.Fatalf("Expected 'test_metric' to be present in metrics, but it was not")
	}

	// Check value
	if value != 42 {
		t.Errorf("Expected 'test_metric' to be 42, but got %v", value)
	}

	// Check uptime presence
	_, exists = metrics["uptime_seconds"]
	if !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}

func TestMonitor_Increment(t *testing.T) {
	m := NewMonitor()

	m.Increment("orders_created")
	m.Increment("orders_created")
	m.Increment("orders_created")

	value, exists := m.GetMetric("orders_created")
	if !exists {
		t.Fatal("Expected 'orders_created' to be present")
	}
	if value != 3 {
		t.Errorf("Expected 'orders_created' to be 3, but got %v", value)
	}
}

func TestMonitor_Reset(t *testing.T) {
	m := NewMonitor()
	m.Increment("preview_computations")
	m.Reset()

	if _, exists := m.GetMetric("preview_computations"); exists {
		t.Error("Expected metrics to be empty after Reset")
	}
}
