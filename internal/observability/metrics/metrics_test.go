package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestBookingMetricsObserve(t *testing.T) {
	m := NewBookingMetrics(prometheus.NewRegistry())
	m.ObserveBooked("card")
	m.ObserveConflict()
	m.ObserveCancelled()
	m.ObserveCompleted()
	m.ObserveTriage("high")
}

func TestBookingMetricsNilReceiver(t *testing.T) {
	var m *BookingMetrics
	m.ObserveBooked("cash")
	m.ObserveConflict()
	m.ObserveCancelled()
	m.ObserveCompleted()
	m.ObserveTriage("medium")
}

func TestBookingMetricsRegistersAndCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)
	m.ObserveBooked("card")
	m.ObserveBooked("card")
	m.ObserveConflict()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}

	byName := map[string]*dto.MetricFamily{}
	for _, mf := range families {
		byName[mf.GetName()] = mf
	}

	booked, ok := byName["vetclinic_bookings_created_total"]
	if !ok {
		t.Fatal("expected vetclinic_bookings_created_total to be registered")
	}
	if got := booked.GetMetric()[0].GetCounter().GetValue(); got != 2 {
		t.Errorf("booked counter = %v, want 2", got)
	}

	conflicts, ok := byName["vetclinic_bookings_slot_conflicts_total"]
	if !ok {
		t.Fatal("expected vetclinic_bookings_slot_conflicts_total to be registered")
	}
	if got := conflicts.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Errorf("conflict counter = %v, want 1", got)
	}
}
