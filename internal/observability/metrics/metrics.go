// Package metrics exposes Prometheus instrumentation for the scheduling core.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the appointment lifecycle.
type BookingMetrics struct {
	bookedTotal       *prometheus.CounterVec
	conflictsTotal    prometheus.Counter
	cancellationTotal prometheus.Counter
	completionTotal   prometheus.Counter
	triageTotal       *prometheus.CounterVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetclinic",
			Subsystem: "bookings",
			Name:      "created_total",
			Help:      "Total appointments booked",
		}, []string{"payment_method"}),
		conflictsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vetclinic",
			Subsystem: "bookings",
			Name:      "slot_conflicts_total",
			Help:      "Booking attempts rejected because the slot was taken",
		}),
		cancellationTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vetclinic",
			Subsystem: "bookings",
			Name:      "cancelled_total",
			Help:      "Appointments cancelled by customers",
		}),
		completionTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vetclinic",
			Subsystem: "bookings",
			Name:      "completed_total",
			Help:      "Appointments completed by practitioners",
		}),
		triageTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vetclinic",
			Subsystem: "triage",
			Name:      "submissions_total",
			Help:      "Triage questionnaires summarized, by urgency tier",
		}, []string{"urgency"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookedTotal, m.conflictsTotal, m.cancellationTotal, m.completionTotal, m.triageTotal)
	return m
}

func (m *BookingMetrics) ObserveBooked(paymentMethod string) {
	if m == nil {
		return
	}
	m.bookedTotal.WithLabelValues(paymentMethod).Inc()
}

func (m *BookingMetrics) ObserveConflict() {
	if m == nil {
		return
	}
	m.conflictsTotal.Inc()
}

func (m *BookingMetrics) ObserveCancelled() {
	if m == nil {
		return
	}
	m.cancellationTotal.Inc()
}

func (m *BookingMetrics) ObserveCompleted() {
	if m == nil {
		return
	}
	m.completionTotal.Inc()
}

func (m *BookingMetrics) ObserveTriage(urgency string) {
	if m == nil {
		return
	}
	m.triageTotal.WithLabelValues(urgency).Inc()
}
