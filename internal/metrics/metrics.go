// Package metrics exposes Prometheus counters for the reservation core.
// A nil *Metrics is valid and records nothing, which keeps tests and
// callers that do not care about metrics free of setup.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's collectors.
type Metrics struct {
	reservationsCreated prometheus.Counter
	transitions         *prometheus.CounterVec
	assignments         *prometheus.CounterVec
	validationFailures  *prometheus.CounterVec
}

// New registers the collectors with prometheus.DefaultRegisterer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the collectors with r.  Collectors already
// registered under the same name are reused.
func NewWithRegisterer(r prometheus.Registerer) *Metrics {
	if r == nil {
		r = prometheus.DefaultRegisterer
	}
	return &Metrics{
		reservationsCreated: register(r, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "restaurant_reservations_created_total",
			Help: "Total number of reservations created",
		})),
		transitions: register(r, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "restaurant_reservation_transitions_total",
			Help: "Reservation status changes by source and target status",
		}, []string{"from", "to"})),
		assignments: register(r, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "restaurant_table_assignments_total",
			Help: "Seat assignment and release attempts by outcome",
		}, []string{"op", "result"})),
		validationFailures: register(r, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "restaurant_validation_failures_total",
			Help: "Rejected reservation payloads by failure kind",
		}, []string{"kind"})),
	}
}

func register[C prometheus.Collector](r prometheus.Registerer, c C) C {
	if err := r.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) ReservationCreated() {
	if m == nil {
		return
	}
	m.reservationsCreated.Inc()
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

// Assignment counts an allocator call.  result is "ok" or a failure kind.
func (m *Metrics) Assignment(op, result string) {
	if m == nil {
		return
	}
	m.assignments.WithLabelValues(op, result).Inc()
}

func (m *Metrics) ValidationFailed(kind string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(kind).Inc()
}
