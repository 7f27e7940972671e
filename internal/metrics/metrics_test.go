package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counts(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.ReservationCreated()
	m.ReservationCreated()
	m.Transition("booked", "seated")
	m.Assignment("assign", "ok")
	m.Assignment("assign", "TableOccupied")
	m.ValidationFailed("ClosedDay")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reservationsCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("booked", "seated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.assignments.WithLabelValues("assign", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.assignments.WithLabelValues("assign", "TableOccupied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validationFailures.WithLabelValues("ClosedDay")))
}

func TestMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewWithRegisterer(reg)
	second := NewWithRegisterer(reg)

	first.ReservationCreated()
	assert.Equal(t, 1.0, testutil.ToFloat64(second.reservationsCreated))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ReservationCreated()
		m.Transition("booked", "finished")
		m.Assignment("unassign", "ok")
		m.ValidationFailed("PastDate")
	})
}
