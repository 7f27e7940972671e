package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-reservation/internal/lock"
	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/queue"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
	"github.com/iliyamo/restaurant-reservation/internal/repository/memory"
)

// Thursday 2026-10-15, noon UTC.  2026-10-16 is a Friday and 2026-10-20 a
// Tuesday.
var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func testRules() Rules {
	r := DefaultRules()
	r.Location = time.UTC
	return r
}

func testValidator() *Validator {
	return NewValidator(testRules(), func() time.Time { return testNow })
}

type recorder struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
}

func (r *recorder) Publish(_ context.Context, ev queue.ReservationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

type fixture struct {
	store        repository.Store
	events       *recorder
	reservations *Reservations
	tables       *Tables
	allocator    *Allocator
}

func newFixtureWith(store repository.Store) *fixture {
	events := &recorder{}
	locker := lock.NewKeyed()
	return &fixture{
		store:        store,
		events:       events,
		reservations: NewReservations(store, testValidator(), locker, events, nil, nil),
		tables:       NewTables(store, nil),
		allocator:    NewAllocator(store, locker, events, nil, nil),
	}
}

func newFixture() *fixture { return newFixtureWith(memory.NewStore()) }

func validInput() ReservationInput {
	return ReservationInput{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		MobileNumber:    "(555) 010-2030",
		ReservationDate: "2026-10-16",
		ReservationTime: "18:00",
		People:          float64(2),
	}
}

func (f *fixture) booking(t *testing.T, people int) model.Reservation {
	t.Helper()
	in := validInput()
	in.People = float64(people)
	r, err := f.reservations.Create(context.Background(), in)
	require.NoError(t, err)
	return r
}

func (f *fixture) table(t *testing.T, name string, capacity int) model.Table {
	t.Helper()
	tbl, err := f.tables.Create(context.Background(), TableInput{TableName: name, Capacity: float64(capacity)})
	require.NoError(t, err)
	return tbl
}
