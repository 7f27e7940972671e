// Package memory provides in-memory implementations of the repository
// contracts for local development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// dataset is the full state held by a Store.
type dataset struct {
	reservations map[uint64]model.Reservation
	tables       map[uint64]model.Table
	nextResID    uint64
	nextTableID  uint64
}

func newDataset() *dataset {
	return &dataset{
		reservations: make(map[uint64]model.Reservation),
		tables:       make(map[uint64]model.Table),
	}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		reservations: make(map[uint64]model.Reservation, len(d.reservations)),
		tables:       make(map[uint64]model.Table, len(d.tables)),
		nextResID:    d.nextResID,
		nextTableID:  d.nextTableID,
	}
	for k, v := range d.reservations {
		c.reservations[k] = v
	}
	for k, v := range d.tables {
		v.ReservationID = copyID(v.ReservationID)
		c.tables[k] = v
	}
	return c
}

// Store keeps reservations and tables in maps guarded by one mutex.
// Transactions hold the mutex for their whole duration and work on a
// private copy that replaces the live data only on success.
type Store struct {
	mu   *sync.Mutex
	data *dataset
	inTx bool
	now  func() time.Time
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		mu:   &sync.Mutex{},
		data: newDataset(),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Reservations() repository.ReservationStore { return &reservationRepo{s: s} }

func (s *Store) Tables() repository.TableStore { return &tableRepo{s: s} }

// InTx runs fn against a snapshot and publishes the snapshot only when fn
// succeeds.  Nested calls reuse the enclosing transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	snapshot := s.data.clone()
	tx := &Store{mu: s.mu, data: snapshot, inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		return err
	}
	*s.data = *snapshot
	return nil
}

// lock acquires the store mutex unless the caller already runs inside a
// transaction, which holds it.
func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func copyID(id *uint64) *uint64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

var _ repository.Store = (*Store)(nil)
