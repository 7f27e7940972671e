package service

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-reservation/internal/metrics"
	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/queue"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// Allocator binds tables to reservations and releases them again.  Each
// operation holds the keyed locks of the entities it touches and performs
// its reads and both writes inside one store transaction, so a table is
// never marked occupied while its reservation still shows booked, or the
// other way round.  Locks are released once the transaction ends; events
// are published afterwards.
type Allocator struct {
	store   repository.Store
	locker  Locker
	events  EventPublisher
	metrics *metrics.Metrics
	log     *log.Entry
}

// NewAllocator wires an Allocator.  events and m may be nil.
func NewAllocator(store repository.Store, locker Locker, events EventPublisher, m *metrics.Metrics, logger *log.Entry) *Allocator {
	if store == nil || locker == nil {
		panic("nil dependency passed to NewAllocator")
	}
	if logger == nil {
		logger = log.WithField("component", "allocator")
	}
	return &Allocator{store: store, locker: locker, events: events, metrics: m, log: logger}
}

// Assign seats reservationID at tableID.  Re-assigning the reservation that
// already occupies the table succeeds without writing anything.
func (a *Allocator) Assign(ctx context.Context, tableID, reservationID uint64) (model.Table, error) {
	unlock, err := a.locker.Lock(ctx, sortedKeys(reservationKey(reservationID), tableKey(tableID))...)
	if err != nil {
		return model.Table{}, storeError("lock", err)
	}
	release := releaseOnce(unlock)
	defer release()

	var (
		table   model.Table
		seated  model.Reservation
		changed bool
	)
	err = a.store.InTx(ctx, func(tx repository.Store) error {
		t, err := tx.Tables().Read(ctx, tableID)
		if err != nil {
			return lookupError(err, "Table %d not found.", tableID)
		}
		r, err := tx.Reservations().Read(ctx, reservationID)
		if err != nil {
			return lookupError(err, "Reservation %d not found.", reservationID)
		}
		if r.People > t.Capacity {
			return newError(KindInsufficientCapacity, "Table does not have enough capacity.")
		}
		if t.ReservationID != nil {
			if *t.ReservationID != reservationID {
				return newError(KindTableOccupied, "Table is occupied.")
			}
			table = t
			return nil
		}
		if r.Status == model.StatusSeated {
			return newError(KindAlreadySeated, "Reservation is already seated.")
		}
		next, err := Transition(r, string(model.StatusSeated))
		if err != nil {
			return err
		}
		if table, err = tx.Tables().Update(ctx, tableID, &reservationID); err != nil {
			return storeError("bind table", err)
		}
		if seated, err = tx.Reservations().Update(ctx, reservationID, next.Status); err != nil {
			return storeError("seat reservation", err)
		}
		changed = true
		return nil
	})
	release()
	if err != nil {
		a.metrics.Assignment("assign", string(KindOf(err)))
		return model.Table{}, storeError("assign", err)
	}
	a.metrics.Assignment("assign", "ok")
	if changed {
		a.metrics.Transition(string(model.StatusBooked), string(model.StatusSeated))
		a.log.WithFields(log.Fields{"table_id": tableID, "reservation_id": reservationID}).Info("reservation seated")
		a.publish(ctx, queue.EventReservationSeated, seated, &table)
	}
	return table, nil
}

// Unassign finishes the reservation seated at tableID and frees the table.
// A reservation that is already finished only has its table cleared.
func (a *Allocator) Unassign(ctx context.Context, tableID uint64) (model.Table, error) {
	unlock, err := a.locker.Lock(ctx, tableKey(tableID))
	if err != nil {
		return model.Table{}, storeError("lock", err)
	}
	release := releaseOnce(unlock)
	defer release()

	var (
		table    model.Table
		finished model.Reservation
		from     model.Status
	)
	err = a.store.InTx(ctx, func(tx repository.Store) error {
		t, err := tx.Tables().Read(ctx, tableID)
		if err != nil {
			return lookupError(err, "Table %d not found.", tableID)
		}
		if t.ReservationID == nil {
			return newError(KindTableNotOccupied, "Table is not occupied.")
		}
		reservationID := *t.ReservationID
		r, err := tx.Reservations().Read(ctx, reservationID)
		if err != nil {
			return lookupError(err, "Reservation %d not found.", reservationID)
		}
		from = r.Status
		finished = r
		if r.Status != model.StatusFinished {
			if _, err := Transition(r, string(model.StatusFinished)); err != nil {
				return err
			}
			if finished, err = tx.Reservations().Finish(ctx, reservationID); err != nil {
				return storeError("finish reservation", err)
			}
		}
		if table, err = tx.Tables().Update(ctx, tableID, nil); err != nil {
			return storeError("free table", err)
		}
		return nil
	})
	release()
	if err != nil {
		a.metrics.Assignment("unassign", string(KindOf(err)))
		return model.Table{}, storeError("unassign", err)
	}
	a.metrics.Assignment("unassign", "ok")
	a.log.WithFields(log.Fields{"table_id": tableID, "reservation_id": finished.ID}).Info("table released")
	if from != model.StatusFinished {
		a.metrics.Transition(string(from), string(model.StatusFinished))
		a.publish(ctx, queue.EventReservationFinished, finished, nil)
	}
	return table, nil
}

func (a *Allocator) publish(ctx context.Context, kind string, r model.Reservation, t *model.Table) {
	if a.events == nil {
		return
	}
	if err := a.events.Publish(ctx, queue.NewReservationEvent(kind, r, t)); err != nil {
		a.log.WithError(err).WithField("event", kind).Warn("publish failed")
	}
}

// lookupError maps a missing row to NotFound and anything else to a store
// failure.
func lookupError(err error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return newError(KindNotFound, format, args...)
	}
	return storeError("read", err)
}
