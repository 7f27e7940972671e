package service

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-reservation/internal/metrics"
	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/queue"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// Reservations implements the booking operations: create, read, modify,
// status updates and listing.
type Reservations struct {
	store     repository.Store
	validator *Validator
	locker    Locker
	events    EventPublisher
	metrics   *metrics.Metrics
	log       *log.Entry
}

// NewReservations wires the reservation service.  events and m may be nil.
func NewReservations(store repository.Store, v *Validator, locker Locker, events EventPublisher, m *metrics.Metrics, logger *log.Entry) *Reservations {
	if store == nil || v == nil || locker == nil {
		panic("nil dependency passed to NewReservations")
	}
	if logger == nil {
		logger = log.WithField("component", "reservations")
	}
	return &Reservations{store: store, validator: v, locker: locker, events: events, metrics: m, log: logger}
}

// Create validates the payload and stores a new booked reservation.
func (s *Reservations) Create(ctx context.Context, in ReservationInput) (model.Reservation, error) {
	r, err := s.validator.Validate(in)
	if err != nil {
		s.metrics.ValidationFailed(string(KindOf(err)))
		return model.Reservation{}, err
	}
	r.Status = model.StatusBooked
	created, err := s.store.Reservations().Create(ctx, r)
	if err != nil {
		return model.Reservation{}, storeError("create reservation", err)
	}
	s.metrics.ReservationCreated()
	s.log.WithFields(log.Fields{
		"reservation_id":   created.ID,
		"reservation_date": created.ReservationDate,
		"reservation_time": created.ReservationTime,
		"people":           created.People,
	}).Info("reservation created")
	s.publish(ctx, queue.EventReservationCreated, created)
	return created, nil
}

// Read returns a reservation or a NotFound failure.
func (s *Reservations) Read(ctx context.Context, id uint64) (model.Reservation, error) {
	r, err := s.store.Reservations().Read(ctx, id)
	if err != nil {
		return model.Reservation{}, reservationLookup(err, id)
	}
	return r, nil
}

// Modify rewrites the booking fields of a reservation that is still
// booked.  The payload goes through the full validation pipeline first.
func (s *Reservations) Modify(ctx context.Context, id uint64, in ReservationInput) (model.Reservation, error) {
	r, err := s.validator.Validate(in)
	if err != nil {
		s.metrics.ValidationFailed(string(KindOf(err)))
		return model.Reservation{}, err
	}
	unlock, err := s.locker.Lock(ctx, reservationKey(id))
	if err != nil {
		return model.Reservation{}, storeError("lock", err)
	}
	defer unlock()

	var out model.Reservation
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		current, err := tx.Reservations().Read(ctx, id)
		if err != nil {
			return reservationLookup(err, id)
		}
		if current.Status != model.StatusBooked {
			return fieldError(KindInvalidInitialStatus, "status",
				"Reservation with %s status cannot be modified.", current.Status)
		}
		if out, err = tx.Reservations().Modify(ctx, id, r); err != nil {
			return storeError("modify reservation", err)
		}
		return nil
	})
	if err != nil {
		return model.Reservation{}, storeError("modify reservation", err)
	}
	return out, nil
}

// UpdateStatus moves a reservation along the state machine.
func (s *Reservations) UpdateStatus(ctx context.Context, id uint64, status string) (model.Reservation, error) {
	unlock, err := s.locker.Lock(ctx, reservationKey(id))
	if err != nil {
		return model.Reservation{}, storeError("lock", err)
	}
	release := releaseOnce(unlock)
	defer release()

	var (
		out  model.Reservation
		from model.Status
	)
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		current, err := tx.Reservations().Read(ctx, id)
		if err != nil {
			return reservationLookup(err, id)
		}
		next, err := Transition(current, strings.TrimSpace(status))
		if err != nil {
			return err
		}
		from = current.Status
		if out, err = tx.Reservations().Update(ctx, id, next.Status); err != nil {
			return storeError("update reservation", err)
		}
		return nil
	})
	release()
	if err != nil {
		return model.Reservation{}, storeError("update reservation", err)
	}
	s.metrics.Transition(string(from), string(out.Status))
	s.log.WithFields(log.Fields{"reservation_id": id, "from": from, "to": out.Status}).Info("reservation status changed")
	s.publish(ctx, queue.EventFor(out.Status), out)
	return out, nil
}

// List searches by mobile number when one is given and otherwise lists the
// active reservations of date.  An empty date lists nothing.
func (s *Reservations) List(ctx context.Context, date, mobileNumber string) ([]model.Reservation, error) {
	var (
		out []model.Reservation
		err error
	)
	if mobileNumber = strings.TrimSpace(mobileNumber); mobileNumber != "" {
		// A needle made only of formatting characters would match every row.
		if repository.StripMobile(mobileNumber) == "" {
			return []model.Reservation{}, nil
		}
		out, err = s.store.Reservations().Search(ctx, mobileNumber)
	} else {
		date = strings.TrimSpace(date)
		if date != "" {
			if _, perr := time.Parse(dateLayout, date); perr != nil {
				return nil, fieldError(KindInvalidDate, "date", "date is not a valid date.")
			}
		}
		out, err = s.store.Reservations().ListByDate(ctx, date)
	}
	if err != nil {
		return nil, storeError("list reservations", err)
	}
	return out, nil
}

func (s *Reservations) publish(ctx context.Context, kind string, r model.Reservation) {
	if s.events == nil || kind == "" {
		return
	}
	if err := s.events.Publish(ctx, queue.NewReservationEvent(kind, r, nil)); err != nil {
		s.log.WithError(err).WithField("event", kind).Warn("publish failed")
	}
}

func reservationLookup(err error, id uint64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return newError(KindNotFound, "Reservation_id %d does not exist.", id)
	}
	return storeError("read reservation", err)
}
