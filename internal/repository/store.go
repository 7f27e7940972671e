package repository

import (
	"context"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// ReservationStore persists reservations.  Read returns ErrNotFound when no
// row matches the id.
type ReservationStore interface {
	Create(ctx context.Context, r model.Reservation) (model.Reservation, error)
	Read(ctx context.Context, id uint64) (model.Reservation, error)
	// Update replaces the status of a reservation.
	Update(ctx context.Context, id uint64, status model.Status) (model.Reservation, error)
	// Modify overwrites the editable booking fields (names, mobile number,
	// date, time, people).  The status column is left untouched.
	Modify(ctx context.Context, id uint64, r model.Reservation) (model.Reservation, error)
	// Search returns reservations whose mobile number contains the given
	// digits once formatting characters are stripped, ordered by date.
	Search(ctx context.Context, mobileNumber string) ([]model.Reservation, error)
	// ListByDate returns the reservations of one day that are neither
	// finished nor cancelled, ordered by time.
	ListByDate(ctx context.Context, date string) ([]model.Reservation, error)
	// Finish marks a reservation finished.
	Finish(ctx context.Context, id uint64) (model.Reservation, error)
}

// TableStore persists tables.  Read returns ErrNotFound when no row
// matches the id.
type TableStore interface {
	Create(ctx context.Context, t model.Table) (model.Table, error)
	Read(ctx context.Context, id uint64) (model.Table, error)
	// Update binds the table to reservationID, or frees it when nil.
	Update(ctx context.Context, id uint64, reservationID *uint64) (model.Table, error)
	List(ctx context.Context) ([]model.Table, error)
}

// Store groups both stores and runs units of work atomically.  Inside fn
// the tx argument must be used for every read and write; when fn returns
// an error nothing it wrote is kept.  Reads performed through tx may lock
// the rows they return until the unit of work ends.
type Store interface {
	Reservations() ReservationStore
	Tables() TableStore
	InTx(ctx context.Context, fn func(tx Store) error) error
}
