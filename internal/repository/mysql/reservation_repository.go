package mysql

import (
	"context"
	"strings"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// ReservationRepo provides data access to the reservations table.  Dates and
// times are stored in DATE and TIME columns and formatted back to
// YYYY-MM-DD and HH:MM on the way out so the rest of the code only deals
// with the wire representation.
type ReservationRepo struct {
	q         queryer
	forUpdate bool
}

const reservationColumns = `reservation_id, first_name, last_name, mobile_number,
	DATE_FORMAT(reservation_date, '%Y-%m-%d') AS reservation_date,
	DATE_FORMAT(reservation_time, '%H:%i') AS reservation_time,
	people, status, created_at, updated_at`

// Create inserts a reservation and returns the stored row.
func (r *ReservationRepo) Create(ctx context.Context, res model.Reservation) (model.Reservation, error) {
	const q = `INSERT INTO reservations
		(first_name, last_name, mobile_number, reservation_date, reservation_time, people, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.q.ExecContext(ctx, q,
		res.FirstName, res.LastName, res.MobileNumber,
		res.ReservationDate, res.ReservationTime, res.People, res.Status,
	)
	if err != nil {
		return model.Reservation{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Reservation{}, err
	}
	return r.get(ctx, uint64(id), false)
}

// Read returns a reservation by id.  Inside a transaction the row stays
// locked until commit or rollback.
func (r *ReservationRepo) Read(ctx context.Context, id uint64) (model.Reservation, error) {
	return r.get(ctx, id, r.forUpdate)
}

func (r *ReservationRepo) get(ctx context.Context, id uint64, lock bool) (model.Reservation, error) {
	var res model.Reservation
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE reservation_id = ?` + lockClause(lock)
	if err := r.q.GetContext(ctx, &res, q, id); err != nil {
		return model.Reservation{}, notFound(err)
	}
	return res, nil
}

// Update sets the status column.
func (r *ReservationRepo) Update(ctx context.Context, id uint64, status model.Status) (model.Reservation, error) {
	result, err := r.q.ExecContext(ctx,
		`UPDATE reservations SET status = ?, updated_at = UTC_TIMESTAMP() WHERE reservation_id = ?`,
		status, id,
	)
	if err != nil {
		return model.Reservation{}, err
	}
	if err := affected(result); err != nil {
		return model.Reservation{}, err
	}
	return r.get(ctx, id, false)
}

// Modify overwrites the editable booking fields.
func (r *ReservationRepo) Modify(ctx context.Context, id uint64, res model.Reservation) (model.Reservation, error) {
	const q = `UPDATE reservations
		SET first_name = ?, last_name = ?, mobile_number = ?, reservation_date = ?,
		    reservation_time = ?, people = ?, updated_at = UTC_TIMESTAMP()
		WHERE reservation_id = ?`
	result, err := r.q.ExecContext(ctx, q,
		res.FirstName, res.LastName, res.MobileNumber,
		res.ReservationDate, res.ReservationTime, res.People, id,
	)
	if err != nil {
		return model.Reservation{}, err
	}
	if err := affected(result); err != nil {
		return model.Reservation{}, err
	}
	return r.get(ctx, id, false)
}

// Search matches on the digits of the mobile number, ignoring the usual
// formatting characters on both sides.
func (r *ReservationRepo) Search(ctx context.Context, mobileNumber string) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE REPLACE(REPLACE(REPLACE(REPLACE(mobile_number, '(', ''), ')', ''), '-', ''), ' ', '') LIKE ? ESCAPE '!'
		ORDER BY reservation_date, reservation_time, reservation_id`
	out := make([]model.Reservation, 0)
	if err := r.q.SelectContext(ctx, &out, q, containsPattern(repository.StripMobile(mobileNumber))); err != nil {
		return nil, err
	}
	return out, nil
}

// likeEscaper escapes the LIKE wildcards and the escape character itself so
// a needle only ever matches literally.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a LIKE pattern matching needle anywhere in the value.
func containsPattern(needle string) string {
	return "%" + likeEscaper.Replace(needle) + "%"
}

// ListByDate returns the still-active reservations of one day.
func (r *ReservationRepo) ListByDate(ctx context.Context, date string) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE reservation_date = ? AND status NOT IN (?, ?)
		ORDER BY reservation_time, reservation_id`
	out := make([]model.Reservation, 0)
	if strings.TrimSpace(date) == "" {
		return out, nil
	}
	if err := r.q.SelectContext(ctx, &out, q, date, model.StatusFinished, model.StatusCancelled); err != nil {
		return nil, err
	}
	return out, nil
}

// Finish marks the reservation finished.
func (r *ReservationRepo) Finish(ctx context.Context, id uint64) (model.Reservation, error) {
	return r.Update(ctx, id, model.StatusFinished)
}

var _ repository.ReservationStore = (*ReservationRepo)(nil)
