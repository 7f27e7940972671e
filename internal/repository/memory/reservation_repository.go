package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

type reservationRepo struct {
	s *Store
}

func (r *reservationRepo) Create(_ context.Context, res model.Reservation) (model.Reservation, error) {
	defer r.s.lock()()

	d := r.s.data
	d.nextResID++
	now := r.s.now()
	res.ID = d.nextResID
	res.CreatedAt = now
	res.UpdatedAt = now
	d.reservations[res.ID] = res
	return res, nil
}

func (r *reservationRepo) Read(_ context.Context, id uint64) (model.Reservation, error) {
	defer r.s.lock()()

	res, ok := r.s.data.reservations[id]
	if !ok {
		return model.Reservation{}, repository.ErrNotFound
	}
	return res, nil
}

func (r *reservationRepo) Update(_ context.Context, id uint64, status model.Status) (model.Reservation, error) {
	defer r.s.lock()()

	res, ok := r.s.data.reservations[id]
	if !ok {
		return model.Reservation{}, repository.ErrNotFound
	}
	res.Status = status
	res.UpdatedAt = r.s.now()
	r.s.data.reservations[id] = res
	return res, nil
}

func (r *reservationRepo) Modify(_ context.Context, id uint64, in model.Reservation) (model.Reservation, error) {
	defer r.s.lock()()

	res, ok := r.s.data.reservations[id]
	if !ok {
		return model.Reservation{}, repository.ErrNotFound
	}
	res.FirstName = in.FirstName
	res.LastName = in.LastName
	res.MobileNumber = in.MobileNumber
	res.ReservationDate = in.ReservationDate
	res.ReservationTime = in.ReservationTime
	res.People = in.People
	res.UpdatedAt = r.s.now()
	r.s.data.reservations[id] = res
	return res, nil
}

func (r *reservationRepo) Search(_ context.Context, mobileNumber string) ([]model.Reservation, error) {
	defer r.s.lock()()

	needle := repository.StripMobile(mobileNumber)
	out := make([]model.Reservation, 0)
	for _, res := range r.s.data.reservations {
		if strings.Contains(repository.StripMobile(res.MobileNumber), needle) {
			out = append(out, res)
		}
	}
	sortReservations(out)
	return out, nil
}

func (r *reservationRepo) ListByDate(_ context.Context, date string) ([]model.Reservation, error) {
	defer r.s.lock()()

	out := make([]model.Reservation, 0)
	for _, res := range r.s.data.reservations {
		if res.ReservationDate != date || res.Status.Terminal() {
			continue
		}
		out = append(out, res)
	}
	sortReservations(out)
	return out, nil
}

func (r *reservationRepo) Finish(ctx context.Context, id uint64) (model.Reservation, error) {
	return r.Update(ctx, id, model.StatusFinished)
}

// sortReservations orders by date, then time, then id.  Dates and times are
// fixed-width strings so lexical order is chronological.
func sortReservations(rs []model.Reservation) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].ReservationDate != rs[j].ReservationDate {
			return rs[i].ReservationDate < rs[j].ReservationDate
		}
		if rs[i].ReservationTime != rs[j].ReservationTime {
			return rs[i].ReservationTime < rs[j].ReservationTime
		}
		return rs[i].ID < rs[j].ID
	})
}
