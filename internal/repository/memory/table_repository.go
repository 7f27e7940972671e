package memory

import (
	"context"
	"sort"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

type tableRepo struct {
	s *Store
}

func (r *tableRepo) Create(_ context.Context, t model.Table) (model.Table, error) {
	defer r.s.lock()()

	d := r.s.data
	d.nextTableID++
	now := r.s.now()
	t.ID = d.nextTableID
	t.ReservationID = copyID(t.ReservationID)
	t.CreatedAt = now
	t.UpdatedAt = now
	d.tables[t.ID] = t
	return withOwnID(t), nil
}

func (r *tableRepo) Read(_ context.Context, id uint64) (model.Table, error) {
	defer r.s.lock()()

	t, ok := r.s.data.tables[id]
	if !ok {
		return model.Table{}, repository.ErrNotFound
	}
	return withOwnID(t), nil
}

func (r *tableRepo) Update(_ context.Context, id uint64, reservationID *uint64) (model.Table, error) {
	defer r.s.lock()()

	t, ok := r.s.data.tables[id]
	if !ok {
		return model.Table{}, repository.ErrNotFound
	}
	t.ReservationID = copyID(reservationID)
	t.UpdatedAt = r.s.now()
	r.s.data.tables[id] = t
	return withOwnID(t), nil
}

func (r *tableRepo) List(_ context.Context) ([]model.Table, error) {
	defer r.s.lock()()

	out := make([]model.Table, 0, len(r.s.data.tables))
	for _, t := range r.s.data.tables {
		out = append(out, withOwnID(t))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TableName != out[j].TableName {
			return out[i].TableName < out[j].TableName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// withOwnID detaches the returned table from the stored pointer so callers
// cannot mutate store state through it.
func withOwnID(t model.Table) model.Table {
	t.ReservationID = copyID(t.ReservationID)
	return t
}
