package mysql

import (
	"context"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// TableRepo provides data access to the tables table.
type TableRepo struct {
	q         queryer
	forUpdate bool
}

const tableColumns = `table_id, table_name, capacity, reservation_id, created_at, updated_at`

// Create inserts a table.  A reservation_id supplied at creation is stored
// as-is.
func (r *TableRepo) Create(ctx context.Context, t model.Table) (model.Table, error) {
	result, err := r.q.ExecContext(ctx,
		`INSERT INTO tables (table_name, capacity, reservation_id) VALUES (?, ?, ?)`,
		t.TableName, t.Capacity, t.ReservationID,
	)
	if err != nil {
		return model.Table{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return model.Table{}, err
	}
	return r.get(ctx, uint64(id), false)
}

// Read returns a table by id, locking the row inside a transaction.
func (r *TableRepo) Read(ctx context.Context, id uint64) (model.Table, error) {
	return r.get(ctx, id, r.forUpdate)
}

func (r *TableRepo) get(ctx context.Context, id uint64, lock bool) (model.Table, error) {
	var t model.Table
	q := `SELECT ` + tableColumns + ` FROM tables WHERE table_id = ?` + lockClause(lock)
	if err := r.q.GetContext(ctx, &t, q, id); err != nil {
		return model.Table{}, notFound(err)
	}
	return t, nil
}

// Update binds or frees the table.
func (r *TableRepo) Update(ctx context.Context, id uint64, reservationID *uint64) (model.Table, error) {
	result, err := r.q.ExecContext(ctx,
		`UPDATE tables SET reservation_id = ?, updated_at = UTC_TIMESTAMP() WHERE table_id = ?`,
		reservationID, id,
	)
	if err != nil {
		return model.Table{}, err
	}
	if err := affected(result); err != nil {
		return model.Table{}, err
	}
	return r.get(ctx, id, false)
}

// List returns every table ordered by name.
func (r *TableRepo) List(ctx context.Context) ([]model.Table, error) {
	out := make([]model.Table, 0)
	q := `SELECT ` + tableColumns + ` FROM tables ORDER BY table_name, table_id`
	if err := r.q.SelectContext(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}

var _ repository.TableStore = (*TableRepo)(nil)
