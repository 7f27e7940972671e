// Package mysql implements the repository contracts on top of MySQL using
// sqlx.  A Store created by NewStore talks to the connection pool; the Store
// handed to an InTx callback is bound to a single transaction and reads rows
// with SELECT ... FOR UPDATE so concurrent units of work on the same table or
// reservation queue behind each other.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// Store is the MySQL implementation of repository.Store.
type Store struct {
	db *sqlx.DB
	q  queryer
	// forUpdate is set on transaction-bound stores.
	forUpdate bool
}

// NewStore returns a Store backed by the given pool.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db, q: db}
}

// DB exposes the underlying pool, e.g. for health checks.
func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) Reservations() repository.ReservationStore {
	return &ReservationRepo{q: s.q, forUpdate: s.forUpdate}
}

func (s *Store) Tables() repository.TableStore {
	return &TableRepo{q: s.q, forUpdate: s.forUpdate}
}

// InTx runs fn inside a database transaction.  The transaction is committed
// when fn returns nil and rolled back otherwise.  Calling InTx on a store that
// is already bound to a transaction reuses it.
func (s *Store) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if s.forUpdate {
		return fn(s)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&Store{db: s.db, q: tx, forUpdate: true}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// notFound maps sql.ErrNoRows onto the repository sentinel.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

func lockClause(forUpdate bool) string {
	if forUpdate {
		return " FOR UPDATE"
	}
	return ""
}

var _ repository.Store = (*Store)(nil)
