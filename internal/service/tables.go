package service

import (
	"context"
	"math"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/repository"
)

// TableInput is the payload of a table creation request.  Capacity is
// untyped for the same reason as ReservationInput.People.  Tables are always
// created free; only the Allocator binds them.
type TableInput struct {
	TableName string `json:"table_name" validate:"required,min=2"`
	Capacity  any    `json:"capacity" validate:"required"`
}

// Tables manages the seating resources themselves.
type Tables struct {
	store repository.Store
	log   *log.Entry
}

func NewTables(store repository.Store, logger *log.Entry) *Tables {
	if store == nil {
		panic("nil store passed to NewTables")
	}
	if logger == nil {
		logger = log.WithField("component", "tables")
	}
	return &Tables{store: store, log: logger}
}

// Create validates and stores a table.
func (s *Tables) Create(ctx context.Context, in TableInput) (model.Table, error) {
	t, err := validateTable(in)
	if err != nil {
		return model.Table{}, err
	}
	created, err := s.store.Tables().Create(ctx, t)
	if err != nil {
		return model.Table{}, storeError("create table", err)
	}
	s.log.WithFields(log.Fields{"table_id": created.ID, "capacity": created.Capacity}).Info("table created")
	return created, nil
}

// List returns every table ordered by name.
func (s *Tables) List(ctx context.Context) ([]model.Table, error) {
	out, err := s.store.Tables().List(ctx)
	if err != nil {
		return nil, storeError("list tables", err)
	}
	return out, nil
}

// validateTable reports missing fields first, then a bad capacity, then a
// short name.
func validateTable(in TableInput) (model.Table, error) {
	in.TableName = strings.TrimSpace(in.TableName)
	failures := tagFailures(in)
	if fe := firstWithTag(failures, "required"); fe != nil {
		return model.Table{}, fieldError(KindMissingField, fe.Field(), "%s is missing.", fe.Field())
	}
	capacity, ok := in.Capacity.(float64)
	if n, isInt := in.Capacity.(int); isInt {
		capacity, ok = float64(n), true
	}
	if !ok || capacity < 1 || capacity != math.Trunc(capacity) || capacity > math.MaxInt32 {
		return model.Table{}, fieldError(KindInvalidType, "capacity", "capacity: Capacity must be a number greater than 0.")
	}
	if fe := firstWithTag(failures, "min"); fe != nil {
		return model.Table{}, fieldError(KindInvalidValue, fe.Field(), "table_name: Table name must be at least two characters long.")
	}
	return model.Table{TableName: in.TableName, Capacity: int(capacity)}, nil
}
