package model

import "time"

// Table is a seating resource with a fixed capacity.  ReservationID points
// back at the reservation currently seated there and is nil while the table
// is free.  The pointer is not an ownership relation: finishing or cancelling
// a reservation never deletes a table.
type Table struct {
	ID            uint64    `json:"table_id" db:"table_id"`
	TableName     string    `json:"table_name" db:"table_name"`
	Capacity      int       `json:"capacity" db:"capacity"`
	ReservationID *uint64   `json:"reservation_id" db:"reservation_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Occupied reports whether a reservation is currently bound to the table.
func (t Table) Occupied() bool { return t.ReservationID != nil }
