package model

import "time"

// Status is the lifecycle state of a reservation.  Values outside the four
// constants below are never stored; ParseStatus is the only way to turn
// user-supplied text into a Status.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusSeated    Status = "seated"
	StatusFinished  Status = "finished"
	StatusCancelled Status = "cancelled"
)

// ParseStatus maps raw text onto a Status.  The boolean is false for
// anything that is not one of the known states.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusBooked, StatusSeated, StatusFinished, StatusCancelled:
		return Status(s), true
	}
	return "", false
}

// Terminal reports whether no further lifecycle change is expected.
func (s Status) Terminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

// Reservation is a booking for a party of People at a date and time.
//
// Fields:
//
//	ID             : reservations.reservation_id, assigned by the store.
//	ReservationDate: calendar date, formatted YYYY-MM-DD.
//	ReservationTime: time of day, formatted HH:MM.
//	Status         : one of booked, seated, finished, cancelled.
type Reservation struct {
	ID              uint64    `json:"reservation_id" db:"reservation_id"`
	FirstName       string    `json:"first_name" db:"first_name"`
	LastName        string    `json:"last_name" db:"last_name"`
	MobileNumber    string    `json:"mobile_number" db:"mobile_number"`
	ReservationDate string    `json:"reservation_date" db:"reservation_date"`
	ReservationTime string    `json:"reservation_time" db:"reservation_time"`
	People          int       `json:"people" db:"people"`
	Status          Status    `json:"status" db:"status"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
