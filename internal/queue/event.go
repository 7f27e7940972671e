// Package queue defines the reservation events exchanged over RabbitMQ
// together with the publisher and the log-writing consumer.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/restaurant-reservation/internal/model"
)

// Event kinds.  The kind doubles as the AMQP message type.
const (
	EventReservationCreated   = "reservation.created"
	EventReservationSeated    = "reservation.seated"
	EventReservationFinished  = "reservation.finished"
	EventReservationCancelled = "reservation.cancelled"
)

// ReservationEvent is published whenever a reservation changes state.  It
// carries enough of the reservation for consumers to log or notify without
// querying the database.
type ReservationEvent struct {
	ID              string `json:"event_id"`
	Kind            string `json:"kind"`
	ReservationID   uint64 `json:"reservation_id"`
	TableID         uint64 `json:"table_id,omitempty"`
	TableName       string `json:"table_name,omitempty"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	MobileNumber    string `json:"mobile_number"`
	ReservationDate string `json:"reservation_date"`
	ReservationTime string `json:"reservation_time"`
	People          int    `json:"people"`
	Status          string `json:"status"`
	OccurredAt      string `json:"occurred_at"`
}

// NewReservationEvent builds an event for r.  t is set for seating events.
func NewReservationEvent(kind string, r model.Reservation, t *model.Table) ReservationEvent {
	ev := ReservationEvent{
		ID:              uuid.NewString(),
		Kind:            kind,
		ReservationID:   r.ID,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		MobileNumber:    r.MobileNumber,
		ReservationDate: r.ReservationDate,
		ReservationTime: r.ReservationTime,
		People:          r.People,
		Status:          string(r.Status),
		OccurredAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if t != nil {
		ev.TableID = t.ID
		ev.TableName = t.TableName
	}
	return ev
}

// EventFor returns the event kind announcing a move into status, or ""
// for booked, which is only ever announced on creation.
func EventFor(status model.Status) string {
	switch status {
	case model.StatusSeated:
		return EventReservationSeated
	case model.StatusFinished:
		return EventReservationFinished
	case model.StatusCancelled:
		return EventReservationCancelled
	}
	return ""
}
