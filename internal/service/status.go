package service

import "github.com/iliyamo/restaurant-reservation/internal/model"

// edge is a (current, requested) status pair.
type edge struct {
	from, to model.Status
}

// transitions lists every legal status change.  Anything absent is
// illegal, which includes every edge leaving finished or cancelled.
var transitions = map[edge]struct{}{
	{model.StatusBooked, model.StatusSeated}:    {},
	{model.StatusBooked, model.StatusCancelled}: {},
	{model.StatusSeated, model.StatusFinished}:  {},
	// Administrative override: close a booking that was never seated.
	{model.StatusBooked, model.StatusFinished}: {},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to model.Status) bool {
	_, ok := transitions[edge{from, to}]
	return ok
}

// Transition applies the requested status to r.  It fails with
// UnknownStatus when requested is not a known state and with
// IllegalTransition when the edge is not permitted.
func Transition(r model.Reservation, requested string) (model.Reservation, error) {
	to, ok := model.ParseStatus(requested)
	if !ok {
		return r, fieldError(KindUnknownStatus, "status", "Status unknown.")
	}
	if r.Status == model.StatusFinished {
		return r, newError(KindIllegalTransition, "Cannot change a reservation with a finished status.")
	}
	if !CanTransition(r.Status, to) {
		return r, newError(KindIllegalTransition, "Cannot change a reservation from %s to %s.", r.Status, to)
	}
	r.Status = to
	return r, nil
}
