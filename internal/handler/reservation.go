package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/service"
)

// ReservationService is the slice of service.Reservations the handlers use.
type ReservationService interface {
	Create(ctx context.Context, in service.ReservationInput) (model.Reservation, error)
	Read(ctx context.Context, id uint64) (model.Reservation, error)
	Modify(ctx context.Context, id uint64, in service.ReservationInput) (model.Reservation, error)
	UpdateStatus(ctx context.Context, id uint64, status string) (model.Reservation, error)
	List(ctx context.Context, date, mobileNumber string) ([]model.Reservation, error)
}

// ReservationHandler serves /reservations.
type ReservationHandler struct {
	svc ReservationService
}

// NewReservationHandler panics on a nil service.
func NewReservationHandler(svc ReservationService) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{svc: svc}
}

// List handles GET /reservations?date=YYYY-MM-DD or ?mobile_number=...
func (h *ReservationHandler) List(c echo.Context) error {
	out, err := h.svc.List(c.Request().Context(), c.QueryParam("date"), c.QueryParam("mobile_number"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		out = []model.Reservation{} // encode as [] rather than null
	}
	return respondData(c, http.StatusOK, out)
}

// Create handles POST /reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	in, ok, err := bindReservation(c)
	if !ok {
		return err
	}
	r, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusCreated, r)
}

// Read handles GET /reservations/:reservation_id.
func (h *ReservationHandler) Read(c echo.Context) error {
	id, ok, err := parseReservationID(c)
	if !ok {
		return err
	}
	r, err := h.svc.Read(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, r)
}

// Modify handles PUT /reservations/:reservation_id.
func (h *ReservationHandler) Modify(c echo.Context) error {
	id, ok, err := parseReservationID(c)
	if !ok {
		return err
	}
	in, ok, err := bindReservation(c)
	if !ok {
		return err
	}
	r, err := h.svc.Modify(c.Request().Context(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, r)
}

// UpdateStatus handles PUT /reservations/:reservation_id/status with body
// {"data": {"status": "..."}}.
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
	id, ok, err := parseReservationID(c)
	if !ok {
		return err
	}
	var body envelope[struct {
		Status string `json:"status"`
	}]
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Data == nil {
		return badRequest(c, "data is missing.")
	}
	r, err := h.svc.UpdateStatus(c.Request().Context(), id, body.Data.Status)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, r)
}

// bindReservation reads {"data": {...}}.  When ok is false the error
// response has already been chosen and err is what the handler returns.
func bindReservation(c echo.Context) (service.ReservationInput, bool, error) {
	var body envelope[service.ReservationInput]
	if err := c.Bind(&body); err != nil {
		return service.ReservationInput{}, false, badRequest(c, "invalid request body")
	}
	if body.Data == nil {
		return service.ReservationInput{}, false, badRequest(c, "data is missing.")
	}
	return *body.Data, true, nil
}

// parseReservationID parses the path parameter.  Ids that are not positive
// integers cannot exist and are reported as not found.
func parseReservationID(c echo.Context) (uint64, bool, error) {
	raw := c.Param("reservation_id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false, c.JSON(http.StatusNotFound, echo.Map{"error": "Reservation_id " + raw + " does not exist."})
	}
	return id, true, nil
}
