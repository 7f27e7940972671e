package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-reservation/internal/model"
	"github.com/iliyamo/restaurant-reservation/internal/service"
)

// TableService is the slice of service.Tables the handlers use.
type TableService interface {
	Create(ctx context.Context, in service.TableInput) (model.Table, error)
	List(ctx context.Context) ([]model.Table, error)
}

// Seater is the slice of service.Allocator the handlers use.
type Seater interface {
	Assign(ctx context.Context, tableID, reservationID uint64) (model.Table, error)
	Unassign(ctx context.Context, tableID uint64) (model.Table, error)
}

// TableHandler serves /tables and the seating endpoints.
type TableHandler struct {
	tables TableService
	seats  Seater
}

func NewTableHandler(tables TableService, seats Seater) *TableHandler {
	if tables == nil || seats == nil {
		panic("nil service passed to NewTableHandler")
	}
	return &TableHandler{tables: tables, seats: seats}
}

// List handles GET /tables.
func (h *TableHandler) List(c echo.Context) error {
	out, err := h.tables.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		out = []model.Table{}
	}
	return respondData(c, http.StatusOK, out)
}

// Create handles POST /tables with body {"data": {"table_name", "capacity"}}.
func (h *TableHandler) Create(c echo.Context) error {
	var body envelope[service.TableInput]
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Data == nil {
		return badRequest(c, "data is missing.")
	}
	t, err := h.tables.Create(c.Request().Context(), *body.Data)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusCreated, t)
}

// Seat handles PUT /tables/:table_id/seat with body
// {"data": {"reservation_id": N}}.
func (h *TableHandler) Seat(c echo.Context) error {
	tableID, ok, err := parseTableID(c)
	if !ok {
		return err
	}
	var body envelope[struct {
		ReservationID *uint64 `json:"reservation_id"`
	}]
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "reservation_id must be a positive integer.")
	}
	if body.Data == nil {
		return badRequest(c, "data is missing.")
	}
	if body.Data.ReservationID == nil {
		return badRequest(c, "reservation_id is missing.")
	}
	t, err := h.seats.Assign(c.Request().Context(), tableID, *body.Data.ReservationID)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, t)
}

// Unseat handles DELETE /tables/:table_id/seat.
func (h *TableHandler) Unseat(c echo.Context) error {
	tableID, ok, err := parseTableID(c)
	if !ok {
		return err
	}
	t, err := h.seats.Unassign(c.Request().Context(), tableID)
	if err != nil {
		return respondError(c, err)
	}
	return respondData(c, http.StatusOK, t)
}

func parseTableID(c echo.Context) (uint64, bool, error) {
	raw := c.Param("table_id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false, c.JSON(http.StatusNotFound, echo.Map{"error": "Table " + raw + " not found."})
	}
	return id, true, nil
}
