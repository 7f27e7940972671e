package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/restaurant-reservation/internal/service"
)

// statusFor maps a failure kind to its HTTP status.
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindStore, "":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// respondError writes {"error": message}.  Store and unclassified failures
// are logged and reported without their internals.
func respondError(c echo.Context, err error) error {
	kind := service.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"route":      c.Path(),
			"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
		}).Error("request failed")
		return c.JSON(status, echo.Map{"error": "internal server error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// envelope wraps every request and response payload.
type envelope[T any] struct {
	Data *T `json:"data"`
}

func respondData(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"data": data})
}
