// Package router registers the HTTP routes and their middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-reservation/internal/config"
	"github.com/iliyamo/restaurant-reservation/internal/handler"
	"github.com/iliyamo/restaurant-reservation/internal/middleware"
)

// Deps carries what the routes need.  Redis may be nil, which turns the
// cache and the rate limiter off.  An empty JWTSecret leaves the staff
// routes open.
type Deps struct {
	Reservations *handler.ReservationHandler
	Tables       *handler.TableHandler
	Redis        *redis.Client
	Cache        config.CacheConfig
	RateLimit    config.RateLimitConfig
	JWTSecret    string
}

// RegisterRoutes wires every endpoint onto e.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	cache := middleware.NewRedisCache(d.Cache, d.Redis)
	invalidate := middleware.InvalidateCache(d.Cache, d.Redis)
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis)

	// Host-stand operations.  Without a secret they are left open so the
	// service can run in development without minting tokens.
	staff := []echo.MiddlewareFunc{invalidate}
	if d.JWTSecret != "" {
		staff = append([]echo.MiddlewareFunc{
			middleware.JWTAuth(d.JWTSecret),
			middleware.RequireRole(middleware.RoleStaff),
		}, staff...)
	}

	r := e.Group("/reservations")
	r.GET("", d.Reservations.List, cache)
	r.POST("", d.Reservations.Create, limit, invalidate)
	r.GET("/:reservation_id", d.Reservations.Read, cache)
	r.PUT("/:reservation_id", d.Reservations.Modify, invalidate)
	r.PUT("/:reservation_id/status", d.Reservations.UpdateStatus, staff...)

	t := e.Group("/tables")
	t.GET("", d.Tables.List, cache)
	t.POST("", d.Tables.Create, staff...)
	t.PUT("/:table_id/seat", d.Tables.Seat, staff...)
	t.DELETE("/:table_id/seat", d.Tables.Unseat, staff...)
}
