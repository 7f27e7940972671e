package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-reservation/internal/config"
	"github.com/iliyamo/restaurant-reservation/internal/handler"
	"github.com/iliyamo/restaurant-reservation/internal/lock"
	"github.com/iliyamo/restaurant-reservation/internal/middleware"
	"github.com/iliyamo/restaurant-reservation/internal/queue"
	"github.com/iliyamo/restaurant-reservation/internal/repository/memory"
	"github.com/iliyamo/restaurant-reservation/internal/service"
	"github.com/iliyamo/restaurant-reservation/internal/utils"
)

const secret = "router-secret"

type api struct {
	t     *testing.T
	e     *echo.Echo
	token string
}

func newAPI(t *testing.T) *api { return newAPIWith(t, nil) }

// newCachedAPI runs the routes against an in-memory Redis so the response
// cache and its invalidation are live.
func newCachedAPI(t *testing.T) *api {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return newAPIWith(t, rdb)
}

func newAPIWith(t *testing.T, rdb *redis.Client) *api {
	rules := service.DefaultRules()
	rules.Location = time.UTC
	now := func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }

	store := memory.NewStore()
	locker := lock.NewKeyed()
	events := queue.Discard{}
	reservations := service.NewReservations(store, service.NewValidator(rules, now), locker, events, nil, nil)
	tables := service.NewTables(store, nil)
	allocator := service.NewAllocator(store, locker, events, nil, nil)

	e := echo.New()
	RegisterRoutes(e, Deps{
		Reservations: handler.NewReservationHandler(reservations),
		Tables:       handler.NewTableHandler(tables, allocator),
		Redis:        rdb,
		Cache: config.CacheConfig{
			Enabled:     true,
			Methods:     map[string]bool{http.MethodGet: true},
			TTL:         time.Minute,
			KeyStrategy: "route_query",
			Prefix:      "cache",
		},
		JWTSecret: secret,
	})
	tok, err := utils.NewAccessToken(secret, "host", middleware.RoleStaff, 5)
	require.NoError(t, err)
	return &api{t: t, e: e, token: tok.Token}
}

func (a *api) call(method, path, body string, staff bool) (int, map[string]any) {
	a.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if staff {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", body)
	return d
}

const booking = `{"data":{"first_name":"Ada","last_name":"Lovelace","mobile_number":"555-010-2030",
	"reservation_date":"2026-10-16","reservation_time":"18:00","people":%s}}`

func bookingBody(people string) string { return strings.Replace(booking, "%s", people, 1) }

func TestHealthz(t *testing.T) {
	a := newAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestReservationLifecycle(t *testing.T) {
	a := newAPI(t)

	code, body := a.call(http.MethodPost, "/reservations", bookingBody("2"), false)
	require.Equal(t, http.StatusCreated, code, body)
	created := data(t, body)
	assert.Equal(t, float64(1), created["reservation_id"])
	assert.Equal(t, "booked", created["status"])

	code, body = a.call(http.MethodGet, "/reservations/1", "", false)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Ada", data(t, body)["first_name"])

	code, body = a.call(http.MethodGet, "/reservations?date=2026-10-16", "", false)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 1)

	code, body = a.call(http.MethodPut, "/reservations/1", bookingBody("5"), false)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(5), data(t, body)["people"])

	code, _ = a.call(http.MethodPut, "/reservations/1/status", `{"data":{"status":"cancelled"}}`, false)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body = a.call(http.MethodPut, "/reservations/1/status", `{"data":{"status":"cancelled"}}`, true)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "cancelled", data(t, body)["status"])

	code, body = a.call(http.MethodPut, "/reservations/1/status", `{"data":{"status":"seated"}}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.NotEmpty(t, body["error"])

	code, body = a.call(http.MethodGet, "/reservations?date=2026-10-16", "", false)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, body["data"])
}

func TestReservationErrors(t *testing.T) {
	a := newAPI(t)

	code, body := a.call(http.MethodPost, "/reservations", strings.Replace(bookingBody("2"), "2026-10-16", "2026-10-20", 1), false)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Location is closed on Tuesdays", body["error"])

	code, body = a.call(http.MethodPost, "/reservations", bookingBody(`"two"`), false)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "people")

	code, body = a.call(http.MethodPost, "/reservations", `{}`, false)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "data is missing.", body["error"])

	code, body = a.call(http.MethodGet, "/reservations/42", "", false)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Reservation_id 42 does not exist.", body["error"])

	code, _ = a.call(http.MethodGet, "/reservations/abc", "", false)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.call(http.MethodGet, "/reservations?date=tomorrow", "", false)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestEmptyStatusIsUnknown(t *testing.T) {
	a := newAPI(t)
	code, _ := a.call(http.MethodPost, "/reservations", bookingBody("2"), false)
	require.Equal(t, http.StatusCreated, code)

	for _, payload := range []string{`{"data":{"status":""}}`, `{"data":{}}`} {
		code, body := a.call(http.MethodPut, "/reservations/1/status", payload, true)
		assert.Equal(t, http.StatusBadRequest, code, payload)
		assert.Equal(t, "Status unknown.", body["error"], payload)
	}
}

func TestCachedReadsStayPerReservation(t *testing.T) {
	a := newCachedAPI(t)

	code, _ := a.call(http.MethodPost, "/reservations", bookingBody("2"), false)
	require.Equal(t, http.StatusCreated, code)
	code, _ = a.call(http.MethodPost, "/reservations", strings.Replace(bookingBody("4"), "Ada", "Grace", 1), false)
	require.Equal(t, http.StatusCreated, code)

	for i := 0; i < 2; i++ {
		_, body := a.call(http.MethodGet, "/reservations/1", "", false)
		assert.Equal(t, "Ada", data(t, body)["first_name"])
		_, body = a.call(http.MethodGet, "/reservations/2", "", false)
		assert.Equal(t, "Grace", data(t, body)["first_name"])
	}

	code, _ = a.call(http.MethodPut, "/reservations/1/status", `{"data":{"status":"cancelled"}}`, true)
	require.Equal(t, http.StatusOK, code)

	_, body := a.call(http.MethodGet, "/reservations/1", "", false)
	assert.Equal(t, "cancelled", data(t, body)["status"])
	_, body = a.call(http.MethodGet, "/reservations/2", "", false)
	assert.Equal(t, "booked", data(t, body)["status"])
}

func TestSeatingFlow(t *testing.T) {
	a := newAPI(t)

	code, _ := a.call(http.MethodPost, "/tables", `{"data":{"table_name":"Bar #1","capacity":4}}`, false)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := a.call(http.MethodPost, "/tables", `{"data":{"table_name":"Bar #1","capacity":4}}`, true)
	require.Equal(t, http.StatusCreated, code, body)
	assert.Nil(t, data(t, body)["reservation_id"])

	code, body = a.call(http.MethodPost, "/tables", `{"data":{"table_name":"X","capacity":4}}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "table_name")

	_, _ = a.call(http.MethodPost, "/reservations", bookingBody("3"), false)
	_, _ = a.call(http.MethodPost, "/reservations", bookingBody("2"), false)
	_, _ = a.call(http.MethodPost, "/reservations", bookingBody("9"), false)

	code, body = a.call(http.MethodPut, "/tables/1/seat", `{"data":{"reservation_id":3}}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Table does not have enough capacity.", body["error"])

	code, body = a.call(http.MethodPut, "/tables/1/seat", `{"data":{}}`, true)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "reservation_id is missing.", body["error"])

	code, body = a.call(http.MethodPut, "/tables/1/seat", `{"data":{"reservation_id":1}}`, true)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, float64(1), data(t, body)["reservation_id"])

	code, _ = a.call(http.MethodPut, "/tables/1/seat", `{"data":{"reservation_id":2}}`, true)
	assert.Equal(t, http.StatusBadRequest, code)

	_, body = a.call(http.MethodGet, "/reservations/1", "", false)
	assert.Equal(t, "seated", data(t, body)["status"])

	code, body = a.call(http.MethodDelete, "/tables/1/seat", "", true)
	require.Equal(t, http.StatusOK, code, body)
	assert.Nil(t, data(t, body)["reservation_id"])

	_, body = a.call(http.MethodGet, "/reservations/1", "", false)
	assert.Equal(t, "finished", data(t, body)["status"])

	code, _ = a.call(http.MethodDelete, "/tables/1/seat", "", true)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.call(http.MethodDelete, "/tables/7/seat", "", true)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = a.call(http.MethodGet, "/tables", "", false)
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["data"], 1)
}
