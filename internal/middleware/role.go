package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RoleStaff is the role claim carried by host-stand tokens.
const RoleStaff = "STAFF"

// RequireRole rejects requests whose "role" context value, set by JWTAuth,
// is not one of roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
