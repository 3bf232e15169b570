package middleware

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/homeservices/marketplace/internal/core/domain"
)

// RBAC lets a request through only when the session's effective role is one
// of roles. Anonymous visitors have no role and are always refused.
func RBAC(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(KeyRole).(string)
			if !ok || !slices.Contains(roles, domain.Role(role)) {
				return echo.NewHTTPError(http.StatusForbidden, "this action is not available for your account type")
			}
			return next(c)
		}
	}
}
