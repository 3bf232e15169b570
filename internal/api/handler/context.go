package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/homeservices/marketplace/internal/api/middleware"
	"github.com/homeservices/marketplace/internal/core/domain"
)

// ctxBrowserID returns the browser id set by the Session middleware.
func ctxBrowserID(c echo.Context) string {
	id, _ := c.Get(middleware.KeyBrowserID).(string)
	return id
}

// ctxUser returns the session user, or nil for anonymous visitors.
func ctxUser(c echo.Context) *domain.User {
	u, _ := c.Get(middleware.KeyUser).(*domain.User)
	return u
}
