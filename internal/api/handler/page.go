package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/homeservices/marketplace/internal/core/ports"
	"github.com/homeservices/marketplace/internal/web"
)

// Flash kinds.
const (
	flashSuccess = "success"
	flashError   = "error"
)

// pages assembles the common page data and manages flash messages.
type pages struct {
	flashes ports.FlashStore
	log     zerolog.Logger
}

// render pops the pending flash (unless one is given) and renders name.
func (p pages) render(c echo.Context, status int, name, title string, flash *ports.Flash, data any) error {
	if flash == nil {
		popped, err := p.flashes.Pop(c.Request().Context(), ctxBrowserID(c))
		if err != nil {
			p.log.Warn().Err(err).Msg("failed to read flash")
		}
		flash = popped
	}
	return c.Render(status, name, web.Page{
		Title: title,
		User:  ctxUser(c),
		Flash: flash,
		Data:  data,
	})
}

// redirect stores an optional flash for the next page and redirects with 303.
func (p pages) redirect(c echo.Context, to, kind, message string) error {
	if message != "" {
		err := p.flashes.Put(c.Request().Context(), ctxBrowserID(c), ports.Flash{Kind: kind, Message: message})
		if err != nil {
			p.log.Warn().Err(err).Msg("failed to store flash")
		}
	}
	return c.Redirect(http.StatusSeeOther, to)
}
