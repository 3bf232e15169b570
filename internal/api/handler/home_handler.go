package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/homeservices/marketplace/internal/core/ports"
	"github.com/homeservices/marketplace/internal/web"
)

// HomeHandler serves the landing page.
type HomeHandler struct {
	pages pages
}

func NewHomeHandler(flashes ports.FlashStore, log zerolog.Logger) *HomeHandler {
	return &HomeHandler{pages: pages{flashes: flashes, log: log}}
}

// Home handles GET /.
func (h *HomeHandler) Home(c echo.Context) error {
	return h.pages.render(c, http.StatusOK, web.PageHome, "Home", nil, nil)
}
