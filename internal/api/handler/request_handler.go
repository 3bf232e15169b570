package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/homeservices/marketplace/internal/api/metrics"
	"github.com/homeservices/marketplace/internal/core/domain"
	"github.com/homeservices/marketplace/internal/core/ports"
)

const (
	msgRequestPosted = "Request Posted!"
	msgOfferSent     = "Offer Sent!"
	msgOfferAccepted = "Offer Accepted! The expert has been notified."
)

// RequestHandler serves the mutations: post a request, send an offer, accept
// an offer. Each one redirects to the dashboard, which re-renders from storage.
type RequestHandler struct {
	service ports.RequestService
	pages   pages
}

func NewRequestHandler(service ports.RequestService, flashes ports.FlashStore, log zerolog.Logger) *RequestHandler {
	return &RequestHandler{service: service, pages: pages{flashes: flashes, log: log}}
}

// Create handles POST /requests.
func (h *RequestHandler) Create(c echo.Context) error {
	var form createRequestForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	trim(&form.Title, &form.Description)
	if err := c.Validate(&form); err != nil {
		return h.pages.redirect(c, "/dashboard?new=1", flashError, err.Error())
	}

	req, err := h.service.CreateRequest(c.Request().Context(), *ctxUser(c), ports.CreateRequestInput{
		Title:       form.Title,
		Category:    form.Category,
		Description: form.Description,
		Nonce:       form.Nonce,
	})
	if errors.Is(err, domain.ErrDuplicateSubmit) {
		return h.pages.redirect(c, "/dashboard", "", "")
	}
	if err != nil {
		return err
	}

	metrics.RequestsCreatedTotal.WithLabelValues(req.Category).Inc()
	return h.pages.redirect(c, "/dashboard", flashSuccess, msgRequestPosted)
}

// SubmitOffer handles POST /requests/:id/offers. An unknown request id is a
// silent no-op.
func (h *RequestHandler) SubmitOffer(c echo.Context) error {
	var form offerForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	trim(&form.Price, &form.Message)
	if err := c.Validate(&form); err != nil {
		return h.pages.redirect(c, "/dashboard", flashError, err.Error())
	}

	expert := ctxUser(c)
	err := h.service.SubmitOffer(c.Request().Context(), ports.SubmitOfferInput{
		RequestID:   c.Param("id"),
		ExpertName:  expert.Name,
		ExpertEmail: expert.Email,
		Price:       form.Price,
		Message:     form.Message,
		Nonce:       form.Nonce,
	})
	if errors.Is(err, domain.ErrRequestNotFound) || errors.Is(err, domain.ErrDuplicateSubmit) {
		return h.pages.redirect(c, "/dashboard", "", "")
	}
	if err != nil {
		return err
	}

	metrics.OffersSubmittedTotal.Inc()
	return h.pages.redirect(c, "/dashboard", flashSuccess, msgOfferSent)
}

// Accept handles POST /requests/:id/accept. The browser confirms before
// submitting; an unknown request id is a silent no-op.
func (h *RequestHandler) Accept(c echo.Context) error {
	var form acceptForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	err := h.service.AcceptOffer(c.Request().Context(), *ctxUser(c), c.Param("id"), form.ExpertName)
	if errors.Is(err, domain.ErrRequestNotFound) {
		return h.pages.redirect(c, "/dashboard", "", "")
	}
	if err != nil {
		return err
	}

	metrics.OffersAcceptedTotal.Inc()
	return h.pages.redirect(c, "/dashboard", flashSuccess, msgOfferAccepted)
}
