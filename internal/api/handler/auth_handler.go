package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/homeservices/marketplace/internal/api/metrics"
	"github.com/homeservices/marketplace/internal/core/domain"
	"github.com/homeservices/marketplace/internal/core/ports"
	"github.com/homeservices/marketplace/internal/web"
)

const (
	msgAccountExists  = "Account already exists! Please log in."
	msgAccountCreated = "Account created successfully!"
	msgBadLogin       = "Invalid email or password."
)

// AuthHandler serves the signup, login and logout routes.
type AuthHandler struct {
	authService ports.AuthService
	pages       pages
}

func NewAuthHandler(authService ports.AuthService, flashes ports.FlashStore, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, pages: pages{flashes: flashes, log: log}}
}

// ShowSignup handles GET /signup.
func (h *AuthHandler) ShowSignup(c echo.Context) error {
	return h.pages.render(c, http.StatusOK, web.PageSignup, "Sign up", nil, signupForm{})
}

// Signup handles POST /signup. A taken email leaves the form in place with
// an error; success logs the browser in and goes to the dashboard.
func (h *AuthHandler) Signup(c echo.Context) error {
	var form signupForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	trim(&form.Name, &form.Email)
	if err := c.Validate(&form); err != nil {
		return h.pages.render(c, http.StatusUnprocessableEntity, web.PageSignup, "Sign up", errorFlash(err.Error()), form)
	}

	_, err := h.authService.Signup(c.Request().Context(), ctxBrowserID(c), ports.SignupInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Role:     form.Role,
	})
	if errors.Is(err, domain.ErrUserExists) {
		metrics.SignupsTotal.WithLabelValues("duplicate").Inc()
		return h.pages.render(c, http.StatusConflict, web.PageSignup, "Sign up", errorFlash(msgAccountExists), form)
	}
	if err != nil {
		return err
	}

	metrics.SignupsTotal.WithLabelValues("created").Inc()
	return h.pages.redirect(c, "/dashboard", flashSuccess, msgAccountCreated)
}

// ShowLogin handles GET /login.
func (h *AuthHandler) ShowLogin(c echo.Context) error {
	return h.pages.render(c, http.StatusOK, web.PageLogin, "Log in", nil, loginForm{})
}

// Login handles POST /login.
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := c.Validate(&form); err != nil {
		return h.pages.render(c, http.StatusUnprocessableEntity, web.PageLogin, "Log in", errorFlash(err.Error()), loginForm{Email: form.Email})
	}

	_, err := h.authService.Login(c.Request().Context(), ctxBrowserID(c), form.Email, form.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return h.pages.render(c, http.StatusUnauthorized, web.PageLogin, "Log in", errorFlash(msgBadLogin), loginForm{Email: form.Email})
	}
	if err != nil {
		return err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Logout handles POST /logout: clears the session pointer and goes home.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), ctxBrowserID(c)); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

func errorFlash(msg string) *ports.Flash {
	return &ports.Flash{Kind: flashError, Message: msg}
}
