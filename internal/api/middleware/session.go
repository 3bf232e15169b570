package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/homeservices/marketplace/internal/core/domain"
)

// Context keys set by Session.
const (
	KeyBrowserID = "browser_id"
	KeyUser      = "user"
	KeyRole      = "role"
)

// CookieName holds the signed browser identity.
const CookieName = "hs_browser"

// SessionReader resolves the currentUser pointer for a browser.
type SessionReader interface {
	CurrentSession(ctx context.Context, browserID string) (*domain.User, error)
}

// SessionConfig configures the browser identity cookie.
type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// Session gives every visitor a stable browser id, carried in an HS256-signed
// cookie, and loads the browser's currentUser pointer into the context.
func Session(cfg SessionConfig, sessions SessionReader) echo.MiddlewareFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * 24 * time.Hour
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			browserID := browserIDFromCookie(c, cfg.Secret)
			if browserID == "" {
				var err error
				browserID, err = issueBrowserID(c, cfg)
				if err != nil {
					return err
				}
			}
			c.Set(KeyBrowserID, browserID)

			user, err := sessions.CurrentSession(c.Request().Context(), browserID)
			if err != nil {
				return err
			}
			if user != nil {
				c.Set(KeyUser, user)
				c.Set(KeyRole, string(user.EffectiveRole()))
			}
			return next(c)
		}
	}
}

func browserIDFromCookie(c echo.Context, secret string) string {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tkn.Valid {
		return ""
	}
	sid, _ := claims["sid"].(string)
	return strings.TrimSpace(sid)
}

func issueBrowserID(c echo.Context, cfg SessionConfig) (string, error) {
	sid := uuid.NewString()
	expires := time.Now().Add(cfg.TTL)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sid,
		"exp": expires.Unix(),
	})
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", err
	}

	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sid, nil
}

// RequireUser rejects visitors without a session: API paths get 401, pages
// are redirected to loginPath.
func RequireUser(loginPath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := c.Get(KeyUser).(*domain.User); ok {
				return next(c)
			}
			if strings.HasPrefix(c.Request().URL.Path, "/api/") {
				return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
			}
			return c.Redirect(http.StatusSeeOther, loginPath)
		}
	}
}
