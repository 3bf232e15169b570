package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/homeservices/marketplace/internal/core/domain"
)

type stubSessions struct {
	byBrowser map[string]*domain.User
	lastID    string
}

func (s *stubSessions) CurrentSession(_ context.Context, browserID string) (*domain.User, error) {
	s.lastID = browserID
	return s.byBrowser[browserID], nil
}

var testSessionCfg = SessionConfig{Secret: "secret", TTL: time.Hour}

func signedCookie(t *testing.T, secret, sid string) *http.Cookie {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sid,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return &http.Cookie{Name: CookieName, Value: signed}
}

func TestSession_IssuesBrowserIDWhenMissing(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	sessions := &stubSessions{}

	handler := Session(testSessionCfg, sessions)(func(c echo.Context) error {
		id, _ := c.Get(KeyBrowserID).(string)
		if id == "" {
			t.Fatalf("browser id not set")
		}
		if c.Get(KeyUser) != nil {
			t.Fatalf("expected no user")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	setCookie := rec.Header().Get("Set-Cookie")
	if !strings.HasPrefix(setCookie, CookieName+"=") {
		t.Fatalf("expected browser cookie to be issued, got %q", setCookie)
	}
	if !strings.Contains(setCookie, "HttpOnly") {
		t.Fatalf("expected HttpOnly cookie, got %q", setCookie)
	}
}

func TestSession_LoadsUserFromValidCookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(signedCookie(t, "secret", "browser-1"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	sessions := &stubSessions{byBrowser: map[string]*domain.User{
		"browser-1": {Name: "Ann Lee", Email: "a@x.com", Role: domain.RoleExpert},
	}}

	called := false
	handler := Session(testSessionCfg, sessions)(func(c echo.Context) error {
		called = true
		if c.Get(KeyBrowserID) != "browser-1" {
			t.Fatalf("unexpected browser id: %v", c.Get(KeyBrowserID))
		}
		user, ok := c.Get(KeyUser).(*domain.User)
		if !ok || user.Email != "a@x.com" {
			t.Fatalf("user not set: %v", c.Get(KeyUser))
		}
		if c.Get(KeyRole) != "expert" {
			t.Fatalf("role not set: %v", c.Get(KeyRole))
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Header().Get("Set-Cookie") != "" {
		t.Fatalf("valid cookie should not be reissued")
	}
}

func TestSession_UnknownRoleFallsBackToHomeowner(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(signedCookie(t, "secret", "browser-2"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	sessions := &stubSessions{byBrowser: map[string]*domain.User{
		"browser-2": {Email: "b@x.com", Role: "admin"},
	}}

	handler := Session(testSessionCfg, sessions)(func(c echo.Context) error {
		if c.Get(KeyRole) != "homeowner" {
			t.Fatalf("expected homeowner fallback, got %v", c.Get(KeyRole))
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestSession_TamperedCookieGetsNewIdentity(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(signedCookie(t, "other-secret", "browser-1"))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	sessions := &stubSessions{byBrowser: map[string]*domain.User{
		"browser-1": {Email: "a@x.com", Role: domain.RoleHomeowner},
	}}

	handler := Session(testSessionCfg, sessions)(func(c echo.Context) error {
		if c.Get(KeyBrowserID) == "browser-1" {
			t.Fatalf("forged cookie must not be trusted")
		}
		if c.Get(KeyUser) != nil {
			t.Fatalf("expected no user for a forged cookie")
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Header().Get("Set-Cookie") == "" {
		t.Fatalf("expected a fresh cookie")
	}
}

func TestRequireUser_RedirectsPages(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireUser("/login")(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRequireUser_RejectsAPI(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RequireUser("/login")(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireUser_PassesWithUser(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(KeyUser, &domain.User{Email: "a@x.com"})

	called := false
	handler := RequireUser("/login")(func(c echo.Context) error {
		called = true
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}
