package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/homeservices/marketplace/internal/api/middleware"
	"github.com/homeservices/marketplace/internal/core/domain"
	"github.com/homeservices/marketplace/internal/core/ports"
	"github.com/homeservices/marketplace/internal/web"
)

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

type stubFlashStore struct {
	pending map[string]ports.Flash
}

func newStubFlashStore() *stubFlashStore {
	return &stubFlashStore{pending: make(map[string]ports.Flash)}
}

func (s *stubFlashStore) Put(_ context.Context, browserID string, f ports.Flash) error {
	s.pending[browserID] = f
	return nil
}

func (s *stubFlashStore) Pop(_ context.Context, browserID string) (*ports.Flash, error) {
	f, ok := s.pending[browserID]
	if !ok {
		return nil, nil
	}
	delete(s.pending, browserID)
	return &f, nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Renderer = web.MustRenderer()
	e.Validator = NewValidator()
	return e
}

// newFormContext builds a context for a form POST (or GET when form is nil)
// from browser "b1", logged in as user when non-nil.
func newFormContext(e *echo.Echo, method, target string, form url.Values, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.KeyBrowserID, "b1")
	if user != nil {
		c.Set(middleware.KeyUser, user)
		c.Set(middleware.KeyRole, string(user.EffectiveRole()))
	}
	return c, rec
}

// ---------------------------------------------------------------------------
// Stub auth service
// ---------------------------------------------------------------------------

type stubAuthService struct {
	signupFn  func(ctx context.Context, browserID string, in ports.SignupInput) (*domain.User, error)
	loginFn   func(ctx context.Context, browserID, email, password string) (*domain.User, error)
	loggedOut []string
}

func (s *stubAuthService) Signup(ctx context.Context, browserID string, in ports.SignupInput) (*domain.User, error) {
	return s.signupFn(ctx, browserID, in)
}

func (s *stubAuthService) Login(ctx context.Context, browserID, email, password string) (*domain.User, error) {
	return s.loginFn(ctx, browserID, email, password)
}

func (s *stubAuthService) Logout(_ context.Context, browserID string) error {
	s.loggedOut = append(s.loggedOut, browserID)
	return nil
}

func (s *stubAuthService) CurrentSession(_ context.Context, _ string) (*domain.User, error) {
	return nil, nil
}

// ---------------------------------------------------------------------------
// Signup
// ---------------------------------------------------------------------------

func TestAuthHandler_Signup_Success(t *testing.T) {
	e := newTestEcho()
	flashes := newStubFlashStore()
	stub := &stubAuthService{
		signupFn: func(_ context.Context, browserID string, in ports.SignupInput) (*domain.User, error) {
			if browserID != "b1" || in.Name != "Ann Lee" || in.Email != "ann@x.com" || in.Role != "expert" {
				t.Fatalf("unexpected args: %s %+v", browserID, in)
			}
			return &domain.User{Name: in.Name, Email: in.Email, Role: domain.RoleExpert}, nil
		},
	}
	handler := NewAuthHandler(stub, flashes, zerolog.Nop())

	form := url.Values{"fullname": {" Ann Lee "}, "email": {"ann@x.com"}, "password": {"pw"}, "role": {"expert"}}
	c, rec := newFormContext(e, http.MethodPost, "/signup", form, nil)

	if err := handler.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/dashboard" {
		t.Fatalf("expected 303 to /dashboard, got %d %s", rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
	if flashes.pending["b1"].Message != "Account created successfully!" {
		t.Fatalf("unexpected flash: %+v", flashes.pending["b1"])
	}
}

func TestAuthHandler_Signup_UserExists(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		signupFn: func(context.Context, string, ports.SignupInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub, newStubFlashStore(), zerolog.Nop())

	form := url.Values{"fullname": {"Ann"}, "email": {"ann@x.com"}, "password": {"pw"}}
	c, rec := newFormContext(e, http.MethodPost, "/signup", form, nil)

	if err := handler.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Account already exists! Please log in.") {
		t.Fatalf("expected duplicate message in page")
	}
}

func TestAuthHandler_Signup_MissingFields(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		signupFn: func(context.Context, string, ports.SignupInput) (*domain.User, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}
	handler := NewAuthHandler(stub, newStubFlashStore(), zerolog.Nop())

	c, rec := newFormContext(e, http.MethodPost, "/signup", url.Values{"fullname": {"Ann"}}, nil)

	if err := handler.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

// ---------------------------------------------------------------------------
// Login / Logout
// ---------------------------------------------------------------------------

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, browserID, email, password string) (*domain.User, error) {
			if email != "ann@x.com" || password != "pw" {
				t.Fatalf("unexpected credentials: %s %s", email, password)
			}
			return &domain.User{Email: email}, nil
		},
	}
	handler := NewAuthHandler(stub, newStubFlashStore(), zerolog.Nop())

	c, rec := newFormContext(e, http.MethodPost, "/login", url.Values{"email": {"ann@x.com"}, "password": {"pw"}}, nil)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/dashboard" {
		t.Fatalf("expected 303 to /dashboard, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string, string) (*domain.User, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub, newStubFlashStore(), zerolog.Nop())

	c, rec := newFormContext(e, http.MethodPost, "/login", url.Values{"email": {"ann@x.com"}, "password": {"bad"}}, nil)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Invalid email or password.") || !strings.Contains(body, `value="ann@x.com"`) {
		t.Fatalf("expected error and preserved email in page")
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{}
	handler := NewAuthHandler(stub, newStubFlashStore(), zerolog.Nop())

	c, rec := newFormContext(e, http.MethodPost, "/logout", url.Values{}, &domain.User{Name: "Ann", Email: "ann@x.com"})

	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != "/" {
		t.Fatalf("expected 303 to /, got %d", rec.Code)
	}
	if len(stub.loggedOut) != 1 || stub.loggedOut[0] != "b1" {
		t.Fatalf("expected logout of b1, got %v", stub.loggedOut)
	}
}

// ---------------------------------------------------------------------------
// Header auth region
// ---------------------------------------------------------------------------

func TestHomeHandler_HeaderShowsFirstName(t *testing.T) {
	e := newTestEcho()
	handler := NewHomeHandler(newStubFlashStore(), zerolog.Nop())

	c, rec := newFormContext(e, http.MethodGet, "/", nil, &domain.User{Name: "Hana Maria Owens", Email: "h@x.com"})

	if err := handler.Home(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Hi, Hana") || !strings.Contains(body, `id="logout-btn"`) {
		t.Fatalf("expected greeting and logout control")
	}
	if strings.Contains(body, `href="/signup" class="btn btn-primary">Sign Up`) {
		t.Fatalf("sign up link must be hidden when logged in")
	}
}

func TestHomeHandler_AnonymousHeaderAndFlash(t *testing.T) {
	e := newTestEcho()
	flashes := newStubFlashStore()
	flashes.pending["b1"] = ports.Flash{Kind: "success", Message: "Welcome back"}
	handler := NewHomeHandler(flashes, zerolog.Nop())

	c, rec := newFormContext(e, http.MethodGet, "/", nil, nil)

	if err := handler.Home(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, ">Login<") || !strings.Contains(body, ">Sign Up<") {
		t.Fatalf("expected login and sign up links")
	}
	if !strings.Contains(body, "Welcome back") {
		t.Fatalf("expected flash rendered")
	}
	if _, ok := flashes.pending["b1"]; ok {
		t.Fatal("flash must be consumed")
	}
}
