package api

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/homeservices/marketplace/internal/api/handler"
	"github.com/homeservices/marketplace/internal/api/middleware"
	"github.com/homeservices/marketplace/internal/core/domain"
	"github.com/homeservices/marketplace/internal/core/ports"
	"github.com/homeservices/marketplace/internal/web"
)

// Deps is everything the router needs from the composition root.
type Deps struct {
	Log zerolog.Logger

	Auth      ports.AuthService
	Requests  ports.RequestService
	Dashboard ports.DashboardService
	Flashes   ports.FlashStore

	Store   ports.KeyValueStore
	Backend string

	Session middleware.SessionConfig
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = web.MustRenderer()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(middleware.Metrics())

	// --- Operational endpoints (no session) ---
	health := handler.NewHealthHandler(d.Backend, d.Store)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Dependencies ---
	homeHandler := handler.NewHomeHandler(d.Flashes, d.Log)
	authHandler := handler.NewAuthHandler(d.Auth, d.Flashes, d.Log)
	dashboardHandler := handler.NewDashboardHandler(d.Dashboard, d.Flashes, d.Log)
	requestHandler := handler.NewRequestHandler(d.Requests, d.Flashes, d.Log)

	app := e.Group("", middleware.Session(d.Session, d.Auth))
	requireUser := middleware.RequireUser("/login")
	homeowner := middleware.RBAC(domain.RoleHomeowner)
	expert := middleware.RBAC(domain.RoleExpert)

	// --- Pages ---
	app.GET("/", homeHandler.Home)
	app.GET("/signup", authHandler.ShowSignup)
	app.POST("/signup", authHandler.Signup)
	app.GET("/login", authHandler.ShowLogin)
	app.POST("/login", authHandler.Login)
	app.POST("/logout", authHandler.Logout)
	app.GET("/dashboard", dashboardHandler.Show, requireUser)

	// --- Actions ---
	app.POST("/requests", requestHandler.Create, requireUser, homeowner)
	app.POST("/requests/:id/offers", requestHandler.SubmitOffer, requireUser, expert)
	app.POST("/requests/:id/accept", requestHandler.Accept, requireUser, homeowner)

	// --- JSON mirror ---
	v1 := app.Group("/api/v1")
	v1.GET("/session", dashboardHandler.Session)
	v1.GET("/dashboard", dashboardHandler.DashboardJSON, requireUser)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency.Round(time.Microsecond)).
				Msg("http request")
			return nil
		},
	})
}
