package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/homeservices/marketplace/internal/api"
	"github.com/homeservices/marketplace/internal/api/middleware"
	"github.com/homeservices/marketplace/internal/core/service"
	"github.com/homeservices/marketplace/internal/infrastructure/db/records"
	"github.com/homeservices/marketplace/internal/infrastructure/queue"
	"github.com/homeservices/marketplace/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web application",
		Long: `Run the marketplace web application on PORT.

Example:
  marketplace serve
  STORE_BACKEND=redis marketplace serve --pretty`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}
}

func runServe(parent context.Context, opts *RootOptions) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := opts.log
	b, err := openBackend(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Warn().Err(err).Msg("close record store")
		}
	}()

	// --- Dependencies ---
	users := records.NewUserRepository(b.records)
	requests := records.NewRequestRepository(b.records)
	sessions := records.NewSessionStore(b.records)
	flashes := records.NewFlashStore(b.records)
	notifications := records.NewNotificationRepository(b.records)

	dispatcher := queue.NewDispatcher(
		opts.cfg.NotifyWorkers,
		service.NewNotificationService(notifications, logger.Component("notifications")),
		logger.Component("dispatcher"),
	)
	dispatcher.Start(context.WithoutCancel(ctx))

	authService := service.NewAuthService(users, sessions, service.NewPasswordHasher(opts.cfg.PasswordHashing), logger.Component("auth"))
	requestService := service.NewRequestService(requests, b.guard, dispatcher, logger.Component("requests"))
	dashboardService := service.NewDashboardService(requests, notifications, logger.Component("dashboard"))

	e := api.NewRouter(api.Deps{
		Log:       logger.Component("http"),
		Auth:      authService,
		Requests:  requestService,
		Dashboard: dashboardService,
		Flashes:   flashes,
		Store:     b.kv,
		Backend:   b.name,
		Session: middleware.SessionConfig{
			Secret: opts.cfg.SessionSecret,
			TTL:    opts.cfg.SessionTTL,
			Secure: opts.cfg.IsProduction(),
		},
	})

	srv := &http.Server{
		Addr:              ":" + opts.cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("backend", b.name).Msg("marketplace listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		dispatcher.Stop()
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	// Drain pending notifications after the last request has finished.
	dispatcher.Stop()
	log.Info().Msg("marketplace stopped")
	return nil
}
