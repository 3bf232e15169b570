package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/homeservices/marketplace/internal/core/domain"
	"github.com/homeservices/marketplace/internal/core/ports"
)

type notificationService struct {
	repo ports.NotificationRepository
	log  zerolog.Logger
}

// NewNotificationService returns a NotificationService that stores each
// notification in the expert's inbox.
func NewNotificationService(repo ports.NotificationRepository, log zerolog.Logger) ports.NotificationService {
	return &notificationService{repo: repo, log: log}
}

func (s *notificationService) Deliver(ctx context.Context, n domain.Notification) error {
	if n.ExpertEmail == "" {
		return fmt.Errorf("deliver notification: %w", domain.ErrInvalidRecord)
	}
	if err := s.repo.Append(ctx, n); err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	s.log.Info().
		Str("expert", n.ExpertEmail).
		Str("request_id", n.RequestID).
		Msg("notification delivered")
	return nil
}
