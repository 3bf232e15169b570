package records

import (
	"context"

	"github.com/homeservices/marketplace/internal/core/domain"
)

// NotificationRepository stores notifications per expert under
// "notifications:<email>", oldest first.
type NotificationRepository struct {
	store *Store
}

func NewNotificationRepository(s *Store) *NotificationRepository {
	return &NotificationRepository{store: s}
}

func (r *NotificationRepository) collection(email string) *Collection[domain.Notification] {
	return NewCollection[domain.Notification](r.store, notificationsPrefix+email, nil)
}

func (r *NotificationRepository) Append(ctx context.Context, n domain.Notification) error {
	return r.collection(n.ExpertEmail).Update(ctx, func(all []domain.Notification) ([]domain.Notification, error) {
		return append(all, n), nil
	})
}

func (r *NotificationRepository) ListFor(ctx context.Context, expertEmail string) ([]domain.Notification, error) {
	return r.collection(expertEmail).Load(ctx)
}
