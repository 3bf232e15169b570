package ports

import (
	"context"

	"github.com/homeservices/marketplace/internal/core/domain"
)

// UserRepository persists the users collection.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	// Create appends the user, returning domain.ErrUserExists when the email
	// is already registered.
	Create(ctx context.Context, user domain.User) error
}

// RequestRepository persists the requests collection (newest first).
type RequestRepository interface {
	List(ctx context.Context) ([]domain.ServiceRequest, error)
	FindByID(ctx context.Context, id string) (*domain.ServiceRequest, error)
	// Prepend inserts the request at index 0.
	Prepend(ctx context.Context, req domain.ServiceRequest) error
	// AppendOffer adds an offer to the first request with the given id.
	AppendOffer(ctx context.Context, id string, offer domain.Offer) error
	// SetStatus updates the status of the first request with the given id.
	SetStatus(ctx context.Context, id string, status domain.RequestStatus) error
}

// SessionStore holds the per-browser currentUser pointer.
type SessionStore interface {
	Get(ctx context.Context, browserID string) (*domain.User, error)
	Set(ctx context.Context, browserID string, user domain.User) error
	Clear(ctx context.Context, browserID string) error
}

// NotificationRepository persists per-expert notifications.
type NotificationRepository interface {
	Append(ctx context.Context, n domain.Notification) error
	ListFor(ctx context.Context, expertEmail string) ([]domain.Notification, error)
}

// FlashStore holds one pending flash message per browser.
type FlashStore interface {
	Put(ctx context.Context, browserID string, flash Flash) error
	// Pop returns and clears the pending flash, or nil.
	Pop(ctx context.Context, browserID string) (*Flash, error)
}

// Flash is a one-shot message rendered on the next page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SubmissionGuard rejects replayed form nonces.
type SubmissionGuard interface {
	// Claim returns true the first time a nonce is seen.
	Claim(ctx context.Context, nonce string) (bool, error)
}
