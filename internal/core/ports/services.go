package ports

import (
	"context"

	"github.com/homeservices/marketplace/internal/core/domain"
)

// SignupInput carries the signup form.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// AuthService covers signup, login, logout and the current session.
type AuthService interface {
	Signup(ctx context.Context, browserID string, in SignupInput) (*domain.User, error)
	Login(ctx context.Context, browserID, email, password string) (*domain.User, error)
	Logout(ctx context.Context, browserID string) error
	CurrentSession(ctx context.Context, browserID string) (*domain.User, error)
}

// PasswordHasher produces and checks the stored password value.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(stored, password string) bool
}

// CreateRequestInput carries the new-request form.
type CreateRequestInput struct {
	Title       string
	Category    string
	Description string
	Nonce       string
}

// SubmitOfferInput carries an expert's offer.
type SubmitOfferInput struct {
	RequestID   string
	ExpertName  string
	ExpertEmail string
	Price       string
	Message     string
	Nonce       string
}

// RequestService covers request creation and the offer/accept actions.
type RequestService interface {
	CreateRequest(ctx context.Context, owner domain.User, in CreateRequestInput) (*domain.ServiceRequest, error)
	SubmitOffer(ctx context.Context, in SubmitOfferInput) error
	AcceptOffer(ctx context.Context, actor domain.User, requestID, expertName string) error
}

// Notifier hands accepted-offer notifications to the delivery workers.
type Notifier interface {
	Enqueue(n domain.Notification)
}

// NotificationService delivers a single notification.
type NotificationService interface {
	Deliver(ctx context.Context, n domain.Notification) error
}
