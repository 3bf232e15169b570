package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/homeservices/marketplace/internal/core/domain"
	"github.com/homeservices/marketplace/internal/core/ports"
)

// AuthService implements signup, login, logout and session lookup.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionStore
	hasher   ports.PasswordHasher
	log      zerolog.Logger
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionStore, hasher ports.PasswordHasher, log zerolog.Logger) *AuthService {
	if hasher == nil {
		hasher = PlainPasswords{}
	}
	return &AuthService{users: users, sessions: sessions, hasher: hasher, log: log}
}

// Signup registers a new user and makes it the browser's session. A taken
// email returns domain.ErrUserExists and changes nothing.
func (s *AuthService) Signup(ctx context.Context, browserID string, in ports.SignupInput) (*domain.User, error) {
	stored, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}

	user := domain.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: stored,
		Role:     domain.ParseRole(in.Role),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	if err := s.sessions.Set(ctx, browserID, user); err != nil {
		return nil, fmt.Errorf("signup: set session: %w", err)
	}

	s.log.Info().Str("email", user.Email).Str("role", string(user.Role)).Msg("user signed up")
	return &user, nil
}

// Login makes the first user whose email and password both match the
// browser's session.
func (s *AuthService) Login(ctx context.Context, browserID, email, password string) (*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	for _, u := range users {
		if u.Email != email || !s.hasher.Matches(u.Password, password) {
			continue
		}
		if err := s.sessions.Set(ctx, browserID, u); err != nil {
			return nil, fmt.Errorf("login: set session: %w", err)
		}
		s.log.Info().Str("email", u.Email).Msg("user logged in")
		found := u
		return &found, nil
	}

	s.log.Debug().Str("email", email).Msg("login rejected")
	return nil, domain.ErrInvalidCredentials
}

// Logout clears the browser's session pointer.
func (s *AuthService) Logout(ctx context.Context, browserID string) error {
	if err := s.sessions.Clear(ctx, browserID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// CurrentSession returns the browser's session user, or nil.
func (s *AuthService) CurrentSession(ctx context.Context, browserID string) (*domain.User, error) {
	if browserID == "" {
		return nil, nil
	}
	return s.sessions.Get(ctx, browserID)
}
