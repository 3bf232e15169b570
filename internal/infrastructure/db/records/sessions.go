package records

import (
	"context"

	"github.com/homeservices/marketplace/internal/core/domain"
	"github.com/homeservices/marketplace/internal/core/ports"
)

// SessionStore keeps one currentUser pointer per browser under
// "currentUser:<browserID>". The pointer is a copy of the user record and is
// trusted as stored.
type SessionStore struct {
	store *Store
}

func NewSessionStore(s *Store) *SessionStore {
	return &SessionStore{store: s}
}

func (s *SessionStore) pointer(browserID string) *Pointer[domain.User] {
	return NewPointer[domain.User](s.store, KeyCurrentUser+":"+browserID)
}

func (s *SessionStore) Get(ctx context.Context, browserID string) (*domain.User, error) {
	return s.pointer(browserID).Load(ctx)
}

func (s *SessionStore) Set(ctx context.Context, browserID string, user domain.User) error {
	return s.pointer(browserID).Save(ctx, user)
}

func (s *SessionStore) Clear(ctx context.Context, browserID string) error {
	return s.pointer(browserID).Clear(ctx)
}

// FlashStore keeps one pending flash message per browser.
type FlashStore struct {
	store *Store
}

func NewFlashStore(s *Store) *FlashStore {
	return &FlashStore{store: s}
}

func (f *FlashStore) Put(ctx context.Context, browserID string, flash ports.Flash) error {
	return NewPointer[ports.Flash](f.store, flashPrefix+browserID).Save(ctx, flash)
}

func (f *FlashStore) Pop(ctx context.Context, browserID string) (*ports.Flash, error) {
	return NewPointer[ports.Flash](f.store, flashPrefix+browserID).Take(ctx)
}
