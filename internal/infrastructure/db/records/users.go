package records

import (
	"context"

	"github.com/homeservices/marketplace/internal/core/domain"
)

// UserRepository implements ports.UserRepository over the users collection.
type UserRepository struct {
	users *Collection[domain.User]
}

func NewUserRepository(s *Store) *UserRepository {
	return &UserRepository{users: NewCollection[domain.User](s, KeyUsers, nil)}
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.users.Load(ctx)
}

// Create appends user unless its email is already taken.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	return r.users.Update(ctx, func(users []domain.User) ([]domain.User, error) {
		for _, u := range users {
			if u.Email == user.Email {
				return nil, domain.ErrUserExists
			}
		}
		return append(users, user), nil
	})
}
