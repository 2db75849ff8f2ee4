package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the store rejects a write on its unique email index.
	ErrDuplicateEmail = errors.New("duplicate email")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	Create(ctx context.Context, u *entity.User) error
	// Update applies changes to the stored record of u and returns the row as persisted.
	Update(ctx context.Context, u *entity.User, changes entity.UserChanges) (*entity.User, error)
}
