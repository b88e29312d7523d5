package repository

import (
	"context"
	"time"

	"github.com/paresh-enterprises/backend/domain"
)

// UserRepository is the durable store of user records. The adapter, not the
// caller, enforces email/username uniqueness atomically on insert.
type UserRepository interface {
	// FindByEmailOrUsername returns the first record matching either value,
	// or domain.ErrUserNotFound.
	FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.User, error)

	// Insert persists a new record, assigning ID and timestamps. Returns
	// domain.ErrUserAlreadyExists when email or username is already taken.
	Insert(ctx context.Context, user *domain.User) (*domain.User, error)

	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateLastLogin records a successful authentication timestamp.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}
