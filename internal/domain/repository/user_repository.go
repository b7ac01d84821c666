package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/clean-auth/internal/domain/entity"
)

var (
	// ErrStaleUser is returned by Save when the stored version moved on since the user was read.
	ErrStaleUser = errors.New("user was modified concurrently")
	// ErrDuplicate is returned by Create when email or username is already taken.
	ErrDuplicate = errors.New("email or username already exists")
)

// UserRepository defines the persistence operations the account core needs.
// Lookups return (nil, nil) when no user matches; errors are reserved for
// infrastructure failures.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (*entity.User, error)
	GetByRefreshToken(ctx context.Context, token string) (*entity.User, error)
	GetByConfirmationCode(ctx context.Context, code string) (*entity.User, error)
	// Save persists u if its Version matches the stored one, then bumps u.Version.
	Save(ctx context.Context, u *entity.User) error
}
