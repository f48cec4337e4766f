package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/shelter-api/internal/domains/auth/domain"
)

var ErrNotFound = errors.New("staff user not found")

// UserRepository loads staff accounts.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error)
	GetByID(ctx context.Context, id int64) (*domain.StaffUser, error)
	// Save inserts the user or replaces the one with the same email.
	Save(ctx context.Context, user *domain.StaffUser) (*domain.StaffUser, error)
}

// RefreshTokenStore tracks refresh tokens that are still redeemable.
type RefreshTokenStore interface {
	Save(ctx context.Context, userID int64, jti string, ttl time.Duration) error
	// Consume removes the token and reports whether it was present.
	// Two concurrent calls for the same token see true at most once.
	Consume(ctx context.Context, userID int64, jti string) (bool, error)
}
