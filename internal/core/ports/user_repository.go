package ports

import (
	"context"

	"github.com/storefront/orders-api/internal/core/domain"
)

// IdentityStore is the read-only view of user records the auth gate needs.
// FindByID returns domain.ErrUserNotFound when no record matches.
type IdentityStore interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// UserRepository defines the persistence operations for user accounts.
type UserRepository interface {
	IdentityStore
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, limit int) ([]*domain.User, int64, error)
}
