package ports

import (
	"context"

	"github.com/storefront/orders-api/internal/core/domain"
)

// ListOrdersFilter carries the query parameters for listing orders.
// OwnerID is always set by the service layer for non-admin callers.
type ListOrdersFilter struct {
	OwnerID string // empty = all owners (admin only)
	Status  string
	Page    int // 1-based
	Limit   int
}

// OrderRepository defines persistence operations for orders.
// FindByID returns domain.ErrOrderNotFound when no order matches.
// Create returns domain.ErrDuplicateOrder when the owner already has an order
// with the same idempotency key.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByIdempotencyKey(ctx context.Context, ownerID, key string) (*domain.Order, error)
	Update(ctx context.Context, o *domain.Order) error
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
	List(ctx context.Context, filter ListOrdersFilter) ([]*domain.Order, int64, error)
}
