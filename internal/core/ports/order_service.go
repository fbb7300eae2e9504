package ports

import (
	"context"

	"github.com/storefront/orders-api/internal/core/domain"
)

// CreateOrderInput carries the data needed to create an order. The owner is
// always the principal; callers cannot create orders on behalf of others.
type CreateOrderInput struct {
	Principal      domain.Principal
	Product        string
	Quantity       int
	UnitPrice      float64
	Currency       string
	Notes          string
	IdempotencyKey string
}

// CreateOrderResult is returned by CreateOrder.
type CreateOrderResult struct {
	Order *domain.Order
	// AlreadyExisted is true when the Idempotency-Key matched an earlier order.
	AlreadyExisted bool
}

// UpdateOrderInput carries a partial update. Nil fields are left untouched.
type UpdateOrderInput struct {
	Principal domain.Principal
	OrderID   string
	Quantity  *int
	Notes     *string
	Status    *domain.OrderStatus
}

// ListOrdersInput carries all parameters for the list endpoints.
type ListOrdersInput struct {
	Principal domain.Principal
	// OwnerID scopes the listing. Empty means "all owners" and requires admin.
	OwnerID string
	Status  string
	Page    int
	Limit   int
}

// ListOrdersResult is returned by ListOrders.
type ListOrdersResult struct {
	Items      []*domain.Order
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// OrderService defines use-case operations for orders.
type OrderService interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	GetOrder(ctx context.Context, p domain.Principal, orderID string) (*domain.Order, error)
	UpdateOrder(ctx context.Context, input UpdateOrderInput) (*domain.Order, error)
	DeleteOrder(ctx context.Context, p domain.Principal, orderID string) error
	ListOrders(ctx context.Context, input ListOrdersInput) (*ListOrdersResult, error)
	OrderEvents(ctx context.Context, p domain.Principal, orderID string) ([]domain.OrderEvent, error)
}
