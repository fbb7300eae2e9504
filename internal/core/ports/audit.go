package ports

import (
	"context"
	"time"

	"github.com/storefront/orders-api/internal/core/domain"
)

// OrderEventInput is the DTO handed to the audit pipeline.
type OrderEventInput struct {
	OrderID   string
	Action    domain.OrderAction
	ActorID   string
	Decision  string
	Timestamp time.Time
}

// OrderEventRepository persists the audit trail.
type OrderEventRepository interface {
	Insert(ctx context.Context, event *domain.OrderEvent) error
	ListByOrder(ctx context.Context, orderID string) ([]domain.OrderEvent, error)
}

// AuditService records a single audit event.
type AuditService interface {
	Record(ctx context.Context, event OrderEventInput) error
}

// AuditSink accepts audit events without blocking the caller.
type AuditSink interface {
	Enqueue(event OrderEventInput)
}

// IdempotencyStore claims Idempotency-Keys for the order they create.
type IdempotencyStore interface {
	// Reserve claims key for orderID and returns the order id holding the key.
	// A result other than orderID means an earlier request owns the key.
	Reserve(ctx context.Context, ownerID, key, orderID string) (string, error)
	// Commit keeps a held key for the full replay window once its order exists.
	Commit(ctx context.Context, ownerID, key, orderID string) error
	// Release frees a key still held by orderID.
	Release(ctx context.Context, ownerID, key, orderID string) error
}
