package domain

import (
	"errors"
	"time"
)

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// validTransitions defines the allowed state machine transitions.
var validTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderPaid, OrderCancelled},
	OrderPaid:    {OrderShipped, OrderCancelled},
	OrderShipped: {OrderDelivered},
}

var ErrInvalidTransition = errors.New("invalid status transition")

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a purchase record. OwnerID is fixed at creation.
type Order struct {
	ID             string      `json:"id" bson:"_id"`
	OwnerID        string      `json:"owner_id" bson:"owner_id"`
	Product        string      `json:"product" bson:"product"`
	Quantity       int         `json:"quantity" bson:"quantity"`
	UnitPrice      float64     `json:"unit_price" bson:"unit_price"`
	Currency       string      `json:"currency" bson:"currency"`
	Notes          string      `json:"notes,omitempty" bson:"notes,omitempty"`
	Status         OrderStatus `json:"status" bson:"status"`
	CreatedAt      time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" bson:"updated_at"`
	IdempotencyKey string      `json:"-" bson:"idempotency_key,omitempty"`
}

// Total is the order amount in its currency.
func (o *Order) Total() float64 {
	return float64(o.Quantity) * o.UnitPrice
}

// OrderAction names an audited operation on an order.
type OrderAction string

const (
	ActionCreate OrderAction = "create"
	ActionRead   OrderAction = "read"
	ActionUpdate OrderAction = "update"
	ActionDelete OrderAction = "delete"
)

// OrderEvent is an audit trail entry for a single order.
type OrderEvent struct {
	OrderID   string      `json:"order_id"`
	Action    OrderAction `json:"action"`
	ActorID   string      `json:"actor_id"`
	Decision  string      `json:"decision"`
	Timestamp time.Time   `json:"timestamp"`
}
