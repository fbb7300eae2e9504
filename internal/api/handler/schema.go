package handler

import (
	"time"

	"github.com/storefront/orders-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type pageQuery struct {
	Page  int
	Limit int
}

type pageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	User      *domain.User `json:"user,omitempty"`
}

// --- Users ---

type updateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=64"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8"`
	Role     *string `json:"role"     validate:"omitempty,oneof=user admin"`
}

type listUsersResponse struct {
	Items []*domain.User `json:"items"`
	pageMeta
}

// --- Orders ---

type createOrderRequest struct {
	Product   string  `json:"product"    validate:"required,max=200"`
	Quantity  int     `json:"quantity"   validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"required,gt=0"`
	Currency  string  `json:"currency"   validate:"omitempty,len=3"`
	Notes     string  `json:"notes"      validate:"max=1000"`
}

type updateOrderRequest struct {
	Quantity *int    `json:"quantity" validate:"omitempty,gt=0"`
	Notes    *string `json:"notes"    validate:"omitempty,max=1000"`
	Status   *string `json:"status"   validate:"omitempty,oneof=pending paid shipped delivered cancelled"`
}

type orderLinks struct {
	Self   string `json:"self"`
	Events string `json:"events"`
	Owner  string `json:"owner"`
}

type orderResponse struct {
	ID        string     `json:"id"`
	OwnerID   string     `json:"owner_id"`
	Product   string     `json:"product"`
	Quantity  int        `json:"quantity"`
	UnitPrice float64    `json:"unit_price"`
	Currency  string     `json:"currency"`
	Total     float64    `json:"total"`
	Notes     string     `json:"notes,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Links     orderLinks `json:"_links"`
}

type listOrdersResponse struct {
	Items []orderResponse `json:"items"`
	pageMeta
}

type orderEventResponse struct {
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id"`
	Decision  string    `json:"decision"`
	Timestamp time.Time `json:"timestamp"`
}

type orderEventsResponse struct {
	OrderID string               `json:"order_id"`
	Events  []orderEventResponse `json:"events"`
}
