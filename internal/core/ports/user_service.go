package ports

import (
	"context"

	"github.com/storefront/orders-api/internal/core/domain"
)

// UpdateUserInput carries a partial update. Nil fields are left untouched.
type UpdateUserInput struct {
	Principal domain.Principal
	UserID    string
	Username  *string
	Email     *string
	Password  *string
	Role      *domain.Role
}

// ListUsersResult is a page of user records.
type ListUsersResult struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// UserService covers account management after registration.
type UserService interface {
	Get(ctx context.Context, p domain.Principal, userID string) (*domain.User, error)
	Update(ctx context.Context, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, p domain.Principal, userID string) error
	List(ctx context.Context, p domain.Principal, page, limit int) (*ListUsersResult, error)
}
