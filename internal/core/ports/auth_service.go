package ports

import (
	"context"
	"time"

	"github.com/storefront/orders-api/internal/core/domain"
)

// RegisterInput carries the fields accepted at sign-up or from the CLI.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	// Role is honoured only by trusted callers; self-registration is always RoleUser.
	Role domain.Role
}

// LoginResult is a freshly issued credential and the user it belongs to.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}
