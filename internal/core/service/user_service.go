package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront/orders-api/internal/core/authz"
	"github.com/storefront/orders-api/internal/core/domain"
	"github.com/storefront/orders-api/internal/core/ports"
)

// UserService manages accounts on behalf of an authenticated principal.
type UserService struct {
	users  ports.UserRepository
	orders ports.OrderRepository
	log    zerolog.Logger
}

func NewUserService(users ports.UserRepository, orders ports.OrderRepository, log zerolog.Logger) *UserService {
	return &UserService{users: users, orders: orders, log: log}
}

// Get returns a user record. A missing record is reported before the policy
// is consulted.
func (s *UserService) Get(ctx context.Context, p domain.Principal, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := authz.Require(p, user.ID, authz.TierOwnerOrAdmin); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, in ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := authz.Require(in.Principal, user.ID, authz.TierOwnerOrAdmin); err != nil {
		return nil, err
	}

	if in.Role != nil {
		if err := authz.Require(in.Principal, user.ID, authz.TierAdmin); err != nil {
			return nil, err
		}
		if !in.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, *in.Role)
		}
		user.Role = *in.Role
	}
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" {
			return nil, fmt.Errorf("%w: username cannot be empty", domain.ErrInvalidInput)
		}
		user.Username = name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			return nil, fmt.Errorf("%w: email cannot be empty", domain.ErrInvalidInput)
		}
		user.Email = email
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, fmt.Errorf("%w: password cannot be empty", domain.ErrInvalidInput)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("actor_id", in.Principal.ID).Msg("user updated")
	return user, nil
}

// Delete removes an account and every order it owns. Credentials issued to
// the account stop working on the next request because the auth gate can no
// longer resolve the identity.
func (s *UserService) Delete(ctx context.Context, p domain.Principal, userID string) error {
	if err := authz.Require(p, "", authz.TierAdmin); err != nil {
		return err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return err
	}

	// Account first: its credentials must stop working even if order cleanup fails.
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	removed, err := s.orders.DeleteByOwner(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Str("user_id", userID).Msg("user deleted but their orders were not")
		return fmt.Errorf("delete user orders: %w", err)
	}

	s.log.Info().
		Str("user_id", userID).
		Str("actor_id", p.ID).
		Int64("orders_removed", removed).
		Msg("user deleted")
	return nil
}

func (s *UserService) List(ctx context.Context, p domain.Principal, page, limit int) (*ports.ListUsersResult, error) {
	if err := authz.Require(p, "", authz.TierAdmin); err != nil {
		return nil, err
	}
	page, limit = normalizePage(page, limit)

	users, total, err := s.users.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return &ports.ListUsersResult{
		Items:      users,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}
