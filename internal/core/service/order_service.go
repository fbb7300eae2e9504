package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/storefront/orders-api/internal/api/metrics"
	"github.com/storefront/orders-api/internal/core/authz"
	"github.com/storefront/orders-api/internal/core/domain"
	"github.com/storefront/orders-api/internal/core/ports"
)

const defaultCurrency = "USD"

type OrderService struct {
	repo   ports.OrderRepository
	events ports.OrderEventRepository
	idem   ports.IdempotencyStore
	audit  ports.AuditSink
	logger zerolog.Logger
}

func NewOrderService(
	repo ports.OrderRepository,
	events ports.OrderEventRepository,
	idem ports.IdempotencyStore,
	audit ports.AuditSink,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{repo: repo, events: events, idem: idem, audit: audit, logger: logger}
}

// CreateOrder creates an order owned by the calling principal. An
// Idempotency-Key is claimed before the insert, so a retry with the same key
// returns the earlier order instead of storing a second one.
func (s *OrderService) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*ports.CreateOrderResult, error) {
	owner := input.Principal.ID
	if owner == "" {
		return nil, domain.ErrForbidden
	}
	if err := validateNewOrder(input); err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:             uuid.NewString(),
		OwnerID:        owner,
		Product:        strings.TrimSpace(input.Product),
		Quantity:       input.Quantity,
		UnitPrice:      input.UnitPrice,
		Currency:       currency,
		Notes:          input.Notes,
		Status:         domain.OrderPending,
		CreatedAt:      now,
		UpdatedAt:      now,
		IdempotencyKey: input.IdempotencyKey,
	}
	key := input.IdempotencyKey

	reserved := false
	if key != "" && s.idem != nil {
		holder, err := s.idem.Reserve(ctx, owner, key, order.ID)
		switch {
		case err != nil:
			// the unique owner/key index still rejects a second insert
			s.logger.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency reserve failed, creating anyway")
		case holder != order.ID:
			existing, err := s.replay(ctx, owner, key, holder)
			if err != nil {
				return nil, err
			}
			return &ports.CreateOrderResult{Order: existing, AlreadyExisted: true}, nil
		default:
			reserved = true
		}
	}

	if err := s.repo.Create(ctx, order); err != nil {
		if reserved {
			if rerr := s.idem.Release(ctx, owner, key, order.ID); rerr != nil {
				s.logger.Warn().Err(rerr).Str("idempotency_key", key).Msg("failed to release idempotency key")
			}
		}
		if errors.Is(err, domain.ErrDuplicateOrder) && key != "" {
			existing, ferr := s.repo.FindByIdempotencyKey(ctx, owner, key)
			if ferr != nil {
				return nil, ferr
			}
			s.logger.Info().Str("idempotency_key", key).Str("order_id", existing.ID).Msg("idempotent replay")
			return &ports.CreateOrderResult{Order: existing, AlreadyExisted: true}, nil
		}
		s.logger.Error().Err(err).Str("owner_id", owner).Msg("failed to create order")
		return nil, err
	}

	if reserved {
		if err := s.idem.Commit(ctx, owner, key, order.ID); err != nil {
			s.logger.Warn().Err(err).Str("order_id", order.ID).Msg("failed to commit idempotency key")
		}
	}

	metrics.OrdersCreatedTotal.WithLabelValues(order.Currency).Inc()
	s.record(order.ID, domain.ActionCreate, owner, authz.Allow)
	s.logger.Info().Str("order_id", order.ID).Str("owner_id", owner).Msg("order created")

	return &ports.CreateOrderResult{Order: order}, nil
}

// replay loads the order holding key. A holder that is not stored yet belongs
// to a request still in flight.
func (s *OrderService) replay(ctx context.Context, owner, key, orderID string) (*domain.Order, error) {
	existing, err := s.repo.FindByID(ctx, orderID)
	if errors.Is(err, domain.ErrOrderNotFound) {
		existing, err = s.repo.FindByIdempotencyKey(ctx, owner, key)
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, domain.ErrRequestInProgress
		}
	}
	if err != nil {
		return nil, err
	}
	if existing.OwnerID != owner {
		return nil, domain.ErrRequestInProgress
	}
	s.logger.Info().Str("idempotency_key", key).Str("order_id", existing.ID).Msg("idempotent replay")
	return existing, nil
}

func validateNewOrder(in ports.CreateOrderInput) error {
	switch {
	case strings.TrimSpace(in.Product) == "":
		return fmt.Errorf("%w: product is required", domain.ErrInvalidInput)
	case in.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
	case in.UnitPrice <= 0:
		return fmt.Errorf("%w: unit_price must be positive", domain.ErrInvalidInput)
	case in.Currency != "" && len(strings.TrimSpace(in.Currency)) != 3:
		return fmt.Errorf("%w: currency must be a 3-letter code", domain.ErrInvalidInput)
	}
	return nil
}

// GetOrder resolves the order first so that an unknown id is always a 404,
// whatever the caller's role.
func (s *OrderService) GetOrder(ctx context.Context, p domain.Principal, orderID string) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(p, order, domain.ActionRead); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) UpdateOrder(ctx context.Context, input ports.UpdateOrderInput) (*domain.Order, error) {
	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(input.Principal, order, domain.ActionUpdate); err != nil {
		return nil, err
	}

	if input.Quantity != nil {
		if *input.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", domain.ErrInvalidInput)
		}
		order.Quantity = *input.Quantity
	}
	if input.Notes != nil {
		order.Notes = *input.Notes
	}
	if input.Status != nil && *input.Status != order.Status {
		if !order.Status.CanTransitionTo(*input.Status) {
			return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, order.Status, *input.Status)
		}
		order.Status = *input.Status
	}

	order.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.record(order.ID, domain.ActionUpdate, input.Principal.ID, authz.Allow)
	s.logger.Info().Str("order_id", order.ID).Str("actor_id", input.Principal.ID).Msg("order updated")
	return order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, p domain.Principal, orderID string) error {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if err := s.authorize(p, order, domain.ActionDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, order.ID); err != nil {
		return err
	}

	s.record(order.ID, domain.ActionDelete, p.ID, authz.Allow)
	s.logger.Info().Str("order_id", order.ID).Str("actor_id", p.ID).Msg("order deleted")
	return nil
}

// ListOrders returns a page of orders. Listing a specific owner follows the
// owner-or-admin rule; listing across owners is admin only.
func (s *OrderService) ListOrders(ctx context.Context, input ports.ListOrdersInput) (*ports.ListOrdersResult, error) {
	tier := authz.TierOwnerOrAdmin
	if input.OwnerID == "" {
		tier = authz.TierAdmin
	}
	if err := authz.Require(input.Principal, input.OwnerID, tier); err != nil {
		return nil, err
	}
	if input.Status != "" {
		input.Status = strings.ToLower(input.Status)
	}

	page, limit := normalizePage(input.Page, input.Limit)
	orders, total, err := s.repo.List(ctx, ports.ListOrdersFilter{
		OwnerID: input.OwnerID,
		Status:  input.Status,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	return &ports.ListOrdersResult{
		Items:      orders,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// OrderEvents returns the audit trail of an order the caller may read.
func (s *OrderService) OrderEvents(ctx context.Context, p domain.Principal, orderID string) ([]domain.OrderEvent, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(p, order, domain.ActionRead); err != nil {
		return nil, err
	}
	return s.events.ListByOrder(ctx, order.ID)
}

func (s *OrderService) authorize(p domain.Principal, order *domain.Order, action domain.OrderAction) error {
	decision := authz.Authorize(p, order.OwnerID, authz.TierOwnerOrAdmin)
	metrics.AuthzDecisionsTotal.WithLabelValues(string(action), decision.String()).Inc()
	if decision == authz.Allow {
		return nil
	}

	s.logger.Warn().
		Str("order_id", order.ID).
		Str("actor_id", p.ID).
		Str("action", string(action)).
		Msg("order access denied")
	s.record(order.ID, action, p.ID, decision)
	return domain.ErrForbidden
}

func (s *OrderService) record(orderID string, action domain.OrderAction, actorID string, decision authz.Decision) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(ports.OrderEventInput{
		OrderID:   orderID,
		Action:    action,
		ActorID:   actorID,
		Decision:  decision.String(),
		Timestamp: time.Now().UTC(),
	})
}
