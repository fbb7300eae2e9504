package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/storefront/orders-api/internal/core/domain"
	"github.com/storefront/orders-api/internal/core/ports"
)

type auditService struct {
	repo ports.OrderEventRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService implementation.
func NewAuditService(repo ports.OrderEventRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record persists a single audit event.
func (s *auditService) Record(ctx context.Context, in ports.OrderEventInput) error {
	if in.OrderID == "" || in.Action == "" {
		return fmt.Errorf("record audit event: %w", domain.ErrInvalidInput)
	}

	event := &domain.OrderEvent{
		OrderID:   in.OrderID,
		Action:    in.Action,
		ActorID:   in.ActorID,
		Decision:  in.Decision,
		Timestamp: in.Timestamp,
	}
	if err := s.repo.Insert(ctx, event); err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}

	s.log.Debug().
		Str("order_id", in.OrderID).
		Str("action", string(in.Action)).
		Str("decision", in.Decision).
		Msg("audit event recorded")
	return nil
}
