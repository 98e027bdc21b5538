package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kiosco-inc/kiosco-engine/pkg/models"
	"github.com/kiosco-inc/kiosco-engine/pkg/repositories"
)

// AuditService persists non-ALLOW gate decisions with their full evidence
// so blocked or warned sales can be reviewed later.
type AuditService interface {
	RecordDecision(ctx context.Context, decision *models.SaleDecision) error
	GetRecent(ctx context.Context, limit int) ([]*models.GateAuditEntry, error)
}

type auditService struct {
	repo   repositories.AuditRepository
	logger *zap.Logger
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo repositories.AuditRepository, logger *zap.Logger) AuditService {
	return &auditService{
		repo:   repo,
		logger: logger.Named("audit-service"),
	}
}

var _ AuditService = (*auditService)(nil)

func (s *auditService) RecordDecision(ctx context.Context, decision *models.SaleDecision) error {
	entry := &models.GateAuditEntry{
		Outcome:     decision.Outcome,
		MaxSeverity: decision.Cart.MaxSeverity,
		ItemCount:   decision.Cart.SafeCount + len(decision.Cart.Products),
		Products:    decision.Cart.Products,
		Message:     decision.Message,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to create gate audit entry",
			zap.String("outcome", string(decision.Outcome)),
			zap.String("max_severity", decision.Cart.MaxSeverity.String()),
			zap.Error(err))
		return fmt.Errorf("create gate audit entry: %w", err)
	}

	return nil
}

func (s *auditService) GetRecent(ctx context.Context, limit int) ([]*models.GateAuditEntry, error) {
	if limit <= 0 {
		limit = 50 // Default limit
	}

	entries, err := s.repo.GetRecent(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to get gate audit entries", zap.Error(err))
		return nil, fmt.Errorf("get gate audit entries: %w", err)
	}

	return entries, nil
}
