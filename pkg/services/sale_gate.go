package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kiosco-inc/kiosco-engine/pkg/models"
)

// SaleGateService maps an aggregated cart verdict to the terminal gate
// decision. The gate is stateless: each call is independent and idempotent
// given the same cart result.
//
// Decision table:
//   - no conflict                       → ALLOW
//   - conflict with critical severity   → BLOCK
//   - conflict with any lower severity  → WARN
type SaleGateService interface {
	Decide(ctx context.Context, cart *models.CartConflictResult) *models.SaleDecision
}

type saleGateService struct {
	audit  AuditService
	logger *zap.Logger
}

// NewSaleGateService creates a new SaleGateService. Non-ALLOW decisions are
// recorded through the audit service; an audit write failure is logged but
// never changes the decision already computed.
func NewSaleGateService(audit AuditService, logger *zap.Logger) SaleGateService {
	return &saleGateService{
		audit:  audit,
		logger: logger.Named("sale-gate"),
	}
}

var _ SaleGateService = (*saleGateService)(nil)

func (s *saleGateService) Decide(ctx context.Context, cart *models.CartConflictResult) *models.SaleDecision {
	decision := &models.SaleDecision{
		Cart: *cart,
	}

	switch {
	case !cart.Conflict:
		decision.Outcome = models.GateAllow
		decision.Message = "no dietary conflicts detected"
	case cart.MaxSeverity == models.SeverityCritical:
		decision.Outcome = models.GateBlock
		decision.Message = fmt.Sprintf("sale blocked: %d item(s) conflict with a critical dietary restriction", len(cart.Products))
	default:
		decision.Outcome = models.GateWarn
		decision.Message = fmt.Sprintf("sale may proceed with caution: %d item(s) conflict at %s severity", len(cart.Products), cart.MaxSeverity)
	}

	if decision.Outcome != models.GateAllow {
		if err := s.audit.RecordDecision(ctx, decision); err != nil {
			// The decision stands even if the audit trail write fails.
			s.logger.Error("Failed to record gate decision",
				zap.String("outcome", string(decision.Outcome)),
				zap.Error(err))
		}
	}

	return decision
}
