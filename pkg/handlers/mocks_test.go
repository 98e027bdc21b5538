package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/kiosco-inc/kiosco-engine/pkg/apperrors"
	"github.com/kiosco-inc/kiosco-engine/pkg/models"
)

// ============================================================================
// Shared Mock Implementations for Handler Tests
// ============================================================================

type mockConflictService struct {
	productResult *models.ProductConflictResult
	cartResult    *models.CartConflictResult
	err           error

	lastItems       []models.CartItem
	lastRestriction string
}

func (m *mockConflictService) AnalyzeProduct(ctx context.Context, productID uuid.UUID, restrictionText string) (*models.ProductConflictResult, error) {
	m.lastRestriction = restrictionText
	if m.err != nil {
		return nil, m.err
	}
	return m.productResult, nil
}

func (m *mockConflictService) AnalyzeCart(ctx context.Context, items []models.CartItem, restrictionText string) (*models.CartConflictResult, error) {
	m.lastItems = items
	m.lastRestriction = restrictionText
	if m.err != nil {
		return nil, m.err
	}
	return m.cartResult, nil
}

type mockGateService struct {
	decision *models.SaleDecision
}

func (m *mockGateService) Decide(ctx context.Context, cart *models.CartConflictResult) *models.SaleDecision {
	return m.decision
}

type mockAuditService struct {
	entries []*models.GateAuditEntry
	err     error
}

func (m *mockAuditService) RecordDecision(ctx context.Context, decision *models.SaleDecision) error {
	return m.err
}

func (m *mockAuditService) GetRecent(ctx context.Context, limit int) ([]*models.GateAuditEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

type mockAllergenRepo struct {
	allergens []*models.Allergen
	err       error
}

func (m *mockAllergenRepo) GetActive(ctx context.Context) ([]*models.Allergen, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.allergens, nil
}

func (m *mockAllergenRepo) Upsert(ctx context.Context, allergen *models.Allergen) error {
	return m.err
}

type mockAssociationRepo struct {
	byProduct map[uuid.UUID][]*models.ProductAllergenAssociation
	upserted  []*models.ProductAllergenAssociation
	err       error
}

func (m *mockAssociationRepo) GetByProduct(ctx context.Context, productID uuid.UUID) ([]*models.ProductAllergenAssociation, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byProduct[productID], nil
}

func (m *mockAssociationRepo) Upsert(ctx context.Context, assoc *models.ProductAllergenAssociation) error {
	if m.err != nil {
		return m.err
	}
	if assoc.Presence != models.PresenceContains && assoc.Presence != models.PresenceTraces {
		return apperrors.ErrInvalidInput
	}
	m.upserted = append(m.upserted, assoc)
	return nil
}

func (m *mockAssociationRepo) Delete(ctx context.Context, productID, allergenID uuid.UUID) error {
	if m.err != nil {
		return m.err
	}
	if m.byProduct[productID] == nil {
		return apperrors.ErrNotFound
	}
	return nil
}
