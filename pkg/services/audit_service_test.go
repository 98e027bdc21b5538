package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kiosco-inc/kiosco-engine/pkg/models"
)

type mockAuditRepo struct {
	entries   []*models.GateAuditEntry
	createErr error
	getErr    error
	lastLimit int
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *models.GateAuditEntry) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) GetRecent(ctx context.Context, limit int) ([]*models.GateAuditEntry, error) {
	m.lastLimit = limit
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.entries, nil
}

func TestAuditService_RecordDecision(t *testing.T) {
	repo := &mockAuditRepo{}
	svc := NewAuditService(repo, zap.NewNop())

	decision := &models.SaleDecision{
		Outcome: models.GateBlock,
		Message: "sale blocked",
		Cart: models.CartConflictResult{
			Conflict:    true,
			MaxSeverity: models.SeverityCritical,
			SafeCount:   2,
			Products: []models.ProductConflictResult{
				{Conflict: true, MaxSeverity: models.SeverityCritical},
			},
		},
	}

	err := svc.RecordDecision(context.Background(), decision)
	require.NoError(t, err)

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.Equal(t, models.GateBlock, entry.Outcome)
	assert.Equal(t, models.SeverityCritical, entry.MaxSeverity)
	assert.Equal(t, 3, entry.ItemCount)
	assert.Len(t, entry.Products, 1)
}

func TestAuditService_RecordDecision_RepoError(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("insert failed")}
	svc := NewAuditService(repo, zap.NewNop())

	err := svc.RecordDecision(context.Background(), &models.SaleDecision{Outcome: models.GateWarn})
	assert.Error(t, err)
}

func TestAuditService_GetRecent_DefaultLimit(t *testing.T) {
	repo := &mockAuditRepo{}
	svc := NewAuditService(repo, zap.NewNop())

	_, err := svc.GetRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 50, repo.lastLimit)

	_, err = svc.GetRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 10, repo.lastLimit)
}
