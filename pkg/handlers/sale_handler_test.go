package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kiosco-inc/kiosco-engine/pkg/apperrors"
	"github.com/kiosco-inc/kiosco-engine/pkg/models"
)

func newSaleMux(conflicts *mockConflictService, gate *mockGateService, audit *mockAuditService) *http.ServeMux {
	mux := http.NewServeMux()
	handler := NewSaleHandler(conflicts, gate, audit, zap.NewNop())
	handler.RegisterRoutes(mux)
	return mux
}

func TestGate_AllowReturns200(t *testing.T) {
	conflicts := &mockConflictService{
		cartResult: &models.CartConflictResult{Conflict: false, SafeCount: 2},
	}
	gate := &mockGateService{
		decision: &models.SaleDecision{Outcome: models.GateAllow, Message: "no dietary conflicts detected"},
	}
	mux := newSaleMux(conflicts, gate, &mockAuditService{})

	body, _ := json.Marshal(GateSaleRequest{
		Items: []models.CartItem{
			{ProductID: uuid.New(), Quantity: 1},
			{ProductID: uuid.New(), Quantity: 1},
		},
		Restriction: "",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/sales/gate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ApiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestGate_BlockReturns409(t *testing.T) {
	conflicts := &mockConflictService{
		cartResult: &models.CartConflictResult{
			Conflict:    true,
			MaxSeverity: models.SeverityCritical,
		},
	}
	gate := &mockGateService{
		decision: &models.SaleDecision{Outcome: models.GateBlock, Message: "sale blocked"},
	}
	mux := newSaleMux(conflicts, gate, &mockAuditService{})

	body, _ := json.Marshal(GateSaleRequest{
		Items:       []models.CartItem{{ProductID: uuid.New(), Quantity: 1}},
		Restriction: "alergia a frutos secos",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/sales/gate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp ApiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, rec.Body.String(), "block")
}

func TestGate_InvalidJSONReturns400(t *testing.T) {
	mux := newSaleMux(&mockConflictService{}, &mockGateService{}, &mockAuditService{})

	req := httptest.NewRequest(http.MethodPost, "/api/sales/gate", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGate_InvalidCartReturns400(t *testing.T) {
	conflicts := &mockConflictService{err: apperrors.ErrInvalidInput}
	mux := newSaleMux(conflicts, &mockGateService{}, &mockAuditService{})

	body, _ := json.Marshal(GateSaleRequest{
		Items:       []models.CartItem{{ProductID: uuid.New(), Quantity: -1}},
		Restriction: "alergia",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/sales/gate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGate_DataSourceUnavailableReturns503(t *testing.T) {
	conflicts := &mockConflictService{
		err: errors.Join(apperrors.ErrDataSourceUnavailable, errors.New("connection refused")),
	}
	mux := newSaleMux(conflicts, &mockGateService{}, &mockAuditService{})

	body, _ := json.Marshal(GateSaleRequest{
		Items:       []models.CartItem{{ProductID: uuid.New(), Quantity: 1}},
		Restriction: "alergia a frutos secos",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/sales/gate", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	// The payload must not look like a clean allow.
	assert.Contains(t, rec.Body.String(), "safety_check_unavailable")
}

func TestProductConflicts_PassesRestriction(t *testing.T) {
	productID := uuid.New()
	conflicts := &mockConflictService{
		productResult: &models.ProductConflictResult{
			ProductID: productID,
			Conflict:  true,
			Sellable:  true,
		},
	}
	mux := newSaleMux(conflicts, &mockGateService{}, &mockAuditService{})

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+productID.String()+"/conflicts?restriction=sin+leche", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sin leche", conflicts.lastRestriction)
}

func TestProductConflicts_BadIDReturns400(t *testing.T) {
	mux := newSaleMux(&mockConflictService{}, &mockGateService{}, &mockAuditService{})

	req := httptest.NewRequest(http.MethodGet, "/api/products/not-a-uuid/conflicts", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAudit_ListsEntries(t *testing.T) {
	audit := &mockAuditService{
		entries: []*models.GateAuditEntry{
			{ID: uuid.New(), Outcome: models.GateBlock, MaxSeverity: models.SeverityCritical},
		},
	}
	mux := newSaleMux(&mockConflictService{}, &mockGateService{}, audit)

	req := httptest.NewRequest(http.MethodGet, "/api/sales/audit?limit=5", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ApiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestAudit_BadLimitReturns400(t *testing.T) {
	mux := newSaleMux(&mockConflictService{}, &mockGateService{}, &mockAuditService{})

	req := httptest.NewRequest(http.MethodGet, "/api/sales/audit?limit=minus-one", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
