package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kiosco-inc/kiosco-engine/pkg/models"
)

func newCatalogMux(allergens *mockAllergenRepo, associations *mockAssociationRepo) *http.ServeMux {
	mux := http.NewServeMux()
	handler := NewCatalogHandler(allergens, associations, zap.NewNop())
	handler.RegisterRoutes(mux)
	return mux
}

func TestListAllergens(t *testing.T) {
	allergens := &mockAllergenRepo{
		allergens: []*models.Allergen{
			{ID: uuid.New(), Name: "Frutos Secos", Severity: models.SeverityCritical, Active: true},
			{ID: uuid.New(), Name: "Lactosa", Severity: models.SeverityMedium, Active: true},
		},
	}
	mux := newCatalogMux(allergens, &mockAssociationRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/allergens", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Frutos Secos")
	assert.Contains(t, rec.Body.String(), `"total":2`)
}

func TestAssociate_Upserts(t *testing.T) {
	productID := uuid.New()
	allergenID := uuid.New()
	associations := &mockAssociationRepo{}
	mux := newCatalogMux(&mockAllergenRepo{}, associations)

	body, _ := json.Marshal(AssociateRequest{
		Presence:    models.PresenceTraces,
		Observation: "shared fryer",
		RecordedBy:  "kitchen-admin",
	})

	req := httptest.NewRequest(http.MethodPut,
		"/api/products/"+productID.String()+"/allergens/"+allergenID.String(),
		bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, associations.upserted, 1)
	assert.Equal(t, productID, associations.upserted[0].ProductID)
	assert.Equal(t, allergenID, associations.upserted[0].AllergenID)
	assert.Equal(t, models.PresenceTraces, associations.upserted[0].Presence)
}

func TestAssociate_RejectsUnknownPresence(t *testing.T) {
	mux := newCatalogMux(&mockAllergenRepo{}, &mockAssociationRepo{})

	body, _ := json.Marshal(AssociateRequest{Presence: "sometimes"})

	req := httptest.NewRequest(http.MethodPut,
		"/api/products/"+uuid.NewString()+"/allergens/"+uuid.NewString(),
		bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDissociate_NotFoundReturns404(t *testing.T) {
	mux := newCatalogMux(&mockAllergenRepo{}, &mockAssociationRepo{})

	req := httptest.NewRequest(http.MethodDelete,
		"/api/products/"+uuid.NewString()+"/allergens/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAssociations(t *testing.T) {
	productID := uuid.New()
	associations := &mockAssociationRepo{
		byProduct: map[uuid.UUID][]*models.ProductAllergenAssociation{
			productID: {
				{ID: uuid.New(), ProductID: productID, AllergenID: uuid.New(), Presence: models.PresenceContains},
			},
		},
	}
	mux := newCatalogMux(&mockAllergenRepo{}, associations)

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+productID.String()+"/allergens", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), models.PresenceContains)
}
