package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kiosco-inc/kiosco-engine/pkg/apperrors"
	"github.com/kiosco-inc/kiosco-engine/pkg/models"
	"github.com/kiosco-inc/kiosco-engine/pkg/repositories"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// AllergenListResponse for GET /api/allergens
type AllergenListResponse struct {
	Allergens []*models.Allergen `json:"allergens"`
	Total     int                `json:"total"`
}

// AssociateRequest for PUT /api/products/{pid}/allergens/{aid}
type AssociateRequest struct {
	Presence    string `json:"presence"` // "contains" or "may_contain_traces"
	Observation string `json:"observation,omitempty"`
	RecordedBy  string `json:"recorded_by,omitempty"`
}

// ============================================================================
// Handler
// ============================================================================

// CatalogHandler serves the allergen catalog and the curated
// product↔allergen associations.
type CatalogHandler struct {
	allergens    repositories.AllergenRepository
	associations repositories.AssociationRepository
	logger       *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(
	allergens repositories.AllergenRepository,
	associations repositories.AssociationRepository,
	logger *zap.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		allergens:    allergens,
		associations: associations,
		logger:       logger,
	}
}

// RegisterRoutes registers the catalog handler's routes on the given mux.
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/allergens", h.List)
	mux.HandleFunc("GET /api/products/{pid}/allergens", h.ListAssociations)
	mux.HandleFunc("PUT /api/products/{pid}/allergens/{aid}", h.Associate)
	mux.HandleFunc("DELETE /api/products/{pid}/allergens/{aid}", h.Dissociate)
}

// List handles GET /api/allergens
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	allergens, err := h.allergens.GetActive(r.Context())
	if err != nil {
		h.logger.Error("Failed to list allergens", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_allergens_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := AllergenListResponse{
		Allergens: allergens,
		Total:     len(allergens),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListAssociations handles GET /api/products/{pid}/allergens
func (h *CatalogHandler) ListAssociations(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	assocs, err := h.associations.GetByProduct(r.Context(), productID)
	if err != nil {
		h.logger.Error("Failed to list product associations",
			zap.String("product_id", productID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_associations_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: assocs}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Associate handles PUT /api/products/{pid}/allergens/{aid}.
// The operation is an idempotent upsert: repeating it with the same body
// leaves a single association with the latest presence and observation.
func (h *CatalogHandler) Associate(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}
	allergenID, ok := ParseAllergenID(w, r, h.logger)
	if !ok {
		return
	}

	var req AssociateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	assoc := &models.ProductAllergenAssociation{
		ProductID:   productID,
		AllergenID:  allergenID,
		Presence:    req.Presence,
		Observation: req.Observation,
		RecordedBy:  req.RecordedBy,
	}

	if err := h.associations.Upsert(r.Context(), assoc); err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_presence", err.Error()); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to upsert association",
			zap.String("product_id", productID.String()),
			zap.String("allergen_id", allergenID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "associate_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: assoc}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Dissociate handles DELETE /api/products/{pid}/allergens/{aid}
func (h *CatalogHandler) Dissociate(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}
	allergenID, ok := ParseAllergenID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.associations.Delete(r.Context(), productID, allergenID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "association_not_found", "No association exists for this product and allergen"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to delete association",
			zap.String("product_id", productID.String()),
			zap.String("allergen_id", allergenID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "dissociate_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "association removed"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
