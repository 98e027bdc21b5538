package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kiosco-inc/kiosco-engine/pkg/apperrors"
	"github.com/kiosco-inc/kiosco-engine/pkg/logging"
	"github.com/kiosco-inc/kiosco-engine/pkg/models"
	"github.com/kiosco-inc/kiosco-engine/pkg/services"
)

// ============================================================================
// Request/Response Types
// ============================================================================

// GateSaleRequest for POST /api/sales/gate
type GateSaleRequest struct {
	Items       []models.CartItem `json:"items"`
	Restriction string            `json:"restriction"`
}

// GateSaleResponse wraps the decision returned to the POS.
type GateSaleResponse struct {
	Decision *models.SaleDecision `json:"decision"`
}

// AuditListResponse for GET /api/sales/audit
type AuditListResponse struct {
	Entries []*models.GateAuditEntry `json:"entries"`
	Total   int                      `json:"total"`
}

// ============================================================================
// Handler
// ============================================================================

// SaleHandler exposes the sale gate to the POS pipeline.
type SaleHandler struct {
	conflicts services.ConflictService
	gate      services.SaleGateService
	audit     services.AuditService
	logger    *zap.Logger
}

// NewSaleHandler creates a new SaleHandler.
func NewSaleHandler(
	conflicts services.ConflictService,
	gate services.SaleGateService,
	audit services.AuditService,
	logger *zap.Logger,
) *SaleHandler {
	return &SaleHandler{
		conflicts: conflicts,
		gate:      gate,
		audit:     audit,
		logger:    logger,
	}
}

// RegisterRoutes registers the sale handler's routes on the given mux.
func (h *SaleHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sales/gate", h.Gate)
	mux.HandleFunc("GET /api/sales/audit", h.Audit)
	mux.HandleFunc("GET /api/products/{pid}/conflicts", h.ProductConflicts)
}

// Gate handles POST /api/sales/gate. A BLOCK decision is returned with
// HTTP 409 so a naive POS client cannot mistake it for a successful sale;
// the decision payload is identical in shape for all three outcomes.
func (h *SaleHandler) Gate(w http.ResponseWriter, r *http.Request) {
	var req GateSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	cartResult, err := h.conflicts.AnalyzeCart(r.Context(), req.Items, req.Restriction)
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}

	decision := h.gate.Decide(r.Context(), cartResult)

	h.logger.Info("Sale gated",
		zap.String("outcome", string(decision.Outcome)),
		zap.Int("items", len(req.Items)),
		zap.String("max_severity", cartResult.MaxSeverity.String()),
		zap.String("restriction", logging.SanitizeRestriction(req.Restriction)))

	status := http.StatusOK
	if decision.Outcome == models.GateBlock {
		status = http.StatusConflict
	}

	if err := WriteJSON(w, status, ApiResponse{Success: decision.Outcome != models.GateBlock, Data: GateSaleResponse{Decision: decision}}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ProductConflicts handles GET /api/products/{pid}/conflicts?restriction=...
// Used by kitchen staff to check a single product before handing it over.
func (h *SaleHandler) ProductConflicts(w http.ResponseWriter, r *http.Request) {
	productID, ok := ParseProductID(w, r, h.logger)
	if !ok {
		return
	}

	restriction := r.URL.Query().Get("restriction")

	result, err := h.conflicts.AnalyzeProduct(r.Context(), productID, restriction)
	if err != nil {
		h.writeAnalysisError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Audit handles GET /api/sales/audit?limit=N
func (h *SaleHandler) Audit(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		limit = parsed
	}

	entries, err := h.audit.GetRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list gate audit entries", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "list_audit_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := AuditListResponse{
		Entries: entries,
		Total:   len(entries),
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeAnalysisError maps engine errors to HTTP statuses. An unavailable
// data source is 503: the caller must know the safety check did not run,
// never a silent allow.
func (h *SaleHandler) writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_cart", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
	case errors.Is(err, apperrors.ErrDataSourceUnavailable):
		h.logger.Error("Safety check unavailable", zap.Error(err))
		if err := ErrorResponse(w, http.StatusServiceUnavailable, "safety_check_unavailable", "could not determine sale safety"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
	default:
		h.logger.Error("Cart analysis failed", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "analysis_failed", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
	}
}
