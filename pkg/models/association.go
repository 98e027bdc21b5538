package models

import (
	"time"

	"github.com/google/uuid"
)

// Presence kinds for a product↔allergen association.
const (
	// PresenceContains means the allergen is a known ingredient.
	PresenceContains = "contains"
	// PresenceTraces means the product may contain traces (shared line,
	// cross-contamination) without the allergen being an ingredient.
	PresenceTraces = "may_contain_traces"
)

// PresenceLabel returns the human-readable label for a presence kind,
// used in conflict summaries and audit entries.
func PresenceLabel(kind string) string {
	switch kind {
	case PresenceContains:
		return "contains"
	case PresenceTraces:
		return "may contain traces"
	default:
		return kind
	}
}

// ProductAllergenAssociation is an explicit curated link between a product
// and an allergen. Stored in engine_product_allergens table. At most one
// row exists per (product, allergen) pair; re-recording overwrites the
// presence kind and observation.
type ProductAllergenAssociation struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	AllergenID  uuid.UUID `json:"allergen_id"`
	Presence    string    `json:"presence"` // "contains" or "may_contain_traces"
	Observation string    `json:"observation,omitempty"`
	RecordedBy  string    `json:"recorded_by,omitempty"` // audit only, never used for matching

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
