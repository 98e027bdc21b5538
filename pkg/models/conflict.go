package models

import "github.com/google/uuid"

// Match origins.
const (
	// OriginDirectAssociation means a curated product↔allergen link matched
	// the restriction text.
	OriginDirectAssociation = "direct_association"
	// OriginKeywordInference means the same keyword appeared in both the
	// restriction text and the product description.
	OriginKeywordInference = "keyword_inference"
)

// Confidence scores per match kind. These are display/audit values; the
// sale gate decides on severity tiers, never on confidence.
const (
	ConfidenceContains = 100
	ConfidenceInferred = 70
	ConfidenceTraces   = 50
)

// ConflictMatch is a single detected conflict between a product and a
// student's restriction text. Built fresh per analysis, never persisted by
// the engine itself.
type ConflictMatch struct {
	AllergenID   uuid.UUID    `json:"allergen_id"`
	AllergenName string       `json:"allergen_name"`
	Icon         string       `json:"icon,omitempty"`
	Label        string       `json:"label"` // presence-kind label or matched keyword note
	Severity     SeverityTier `json:"severity"`
	Confidence   int          `json:"confidence"`
	Origin       string       `json:"origin"`
}

// ProductConflictResult is the outcome of analyzing one product against one
// restriction text.
type ProductConflictResult struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Conflict    bool            `json:"conflict"`
	MaxSeverity SeverityTier    `json:"max_severity"`
	Matches     []ConflictMatch `json:"matches,omitempty"` // highest confidence first
	Summary     string          `json:"summary"`
	Sellable    bool            `json:"sellable"`
}

// CartConflictResult aggregates per-product results across a whole cart.
// Products holds only the conflicting items, in cart input order.
type CartConflictResult struct {
	Conflict    bool                    `json:"conflict"`
	Products    []ProductConflictResult `json:"products,omitempty"`
	SafeCount   int                     `json:"safe_count"`
	MaxSeverity SeverityTier            `json:"max_severity"`
}
