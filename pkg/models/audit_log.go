package models

import (
	"time"

	"github.com/google/uuid"
)

// GateAuditEntry records a non-ALLOW sale decision for later review.
// Stored in engine_gate_audit table; the conflicting products are kept as
// JSONB so the full evidence survives catalog edits.
type GateAuditEntry struct {
	ID          uuid.UUID               `json:"id"`
	Outcome     GateOutcome             `json:"outcome"`
	MaxSeverity SeverityTier            `json:"max_severity"`
	ItemCount   int                     `json:"item_count"`
	Products    []ProductConflictResult `json:"products,omitempty"`
	Message     string                  `json:"message"`
	CreatedAt   time.Time               `json:"created_at"`
}
