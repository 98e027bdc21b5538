package models

// GateOutcome is the terminal decision for a sale.
type GateOutcome string

const (
	GateAllow GateOutcome = "allow"
	GateWarn  GateOutcome = "warn"
	GateBlock GateOutcome = "block"
)

// SaleDecision pairs the gate outcome with the cart result that triggered
// it, so callers can audit-log the full evidence behind a WARN or BLOCK.
type SaleDecision struct {
	Outcome GateOutcome        `json:"outcome"`
	Cart    CartConflictResult `json:"cart"`
	Message string             `json:"message"`
}
