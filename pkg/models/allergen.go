package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SeverityTier ranks how dangerous exposure to an allergen is for the
// affected student. Tiers are totally ordered: Critical > High > Medium > Low.
// SeverityNone is the zero value and means "no severity resolved yet".
type SeverityTier int

const (
	SeverityNone SeverityTier = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[SeverityTier]string{
	SeverityNone:     "none",
	SeverityLow:      "low",
	SeverityMedium:   "medium",
	SeverityHigh:     "high",
	SeverityCritical: "critical",
}

func (s SeverityTier) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// MarshalJSON encodes the tier as its lowercase name.
func (s SeverityTier) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes a tier from its lowercase name. "none" is accepted
// here (unlike ParseSeverityTier) because serialized results legitimately
// carry it for conflict-free products.
func (s *SeverityTier) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	if name == severityNames[SeverityNone] {
		*s = SeverityNone
		return nil
	}
	tier, err := ParseSeverityTier(name)
	if err != nil {
		return err
	}
	*s = tier
	return nil
}

// ParseSeverityTier converts a stored tier name back to its enum value.
// Unknown names are rejected so a corrupted catalog row fails loudly
// instead of silently matching at the wrong severity.
func ParseSeverityTier(name string) (SeverityTier, error) {
	for tier, n := range severityNames {
		if n == name && tier != SeverityNone {
			return tier, nil
		}
	}
	return SeverityNone, fmt.Errorf("unknown severity tier %q", name)
}

// Allergen is a catalog entry for a substance or category of dietary concern.
// Stored in engine_allergens table. The keyword list is parsed once at load
// time; matching never re-parses it.
type Allergen struct {
	ID       uuid.UUID    `json:"id"`
	Name     string       `json:"name"`
	Icon     string       `json:"icon,omitempty"`
	Severity SeverityTier `json:"severity"`
	Keywords []string     `json:"keywords,omitempty"`
	Active   bool         `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
