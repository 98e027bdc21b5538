// Package matching holds the pure text and severity primitives the conflict
// analyzer is built from. Matching is deliberately naive: lower-cased
// substring containment, no tokenization and no stemming. Overlap false
// positives ("almendra" inside "almendrado") are an accepted limitation of
// the product, not a defect.
package matching

import (
	"strings"

	"github.com/kiosco-inc/kiosco-engine/pkg/models"
)

// Contains reports whether needle appears inside haystack, case-insensitive
// and tolerant of surrounding whitespace. An empty or blank needle never
// matches.
func Contains(haystack, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// MaxSeverity returns the higher of two tiers. SeverityNone is the identity
// element, so a list of severities can be folded starting from it.
func MaxSeverity(a, b models.SeverityTier) models.SeverityTier {
	if a > b {
		return a
	}
	return b
}
