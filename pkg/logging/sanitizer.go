package logging

import "regexp"

const (
	// MaxRestrictionLogLength is the maximum number of characters of a
	// restriction text that may reach a log line.
	MaxRestrictionLogLength = 24
	// RedactedText is the replacement text for sensitive data.
	RedactedText = "[REDACTED]"
)

var (
	// Pattern to match potential passwords in connection strings.
	// Matches: password=xxx, pwd=xxx, pass=xxx (until next delimiter)
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Pattern to match connection string credentials (user:pass@host format)
	connStringPattern = regexp.MustCompile(`://[^:]+:[^@]+@[^/\s]+`)
)

// SanitizeConnectionString removes sensitive data from connection strings.
// Use this before logging any connection string.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// SanitizeRestriction prepares a student's restriction text for logging.
// Restriction text is a minor's health data: log lines carry only a short
// prefix, enough to correlate a gate decision with a support ticket without
// writing the full medical note to disk.
func SanitizeRestriction(text string) string {
	if text == "" {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= MaxRestrictionLogLength {
		return string(runes)
	}
	return string(runes[:MaxRestrictionLogLength]) + "…" + RedactedText
}
