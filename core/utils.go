package core

import "strings"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// NormalizeClockTime truncates a "HH:MM[:SS]" time-of-day string to "HH:MM".
// Returns "" when the input does not carry at least hours and minutes.
func NormalizeClockTime(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 5 || s[2] != ':' {
		return ""
	}
	return s[:5]
}
