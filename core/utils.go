package core

import (
	"strings"
	"time"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// DateString formats t as an ISO calendar date (YYYY-MM-DD) in t's location.
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}
