package db

import (
	"fmt"
	"time"
)

// legacyTimeLayout is the encoding the remote API uses for created_at
// and which early cache versions stored verbatim. New writes are always
// RFC3339; reads accept both until MigrateDatetimes has run.
const legacyTimeLayout = "Mon Jan 02 15:04:05 -0700 2006"

// ParseCreatedAt parses a stored created_at value in either the
// canonical RFC3339 encoding or the legacy API encoding.
func ParseCreatedAt(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(legacyTimeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at %q: %w", value, err)
	}
	return t, nil
}

// FormatCreatedAt renders a timestamp in the canonical stored encoding.
func FormatCreatedAt(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
