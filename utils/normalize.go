// utils/normalize.go
package utils

import (
	"fmt"
	"strings"
	"time"
)

// Accepted timestamp layouts, tried in order. Admin forms send RFC3339;
// imported rosters sometimes carry bare dates.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimePtr coerces a raw timestamp string into *time.Time.
// Empty input returns nil (field absent), unparseable input returns an error —
// callers must not silently default through bad dates.
func ParseTimePtr(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unparseable timestamp %q (use RFC3339)", raw)
}

// FormatScore renders a score to two decimals with a "0.00" fallback for
// unscored entries, as printed on certificates.
func FormatScore(score *float64) string {
	if score == nil {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", *score)
}

// FormatRank renders a rank as a plain integer string, "0" when unranked.
func FormatRank(rank int) string {
	return fmt.Sprintf("%d", rank)
}

// PadNumber zero-pads n to the given width (e.g., PadNumber(7, 4) → "0007").
func PadNumber(n, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

// ShortID returns the last n characters of an id, uppercased, used in
// human-readable certificate numbers.
func ShortID(id string, n int) string {
	if len(id) > n {
		id = id[len(id)-n:]
	}
	return strings.ToUpper(id)
}
