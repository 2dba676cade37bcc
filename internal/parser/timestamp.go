package parser

import "time"

// Timestamp layouts seen in the wild: RFC 3339 with an offset,
// plus a local-naive fallback without one. Go's parser accepts
// fractional seconds after the seconds field for both.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// parseTimestamp parses a dialect-native timestamp string.
// Returns the zero time for an empty or unparseable string;
// callers treat that as "no timestamp", never an error.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
