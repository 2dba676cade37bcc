// Package timeutil formats parsed timestamps for storage.
package timeutil

import "time"

// Format renders t as RFC3339Nano in UTC, or "" for the zero
// time.
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// Ptr renders t like Format but returns nil for the zero time,
// for nullable database columns.
func Ptr(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := Format(t)
	return &s
}
