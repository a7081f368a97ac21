package domain

import (
	"fmt"
	"time"
)

// LocalLayout is the ISO-8601 wire form without a zone offset.
// Sub-second digits are written only when present.
const LocalLayout = "2006-01-02T15:04:05.999999"

// FormatLocal renders t's wall clock without a zone.
func FormatLocal(t time.Time) string {
	return t.Format(LocalLayout)
}

// ParseLocal reads a zone-less ISO-8601 timestamp as wall clock in loc.
func ParseLocal(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(LocalLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse local time %q: %w", s, err)
	}
	return t, nil
}

// WallClock re-labels t's wall clock in loc without shifting it.
func WallClock(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
