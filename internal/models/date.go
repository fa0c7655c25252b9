package models

import (
	"strings"
	"time"
)

// DateLayout is the canonical calendar-date format used for signal dates.
const DateLayout = "2006-01-02"

var dateLayouts = []string{
	DateLayout,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate parses a signal date in any of the accepted layouts.
// The second return value is false when the string is not a usable date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// DaysBetween returns the whole number of days between a and b, ignoring sign.
// Seconds are used rather than time.Duration, which saturates after about 292 years.
func DaysBetween(a, b time.Time) int {
	secs := a.Unix() - b.Unix()
	if secs < 0 {
		secs = -secs
	}
	return int(secs / 86400)
}
