package prayer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimeFormat is returned for time-of-day strings that are not
// "HH:MM" with an hour in 0-23 and a minute in 0-59.
var ErrInvalidTimeFormat = errors.New("invalid time format")

// clockLayout is the "HH:MM" layout used for every stored time of day.
const clockLayout = "15:04"

// ParseTimeOfDay parses a time string like "15:02" or "15:02 (BST)" into an
// instant on the calendar day of anchor, in anchor's location. Seconds and
// sub-seconds are zero. The anchor itself is never modified.
func ParseTimeOfDay(raw string, anchor time.Time) (time.Time, error) {
	// Strip timezone suffix like " (BST)" that the API sometimes appends.
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, " "); idx != -1 {
		s = s[:idx]
	}

	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 || !digits(hh) || !digits(mm) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, raw)
	}

	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("%w: invalid hour in %q", ErrInvalidTimeFormat, raw)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("%w: invalid minute in %q", ErrInvalidTimeFormat, raw)
	}

	return time.Date(anchor.Year(), anchor.Month(), anchor.Day(), hour, minute, 0, 0, anchor.Location()), nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatTimeOfDay formats an instant as "HH:MM", truncating seconds.
func FormatTimeOfDay(t time.Time) string {
	return t.Format(clockLayout)
}

// DayStart returns midnight of t's calendar day in t's location.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
