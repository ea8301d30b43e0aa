package prayer

import (
	"errors"
	"fmt"
	"time"

	"github.com/smokyabdulrahman/prayer-clock/internal/api"
)

// ErrUnorderedTimings is returned when the six source times are not strictly
// increasing through the day.
var ErrUnorderedTimings = errors.New("source timings are not in chronological order")

// Event names a time in the table.
type Event string

// The eight named times, in chronological order starting at dawn.
const (
	Fajr      Event = "fajr"
	Sunrise   Event = "sunrise"
	Dhuhr     Event = "dhuhr"
	Asr       Event = "asr"
	Maghrib   Event = "maghrib"
	Isha      Event = "isha"
	Midnight  Event = "midnight"
	LastThird Event = "lastThird"
)

// fajrTomorrow labels the ninth candidate used by SelectNext to wrap around
// to the following day. It is never returned to callers.
const fajrTomorrow Event = "fajr-tomorrow"

// Events lists every table entry in display order.
var Events = []Event{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha, Midnight, LastThird}

// sourceEvents are the times that come from the timings source.
var sourceEvents = []Event{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

// Table is a complete day of times. All values are canonical "HH:MM" strings
// for the anchor day; Midnight and LastThird may fall after clock midnight,
// in which case Instant places them on the following day.
type Table struct {
	Date      time.Time `json:"date"`
	Fajr      string    `json:"fajr"`
	Sunrise   string    `json:"sunrise"`
	Dhuhr     string    `json:"dhuhr"`
	Asr       string    `json:"asr"`
	Maghrib   string    `json:"maghrib"`
	Isha      string    `json:"isha"`
	Midnight  string    `json:"midnight"`
	LastThird string    `json:"lastThird"`
}

// Entry is one (event, instant) pair of a table.
type Entry struct {
	Name Event
	Time time.Time
}

// NewTable builds the full table for anchor's day from the source timings
// and the next day's fajr. It fails without producing a partial table when a
// time is malformed, the source times are out of order, or the night window
// is empty.
func NewTable(timings api.Timings, tomorrowFajr string, anchor time.Time) (Table, error) {
	day := DayStart(anchor)
	tbl := Table{Date: day}

	raw := map[Event]string{
		Fajr:    timings.Fajr,
		Sunrise: timings.Sunrise,
		Dhuhr:   timings.Dhuhr,
		Asr:     timings.Asr,
		Maghrib: timings.Maghrib,
		Isha:    timings.Isha,
	}

	var prev time.Time
	for i, name := range sourceEvents {
		t, err := ParseTimeOfDay(raw[name], day)
		if err != nil {
			return Table{}, fmt.Errorf("failed to parse time for %s: %w", name, err)
		}
		if i > 0 && !t.After(prev) {
			return Table{}, fmt.Errorf("%w: %s (%s) is not after %s", ErrUnorderedTimings,
				name, FormatTimeOfDay(t), sourceEvents[i-1])
		}
		prev = t
		tbl.set(name, FormatTimeOfDay(t))
	}

	special, err := DeriveSpecialTimes(tbl.Maghrib, tomorrowFajr, day)
	if err != nil {
		return Table{}, err
	}
	tbl.Midnight = special.Midnight
	tbl.LastThird = special.LastThird

	return tbl, nil
}

// Get returns the "HH:MM" value of the given event.
func (t Table) Get(name Event) (string, bool) {
	switch name {
	case Fajr:
		return t.Fajr, true
	case Sunrise:
		return t.Sunrise, true
	case Dhuhr:
		return t.Dhuhr, true
	case Asr:
		return t.Asr, true
	case Maghrib:
		return t.Maghrib, true
	case Isha:
		return t.Isha, true
	case Midnight:
		return t.Midnight, true
	case LastThird:
		return t.LastThird, true
	default:
		return "", false
	}
}

func (t *Table) set(name Event, v string) {
	switch name {
	case Fajr:
		t.Fajr = v
	case Sunrise:
		t.Sunrise = v
	case Dhuhr:
		t.Dhuhr = v
	case Asr:
		t.Asr = v
	case Maghrib:
		t.Maghrib = v
	case Isha:
		t.Isha = v
	case Midnight:
		t.Midnight = v
	case LastThird:
		t.LastThird = v
	}
}

// Instant returns the absolute instant of the given event. Derived night
// times whose clock value is earlier than maghrib belong to the next day.
func (t Table) Instant(name Event) (time.Time, error) {
	raw, ok := t.Get(name)
	if !ok {
		return time.Time{}, fmt.Errorf("unknown event: %s", name)
	}

	at, err := ParseTimeOfDay(raw, t.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse time for %s: %w", name, err)
	}

	if name == Midnight || name == LastThird {
		maghrib, err := ParseTimeOfDay(t.Maghrib, t.Date)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse time for %s: %w", Maghrib, err)
		}
		if at.Before(maghrib) {
			at = at.AddDate(0, 0, 1)
		}
	}

	return at, nil
}

// Entries returns all eight events with their instants, in display order.
func (t Table) Entries() ([]Entry, error) {
	entries := make([]Entry, 0, len(Events))
	for _, name := range Events {
		at, err := t.Instant(name)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: name, Time: at})
	}
	return entries, nil
}
