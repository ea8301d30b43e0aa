package prayer

import (
	"fmt"
	"sort"
	"time"
)

// NextEvent identifies the upcoming event. Fallback is set when no candidate
// was after now and the earliest candidate was returned instead; the result
// is then stale until the table is refreshed.
type NextEvent struct {
	Name     Event     `json:"name"`
	Time     time.Time `json:"time"`
	Fallback bool      `json:"fallback,omitempty"`
}

// SelectNext returns the first of the nine candidates (the table's eight
// events plus tomorrowFajr on the following day) that is strictly after now.
// If none is, today's fajr is returned with Fallback set.
func SelectNext(table Table, tomorrowFajr string, now time.Time) (NextEvent, error) {
	candidates, err := table.Entries()
	if err != nil {
		return NextEvent{}, err
	}

	wrap, err := ParseTimeOfDay(tomorrowFajr, table.Date.AddDate(0, 0, 1))
	if err != nil {
		return NextEvent{}, fmt.Errorf("failed to parse tomorrow's fajr: %w", err)
	}
	candidates = append(candidates, Entry{Name: fajrTomorrow, Time: wrap})

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Time.Before(candidates[j].Time)
	})

	for _, c := range candidates {
		if c.Time.After(now) {
			return NextEvent{Name: displayEvent(c.Name), Time: c.Time}, nil
		}
	}

	first := candidates[0]
	return NextEvent{Name: displayEvent(first.Name), Time: first.Time, Fallback: true}, nil
}

func displayEvent(name Event) Event {
	if name == fajrTomorrow {
		return Fajr
	}
	return name
}

// CurrentEvent returns the most recent table event at or before now, or
// false when now is before the day's fajr.
func CurrentEvent(table Table, now time.Time) (Entry, bool) {
	entries, err := table.Entries()
	if err != nil {
		return Entry{}, false
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.Before(entries[j].Time)
	})

	var current Entry
	found := false
	for _, e := range entries {
		if e.Time.After(now) {
			break
		}
		current = e
		found = true
	}
	return current, found
}

// TimeRemaining returns the duration until the given event.
func TimeRemaining(next NextEvent, now time.Time) time.Duration {
	return next.Time.Sub(now)
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
