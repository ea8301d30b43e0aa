package prayer

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedNightWindow is returned when the next day's fajr is not after
// the day's maghrib, so the night has no positive length.
var ErrMalformedNightWindow = errors.New("malformed night window")

// SpecialTimes holds the two times derived from the night interval.
type SpecialTimes struct {
	Midnight  string // Islamic midnight, "HH:MM"
	LastThird string // start of the last third of the night, "HH:MM"
}

// NightInterval is the span from a day's maghrib to the following fajr.
type NightInterval struct {
	Start time.Time
	End   time.Time
}

// NewNightInterval anchors maghrib to anchor's day and fajr to the next day.
func NewNightInterval(maghrib, nextFajr string, anchor time.Time) (NightInterval, error) {
	start, err := ParseTimeOfDay(maghrib, anchor)
	if err != nil {
		return NightInterval{}, fmt.Errorf("maghrib: %w", err)
	}
	end, err := ParseTimeOfDay(nextFajr, anchor.AddDate(0, 0, 1))
	if err != nil {
		return NightInterval{}, fmt.Errorf("next fajr: %w", err)
	}
	return NightBetween(start, end)
}

// NightBetween validates that dawn comes strictly after sunset.
func NightBetween(start, end time.Time) (NightInterval, error) {
	if !end.After(start) {
		return NightInterval{}, fmt.Errorf("%w: fajr %s is not after maghrib %s",
			ErrMalformedNightWindow, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return NightInterval{Start: start, End: end}, nil
}

// Duration returns the length of the night.
func (n NightInterval) Duration() time.Duration {
	return n.End.Sub(n.Start)
}

// Fraction returns the instant num/den of the way from sunset to dawn.
func (n NightInterval) Fraction(num, den int64) time.Time {
	return n.Start.Add(time.Duration(int64(n.Duration()) * num / den))
}

// DeriveSpecialTimes computes Islamic midnight (half of the night) and the
// last third of the night (two thirds of the night), both measured from
// maghrib, and returns them as "HH:MM" strings.
func DeriveSpecialTimes(maghrib, nextFajr string, anchor time.Time) (SpecialTimes, error) {
	night, err := NewNightInterval(maghrib, nextFajr, anchor)
	if err != nil {
		return SpecialTimes{}, err
	}

	return SpecialTimes{
		Midnight:  FormatTimeOfDay(night.Fraction(1, 2)),
		LastThird: FormatTimeOfDay(night.Fraction(2, 3)),
	}, nil
}
