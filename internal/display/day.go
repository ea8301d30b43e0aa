package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/smokyabdulrahman/prayer-clock/internal/countdown"
	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
)

// DayView is everything RenderDay draws for one day.
type DayView struct {
	Location string
	Hijri    string
	Table    prayer.Table
	Next     *prayer.NextEvent
	Now      time.Time
	Lang     string
	Layout   string
}

// RenderDay draws the header and the table of eight events. Events at or
// before Now are dimmed and the next event is accented with its countdown.
// When the next event is tomorrow's fajr it gets its own row.
func RenderDay(v DayView) (string, error) {
	entries, err := v.Table.Entries()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("\n  " + Bold(title(v.Lang)) + "\n\n")
	if v.Location != "" {
		sb.WriteString("  " + Green(v.Location) + "\n")
	}
	sb.WriteString("  " + v.Table.Date.Format("Monday, 02 January 2006") + "\n")
	if v.Hijri != "" {
		sb.WriteString("  " + Green(v.Hijri) + "\n")
	}
	sb.WriteString("\n")

	t := NewTable(columnHeaders(v.Lang)...)
	highlighted := false
	for _, e := range entries {
		name := prayer.DisplayName(e.Name, v.Lang)
		at := e.Time.Format(v.Layout)
		switch {
		case isNext(v.Next, e):
			t.AddStyledRow(Accent, name, at, nextSuffix(*v.Next, v.Now))
			highlighted = true
		case !e.Time.After(v.Now):
			t.AddStyledRow(Dim, name, at)
		default:
			t.AddRow(name, at)
		}
	}
	if v.Next != nil && !highlighted && !v.Next.Fallback {
		name := prayer.DisplayName(v.Next.Name, v.Lang) + " (+1)"
		t.AddStyledRow(Accent, name, v.Next.Time.Format(v.Layout), nextSuffix(*v.Next, v.Now))
	}
	sb.WriteString(t.Render())
	return sb.String(), nil
}

// RenderCountdown formats the single status line shown by `next --watch`.
func RenderCountdown(next prayer.NextEvent, tick countdown.Tick, lang, layout string) string {
	line := fmt.Sprintf("%s %s  %s", prayer.DisplayName(next.Name, lang), next.Time.Format(layout), tick.Display)
	if tick.Expired || next.Fallback {
		return Dim(line)
	}
	return Accent(line)
}

func isNext(next *prayer.NextEvent, e prayer.Entry) bool {
	return next != nil && !next.Fallback && next.Name == e.Name && next.Time.Equal(e.Time)
}

func nextSuffix(next prayer.NextEvent, now time.Time) string {
	return "<- " + countdown.Evaluate(next.Time, now).Display
}

func title(lang string) string {
	if lang == prayer.LangArabic {
		return "مواقيت الصلاة"
	}
	return "Prayer Times"
}

func columnHeaders(lang string) []string {
	if lang == prayer.LangArabic {
		return []string{"الصلاة", "الوقت", ""}
	}
	return []string{"Prayer", "Time", ""}
}
