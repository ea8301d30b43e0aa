package prayer

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/smokyabdulrahman/prayer-clock/internal/countdown"
)

// Format constants for display modes.
const (
	FormatTimeRemaining      = "time-remaining"
	FormatNextPrayerTime     = "next-prayer-time"
	FormatNameAndTime        = "name-and-time"
	FormatNameAndRemaining   = "name-and-remaining"
	FormatShortNameAndTime   = "short-name-and-time"
	FormatShortNameAndRemain = "short-name-and-remaining"
	FormatCountdown          = "countdown"
	FormatFull               = "full"
)

// Go time layouts for the two supported clock styles.
const (
	Layout24h = "15:04"
	Layout12h = "3:04 PM"
)

// LayoutFor maps a "12h"/"24h" setting to a Go time layout.
func LayoutFor(timeFormat string) string {
	if timeFormat == "12h" {
		return Layout12h
	}
	return Layout24h
}

// FormatData is the data passed to custom Go templates.
type FormatData struct {
	Name      string // Display name, e.g. "Asr" or "Last Third of Night"
	ShortName string // Abbreviated name, e.g. "A"
	Time      string // Formatted event time, e.g. "15:02" or "3:02 PM"
	Remaining string // Time remaining, e.g. "2h 15m"
	Countdown string // Time remaining as HH:MM:SS
	Hours     int    // Whole hours remaining
	Minutes   int    // Remaining minutes after hours
}

// FormatOutput formats the next event for display according to the chosen
// format mode. layout is a Go time layout such as Layout24h.
//
// If mode contains "{{", it is treated as a custom Go template string.
// Available template fields: .Name, .ShortName, .Time, .Remaining,
// .Countdown, .Hours, .Minutes
//
// Example: "{{.Name}} in {{.Remaining}}" -> "Asr in 2h 15m"
func FormatOutput(next NextEvent, now time.Time, mode, layout, lang string) string {
	d := TimeRemaining(next, now)
	remaining := FormatRemaining(d)
	timeStr := next.Time.Format(layout)
	name := DisplayName(next.Name, lang)
	short := ShortNames[next.Name]

	// Custom template mode: any format string containing "{{" is a Go template.
	if strings.Contains(mode, "{{") {
		return formatCustom(mode, FormatData{
			Name:      name,
			ShortName: short,
			Time:      timeStr,
			Remaining: remaining,
			Countdown: countdown.FormatHMS(d),
			Hours:     int(d.Hours()),
			Minutes:   int(d.Minutes()) % 60,
		})
	}

	switch mode {
	case FormatTimeRemaining:
		return remaining
	case FormatNextPrayerTime:
		return timeStr
	case FormatNameAndTime:
		return fmt.Sprintf("%s %s", name, timeStr)
	case FormatNameAndRemaining:
		return fmt.Sprintf("%s %s", name, remaining)
	case FormatShortNameAndTime:
		return fmt.Sprintf("%s %s", short, timeStr)
	case FormatShortNameAndRemain:
		return fmt.Sprintf("%s %s", short, remaining)
	case FormatCountdown:
		return fmt.Sprintf("%s %s", name, countdown.FormatHMS(d))
	case FormatFull:
		return fmt.Sprintf("%s %s (%s)", name, timeStr, countdown.FormatHMS(d))
	default:
		return fmt.Sprintf("%s %s", name, timeStr)
	}
}

// formatCustom executes a user-provided Go template string against the FormatData.
func formatCustom(tmpl string, data FormatData) string {
	t, err := template.New("custom").Parse(tmpl)
	if err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Sprintf("template-err: %v", err)
	}

	return buf.String()
}
