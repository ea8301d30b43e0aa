// Package display renders prayer tables and countdowns for the terminal.
//
// Colors are raw ANSI escape codes. They respect NO_COLOR
// (https://no-color.org/) and are disabled when stdout is not a terminal.
package display

import "os"

// ANSI escape codes for styling.
const (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"
	red   = "\033[31m"
	green = "\033[32m"
	cyan  = "\033[36m"
)

// enabled reports whether color output is active.
var enabled = shouldEnable()

func shouldEnable() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// SetEnabled overrides the auto-detected color state.
func SetEnabled(b bool) {
	enabled = b
}

// Enabled reports whether color output is currently active.
func Enabled() bool {
	return enabled
}

func wrap(code, text string) string {
	if !enabled {
		return text
	}
	return code + text + reset
}

// Bold returns text rendered in bold.
func Bold(text string) string { return wrap(bold, text) }

// Dim is used for events that have already passed.
func Dim(text string) string { return wrap(dim, text) }

// Green is used for the location and hijri date header.
func Green(text string) string { return wrap(green, text) }

// Red is used for error states.
func Red(text string) string { return wrap(red, text) }

// Accent highlights the next event (cyan + bold).
func Accent(text string) string { return wrap(bold+cyan, text) }
