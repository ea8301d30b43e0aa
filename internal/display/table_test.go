package display

import (
	"strings"
	"testing"
)

func TestTable_EmptyHeaders(t *testing.T) {
	tbl := NewTable()
	if got := tbl.Render(); got != "" {
		t.Errorf("Render() with empty headers = %q, want empty", got)
	}
}

func TestTable_BasicRender(t *testing.T) {
	SetEnabled(false)

	tbl := NewTable("Prayer", "Time")
	tbl.AddRow("Fajr", "05:06")
	tbl.AddRow("Maghrib", "18:01")

	got := tbl.Render()
	want := "  Prayer   Time\n" +
		"  ───────  ─────\n" +
		"  Fajr     05:06\n" +
		"  Maghrib  18:01\n"
	if got != want {
		t.Errorf("Render() =\n%s\nwant\n%s", got, want)
	}
}

func TestTable_RuneWidths(t *testing.T) {
	SetEnabled(false)

	tbl := NewTable("Prayer", "Time")
	tbl.AddRow("العصر", "15:02")
	tbl.AddRow("المغرب", "18:01")

	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	// "Prayer" and "المغرب" are both six runes, so the time column starts
	// at the same rune offset on every line.
	for _, line := range lines[2:] {
		if idx := strings.Index(line, "  1"); idx < 0 {
			t.Errorf("line %q has no time column", line)
		}
		if n := len([]rune(line)); n != len([]rune("  Prayer  15:02")) {
			t.Errorf("line %q is %d runes wide", line, n)
		}
	}
}

func TestTable_StyledRow(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	tbl := NewTable("Prayer", "Time")
	tbl.AddStyledRow(Accent, "Asr", "15:02")

	got := tbl.Render()
	if !strings.Contains(got, Accent("Asr     15:02")) {
		t.Errorf("Render() missing accented row:\n%q", got)
	}
}

func TestTable_ShortRowsArePadded(t *testing.T) {
	SetEnabled(false)

	tbl := NewTable("Prayer", "Time", "")
	tbl.AddRow("Asr", "15:02", "<- 00:10:00")
	tbl.AddRow("Isha")

	got := tbl.Render()
	if !strings.Contains(got, "  Isha\n") {
		t.Errorf("short row not rendered with trailing space trimmed:\n%q", got)
	}
}
