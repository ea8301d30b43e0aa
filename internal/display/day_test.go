package display

import (
	"strings"
	"testing"
	"time"

	"github.com/smokyabdulrahman/prayer-clock/internal/api"
	"github.com/smokyabdulrahman/prayer-clock/internal/countdown"
	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
)

func testTable(t *testing.T) prayer.Table {
	t.Helper()
	day := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	tbl, err := prayer.NewTable(api.Timings{
		Fajr:    "05:00",
		Sunrise: "06:30",
		Dhuhr:   "12:13",
		Asr:     "15:02",
		Maghrib: "18:00",
		Isha:    "19:30",
	}, "05:00", day)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl
}

func TestRenderDay_HighlightsNext(t *testing.T) {
	SetEnabled(false)

	tbl := testTable(t)
	now := time.Date(2026, 2, 28, 13, 0, 0, 0, time.UTC)
	next, err := prayer.SelectNext(tbl, "05:00", now)
	if err != nil {
		t.Fatal(err)
	}

	got, err := RenderDay(DayView{
		Location: "London, United Kingdom",
		Hijri:    "11 Ramadan 1447 AH",
		Table:    tbl,
		Next:     &next,
		Now:      now,
		Lang:     prayer.LangEnglish,
		Layout:   prayer.Layout24h,
	})
	if err != nil {
		t.Fatalf("RenderDay: %v", err)
	}

	for _, want := range []string{
		"Prayer Times",
		"London, United Kingdom",
		"Saturday, 28 February 2026",
		"11 Ramadan 1447 AH",
		"Asr",
		"<- 02:02:00",
		"Islamic Midnight",
		"23:30",
		"Last Third of Night",
		"01:20",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderDay() missing %q in:\n%s", want, got)
		}
	}
	if strings.Count(got, "<-") != 1 {
		t.Errorf("expected exactly one highlighted row:\n%s", got)
	}
}

func TestRenderDay_TomorrowFajrRow(t *testing.T) {
	SetEnabled(false)

	tbl := testTable(t)
	now := time.Date(2026, 2, 28, 1, 30, 0, 0, time.UTC).AddDate(0, 0, 1)
	next := prayer.NextEvent{Name: prayer.Fajr, Time: time.Date(2026, 3, 1, 5, 0, 0, 0, time.UTC)}

	got, err := RenderDay(DayView{Table: tbl, Next: &next, Now: now, Lang: prayer.LangEnglish, Layout: prayer.Layout24h})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "Fajr (+1)") {
		t.Errorf("RenderDay() missing tomorrow's fajr row:\n%s", got)
	}
	if !strings.Contains(got, "<- 03:30:00") {
		t.Errorf("RenderDay() missing countdown:\n%s", got)
	}
}

func TestRenderDay_Arabic12h(t *testing.T) {
	SetEnabled(false)

	tbl := testTable(t)
	now := time.Date(2026, 2, 28, 13, 0, 0, 0, time.UTC)

	got, err := RenderDay(DayView{Table: tbl, Now: now, Lang: prayer.LangArabic, Layout: prayer.Layout12h})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"مواقيت الصلاة", "العصر", "3:02 PM"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderDay() missing %q in:\n%s", want, got)
		}
	}
}

func TestRenderDay_InvalidTable(t *testing.T) {
	_, err := RenderDay(DayView{Table: prayer.Table{Fajr: "nope"}})
	if err == nil {
		t.Error("expected error for malformed table")
	}
}

func TestRenderCountdown(t *testing.T) {
	SetEnabled(false)

	at := time.Date(2026, 2, 28, 15, 2, 0, 0, time.UTC)
	next := prayer.NextEvent{Name: prayer.Asr, Time: at}
	tick := countdown.Evaluate(at, at.Add(-90*time.Second))

	got := RenderCountdown(next, tick, prayer.LangEnglish, prayer.Layout24h)
	if got != "Asr 15:02  00:01:30" {
		t.Errorf("RenderCountdown() = %q", got)
	}
}
