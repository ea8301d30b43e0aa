package prayer

import (
	"errors"
	"testing"
	"time"

	"github.com/smokyabdulrahman/prayer-clock/internal/api"
)

// anchorDay is the calendar day every table in these tests is built for.
var anchorDay = time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

// at returns an instant on the anchor day, or on a following day with dayOffset.
func at(t *testing.T, dayOffset, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2026, 2, 28+dayOffset, hour, minute, 0, 0, time.UTC)
}

func sampleTimings() api.Timings {
	return api.Timings{
		Fajr:    "05:17",
		Sunrise: "06:48",
		Dhuhr:   "12:13",
		Asr:     "15:02",
		Maghrib: "18:00",
		Isha:    "19:30",
	}
}

func sampleTable(t *testing.T) Table {
	t.Helper()
	tbl, err := NewTable(sampleTimings(), "05:00", anchorDay)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl
}

// ---------------------------------------------------------------------------
// ParseTimeOfDay / FormatTimeOfDay
// ---------------------------------------------------------------------------

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantH   int
		wantM   int
		wantErr bool
	}{
		{"simple HH:MM", "15:02", 15, 2, false},
		{"midnight", "00:00", 0, 0, false},
		{"single digit hour", "5:07", 5, 7, false},
		{"with timezone suffix", "15:02 (BST)", 15, 2, false},
		{"with spaces and suffix", "  05:17  (EET) ", 5, 17, false},
		{"hour out of range", "25:10", 0, 0, true},
		{"minute out of range", "12:99", 0, 0, true},
		{"invalid format", "bad", 0, 0, true},
		{"empty string", "", 0, 0, true},
		{"missing minute", "15:", 0, 0, true},
		{"non-numeric", "ab:cd", 0, 0, true},
		{"with seconds", "12:13:14", 0, 0, true},
		{"signed parts", "+5:+7", 0, 0, true},
		{"negative hour", "-1:00", 0, 0, true},
		{"three digit hour", "005:07", 0, 0, true},
		{"unicode digits", "١٢:٣٠", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.raw, anchorDay)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTimeFormat) {
					t.Fatalf("ParseTimeOfDay(%q) error = %v, want ErrInvalidTimeFormat", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimeOfDay(%q) unexpected error: %v", tt.raw, err)
			}
			if got.Hour() != tt.wantH || got.Minute() != tt.wantM {
				t.Errorf("ParseTimeOfDay(%q) = %02d:%02d, want %02d:%02d",
					tt.raw, got.Hour(), got.Minute(), tt.wantH, tt.wantM)
			}
			if got.Year() != 2026 || got.Month() != 2 || got.Day() != 28 {
				t.Errorf("ParseTimeOfDay(%q) wrong date: got %v", tt.raw, got.Format("2006-01-02"))
			}
		})
	}
}

func TestParseTimeOfDay_ZeroesSecondsAndKeepsAnchor(t *testing.T) {
	anchor := time.Date(2026, 2, 28, 9, 41, 33, 123, time.UTC)
	before := anchor

	got, err := ParseTimeOfDay("12:30", anchor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Second() != 0 || got.Nanosecond() != 0 {
		t.Errorf("seconds not zeroed: %v", got)
	}
	if !anchor.Equal(before) {
		t.Errorf("anchor was modified: %v", anchor)
	}
}

func TestParseTimeOfDay_Location(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	anchor := time.Date(2026, 6, 15, 0, 0, 0, 0, loc)

	got, err := ParseTimeOfDay("12:30", anchor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Location() != loc {
		t.Errorf("expected location %v, got %v", loc, got.Location())
	}
}

func TestFormatTimeOfDay_RoundTrip(t *testing.T) {
	for h := 0; h < 24; h++ {
		for _, m := range []int{0, 1, 29, 30, 59} {
			in := time.Date(2026, 2, 28, h, m, 45, 0, time.UTC)
			got, err := ParseTimeOfDay(FormatTimeOfDay(in), anchorDay)
			if err != nil {
				t.Fatalf("round trip %02d:%02d: %v", h, m, err)
			}
			if got.Hour() != h || got.Minute() != m {
				t.Errorf("round trip %02d:%02d = %02d:%02d", h, m, got.Hour(), got.Minute())
			}
		}
	}
}

// ---------------------------------------------------------------------------
// DeriveSpecialTimes
// ---------------------------------------------------------------------------

func TestDeriveSpecialTimes_ElevenHourNight(t *testing.T) {
	got, err := DeriveSpecialTimes("18:00", "05:00", anchorDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Midnight != "23:30" {
		t.Errorf("Midnight = %q, want %q", got.Midnight, "23:30")
	}
	// Two thirds of 11h from 18:00 is 7h20m later.
	if got.LastThird != "01:20" {
		t.Errorf("LastThird = %q, want %q", got.LastThird, "01:20")
	}
}

func TestDeriveSpecialTimes_TruncatesSeconds(t *testing.T) {
	// Night of 10h59m: half is 5h29m30s, two thirds is 7h19m20s.
	got, err := DeriveSpecialTimes("17:39", "04:38", anchorDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Midnight != "23:08" {
		t.Errorf("Midnight = %q, want %q", got.Midnight, "23:08")
	}
	if got.LastThird != "00:58" {
		t.Errorf("LastThird = %q, want %q", got.LastThird, "00:58")
	}
}

func TestNightBetween_MalformedNightWindow(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{"dawn before sunset", at(t, 0, 18, 0), at(t, 0, 17, 0)},
		{"zero length", at(t, 0, 18, 0), at(t, 0, 18, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NightBetween(tt.start, tt.end)
			if !errors.Is(err, ErrMalformedNightWindow) {
				t.Fatalf("got %v, want ErrMalformedNightWindow", err)
			}
		})
	}
}

func TestDeriveSpecialTimes_InvalidInput(t *testing.T) {
	if _, err := DeriveSpecialTimes("bad", "05:00", anchorDay); !errors.Is(err, ErrInvalidTimeFormat) {
		t.Errorf("bad maghrib: got %v, want ErrInvalidTimeFormat", err)
	}
	if _, err := DeriveSpecialTimes("18:00", "", anchorDay); !errors.Is(err, ErrInvalidTimeFormat) {
		t.Errorf("bad fajr: got %v, want ErrInvalidTimeFormat", err)
	}
}

func TestDeriveSpecialTimes_StrictlyInsideNight(t *testing.T) {
	maghribs := []string{"16:05", "17:39", "18:00", "19:47", "21:30"}
	fajrs := []string{"02:10", "03:55", "04:38", "05:00", "06:21"}

	for _, m := range maghribs {
		for _, f := range fajrs {
			night, err := NewNightInterval(m, f, anchorDay)
			if err != nil {
				t.Fatalf("NewNightInterval(%s, %s): %v", m, f, err)
			}
			got, err := DeriveSpecialTimes(m, f, anchorDay)
			if err != nil {
				t.Fatalf("DeriveSpecialTimes(%s, %s): %v", m, f, err)
			}

			tbl := Table{Date: anchorDay, Maghrib: m, Midnight: got.Midnight, LastThird: got.LastThird}
			mid, _ := tbl.Instant(Midnight)
			last, _ := tbl.Instant(LastThird)

			if !mid.After(night.Start) || !mid.Before(night.End) {
				t.Errorf("%s->%s: midnight %v outside night", m, f, mid)
			}
			if !last.After(mid) || !last.Before(night.End) {
				t.Errorf("%s->%s: lastThird %v not between midnight and fajr", m, f, last)
			}
		}
	}
}

// ---------------------------------------------------------------------------
// NewTable
// ---------------------------------------------------------------------------

func TestNewTable(t *testing.T) {
	tbl := sampleTable(t)

	if !tbl.Date.Equal(anchorDay) {
		t.Errorf("Date = %v, want %v", tbl.Date, anchorDay)
	}
	want := map[Event]string{
		Fajr: "05:17", Sunrise: "06:48", Dhuhr: "12:13", Asr: "15:02",
		Maghrib: "18:00", Isha: "19:30", Midnight: "23:30", LastThird: "01:20",
	}
	for name, w := range want {
		got, ok := tbl.Get(name)
		if !ok || got != w {
			t.Errorf("%s = %q, want %q", name, got, w)
		}
	}
}

func TestNewTable_NormalisesSuffixes(t *testing.T) {
	timings := sampleTimings()
	timings.Fajr = "05:17 (BST)"
	timings.Sunrise = "6:48"

	tbl, err := NewTable(timings, "05:00 (BST)", anchorDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Fajr != "05:17" {
		t.Errorf("Fajr = %q, want %q", tbl.Fajr, "05:17")
	}
	if tbl.Sunrise != "06:48" {
		t.Errorf("Sunrise = %q, want %q", tbl.Sunrise, "06:48")
	}
}

func TestNewTable_Unordered(t *testing.T) {
	timings := sampleTimings()
	timings.Asr = "11:00"

	_, err := NewTable(timings, "05:00", anchorDay)
	if !errors.Is(err, ErrUnorderedTimings) {
		t.Fatalf("got %v, want ErrUnorderedTimings", err)
	}
}

func TestNewTable_InvalidTime(t *testing.T) {
	timings := sampleTimings()
	timings.Dhuhr = "noon"

	_, err := NewTable(timings, "05:00", anchorDay)
	if !errors.Is(err, ErrInvalidTimeFormat) {
		t.Fatalf("got %v, want ErrInvalidTimeFormat", err)
	}
}

func TestTable_InstantRollsDerivedTimesPastMidnight(t *testing.T) {
	tbl := sampleTable(t)

	mid, err := tbl.Instant(Midnight)
	if err != nil {
		t.Fatal(err)
	}
	if !mid.Equal(at(t, 0, 23, 30)) {
		t.Errorf("Midnight instant = %v, want same day 23:30", mid)
	}

	last, err := tbl.Instant(LastThird)
	if err != nil {
		t.Fatal(err)
	}
	if !last.Equal(at(t, 1, 1, 20)) {
		t.Errorf("LastThird instant = %v, want next day 01:20", last)
	}
}

func TestTable_InstantUnknownEvent(t *testing.T) {
	tbl := sampleTable(t)
	if _, err := tbl.Instant("tahajjud"); err == nil {
		t.Fatal("expected error for unknown event")
	}
}

// ---------------------------------------------------------------------------
// SelectNext
// ---------------------------------------------------------------------------

func TestSelectNext(t *testing.T) {
	tbl := sampleTable(t)

	tests := []struct {
		name     string
		now      time.Time
		want     Event
		wantTime time.Time
	}{
		{"before fajr", at(t, 0, 3, 0), Fajr, at(t, 0, 5, 17)},
		{"mid morning", at(t, 0, 9, 0), Dhuhr, at(t, 0, 12, 13)},
		{"exactly at dhuhr moves on", at(t, 0, 12, 13), Asr, at(t, 0, 15, 2)},
		{"after isha", at(t, 0, 20, 0), Midnight, at(t, 0, 23, 30)},
		{"after islamic midnight", at(t, 0, 23, 45), LastThird, at(t, 1, 1, 20)},
		{"after last third wraps to tomorrow", at(t, 1, 2, 0), Fajr, at(t, 1, 5, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectNext(tbl, "05:00", tt.now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Name != tt.want {
				t.Errorf("Name = %s, want %s", got.Name, tt.want)
			}
			if !got.Time.Equal(tt.wantTime) {
				t.Errorf("Time = %v, want %v", got.Time, tt.wantTime)
			}
			if got.Fallback {
				t.Error("Fallback should be false")
			}
			if !got.Time.After(tt.now) {
				t.Errorf("Time %v is not after now %v", got.Time, tt.now)
			}
		})
	}
}

func TestSelectNext_FallbackWhenEverythingPassed(t *testing.T) {
	tbl := sampleTable(t)

	got, err := SelectNext(tbl, "05:00", at(t, 1, 6, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Fallback {
		t.Error("Fallback should be set")
	}
	if got.Name != Fajr || !got.Time.Equal(at(t, 0, 5, 17)) {
		t.Errorf("got %s at %v, want today's fajr", got.Name, got.Time)
	}
}

func TestSelectNext_Idempotent(t *testing.T) {
	tbl := sampleTable(t)
	now := at(t, 0, 16, 0)

	first, err := SelectNext(tbl, "05:00", now)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := SelectNext(tbl, "05:00", now)
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("call %d = %+v, want %+v", i, again, first)
		}
	}
}

func TestSelectNext_NeverInPastExceptFallback(t *testing.T) {
	tbl := sampleTable(t)

	for now := at(t, 0, 0, 0); now.Before(at(t, 1, 5, 0)); now = now.Add(7 * time.Minute) {
		got, err := SelectNext(tbl, "05:00", now)
		if err != nil {
			t.Fatal(err)
		}
		if got.Fallback {
			t.Fatalf("unexpected fallback at %v", now)
		}
		if !got.Time.After(now) {
			t.Fatalf("at %v got %s at %v, not in the future", now, got.Name, got.Time)
		}
	}
}

func TestSelectNext_InvalidTomorrowFajr(t *testing.T) {
	tbl := sampleTable(t)
	if _, err := SelectNext(tbl, "xx", at(t, 0, 9, 0)); !errors.Is(err, ErrInvalidTimeFormat) {
		t.Fatalf("got %v, want ErrInvalidTimeFormat", err)
	}
}

// ---------------------------------------------------------------------------
// CurrentEvent / TimeRemaining / FormatRemaining
// ---------------------------------------------------------------------------

func TestCurrentEvent(t *testing.T) {
	tbl := sampleTable(t)

	if _, ok := CurrentEvent(tbl, at(t, 0, 4, 0)); ok {
		t.Error("expected no current event before fajr")
	}
	cur, ok := CurrentEvent(tbl, at(t, 0, 13, 0))
	if !ok || cur.Name != Dhuhr {
		t.Errorf("CurrentEvent at 13:00 = %v, %v; want dhuhr", cur.Name, ok)
	}
	cur, ok = CurrentEvent(tbl, at(t, 1, 2, 0))
	if !ok || cur.Name != LastThird {
		t.Errorf("CurrentEvent at 02:00 next day = %v, %v; want lastThird", cur.Name, ok)
	}
}

func TestTimeRemaining(t *testing.T) {
	next := NextEvent{Name: Asr, Time: at(t, 0, 15, 2)}
	if d := TimeRemaining(next, at(t, 0, 13, 0)); d != 2*time.Hour+2*time.Minute {
		t.Errorf("TimeRemaining = %v, want 2h2m", d)
	}
	if d := TimeRemaining(next, at(t, 0, 16, 0)); d >= 0 {
		t.Errorf("expected negative duration, got %v", d)
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"hours and minutes", 2*time.Hour + 15*time.Minute, "2h 15m"},
		{"only minutes", 45 * time.Minute, "45m"},
		{"exactly one hour", 1 * time.Hour, "1h 0m"},
		{"zero", 0, "0m"},
		{"negative", -30 * time.Minute, "0m"},
		{"large", 10*time.Hour + 59*time.Minute, "10h 59m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatRemaining(tt.duration)
			if got != tt.want {
				t.Errorf("FormatRemaining(%v) = %q, want %q", tt.duration, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Names
// ---------------------------------------------------------------------------

func TestDisplayNames_AllEvents(t *testing.T) {
	for _, lang := range []string{LangEnglish, LangArabic} {
		for _, name := range Events {
			if _, ok := displayNames[lang][name]; !ok {
				t.Errorf("%s name table missing %q", lang, name)
			}
		}
	}
	for _, name := range Events {
		if _, ok := ShortNames[name]; !ok {
			t.Errorf("ShortNames missing entry for %q", name)
		}
	}
}

func TestDisplayName_Fallbacks(t *testing.T) {
	if got := DisplayName(LastThird, "fr"); got != "Last Third of Night" {
		t.Errorf("unknown lang = %q", got)
	}
	if got := DisplayName("custom", LangEnglish); got != "custom" {
		t.Errorf("unknown event = %q", got)
	}
}
