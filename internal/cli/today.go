package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-clock/internal/config"
	"github.com/smokyabdulrahman/prayer-clock/internal/display"
	"github.com/smokyabdulrahman/prayer-clock/internal/geo"
	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
	"github.com/smokyabdulrahman/prayer-clock/internal/session"
)

func runToday(cmd *cobra.Command, args []string) error {
	cfg := effectiveConfig()

	sess, err := newSession(cmd, cfg, newSource(), nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := load(cmd.Context(), sess); err != nil {
		return err
	}
	snap := sess.Snapshot()

	if FlagJSON {
		return printTodayJSON(cmd.OutOrStdout(), snap, cfg)
	}
	return printTodayRich(cmd.OutOrStdout(), snap, cfg, time.Now())
}

// printTodayRich renders the colored terminal output for today's table.
func printTodayRich(w io.Writer, snap session.Snapshot, cfg *config.Config, now time.Time) error {
	if snap.Table == nil {
		return fmt.Errorf("no prayer table available")
	}
	out, err := display.RenderDay(display.DayView{
		Location: locationLabel(snap.Location),
		Hijri:    hijriLabel(snap, cfg.Lang),
		Table:    *snap.Table,
		Next:     snap.Next,
		Now:      now,
		Lang:     cfg.Lang,
		Layout:   layoutFor(cfg),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(w, out)
	return nil
}

// todayJSON is the JSON output structure for the root command.
type todayJSON struct {
	Location  *geo.Location     `json:"location"`
	Method    int               `json:"method"`
	Date      string            `json:"date"`
	Hijri     string            `json:"hijri,omitempty"`
	Timings   map[string]string `json:"timings"`
	Current   string            `json:"current,omitempty"`
	Next      *todayJSONNext    `json:"next,omitempty"`
	SessionID string            `json:"session_id"`
}

type todayJSONNext struct {
	Event     string `json:"event"`
	Time      string `json:"time"`
	Countdown string `json:"countdown"`
}

// printTodayJSON renders structured JSON output.
func printTodayJSON(w io.Writer, snap session.Snapshot, cfg *config.Config) error {
	if snap.Table == nil {
		return fmt.Errorf("no prayer table available")
	}
	entries, err := snap.Table.Entries()
	if err != nil {
		return err
	}

	layout := layoutFor(cfg)
	out := todayJSON{
		Location:  snap.Location,
		Method:    snap.Method,
		Date:      snap.Table.Date.Format("2006-01-02"),
		Hijri:     hijriLabel(snap, cfg.Lang),
		Timings:   make(map[string]string, len(entries)),
		SessionID: snap.SessionID,
	}
	for _, e := range entries {
		out.Timings[string(e.Name)] = e.Time.Format(layout)
	}
	if cur, ok := prayer.CurrentEvent(*snap.Table, time.Now()); ok {
		out.Current = string(cur.Name)
	}
	if snap.Next != nil {
		out.Next = &todayJSONNext{
			Event: string(snap.Next.Name),
			Time:  snap.Next.Time.Format(time.RFC3339),
		}
		if snap.Countdown != nil {
			out.Next.Countdown = snap.Countdown.Display
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
