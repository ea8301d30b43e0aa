package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
)

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <event>",
		Short: "Query a single event time",
		Long:  "Print one event from the active table.\n\nValid events: " + eventList() + "\nNames are matched case-insensitively; English and Arabic display names work too.",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuery,
	}
}

func eventList() string {
	names := make([]string, len(prayer.Events))
	for i, e := range prayer.Events {
		names[i] = string(e)
	}
	return strings.Join(names, ", ")
}

// lookupEvent matches an event id or a display name in any language.
func lookupEvent(name string) (prayer.Event, bool) {
	name = strings.TrimSpace(name)
	for _, e := range prayer.Events {
		if strings.EqualFold(string(e), name) ||
			strings.EqualFold(prayer.DisplayName(e, prayer.LangEnglish), name) ||
			prayer.DisplayName(e, prayer.LangArabic) == name {
			return e, true
		}
	}
	return "", false
}

// queryJSON is the JSON output of `query`.
type queryJSON struct {
	Event string `json:"event"`
	Name  string `json:"name"`
	Time  string `json:"time"`
	Date  string `json:"date"`
	Hijri string `json:"hijri,omitempty"`
}

func runQuery(cmd *cobra.Command, args []string) error {
	event, ok := lookupEvent(args[0])
	if !ok {
		return fmt.Errorf("unknown event %q; valid events: %s", args[0], eventList())
	}

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
	if snap.Table == nil {
		return fmt.Errorf("no prayer table available")
	}

	at, err := snap.Table.Instant(event)
	if err != nil {
		return err
	}
	name := prayer.DisplayName(event, cfg.Lang)
	timeStr := at.Format(layoutFor(cfg))

	if FlagJSON {
		data, err := json.MarshalIndent(queryJSON{
			Event: string(event),
			Name:  name,
			Time:  timeStr,
			Date:  at.Format("2006-01-02"),
			Hijri: hijriLabel(snap, cfg.Lang),
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", name, timeStr)
	return nil
}
