package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-clock/internal/config"
	"github.com/smokyabdulrahman/prayer-clock/internal/display"
	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
	"github.com/smokyabdulrahman/prayer-clock/internal/session"
)

var (
	flagFormat string
	flagWatch  bool
)

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next event with countdown",
		Long:  "Display the next upcoming event, including Islamic midnight and the last third of the night.\nWith --watch, keep a live HH:MM:SS countdown that moves on to the following event when it expires.",
		RunE:  runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, countdown, full, or a custom Go template")
	cmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "Keep running and update the countdown every second")

	return cmd
}

func runNext(cmd *cobra.Command, args []string) error {
	cfg := effectiveConfig()

	if flagWatch {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watchNext(ctx, cmd, cfg, cmd.OutOrStdout())
	}

	sess, err := newSession(cmd, cfg, newSource(), nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := load(cmd.Context(), sess); err != nil {
		return err
	}
	snap := sess.Snapshot()
	if snap.Next == nil {
		return fmt.Errorf("could not determine next event")
	}

	fmt.Fprint(cmd.OutOrStdout(), prayer.FormatOutput(*snap.Next, time.Now(), flagFormat, layoutFor(cfg), cfg.Lang))
	return nil
}

// watchNext redraws the countdown line on every session update until ctx
// is cancelled. Load failures are shown in place and the session keeps
// retrying on its own schedule.
func watchNext(ctx context.Context, cmd *cobra.Command, cfg *config.Config, w io.Writer) error {
	lines := make(chan string, 1)
	render := func(snap session.Snapshot) {
		line := statusLine(snap, cfg)
		select {
		case lines <- line:
		default:
			// Drop the stale line and keep only the newest.
			select {
			case <-lines:
			default:
			}
			select {
			case lines <- line:
			default:
			}
		}
	}

	sess, err := newSession(cmd, cfg, newSource(), render)
	if err != nil {
		return err
	}
	defer sess.Close()

	loadErr := make(chan error, 1)
	go func() { loadErr <- load(ctx, sess) }()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(w)
			return nil
		case err := <-loadErr:
			if err != nil && !sessionRecoverable(sess) {
				fmt.Fprintln(w)
				return err
			}
		case line := <-lines:
			fmt.Fprintf(w, "\r\033[K%s", line)
		}
	}
}

// sessionRecoverable reports whether the session still has a table to show.
func sessionRecoverable(sess *session.Session) bool {
	return sess.Snapshot().Table != nil
}

// statusLine renders one snapshot as a single terminal line.
func statusLine(snap session.Snapshot, cfg *config.Config) string {
	switch {
	case snap.Next != nil && snap.Countdown != nil:
		return display.RenderCountdown(*snap.Next, *snap.Countdown, cfg.Lang, layoutFor(cfg))
	case snap.State == session.StateError:
		return display.Red(snap.Error)
	default:
		return display.Dim(string(snap.State) + "...")
	}
}
