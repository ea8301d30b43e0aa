package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-clock/internal/server"
	"github.com/smokyabdulrahman/prayer-clock/internal/session"
)

var (
	flagAddr        string
	flagCORSOrigins []string
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live prayer state over HTTP",
		Long:  "Run a long-lived session and expose it as JSON under /api, with Prometheus metrics on /metrics.",
		RunE:  runServe,
	}

	cmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides listen_addr)")
	cmd.Flags().StringSliceVar(&flagCORSOrigins, "cors-origin", nil, "Allowed CORS origin (repeatable)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := effectiveConfig()
	addr := cfg.ListenAddr
	if flagAddr != "" {
		addr = flagAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := newSession(cmd, cfg, newSource(), nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	// The server answers with the loading or error state until the first
	// table is ready.
	go func() {
		if err := load(ctx, sess); err != nil && !errors.Is(err, session.ErrSuperseded) && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("[serve] initial load failed")
		}
	}()

	log.Info().Str("session", sess.ID()).Str("addr", addr).Msg("[serve] starting")
	srv := server.New(server.Options{
		Addr:         addr,
		Session:      sess,
		Lang:         cfg.Lang,
		TimeFormat:   cfg.TimeFormat,
		AllowOrigins: flagCORSOrigins,
	})
	return srv.Run(ctx)
}
