package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-clock/internal/api"
	"github.com/smokyabdulrahman/prayer-clock/internal/config"
	"github.com/smokyabdulrahman/prayer-clock/internal/geo"
	"github.com/smokyabdulrahman/prayer-clock/internal/prayer"
	"github.com/smokyabdulrahman/prayer-clock/internal/session"
)

// effectiveConfig returns the config prepared by PersistentPreRunE, or the
// defaults when a command runs without it (tests).
func effectiveConfig() *config.Config {
	if loadedConfig != nil {
		return loadedConfig
	}
	cfg := config.Defaults()
	return &cfg
}

// newSession wires a session to the Al Adhan client and the location
// resolver. Coordinates given on the command line become a manual location;
// configured coordinates only back the device fallback.
func newSession(cmd *cobra.Command, cfg *config.Config, source session.TimingsSource, onUpdate func(session.Snapshot)) (*session.Session, error) {
	manual, err := manualCoordinates(cmd)
	if err != nil {
		return nil, err
	}

	opts := session.Options{
		Source: source,
		Resolver: geo.NewResolver(geo.NewIPLocator(), geo.StaticPositioner{
			Latitude:  cfg.Latitude,
			Longitude: cfg.Longitude,
			Allowed:   cfg.DeviceLocationAllowed(),
		}),
		Method:   cfg.MethodOrDefault(session.DefaultMethod),
		OnUpdate: onUpdate,
	}
	if manual {
		opts.Location = geo.Manual(*cfg.Latitude, *cfg.Longitude, cfg.City, cfg.Country)
	}
	return session.New(opts), nil
}

// newSource builds the timings source for every command. Tests replace it.
var newSource = func() session.TimingsSource {
	return api.NewClient()
}

// load brings a fresh session to the ready state: a preset location is
// fetched directly, otherwise the location is resolved first.
func load(ctx context.Context, sess *session.Session) error {
	if sess.Snapshot().Location != nil {
		return sess.Refresh(ctx)
	}
	return sess.ResolveLocation(ctx)
}

// locationLabel builds a "City, Country" string, falling back to coordinates.
func locationLabel(loc *geo.Location) string {
	if loc == nil {
		return ""
	}
	switch {
	case loc.City != "" && loc.Country != "":
		return loc.City + ", " + loc.Country
	case loc.City != "":
		return loc.City
	default:
		return fmt.Sprintf("%.4f, %.4f", loc.Latitude, loc.Longitude)
	}
}

// hijriLabel formats the snapshot's hijri date, or "" when it has none.
func hijriLabel(snap session.Snapshot, lang string) string {
	if snap.Hijri == nil {
		return ""
	}
	return snap.Hijri.Format(lang)
}

func layoutFor(cfg *config.Config) string {
	return prayer.LayoutFor(cfg.TimeFormat)
}
