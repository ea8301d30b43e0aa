package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/prayer-clock/internal/config"
	"github.com/smokyabdulrahman/prayer-clock/internal/display"
	"github.com/smokyabdulrahman/prayer-clock/internal/logging"
)

// Global flags shared across all subcommands.
var (
	FlagCity       string
	FlagCountry    string
	FlagLatitude   float64
	FlagLongitude  float64
	FlagMethod     int
	FlagLang       string
	FlagTimeFormat string
	FlagConfig     string
	FlagLogLevel   string
	FlagJSON       bool
	FlagNoColor    bool
)

// loadedConfig holds the effective config built during PersistentPreRunE.
var loadedConfig *config.Config

// NewRootCmd creates the root command for the prayer-clock CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "prayer-clock",
		Short:   "Islamic prayer times with a live countdown",
		Long:    "Shows today's prayer times, the night's midnight and last third, and a live countdown to the next event.\nTimings come from the Al Adhan API.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadEffective(FlagConfig)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := applyFlags(cmd, cfg); err != nil {
				return err
			}
			if FlagNoColor {
				display.SetEnabled(false)
			}
			loadedConfig = cfg
			return logging.Setup(cfg.LogLevel, os.Stderr)
		},
		// Default action: show today's table.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&FlagCity, "city", "", "City label for manual coordinates")
	pf.StringVar(&FlagCountry, "country", "", "Country label for manual coordinates")
	pf.Float64Var(&FlagLatitude, "latitude", 0, "Latitude (with --longitude, skips location lookup)")
	pf.Float64Var(&FlagLongitude, "longitude", 0, "Longitude (with --latitude, skips location lookup)")
	pf.IntVar(&FlagMethod, "method", -1, "Calculation method (see `prayer-clock methods`)")
	pf.StringVar(&FlagLang, "lang", "", "Display language: en or ar")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h")
	pf.StringVar(&FlagConfig, "config", "", "Config file (default: ~/.config/prayer-clock/config.yaml)")
	pf.StringVar(&FlagLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error, disabled")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.BoolVar(&FlagNoColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMethodsCmd())

	return rootCmd
}

// applyFlags overlays explicitly set flags on cfg, validating them the way
// `config set` would. Priority: CLI flags > environment > config file > defaults.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	set := map[string]string{}
	if flagWasSet(flags, root, "city") {
		set["city"] = FlagCity
	}
	if flagWasSet(flags, root, "country") {
		set["country"] = FlagCountry
	}
	if flagWasSet(flags, root, "latitude") {
		set["latitude"] = fmt.Sprint(FlagLatitude)
	}
	if flagWasSet(flags, root, "longitude") {
		set["longitude"] = fmt.Sprint(FlagLongitude)
	}
	if flagWasSet(flags, root, "method") {
		set["method"] = fmt.Sprint(FlagMethod)
	}
	if flagWasSet(flags, root, "lang") {
		set["lang"] = FlagLang
	}
	if flagWasSet(flags, root, "time-format") {
		set["time_format"] = FlagTimeFormat
	}
	if flagWasSet(flags, root, "log-level") {
		set["log_level"] = FlagLogLevel
	}

	for _, key := range config.ValidKeys {
		val, ok := set[key]
		if !ok {
			continue
		}
		if err := cfg.Set(key, val); err != nil {
			return err
		}
	}
	return nil
}

// manualCoordinates reports whether the user passed coordinates on the
// command line, which bypasses location lookup entirely.
func manualCoordinates(cmd *cobra.Command) (bool, error) {
	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()
	lat := flagWasSet(flags, root, "latitude")
	lon := flagWasSet(flags, root, "longitude")
	if lat != lon {
		return false, fmt.Errorf("--latitude and --longitude must be given together")
	}
	return lat, nil
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}
