package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-clock/internal/api"
	"github.com/smokyabdulrahman/prayer-clock/internal/config"
	"github.com/smokyabdulrahman/prayer-clock/internal/display"
	"github.com/smokyabdulrahman/prayer-clock/internal/session"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify configuration",
		Long:  "Display the effective configuration, or use subcommands to modify the config file.\nWhen run without subcommands, shows the effective configuration.",
		RunE:  runConfigShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: fmt.Sprintf("Set a configuration value. Valid keys: %s\n\nExamples:\n  prayer-clock config set latitude 21.4225\n  prayer-clock config set longitude 39.8262\n  prayer-clock config set method 4\n  prayer-clock config set lang ar\n  prayer-clock config set time_format 12h",
			strings.Join(config.ValidKeys, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset config to defaults",
		Long:  "Delete the config file and restore all settings to defaults.",
		RunE:  runConfigReset,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print config file path",
		RunE:  runConfigPath,
	})

	return cmd
}

// configPath returns --config when given, else the default location.
func configPath() (string, error) {
	if FlagConfig != "" {
		return FlagConfig, nil
	}
	return config.Path()
}

// runConfigShow displays the effective configuration.
func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	cfg := effectiveConfig()
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "  Configuration (%s)\n\n", path)
	for _, key := range config.ValidKeys {
		val, _ := cfg.Get(key)
		shown := val
		if shown == "" {
			shown = display.Dim("(not set)")
		}
		if key == "method" && val != "" {
			shown = formatMethodValue(val, cfg.Lang)
		}
		fmt.Fprintf(w, "  %-22s %s\n", key, shown)
	}
	return nil
}

// runConfigSet sets a key in the config file. Only the file is changed;
// environment overrides are not written back.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	path, err := configPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if err := cfg.SaveTo(path); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
	return nil
}

// runConfigReset deletes the config file.
func runConfigReset(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := config.ResetAt(path); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
	return nil
}

// runConfigPath prints the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// formatMethodValue adds the method name to the numeric value.
func formatMethodValue(val, lang string) string {
	id, err := strconv.Atoi(val)
	if err != nil {
		return val
	}
	if m, ok := api.LookupMethod(id); ok {
		return fmt.Sprintf("%s (%s)", val, m.DisplayName(lang))
	}
	return val
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List all calculation methods",
		Long:  "Print the table of all supported Al Adhan API calculation methods.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := effectiveConfig()
			selected := cfg.MethodOrDefault(session.DefaultMethod)

			t := display.NewTable("ID", "Name")
			for _, m := range api.Methods {
				id := strconv.Itoa(m.ID)
				if m.ID == selected {
					t.AddStyledRow(display.Accent, id, m.DisplayName(cfg.Lang)+" *")
					continue
				}
				t.AddRow(id, m.DisplayName(cfg.Lang))
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "Supported calculation methods:")
			fmt.Fprintln(w)
			fmt.Fprint(w, t.Render())
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Use --method <ID> or `prayer-clock config set method <ID>` to select one.")
			fmt.Fprintf(w, "* current selection (default: %d)\n", session.DefaultMethod)
			return nil
		},
	}
}
