package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/masjidboard/masjidboard/internal/settings"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify configuration",
		Long:  "Display current configuration, or use subcommands to modify it.\nWhen run without subcommands, shows the current configuration.",
		RunE:  runConfigShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: fmt.Sprintf("Set a configuration value. Valid keys: %s\n\nExamples:\n  masjidboard config set provider backend\n  masjidboard config set zone 4\n  masjidboard config set city Colombo\n  masjidboard config set gap.fajr 20\n  masjidboard config set manual.fajr 04:45\n  masjidboard config set night_delay true",
			strings.Join(settings.ValidKeys, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset config to defaults",
		RunE:  runConfigReset,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print config file path",
		RunE:  runConfigPath,
	})

	return cmd
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := settings.Path()
	if err != nil {
		return err
	}

	svc, err := settings.NewService(path)
	if err != nil {
		return err
	}
	snap := svc.Snapshot()

	fmt.Printf("  Configuration (%s)\n\n", path)
	for _, key := range settings.ValidKeys {
		val, _ := snap.Get(key)
		if val == "" {
			val = "(not set)"
		}
		fmt.Printf("  %-22s %s\n", key, val)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	path, err := settings.Path()
	if err != nil {
		return err
	}
	svc, err := settings.NewService(path)
	if err != nil {
		return err
	}

	if err := svc.Update(func(s *settings.Settings) error {
		return s.Set(key, value)
	}); err != nil {
		return err
	}

	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	path, err := settings.Path()
	if err != nil {
		return err
	}
	svc, err := settings.NewService(path)
	if err != nil {
		return err
	}

	if err := svc.Reset(); err != nil {
		return err
	}
	fmt.Println("Configuration reset to defaults.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := settings.Path()
	if err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}
