package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/diffcritic/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage diffcritic configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(nil)
		if err != nil {
			exitCode = ExitError
			return err
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			exitCode = ExitError
			return err
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFile()
		if err != nil {
			exitCode = ExitError
			return err
		}
		if err := config.SetField(&cfg, args[0], args[1]); err != nil {
			exitCode = ExitError
			return err
		}
		if err := config.Save(cfg); err != nil {
			exitCode = ExitError
			return err
		}
		logger.Info().Str("key", args[0]).Msg("config updated")
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Path()
		if err != nil {
			exitCode = ExitError
			return err
		}
		if _, err := os.Stat(path); err == nil {
			exitCode = ExitError
			return fmt.Errorf("config file already exists: %s", path)
		}
		if err := config.Save(config.Default()); err != nil {
			exitCode = ExitError
			return err
		}
		fmt.Fprintf(os.Stdout, "wrote %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
}
