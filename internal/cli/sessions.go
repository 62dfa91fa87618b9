package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/diffcritic/internal/sessioncache"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage cached agent sessions",
	Long: "Agent sessions are cached per repository and ref so follow-up reviews\n" +
		"reuse conversation context. Entries expire after 24 hours.",
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the session cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sessioncache.Open()
		if err != nil {
			exitCode = ExitError
			return err
		}
		if err := store.Compact(); err != nil {
			exitCode = ExitError
			return err
		}
		fmt.Fprintf(os.Stdout, "session cache %s: %d live entries\n", store.Path(), store.Len())
		return nil
	},
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := sessioncache.Open()
		if err != nil {
			exitCode = ExitError
			return err
		}
		if err := store.Clear(); err != nil {
			exitCode = ExitError
			return err
		}
		logger.Info().Str("path", store.Path()).Msg("session cache cleared")
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsClearCmd)
}
