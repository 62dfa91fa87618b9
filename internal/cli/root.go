package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes. Exactly three outcomes are distinguished: success, quality
// gate failure, and operational failure (usage, environment, git, agent, or
// validation errors). CI can rely on 1 meaning "the code was reviewed and
// failed the gate" and 2 meaning "the review itself did not complete".
const (
	ExitSuccess    = 0
	ExitGateFailed = 1
	ExitError      = 2
)

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

// logger is the process-wide structured logger, injected by main.
var logger zerolog.Logger

var rootCmd = &cobra.Command{
	Use:   "diffcritic",
	Short: "Agent-driven code review for git diffs",
	Long: "Diffcritic sends a git diff to an AI agent for review, validates the\n" +
		"structured response, filters known issues against a baseline, applies a\n" +
		"severity quality gate, and emits JSON, SARIF, and markdown reports.",
	SilenceUsage: true,
}

func init() {
	// Log level is applied by main before command dispatch; the flags are
	// declared here so cobra accepts them on any subcommand.
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

// Run executes the root command and returns the process exit code.
func Run(log zerolog.Logger) int {
	logger = log

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(baselineCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already printed the error.
		return ExitError
	}
	return exitCode
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print diffcritic version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "diffcritic version %s\n", version)
	},
}
