package cli

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/diffcritic/internal/agent"
	"github.com/dshills/diffcritic/internal/config"
	"github.com/dshills/diffcritic/internal/gitdiff"
	"github.com/dshills/diffcritic/internal/review"
)

var baselineFile string

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Manage the issue baseline",
	Long: "The baseline holds fingerprints of accepted issues. Baselined issues\n" +
		"are suppressed from reports and never trip the quality gate.",
}

var baselineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List baselined fingerprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := baselinePath()
		if err != nil {
			exitCode = ExitError
			return err
		}
		baseline := review.LoadBaseline(path)
		if len(baseline) == 0 {
			fmt.Fprintf(os.Stdout, "baseline %s is empty\n", path)
			return nil
		}
		fps := make([]string, 0, len(baseline))
		for fp := range baseline {
			fps = append(fps, fp)
		}
		sort.Strings(fps)
		fmt.Fprintf(os.Stdout, "baseline %s (%d fingerprints):\n", path, len(fps))
		for _, fp := range fps {
			fmt.Fprintln(os.Stdout, "  "+fp)
		}
		return nil
	},
}

var baselineUpdateCmd = &cobra.Command{
	Use:   "update <ref>",
	Short: "Review against a base ref and record every finding as accepted",
	Long: "Runs a review of HEAD against the merge base with ref and overwrites\n" +
		"the baseline with all findings, without gating or writing reports.\n" +
		"Subsequent reviews only surface issues introduced after this point.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(map[string]string{"baselinePath": baselineFile})
		if err != nil {
			exitCode = ExitError
			return err
		}
		diff, err := gitdiff.Branch(args[0], gitdiff.Options{Include: cfg.Include, Exclude: cfg.Exclude})
		if err != nil {
			exitCode = ExitError
			return err
		}

		var issues []review.Issue
		if diff.Empty() {
			logger.Info().Str("ref", args[0]).Msg("no changes; recording an empty baseline")
		} else {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			pipeline := &review.Pipeline{
				Client: agent.NewCLIClient(cfg.AgentCommand, cfg.Model),
				Cache:  openSessionCache(cfg),
				Log:    logger,
			}
			report, err := pipeline.Run(ctx, diff, cfg)
			if err != nil {
				exitCode = ExitError
				return describeRunError(err)
			}
			issues = report.AllIssues()
		}

		if err := review.SaveBaseline(cfg.BaselinePath, issues); err != nil {
			exitCode = ExitError
			return fmt.Errorf("writing baseline: %w", err)
		}
		logger.Info().Str("path", cfg.BaselinePath).Int("fingerprints", len(issues)).Msg("baseline updated")
		return nil
	},
}

var baselineClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the baseline file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := baselinePath()
		if err != nil {
			exitCode = ExitError
			return err
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			exitCode = ExitError
			return fmt.Errorf("removing baseline: %w", err)
		}
		logger.Info().Str("path", path).Msg("baseline cleared")
		return nil
	},
}

func init() {
	baselineCmd.PersistentFlags().StringVar(&baselineFile, "baseline", "", "baseline file path")
	baselineCmd.AddCommand(baselineUpdateCmd)
	baselineCmd.AddCommand(baselineShowCmd)
	baselineCmd.AddCommand(baselineClearCmd)
}

func baselinePath() (string, error) {
	if baselineFile != "" {
		return baselineFile, nil
	}
	cfg, err := config.Load(nil)
	if err != nil {
		return "", err
	}
	return cfg.BaselinePath, nil
}
