package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/diffcritic/internal/agent"
	"github.com/dshills/diffcritic/internal/config"
	"github.com/dshills/diffcritic/internal/gitdiff"
	"github.com/dshills/diffcritic/internal/output"
	"github.com/dshills/diffcritic/internal/review"
	"github.com/dshills/diffcritic/internal/sessioncache"
)

var (
	reviewFailOn         string
	reviewFormats        []string
	reviewOutDir         string
	reviewBaseline       string
	reviewUpdateBaseline bool
	reviewRules          string
	reviewMaxIssues      int
	reviewTimeout        int
	reviewNoCache        bool
	reviewNoRedact       bool
	reviewPaths          []string
	reviewExclude        []string
	reviewModel          string
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a git diff with an AI agent",
}

var reviewBranchCmd = &cobra.Command{
	Use:   "branch <ref>",
	Short: "Review HEAD against the merge base with a base ref",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := reviewConfig()
		if err != nil {
			exitCode = ExitError
			return err
		}
		diff, err := gitdiff.Branch(args[0], diffOptions(cfg))
		if err != nil {
			exitCode = ExitError
			return err
		}
		return runReview(cmd.Context(), diff, cfg)
	},
}

var reviewCommitCmd = &cobra.Command{
	Use:   "commit <sha>",
	Short: "Review a single commit against its parent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := reviewConfig()
		if err != nil {
			exitCode = ExitError
			return err
		}
		diff, err := gitdiff.Commit(args[0], diffOptions(cfg))
		if err != nil {
			exitCode = ExitError
			return err
		}
		return runReview(cmd.Context(), diff, cfg)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{reviewBranchCmd, reviewCommitCmd} {
		f := cmd.Flags()
		f.StringVar(&reviewFailOn, "fail-on", "", "severity threshold that fails the gate (blocker, critical, major, minor, none)")
		f.StringSliceVar(&reviewFormats, "format", nil, "output formats (json, sarif, markdown)")
		f.StringVar(&reviewOutDir, "out", "", "directory for report artifacts")
		f.StringVar(&reviewBaseline, "baseline", "", "baseline file path")
		f.BoolVar(&reviewUpdateBaseline, "update-baseline", false, "record this run's findings as the new baseline")
		f.StringVar(&reviewRules, "rules", "", "review rules file (YAML)")
		f.IntVar(&reviewMaxIssues, "max-issues", 0, "maximum issues to report")
		f.IntVar(&reviewTimeout, "timeout", 0, "agent turn timeout in seconds")
		f.BoolVar(&reviewNoCache, "no-session-cache", false, "disable agent session reuse")
		f.BoolVar(&reviewNoRedact, "no-redact", false, "disable secret redaction in the diff")
		f.StringSliceVar(&reviewPaths, "paths", nil, "limit review to matching glob patterns")
		f.StringSliceVar(&reviewExclude, "exclude", nil, "exclude matching glob patterns")
		f.StringVar(&reviewModel, "model", "", "agent model override")
		reviewCmd.AddCommand(cmd)
	}
}

// reviewConfig merges defaults, the config file, environment, and flags into
// the effective config for this run.
func reviewConfig() (config.Config, error) {
	overrides := map[string]string{
		"failOn":       reviewFailOn,
		"outDir":       reviewOutDir,
		"baselinePath": reviewBaseline,
		"rulesFile":    reviewRules,
		"model":        reviewModel,
	}
	if len(reviewFormats) > 0 {
		overrides["formats"] = strings.Join(reviewFormats, ",")
	}
	if reviewMaxIssues > 0 {
		overrides["maxIssues"] = strconv.Itoa(reviewMaxIssues)
	}
	if reviewTimeout > 0 {
		overrides["timeoutSeconds"] = strconv.Itoa(reviewTimeout)
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return config.Config{}, err
	}
	if len(reviewPaths) > 0 {
		cfg.Include = reviewPaths
	}
	if len(reviewExclude) > 0 {
		cfg.Exclude = reviewExclude
	}
	if reviewNoCache {
		cfg.SessionCache = false
	}
	if reviewNoRedact {
		cfg.RedactSecrets = false
	}
	return cfg, nil
}

func diffOptions(cfg config.Config) gitdiff.Options {
	return gitdiff.Options{Include: cfg.Include, Exclude: cfg.Exclude}
}

// runReview executes a review for an already-collected diff and maps the
// outcome onto the process exit code.
func runReview(ctx context.Context, diff gitdiff.Diff, cfg config.Config) error {
	if diff.Empty() {
		logger.Info().Str("mode", diff.Mode).Str("ref", diff.Ref).Msg("no changes to review")
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
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

	if reviewUpdateBaseline {
		if err := review.SaveBaseline(cfg.BaselinePath, report.AllIssues()); err != nil {
			exitCode = ExitError
			return fmt.Errorf("updating baseline: %w", err)
		}
		logger.Info().Str("path", cfg.BaselinePath).
			Int("fingerprints", len(report.AllIssues())).
			Msg("baseline updated")
	}

	if err := output.Emit(report, cfg.Formats, cfg.OutDir, logger); err != nil {
		exitCode = ExitError
		return err
	}

	logger.Info().
		Int("issues", report.Summary.Total()).
		Int("suppressed", report.SuppressedCount).
		Bool("gateFailed", report.GateFailed).
		Msg("review complete")

	if report.GateFailed {
		logger.Error().Str("failOn", cfg.FailOn).Msg("quality gate failed")
		exitCode = ExitGateFailed
	}
	return nil
}

// openSessionCache returns the session store, or nil when reuse is disabled
// or the cache location cannot be determined.
func openSessionCache(cfg config.Config) *sessioncache.Store {
	if !cfg.SessionCache {
		return nil
	}
	store, err := sessioncache.Open()
	if err != nil {
		logger.Warn().Err(err).Msg("session cache unavailable; starting fresh sessions")
		return nil
	}
	return store
}

// describeRunError attaches actionable context to well-known failure modes.
func describeRunError(err error) error {
	var unavailable *agent.UnavailableError
	if errors.As(err, &unavailable) {
		return fmt.Errorf("%w (install the agent CLI or set DIFFCRITIC_AGENT)", err)
	}
	var schemaErr *agent.SchemaError
	if errors.As(err, &schemaErr) {
		for _, v := range schemaErr.Violations {
			logger.Error().Str("violation", v).Msg("agent response failed validation")
		}
	}
	if errors.Is(err, agent.ErrTimeout) {
		return fmt.Errorf("%w (raise --timeout or reduce the diff size)", err)
	}
	return err
}
