package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/diffcritic/internal/agent"
	"github.com/dshills/diffcritic/internal/config"
	"github.com/dshills/diffcritic/internal/gitdiff"
	"github.com/dshills/diffcritic/internal/redact"
	"github.com/dshills/diffcritic/internal/sessioncache"
)

// Version is the report format version.
const Version = "1.0"

// Pipeline wires the collaborators for one review run. Cache may be nil to
// disable session reuse.
type Pipeline struct {
	Client agent.Client
	Cache  *sessioncache.Store
	Log    zerolog.Logger
}

// Run executes the full analysis pipeline for a non-empty diff: session
// reuse, schema-validated extraction, fingerprinting, baseline filtering,
// truncation, and the quality gate. The returned report's Analysis.Issues
// holds only new (non-baselined) issues; AllIssues retains the unfiltered
// set for baseline updates.
func (p *Pipeline) Run(ctx context.Context, diff gitdiff.Diff, cfg config.Config) (*Report, error) {
	startTime := time.Now()

	threshold, err := ParseThreshold(cfg.FailOn)
	if err != nil {
		return nil, err
	}
	rules, err := LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, err
	}

	// Required capability is verified before any subprocess or network work.
	if err := p.Client.Available(); err != nil {
		return nil, err
	}

	diffText := diff.Text
	if cfg.RedactSecrets {
		diffText = p.dropSensitiveFiles(diffText)
		diffText = redact.Secrets(diffText)
	}

	if gitdiff.TooLarge(diffText, cfg.TokenLimit) {
		p.Log.Warn().
			Int("estimatedTokens", gitdiff.EstimateTokens(diffText)).
			Int("limit", cfg.TokenLimit).
			Msg("diff exceeds token limit; review quality may degrade")
	}

	session := p.openSession(diff)
	prompt := BuildPrompt(diffText, diff.Files, cfg.MaxIssues, threshold, rules)

	agentStart := time.Now()
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	payload, usage, err := agent.Extract(ctx, session, prompt, ResponseSchema, timeout)
	agentMs := time.Since(agentStart).Milliseconds()
	if err != nil {
		return nil, err
	}

	result, err := ParseResult(payload)
	if err != nil {
		return nil, fmt.Errorf("decoding analysis payload: %w", err)
	}
	result.Issues = rules.ApplySeverityOverrides(result.Issues)

	allIssues := result.Issues

	baseline := LoadBaseline(cfg.BaselinePath)
	filtered := FilterNew(allIssues, baseline)
	suppressed := len(allIssues) - len(filtered)
	if suppressed > 0 {
		p.Log.Info().Int("suppressed", suppressed).Msg("baseline suppressed known issues")
	}

	SortIssues(filtered)
	if cfg.MaxIssues > 0 && len(filtered) > cfg.MaxIssues {
		p.Log.Warn().
			Int("reported", len(filtered)).
			Int("max", cfg.MaxIssues).
			Msg("truncating issue list")
		filtered = filtered[:cfg.MaxIssues]
	}
	result.Issues = filtered

	p.persistSession(diff, session)

	return &Report{
		Tool:            "diffcritic",
		Version:         Version,
		RunID:           uuid.NewString(),
		Repo:            diff.Repo,
		Input:           InputInfo{Mode: diff.Mode, Ref: diff.Ref},
		Summary:         ComputeSummary(filtered),
		Analysis:        result,
		SuppressedCount: suppressed,
		GateFailed:      ShouldFail(filtered, threshold),
		Usage:           usage,
		Timing: Timing{
			AgentMs: agentMs,
			TotalMs: time.Since(startTime).Milliseconds(),
		},
		allIssues: allIssues,
	}, nil
}

// dropSensitiveFiles removes whole diff sections for files whose contents
// must never reach the agent (env files, key material).
func (p *Pipeline) dropSensitiveFiles(diffText string) string {
	var kept strings.Builder
	for _, chunk := range gitdiff.ChunkByFile(diffText) {
		if redact.SensitivePath(chunk.Path) {
			p.Log.Warn().Str("file", chunk.Path).Msg("excluding sensitive file from review")
			continue
		}
		kept.WriteString(chunk.Text)
	}
	return kept.String()
}

// openSession resumes the cached session for this review context when one
// is fresh enough, otherwise starts a new conversation. Compaction runs
// before the lookup so an expired entry can never be served.
func (p *Pipeline) openSession(diff gitdiff.Diff) agent.Session {
	if p.Cache == nil {
		return p.Client.Start()
	}
	if err := p.Cache.Compact(); err != nil {
		p.Log.Warn().Err(err).Msg("session cache compaction failed")
	}
	key := sessioncache.Key(diff.Repo.Root, diff.Ref)
	if id, ok := p.Cache.Get(key); ok {
		p.Log.Debug().Str("session", id).Msg("resuming cached agent session")
		return p.Client.Resume(id)
	}
	return p.Client.Start()
}

// persistSession records the session handle after a successful exchange.
func (p *Pipeline) persistSession(diff gitdiff.Diff, session agent.Session) {
	if p.Cache == nil {
		return
	}
	key := sessioncache.Key(diff.Repo.Root, diff.Ref)
	if err := p.Cache.Put(key, session.ID()); err != nil {
		p.Log.Warn().Err(err).Msg("persisting session cache failed")
	}
}
