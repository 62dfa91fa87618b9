package review

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dshills/diffcritic/internal/agent"
	"github.com/dshills/diffcritic/internal/gitdiff"
)

// Severity is a reported issue severity. Known values form an ordered set;
// anything else is carried through as SeverityUnknown for reporting but can
// never trip the quality gate.
type Severity string

const (
	SeverityBlocker  Severity = "blocker"
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
	SeverityNote     Severity = "note"
	SeverityUnknown  Severity = "unknown"
)

// ParseSeverity normalizes a raw severity string to a known value, mapping
// common aliases and falling back to SeverityUnknown.
func ParseSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "blocker":
		return SeverityBlocker
	case "critical":
		return SeverityCritical
	case "major", "high":
		return SeverityMajor
	case "minor", "medium", "low":
		return SeverityMinor
	case "note", "info", "informational":
		return SeverityNote
	default:
		return SeverityUnknown
	}
}

// SeverityRank returns a numeric rank for gating and sorting (higher = more
// severe). Unknown and note severities rank 0 and cannot trip the gate.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityBlocker:
		return 4
	case SeverityCritical:
		return 3
	case SeverityMajor:
		return 2
	case SeverityMinor:
		return 1
	default:
		return 0
	}
}

// Issue is a single problem reported by the agent. Immutable once parsed;
// RawSeverity keeps the agent's original wording for the report while
// Severity drives the gate.
type Issue struct {
	File        string   `json:"file"`
	LineRange   string   `json:"lineRange,omitempty"`
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	RawSeverity string   `json:"rawSeverity,omitempty"`
	Description string   `json:"issue"`
	WhyProblem  string   `json:"whyProblem"`
	Fix         string   `json:"fix"`
	Fingerprint string   `json:"fingerprint,omitempty"`
}

// Lines parses the issue's line range. A single line yields start == end; a
// range of the form N-M yields both ends; a missing or malformed range
// defaults to line 1.
func (i Issue) Lines() (start, end int) {
	r := strings.ReplaceAll(strings.TrimSpace(i.LineRange), " ", "")
	if r == "" {
		return 1, 1
	}
	if n, err := strconv.Atoi(r); err == nil && n > 0 {
		return n, n
	}
	lo, hi, ok := strings.Cut(r, "-")
	if ok {
		s, err1 := strconv.Atoi(lo)
		e, err2 := strconv.Atoi(hi)
		if err1 == nil && err2 == nil && s > 0 && e >= s {
			return s, e
		}
	}
	return 1, 1
}

// Result is the agent's analysis of one diff.
type Result struct {
	OverallAssessment string   `json:"overallAssessment"`
	ShouldMerge       bool     `json:"shouldMerge"`
	Issues            []Issue  `json:"issues"`
	PositiveNotes     []string `json:"positiveNotes,omitempty"`
	TestCoverageNotes string   `json:"testCoverageNotes,omitempty"`
}

// Summary counts issues per severity tier.
type Summary struct {
	Blocker  int `json:"blocker"`
	Critical int `json:"critical"`
	Major    int `json:"major"`
	Minor    int `json:"minor"`
	Other    int `json:"other"`
}

// Total returns the number of counted issues.
func (s Summary) Total() int {
	return s.Blocker + s.Critical + s.Major + s.Minor + s.Other
}

// ComputeSummary builds the severity histogram for issues.
func ComputeSummary(issues []Issue) Summary {
	var s Summary
	for _, iss := range issues {
		switch iss.Severity {
		case SeverityBlocker:
			s.Blocker++
		case SeverityCritical:
			s.Critical++
		case SeverityMajor:
			s.Major++
		case SeverityMinor:
			s.Minor++
		default:
			s.Other++
		}
	}
	return s
}

// Timing holds per-phase wall-clock durations in milliseconds.
type Timing struct {
	GitMs   int64 `json:"gitMs"`
	AgentMs int64 `json:"agentMs"`
	TotalMs int64 `json:"totalMs"`
}

// InputInfo records what was reviewed.
type InputInfo struct {
	Mode string `json:"mode"`
	Ref  string `json:"ref"`
}

// Report is the top-level output envelope for one pipeline run.
type Report struct {
	Tool            string           `json:"tool"`
	Version         string           `json:"version"`
	RunID           string           `json:"runId"`
	Repo            gitdiff.RepoMeta `json:"repo"`
	Input           InputInfo        `json:"input"`
	Summary         Summary          `json:"summary"`
	Analysis        Result           `json:"analysis"`
	SuppressedCount int              `json:"suppressedCount"`
	GateFailed      bool             `json:"gateFailed"`
	Usage           *agent.Usage     `json:"usage,omitempty"`
	Timing          Timing           `json:"timing"`

	// allIssues is the unfiltered issue list, retained for baseline updates.
	allIssues []Issue
}

// AllIssues returns every issue from the run, before baseline filtering and
// truncation. Baseline updates persist this set so the baseline reflects
// everything seen now.
func (r *Report) AllIssues() []Issue { return r.allIssues }

// SortIssues orders issues by severity (most severe first), then file path,
// then start line.
func SortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		ri, rj := SeverityRank(issues[i].Severity), SeverityRank(issues[j].Severity)
		if ri != rj {
			return ri > rj
		}
		if issues[i].File != issues[j].File {
			return issues[i].File < issues[j].File
		}
		si, _ := issues[i].Lines()
		sj, _ := issues[j].Lines()
		return si < sj
	})
}
