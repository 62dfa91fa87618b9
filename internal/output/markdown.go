package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/diffcritic/internal/review"
)

// maxTableIssues caps the markdown issue table; the remainder is noted
// separately.
const maxTableIssues = 20

// MarkdownWriter outputs a PR-comment-friendly markdown summary.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *review.Report) error {
	fmt.Fprintf(w, "## Diffcritic Review\n\n")
	fmt.Fprintf(w, "%s\n\n", badge(report))

	if report.Analysis.OverallAssessment != "" {
		fmt.Fprintf(w, "%s\n\n", report.Analysis.OverallAssessment)
	}

	// Severity histogram
	s := report.Summary
	fmt.Fprintf(w, "| Severity | Count |\n")
	fmt.Fprintf(w, "|----------|-------|\n")
	fmt.Fprintf(w, "| Blocker  | %d    |\n", s.Blocker)
	fmt.Fprintf(w, "| Critical | %d    |\n", s.Critical)
	fmt.Fprintf(w, "| Major    | %d    |\n", s.Major)
	fmt.Fprintf(w, "| Minor    | %d    |\n", s.Minor)
	if s.Other > 0 {
		fmt.Fprintf(w, "| Other    | %d    |\n", s.Other)
	}
	fmt.Fprintf(w, "| **Total** | **%d** |\n\n", s.Total())

	if report.SuppressedCount > 0 {
		fmt.Fprintf(w, "_%d known issue(s) suppressed by the baseline._\n\n", report.SuppressedCount)
	}

	issues := report.Analysis.Issues
	if len(issues) > 0 {
		fmt.Fprintf(w, "### Issues\n\n")
		fmt.Fprintf(w, "| Severity | File | Lines | Type | Issue |\n")
		fmt.Fprintf(w, "|----------|------|-------|------|-------|\n")
		shown := issues
		if len(shown) > maxTableIssues {
			shown = shown[:maxTableIssues]
		}
		for _, iss := range shown {
			start, end := iss.Lines()
			lines := fmt.Sprintf("%d", start)
			if end > start {
				lines = fmt.Sprintf("%d-%d", start, end)
			}
			fmt.Fprintf(w, "| %s | `%s` | %s | %s | %s |\n",
				iss.Severity, iss.File, lines, iss.Type, tableCell(iss.Description))
		}
		if rest := len(issues) - len(shown); rest > 0 {
			fmt.Fprintf(w, "\n_...and %d more issue(s) not shown._\n", rest)
		}
		fmt.Fprintln(w)
	}

	if len(report.Analysis.PositiveNotes) > 0 {
		fmt.Fprintf(w, "### What Looks Good\n\n")
		for _, note := range report.Analysis.PositiveNotes {
			fmt.Fprintf(w, "- %s\n", note)
		}
		fmt.Fprintln(w)
	}

	if report.Analysis.TestCoverageNotes != "" {
		fmt.Fprintf(w, "### Test Coverage\n\n%s\n\n", report.Analysis.TestCoverageNotes)
	}

	_, err := fmt.Fprintf(w, "*Reviewed %s (%s) in %dms (agent: %dms)*\n",
		report.Input.Ref, report.Input.Mode, report.Timing.TotalMs, report.Timing.AgentMs)
	return err
}

func badge(report *review.Report) string {
	if report.GateFailed || !report.Analysis.ShouldMerge {
		return ":x: **Needs work**"
	}
	return ":white_check_mark: **Approved**"
}

// tableCell makes text safe for a one-line markdown table cell.
func tableCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	if len(s) > 160 {
		s = s[:157] + "..."
	}
	return s
}
