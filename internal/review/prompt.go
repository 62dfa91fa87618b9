package review

import (
	"fmt"
	"path/filepath"
	"strings"
)

const promptHeader = `You are a strict, expert code reviewer. Review the code diff below and respond with a single JSON object describing your analysis.

Rules:
1. Only review the changes shown in the diff. Do not comment on unchanged code.
2. Focus on bugs, security issues, performance problems, and correctness. Avoid bikeshedding on style unless it significantly hurts readability.
3. Be concise and actionable. Every issue must include a concrete fix.
4. Reference line numbers from the diff hunks, as "N" or "N-M".
5. Rate severity as "blocker", "critical", "major", or "minor".

You MUST respond with ONLY a JSON object. No markdown fences, no explanation, no preamble.

The object must have this exact structure:
{
  "overallAssessment": "One-paragraph summary of the change and its risk",
  "shouldMerge": true,
  "issues": [
    {
      "file": "relative/file/path",
      "lineRange": "45-52",
      "type": "sql-injection",
      "severity": "blocker|critical|major|minor",
      "issue": "What is wrong",
      "whyProblem": "Why it matters",
      "fix": "How to fix it, with code if helpful"
    }
  ],
  "positiveNotes": ["Things done well"],
  "testCoverageNotes": "Optional remarks on test coverage"
}

If there are no issues, return an empty issues array.`

// BuildPrompt constructs the single-turn review prompt from the diff and
// options.
func BuildPrompt(diff string, files []string, maxIssues int, failOn Threshold, rules *Rules) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n\n")

	if maxIssues > 0 {
		fmt.Fprintf(&b, "Return at most %d issues.\n", maxIssues)
	}
	if failOn != ThresholdNone {
		fmt.Fprintf(&b, "Issues rated %s or above will block the merge; be precise about severity.\n", failOn)
	}
	if langs := detectLanguages(files); len(langs) > 0 {
		fmt.Fprintf(&b, "Languages: %s\n", strings.Join(langs, ", "))
	}
	if section := rules.PromptSection(); section != "" {
		b.WriteString(section)
	}

	b.WriteString("\n--- BEGIN DIFF ---\n")
	b.WriteString(diff)
	b.WriteString("\n--- END DIFF ---\n")
	return b.String()
}

var extLanguages = map[string]string{
	".go":   "Go",
	".py":   "Python",
	".js":   "JavaScript",
	".ts":   "TypeScript",
	".tsx":  "TypeScript",
	".jsx":  "JavaScript",
	".rs":   "Rust",
	".java": "Java",
	".rb":   "Ruby",
	".c":    "C",
	".cpp":  "C++",
	".cs":   "C#",
	".php":  "PHP",
	".sh":   "Shell",
	".sql":  "SQL",
}

func detectLanguages(files []string) []string {
	seen := make(map[string]bool)
	var langs []string
	for _, f := range files {
		if lang, ok := extLanguages[filepath.Ext(f)]; ok && !seen[lang] {
			seen[lang] = true
			langs = append(langs, lang)
		}
	}
	return langs
}
