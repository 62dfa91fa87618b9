package review

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules is an optional review policy pack loaded from --rules.
type Rules struct {
	Focus             []string          `yaml:"focus"`
	SeverityOverrides map[string]string `yaml:"severityOverrides"`
	Required          []RequiredCheck   `yaml:"required"`
}

// RequiredCheck is a policy check the agent should always evaluate.
type RequiredCheck struct {
	ID   string `yaml:"id"`
	Text string `yaml:"text"`
}

// LoadRules loads a YAML rules file. Returns nil Rules and nil error when
// path is empty.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}
	return &rules, nil
}

// PromptSection renders additional prompt instructions derived from rules.
func (r *Rules) PromptSection() string {
	if r == nil {
		return ""
	}

	var b strings.Builder
	if len(r.Focus) > 0 {
		fmt.Fprintf(&b, "\nFocus areas: %s. Prioritize issues in these areas.\n",
			strings.Join(r.Focus, ", "))
	}
	if len(r.SeverityOverrides) > 0 {
		b.WriteString("\nSeverity policy:\n")
		for kind, sev := range r.SeverityOverrides {
			fmt.Fprintf(&b, "- %s issues should be rated %s.\n", kind, sev)
		}
	}
	if len(r.Required) > 0 {
		b.WriteString("\nRequired checks (always evaluate these):\n")
		for _, req := range r.Required {
			fmt.Fprintf(&b, "- [%s] %s\n", req.ID, req.Text)
		}
	}
	return b.String()
}

// ApplySeverityOverrides enforces rule severity overrides on parsed issues.
// Severity is not a fingerprint input, so fingerprints stay valid.
func (r *Rules) ApplySeverityOverrides(issues []Issue) []Issue {
	if r == nil || len(r.SeverityOverrides) == 0 {
		return issues
	}
	for i := range issues {
		if override, ok := r.SeverityOverrides[issues[i].Type]; ok {
			issues[i].Severity = ParseSeverity(override)
			issues[i].RawSeverity = override
		}
	}
	return issues
}
