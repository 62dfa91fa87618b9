package review

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRules = `focus:
  - security
  - error handling
severityOverrides:
  sql-injection: blocker
  logging: minor
required:
  - id: ctx-cancel
    text: Verify every blocking call honors context cancellation.
`

func writeRules(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRules(t *testing.T) {
	rules, err := LoadRules(writeRules(t, sampleRules))
	require.NoError(t, err)
	require.NotNil(t, rules)

	assert.Equal(t, []string{"security", "error handling"}, rules.Focus)
	assert.Equal(t, "blocker", rules.SeverityOverrides["sql-injection"])
	require.Len(t, rules.Required, 1)
	assert.Equal(t, "ctx-cancel", rules.Required[0].ID)
}

func TestLoadRulesEmptyPath(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Nil(t, rules)
}

func TestLoadRulesErrors(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "missing rules file is an explicit user request and must fail")

	_, err = LoadRules(writeRules(t, "focus: [unclosed"))
	assert.Error(t, err)
}

func TestPromptSection(t *testing.T) {
	rules, err := LoadRules(writeRules(t, sampleRules))
	require.NoError(t, err)

	section := rules.PromptSection()
	assert.Contains(t, section, "security")
	assert.Contains(t, section, "sql-injection issues should be rated blocker")
	assert.Contains(t, section, "[ctx-cancel]")

	var nilRules *Rules
	assert.Empty(t, nilRules.PromptSection())
}

func TestApplySeverityOverrides(t *testing.T) {
	rules := &Rules{SeverityOverrides: map[string]string{"sql-injection": "blocker"}}
	issues := []Issue{
		{Type: "sql-injection", Severity: SeverityMinor, RawSeverity: "minor"},
		{Type: "style", Severity: SeverityMinor, RawSeverity: "minor"},
	}

	out := rules.ApplySeverityOverrides(issues)
	assert.Equal(t, SeverityBlocker, out[0].Severity)
	assert.Equal(t, "blocker", out[0].RawSeverity)
	assert.Equal(t, SeverityMinor, out[1].Severity, "unmatched types keep their severity")

	var nilRules *Rules
	same := nilRules.ApplySeverityOverrides(issues)
	assert.Equal(t, issues, same)
}
