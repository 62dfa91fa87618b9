package redact

import (
	"path/filepath"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

// rule pairs a label with the pattern that detects one secret family. The
// label is only used by tests and diagnostics.
type rule struct {
	name string
	re   *regexp.Regexp
}

var rules = []rule{
	{"assignment", regexp.MustCompile(`(?i)(api[_-]?key|apikey|secret|token|password|passwd|credential)\s*[:=]\s*["']?([A-Za-z0-9/+=_.-]{8,})["']?`)},
	{"aws-access-key", regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{"bearer", regexp.MustCompile(`(?i)Bearer\s+[A-Za-z0-9._-]{20,}`)},
	{"jwt", regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`)},
	{"private-key", regexp.MustCompile(`-----BEGIN\s+[A-Z ]*PRIVATE KEY-----`)},
	{"github-token", regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`)},
	{"slack-token", regexp.MustCompile(`xox[bporas]-[A-Za-z0-9-]{10,}`)},
	{"anthropic-key", regexp.MustCompile(`sk-ant-[A-Za-z0-9_-]{20,}`)},
	{"openai-key", regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`)},
}

// Secrets replaces anything resembling a credential in text with a
// placeholder before the text leaves the machine.
func Secrets(text string) string {
	for _, r := range rules {
		text = r.re.ReplaceAllString(text, placeholder)
	}
	return text
}

var sensitiveExts = map[string]bool{
	".pem": true,
	".key": true,
	".p12": true,
	".pfx": true,
	".jks": true,
}

var sensitiveNames = []string{
	".env",
	".netrc",
	".npmrc",
	".pypirc",
	"credentials",
	"id_rsa",
	"id_ed25519",
	"secrets.yaml",
	"secrets.yml",
	"secrets.json",
}

// SensitivePath reports whether a file's contents should never be sent to
// the agent, regardless of pattern matching. Matching is by base name and
// extension so nested paths like config/.env.production are caught.
func SensitivePath(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	if sensitiveExts[filepath.Ext(base)] {
		return true
	}
	for _, name := range sensitiveNames {
		if base == name || strings.HasPrefix(base, name+".") {
			return true
		}
	}
	return false
}
