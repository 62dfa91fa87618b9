package review

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
)

// noRange is the canonical placeholder for issues without a line range.
const noRange = "no-range"

var whitespaceRun = regexp.MustCompile(`\s+`)

// ComputeFingerprint derives a short stable digest identifying an issue
// across runs. It is a pure function of four canonical fields: the file path
// as given, the line range with internal whitespace removed (or a fixed
// placeholder), the issue type (title text when absent), and the description
// lower-cased with whitespace runs collapsed. Incidental whitespace or case
// differences in the description therefore never change the fingerprint.
func ComputeFingerprint(iss Issue) string {
	lineRange := strings.ReplaceAll(strings.TrimSpace(iss.LineRange), " ", "")
	lineRange = strings.ReplaceAll(lineRange, "\t", "")
	if lineRange == "" {
		lineRange = noRange
	}

	kind := strings.TrimSpace(iss.Type)
	if kind == "" {
		kind = strings.TrimSpace(iss.Description)
	}

	desc := strings.ToLower(strings.TrimSpace(iss.Description))
	desc = whitespaceRun.ReplaceAllString(desc, " ")

	h := sha256.Sum256([]byte(iss.File + "|" + lineRange + "|" + kind + "|" + desc))
	return fmt.Sprintf("%x", h[:8])
}

// FingerprintIssues returns issues with their Fingerprint field populated.
func FingerprintIssues(issues []Issue) []Issue {
	out := make([]Issue, len(issues))
	for i, iss := range issues {
		iss.Fingerprint = ComputeFingerprint(iss)
		out[i] = iss
	}
	return out
}
