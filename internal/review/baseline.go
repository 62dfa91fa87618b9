package review

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Baseline is a set of fingerprints for known, accepted issues.
type Baseline map[string]bool

// baselineFile is the on-disk shape of a baseline.
type baselineFile struct {
	Fingerprints []string `json:"fingerprints"`
}

// LoadBaseline reads a baseline file. A file that is missing or unparsable
// yields an empty set; baseline problems are never fatal.
func LoadBaseline(path string) Baseline {
	data, err := os.ReadFile(path)
	if err != nil {
		return Baseline{}
	}
	var bf baselineFile
	if err := json.Unmarshal(data, &bf); err != nil {
		return Baseline{}
	}
	b := make(Baseline, len(bf.Fingerprints))
	for _, fp := range bf.Fingerprints {
		b[fp] = true
	}
	return b
}

// SaveBaseline overwrites the baseline file with the fingerprints of all
// given issues. Callers pass the unfiltered current run so the baseline
// always reflects everything seen now, not just new issues.
func SaveBaseline(path string, issues []Issue) error {
	fps := make([]string, 0, len(issues))
	seen := make(map[string]bool, len(issues))
	for _, iss := range issues {
		fp := iss.Fingerprint
		if fp == "" {
			fp = ComputeFingerprint(iss)
		}
		if !seen[fp] {
			seen[fp] = true
			fps = append(fps, fp)
		}
	}
	sort.Strings(fps)

	data, err := json.MarshalIndent(baselineFile{Fingerprints: fps}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling baseline: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating baseline directory: %w", err)
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// FilterNew returns the issues whose fingerprint is not in the baseline,
// preserving input order.
func FilterNew(issues []Issue, baseline Baseline) []Issue {
	if len(baseline) == 0 {
		return issues
	}
	kept := make([]Issue, 0, len(issues))
	for _, iss := range issues {
		fp := iss.Fingerprint
		if fp == "" {
			fp = ComputeFingerprint(iss)
		}
		if !baseline[fp] {
			kept = append(kept, iss)
		}
	}
	return kept
}
