package review

import (
	"fmt"
	"strings"
)

// Threshold is a quality-gate severity threshold.
type Threshold string

const (
	ThresholdNone     Threshold = "none"
	ThresholdMinor    Threshold = "minor"
	ThresholdMajor    Threshold = "major"
	ThresholdCritical Threshold = "critical"
	ThresholdBlocker  Threshold = "blocker"
)

// ParseThreshold validates a fail-on value. Empty means "none".
func ParseThreshold(s string) (Threshold, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ThresholdNone, nil
	case "minor":
		return ThresholdMinor, nil
	case "major":
		return ThresholdMajor, nil
	case "critical":
		return ThresholdCritical, nil
	case "blocker":
		return ThresholdBlocker, nil
	default:
		return "", fmt.Errorf("invalid fail-on threshold %q (none, minor, major, critical, blocker)", s)
	}
}

// ShouldFail applies the severity threshold policy: the gate fails when any
// issue is at least as severe as the threshold. "none" always passes, and
// unrecognized severities rank below every threshold so they can never
// trigger a failure. Callers pass the baseline-filtered, cap-truncated list;
// suppressed issues never influence the gate.
func ShouldFail(issues []Issue, threshold Threshold) bool {
	if threshold == ThresholdNone {
		return false
	}
	rank := SeverityRank(Severity(threshold))
	for _, iss := range issues {
		if r := SeverityRank(iss.Severity); r > 0 && r >= rank {
			return true
		}
	}
	return false
}
