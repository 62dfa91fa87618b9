package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/diffcritic/internal/review"
)

// SARIFWriter outputs issues in SARIF v2.1.0 format, one rule per distinct
// issue type and one result per issue.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, report *review.Report) error {
	sarif := buildSARIF(report)
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	Help             *sarifMessage      `json:"help,omitempty"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
	Fixes     []sarifFix      `json:"fixes,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

type sarifFix struct {
	Description sarifMessage `json:"description"`
}

func buildSARIF(report *review.Report) sarifLog {
	// The first occurrence of each issue type seeds the rule's description
	// and remediation text.
	rulesByID := make(map[string]sarifRule)
	var ruleOrder []string
	var results []sarifResult

	for _, iss := range report.Analysis.Issues {
		ruleID := ruleIDFor(iss)
		if _, ok := rulesByID[ruleID]; !ok {
			rule := sarifRule{
				ID:               ruleID,
				Name:             iss.Type,
				ShortDescription: sarifMessage{Text: iss.Description},
				DefaultConfig:    sarifDefaultConfig{Level: severityToLevel(iss)},
			}
			if iss.Fix != "" {
				rule.Help = &sarifMessage{Text: iss.Fix}
			}
			rulesByID[ruleID] = rule
			ruleOrder = append(ruleOrder, ruleID)
		}

		start, end := iss.Lines()
		message := iss.Description
		if iss.WhyProblem != "" {
			message += " " + iss.WhyProblem
		}
		result := sarifResult{
			RuleID:  ruleID,
			Level:   severityToLevel(iss),
			Message: sarifMessage{Text: message},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: iss.File},
					Region:           sarifRegion{StartLine: start, EndLine: end},
				},
			}},
		}
		if iss.Fix != "" {
			result.Fixes = []sarifFix{{Description: sarifMessage{Text: iss.Fix}}}
		}
		results = append(results, result)
	}

	rules := make([]sarifRule, 0, len(ruleOrder))
	for _, id := range ruleOrder {
		rules = append(rules, rulesByID[id])
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{{
			Tool: sarifTool{
				Driver: sarifDriver{
					Name:           report.Tool,
					Version:        report.Version,
					InformationURI: "https://github.com/dshills/diffcritic",
					Rules:          rules,
				},
			},
			Results: results,
		}},
	}
}

// severityToLevel maps severities to the three SARIF report levels:
// blocker/critical are errors, major (and the "high" alias) warnings,
// everything else a note.
func severityToLevel(iss review.Issue) string {
	switch iss.Severity {
	case review.SeverityBlocker, review.SeverityCritical:
		return "error"
	case review.SeverityMajor:
		return "warning"
	default:
		return "note"
	}
}

func ruleIDFor(iss review.Issue) string {
	if iss.Type != "" {
		return "diffcritic/" + iss.Type
	}
	return "diffcritic/issue"
}
