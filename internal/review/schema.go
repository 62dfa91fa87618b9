package review

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// responseSchema is the shape the agent must return. Severity and type stay
// open strings so new tiers can appear without a schema change; gate logic
// normalizes them separately.
const responseSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["overallAssessment", "shouldMerge", "issues"],
  "properties": {
    "overallAssessment": {"type": "string", "minLength": 1},
    "shouldMerge": {"type": "boolean"},
    "issues": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["file", "type", "severity", "issue", "whyProblem", "fix"],
        "properties": {
          "file": {"type": "string", "minLength": 1},
          "lineRange": {"type": "string"},
          "type": {"type": "string", "minLength": 1},
          "severity": {"type": "string", "minLength": 1},
          "issue": {"type": "string", "minLength": 1},
          "whyProblem": {"type": "string"},
          "fix": {"type": "string"}
        }
      }
    },
    "positiveNotes": {"type": "array", "items": {"type": "string"}},
    "testCoverageNotes": {"type": "string"}
  }
}`

// ResponseSchema is the compiled schema handed to the extractor.
var ResponseSchema = jsonschema.MustCompileString("analysis.schema.json", responseSchema)

// rawIssue is the JSON structure the agent returns per issue.
type rawIssue struct {
	File       string `json:"file"`
	LineRange  string `json:"lineRange"`
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	Issue      string `json:"issue"`
	WhyProblem string `json:"whyProblem"`
	Fix        string `json:"fix"`
}

type rawResult struct {
	OverallAssessment string     `json:"overallAssessment"`
	ShouldMerge       bool       `json:"shouldMerge"`
	Issues            []rawIssue `json:"issues"`
	PositiveNotes     []string   `json:"positiveNotes"`
	TestCoverageNotes string     `json:"testCoverageNotes"`
}

// ParseResult decodes a schema-validated payload into a Result, normalizing
// severities and computing fingerprints.
func ParseResult(data json.RawMessage) (Result, error) {
	var raw rawResult
	if err := json.Unmarshal(data, &raw); err != nil {
		return Result{}, err
	}

	issues := make([]Issue, 0, len(raw.Issues))
	for _, r := range raw.Issues {
		iss := Issue{
			File:        r.File,
			LineRange:   r.LineRange,
			Type:        r.Type,
			Severity:    ParseSeverity(r.Severity),
			RawSeverity: r.Severity,
			Description: r.Issue,
			WhyProblem:  r.WhyProblem,
			Fix:         r.Fix,
		}
		iss.Fingerprint = ComputeFingerprint(iss)
		issues = append(issues, iss)
	}

	return Result{
		OverallAssessment: raw.OverallAssessment,
		ShouldMerge:       raw.ShouldMerge,
		Issues:            issues,
		PositiveNotes:     raw.PositiveNotes,
		TestCoverageNotes: raw.TestCoverageNotes,
	}, nil
}
