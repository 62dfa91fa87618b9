// Package output serializes a review report into its interchange formats:
// pretty-printed JSON, SARIF v2.1.0, and a PR-comment-friendly markdown
// summary.
//
// Emission is best effort per format: a failure writing one artifact is
// collected and reported after every requested format has been attempted,
// so a bad path for the SARIF file never suppresses the JSON report.
package output
