// Command diffcritic reviews git diffs with an AI coding agent.
//
// It collects a diff (branch against a base ref, or a single commit), sends
// it to the agent with a structured-response contract, validates and filters
// the findings, applies a severity quality gate, and writes JSON, SARIF, and
// markdown reports.
//
// Exit codes: 0 on success, 1 when the quality gate fails, 2 on any
// operational failure.
package main
