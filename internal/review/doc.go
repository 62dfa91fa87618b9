// Package review implements the diff analysis pipeline: prompt construction,
// schema-validated extraction of the agent's response, issue fingerprinting,
// baseline filtering, and the severity quality gate.
package review
