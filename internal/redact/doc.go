// Package redact strips secrets from diff text before it is handed to the
// review agent.
//
// Detection is heuristic: a small set of regex rules covering credential
// assignments, bearer tokens, JWTs, private key blocks, and well-known
// provider token prefixes (AWS, GitHub, Slack, Anthropic, OpenAI).
// [SensitivePath] flags files (env files, key material) whose diff sections
// should be withheld from the agent entirely.
package redact
