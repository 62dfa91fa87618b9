// Package config loads and merges diffcritic configuration from defaults,
// the per-user config file, DIFFCRITIC_* environment variables, and CLI flag
// overrides, in that order of precedence.
package config
