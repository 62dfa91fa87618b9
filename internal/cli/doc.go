// Package cli implements the diffcritic command tree. Command handlers are
// thin: they merge configuration, call into the pipeline packages, and map
// outcomes to the documented exit codes.
package cli
