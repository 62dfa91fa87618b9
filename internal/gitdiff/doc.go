// Package gitdiff obtains minimized, size-bounded diffs from a git repository.
//
// Diffs are collected with zero lines of surrounding context to keep the
// payload sent to the review agent small. [Branch] reviews a branch against
// its merge base and [Commit] reviews a single commit against its parent.
// [ChunkByFile] splits a unified diff into per-file chunks and
// [EstimateTokens] provides the deterministic token heuristic used for the
// size warning.
package gitdiff
