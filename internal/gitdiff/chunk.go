package gitdiff

import "strings"

// FileChunk is one file's portion of a unified diff.
type FileChunk struct {
	Path string
	Text string
}

// ChunkByFile splits a unified diff into per-file chunks, preserving input
// order. A line beginning a new "diff --git" section starts a new chunk and
// flushes the previous one; lines before the first section header are
// discarded. Repeated sections for the same path are merged into the first
// occurrence, so every hunk belongs to exactly one chunk and concatenating
// the chunks in order reconstructs the diff minus the discarded preamble.
func ChunkByFile(diff string) []FileChunk {
	if strings.TrimSpace(diff) == "" {
		return nil
	}

	var chunks []FileChunk
	index := make(map[string]int)
	var current strings.Builder
	inSection := false

	flush := func() {
		if current.Len() == 0 {
			return
		}
		text := current.String()
		current.Reset()
		path := sectionPath(text)
		if i, ok := index[path]; ok {
			chunks[i].Text += text
			return
		}
		index[path] = len(chunks)
		chunks = append(chunks, FileChunk{Path: path, Text: text})
	}

	// SplitAfter keeps line terminators so chunk text concatenates back to
	// the original bytes.
	for _, line := range strings.SplitAfter(diff, "\n") {
		if strings.HasPrefix(line, "diff --git") {
			flush()
			inSection = true
		}
		if !inSection {
			continue // preamble before the first file header
		}
		current.WriteString(line)
	}
	flush()

	return chunks
}

// sectionPath extracts the post-image path from one diff section. Deleted
// files have no "+++ b/" line, so the "--- a/" path is the fallback.
func sectionPath(section string) string {
	for _, line := range strings.Split(section, "\n") {
		if strings.HasPrefix(line, "+++ b/") {
			return strings.TrimPrefix(line, "+++ b/")
		}
	}
	for _, line := range strings.Split(section, "\n") {
		if strings.HasPrefix(line, "--- a/") {
			return strings.TrimPrefix(line, "--- a/")
		}
	}
	return ""
}
