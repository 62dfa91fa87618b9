package gitdiff

import (
	"errors"
	"strings"
	"testing"
)

const sampleDiff = `diff --git a/internal/server/server.go b/internal/server/server.go
index 1111111..2222222 100644
--- a/internal/server/server.go
+++ b/internal/server/server.go
@@ -10,0 +11,2 @@ func New() *Server {
+	s.timeout = 30 * time.Second
+	s.retries = 3
diff --git a/vendor/lib/lib.go b/vendor/lib/lib.go
index 3333333..4444444 100644
--- a/vendor/lib/lib.go
+++ b/vendor/lib/lib.go
@@ -1,0 +2 @@
+// generated
diff --git a/README.md b/README.md
index 5555555..6666666 100644
--- a/README.md
+++ b/README.md
@@ -5,0 +6 @@
+New section.
`

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 400), 100},
	}
	for _, tt := range tests {
		if got := EstimateTokens(tt.text); got != tt.want {
			t.Errorf("EstimateTokens(%d bytes) = %d, want %d", len(tt.text), got, tt.want)
		}
	}
}

func TestTooLarge(t *testing.T) {
	small := strings.Repeat("x", 40)  // 10 tokens
	big := strings.Repeat("x", 80004) // 20001 tokens

	if TooLarge(small, 100) {
		t.Error("small diff flagged as too large")
	}
	if !TooLarge(small, 5) {
		t.Error("diff over explicit limit not flagged")
	}
	if !TooLarge(big, 0) {
		t.Error("zero limit should fall back to DefaultTokenLimit")
	}
	if TooLarge(strings.Repeat("x", DefaultTokenLimit*4), 0) {
		t.Error("diff exactly at the default limit should not be flagged")
	}
}

func TestChunkByFile(t *testing.T) {
	chunks := ChunkByFile(sampleDiff)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}

	wantPaths := []string{"internal/server/server.go", "vendor/lib/lib.go", "README.md"}
	for i, want := range wantPaths {
		if chunks[i].Path != want {
			t.Errorf("chunk %d path = %q, want %q", i, chunks[i].Path, want)
		}
	}

	// Concatenating the chunks must reconstruct the diff exactly.
	var rebuilt strings.Builder
	for _, c := range chunks {
		rebuilt.WriteString(c.Text)
	}
	if rebuilt.String() != sampleDiff {
		t.Error("chunk concatenation does not reconstruct the diff")
	}
}

func TestChunkByFileDiscardsPreamble(t *testing.T) {
	diff := "commit log noise\nmore noise\n" + sampleDiff
	chunks := ChunkByFile(diff)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	if !strings.HasPrefix(chunks[0].Text, "diff --git") {
		t.Error("preamble leaked into first chunk")
	}
}

func TestChunkByFileMergesRepeatedPaths(t *testing.T) {
	diff := `diff --git a/x.go b/x.go
--- a/x.go
+++ b/x.go
@@ -1,0 +2 @@
+one
diff --git a/y.go b/y.go
--- a/y.go
+++ b/y.go
@@ -1,0 +2 @@
+two
diff --git a/x.go b/x.go
--- a/x.go
+++ b/x.go
@@ -9,0 +10 @@
+three
`
	chunks := ChunkByFile(diff)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].Path != "x.go" || chunks[1].Path != "y.go" {
		t.Fatalf("unexpected paths: %q, %q", chunks[0].Path, chunks[1].Path)
	}
	if !strings.Contains(chunks[0].Text, "+one") || !strings.Contains(chunks[0].Text, "+three") {
		t.Error("repeated sections for x.go were not merged")
	}
}

func TestChunkByFileEmpty(t *testing.T) {
	if got := ChunkByFile(""); got != nil {
		t.Errorf("ChunkByFile(\"\") = %v, want nil", got)
	}
	if got := ChunkByFile("  \n\t\n"); got != nil {
		t.Errorf("ChunkByFile(whitespace) = %v, want nil", got)
	}
}

func TestSectionPathDeletedFile(t *testing.T) {
	section := `diff --git a/gone.go b/gone.go
deleted file mode 100644
--- a/gone.go
+++ /dev/null
@@ -1,3 +0,0 @@
-package gone
`
	if got := sectionPath(section); got != "gone.go" {
		t.Errorf("sectionPath = %q, want %q", got, "gone.go")
	}
}

func TestFilterSections(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "exclude vendor",
			opts: Options{Exclude: []string{"vendor/**"}},
			want: []string{"internal/server/server.go", "README.md"},
		},
		{
			name: "include go only",
			opts: Options{Include: []string{"**/*.go"}},
			want: []string{"internal/server/server.go", "vendor/lib/lib.go"},
		},
		{
			name: "include then exclude",
			opts: Options{Include: []string{"**/*.go"}, Exclude: []string{"vendor/**"}},
			want: []string{"internal/server/server.go"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered := filterSections(sampleDiff, tt.opts)
			got := filePaths(filtered)
			if len(got) != len(tt.want) {
				t.Fatalf("got files %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("file %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFilePaths(t *testing.T) {
	got := filePaths(sampleDiff)
	want := []string{"internal/server/server.go", "vendor/lib/lib.go", "README.md"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("path %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDiffEmpty(t *testing.T) {
	if !(Diff{Text: "  \n"}).Empty() {
		t.Error("whitespace-only diff should be empty")
	}
	if (Diff{Text: sampleDiff}).Empty() {
		t.Error("non-empty diff reported empty")
	}
}

func TestToolError(t *testing.T) {
	base := errors.New("exit status 128")
	te := &ToolError{Args: []string{"diff", "-U0", "nope...HEAD"}, Stderr: "fatal: bad revision\n", Err: base}

	msg := te.Error()
	if !strings.Contains(msg, "git diff -U0 nope...HEAD") {
		t.Errorf("message missing command: %q", msg)
	}
	if !strings.Contains(msg, "fatal: bad revision") {
		t.Errorf("message missing stderr: %q", msg)
	}
	if !errors.Is(te, base) {
		t.Error("ToolError should unwrap to the underlying error")
	}
}
