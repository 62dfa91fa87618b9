package gitdiff

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultTokenLimit is the estimated-token threshold above which a diff is
// flagged as oversized. Exceeding it is a warning, not an abort.
const DefaultTokenLimit = 20000

// ToolError reports a failed git invocation.
type ToolError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// Options controls diff collection.
type Options struct {
	Include []string
	Exclude []string
}

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string `json:"root"`
	Head   string `json:"head"`
	Branch string `json:"branch"`
}

// Diff holds the collected diff text and metadata.
type Diff struct {
	Text  string   `json:"-"`
	Files []string `json:"files"`
	Mode  string   `json:"mode"`
	Ref   string   `json:"ref"`
	Repo  RepoMeta `json:"repo"`
}

// Empty reports whether the diff contains no changes.
func (d Diff) Empty() bool {
	return strings.TrimSpace(d.Text) == ""
}

// RepoInfo collects repository metadata from git.
func RepoInfo() (RepoMeta, error) {
	root, err := gitOutput("rev-parse", "--show-toplevel")
	if err != nil {
		return RepoMeta{}, err
	}
	head, err := gitOutput("rev-parse", "HEAD")
	if err != nil {
		head = "" // repo with no commits yet
	}
	branch, err := gitOutput("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		branch = ""
	}
	return RepoMeta{
		Root:   strings.TrimSpace(root),
		Head:   strings.TrimSpace(head),
		Branch: strings.TrimSpace(branch),
	}, nil
}

// Branch returns the diff of HEAD against the merge base with ref,
// with zero context lines.
func Branch(ref string, opts Options) (Diff, error) {
	diff, err := gitOutput("diff", "-U0", ref+"...HEAD")
	if err != nil {
		return Diff{}, err
	}
	return buildDiff(diff, "branch", ref, opts), nil
}

// Commit returns the diff for a single commit against its parent,
// with zero context lines.
func Commit(sha string, opts Options) (Diff, error) {
	diff, err := gitOutput("show", "-U0", "--format=", sha)
	if err != nil {
		return Diff{}, err
	}
	return buildDiff(diff, "commit", sha, opts), nil
}

// EstimateTokens returns a deterministic token estimate: length divided
// by 4, rounded up.
func EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}

// TooLarge reports whether the diff's estimated token count exceeds limit.
// A limit of 0 or below uses DefaultTokenLimit.
func TooLarge(diff string, limit int) bool {
	if limit <= 0 {
		limit = DefaultTokenLimit
	}
	return EstimateTokens(diff) > limit
}

func buildDiff(text, mode, ref string, opts Options) Diff {
	meta, err := RepoInfo()
	if err != nil {
		meta = RepoMeta{}
	}

	text = strings.TrimSpace(text)
	if text != "" {
		text += "\n"
	}

	if len(opts.Include) > 0 || len(opts.Exclude) > 0 {
		text = filterSections(text, opts)
	}

	return Diff{
		Text:  text,
		Files: filePaths(text),
		Mode:  mode,
		Ref:   ref,
		Repo:  meta,
	}
}

// filterSections drops per-file sections whose path is excluded or not
// included by the configured glob patterns.
func filterSections(diff string, opts Options) string {
	var kept []string
	for _, c := range ChunkByFile(diff) {
		if keepPath(c.Path, opts) {
			kept = append(kept, c.Text)
		}
	}
	return strings.Join(kept, "")
}

func keepPath(path string, opts Options) bool {
	if len(opts.Include) > 0 && !matchesAny(path, opts.Include) {
		return false
	}
	return !matchesAny(path, opts.Exclude)
}

func matchesAny(path string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, path); err == nil && ok {
			return true
		}
	}
	return false
}

func filePaths(diff string) []string {
	var files []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+++ b/") {
			f := strings.TrimPrefix(line, "+++ b/")
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files
}

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", &ToolError{Args: args, Stderr: stderr.String(), Err: err}
	}
	return string(out), nil
}
