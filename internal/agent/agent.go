package agent

import "context"

// EventKind tags one streamed event from an agent turn.
type EventKind int

const (
	// KindMessage carries incremental response text.
	KindMessage EventKind = iota
	// KindError carries a terminal failure reported by the agent.
	KindError
	// KindDone marks normal turn completion, carrying usage counters.
	KindDone
)

// Usage holds token counters from a completed turn.
type Usage struct {
	InputTokens       int `json:"inputTokens"`
	CachedInputTokens int `json:"cachedInputTokens"`
	OutputTokens      int `json:"outputTokens"`
}

// Event is one tagged variant from a turn's event stream.
type Event struct {
	Kind  EventKind
	Text  string // KindMessage
	Err   string // KindError
	Usage *Usage // KindDone, nil if the turn produced no usage counters
}

// Session is a resumable conversation with the agent. Run executes exactly
// one turn and returns a channel that is closed when the turn ends; the
// caller owns timeout and cancellation via ctx.
type Session interface {
	ID() string
	Run(ctx context.Context, prompt string) (<-chan Event, error)
}

// Client creates and resumes agent sessions.
type Client interface {
	// Available reports whether the agent capability can be invoked at all.
	// It is checked before any network or subprocess work.
	Available() error
	Start() Session
	Resume(id string) Session
}
