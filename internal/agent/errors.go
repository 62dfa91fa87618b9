package agent

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTimeout reports that a turn exceeded its time budget.
var ErrTimeout = errors.New("agent turn timed out")

// ErrCancelled reports that the caller cancelled the turn.
var ErrCancelled = errors.New("agent turn cancelled")

// UnavailableError reports that the agent capability cannot be invoked,
// typically because the CLI binary is not on PATH.
type UnavailableError struct {
	Command string
	Err     error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("agent command %q is not available: %v", e.Command, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// TurnError reports an internal failure raised by the agent for the turn.
// It takes precedence over any partial message content.
type TurnError struct {
	Message string
}

func (e *TurnError) Error() string {
	return "agent reported an error: " + e.Message
}

// FormatError reports that the agent's output was not valid JSON even after
// the single repair attempt. Raw preserves the offending text for diagnosis.
type FormatError struct {
	Raw string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("agent response is not valid JSON after repair: %v", e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// SchemaError reports that parsed JSON did not match the expected shape.
// Violations lists every failing field path.
type SchemaError struct {
	Violations []string
	Raw        string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("agent response failed schema validation (%d violations): %s",
		len(e.Violations), strings.Join(e.Violations, "; "))
}
