package agent

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// DefaultTimeout is the per-turn budget for diff analysis.
const DefaultTimeout = 180 * time.Second

const repairPrompt = "Your previous response was not valid JSON. " +
	"Respond again with ONLY the raw JSON from your previous answer. " +
	"No markdown fences, no commentary, no preamble."

// Extract runs one request/response exchange against session and returns the
// schema-conforming JSON payload plus usage counters. Usage is nil only when
// the turn never completed normally. Malformed output triggers exactly one
// repair turn on the same session; a second parse failure is fatal.
func Extract(ctx context.Context, session Session, prompt string, schema *jsonschema.Schema, timeout time.Duration) (json.RawMessage, *Usage, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	turnCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, usage, err := consumeTurn(turnCtx, ctx, session, prompt)
	if err != nil {
		return nil, usage, err
	}

	candidate := StripFences(text)
	parsed, parseErr := parseJSON(candidate)
	if parseErr != nil {
		text, usage, err = consumeTurn(turnCtx, ctx, session, repairPrompt)
		if err != nil {
			return nil, usage, err
		}
		candidate = StripFences(text)
		parsed, parseErr = parseJSON(candidate)
		if parseErr != nil {
			return nil, usage, &FormatError{Raw: text, Err: parseErr}
		}
	}

	if err := schema.Validate(parsed); err != nil {
		return nil, usage, newSchemaError(err, candidate)
	}
	return json.RawMessage(candidate), usage, nil
}

// consumeTurn drains one turn's event stream, concatenating message text.
// Timeout and cancellation are enforced at every event, not just at the
// start; a terminal error event takes precedence over partial text.
func consumeTurn(turnCtx, callerCtx context.Context, session Session, prompt string) (string, *Usage, error) {
	events, err := session.Run(turnCtx, prompt)
	if err != nil {
		return "", nil, err
	}

	var text strings.Builder
	var usage *Usage
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return text.String(), usage, nil
			}
			switch ev.Kind {
			case KindMessage:
				text.WriteString(ev.Text)
			case KindError:
				return "", usage, &TurnError{Message: ev.Err}
			case KindDone:
				usage = ev.Usage
			}
		case <-turnCtx.Done():
			if callerCtx.Err() != nil {
				return "", usage, ErrCancelled
			}
			return "", usage, ErrTimeout
		}
	}
}

// StripFences removes a leading/trailing markdown code fence, with or
// without a language tag, from text.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return text
	}
	lines = lines[1:] // drop ```json / ``` opener
	if strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func parseJSON(candidate string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// newSchemaError flattens the validator's output into one violation line
// per failing field path.
func newSchemaError(err error, raw string) error {
	se := &SchemaError{Raw: raw}
	if ve, ok := err.(*jsonschema.ValidationError); ok {
		for _, cause := range ve.BasicOutput().Errors {
			if cause.Error == "" || strings.HasPrefix(cause.Error, "doesn't validate with") {
				continue
			}
			loc := cause.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			se.Violations = append(se.Violations, loc+": "+cause.Error)
		}
	}
	if len(se.Violations) == 0 {
		se.Violations = append(se.Violations, err.Error())
	}
	return se
}
