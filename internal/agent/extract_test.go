package agent

import (
	"context"
	"testing"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = jsonschema.MustCompileString("test.schema.json", `{
	"type": "object",
	"required": ["verdict", "count"],
	"properties": {
		"verdict": {"type": "string"},
		"count": {"type": "integer"}
	}
}`)

// fakeSession replays one scripted event slice per Run call.
type fakeSession struct {
	id    string
	turns [][]Event
	calls int
	// hang leaves the event channel open and silent, to exercise timeouts.
	hang bool
}

func (s *fakeSession) ID() string { return s.id }

func (s *fakeSession) Run(ctx context.Context, prompt string) (<-chan Event, error) {
	ch := make(chan Event)
	if s.hang {
		return ch, nil
	}
	turn := s.turns[s.calls]
	s.calls++
	go func() {
		defer close(ch)
		for _, ev := range turn {
			ch <- ev
		}
	}()
	return ch, nil
}

func messageTurn(text string) []Event {
	return []Event{
		{Kind: KindMessage, Text: text},
		{Kind: KindDone, Usage: &Usage{InputTokens: 100, OutputTokens: 50}},
	}
}

func TestExtractFencedResponse(t *testing.T) {
	session := &fakeSession{turns: [][]Event{
		messageTurn("```json\n{\"verdict\": \"ok\", \"count\": 2}\n```"),
	}}

	payload, usage, err := Extract(context.Background(), session, "analyze", testSchema, time.Minute)
	require.NoError(t, err)
	assert.JSONEq(t, `{"verdict": "ok", "count": 2}`, string(payload))
	require.NotNil(t, usage)
	assert.Equal(t, 100, usage.InputTokens)
	assert.Equal(t, 1, session.calls, "valid response must not trigger a repair turn")
}

func TestExtractSplitMessages(t *testing.T) {
	session := &fakeSession{turns: [][]Event{{
		{Kind: KindMessage, Text: `{"verdict": "ok",`},
		{Kind: KindMessage, Text: ` "count": 1}`},
		{Kind: KindDone, Usage: &Usage{OutputTokens: 10}},
	}}}

	payload, _, err := Extract(context.Background(), session, "analyze", testSchema, time.Minute)
	require.NoError(t, err)
	assert.JSONEq(t, `{"verdict": "ok", "count": 1}`, string(payload))
}

func TestExtractRepairRecovers(t *testing.T) {
	session := &fakeSession{turns: [][]Event{
		messageTurn("Here is my analysis: the change looks fine overall."),
		messageTurn(`{"verdict": "ok", "count": 0}`),
	}}

	payload, _, err := Extract(context.Background(), session, "analyze", testSchema, time.Minute)
	require.NoError(t, err)
	assert.JSONEq(t, `{"verdict": "ok", "count": 0}`, string(payload))
	assert.Equal(t, 2, session.calls, "expected exactly one repair turn")
}

func TestExtractRepairFails(t *testing.T) {
	session := &fakeSession{turns: [][]Event{
		messageTurn("not json"),
		messageTurn("still not json"),
	}}

	_, _, err := Extract(context.Background(), session, "analyze", testSchema, time.Minute)
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Contains(t, formatErr.Raw, "still not json")
	assert.Equal(t, 2, session.calls, "at most one repair turn is allowed")
}

func TestExtractSchemaViolations(t *testing.T) {
	session := &fakeSession{turns: [][]Event{
		messageTurn(`{"verdict": 42}`),
	}}

	_, _, err := Extract(context.Background(), session, "analyze", testSchema, time.Minute)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.NotEmpty(t, schemaErr.Violations)
	assert.Equal(t, 1, session.calls, "schema failures must not trigger a repair turn")
}

func TestExtractErrorEventWins(t *testing.T) {
	session := &fakeSession{turns: [][]Event{{
		{Kind: KindMessage, Text: `{"verdict": "ok", "count": 0}`},
		{Kind: KindError, Err: "overloaded"},
	}}}

	_, _, err := Extract(context.Background(), session, "analyze", testSchema, time.Minute)
	var turnErr *TurnError
	require.ErrorAs(t, err, &turnErr)
	assert.Contains(t, turnErr.Error(), "overloaded")
}

func TestExtractTimeout(t *testing.T) {
	session := &fakeSession{hang: true}

	_, _, err := Extract(context.Background(), session, "analyze", testSchema, 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestExtractCancelled(t *testing.T) {
	session := &fakeSession{hang: true}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, _, err := Extract(ctx, session, "analyze", testSchema, time.Minute)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\": 1}\n```\n  ", `{"a": 1}`},
		{"unterminated fence", "```json\n{\"a\": 1}", `{"a": 1}`},
		{"fence only", "```", "```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}
