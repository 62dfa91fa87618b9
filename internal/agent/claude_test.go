package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStreamLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Event
		ok   bool
	}{
		{
			name: "assistant text",
			line: `{"type":"assistant","message":{"content":[{"type":"text","text":"hello"}]}}`,
			want: Event{Kind: KindMessage, Text: "hello"},
			ok:   true,
		},
		{
			name: "assistant mixed content",
			line: `{"type":"assistant","message":{"content":[{"type":"tool_use"},{"type":"text","text":"a"},{"type":"text","text":"b"}]}}`,
			want: Event{Kind: KindMessage, Text: "ab"},
			ok:   true,
		},
		{
			name: "assistant without text",
			line: `{"type":"assistant","message":{"content":[{"type":"tool_use"}]}}`,
			ok:   false,
		},
		{
			name: "result success",
			line: `{"type":"result","is_error":false,"usage":{"input_tokens":120,"cache_read_input_tokens":80,"output_tokens":40}}`,
			want: Event{Kind: KindDone, Usage: &Usage{InputTokens: 120, CachedInputTokens: 80, OutputTokens: 40}},
			ok:   true,
		},
		{
			name: "result error",
			line: `{"type":"result","is_error":true,"result":"rate limited"}`,
			want: Event{Kind: KindError, Err: "rate limited"},
			ok:   true,
		},
		{
			name: "result error without message",
			line: `{"type":"result","is_error":true}`,
			want: Event{Kind: KindError, Err: "turn failed"},
			ok:   true,
		},
		{
			name: "system event skipped",
			line: `{"type":"system","subtype":"init"}`,
			ok:   false,
		},
		{
			name: "garbage skipped",
			line: `not json at all`,
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseStreamLine([]byte(tt.line))
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNewCLIClientDefaults(t *testing.T) {
	c := NewCLIClient("", "")
	assert.Equal(t, "claude", c.Command)

	c = NewCLIClient("other-agent", "fast-model")
	assert.Equal(t, "other-agent", c.Command)
	assert.Equal(t, "fast-model", c.Model)
}

func TestStartAndResumeSessions(t *testing.T) {
	c := NewCLIClient("claude", "")

	s1 := c.Start()
	s2 := c.Start()
	assert.NotEmpty(t, s1.ID())
	assert.NotEqual(t, s1.ID(), s2.ID(), "fresh sessions must get distinct IDs")

	resumed := c.Resume("existing-id")
	assert.Equal(t, "existing-id", resumed.ID())
}

func TestAvailableMissingBinary(t *testing.T) {
	c := NewCLIClient("definitely-not-a-real-binary-12345", "")
	err := c.Available()
	var unavailable *UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, c.Command, unavailable.Command)
}
