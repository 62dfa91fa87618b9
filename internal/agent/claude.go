package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/uuid"
)

// CLIClient runs turns through the claude CLI in stream-json mode.
type CLIClient struct {
	Command string // agent binary, default "claude"
	Model   string // optional model override
}

// NewCLIClient creates a client for the given agent command.
func NewCLIClient(command, model string) *CLIClient {
	if command == "" {
		command = "claude"
	}
	return &CLIClient{Command: command, Model: model}
}

// Available checks that the agent binary is on PATH.
func (c *CLIClient) Available() error {
	if _, err := exec.LookPath(c.Command); err != nil {
		return &UnavailableError{Command: c.Command, Err: err}
	}
	return nil
}

// Start returns a session with a fresh ID. The CLI creates the conversation
// on the first turn.
func (c *CLIClient) Start() Session {
	return &cliSession{client: c, id: uuid.NewString(), fresh: true}
}

// Resume returns a session bound to an existing conversation ID.
func (c *CLIClient) Resume(id string) Session {
	return &cliSession{client: c, id: id}
}

type cliSession struct {
	client *CLIClient
	id     string
	fresh  bool
}

func (s *cliSession) ID() string { return s.id }

// Run starts one turn and streams its events. The returned channel is
// closed when the subprocess exits; killing the subprocess on ctx
// cancellation is handled by exec.CommandContext, so an abandoned turn
// never leaks the process.
func (s *cliSession) Run(ctx context.Context, prompt string) (<-chan Event, error) {
	args := []string{"-p", prompt, "--verbose", "--output-format", "stream-json"}
	if s.fresh {
		args = append(args, "--session-id", s.id)
	} else {
		args = append(args, "--resume", s.id)
	}
	if s.client.Model != "" {
		args = append(args, "--model", s.client.Model)
	}

	cmd := exec.CommandContext(ctx, s.client.Command, args...)
	cmd.Stdin = nil
	var stderr strings.Builder
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", s.client.Command, err)
	}
	// Subsequent turns continue the same conversation.
	s.fresh = false

	events := make(chan Event)
	go func() {
		defer close(events)

		completed := false
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			if ev, ok := parseStreamLine(scanner.Bytes()); ok {
				if ev.Kind == KindDone || ev.Kind == KindError {
					completed = true
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}

		err := cmd.Wait()
		if err != nil && !completed {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = err.Error()
			}
			select {
			case events <- Event{Kind: KindError, Err: msg}:
			case <-ctx.Done():
			}
		}
	}()

	return events, nil
}

// streamLine mirrors the stream-json envelope the CLI prints per line. Only
// the assistant and result event types matter; everything else is skipped.
type streamLine struct {
	Type    string `json:"type"`
	IsError bool   `json:"is_error"`
	Result  string `json:"result"`
	Message struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
	Usage struct {
		InputTokens          int `json:"input_tokens"`
		CacheReadInputTokens int `json:"cache_read_input_tokens"`
		OutputTokens         int `json:"output_tokens"`
	} `json:"usage"`
}

func parseStreamLine(line []byte) (Event, bool) {
	var sl streamLine
	if err := json.Unmarshal(line, &sl); err != nil {
		return Event{}, false
	}
	switch sl.Type {
	case "assistant":
		var b strings.Builder
		for _, c := range sl.Message.Content {
			if c.Type == "text" {
				b.WriteString(c.Text)
			}
		}
		if b.Len() == 0 {
			return Event{}, false
		}
		return Event{Kind: KindMessage, Text: b.String()}, true
	case "result":
		if sl.IsError {
			msg := sl.Result
			if msg == "" {
				msg = "turn failed"
			}
			return Event{Kind: KindError, Err: msg}, true
		}
		return Event{Kind: KindDone, Usage: &Usage{
			InputTokens:       sl.Usage.InputTokens,
			CachedInputTokens: sl.Usage.CacheReadInputTokens,
			OutputTokens:      sl.Usage.OutputTokens,
		}}, true
	default:
		return Event{}, false
	}
}
