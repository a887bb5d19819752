// Package llm adapts hosted model providers behind a single streaming
// interface. Each provider translates one turn of conversation history plus
// tool definitions into its native wire format and surfaces the model's
// incremental output as a flat event stream.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Role values for conversation messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ContentPart is one fragment of a message. Type selects which fields are
// meaningful: "text" uses Text, "tool_call" uses ToolCallID/ToolName/ArgsJSON,
// "tool_result" uses ToolCallID plus Text or JSON, "file" uses FileURL.
type ContentPart struct {
	Type       string
	Text       string
	FileURL    string
	MimeType   string
	ToolCallID string
	ToolName   string
	ArgsJSON   string
	JSON       json.RawMessage
}

// Message is one turn of conversation history in provider-neutral form.
type Message struct {
	Role    string
	Content []ContentPart
}

// ToolDef describes one invocable tool to the model.
type ToolDef struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ToolCall is a completed tool invocation request from the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// Stream event types emitted during a turn.
const (
	EventTextDelta     = "text-delta"
	EventToolCallStart = "tool-call-start"
	EventToolCallDelta = "tool-call-delta"
	EventToolCallEnd   = "tool-call-end"
	EventFinish        = "finish"
)

// PartialToolCall carries the in-flight state of one tool call while its
// arguments stream in. Arguments is nil until enough JSON has arrived to
// parse.
type PartialToolCall struct {
	ID            string
	Name          string
	ArgumentsJSON string
	Arguments     map[string]any
}

// StreamEvent is one incremental output from a streaming turn.
type StreamEvent struct {
	Type     string
	Text     string
	ToolCall *PartialToolCall
	Finish   string
}

// Usage reports token accounting for one turn.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// TurnRequest is one model invocation: the full history so far plus the
// tool set the model may call.
type TurnRequest struct {
	Model           string
	Messages        []Message
	Tools           []ToolDef
	MaxOutputTokens int64
	Temperature     *float64
	JSONObject      bool
}

// TurnResult is the settled outcome of one turn after the stream completes.
type TurnResult struct {
	Text         string
	ToolCalls    []ToolCall
	FinishReason string
	Usage        Usage
}

// Provider streams one conversational turn against a hosted model. onEvent
// is invoked inline from the stream read loop and must not block; a nil
// onEvent discards incremental output.
type Provider interface {
	StreamTurn(ctx context.Context, req TurnRequest, onEvent func(StreamEvent)) (TurnResult, error)
}

// Provider kinds accepted by New.
const (
	KindOpenAI    = "openai"
	KindAnthropic = "anthropic"
)

// Options configures provider construction.
type Options struct {
	Kind    string
	APIKey  string
	BaseURL string
}

// New constructs the provider named by opts.Kind.
func New(opts Options) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case KindOpenAI:
		return newOpenAIProvider(opts.APIKey, opts.BaseURL), nil
	case KindAnthropic:
		return newAnthropicProvider(opts.APIKey, opts.BaseURL), nil
	}
	return nil, fmt.Errorf("unknown llm provider kind %q", opts.Kind)
}

func emitEvent(onEvent func(StreamEvent), event StreamEvent) {
	if onEvent != nil {
		onEvent(event)
	}
}

func cloneArgs(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func joinText(msg Message) string {
	var b strings.Builder
	for _, part := range msg.Content {
		if part.Type != "text" {
			continue
		}
		txt := strings.TrimSpace(part.Text)
		if txt == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(txt)
	}
	return b.String()
}
