package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	aoption "github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicDefaultMaxTokens = 4096

type anthropicProvider struct {
	client anthropic.Client
}

func newAnthropicProvider(apiKey, baseURL string) *anthropicProvider {
	opts := []aoption.RequestOption{aoption.WithAPIKey(strings.TrimSpace(apiKey))}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, aoption.WithBaseURL(strings.TrimSpace(baseURL)))
	}
	return &anthropicProvider{client: anthropic.NewClient(opts...)}
}

func (p *anthropicProvider) StreamTurn(ctx context.Context, req TurnRequest, onEvent func(StreamEvent)) (TurnResult, error) {
	if p == nil {
		return TurnResult{}, errors.New("nil provider")
	}
	if strings.TrimSpace(req.Model) == "" {
		return TurnResult{}, errors.New("missing model")
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(strings.TrimSpace(req.Model)),
		MaxTokens: anthropicDefaultMaxTokens,
		Messages:  buildAnthropicMessages(req.Messages),
		Tools:     buildAnthropicTools(req.Tools),
	}
	if req.MaxOutputTokens > 0 {
		params.MaxTokens = req.MaxOutputTokens
	}
	if req.Temperature != nil {
		params.Temperature = anthropic.Float(*req.Temperature)
	}
	if system := anthropicSystemPrompt(req); system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	stream := p.client.Messages.NewStreaming(ctx, params)
	msg := anthropic.Message{}
	var textBuf strings.Builder

	type partialCall struct {
		Index   int64
		ID      string
		Name    string
		Started bool
		Ended   bool
		ArgsRaw strings.Builder
		Args    map[string]any
	}
	partials := map[int64]*partialCall{} // content_block index -> partial

	emitStart := func(pc *partialCall) {
		if pc == nil || pc.Started {
			return
		}
		pc.Started = true
		emitEvent(onEvent, StreamEvent{Type: EventToolCallStart, ToolCall: &PartialToolCall{ID: pc.ID, Name: pc.Name}})
	}
	emitDelta := func(pc *partialCall) {
		if pc == nil || pc.Name == "" || pc.ID == "" {
			return
		}
		emitStart(pc)
		raw := strings.TrimSpace(pc.ArgsRaw.String())
		var args map[string]any
		if raw != "" {
			_ = json.Unmarshal([]byte(raw), &args) // deltas may be incomplete JSON
		}
		emitEvent(onEvent, StreamEvent{Type: EventToolCallDelta, ToolCall: &PartialToolCall{ID: pc.ID, Name: pc.Name, ArgumentsJSON: raw, Arguments: cloneArgs(args)}})
	}
	emitEnd := func(pc *partialCall, rawArgs string) {
		if pc == nil || pc.Ended {
			return
		}
		pc.Ended = true
		args := map[string]any{}
		if rawArgs = strings.TrimSpace(rawArgs); rawArgs != "" {
			_ = json.Unmarshal([]byte(rawArgs), &args)
		}
		pc.Args = args
		emitStart(pc)
		emitEvent(onEvent, StreamEvent{Type: EventToolCallEnd, ToolCall: &PartialToolCall{ID: pc.ID, Name: pc.Name, Arguments: cloneArgs(args)}})
	}

	for stream.Next() {
		event := stream.Current()
		if err := msg.Accumulate(event); err != nil {
			return TurnResult{}, err
		}
		switch variant := event.AsAny().(type) {
		case anthropic.ContentBlockStartEvent:
			if strings.TrimSpace(variant.ContentBlock.Type) != "tool_use" {
				continue
			}
			callID := strings.TrimSpace(variant.ContentBlock.ID)
			if callID == "" {
				callID = fmt.Sprintf("anthropic_call_%d", len(partials)+1)
			}
			pc := &partialCall{Index: variant.Index, ID: callID, Name: strings.TrimSpace(variant.ContentBlock.Name)}
			partials[variant.Index] = pc
			emitStart(pc)

		case anthropic.ContentBlockDeltaEvent:
			switch delta := variant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if delta.Text == "" {
					continue
				}
				textBuf.WriteString(delta.Text)
				emitEvent(onEvent, StreamEvent{Type: EventTextDelta, Text: delta.Text})
			case anthropic.InputJSONDelta:
				pc := partials[variant.Index]
				if pc == nil || delta.PartialJSON == "" {
					continue
				}
				pc.ArgsRaw.WriteString(delta.PartialJSON)
				emitDelta(pc)
			}

		case anthropic.ContentBlockStopEvent:
			pc := partials[variant.Index]
			if pc == nil || pc.Ended {
				continue
			}
			raw := strings.TrimSpace(pc.ArgsRaw.String())
			if raw == "" {
				idx := int(variant.Index)
				if idx >= 0 && idx < len(msg.Content) {
					if tu, ok := msg.Content[idx].AsAny().(anthropic.ToolUseBlock); ok && len(tu.Input) > 0 {
						raw = strings.TrimSpace(string(tu.Input))
					}
				}
			}
			emitEnd(pc, raw)
		}
	}
	if err := stream.Err(); err != nil {
		return TurnResult{}, err
	}

	result := TurnResult{
		FinishReason: mapAnthropicStopReason(msg.StopReason),
		Text:         strings.TrimSpace(textBuf.String()),
		Usage: Usage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}

	seen := map[string]struct{}{}
	indices := make([]int64, 0, len(partials))
	for idx, pc := range partials {
		if pc == nil || !pc.Ended {
			continue
		}
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })
	for _, idx := range indices {
		pc := partials[idx]
		id := strings.TrimSpace(pc.ID)
		if id == "" {
			continue
		}
		seen[id] = struct{}{}
		result.ToolCalls = append(result.ToolCalls, ToolCall{ID: id, Name: pc.Name, Args: cloneArgs(pc.Args)})
	}

	// Recover anything the event stream missed from the accumulated message.
	for _, block := range msg.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			if result.Text == "" {
				result.Text = strings.TrimSpace(variant.Text)
			}
		case anthropic.ToolUseBlock:
			callID := strings.TrimSpace(variant.ID)
			if callID == "" {
				callID = fmt.Sprintf("anthropic_call_%d", len(result.ToolCalls)+1)
			}
			if _, ok := seen[callID]; ok {
				continue
			}
			args := map[string]any{}
			if len(variant.Input) > 0 {
				_ = json.Unmarshal(variant.Input, &args)
			}
			call := ToolCall{ID: callID, Name: strings.TrimSpace(variant.Name), Args: args}
			result.ToolCalls = append(result.ToolCalls, call)
			emitEvent(onEvent, StreamEvent{Type: EventToolCallStart, ToolCall: &PartialToolCall{ID: call.ID, Name: call.Name}})
			emitEvent(onEvent, StreamEvent{Type: EventToolCallEnd, ToolCall: &PartialToolCall{ID: call.ID, Name: call.Name, Arguments: cloneArgs(call.Args)}})
		}
	}
	if len(result.ToolCalls) > 0 {
		result.FinishReason = "tool_calls"
	}
	emitEvent(onEvent, StreamEvent{Type: EventFinish, Finish: result.FinishReason})
	return result, nil
}

func buildAnthropicTools(defs []ToolDef) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			continue
		}
		required, _ := def.InputSchema["required"].([]string)
		param := anthropic.ToolParam{
			Name:        name,
			Description: anthropic.String(strings.TrimSpace(def.Description)),
			InputSchema: anthropic.ToolInputSchemaParam{Type: "object", Properties: def.InputSchema["properties"], Required: required},
		}
		out = append(out, anthropic.ToolUnionParam{OfTool: &param})
	}
	return out
}

func buildAnthropicMessages(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		role := strings.ToLower(strings.TrimSpace(msg.Role))
		if role == RoleSystem {
			continue
		}
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.Content))
		for _, part := range msg.Content {
			switch part.Type {
			case "tool_result":
				callID := strings.TrimSpace(part.ToolCallID)
				if callID == "" {
					continue
				}
				content := strings.TrimSpace(part.Text)
				if content == "" && len(part.JSON) > 0 {
					content = string(part.JSON)
				}
				blocks = append(blocks, anthropic.NewToolResultBlock(callID, content, false))
			case "tool_call":
				callID := strings.TrimSpace(part.ToolCallID)
				name := strings.TrimSpace(part.ToolName)
				if callID == "" || name == "" {
					continue
				}
				var args any = map[string]any{}
				if raw := strings.TrimSpace(part.ArgsJSON); raw != "" {
					var parsed map[string]any
					if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
						args = parsed
					}
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(callID, args, name))
			case "file":
				uri := strings.TrimSpace(part.FileURL)
				if uri == "" || !strings.HasPrefix(part.MimeType, "image/") {
					continue
				}
				blocks = append(blocks, anthropic.NewImageBlock(anthropic.URLImageSourceParam{URL: uri}))
			default:
				if txt := strings.TrimSpace(part.Text); txt != "" {
					blocks = append(blocks, anthropic.NewTextBlock(txt))
				}
			}
		}
		if len(blocks) == 0 {
			continue
		}
		switch role {
		case RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		default:
			// tool results travel as user messages on this API
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}
	return out
}

// jsonObjectInstruction backs TurnRequest.JSONObject on this API, which has
// no response-format parameter.
const jsonObjectInstruction = "Respond with a single valid JSON object and no other text."

func anthropicSystemPrompt(req TurnRequest) string {
	system := collectSystemPrompt(req.Messages)
	if !req.JSONObject {
		return system
	}
	if system == "" {
		return jsonObjectInstruction
	}
	return system + "\n\n" + jsonObjectInstruction
}

func collectSystemPrompt(messages []Message) string {
	var parts []string
	for _, msg := range messages {
		if strings.ToLower(strings.TrimSpace(msg.Role)) != RoleSystem {
			continue
		}
		if txt := joinText(msg); txt != "" {
			parts = append(parts, txt)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

func mapAnthropicStopReason(reason anthropic.StopReason) string {
	switch strings.TrimSpace(strings.ToLower(string(reason))) {
	case "tool_use":
		return "tool_calls"
	case "end_turn", "stop_sequence":
		return "stop"
	case "max_tokens":
		return "length"
	case "refusal":
		return "content_filter"
	default:
		return "unknown"
	}
}
