package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	openai "github.com/openai/openai-go"
	ooption "github.com/openai/openai-go/option"
	oresponses "github.com/openai/openai-go/responses"
	oshared "github.com/openai/openai-go/shared"
)

const openAIDefaultMaxOutputTokens = 4096

type openAIProvider struct {
	client openai.Client
}

func newOpenAIProvider(apiKey, baseURL string) *openAIProvider {
	opts := []ooption.RequestOption{ooption.WithAPIKey(strings.TrimSpace(apiKey))}
	if strings.TrimSpace(baseURL) != "" {
		opts = append(opts, ooption.WithBaseURL(strings.TrimSpace(baseURL)))
	}
	return &openAIProvider{client: openai.NewClient(opts...)}
}

func (p *openAIProvider) StreamTurn(ctx context.Context, req TurnRequest, onEvent func(StreamEvent)) (TurnResult, error) {
	if p == nil {
		return TurnResult{}, errors.New("nil provider")
	}
	if strings.TrimSpace(req.Model) == "" {
		return TurnResult{}, errors.New("missing model")
	}

	params := oresponses.ResponseNewParams{
		Model:           oshared.ResponsesModel(strings.TrimSpace(req.Model)),
		MaxOutputTokens: openai.Int(openAIDefaultMaxOutputTokens),
	}
	if req.MaxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(req.MaxOutputTokens)
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.JSONObject {
		obj := oshared.NewResponseFormatJSONObjectParam()
		params.Text = oresponses.ResponseTextConfigParam{
			Format: oresponses.ResponseFormatTextConfigUnionParam{OfJSONObject: &obj},
		}
	}

	inputItems, instructions := buildOpenAIInput(req.Messages)
	if len(inputItems) == 0 {
		inputItems = append(inputItems, oresponses.ResponseInputItemParamOfMessage("Continue.", oresponses.EasyInputMessageRoleUser))
	}
	params.Input = oresponses.ResponseNewParamsInputUnion{OfInputItemList: inputItems}
	if strings.TrimSpace(instructions) != "" {
		params.Instructions = openai.String(strings.TrimSpace(instructions))
	}
	if tools := buildOpenAITools(req.Tools); len(tools) > 0 {
		params.Tools = tools
	}

	stream := p.client.Responses.NewStreaming(ctx, params)
	var textBuf strings.Builder
	var completed oresponses.Response
	gotCompleted := false

	type partialCall struct {
		CallID      string
		Name        string
		OutputIndex int64
		Started     bool
		Ended       bool
		ArgsRaw     strings.Builder
		Args        map[string]any
	}
	partials := map[string]*partialCall{} // item_id -> partial

	emitStart := func(pc *partialCall) {
		if pc == nil || pc.Started {
			return
		}
		pc.Started = true
		emitEvent(onEvent, StreamEvent{Type: EventToolCallStart, ToolCall: &PartialToolCall{ID: pc.CallID, Name: pc.Name}})
	}
	emitDelta := func(pc *partialCall) {
		if pc == nil || pc.Name == "" || pc.CallID == "" {
			return
		}
		emitStart(pc)
		raw := strings.TrimSpace(pc.ArgsRaw.String())
		var args map[string]any
		if raw != "" {
			_ = json.Unmarshal([]byte(raw), &args) // deltas may be incomplete JSON
		}
		emitEvent(onEvent, StreamEvent{Type: EventToolCallDelta, ToolCall: &PartialToolCall{ID: pc.CallID, Name: pc.Name, ArgumentsJSON: raw, Arguments: cloneArgs(args)}})
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
		emitEvent(onEvent, StreamEvent{Type: EventToolCallEnd, ToolCall: &PartialToolCall{ID: pc.CallID, Name: pc.Name, Arguments: cloneArgs(args)}})
	}

	getPartial := func(itemID string) *partialCall {
		itemID = strings.TrimSpace(itemID)
		if itemID == "" {
			return nil
		}
		if pc := partials[itemID]; pc != nil {
			return pc
		}
		pc := &partialCall{CallID: itemID, OutputIndex: -1}
		partials[itemID] = pc
		return pc
	}

	for stream.Next() {
		event := stream.Current()
		switch strings.TrimSpace(event.Type) {
		case "response.output_text.delta":
			delta := event.Delta.OfString
			if delta == "" {
				continue
			}
			textBuf.WriteString(delta)
			emitEvent(onEvent, StreamEvent{Type: EventTextDelta, Text: delta})

		case "response.output_item.added":
			item := event.Item
			if strings.TrimSpace(item.Type) != "function_call" {
				continue
			}
			pc := getPartial(item.ID)
			if pc == nil {
				continue
			}
			if pc.OutputIndex < 0 {
				pc.OutputIndex = event.OutputIndex
			}
			if cid := strings.TrimSpace(item.CallID); cid != "" {
				pc.CallID = cid
			}
			if name := strings.TrimSpace(item.Name); name != "" {
				pc.Name = name
			}
			emitStart(pc)
			if raw := strings.TrimSpace(item.Arguments); raw != "" {
				pc.ArgsRaw.WriteString(raw)
				emitDelta(pc)
			}

		case "response.function_call_arguments.delta":
			pc := getPartial(event.ItemID)
			if pc == nil {
				continue
			}
			delta := event.Delta.OfString
			if delta == "" {
				continue
			}
			pc.ArgsRaw.WriteString(delta)
			emitDelta(pc)

		case "response.function_call_arguments.done":
			pc := getPartial(event.ItemID)
			if pc == nil {
				continue
			}
			if raw := strings.TrimSpace(event.Arguments); raw != "" {
				pc.ArgsRaw.Reset()
				pc.ArgsRaw.WriteString(raw)
			}
			emitEnd(pc, pc.ArgsRaw.String())

		case "response.output_item.done":
			item := event.Item
			if strings.TrimSpace(item.Type) != "function_call" {
				continue
			}
			pc := getPartial(item.ID)
			if pc == nil {
				continue
			}
			if cid := strings.TrimSpace(item.CallID); cid != "" {
				pc.CallID = cid
			}
			if name := strings.TrimSpace(item.Name); name != "" {
				pc.Name = name
			}
			if raw := strings.TrimSpace(item.Arguments); raw != "" && strings.TrimSpace(pc.ArgsRaw.String()) == "" {
				pc.ArgsRaw.WriteString(raw)
			}
			emitEnd(pc, pc.ArgsRaw.String())

		case "response.completed":
			completed = event.Response
			gotCompleted = true
		}
	}
	if err := stream.Err(); err != nil {
		return TurnResult{}, err
	}
	if !gotCompleted {
		return TurnResult{}, errors.New("missing response.completed event")
	}

	result := TurnResult{
		FinishReason: mapOpenAIStatus(completed.Status),
		Text:         strings.TrimSpace(textBuf.String()),
		Usage: Usage{
			InputTokens:  completed.Usage.InputTokens,
			OutputTokens: completed.Usage.OutputTokens,
		},
	}

	type orderedCall struct {
		OutputIndex int64
		Call        ToolCall
	}
	seen := map[string]struct{}{}
	ordered := make([]orderedCall, 0, len(partials))
	for _, pc := range partials {
		if pc == nil || !pc.Ended {
			continue
		}
		id := strings.TrimSpace(pc.CallID)
		if id == "" {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, orderedCall{
			OutputIndex: pc.OutputIndex,
			Call:        ToolCall{ID: id, Name: pc.Name, Args: cloneArgs(pc.Args)},
		})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		oi, oj := ordered[i].OutputIndex, ordered[j].OutputIndex
		if oi == oj {
			return ordered[i].Call.ID < ordered[j].Call.ID
		}
		return oi < oj
	})
	for _, it := range ordered {
		result.ToolCalls = append(result.ToolCalls, it.Call)
	}

	// Recover tool calls the event stream missed from the completed response.
	for _, item := range completed.Output {
		if strings.TrimSpace(item.Type) != "function_call" {
			continue
		}
		callID := strings.TrimSpace(item.CallID)
		if callID == "" {
			callID = strings.TrimSpace(item.ID)
		}
		if callID == "" {
			callID = fmt.Sprintf("openai_call_%d", len(result.ToolCalls)+1)
		}
		if _, ok := seen[callID]; ok {
			continue
		}
		args := map[string]any{}
		if raw := strings.TrimSpace(item.Arguments); raw != "" {
			_ = json.Unmarshal([]byte(raw), &args)
		}
		call := ToolCall{ID: callID, Name: strings.TrimSpace(item.Name), Args: args}
		result.ToolCalls = append(result.ToolCalls, call)
		emitEvent(onEvent, StreamEvent{Type: EventToolCallStart, ToolCall: &PartialToolCall{ID: call.ID, Name: call.Name}})
		emitEvent(onEvent, StreamEvent{Type: EventToolCallEnd, ToolCall: &PartialToolCall{ID: call.ID, Name: call.Name, Arguments: cloneArgs(call.Args)}})
	}
	if len(result.ToolCalls) > 0 {
		result.FinishReason = "tool_calls"
	}
	emitEvent(onEvent, StreamEvent{Type: EventFinish, Finish: result.FinishReason})
	return result, nil
}

func buildOpenAITools(defs []ToolDef) []oresponses.ToolUnionParam {
	out := make([]oresponses.ToolUnionParam, 0, len(defs))
	for _, def := range defs {
		name := strings.TrimSpace(def.Name)
		if name == "" {
			continue
		}
		out = append(out, oresponses.ToolParamOfFunction(name, def.InputSchema, false))
	}
	return out
}

func buildOpenAIInput(messages []Message) (oresponses.ResponseInputParam, string) {
	items := make(oresponses.ResponseInputParam, 0, len(messages)+2)
	instructions := ""
	for _, msg := range messages {
		switch strings.ToLower(strings.TrimSpace(msg.Role)) {
		case RoleSystem:
			if txt := joinText(msg); txt != "" {
				if instructions == "" {
					instructions = txt
				} else {
					instructions += "\n\n" + txt
				}
			}
		case RoleTool:
			for _, part := range msg.Content {
				if part.Type != "tool_result" {
					continue
				}
				callID := strings.TrimSpace(part.ToolCallID)
				if callID == "" {
					continue
				}
				output := strings.TrimSpace(part.Text)
				if output == "" && len(part.JSON) > 0 {
					output = string(part.JSON)
				}
				items = append(items, oresponses.ResponseInputItemParamOfFunctionCallOutput(callID, output))
			}
		case RoleAssistant:
			for _, part := range msg.Content {
				switch part.Type {
				case "tool_call":
					callID := strings.TrimSpace(part.ToolCallID)
					name := strings.TrimSpace(part.ToolName)
					if callID == "" || name == "" {
						continue
					}
					argsRaw := strings.TrimSpace(part.ArgsJSON)
					if argsRaw == "" || !json.Valid([]byte(argsRaw)) {
						argsRaw = "{}"
					}
					items = append(items, oresponses.ResponseInputItemParamOfFunctionCall(argsRaw, callID, name))
				case "text":
					if txt := strings.TrimSpace(part.Text); txt != "" {
						items = append(items, oresponses.ResponseInputItemParamOfMessage(txt, oresponses.EasyInputMessageRoleAssistant))
					}
				}
			}
		default:
			if txt := joinText(msg); txt != "" {
				items = append(items, oresponses.ResponseInputItemParamOfMessage(txt, oresponses.EasyInputMessageRoleUser))
			}
		}
	}
	return items, instructions
}

func mapOpenAIStatus(status oresponses.ResponseStatus) string {
	switch strings.TrimSpace(strings.ToLower(string(status))) {
	case "completed":
		return "stop"
	case "incomplete":
		return "length"
	case "failed", "cancelled":
		return "error"
	default:
		return "unknown"
	}
}
