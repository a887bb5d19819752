package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"artisan/internal/llm"
	"artisan/internal/middleware"
	"artisan/internal/model"
	"artisan/internal/prompts"
	"artisan/internal/stream"
	"artisan/internal/tools"
)

// GenericRunErrorText is the only error detail surfaced to clients when a run
// fails. Provider and tool internals stay in the server log.
const GenericRunErrorText = "An unexpected error occurred, please try again."

const defaultMaxSteps = 20

// Runner drives one agent run end to end: status transitions, the model turn
// loop, tool execution, media persistence and the event stream clients
// consume. Runs are detached from the originating request so a disconnected
// client can resume from the stream broker.
type Runner struct {
	projects *ProjectService
	messages *MessageService
	media    *MediaService
	provider llm.Provider
	tools    *tools.Registry
	broker   *stream.Broker
	titler   *Titler
	model    string
	maxSteps int
}

type RunnerConfig struct {
	Projects *ProjectService
	Messages *MessageService
	Media    *MediaService
	Provider llm.Provider
	Tools    *tools.Registry
	Broker   *stream.Broker
	Titler   *Titler
	Model    string
	MaxSteps int
}

func NewRunner(cfg RunnerConfig) *Runner {
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	return &Runner{
		projects: cfg.Projects,
		messages: cfg.Messages,
		media:    cfg.Media,
		provider: cfg.Provider,
		tools:    cfg.Tools,
		broker:   cfg.Broker,
		titler:   cfg.Titler,
		model:    cfg.Model,
		maxSteps: maxSteps,
	}
}

// runEvent is the wire shape of one streamed event. Type selects which of the
// remaining fields are set.
type runEvent struct {
	Type string `json:"type"`

	Delta string `json:"delta,omitempty"`

	ToolCallID string          `json:"toolCallId,omitempty"`
	ToolName   string          `json:"toolName,omitempty"`
	Input      json.RawMessage `json:"input,omitempty"`
	Output     json.RawMessage `json:"output,omitempty"`
	ErrorText  string          `json:"errorText,omitempty"`

	Data json.RawMessage `json:"data,omitempty"`
}

const (
	eventTextDelta       = "text-delta"
	eventToolCall        = "tool-call"
	eventToolResult      = "tool-result"
	eventProjectMetadata = "data-project-metadata"
	eventFinish          = "finish"
	eventError           = "error"
)

// Run executes the agent loop for a project. The caller has already persisted
// the incoming messages and allocated streamID; Run owns every state change
// from there, including marking the project ready or errored. Intended to be
// launched on its own goroutine with a context independent of the request.
func (r *Runner) Run(ctx context.Context, project *model.Project, streamID string) {
	if err := r.projects.MarkStreaming(ctx, project.ID, streamID); err != nil {
		// Claim refused or store failure. The project status belongs to
		// whichever run holds the claim, so only the stream is finalized.
		log.Printf("run claim trace=%s project=%s: %v", middleware.TraceIDFromCtx(ctx), project.ID, err)
		r.publish(ctx, streamID, runEvent{Type: eventError, ErrorText: GenericRunErrorText})
		if err := r.broker.Close(context.WithoutCancel(ctx), streamID); err != nil {
			log.Printf("run close stream project=%s stream=%s: %v", project.ID, streamID, err)
		}
		return
	}
	// The terminator is published no matter how the run ends so resumed
	// subscribers never hang on a finished stream.
	defer func() {
		if err := r.broker.Close(context.WithoutCancel(ctx), streamID); err != nil {
			log.Printf("run close stream project=%s stream=%s: %v", project.ID, streamID, err)
		}
	}()

	history, err := r.messages.ListByProject(ctx, project.ID)
	if err != nil {
		r.fail(ctx, project.ID, streamID, fmt.Errorf("load messages: %w", err))
		return
	}

	if project.Title == model.DefaultProjectTitle {
		r.generateTitle(ctx, project, streamID, history)
	}

	turns := buildHistory(history)
	assistantParts := make([]model.MessagePart, 0, 8)
	defs := toolDefs(r.tools)

	for step := 0; step < r.maxSteps; step++ {
		result, err := r.provider.StreamTurn(ctx, llm.TurnRequest{
			Model:    r.model,
			Messages: turns,
			Tools:    defs,
		}, func(event llm.StreamEvent) {
			if event.Type == llm.EventTextDelta && event.Text != "" {
				r.publish(ctx, streamID, runEvent{Type: eventTextDelta, Delta: event.Text})
			}
		})
		if err != nil {
			r.fail(ctx, project.ID, streamID, fmt.Errorf("model turn step=%d: %w", step, err))
			return
		}

		assistantContent := make([]llm.ContentPart, 0, 1+len(result.ToolCalls))
		if result.Text != "" {
			assistantParts = append(assistantParts, model.MessagePart{Type: model.PartTypeText, Text: result.Text})
			assistantContent = append(assistantContent, llm.ContentPart{Type: "text", Text: result.Text})
		}

		if len(result.ToolCalls) == 0 {
			break
		}

		toolResults := make([]llm.ContentPart, 0, len(result.ToolCalls))
		for _, call := range result.ToolCalls {
			argsJSON, merr := json.Marshal(call.Args)
			if merr != nil {
				argsJSON = []byte("{}")
			}
			assistantParts = append(assistantParts, model.MessagePart{
				Type:       model.PartTypeToolCall,
				ToolCallID: call.ID,
				ToolName:   call.Name,
				Input:      argsJSON,
			})
			assistantContent = append(assistantContent, llm.ContentPart{
				Type:       "tool_call",
				ToolCallID: call.ID,
				ToolName:   call.Name,
				ArgsJSON:   string(argsJSON),
			})
			r.publish(ctx, streamID, runEvent{
				Type:       eventToolCall,
				ToolCallID: call.ID,
				ToolName:   call.Name,
				Input:      argsJSON,
			})

			resultPart, feedback := r.executeTool(ctx, project, call)
			assistantParts = append(assistantParts, resultPart)
			toolResults = append(toolResults, feedback)
			r.publish(ctx, streamID, runEvent{
				Type:       eventToolResult,
				ToolCallID: call.ID,
				ToolName:   call.Name,
				Output:     resultPart.Output,
				ErrorText:  resultPart.ErrorText,
			})
		}

		turns = append(turns, llm.Message{Role: llm.RoleAssistant, Content: assistantContent})
		turns = append(turns, llm.Message{Role: llm.RoleTool, Content: toolResults})
	}

	if err := r.finish(ctx, project.ID, assistantParts); err != nil {
		r.fail(ctx, project.ID, streamID, fmt.Errorf("finish run: %w", err))
		return
	}
	r.publish(ctx, streamID, runEvent{Type: eventFinish})
}

// executeTool runs one tool call and returns the persisted message part plus
// the content part fed back to the model. Tool failures are not fatal to the
// run; the error text goes back to the model so it can adjust.
func (r *Runner) executeTool(ctx context.Context, project *model.Project, call llm.ToolCall) (model.MessagePart, llm.ContentPart) {
	part := model.MessagePart{
		Type:       model.PartTypeToolResult,
		ToolCallID: call.ID,
		ToolName:   call.Name,
	}

	tool, ok := r.tools.Get(call.Name)
	if !ok {
		part.ErrorText = fmt.Sprintf("unknown tool %q", call.Name)
		return part, toolFeedback(call.ID, part.ErrorText)
	}

	out, err := tool.Execute(ctx, tools.ExecContext{
		UserID:     project.UserID,
		ProjectID:  project.ID,
		ToolCallID: call.ID,
	}, call.Args)
	if err != nil {
		log.Printf("tool %s failed trace=%s project=%s call=%s: %v", call.Name, middleware.TraceIDFromCtx(ctx), project.ID, call.ID, err)
		part.ErrorText = err.Error()
		return part, toolFeedback(call.ID, part.ErrorText)
	}

	if out.Type == tools.OutputTypeMedia && len(out.Files) > 0 {
		// Files are persisted per step, not at run end, so a later failure
		// cannot lose media that already uploaded.
		if err := r.media.InsertBatch(ctx, out.Files); err != nil {
			log.Printf("persist media project=%s call=%s: %v", project.ID, call.ID, err)
		}
	}

	payload, err := json.Marshal(out)
	if err != nil {
		part.ErrorText = fmt.Sprintf("encode tool output: %v", err)
		return part, toolFeedback(call.ID, part.ErrorText)
	}
	part.Output = payload
	return part, llm.ContentPart{Type: "tool_result", ToolCallID: call.ID, JSON: payload}
}

func toolFeedback(callID, errorText string) llm.ContentPart {
	return llm.ContentPart{Type: "tool_result", ToolCallID: callID, Text: "Error: " + errorText}
}

// finish persists the assistant response and flips the project to ready.
func (r *Runner) finish(ctx context.Context, projectID string, parts []model.MessagePart) error {
	if len(parts) > 0 {
		msg := &model.Message{
			ID:        uuid.NewString(),
			ProjectID: projectID,
			Role:      model.MessageRoleAssistant,
			Parts:     parts,
		}
		if err := r.messages.Upsert(ctx, msg); err != nil {
			return fmt.Errorf("persist assistant message: %w", err)
		}
	}
	if err := r.projects.TouchLastMessage(ctx, projectID); err != nil {
		return fmt.Errorf("touch last message: %w", err)
	}
	if err := r.projects.MarkReady(ctx, projectID); err != nil {
		return fmt.Errorf("mark ready: %w", err)
	}
	return nil
}

// fail marks the project errored, which also clears its stream id so stale
// resume attempts get rejected, and emits the generic error event.
func (r *Runner) fail(ctx context.Context, projectID, streamID string, cause error) {
	log.Printf("run failed trace=%s project=%s stream=%s: %v", middleware.TraceIDFromCtx(ctx), projectID, streamID, cause)
	ctx = context.WithoutCancel(ctx)
	if err := r.projects.MarkError(ctx, projectID); err != nil {
		log.Printf("run mark error project=%s: %v", projectID, err)
	}
	r.publish(ctx, streamID, runEvent{Type: eventError, ErrorText: GenericRunErrorText})
}

// generateTitle replaces the placeholder title from the latest user message.
// Failures are logged and swallowed; a run never dies over a title.
func (r *Runner) generateTitle(ctx context.Context, project *model.Project, streamID string, history []model.Message) {
	if r.titler == nil {
		return
	}
	var last *model.Message
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == model.MessageRoleUser {
			last = &history[i]
			break
		}
	}
	if last == nil {
		return
	}

	tctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	title, err := r.titler.Generate(tctx, *last)
	if err != nil {
		log.Printf("title generation project=%s: %v", project.ID, err)
		return
	}
	if err := r.projects.SetTitle(ctx, project.ID, title); err != nil {
		log.Printf("set title project=%s: %v", project.ID, err)
		return
	}
	project.Title = title

	data, err := json.Marshal(map[string]string{"id": project.ID, "title": title})
	if err != nil {
		return
	}
	r.publish(ctx, streamID, runEvent{Type: eventProjectMetadata, Data: data})
}

func (r *Runner) publish(ctx context.Context, streamID string, event runEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("encode stream event type=%s: %v", event.Type, err)
		return
	}
	if err := r.broker.Publish(ctx, streamID, string(payload)); err != nil {
		log.Printf("publish stream event stream=%s type=%s: %v", streamID, event.Type, err)
	}
}

// buildHistory converts persisted messages into provider turns, prefixed with
// the agent system prompt.
func buildHistory(history []model.Message) []llm.Message {
	turns := make([]llm.Message, 0, len(history)+1)
	turns = append(turns, llm.Message{
		Role:    llm.RoleSystem,
		Content: []llm.ContentPart{{Type: "text", Text: prompts.System}},
	})

	for _, msg := range history {
		var content []llm.ContentPart
		var results []llm.ContentPart
		for _, part := range msg.Parts {
			switch part.Type {
			case model.PartTypeText:
				content = append(content, llm.ContentPart{Type: "text", Text: part.Text})
			case model.PartTypeFile:
				content = append(content, llm.ContentPart{Type: "file", FileURL: part.URL, MimeType: part.MediaType})
			case model.PartTypeToolCall:
				content = append(content, llm.ContentPart{
					Type:       "tool_call",
					ToolCallID: part.ToolCallID,
					ToolName:   part.ToolName,
					ArgsJSON:   string(part.Input),
				})
			case model.PartTypeToolResult:
				result := llm.ContentPart{Type: "tool_result", ToolCallID: part.ToolCallID}
				if part.ErrorText != "" {
					result.Text = "Error: " + part.ErrorText
				} else {
					result.JSON = part.Output
				}
				results = append(results, result)
			}
		}
		if len(content) > 0 {
			turns = append(turns, llm.Message{Role: string(msg.Role), Content: content})
		}
		// Tool results ride in their own tool-role turn so providers can map
		// them to the message shape their API expects.
		if len(results) > 0 {
			turns = append(turns, llm.Message{Role: llm.RoleTool, Content: results})
		}
	}
	return turns
}

func toolDefs(reg *tools.Registry) []llm.ToolDef {
	listed := reg.ListOrdered()
	defs := make([]llm.ToolDef, 0, len(listed))
	for _, tool := range listed {
		spec := tool.Spec()
		defs = append(defs, llm.ToolDef{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: spec.InputSchema,
		})
	}
	return defs
}
