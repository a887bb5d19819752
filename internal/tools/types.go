// Package tools exposes the generation capabilities as named,
// schema-validated tools an LLM agent can invoke.
package tools

import (
	"context"

	"artisan/internal/model"
)

// Spec describes a tool to the registry and, through the description and
// input schema, to the LLM.
type Spec struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// ExecContext carries the identity of the run invoking a tool. Threaded
// explicitly from the run loop into every invocation; never persisted.
type ExecContext struct {
	UserID     string
	ProjectID  string
	ToolCallID string
}

// Output is the uniform result shape crossing the tool boundary, tagged by
// Type: "media" carries uploaded files, "data" carries a structured payload.
type Output struct {
	Type    string            `json:"type"`
	Files   []model.MediaFile `json:"files,omitempty"`
	Payload any               `json:"payload,omitempty"`
	Format  string            `json:"format,omitempty"`
}

const (
	OutputTypeMedia = "media"
	OutputTypeData  = "data"
)

func mediaOutput(files []model.MediaFile) (Output, error) {
	return Output{Type: OutputTypeMedia, Files: files}, nil
}

// Tool is one agent-invocable operation.
type Tool interface {
	Spec() Spec
	Execute(ctx context.Context, execCtx ExecContext, input map[string]any) (Output, error)
}
