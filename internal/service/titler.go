package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"artisan/internal/llm"
	"artisan/internal/model"
	"artisan/internal/prompts"
)

// Titler derives a short project title from the first user message. Title
// generation is best-effort: callers swallow failures and keep the default
// title.
type Titler struct {
	provider llm.Provider
	model    string
}

func NewTitler(provider llm.Provider, modelName string) *Titler {
	return &Titler{provider: provider, model: modelName}
}

func (t *Titler) Generate(ctx context.Context, userMessage model.Message) (string, error) {
	text := collectText(userMessage)
	if text == "" {
		return "", fmt.Errorf("user message has no text to title")
	}

	req := llm.TurnRequest{
		Model:      t.model,
		JSONObject: true,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: []llm.ContentPart{{Type: "text", Text: prompts.ProjectTitle}}},
			{Role: llm.RoleUser, Content: []llm.ContentPart{{Type: "text", Text: text}}},
		},
	}

	result, err := t.provider.StreamTurn(ctx, req, nil)
	if err != nil {
		return "", fmt.Errorf("generate title: %w", err)
	}

	var parsed struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(result.Text)), &parsed); err != nil {
		return "", fmt.Errorf("parse title response: %w", err)
	}
	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		return "", fmt.Errorf("empty title in response")
	}
	return title, nil
}

func collectText(msg model.Message) string {
	var b strings.Builder
	for _, part := range msg.Parts {
		if part.Type != model.PartTypeText {
			continue
		}
		txt := strings.TrimSpace(part.Text)
		if txt == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(txt)
	}
	return b.String()
}
