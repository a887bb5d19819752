package service

import (
	"context"
	"encoding/json"
	"testing"

	"artisan/internal/model"
)

func TestMessageUpsertIsIdempotentByID(t *testing.T) {
	database := setupTestDB(t)
	seedUser(t, database, "u1")
	projects := NewProjectService(database, "sqlite")
	project := seedProject(t, projects, "u1")

	svc := NewMessageService(database, "sqlite")
	ctx := context.Background()

	msg := &model.Message{
		ID:        "m1",
		ProjectID: project.ID,
		Role:      model.MessageRoleUser,
		Parts:     []model.MessagePart{{Type: model.PartTypeText, Text: "first draft"}},
	}
	if err := svc.Upsert(ctx, msg); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	msg.Parts = []model.MessagePart{{Type: model.PartTypeText, Text: "revised"}}
	msg.Metadata = json.RawMessage(`{"edited":true}`)
	if err := svc.Upsert(ctx, msg); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	list, err := svc.ListByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d messages, want 1 after re-upsert", len(list))
	}
	if list[0].Parts[0].Text != "revised" {
		t.Errorf("parts not replaced: %+v", list[0].Parts)
	}
	var meta struct {
		Edited bool `json:"edited"`
	}
	if err := json.Unmarshal(list[0].Metadata, &meta); err != nil || !meta.Edited {
		t.Errorf("metadata not replaced: %s", list[0].Metadata)
	}
}

func TestMessageUpsertRejectsInvalidRole(t *testing.T) {
	database := setupTestDB(t)
	svc := NewMessageService(database, "sqlite")

	err := svc.Upsert(context.Background(), &model.Message{ID: "m1", ProjectID: "p1", Role: "bot"})
	if err == nil {
		t.Fatal("expected error for invalid role")
	}
}

func TestMessagePartsRoundTripToolCalls(t *testing.T) {
	database := setupTestDB(t)
	seedUser(t, database, "u1")
	projects := NewProjectService(database, "sqlite")
	project := seedProject(t, projects, "u1")

	svc := NewMessageService(database, "sqlite")
	ctx := context.Background()

	parts := []model.MessagePart{
		{Type: model.PartTypeText, Text: "Generating now."},
		{Type: model.PartTypeToolCall, ToolCallID: "c1", ToolName: "text-to-image", Input: json.RawMessage(`{"prompt":"a fox"}`)},
		{Type: model.PartTypeToolResult, ToolCallID: "c1", ToolName: "text-to-image", Output: json.RawMessage(`{"type":"media"}`)},
	}
	if err := svc.Upsert(ctx, &model.Message{
		ID: "m1", ProjectID: project.ID, Role: model.MessageRoleAssistant, Parts: parts,
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	list, err := svc.ListByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := list[0].Parts
	if len(got) != 3 {
		t.Fatalf("got %d parts, want 3", len(got))
	}
	if got[1].ToolCallID != "c1" || got[1].ToolName != "text-to-image" {
		t.Errorf("tool call part = %+v", got[1])
	}
	if string(got[2].Output) != `{"type":"media"}` {
		t.Errorf("tool result output = %s", got[2].Output)
	}
}

func TestMessageDeletedWithProject(t *testing.T) {
	database := setupTestDB(t)
	seedUser(t, database, "u1")
	projects := NewProjectService(database, "sqlite")
	project := seedProject(t, projects, "u1")
	svc := NewMessageService(database, "sqlite")
	ctx := context.Background()

	if err := svc.Upsert(ctx, &model.Message{
		ID: "m1", ProjectID: project.ID, Role: model.MessageRoleUser,
		Parts: []model.MessagePart{{Type: model.PartTypeText, Text: "hi"}},
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := projects.Delete(ctx, project.ID, "u1"); err != nil {
		t.Fatalf("delete project: %v", err)
	}

	list, err := svc.ListByProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("messages not cascaded: %d remain", len(list))
	}
}
