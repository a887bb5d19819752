package router

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"artisan/internal/config"
	"artisan/internal/db"
	"artisan/internal/llm"
	"artisan/internal/model"
	"artisan/internal/service"
	"artisan/internal/stream"
	"artisan/internal/tools"
)

type fixedProvider struct{}

func (fixedProvider) StreamTurn(_ context.Context, req llm.TurnRequest, onEvent func(llm.StreamEvent)) (llm.TurnResult, error) {
	if req.JSONObject {
		return llm.TurnResult{Text: `{"title":"Test Project"}`, FinishReason: "stop"}, nil
	}
	if onEvent != nil {
		onEvent(llm.StreamEvent{Type: llm.EventTextDelta, Text: "All done."})
	}
	return llm.TurnResult{Text: "All done.", FinishReason: "stop"}, nil
}

type testEnv struct {
	handler  http.Handler
	database *sql.DB
	token    string
	projects *service.ProjectService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	database.SetMaxOpenConns(1)
	t.Cleanup(func() { database.Close() })
	if err := db.Migrate(database, "sqlite"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	now := time.Now().UTC()
	if _, err := database.Exec(`
		INSERT INTO users (id, name, email, email_verified, created_at, updated_at)
		VALUES ('u1', 'Test User', 'u1@example.com', 1, ?, ?)`, now, now); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	sessions := service.NewSessionService(database, "sqlite")
	session, err := sessions.Create(context.Background(), "u1", nil, nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := &config.Config{DBDriver: "sqlite", LLMModel: "test-model", MaxSteps: 5}
	reg := tools.NewRegistry()
	handler := New(cfg, database, fixedProvider{}, reg, stream.NewBroker(client))

	return &testEnv{
		handler:  handler,
		database: database,
		token:    session.Token,
		projects: service.NewProjectService(database, "sqlite"),
	}
}

func (env *testEnv) request(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if authed {
		req.Header.Set("Authorization", "Bearer "+env.token)
	}
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthIsPublic(t *testing.T) {
	env := setupEnv(t)
	rec := env.request(http.MethodGet, "/health", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAPIRequiresAuth(t *testing.T) {
	env := setupEnv(t)
	for _, path := range []string{"/api/projects", "/api/generate/p1/stream"} {
		rec := env.request(http.MethodGet, path, "", false)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", path, rec.Code)
		}
	}
	rec := env.request(http.MethodPost, "/api/generate", `{}`, false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("generate: status = %d, want 401", rec.Code)
	}
}

func TestGenerateRejectsIncompleteRequests(t *testing.T) {
	env := setupEnv(t)

	rec := env.request(http.MethodPost, "/api/generate", `{"messages":[{"id":"m1","role":"user","parts":[{"type":"text","text":"hi"}]}]}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing id: status = %d", rec.Code)
	}

	rec = env.request(http.MethodPost, "/api/generate", `{"id":"p1"}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing messages: status = %d", rec.Code)
	}

	rec = env.request(http.MethodPost, "/api/generate", `{"id":"p1","messages":[{"id":"m1","role":"user","parts":[{"type":"text","text":"   "}]}]}`, true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank user message: status = %d", rec.Code)
	}
}

func TestGenerateCreatesProjectAndStreamsRun(t *testing.T) {
	env := setupEnv(t)

	body := `{"id":"proj-1","messages":[{"id":"m1","role":"user","parts":[{"type":"text","text":"make something"}]}]}`
	rec := env.request(http.MethodPost, "/api/generate", body, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "data: [DONE]") {
		t.Errorf("stream body missing terminator: %s", rec.Body.String())
	}

	project, err := env.projects.Get(context.Background(), "proj-1")
	if err != nil {
		t.Fatalf("project not created: %v", err)
	}
	if project.UserID != "u1" {
		t.Errorf("project owner = %q", project.UserID)
	}
	// The SSE response ends only after the run terminates.
	if project.Status != model.ProjectStatusReady {
		t.Errorf("status = %q", project.Status)
	}
	if project.Title != "Test Project" {
		t.Errorf("title = %q", project.Title)
	}
}

func TestGenerateRejectsForeignProject(t *testing.T) {
	env := setupEnv(t)
	now := time.Now().UTC()
	if _, err := env.database.Exec(`
		INSERT INTO users (id, name, email, email_verified, created_at, updated_at)
		VALUES ('other', 'Other', 'other@example.com', 1, ?, ?)`, now, now); err != nil {
		t.Fatalf("seed other user: %v", err)
	}
	if _, err := env.projects.CreateWithID(context.Background(), "theirs", "other"); err != nil {
		t.Fatalf("seed project: %v", err)
	}

	body := `{"id":"theirs","messages":[{"id":"m1","role":"user","parts":[{"type":"text","text":"hi"}]}]}`
	rec := env.request(http.MethodPost, "/api/generate", body, true)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestResumeWithoutActiveStream(t *testing.T) {
	env := setupEnv(t)
	if _, err := env.projects.CreateWithID(context.Background(), "idle", "u1"); err != nil {
		t.Fatalf("seed project: %v", err)
	}

	rec := env.request(http.MethodGet, "/api/generate/idle/stream", "", true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Stream not available") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestResumeUnknownProject(t *testing.T) {
	env := setupEnv(t)
	rec := env.request(http.MethodGet, "/api/generate/missing/stream", "", true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestResumeReplaysFinishedRun(t *testing.T) {
	env := setupEnv(t)

	body := `{"id":"proj-2","messages":[{"id":"m1","role":"user","parts":[{"type":"text","text":"go"}]}]}`
	if rec := env.request(http.MethodPost, "/api/generate", body, true); rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d", rec.Code)
	}

	rec := env.request(http.MethodGet, "/api/generate/proj-2/stream", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("resume status = %d body = %s", rec.Code, rec.Body.String())
	}
	replay := rec.Body.String()
	if !strings.Contains(replay, `"type":"finish"`) {
		t.Errorf("replay missing finish event: %s", replay)
	}
	if !strings.Contains(replay, "data: [DONE]") {
		t.Errorf("replay missing terminator: %s", replay)
	}
}

func TestProjectEndpoints(t *testing.T) {
	env := setupEnv(t)

	body := `{"id":"proj-3","messages":[{"id":"m1","role":"user","parts":[{"type":"text","text":"go"}]}]}`
	if rec := env.request(http.MethodPost, "/api/generate", body, true); rec.Code != http.StatusOK {
		t.Fatalf("generate status = %d", rec.Code)
	}

	rec := env.request(http.MethodGet, "/api/projects", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed struct {
		Projects []model.Project `json:"projects"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Projects) != 1 || listed.Projects[0].ID != "proj-3" {
		t.Fatalf("listed = %+v", listed.Projects)
	}

	rec = env.request(http.MethodGet, "/api/projects/proj-3", "", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var got struct {
		Project  model.Project   `json:"project"`
		Messages []model.Message `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode get: %v", err)
	}
	if len(got.Messages) < 2 {
		t.Errorf("messages = %d, want user + assistant", len(got.Messages))
	}

	rec = env.request(http.MethodDelete, "/api/projects/proj-3", "", true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = env.request(http.MethodGet, "/api/projects/proj-3", "", true)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
}
