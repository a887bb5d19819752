package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"artisan/internal/registry"
)

type stubInvoker struct {
	lastModelID string
	lastInput   map[string]any
	result      map[string]any
	err         error
}

func (s *stubInvoker) Subscribe(_ context.Context, modelID string, input map[string]any) (map[string]any, error) {
	s.lastModelID = modelID
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestGeneratorStampsOwnershipOnUploadedFiles(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("bytes"))
	}))
	defer origin.Close()

	invoker := &stubInvoker{result: map[string]any{
		"images": []any{map[string]any{"url": origin.URL + "/gen.png", "content_type": "image/png"}},
	}}
	gen := NewGenerator(invoker, NewUploader(newFakeObjectWriter(), "media", "https://cdn.example.com"))

	files, err := gen.Generate(context.Background(), registry.CapImagen4,
		map[string]any{"prompt": "a fox"},
		Context{UserID: "user-1", ProjectID: "proj-1", ToolCallID: "call-1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if invoker.lastModelID != "fal-ai/imagen4/preview" {
		t.Errorf("model id = %q", invoker.lastModelID)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}
	if files[0].UserID != "user-1" || files[0].ProjectID != "proj-1" {
		t.Errorf("ownership not stamped: %+v", files[0])
	}
}

func TestGeneratorInvokeSkipsUpload(t *testing.T) {
	invoker := &stubInvoker{result: map[string]any{"duration": 12.5}}
	gen := NewGenerator(invoker, nil)

	result, err := gen.Invoke(context.Background(), registry.CapFfmpegMetadata, map[string]any{"media_url": "https://x/v.mp4"})
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}
	if result["duration"] != 12.5 {
		t.Errorf("result = %+v", result)
	}
	if invoker.lastModelID != "fal-ai/ffmpeg-api/metadata" {
		t.Errorf("model id = %q", invoker.lastModelID)
	}
}

func TestGeneratorUnknownCapability(t *testing.T) {
	gen := NewGenerator(&stubInvoker{}, nil)
	if _, err := gen.Generate(context.Background(), registry.CapabilityKey("nope"), nil, Context{}); err == nil {
		t.Fatal("expected error for unknown capability")
	}
}
