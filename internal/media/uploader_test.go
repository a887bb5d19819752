package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"

	"artisan/internal/model"
)

type fakeObjectWriter struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeObjectWriter() *fakeObjectWriter {
	return &fakeObjectWriter{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjectWriter) PutObject(_ context.Context, _, objectName string, reader io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectName] = data
	f.types[objectName] = opts.ContentType
	return minio.UploadInfo{Key: objectName}, nil
}

func TestUploaderRehostsFromOrigin(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png-bytes"))
	}))
	defer origin.Close()

	writer := newFakeObjectWriter()
	u := NewUploader(writer, "media", "https://cdn.example.com")

	files, err := u.Upload(context.Background(), []FileDescriptor{
		{URL: origin.URL + "/a", ContentType: "image/png"},
		{URL: origin.URL + "/b"},
	}, "user-1", model.MediaKindImage)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}

	for _, file := range files {
		if file.Kind != model.MediaKindImage {
			t.Errorf("kind = %q", file.Kind)
		}
		if file.ContentType != "image/png" {
			t.Errorf("content type = %q", file.ContentType)
		}
		if !strings.HasPrefix(file.URL, "https://cdn.example.com/images/user-1/") {
			t.Errorf("url = %q", file.URL)
		}
		if !strings.HasSuffix(file.URL, ".png") {
			t.Errorf("url = %q, want .png suffix", file.URL)
		}
	}

	writer.mu.Lock()
	defer writer.mu.Unlock()
	if len(writer.objects) != 2 {
		t.Fatalf("stored %d objects, want 2", len(writer.objects))
	}
	for name, data := range writer.objects {
		if string(data) != "png-bytes" {
			t.Errorf("object %s body = %q", name, data)
		}
		if writer.types[name] != "image/png" {
			t.Errorf("object %s content type = %q", name, writer.types[name])
		}
	}
}

func TestUploaderFailsWholeBatchOnOriginError(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/bad") {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer origin.Close()

	u := NewUploader(newFakeObjectWriter(), "media", "https://cdn.example.com")
	files, err := u.Upload(context.Background(), []FileDescriptor{
		{URL: origin.URL + "/good"},
		{URL: origin.URL + "/bad"},
	}, "user-1", model.MediaKindVideo)

	var failed *UploadFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected UploadFailedError, got %v", err)
	}
	if failed.Kind != model.MediaKindVideo {
		t.Errorf("failure kind = %q", failed.Kind)
	}
	if files != nil {
		t.Fatalf("expected no files on failure, got %d", len(files))
	}
}

func TestUploaderReportsRootCauseNotCancellation(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/slow") {
			// Holds the first fetch open until the failing sibling cancels it.
			<-r.Context().Done()
			return
		}
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))
	defer origin.Close()

	u := NewUploader(newFakeObjectWriter(), "media", "https://cdn.example.com")
	_, err := u.Upload(context.Background(), []FileDescriptor{
		{URL: origin.URL + "/slow"},
		{URL: origin.URL + "/bad"},
	}, "user-1", model.MediaKindImage)

	var failed *UploadFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected UploadFailedError, got %v", err)
	}
	if errors.Is(err, context.Canceled) {
		t.Fatalf("root cause masked by cancellation: %v", err)
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("error = %v, want the origin status surfaced", err)
	}
}

func TestUploaderEmptyBatch(t *testing.T) {
	u := NewUploader(newFakeObjectWriter(), "media", "https://cdn.example.com")
	files, err := u.Upload(context.Background(), nil, "user-1", model.MediaKindImage)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if files != nil {
		t.Fatalf("expected nil files for empty batch")
	}
}
