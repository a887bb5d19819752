package media

import (
	"errors"
	"testing"

	"artisan/internal/model"
)

func TestExtractFilesImagesArray(t *testing.T) {
	data := map[string]any{
		"images": []any{
			map[string]any{"url": "https://origin/a.png", "content_type": "image/png"},
			map[string]any{"url": "https://origin/b.jpg", "content_type": "image/jpeg"},
			map[string]any{"nope": true},
		},
	}
	files, err := ExtractFiles(data, model.MediaKindImage)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if files[0].URL != "https://origin/a.png" || files[1].ContentType != "image/jpeg" {
		t.Fatalf("unexpected descriptors: %+v", files)
	}
}

func TestExtractFilesVideoObjectDefaultsContentType(t *testing.T) {
	data := map[string]any{"video": map[string]any{"url": "https://origin/v"}}
	files, err := ExtractFiles(data, model.MediaKindVideo)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(files) != 1 || files[0].ContentType != "video/mp4" {
		t.Fatalf("unexpected descriptors: %+v", files)
	}
}

func TestExtractFilesAudioUnderEitherKey(t *testing.T) {
	for _, key := range []string{"audio", "audio_file"} {
		data := map[string]any{key: map[string]any{"url": "https://origin/a.mp3"}}
		files, err := ExtractFiles(data, model.MediaKindAudio)
		if err != nil {
			t.Fatalf("extract %s: %v", key, err)
		}
		if len(files) != 1 || files[0].ContentType != "audio/mpeg" {
			t.Fatalf("%s: unexpected descriptors: %+v", key, files)
		}
	}
}

func TestExtractFilesOutputAlwaysMp4(t *testing.T) {
	data := map[string]any{"output": map[string]any{"url": "https://origin/out", "content_type": "application/octet-stream"}}
	files, err := ExtractFiles(data, model.MediaKindVideo)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if files[0].ContentType != "video/mp4" {
		t.Fatalf("output content type = %q, want video/mp4", files[0].ContentType)
	}
}

func TestExtractFilesSingleImage(t *testing.T) {
	data := map[string]any{"image": map[string]any{"url": "https://origin/i", "content_type": "image/webp"}}
	files, err := ExtractFiles(data, model.MediaKindImage)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if files[0].ContentType != "image/webp" {
		t.Fatalf("unexpected descriptors: %+v", files)
	}
}

func TestExtractFilesImagesArrayTakesPriorityOverImage(t *testing.T) {
	data := map[string]any{
		"images": []any{map[string]any{"url": "https://origin/many.png"}},
		"image":  map[string]any{"url": "https://origin/one.png"},
	}
	files, err := ExtractFiles(data, model.MediaKindImage)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(files) != 1 || files[0].URL != "https://origin/many.png" {
		t.Fatalf("unexpected descriptors: %+v", files)
	}
}

func TestExtractFilesEmptyImagesArrayClaimsShape(t *testing.T) {
	for name, data := range map[string]map[string]any{
		"empty array":      {"images": []any{}, "image": map[string]any{"url": "https://origin/one.png"}},
		"entries sans url": {"images": []any{map[string]any{"content_type": "image/png"}}},
	} {
		files, err := ExtractFiles(data, model.MediaKindImage)
		if err != nil {
			t.Fatalf("%s: extract: %v", name, err)
		}
		if len(files) != 0 {
			t.Fatalf("%s: unexpected descriptors: %+v", name, files)
		}
	}
}

func TestExtractFilesUnknownShape(t *testing.T) {
	_, err := ExtractFiles(map[string]any{"weird": "envelope"}, model.MediaKindImage)
	var unextractable *UnextractableResponseError
	if !errors.As(err, &unextractable) {
		t.Fatalf("expected UnextractableResponseError, got %v", err)
	}
}

func TestExtensionForContentType(t *testing.T) {
	if got := ExtensionForContentType("image/jpeg", model.MediaKindImage); got != ".jpg" {
		t.Fatalf("jpeg ext = %q", got)
	}
	if got := ExtensionForContentType("", model.MediaKindAudio); got != ".mp3" {
		t.Fatalf("audio fallback ext = %q", got)
	}
	if got := ExtensionForContentType("application/x-thing", ""); got != ".bin" {
		t.Fatalf("generic fallback ext = %q", got)
	}
}
