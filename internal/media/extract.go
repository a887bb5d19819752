// Package media turns remote model responses into durable, persisted media
// files: extract file references from the response envelope, fetch the bytes,
// and re-host them in object storage.
package media

import (
	"fmt"

	"artisan/internal/model"
)

// FileDescriptor is a transient reference to a generated file still hosted
// at its origin URL. It becomes a model.MediaFile once uploaded.
type FileDescriptor struct {
	URL         string
	ContentType string
}

// UnextractableResponseError indicates a remote response envelope that
// matches none of the known shapes. Fatal for the tool call.
type UnextractableResponseError struct {
	Kind model.MediaKind
}

func (e *UnextractableResponseError) Error() string {
	return fmt.Sprintf("unable to extract files from %s response", e.Kind)
}

// ExtractFiles normalizes a remote model response into file descriptors.
// Remote models return structurally different envelopes for conceptually
// identical outputs; the shapes are tried in a fixed priority order and the
// first match wins. kind only selects default content types, never branches.
func ExtractFiles(data map[string]any, kind model.MediaKind) ([]FileDescriptor, error) {
	// Multi-image array: {"images": [{"url", "content_type"}, ...]}. The key
	// being an array claims the shape even when it maps to zero files.
	if images, ok := data["images"].([]any); ok {
		out := make([]FileDescriptor, 0, len(images))
		for _, entry := range images {
			file, ok := fileFromAny(entry)
			if !ok {
				continue
			}
			out = append(out, file)
		}
		return out, nil
	}

	// Single video object: {"video": {"url", "content_type"}}
	if file, ok := fileFromAny(data["video"]); ok {
		if file.ContentType == "" {
			file.ContentType = "video/mp4"
		}
		return []FileDescriptor{file}, nil
	}

	// Single audio object under either key name.
	for _, key := range []string{"audio", "audio_file"} {
		if file, ok := fileFromAny(data[key]); ok {
			if file.ContentType == "" {
				file.ContentType = "audio/mpeg"
			}
			return []FileDescriptor{file}, nil
		}
	}

	// Generic single output: {"output": {"url": ...}}. These envelopes never
	// carry a content type; the observed producers all emit mp4.
	if file, ok := fileFromAny(data["output"]); ok {
		file.ContentType = "video/mp4"
		return []FileDescriptor{file}, nil
	}

	// Single image object: {"image": {"url", "content_type"}}
	if file, ok := fileFromAny(data["image"]); ok {
		if file.ContentType == "" {
			file.ContentType = "image/png"
		}
		return []FileDescriptor{file}, nil
	}

	return nil, &UnextractableResponseError{Kind: kind}
}

func fileFromAny(value any) (FileDescriptor, bool) {
	entry, ok := value.(map[string]any)
	if !ok {
		return FileDescriptor{}, false
	}
	url, _ := entry["url"].(string)
	if url == "" {
		return FileDescriptor{}, false
	}
	contentType, _ := entry["content_type"].(string)
	return FileDescriptor{URL: url, ContentType: contentType}, true
}
