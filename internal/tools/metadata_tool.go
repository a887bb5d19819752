package tools

import (
	"context"

	"artisan/internal/media"
	"artisan/internal/registry"
)

// ExtractMetadata probes a media URL and returns its technical properties
// as JSON. The only tool whose output is data rather than re-hosted files,
// so it skips the extract/upload pipeline entirely.
type ExtractMetadata struct {
	gen *media.Generator
}

func NewExtractMetadata(gen *media.Generator) *ExtractMetadata {
	return &ExtractMetadata{gen: gen}
}

func (t *ExtractMetadata) Spec() Spec {
	return Spec{
		Name: "extract-metadata",
		Description: `Extract comprehensive metadata from media files (images, videos, audio). Analyzes dimensions, duration, bitrate, codec, format.

WHEN TO USE:
- Understanding file properties before processing
- Validating media types and quality settings
- Checking durations/dimensions for workflow planning

EFFICIENCY TIPS:
- Fast operation, use when needed for workflow validation
- Returns detailed technical specifications as JSON
- For videos: set extractFrames: true to get start/end thumbnails`,
		InputSchema: schemaObject(
			[]string{"mediaUrl", "extractFrames"},
			map[string]any{
				"mediaUrl":      schemaString("The URL of the media file (image, video, or audio) to extract metadata from."),
				"extractFrames": schemaBool("Whether to extract frame thumbnails from video files. Set to false for images and audio."),
			},
		),
	}
}

func (t *ExtractMetadata) Execute(ctx context.Context, execCtx ExecContext, input map[string]any) (Output, error) {
	const name = "extract-metadata"

	mediaURL, err := reqString(name, input, "mediaUrl")
	if err != nil {
		return Output{}, err
	}
	extractFrames, err := reqBool(name, input, "extractFrames")
	if err != nil {
		return Output{}, err
	}

	payload, err := t.gen.Invoke(ctx, registry.CapFfmpegMetadata, map[string]any{
		"media_url":      mediaURL,
		"extract_frames": extractFrames,
	})
	if err != nil {
		return Output{}, classifyError(name, err)
	}
	return Output{Type: OutputTypeData, Payload: payload, Format: "json"}, nil
}
