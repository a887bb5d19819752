package tools

import (
	"context"

	"artisan/internal/media"
	"artisan/internal/registry"
)

// TextToVideo generates silent video clips from a text description.
type TextToVideo struct {
	gen *media.Generator
}

func NewTextToVideo(gen *media.Generator) *TextToVideo {
	return &TextToVideo{gen: gen}
}

func (t *TextToVideo) Spec() Spec {
	return Spec{
		Name: "text-to-video",
		Description: `Generate videos from text descriptions. Creates dynamic video content with motion and visual storytelling.

WHEN TO USE:
- Creating video content from scratch with described motion and action
- Dynamic scenes requiring camera movement and subject animation

WHEN NOT TO USE:
- Need audio: this generates SILENT video only. Generate video + audio IN PARALLEL, then use merge-audio-video
- Animating existing images: use image-to-video (faster, better results)

CRITICAL: NO AUDIO. This tool produces silent video. Always generate audio separately and merge.

EFFICIENCY TIPS:
- Most expensive operation, parallelize with other operations when possible
- For videos with sound: PARALLEL generate video + audio, then merge
- Describe motion explicitly: camera movement, subject actions, pacing, transitions
- Use negative prompts to avoid unwanted artifacts`,
		InputSchema: schemaObject(
			[]string{"prompt", "duration", "aspectRatio", "cfgScale"},
			map[string]any{
				"prompt":         schemaString("The text describing the video to generate."),
				"duration":       schemaStringEnum("Duration of the video in seconds (5 or 10).", "5", "10"),
				"aspectRatio":    schemaStringEnum("The aspect ratio of the generated video.", "1:1", "9:16", "16:9"),
				"negativePrompt": schemaString("What to avoid in the video generation."),
				"cfgScale":       schemaNumber("How closely to follow the prompt (0-1). Higher values stick closer to prompt.", 0, 1),
			},
		),
	}
}

func (t *TextToVideo) Execute(ctx context.Context, execCtx ExecContext, input map[string]any) (Output, error) {
	const name = "text-to-video"
	if err := requireContext(name, execCtx); err != nil {
		return Output{}, err
	}

	prompt, err := reqString(name, input, "prompt")
	if err != nil {
		return Output{}, err
	}
	duration, err := reqEnum(name, input, "duration", "5", "10")
	if err != nil {
		return Output{}, err
	}
	aspectRatio, err := reqEnum(name, input, "aspectRatio", "1:1", "9:16", "16:9")
	if err != nil {
		return Output{}, err
	}
	negativePrompt, _, err := optString(name, input, "negativePrompt")
	if err != nil {
		return Output{}, err
	}
	cfgScale, err := reqNumber(name, input, "cfgScale", 0, 1)
	if err != nil {
		return Output{}, err
	}

	files, err := t.gen.Generate(ctx, registry.CapKlingTextToVideo, map[string]any{
		"prompt":          prompt,
		"duration":        duration,
		"aspect_ratio":    aspectRatio,
		"negative_prompt": negativePrompt,
		"cfg_scale":       cfgScale,
	}, media.Context(execCtx))
	if err != nil {
		return Output{}, classifyError(name, err)
	}
	return mediaOutput(files)
}

// ImageToVideo animates a source image into a silent video clip.
type ImageToVideo struct {
	gen *media.Generator
}

func NewImageToVideo(gen *media.Generator) *ImageToVideo {
	return &ImageToVideo{gen: gen}
}

func (t *ImageToVideo) Spec() Spec {
	return Spec{
		Name: "image-to-video",
		Description: `Animate static images with motion and effects. Brings photos to life with described movements.

WHEN TO USE:
- Bringing static images to life with motion
- Creating transitions and dynamic storytelling from static images

WHEN NOT TO USE:
- Need audio: this generates SILENT video only. Use merge-audio-video afterward

CRITICAL: NO AUDIO. Generates silent video only. Generate video + audio IN PARALLEL, then merge.

EFFICIENCY TIPS:
- Expensive operation, parallelize with other operations when possible
- Describe desired motion clearly: zoom, pan, rotation, character movement
- Specify what should remain static vs what should move
- Lower cfgScale (0.3-0.5) allows more creative interpretation`,
		InputSchema: schemaObject(
			[]string{"prompt", "imageUrl", "duration", "cfgScale"},
			map[string]any{
				"prompt":         schemaString("The description of how to animate or transform the image."),
				"imageUrl":       schemaString("The URL of the source image to animate."),
				"duration":       schemaStringEnum("Duration of the video in seconds (5 or 10).", "5", "10"),
				"negativePrompt": schemaString("What to avoid in the video generation."),
				"cfgScale":       schemaNumber("How closely to follow the prompt (0-1). Higher values stick closer to prompt.", 0, 1),
			},
		),
	}
}

func (t *ImageToVideo) Execute(ctx context.Context, execCtx ExecContext, input map[string]any) (Output, error) {
	const name = "image-to-video"
	if err := requireContext(name, execCtx); err != nil {
		return Output{}, err
	}

	prompt, err := reqString(name, input, "prompt")
	if err != nil {
		return Output{}, err
	}
	imageURL, err := reqString(name, input, "imageUrl")
	if err != nil {
		return Output{}, err
	}
	duration, err := reqEnum(name, input, "duration", "5", "10")
	if err != nil {
		return Output{}, err
	}
	negativePrompt, _, err := optString(name, input, "negativePrompt")
	if err != nil {
		return Output{}, err
	}
	cfgScale, err := reqNumber(name, input, "cfgScale", 0, 1)
	if err != nil {
		return Output{}, err
	}

	files, err := t.gen.Generate(ctx, registry.CapKlingImageToVideo, map[string]any{
		"prompt":          prompt,
		"image_url":       imageURL,
		"duration":        duration,
		"negative_prompt": negativePrompt,
		"cfg_scale":       cfgScale,
	}, media.Context(execCtx))
	if err != nil {
		return Output{}, classifyError(name, err)
	}
	return mediaOutput(files)
}

// Lipsync replaces the audio of a talking-head video and re-syncs the mouth
// movements to the new track.
type Lipsync struct {
	gen *media.Generator
}

func NewLipsync(gen *media.Generator) *Lipsync {
	return &Lipsync{gen: gen}
}

func (t *Lipsync) Spec() Spec {
	return Spec{
		Name: "lipsync",
		Description: `Replace audio in a video of someone talking and automatically adjust their mouth movements to match the new audio. Outputs complete video with synced audio.

WHEN TO USE:
- Dubbing existing talking videos with different audio/language
- Creating multiple versions of the same talking video with different narration
- Replacing placeholder audio in talking head videos

WHEN NOT TO USE:
- Video doesn't show someone talking/speaking (requires visible mouth movements)
- Need to generate video from scratch: use text-to-video or image-to-video first

EFFICIENCY CRITICAL - ASSET REUSE:
- For conversations: Generate ONE base talking video, reuse it with MULTIPLE different audio files
- Example: 8-line conversation = 1 base talking video + 8 lip-syncs with different audio (NOT 8 video generations!)
- Use loop parameter to repeat video if new audio is longer than original video
- Works best with clear frontal view of person talking
- Output includes both synced video AND audio, no need to merge separately`,
		InputSchema: schemaObject(
			[]string{"videoUrl", "audioUrl", "loop"},
			map[string]any{
				"videoUrl": schemaString("The URL of a video showing someone talking/speaking (with visible mouth movements)."),
				"audioUrl": schemaString("The URL of the new audio that the person should lip-sync to."),
				"loop":     schemaBool("Whether to loop the video if the new audio is longer than the original video duration."),
			},
		),
	}
}

func (t *Lipsync) Execute(ctx context.Context, execCtx ExecContext, input map[string]any) (Output, error) {
	const name = "lipsync"
	if err := requireContext(name, execCtx); err != nil {
		return Output{}, err
	}

	videoURL, err := reqString(name, input, "videoUrl")
	if err != nil {
		return Output{}, err
	}
	audioURL, err := reqString(name, input, "audioUrl")
	if err != nil {
		return Output{}, err
	}
	loop, err := reqBool(name, input, "loop")
	if err != nil {
		return Output{}, err
	}

	files, err := t.gen.Generate(ctx, registry.CapLipsync, map[string]any{
		"video_url": videoURL,
		"audio_url": audioURL,
		"loop":      loop,
	}, media.Context(execCtx))
	if err != nil {
		return Output{}, classifyError(name, err)
	}
	return mediaOutput(files)
}

// MergeAudioVideo combines one audio track with one video track.
type MergeAudioVideo struct {
	gen *media.Generator
}

func NewMergeAudioVideo(gen *media.Generator) *MergeAudioVideo {
	return &MergeAudioVideo{gen: gen}
}

func (t *MergeAudioVideo) Spec() Spec {
	return Spec{
		Name: "merge-audio-video",
		Description: `Merge a single audio file with a single video file. Combines separate video and audio tracks with timing control.

WHEN TO USE:
- Adding audio to silent videos (from text-to-video or image-to-video)
- Replacing video soundtracks
- Synchronizing narration or music with video content

EFFICIENCY TIPS:
- Fast, cheap operation, use liberally
- Always generate video + audio IN PARALLEL, then merge (never sequential)
- If lengths differ, output matches video duration (audio loops or cuts)
- Use startOffset for precise audio synchronization`,
		InputSchema: schemaObject(
			[]string{"videoUrl", "audioUrl", "startOffset"},
			map[string]any{
				"videoUrl":    schemaString("The URL of the video file to use as the video track."),
				"audioUrl":    schemaString("The URL of the audio file to use as the audio track."),
				"startOffset": schemaNumberMin("Offset in seconds for when the audio should start relative to the video.", 0),
			},
		),
	}
}

func (t *MergeAudioVideo) Execute(ctx context.Context, execCtx ExecContext, input map[string]any) (Output, error) {
	const name = "merge-audio-video"
	if err := requireContext(name, execCtx); err != nil {
		return Output{}, err
	}

	videoURL, err := reqString(name, input, "videoUrl")
	if err != nil {
		return Output{}, err
	}
	audioURL, err := reqString(name, input, "audioUrl")
	if err != nil {
		return Output{}, err
	}
	startOffset, ok := numberValue(input["startOffset"])
	if !ok {
		return Output{}, &ValidationError{Tool: name, Field: "startOffset", Message: "a number is required"}
	}
	if startOffset < 0 {
		return Output{}, &ValidationError{Tool: name, Field: "startOffset", Message: "must be zero or greater"}
	}

	files, err := t.gen.Generate(ctx, registry.CapFfmpegMergeAV, map[string]any{
		"video_url":    videoURL,
		"audio_url":    audioURL,
		"start_offset": startOffset,
	}, media.Context(execCtx))
	if err != nil {
		return Output{}, classifyError(name, err)
	}
	return mediaOutput(files)
}

// MergeVideos concatenates two or more videos in the order given.
type MergeVideos struct {
	gen *media.Generator
}

func NewMergeVideos(gen *media.Generator) *MergeVideos {
	return &MergeVideos{gen: gen}
}

var mergeVideoResolutionPresets = []string{"square_hd", "square", "portrait_4_3", "portrait_9_16", "landscape_4_3", "landscape_16_9"}

func (t *MergeVideos) Spec() Spec {
	return Spec{
		Name: "merge-videos",
		Description: `Concatenate multiple video files into a single output. Combines separate video files with consistent formatting.

WHEN TO USE:
- Creating video compilations, combining clips, merging segmented content, montages
- Need to concatenate 2 or more videos in a specific sequence

CRITICAL - ORDER PRESERVATION:
- Array order = output video order (first URL in array = first video in output)
- For conversations: Ensure videoUrls array is in DIALOGUE SEQUENCE, not completion order
- Example conversation order: [personA_line1, personB_line1, personA_line2, personB_line2, ...]
- For stories: [intro, middle, end] = story sequence in output
- NEVER pass videos in completion order. ALWAYS pass in intended sequence order

EFFICIENCY TIPS:
- Fast, cheap operation, use liberally
- Videos concatenated in exact array order
- All input videos scaled/cropped to match output resolution
- Specify targetFps for a consistent frame rate across all clips`,
		InputSchema: schemaObject(
			[]string{"videoUrls"},
			map[string]any{
				"videoUrls": schemaStringArray("Array of video URLs to merge together. Minimum 2 videos required.", 2),
				"targetFps": schemaNumber("Target FPS for the output video (1-60). If not provided, uses the lowest FPS from input videos.", 1, 60),
				"resolution": map[string]any{
					"description": "Resolution preset or custom dimensions. Width and height must be between 512 and 2048.",
					"oneOf": []any{
						schemaStringEnum("Resolution preset.", mergeVideoResolutionPresets...),
						schemaObject([]string{"width", "height"}, map[string]any{
							"width":  schemaInteger("Output width in pixels.", 512, 2048),
							"height": schemaInteger("Output height in pixels.", 512, 2048),
						}),
					},
				},
			},
		),
	}
}

func (t *MergeVideos) Execute(ctx context.Context, execCtx ExecContext, input map[string]any) (Output, error) {
	const name = "merge-videos"
	if err := requireContext(name, execCtx); err != nil {
		return Output{}, err
	}

	videoURLs, err := reqStringList(name, input, "videoUrls", 2)
	if err != nil {
		return Output{}, err
	}

	modelInput := map[string]any{"video_urls": videoURLs}
	if targetFps, present, err := optNumber(name, input, "targetFps", 1, 60); err != nil {
		return Output{}, err
	} else if present {
		modelInput["target_fps"] = targetFps
	}
	if resolution, present, err := validateMergeResolution(name, input); err != nil {
		return Output{}, err
	} else if present {
		modelInput["resolution"] = resolution
	}

	files, err := t.gen.Generate(ctx, registry.CapFfmpegMergeVideos, modelInput, media.Context(execCtx))
	if err != nil {
		return Output{}, classifyError(name, err)
	}
	return mediaOutput(files)
}

// validateMergeResolution accepts either a named preset string or a custom
// {width, height} object with both dimensions in [512, 2048].
func validateMergeResolution(toolName string, input map[string]any) (any, bool, error) {
	raw, present := input["resolution"]
	if !present || raw == nil {
		return nil, false, nil
	}

	switch typed := raw.(type) {
	case string:
		for _, preset := range mergeVideoResolutionPresets {
			if typed == preset {
				return typed, true, nil
			}
		}
		return nil, false, &ValidationError{Tool: toolName, Field: "resolution", Message: "unknown resolution preset"}
	case map[string]any:
		width, err := reqInt(toolName, typed, "width", 512, 2048)
		if err != nil {
			return nil, false, err
		}
		height, err := reqInt(toolName, typed, "height", 512, 2048)
		if err != nil {
			return nil, false, err
		}
		return map[string]any{"width": width, "height": height}, true, nil
	}
	return nil, false, &ValidationError{Tool: toolName, Field: "resolution", Message: "must be a preset name or a {width, height} object"}
}

// ExtractFrame captures a single still image from a video.
type ExtractFrame struct {
	gen *media.Generator
}

func NewExtractFrame(gen *media.Generator) *ExtractFrame {
	return &ExtractFrame{gen: gen}
}

func (t *ExtractFrame) Spec() Spec {
	return Spec{
		Name: "extract-frame",
		Description: `Extract a single frame from a video as an image. Captures specific moments as high-quality still images.

WHEN TO USE:
- Creating video thumbnails, extracting key frames for analysis
- Generating preview images or capturing specific moments
- Feeding extracted frames to image-to-image or image-to-video tools

EFFICIENCY TIPS:
- Fast, cheap operation, use as needed
- Choose frameType: 'first' (default), 'middle', or 'last'
- Useful for chaining workflows: extract frame, modify with image-to-image, animate with image-to-video`,
		InputSchema: schemaObject(
			[]string{"videoUrl"},
			map[string]any{
				"videoUrl":  schemaString("The URL of the video file to extract a frame from."),
				"frameType": schemaStringEnum("Type of frame to extract: first, middle, or last frame of the video. Default: first", "first", "middle", "last"),
			},
		),
	}
}

func (t *ExtractFrame) Execute(ctx context.Context, execCtx ExecContext, input map[string]any) (Output, error) {
	const name = "extract-frame"
	if err := requireContext(name, execCtx); err != nil {
		return Output{}, err
	}

	videoURL, err := reqString(name, input, "videoUrl")
	if err != nil {
		return Output{}, err
	}

	modelInput := map[string]any{"video_url": videoURL}
	if frameType, present, err := optEnum(name, input, "frameType", "first", "middle", "last"); err != nil {
		return Output{}, err
	} else if present {
		modelInput["frame_type"] = frameType
	}

	files, err := t.gen.Generate(ctx, registry.CapFfmpegExtractFrame, modelInput, media.Context(execCtx))
	if err != nil {
		return Output{}, classifyError(name, err)
	}
	return mediaOutput(files)
}

// UpscaleVideo increases video resolution, optionally interpolating frames
// to a target FPS.
type UpscaleVideo struct {
	gen *media.Generator
}

func NewUpscaleVideo(gen *media.Generator) *UpscaleVideo {
	return &UpscaleVideo{gen: gen}
}

func (t *UpscaleVideo) Spec() Spec {
	return Spec{
		Name: "upscale-video",
		Description: `Upscale and enhance video quality using professional AI. Increases resolution while preserving details. Can also interpolate frames for smoother motion.

WHEN TO USE:
- Improve quality of generated or existing videos
- Prepare videos for large displays
- Enhance low-resolution videos
- Smooth out choppy motion with frame interpolation

EFFICIENCY TIPS:
- Use after generating videos that need higher resolution
- Enable targetFps for frame interpolation to create smoother motion (e.g., convert 24fps to 60fps)
- Higher upscaleFactor means larger file sizes and longer processing (can take several minutes)
- Frame interpolation adds processing time but creates much smoother video`,
		InputSchema: schemaObject(
			[]string{"videoUrl", "upscaleFactor"},
			map[string]any{
				"videoUrl":      schemaString("The URL of the video to upscale."),
				"upscaleFactor": schemaNumber("Factor to upscale the video by (e.g. 2.0 doubles width and height).", 1, 4),
				"targetFps":     schemaNumber("Target FPS for frame interpolation. If set, frame interpolation will be enabled to smooth motion.", 1, 120),
			},
		),
	}
}

func (t *UpscaleVideo) Execute(ctx context.Context, execCtx ExecContext, input map[string]any) (Output, error) {
	const name = "upscale-video"
	if err := requireContext(name, execCtx); err != nil {
		return Output{}, err
	}

	videoURL, err := reqString(name, input, "videoUrl")
	if err != nil {
		return Output{}, err
	}
	upscaleFactor, err := reqNumber(name, input, "upscaleFactor", 1, 4)
	if err != nil {
		return Output{}, err
	}

	modelInput := map[string]any{
		"video_url":      videoURL,
		"upscale_factor": upscaleFactor,
	}
	if targetFps, present, err := optNumber(name, input, "targetFps", 1, 120); err != nil {
		return Output{}, err
	} else if present {
		modelInput["target_fps"] = targetFps
	}

	files, err := t.gen.Generate(ctx, registry.CapTopazUpscaleVideo, modelInput, media.Context(execCtx))
	if err != nil {
		return Output{}, classifyError(name, err)
	}
	return mediaOutput(files)
}
