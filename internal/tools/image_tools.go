package tools

import (
	"context"

	"artisan/internal/media"
	"artisan/internal/registry"
)

// TextToImage generates original images from a text prompt alone.
type TextToImage struct {
	gen *media.Generator
}

func NewTextToImage(gen *media.Generator) *TextToImage {
	return &TextToImage{gen: gen}
}

func (t *TextToImage) Spec() Spec {
	return Spec{
		Name: "text-to-image",
		Description: `Generate completely new images from text prompts only. Creates original imagery from scratch without visual references.

WHEN TO USE:
- Creating new concept art, illustrations, portraits, landscapes, logos
- No existing visual references available
- Need multiple variations (use numberOfImages parameter for batch generation)

WHEN NOT TO USE:
- Modifying existing images: use image-to-image instead
- Character appears in multiple scenes: generate ONCE, reuse URL across scenes
- Creating variations of an existing design: use image-to-image with the base URL

EFFICIENCY TIPS:
- For conversations: Generate 1 portrait per unique speaker, NOT per dialogue line
- For character consistency: Generate portrait once, reuse URL across all animations
- For variations: Use numberOfImages for batch generation in a single call
- Rich prompts get better results: include lighting, atmosphere, art style, camera angle`,
		InputSchema: schemaObject(
			[]string{"prompt", "aspectRatio", "resolution", "numberOfImages"},
			map[string]any{
				"prompt":         schemaString("The text prompt to generate images from."),
				"aspectRatio":    schemaStringEnum("The aspect ratio of the generated images.", "1:1", "4:3", "9:16", "16:9", "3:4"),
				"resolution":     schemaStringEnum("The resolution of the generated images.", "1K", "2K"),
				"numberOfImages": schemaInteger("Number of separate model generations to be run with the prompt.", 1, 4),
			},
		),
	}
}

func (t *TextToImage) Execute(ctx context.Context, execCtx ExecContext, input map[string]any) (Output, error) {
	const name = "text-to-image"
	if err := requireContext(name, execCtx); err != nil {
		return Output{}, err
	}

	prompt, err := reqString(name, input, "prompt")
	if err != nil {
		return Output{}, err
	}
	aspectRatio, err := reqEnum(name, input, "aspectRatio", "1:1", "4:3", "9:16", "16:9", "3:4")
	if err != nil {
		return Output{}, err
	}
	resolution, err := reqEnum(name, input, "resolution", "1K", "2K")
	if err != nil {
		return Output{}, err
	}
	numberOfImages, err := reqInt(name, input, "numberOfImages", 1, 4)
	if err != nil {
		return Output{}, err
	}

	files, err := t.gen.Generate(ctx, registry.CapImagen4, map[string]any{
		"prompt":       prompt,
		"aspect_ratio": aspectRatio,
		"resolution":   resolution,
		"num_images":   numberOfImages,
	}, media.Context(execCtx))
	if err != nil {
		return Output{}, classifyError(name, err)
	}
	return mediaOutput(files)
}

// ImageToImage transforms or combines existing images guided by a prompt.
type ImageToImage struct {
	gen *media.Generator
}

func NewImageToImage(gen *media.Generator) *ImageToImage {
	return &ImageToImage{gen: gen}
}

func (t *ImageToImage) Spec() Spec {
	return Spec{
		Name: "image-to-image",
		Description: `Transform, modify, enhance, or create variations from existing images.

WHEN TO USE:
- Modifying existing images (add/remove elements, change colors/lighting/composition)
- Combining multiple images (compositing, collaging, blending)
- Style transfers and artistic transformations
- Creating variations of existing designs (logos, illustrations, concepts)
- Using images as style/mood references

WHEN NOT TO USE:
- Creating completely new images without references: use text-to-image
- Simple background removal: use remove-background (faster, specialized)

EFFICIENCY TIPS:
- Reuse base images for multiple variations (generate logo once, create color variants by reusing base URL)
- Clearly specify what to preserve vs what to change in the prompt
- When using multiple image URLs, explain how they should interact`,
		InputSchema: schemaObject(
			[]string{"prompt", "imageUrls", "aspectRatio", "numberOfImages"},
			map[string]any{
				"prompt":         schemaString("The prompt for the image generation"),
				"imageUrls":      schemaStringArray("The URLs of the source images used by the model", 1),
				"aspectRatio":    schemaStringEnum("The aspect ratio of the generated images.", "1:1", "4:3", "9:16", "16:9", "3:4"),
				"numberOfImages": schemaInteger("Number of separate model generations to be run with the prompt.", 1, 4),
			},
		),
	}
}

func (t *ImageToImage) Execute(ctx context.Context, execCtx ExecContext, input map[string]any) (Output, error) {
	const name = "image-to-image"
	if err := requireContext(name, execCtx); err != nil {
		return Output{}, err
	}

	prompt, err := reqString(name, input, "prompt")
	if err != nil {
		return Output{}, err
	}
	imageURLs, err := reqStringList(name, input, "imageUrls", 1)
	if err != nil {
		return Output{}, err
	}
	if _, err := reqEnum(name, input, "aspectRatio", "1:1", "4:3", "9:16", "16:9", "3:4"); err != nil {
		return Output{}, err
	}
	numberOfImages, err := reqInt(name, input, "numberOfImages", 1, 4)
	if err != nil {
		return Output{}, err
	}

	files, err := t.gen.Generate(ctx, registry.CapGeminiFlashEdit, map[string]any{
		"prompt":     prompt,
		"image_urls": imageURLs,
		"num_images": numberOfImages,
	}, media.Context(execCtx))
	if err != nil {
		return Output{}, classifyError(name, err)
	}
	return mediaOutput(files)
}

// RemoveBackground isolates the subject of an image on a transparent
// background.
type RemoveBackground struct {
	gen *media.Generator
}

func NewRemoveBackground(gen *media.Generator) *RemoveBackground {
	return &RemoveBackground{gen: gen}
}

func (t *RemoveBackground) Spec() Spec {
	return Spec{
		Name: "remove-background",
		Description: `Remove background from images automatically, creating transparent PNGs.

WHEN TO USE:
- Product photos, portraits, preparing images for compositing, creating transparent assets
- Need to isolate subject from background quickly

EFFICIENCY TIPS:
- Fast, cheap operation, use liberally
- Use cropToBbox: true for cleaner results when subject isolation is the goal
- Works best with clear subjects and distinct backgrounds
- May struggle with complex edges or transparent/reflective objects`,
		InputSchema: schemaObject(
			[]string{"imageUrl", "cropToBbox"},
			map[string]any{
				"imageUrl":   schemaString("The URL of the source image to remove background from."),
				"cropToBbox": schemaBool("Whether to crop the result to the bounding box of the main subject."),
			},
		),
	}
}

func (t *RemoveBackground) Execute(ctx context.Context, execCtx ExecContext, input map[string]any) (Output, error) {
	const name = "remove-background"
	if err := requireContext(name, execCtx); err != nil {
		return Output{}, err
	}

	imageURL, err := reqString(name, input, "imageUrl")
	if err != nil {
		return Output{}, err
	}
	cropToBbox, err := reqBool(name, input, "cropToBbox")
	if err != nil {
		return Output{}, err
	}

	files, err := t.gen.Generate(ctx, registry.CapRembg, map[string]any{
		"image_url":    imageURL,
		"crop_to_bbox": cropToBbox,
	}, media.Context(execCtx))
	if err != nil {
		return Output{}, classifyError(name, err)
	}
	return mediaOutput(files)
}

// UpscaleImage increases image resolution with a selectable enhancement
// model.
type UpscaleImage struct {
	gen *media.Generator
}

func NewUpscaleImage(gen *media.Generator) *UpscaleImage {
	return &UpscaleImage{gen: gen}
}

var upscaleImageModels = []string{"Standard V2", "Recovery V2", "High Fidelity V2", "CGI", "Text Refine", "Redefine"}

func (t *UpscaleImage) Spec() Spec {
	return Spec{
		Name: "upscale-image",
		Description: `Upscale and enhance image quality using professional AI models. Increases resolution while preserving or enhancing details.

WHEN TO USE:
- Improve quality of generated or existing images
- Prepare images for large displays or prints
- Enhance low-resolution images
- Recover details from compressed images
- Sharpen text in images

MODEL SELECTION:
- Standard V2: Balanced quality for general use (default)
- Recovery V2: Best for recovering details from compressed/low-quality images
- High Fidelity V2: Maximum detail preservation for high-quality sources
- CGI: Optimized for computer-generated imagery and graphics
- Text Refine: Specialized for sharpening text and documents
- Redefine: Creative enhancement with artistic interpretation

EFFICIENCY TIPS:
- Use after generating images that need higher resolution
- Enable faceEnhancement for portraits (improves facial details)
- Use Recovery V2 for images that look compressed or degraded
- Higher upscaleFactor means larger file sizes and longer processing`,
		InputSchema: schemaObject(
			[]string{"imageUrl", "model", "upscaleFactor"},
			map[string]any{
				"imageUrl":                  schemaString("The URL of the image to upscale."),
				"model":                     schemaStringEnum("Model to use for upscaling. Standard V2: balanced quality. Recovery V2: recover details from compressed images. High Fidelity V2: maximum detail preservation. CGI: optimized for computer-generated imagery. Text Refine: sharpen text in images. Redefine: creative enhancement.", upscaleImageModels...),
				"upscaleFactor":             schemaNumber("Factor to upscale the image by (e.g. 2.0 doubles width and height).", 1, 4),
				"subjectDetection":          schemaStringEnum("Subject detection mode. Foreground: enhance foreground subjects. Background: enhance background. All: enhance entire image.", "Foreground", "Background", "All"),
				"faceEnhancement":           schemaBool("Whether to apply face enhancement to detected faces."),
				"faceEnhancementStrength":   schemaNumber("Strength of face enhancement (0.0 = no enhancement, 1.0 = maximum). Only used if faceEnhancement is true.", 0, 1),
				"faceEnhancementCreativity": schemaNumber("Creativity level for face enhancement (0.0 = no creativity, 1.0 = maximum). Only used if faceEnhancement is true.", 0, 1),
				"cropToFill":                schemaBool("Whether to crop the result to fill the target dimensions."),
			},
		),
	}
}

func (t *UpscaleImage) Execute(ctx context.Context, execCtx ExecContext, input map[string]any) (Output, error) {
	const name = "upscale-image"
	if err := requireContext(name, execCtx); err != nil {
		return Output{}, err
	}

	imageURL, err := reqString(name, input, "imageUrl")
	if err != nil {
		return Output{}, err
	}
	upscaleModel, err := reqEnum(name, input, "model", upscaleImageModels...)
	if err != nil {
		return Output{}, err
	}
	upscaleFactor, err := reqNumber(name, input, "upscaleFactor", 1, 4)
	if err != nil {
		return Output{}, err
	}

	modelInput := map[string]any{
		"image_url":      imageURL,
		"model":          upscaleModel,
		"upscale_factor": upscaleFactor,
	}
	if subjectDetection, present, err := optEnum(name, input, "subjectDetection", "Foreground", "Background", "All"); err != nil {
		return Output{}, err
	} else if present {
		modelInput["subject_detection"] = subjectDetection
	}
	if faceEnhancement, present, err := optBool(name, input, "faceEnhancement"); err != nil {
		return Output{}, err
	} else if present {
		modelInput["face_enhancement"] = faceEnhancement
	}
	if strength, present, err := optNumber(name, input, "faceEnhancementStrength", 0, 1); err != nil {
		return Output{}, err
	} else if present {
		modelInput["face_enhancement_strength"] = strength
	}
	if creativity, present, err := optNumber(name, input, "faceEnhancementCreativity", 0, 1); err != nil {
		return Output{}, err
	} else if present {
		modelInput["face_enhancement_creativity"] = creativity
	}
	if cropToFill, present, err := optBool(name, input, "cropToFill"); err != nil {
		return Output{}, err
	} else if present {
		modelInput["crop_to_fill"] = cropToFill
	}

	files, err := t.gen.Generate(ctx, registry.CapTopazUpscaleImage, modelInput, media.Context(execCtx))
	if err != nil {
		return Output{}, classifyError(name, err)
	}
	return mediaOutput(files)
}
