// Package registry maps logical generation capabilities to the remote models
// that implement them. The table is fixed at process start and never mutated.
package registry

import (
	"fmt"

	"artisan/internal/model"
)

// CapabilityKey names one remote model binding, independent of which remote
// model currently implements it.
type CapabilityKey string

const (
	CapImagen4            CapabilityKey = "imagen4"
	CapGeminiFlashEdit    CapabilityKey = "geminiFlashEdit"
	CapKlingTextToVideo   CapabilityKey = "klingVideoTextToVideo"
	CapKlingImageToVideo  CapabilityKey = "klingVideoImageToVideo"
	CapElevenSoundEffects CapabilityKey = "elevenlabsSoundEffects"
	CapFfmpegMergeAV      CapabilityKey = "ffmpegMergeAudioVideo"
	CapRembg              CapabilityKey = "rembg"
	CapElevenTTS          CapabilityKey = "elevenlabsTts"
	CapElevenDialogue     CapabilityKey = "elevenlabsDialogue"
	CapLipsync            CapabilityKey = "lipsync"
	CapFfmpegMergeVideos  CapabilityKey = "ffmpegMergeVideos"
	CapFfmpegExtractFrame CapabilityKey = "ffmpegExtractFrame"
	CapTopazUpscaleImage  CapabilityKey = "topazUpscaleImage"
	CapTopazUpscaleVideo  CapabilityKey = "topazUpscaleVideo"
	CapFfmpegMetadata     CapabilityKey = "ffmpegMetadata"
)

// Binding ties a capability to its remote model id and the media kind that
// model outputs.
type Binding struct {
	Capability    CapabilityKey
	RemoteModelID string
	Kind          model.MediaKind
}

// UnknownCapabilityError indicates a lookup for a capability that is not in
// the table. Always a programming error in the caller.
type UnknownCapabilityError struct {
	Capability CapabilityKey
}

func (e *UnknownCapabilityError) Error() string {
	return fmt.Sprintf("unknown capability %q", string(e.Capability))
}

var bindings = map[CapabilityKey]Binding{
	CapImagen4:            {CapImagen4, "fal-ai/imagen4/preview", model.MediaKindImage},
	CapGeminiFlashEdit:    {CapGeminiFlashEdit, "fal-ai/gemini-25-flash-image/edit", model.MediaKindImage},
	CapKlingTextToVideo:   {CapKlingTextToVideo, "fal-ai/kling-video/v2.5-turbo/pro/text-to-video", model.MediaKindVideo},
	CapKlingImageToVideo:  {CapKlingImageToVideo, "fal-ai/kling-video/v2.5-turbo/pro/image-to-video", model.MediaKindVideo},
	CapElevenSoundEffects: {CapElevenSoundEffects, "fal-ai/elevenlabs/sound-effects/v2", model.MediaKindAudio},
	CapFfmpegMergeAV:      {CapFfmpegMergeAV, "fal-ai/ffmpeg-api/merge-audio-video", model.MediaKindVideo},
	CapRembg:              {CapRembg, "fal-ai/imageutils/rembg", model.MediaKindImage},
	CapElevenTTS:          {CapElevenTTS, "fal-ai/elevenlabs/tts/eleven-v3", model.MediaKindAudio},
	CapElevenDialogue:     {CapElevenDialogue, "fal-ai/elevenlabs/text-to-dialogue/eleven-v3", model.MediaKindAudio},
	CapLipsync:            {CapLipsync, "creatify/lipsync", model.MediaKindVideo},
	CapFfmpegMergeVideos:  {CapFfmpegMergeVideos, "fal-ai/ffmpeg-api/merge-videos", model.MediaKindVideo},
	CapFfmpegExtractFrame: {CapFfmpegExtractFrame, "fal-ai/ffmpeg-api/extract-frame", model.MediaKindImage},
	CapTopazUpscaleImage:  {CapTopazUpscaleImage, "fal-ai/topaz/upscale/image", model.MediaKindImage},
	CapTopazUpscaleVideo:  {CapTopazUpscaleVideo, "fal-ai/topaz/upscale/video", model.MediaKindVideo},
	CapFfmpegMetadata:     {CapFfmpegMetadata, "fal-ai/ffmpeg-api/metadata", model.MediaKindVideo},
}

// Lookup resolves a capability to its binding.
func Lookup(key CapabilityKey) (Binding, error) {
	binding, ok := bindings[key]
	if !ok {
		return Binding{}, &UnknownCapabilityError{Capability: key}
	}
	return binding, nil
}

// Keys returns every registered capability. Order is unspecified.
func Keys() []CapabilityKey {
	out := make([]CapabilityKey, 0, len(bindings))
	for key := range bindings {
		out = append(out, key)
	}
	return out
}
