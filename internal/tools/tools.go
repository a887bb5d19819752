package tools

import "artisan/internal/media"

// NewDefaultRegistry wires every generation tool against the given
// generator. Registration order is the order tools are presented to the
// LLM.
func NewDefaultRegistry(gen *media.Generator) (*Registry, error) {
	registry := NewRegistry()
	all := []Tool{
		NewTextToImage(gen),
		NewImageToImage(gen),
		NewTextToSoundEffect(gen),
		NewTextToSpeech(gen),
		NewTextToDialogue(gen),
		NewTextToVideo(gen),
		NewImageToVideo(gen),
		NewLipsync(gen),
		NewMergeAudioVideo(gen),
		NewMergeVideos(gen),
		NewExtractFrame(gen),
		NewRemoveBackground(gen),
		NewUpscaleImage(gen),
		NewUpscaleVideo(gen),
		NewExtractMetadata(gen),
	}
	for _, tool := range all {
		if err := registry.Register(tool); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
