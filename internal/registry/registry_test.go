package registry

import (
	"errors"
	"testing"

	"artisan/internal/model"
)

func TestLookupResolvesEveryRegisteredCapability(t *testing.T) {
	for _, key := range Keys() {
		binding, err := Lookup(key)
		if err != nil {
			t.Fatalf("lookup %s: %v", key, err)
		}
		if binding.RemoteModelID == "" {
			t.Fatalf("capability %s has no remote model id", key)
		}
		if !binding.Kind.Valid() {
			t.Fatalf("capability %s has invalid kind %q", key, binding.Kind)
		}
	}
}

func TestLookupKnownBindings(t *testing.T) {
	cases := []struct {
		key     CapabilityKey
		modelID string
		kind    model.MediaKind
	}{
		{CapImagen4, "fal-ai/imagen4/preview", model.MediaKindImage},
		{CapKlingTextToVideo, "fal-ai/kling-video/v2.5-turbo/pro/text-to-video", model.MediaKindVideo},
		{CapElevenTTS, "fal-ai/elevenlabs/tts/eleven-v3", model.MediaKindAudio},
		{CapLipsync, "creatify/lipsync", model.MediaKindVideo},
		{CapFfmpegMetadata, "fal-ai/ffmpeg-api/metadata", model.MediaKindVideo},
	}
	for _, tc := range cases {
		binding, err := Lookup(tc.key)
		if err != nil {
			t.Fatalf("lookup %s: %v", tc.key, err)
		}
		if binding.RemoteModelID != tc.modelID {
			t.Errorf("%s: model id = %q, want %q", tc.key, binding.RemoteModelID, tc.modelID)
		}
		if binding.Kind != tc.kind {
			t.Errorf("%s: kind = %q, want %q", tc.key, binding.Kind, tc.kind)
		}
	}
}

func TestLookupUnknownCapability(t *testing.T) {
	_, err := Lookup(CapabilityKey("nonsense"))
	var unknown *UnknownCapabilityError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownCapabilityError, got %v", err)
	}
}
