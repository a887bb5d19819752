package tools

import (
	"context"

	"artisan/internal/media"
	"artisan/internal/registry"
)

// speechVoices is the fixed voice roster shared by text-to-speech and
// text-to-dialogue. The roster mirrors the remote provider's catalog
// verbatim, including its spellings.
var speechVoices = []string{
	"Aria", "Roger", "Sarah", "Laura", "Charlie", "George", "Callum",
	"River", "Liam", "Charlotte", "Alice", "Matilda", "Will", "Jessica",
	"Eric", "Chris", "Brain", "Daniel", "Lilly", "Bill", "Rachel",
}

// TextToSoundEffect generates short sound effects from a description.
type TextToSoundEffect struct {
	gen *media.Generator
}

func NewTextToSoundEffect(gen *media.Generator) *TextToSoundEffect {
	return &TextToSoundEffect{gen: gen}
}

func (t *TextToSoundEffect) Spec() Spec {
	return Spec{
		Name: "text-to-sound-effect",
		Description: `Generate sound effects from text descriptions. Create ambient sounds, impacts, transitions, foley, atmospheric audio.

WHEN TO USE:
- UI sounds, game effects, video sound design, atmospheric audio, transitions
- Need specific sound characteristics (pitch, intensity, texture, decay)

EFFICIENCY TIPS:
- Fast, cheap operation, generate liberally
- Be specific in description: "heavy wooden door closing in large hall" vs just "door close"
- Lower promptInfluence (0.2-0.4) for more creative variety
- Auto-determine duration when possible (omit durationSeconds parameter)`,
		InputSchema: schemaObject(
			[]string{"text", "promptInfluence"},
			map[string]any{
				"text":            schemaString("The text describing the sound effect to generate."),
				"durationSeconds": schemaNumber("Duration in seconds (0.5-22). If omitted, optimal duration will be determined from prompt.", 0.5, 22),
				"promptInfluence": schemaNumber("How closely to follow the prompt (0-1). Higher values mean less variation. Default: 0.3", 0, 1),
			},
		),
	}
}

func (t *TextToSoundEffect) Execute(ctx context.Context, execCtx ExecContext, input map[string]any) (Output, error) {
	const name = "text-to-sound-effect"
	if err := requireContext(name, execCtx); err != nil {
		return Output{}, err
	}

	text, err := reqString(name, input, "text")
	if err != nil {
		return Output{}, err
	}
	promptInfluence, err := reqNumber(name, input, "promptInfluence", 0, 1)
	if err != nil {
		return Output{}, err
	}

	modelInput := map[string]any{
		"text":             text,
		"prompt_influence": promptInfluence,
		"output_format":    "mp3_44100_128",
	}
	if durationSeconds, present, err := optNumber(name, input, "durationSeconds", 0.5, 22); err != nil {
		return Output{}, err
	} else if present {
		modelInput["duration_seconds"] = durationSeconds
	}

	files, err := t.gen.Generate(ctx, registry.CapElevenSoundEffects, modelInput, media.Context(execCtx))
	if err != nil {
		return Output{}, classifyError(name, err)
	}
	return mediaOutput(files)
}

// TextToSpeech narrates text with a single chosen voice.
type TextToSpeech struct {
	gen *media.Generator
}

func NewTextToSpeech(gen *media.Generator) *TextToSpeech {
	return &TextToSpeech{gen: gen}
}

func (t *TextToSpeech) Spec() Spec {
	return Spec{
		Name: "text-to-speech",
		Description: `Convert text to natural-sounding speech. Generates audio narration and voice-overs with multiple voice options.

WHEN TO USE:
- Voice-overs for videos, narration, accessibility features, audio presentations
- Need natural human speech with emotional expression control

EFFICIENCY TIPS:
- Fast, cheap operation, generate liberally
- For conversations: Use a CONSISTENT voice per character throughout (Sarah for Person A, Charlie for Person B across all lines)
- Match stability to use case: 0.0 for expressive/creative, 1.0 for consistent narration
- Adjust style parameter for emotional content; omit for neutral speech`,
		InputSchema: schemaObject(
			[]string{"text", "voice", "stability", "similarityBoost", "speed", "timestamps"},
			map[string]any{
				"text":            schemaString("The text to convert to speech."),
				"voice":           schemaStringEnum("The voice to use for speech generation.", speechVoices...),
				"stability":       schemaNumberEnum("Voice stability: 0.0 = Creative, 0.5 = Natural, 1.0 = Robust (consistent)", 0.0, 0.5, 1.0),
				"similarityBoost": schemaNumber("Similarity boost (0-1). Higher values make speech closer to the original voice.", 0, 1),
				"speed":           schemaNumber("Speech speed (0.7-1.2). Values below 1.0 slow down, above 1.0 speed up.", 0.7, 1.2),
				"style":           schemaNumber("Style exaggeration (0-1). Higher values add more emotion and expression.", 0, 1),
				"timestamps":      schemaBool("Whether to return timestamps for each word in the generated speech."),
			},
		),
	}
}

func (t *TextToSpeech) Execute(ctx context.Context, execCtx ExecContext, input map[string]any) (Output, error) {
	const name = "text-to-speech"
	if err := requireContext(name, execCtx); err != nil {
		return Output{}, err
	}

	text, err := reqString(name, input, "text")
	if err != nil {
		return Output{}, err
	}
	voice, err := reqEnum(name, input, "voice", speechVoices...)
	if err != nil {
		return Output{}, err
	}
	stability, err := reqDiscreteNumber(name, input, "stability", 0.0, 0.5, 1.0)
	if err != nil {
		return Output{}, err
	}
	similarityBoost, err := reqNumber(name, input, "similarityBoost", 0, 1)
	if err != nil {
		return Output{}, err
	}
	speed, err := reqNumber(name, input, "speed", 0.7, 1.2)
	if err != nil {
		return Output{}, err
	}
	timestamps, err := reqBool(name, input, "timestamps")
	if err != nil {
		return Output{}, err
	}

	modelInput := map[string]any{
		"text":             text,
		"voice":            voice,
		"stability":        stability,
		"similarity_boost": similarityBoost,
		"speed":            speed,
		"timestamps":       timestamps,
	}
	if style, present, err := optNumber(name, input, "style", 0, 1); err != nil {
		return Output{}, err
	} else if present {
		modelInput["style"] = style
	}

	files, err := t.gen.Generate(ctx, registry.CapElevenTTS, modelInput, media.Context(execCtx))
	if err != nil {
		return Output{}, classifyError(name, err)
	}
	return mediaOutput(files)
}

// TextToDialogue renders a multi-speaker conversation as one continuous
// audio file.
type TextToDialogue struct {
	gen *media.Generator
}

func NewTextToDialogue(gen *media.Generator) *TextToDialogue {
	return &TextToDialogue{gen: gen}
}

func (t *TextToDialogue) Spec() Spec {
	return Spec{
		Name: "text-to-dialogue",
		Description: `Generate natural multi-speaker conversation audio as a single continuous file with realistic timing, overlaps, and contextual tone changes between speakers.

WHEN TO USE:
- Want single continuous conversation audio with natural flow and timing
- Creating single-take conversation videos (wide shots, podcast-style, interviews)
- Need contextual tone changes (speaker B reacts to speaker A's emotion)
- Podcast discussions, interview videos, documentary narration with guest voices

WHEN NOT TO USE:
- Need visual cuts between speakers per line: use separate text-to-speech + lipsync per line instead
- Need individual control over each line's audio parameters (speed, style, etc.)
- Creating segmented conversation videos with alternating close-ups of speakers

EFFICIENCY TIPS:
- Generates an entire multi-speaker conversation in one API call vs multiple text-to-speech calls
- Best paired with wide shots showing both speakers or single-speaker-focus videos
- Use square brackets for sound effects: [applause], [gulps], [laughs], [sighs]
- Use square brackets for accents/emotions: [strong canadian accent], [excited], [whispers]
- Output is a single audio file with all speakers and cannot be split per speaker afterward
- More natural conversation flow with proper pacing and speaker interactions than separate TTS calls`,
		InputSchema: schemaObject(
			[]string{"inputs", "stability"},
			map[string]any{
				"inputs": map[string]any{
					"type":        "array",
					"minItems":    2,
					"description": "Array of dialogue turns with text and voice for each speaker.",
					"items": schemaObject(
						[]string{"text", "voice"},
						map[string]any{
							"text":  schemaString("The text for this speaker to say."),
							"voice": schemaStringEnum("The voice for this speaker.", speechVoices...),
						},
					),
				},
				"stability": schemaNumber("Voice stability (0-1). Lower values introduce emotional range, higher values are more monotonous.", 0, 1),
			},
		),
	}
}

func (t *TextToDialogue) Execute(ctx context.Context, execCtx ExecContext, input map[string]any) (Output, error) {
	const name = "text-to-dialogue"
	if err := requireContext(name, execCtx); err != nil {
		return Output{}, err
	}

	turns, err := validateDialogueTurns(name, input)
	if err != nil {
		return Output{}, err
	}
	stability, err := reqNumber(name, input, "stability", 0, 1)
	if err != nil {
		return Output{}, err
	}

	files, err := t.gen.Generate(ctx, registry.CapElevenDialogue, map[string]any{
		"inputs":    turns,
		"stability": stability,
	}, media.Context(execCtx))
	if err != nil {
		return Output{}, classifyError(name, err)
	}
	return mediaOutput(files)
}

func validateDialogueTurns(toolName string, input map[string]any) ([]map[string]any, error) {
	raw, ok := input["inputs"].([]any)
	if !ok {
		return nil, &ValidationError{Tool: toolName, Field: "inputs", Message: "an array of {text, voice} turns is required"}
	}
	if len(raw) < 2 {
		return nil, &ValidationError{Tool: toolName, Field: "inputs", Message: "at least 2 dialogue turns are required"}
	}

	turns := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		turn, ok := entry.(map[string]any)
		if !ok {
			return nil, &ValidationError{Tool: toolName, Field: "inputs", Message: "each turn must be a {text, voice} object"}
		}
		text, err := reqString(toolName, turn, "text")
		if err != nil {
			return nil, err
		}
		voice, err := reqEnum(toolName, turn, "voice", speechVoices...)
		if err != nil {
			return nil, err
		}
		turns = append(turns, map[string]any{"text": text, "voice": voice})
	}
	return turns, nil
}
