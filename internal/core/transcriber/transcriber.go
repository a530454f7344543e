// Package transcriber provides speech-to-text transcription backends.
package transcriber

import (
	"context"
	"fmt"

	"github.com/tmarchal/scriba/internal/core/transcript"
)

// Request carries one transcription call's input. AudioPath and Samples
// describe the same recording, normalized to 16 kHz mono; backends pick
// whichever form they consume.
type Request struct {
	AudioPath     string
	Samples       []float32
	Language      string // "auto" = let the backend detect
	InitialPrompt string
}

// Transcriber converts audio to a timed transcript.
type Transcriber interface {
	// Transcribe converts the audio to ordered, timestamped segments.
	Transcribe(ctx context.Context, req Request) (*transcript.Transcript, error)

	// Name returns the provider name.
	Name() string
}

// Options configures backend construction.
type Options struct {
	// Model is a registry name (local) or API model (openai).
	Model string

	// ModelsDir is where ggml models live; empty means the default.
	ModelsDir string

	// Device and ComputeType are execution hints decided by the caller
	// ("cpu"/"cuda", "int8"/"float16"). Backends that cannot act on them
	// ignore them.
	Device      string
	ComputeType string

	// APIKey and BaseURL apply to the openai provider only.
	APIKey  string
	BaseURL string
}

// New creates a Transcriber for the given provider.
func New(provider string, opts Options) (Transcriber, error) {
	switch provider {
	case "local":
		return NewLocal(opts)
	case "openai":
		return NewOpenAI(opts)
	default:
		return nil, fmt.Errorf("unsupported transcription provider: %s", provider)
	}
}
