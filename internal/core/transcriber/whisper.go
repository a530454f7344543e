//go:build cgo

package transcriber

import (
	"context"
	"fmt"
	"os"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/tmarchal/scriba/internal/core/transcript"
)

// WhisperTranscriber runs whisper.cpp in-process through the cgo bindings.
type WhisperTranscriber struct {
	model     whisper.Model
	modelPath string
}

// NewLocal creates the in-process whisper.cpp backend.
func NewLocal(opts Options) (Transcriber, error) {
	modelsDir := opts.ModelsDir
	if modelsDir == "" {
		var err error
		modelsDir, err = DefaultModelsDir()
		if err != nil {
			return nil, fmt.Errorf("resolve models directory: %w", err)
		}
	}

	mgr := NewManager(modelsDir)
	modelPath, err := mgr.EnsurePath(opts.Model)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("whisper model not found: %s", modelPath)
	}

	model, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load whisper model: %w", err)
	}

	return &WhisperTranscriber{model: model, modelPath: modelPath}, nil
}

// Name returns the provider name.
func (w *WhisperTranscriber) Name() string {
	return "whisper.cpp"
}

// Close releases the loaded model.
func (w *WhisperTranscriber) Close() error {
	return w.model.Close()
}

// Transcribe runs whisper.cpp over the prepared samples.
func (w *WhisperTranscriber) Transcribe(ctx context.Context, req Request) (*transcript.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wctx, err := w.model.NewContext()
	if err != nil {
		return nil, fmt.Errorf("create whisper context: %w", err)
	}

	if req.Language != "" && req.Language != "auto" {
		if err := wctx.SetLanguage(req.Language); err != nil {
			return nil, fmt.Errorf("set language %q: %w", req.Language, err)
		}
	}
	if req.InitialPrompt != "" {
		wctx.SetInitialPrompt(req.InitialPrompt)
	}

	if err := wctx.Process(req.Samples, nil, nil, nil); err != nil {
		return nil, fmt.Errorf("process audio: %w", err)
	}

	tr := &transcript.Transcript{
		Language: req.Language,
		Duration: float64(len(req.Samples)) / 16000.0,
	}
	for {
		segment, err := wctx.NextSegment()
		if err != nil {
			break
		}
		tr.Segments = append(tr.Segments, transcript.Segment{
			Start: segment.Start.Seconds(),
			End:   segment.End.Seconds(),
			Text:  segment.Text,
		})
	}

	return tr, nil
}
