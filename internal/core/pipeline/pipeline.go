// Package pipeline orchestrates the transcription run from audio file
// to exported artifact.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/tmarchal/scriba/internal/core/audio"
	"github.com/tmarchal/scriba/internal/core/diarize"
	"github.com/tmarchal/scriba/internal/core/output"
	"github.com/tmarchal/scriba/internal/core/transcriber"
	"github.com/tmarchal/scriba/internal/core/transcript"
)

// Config holds everything one run needs.
type Config struct {
	AudioPath string

	// Provider selects the transcription backend: "local" or "openai".
	Provider      string
	Model         string
	ModelsDir     string
	Language      string
	Device        string
	ComputeType   string
	InitialPrompt string

	// APIKey and BaseURL apply to the openai provider.
	APIKey  string
	BaseURL string

	Diarize    bool
	DiarizeURL string
	HFToken    string
	Speakers   diarize.Options

	// OutputPath, when empty, is derived from AudioPath and Format.
	OutputPath string
	Format     string

	// Debug lets backend chatter through to stdout instead of
	// discarding it.
	Debug bool
}

// Result describes a completed run.
type Result struct {
	OutputPath string
	Transcript *transcript.Transcript

	// Degraded is true when diarization was requested but failed, so
	// the output carries no speaker labels.
	Degraded bool
}

// Pipeline runs the stage sequence. The function fields exist so tests
// can substitute fakes; New wires the real backends.
type Pipeline struct {
	cfg Config

	// Progress receives stage progress lines. Warn receives degraded-run
	// warnings. PromptToken, when set, is asked once for a replacement
	// Hugging Face token after a credential failure.
	Progress    *Reporter
	Warn        io.Writer
	PromptToken func(ctx context.Context) (string, error)

	newTranscriber func() (transcriber.Transcriber, error)
	loadAudio      func(ctx context.Context, path string) (*audio.Clip, func(), error)
	aligner        transcriber.Aligner
	newDiarizer    func(token string) (diarize.Diarizer, error)
	export         func(path string, tr *transcript.Transcript, format string) error
}

// New creates a Pipeline wired to the real backends.
func New(cfg Config) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		Progress: NewReporter(os.Stderr),
		Warn:     os.Stderr,
	}
	p.newTranscriber = func() (transcriber.Transcriber, error) {
		return transcriber.New(cfg.Provider, transcriber.Options{
			Model:       cfg.Model,
			ModelsDir:   cfg.ModelsDir,
			Device:      cfg.Device,
			ComputeType: cfg.ComputeType,
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
		})
	}
	p.loadAudio = audio.Load
	p.aligner = transcriber.NewEnergyAligner()
	p.newDiarizer = func(token string) (diarize.Diarizer, error) {
		return diarize.NewPyannote(cfg.DiarizeURL, token), nil
	}
	p.export = output.Export
	return p
}

// DefaultOutputPath derives the artifact path from the input filename.
func DefaultOutputPath(audioPath, format string) string {
	base := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	return base + output.Ext(format)
}

// Run executes the stage sequence and returns the completed result.
// Fatal failures come back as a *StageError naming the stage; a
// diarization failure degrades the run instead of failing it.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if _, err := os.Stat(p.cfg.AudioPath); err != nil {
		return nil, &StageError{Stage: StageLoadAudio, Err: &InputError{Err: err}}
	}
	if !output.IsValidFormat(p.cfg.Format) {
		return nil, &StageError{Stage: StageExport, Err: &ExportError{Err: fmt.Errorf("unsupported format: %s", p.cfg.Format)}}
	}

	quiet := !p.cfg.Debug

	p.Progress.Report(20, "Loading transcription backend")
	var backend transcriber.Transcriber
	err := Quietly(quiet, func() error {
		var err error
		backend, err = p.newTranscriber()
		return err
	})
	if err != nil {
		return nil, &StageError{Stage: StageLoadTranscriber, Err: &BackendLoadError{Err: err}}
	}

	p.Progress.Report(25, "Loading audio")
	clip, cleanup, err := p.loadAudio(ctx, p.cfg.AudioPath)
	if err != nil {
		return nil, &StageError{Stage: StageLoadAudio, Err: &InputError{Err: err}}
	}
	defer cleanup()

	p.Progress.Report(30, "Transcribing audio")
	var tr *transcript.Transcript
	err = Quietly(quiet, func() error {
		var err error
		tr, err = backend.Transcribe(ctx, transcriber.Request{
			AudioPath:     clip.WAVPath,
			Samples:       clip.Samples,
			Language:      p.cfg.Language,
			InitialPrompt: p.cfg.InitialPrompt,
		})
		return err
	})
	if err != nil {
		return nil, &StageError{Stage: StageTranscribe, Err: &TranscriptionError{Err: err}}
	}

	p.Progress.Report(70, "Refining timestamps")
	var aligned *transcript.Transcript
	err = Quietly(quiet, func() error {
		var err error
		aligned, err = p.aligner.Align(ctx, tr, clip.Samples, audio.TargetSampleRate)
		return err
	})
	if err != nil {
		return nil, &StageError{Stage: StageAlign, Err: &AlignmentError{Err: err}}
	}
	tr = aligned

	result := &Result{Transcript: tr}

	if p.cfg.Diarize {
		turns, degraded, abortErr := p.runDiarization(ctx, clip.WAVPath, quiet)
		if abortErr != nil {
			return nil, abortErr
		}
		result.Degraded = degraded
		if !degraded {
			p.Progress.Report(95, "Assigning speakers")
			tr = transcript.Attribute(tr, turns)
			result.Transcript = tr
		}
	}

	outPath := p.cfg.OutputPath
	if outPath == "" {
		outPath = DefaultOutputPath(p.cfg.AudioPath, p.cfg.Format)
	}

	p.Progress.Report(98, "Writing output")
	if err := p.export(outPath, tr, p.cfg.Format); err != nil {
		return nil, &StageError{Stage: StageExport, Err: &ExportError{Err: err}}
	}
	result.OutputPath = outPath

	p.Progress.Report(100, "Done")
	return result, nil
}

// runDiarization loads the diarizer and detects speaker turns. A
// credential failure gets exactly one interactive retry with a fresh
// token; every other failure, and a failed retry, degrades the run.
// abortErr is non-nil only when the user cancelled during the prompt.
func (p *Pipeline) runDiarization(ctx context.Context, wavPath string, quiet bool) (turns []transcript.Turn, degraded bool, abortErr error) {
	p.Progress.Report(75, "Detecting speakers")

	turns, err := p.diarizeOnce(ctx, wavPath, p.cfg.HFToken, quiet)
	if err == nil {
		p.Progress.Report(90, "Speaker detection complete")
		return turns, false, nil
	}

	if diarize.IsCredential(err) && p.PromptToken != nil {
		token, perr := p.PromptToken(ctx)
		if perr != nil {
			if ctx.Err() != nil {
				return nil, false, &StageError{Stage: StageDiarize, Err: ctx.Err()}
			}
			p.warnf("Diarization skipped: %v", err)
			return nil, true, nil
		}
		turns, err = p.diarizeOnce(ctx, wavPath, token, quiet)
		if err == nil {
			p.Progress.Report(90, "Speaker detection complete")
			return turns, false, nil
		}
	}

	if ctx.Err() != nil {
		return nil, false, &StageError{Stage: StageDiarize, Err: ctx.Err()}
	}

	p.warnf("Diarization failed, continuing without speaker labels: %v", err)
	return nil, true, nil
}

// diarizeOnce covers one load-plus-diarize attempt with one token.
func (p *Pipeline) diarizeOnce(ctx context.Context, wavPath, token string, quiet bool) ([]transcript.Turn, error) {
	var d diarize.Diarizer
	err := Quietly(quiet, func() error {
		var err error
		d, err = p.newDiarizer(token)
		return err
	})
	if err != nil {
		return nil, err
	}

	var turns []transcript.Turn
	err = Quietly(quiet, func() error {
		var err error
		turns, err = d.Diarize(ctx, wavPath, p.cfg.Speakers)
		return err
	})
	if err != nil {
		return nil, err
	}
	return turns, nil
}

func (p *Pipeline) warnf(format string, args ...any) {
	if p.Warn == nil {
		return
	}
	color.New(color.FgYellow).Fprintf(p.Warn, "warning: "+format+"\n", args...)
}
