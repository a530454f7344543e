package pipeline

import "fmt"

// Stage identifies a pipeline stage in errors and progress output.
type Stage string

const (
	StageLoadTranscriber Stage = "load_transcriber"
	StageLoadAudio       Stage = "load_audio"
	StageTranscribe      Stage = "transcribe"
	StageAlign           Stage = "align"
	StageLoadDiarizer    Stage = "load_diarizer"
	StageDiarize         Stage = "diarize"
	StageAttribute       Stage = "attribute"
	StageExport          Stage = "export"
)

// StageError wraps a fatal failure with the stage it occurred in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// The error kinds below classify failures so callers can distinguish
// bad input from backend trouble without string matching.

// InputError means the audio file or configuration is unusable.
type InputError struct{ Err error }

func (e *InputError) Error() string { return fmt.Sprintf("input error: %v", e.Err) }
func (e *InputError) Unwrap() error { return e.Err }

// BackendLoadError means an engine failed to initialize.
type BackendLoadError struct{ Err error }

func (e *BackendLoadError) Error() string { return fmt.Sprintf("backend load error: %v", e.Err) }
func (e *BackendLoadError) Unwrap() error { return e.Err }

// TranscriptionError means the speech-to-text call failed.
type TranscriptionError struct{ Err error }

func (e *TranscriptionError) Error() string { return fmt.Sprintf("transcription error: %v", e.Err) }
func (e *TranscriptionError) Unwrap() error { return e.Err }

// AlignmentError means timestamp refinement failed.
type AlignmentError struct{ Err error }

func (e *AlignmentError) Error() string { return fmt.Sprintf("alignment error: %v", e.Err) }
func (e *AlignmentError) Unwrap() error { return e.Err }

// DiarizationError means speaker detection failed. It is non-fatal:
// the run degrades to an unlabeled transcript.
type DiarizationError struct{ Err error }

func (e *DiarizationError) Error() string { return fmt.Sprintf("diarization error: %v", e.Err) }
func (e *DiarizationError) Unwrap() error { return e.Err }

// ExportError means the output artifact could not be written.
type ExportError struct{ Err error }

func (e *ExportError) Error() string { return fmt.Sprintf("export error: %v", e.Err) }
func (e *ExportError) Unwrap() error { return e.Err }
