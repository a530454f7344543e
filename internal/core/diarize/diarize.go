// Package diarize segments audio by speaker.
package diarize

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmarchal/scriba/internal/core/transcript"
)

// Options constrains how many speakers the diarizer looks for. Zero
// values mean "let the model decide".
type Options struct {
	NumSpeakers int
	MinSpeakers int
	MaxSpeakers int
}

// Diarizer detects who speaks when.
type Diarizer interface {
	// Diarize returns the speaker turns found in the audio file,
	// sorted by start time.
	Diarize(ctx context.Context, audioPath string, opts Options) ([]transcript.Turn, error)

	// Name returns the provider name.
	Name() string
}

// CredentialError marks a diarization failure caused by a missing or
// rejected access token, as opposed to a model or service failure.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("diarization credentials rejected: %v", e.Err)
}

func (e *CredentialError) Unwrap() error {
	return e.Err
}

// IsCredential reports whether err is (or wraps) a CredentialError.
func IsCredential(err error) bool {
	var ce *CredentialError
	return errors.As(err, &ce)
}
