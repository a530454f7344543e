package audio

import (
	"context"
	"math"
	"path/filepath"
	"testing"
)

func TestWAVRoundTrip(t *testing.T) {
	// 100ms of a 440Hz tone.
	samples := make([]float32, TargetSampleRate/10)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/TargetSampleRate))
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := writeWAV(path, samples, TargetSampleRate); err != nil {
		t.Fatal(err)
	}

	got, rate, err := readWAVSamples(path)
	if err != nil {
		t.Fatal(err)
	}
	if rate != TargetSampleRate {
		t.Errorf("sample rate = %d, want %d", rate, TargetSampleRate)
	}
	if len(got) != len(samples) {
		t.Fatalf("sample count = %d, want %d", len(got), len(samples))
	}
	for i := range got {
		if diff := math.Abs(float64(got[i] - samples[i])); diff > 0.001 {
			t.Fatalf("sample %d differs by %f", i, diff)
		}
	}
}

func TestLoadWAV(t *testing.T) {
	samples := make([]float32, TargetSampleRate) // one second of silence
	path := filepath.Join(t.TempDir(), "silence.wav")
	if err := writeWAV(path, samples, TargetSampleRate); err != nil {
		t.Fatal(err)
	}

	clip, cleanup, err := Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()

	if clip.WAVPath != path {
		t.Errorf("expected the canonical input to be reused, got %q", clip.WAVPath)
	}
	if math.Abs(clip.Duration-1.0) > 0.01 {
		t.Errorf("duration = %f, want ~1.0", clip.Duration)
	}
}

func TestResample(t *testing.T) {
	in := make([]float32, 44100)
	for i := range in {
		in[i] = float32(i) / 44100
	}

	out := resample(in, 44100, TargetSampleRate)
	want := int(float64(len(in)) / (44100.0 / float64(TargetSampleRate)))
	if len(out) != want {
		t.Errorf("resampled length = %d, want %d", len(out), want)
	}

	// Identity when rates match.
	same := resample(in, TargetSampleRate, TargetSampleRate)
	if len(same) != len(in) {
		t.Error("resample at identical rates should be a no-op")
	}
}
