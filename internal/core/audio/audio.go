// Package audio loads a recording into the 16 kHz mono form the
// transcription and diarization backends consume.
//
// WAV, MP3 and FLAC decode in pure Go; every other container goes through
// the embedded ffmpeg (wasm) build.
package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"codeberg.org/gruf/go-ffmpreg/ffmpreg"
	"codeberg.org/gruf/go-ffmpreg/wasm"
	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/google/uuid"
	"github.com/hajimehoshi/go-mp3"
	"github.com/mewkiz/flac"
	"github.com/tetratelabs/wazero"
)

// TargetSampleRate is what whisper.cpp and pyannote expect.
const TargetSampleRate = 16000

// Clip is a decoded recording, normalized to 16 kHz mono.
type Clip struct {
	// Samples are mono float32 in [-1, 1] at TargetSampleRate.
	Samples []float32

	// WAVPath points at a 16 kHz mono WAV on disk for backends that take a
	// file rather than samples. Either the input itself or a temp file.
	WAVPath string

	// Duration in seconds.
	Duration float64
}

// Load decodes the audio file at path. The returned cleanup removes any
// temp artifact and is always safe to call.
func Load(ctx context.Context, path string) (*Clip, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, func() {}, err
	}

	var (
		samples []float32
		rate    int
		err     error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		samples, rate, err = readWAVSamples(path)
	case ".mp3":
		samples, rate, err = readMP3Samples(path)
	case ".flac":
		samples, rate, err = readFLACSamples(path)
	default:
		return loadViaFFmpeg(ctx, path)
	}
	if err != nil {
		return nil, func() {}, err
	}

	if rate != TargetSampleRate {
		samples = resample(samples, rate, TargetSampleRate)
	}

	// Backends taking a file need a normalized WAV regardless of the input
	// container, so one is always materialized for non-canonical inputs.
	wavPath := path
	cleanup := func() {}
	if rate != TargetSampleRate || strings.ToLower(filepath.Ext(path)) != ".wav" {
		wavPath = tempWAVPath()
		if err := writeWAV(wavPath, samples, TargetSampleRate); err != nil {
			return nil, func() {}, err
		}
		cleanup = func() { os.Remove(wavPath) }
	}

	return newClip(samples, wavPath), cleanup, nil
}

func newClip(samples []float32, wavPath string) *Clip {
	return &Clip{
		Samples:  samples,
		WAVPath:  wavPath,
		Duration: float64(len(samples)) / TargetSampleRate,
	}
}

func tempWAVPath() string {
	return filepath.Join(os.TempDir(), "scriba-"+uuid.NewString()+".wav")
}

// loadViaFFmpeg converts an arbitrary container to 16 kHz mono WAV with the
// embedded ffmpeg, then decodes that.
func loadViaFFmpeg(ctx context.Context, path string) (*Clip, func(), error) {
	wavPath := tempWAVPath()
	cleanup := func() { os.Remove(wavPath) }

	if err := convertWithFFmpeg(ctx, path, wavPath); err != nil {
		cleanup()
		return nil, func() {}, err
	}

	samples, rate, err := readWAVSamples(wavPath)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	if rate != TargetSampleRate {
		samples = resample(samples, rate, TargetSampleRate)
	}
	return newClip(samples, wavPath), cleanup, nil
}

// readWAVSamples decodes a WAV file to mono float32.
func readWAVSamples(path string) ([]float32, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid WAV file: %s", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decode WAV: %w", err)
	}

	rate := buf.Format.SampleRate
	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, 0, fmt.Errorf("invalid WAV channel count %d", channels)
	}
	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}
	maxVal := float32(int64(1) << (bitDepth - 1))

	frames := len(buf.Data) / channels
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var mono int64
		for ch := 0; ch < channels; ch++ {
			mono += int64(buf.Data[i*channels+ch])
		}
		mono /= int64(channels)
		samples[i] = float32(mono) / maxVal
	}

	return samples, rate, nil
}

// readMP3Samples decodes an MP3 file to mono float32.
func readMP3Samples(path string) ([]float32, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer file.Close()

	decoder, err := mp3.NewDecoder(file)
	if err != nil {
		return nil, 0, fmt.Errorf("decode MP3: %w", err)
	}

	rate := decoder.SampleRate()
	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, 0, fmt.Errorf("read MP3 stream: %w", err)
	}

	// go-mp3 always emits stereo 16-bit little-endian PCM.
	const maxInt16 = 32768.0
	frames := len(data) / 4
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		left := int16(data[i*4]) | int16(data[i*4+1])<<8
		right := int16(data[i*4+2]) | int16(data[i*4+3])<<8
		mono := (int32(left) + int32(right)) / 2
		samples[i] = float32(mono) / maxInt16
	}

	return samples, rate, nil
}

// readFLACSamples decodes a FLAC file to mono float32.
func readFLACSamples(path string) ([]float32, int, error) {
	stream, err := flac.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("decode FLAC: %w", err)
	}
	defer stream.Close()

	rate := int(stream.Info.SampleRate)
	channels := int(stream.Info.NChannels)
	maxVal := float32(int64(1) << (stream.Info.BitsPerSample - 1))

	var samples []float32
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("parse FLAC frame: %w", err)
		}

		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			var mono int64
			for ch := 0; ch < channels; ch++ {
				mono += int64(frame.Subframes[ch].Samples[i])
			}
			mono /= int64(channels)
			samples = append(samples, float32(mono)/maxVal)
		}
	}

	return samples, rate, nil
}

// convertWithFFmpeg transcodes any input the pure-Go decoders cannot handle.
func convertWithFFmpeg(ctx context.Context, inputPath, outputPath string) error {
	absInput, err := filepath.Abs(inputPath)
	if err != nil {
		return err
	}
	absOutput, err := filepath.Abs(outputPath)
	if err != nil {
		return err
	}

	inputDir := filepath.Dir(absInput)
	outputDir := filepath.Dir(absOutput)

	args := wasm.Args{
		Stderr: io.Discard,
		Stdout: io.Discard,
		Args: []string{
			"-i", absInput,
			"-ar", fmt.Sprintf("%d", TargetSampleRate),
			"-ac", "1",
			"-c:a", "pcm_s16le",
			"-y",
			absOutput,
		},
		Config: func(cfg wazero.ModuleConfig) wazero.ModuleConfig {
			return cfg.WithFSConfig(wazero.NewFSConfig().
				WithDirMount(inputDir, inputDir).
				WithDirMount(outputDir, outputDir))
		},
	}

	rc, err := ffmpreg.Ffmpeg(ctx, args)
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	if rc != 0 {
		return fmt.Errorf("ffmpeg exited with code %d", rc)
	}
	return nil
}

// writeWAV writes mono float32 samples as 16-bit PCM.
func writeWAV(path string, samples []float32, sampleRate int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := wav.NewEncoder(file, sampleRate, 16, 1, 1)
	defer encoder.Close()

	intBuf := &gaudio.IntBuffer{
		Data:           make([]int, len(samples)),
		Format:         &gaudio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		intBuf.Data[i] = int(s * 32767)
	}

	return encoder.Write(intBuf)
}

// resample converts between rates with linear interpolation.
func resample(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate {
		return samples
	}

	ratio := float64(srcRate) / float64(dstRate)
	outLen := int(float64(len(samples)) / ratio)
	out := make([]float32, outLen)

	for i := 0; i < outLen; i++ {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := float32(pos - float64(idx))

		switch {
		case idx+1 < len(samples):
			out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
		case idx < len(samples):
			out[i] = samples[idx]
		}
	}

	return out
}
