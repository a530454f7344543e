//go:build !cgo

package transcriber

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/tmarchal/scriba/internal/core/transcript"
)

// WhisperRunner transcribes by invoking the whisper.cpp CLI binary.
// Used when CGO is disabled.
type WhisperRunner struct {
	binaryPath string
	modelPath  string
}

// findWhisperCLI checks for whisper-cli in this order:
// 1. SCRIBA_WHISPER_CLI env var
// 2. whisper-cli on $PATH
// 3. a whisper-cli next to the current binary
func findWhisperCLI() (string, error) {
	if envPath := os.Getenv("SCRIBA_WHISPER_CLI"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		fmt.Fprintf(os.Stderr, "warning: SCRIBA_WHISPER_CLI set to %q but not found, continuing search\n", envPath)
	}

	if path, err := exec.LookPath("whisper-cli"); err == nil {
		return path, nil
	}

	if exe, err := os.Executable(); err == nil {
		for _, candidate := range []string{
			filepath.Join(filepath.Dir(exe), "whisper-cli"),
			filepath.Join(filepath.Dir(exe), "whisper-cli.exe"),
		} {
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}

	return "", fmt.Errorf("whisper-cli not found (install whisper.cpp or set SCRIBA_WHISPER_CLI)")
}

// NewLocal creates the subprocess-based whisper backend.
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

	binaryPath, err := findWhisperCLI()
	if err != nil {
		return nil, err
	}

	return &WhisperRunner{binaryPath: binaryPath, modelPath: modelPath}, nil
}

// Name returns the provider name.
func (w *WhisperRunner) Name() string {
	return "whisper.cpp"
}

// Transcribe runs whisper-cli over the prepared WAV file.
func (w *WhisperRunner) Transcribe(ctx context.Context, req Request) (*transcript.Transcript, error) {
	tmpDir, err := os.MkdirTemp("", "scriba-whisper-*")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	outputBase := filepath.Join(tmpDir, "output")

	threads := runtime.NumCPU()
	if threads > 8 {
		threads = 8
	}

	args := []string{
		"-m", w.modelPath,
		"-f", req.AudioPath,
		"-otxt",
		"-of", outputBase,
		"-t", strconv.Itoa(threads),
	}
	if req.Language != "" && req.Language != "auto" {
		args = append(args, "-l", req.Language)
	}
	if req.InitialPrompt != "" {
		args = append(args, "--prompt", req.InitialPrompt)
	}

	cmd := exec.CommandContext(ctx, w.binaryPath, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("whisper-cli failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	content, err := os.ReadFile(outputBase + ".txt")
	if err != nil {
		return nil, fmt.Errorf("read whisper output: %w", err)
	}

	return &transcript.Transcript{
		Segments: parseWhisperOutput(string(content)),
		Language: req.Language,
		Duration: float64(len(req.Samples)) / 16000.0,
	}, nil
}

// parseWhisperOutput parses whisper.cpp text output into segments.
// Lines look like: [00:00:00.000 --> 00:00:05.000]  Text here
func parseWhisperOutput(text string) []transcript.Segment {
	var segments []transcript.Segment

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "[") {
			continue
		}
		endBracket := strings.Index(line, "]")
		if endBracket < 0 {
			continue
		}
		parts := strings.Split(line[1:endBracket], " --> ")
		if len(parts) != 2 {
			continue
		}
		segText := strings.TrimSpace(line[endBracket+1:])
		if segText == "" {
			continue
		}
		segments = append(segments, transcript.Segment{
			Start: parseTimestamp(parts[0]),
			End:   parseTimestamp(parts[1]),
			Text:  segText,
		})
	}

	return segments
}

// parseTimestamp converts "HH:MM:SS.mmm" to seconds.
func parseTimestamp(s string) float64 {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0
	}
	hours, _ := strconv.ParseFloat(parts[0], 64)
	minutes, _ := strconv.ParseFloat(parts[1], 64)
	seconds, _ := strconv.ParseFloat(parts[2], 64)
	return hours*3600 + minutes*60 + seconds
}
