package diarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/tmarchal/scriba/internal/core/transcript"
)

const (
	defaultServiceURL = "http://localhost:8388"
	defaultTimeout    = 300 * time.Second
)

// Pyannote talks to a pyannote diarization HTTP service. The service
// authenticates against Hugging Face with the caller's token.
type Pyannote struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewPyannote creates the pyannote-backed diarizer. An empty baseURL
// falls back to the local sidecar default.
func NewPyannote(baseURL, token string) *Pyannote {
	if baseURL == "" {
		baseURL = defaultServiceURL
	}
	return &Pyannote{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// Name returns the provider name.
func (p *Pyannote) Name() string { return "pyannote" }

// SetToken replaces the access token, for retry after a credential failure.
func (p *Pyannote) SetToken(token string) {
	p.token = token
}

// Diarize uploads the audio and returns validated, sorted speaker turns.
func (p *Pyannote) Diarize(ctx context.Context, audioPath string, opts Options) ([]transcript.Turn, error) {
	if p.token == "" {
		return nil, &CredentialError{Err: fmt.Errorf("no Hugging Face token configured")}
	}

	audioData, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}

	if opts.NumSpeakers > 0 {
		_ = writer.WriteField("num_speakers", fmt.Sprintf("%d", opts.NumSpeakers))
	}
	if opts.MinSpeakers > 0 {
		_ = writer.WriteField("min_speakers", fmt.Sprintf("%d", opts.MinSpeakers))
	}
	if opts.MaxSpeakers > 0 {
		_ = writer.WriteField("max_speakers", fmt.Sprintf("%d", opts.MaxSpeakers))
	}
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/diarize", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("diarization request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		body, _ := io.ReadAll(resp.Body)
		return nil, &CredentialError{Err: fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body))}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("diarization error (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	var result pyannoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode diarization response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("diarization error: %s", result.Error)
	}

	turns := make([]transcript.Turn, len(result.Segments))
	for i, seg := range result.Segments {
		turns[i] = transcript.Turn{
			Start:   seg.StartTime,
			End:     seg.EndTime,
			Speaker: seg.SpeakerID,
		}
	}
	sort.Slice(turns, func(i, j int) bool { return turns[i].Start < turns[j].Start })

	if err := transcript.ValidateTurns(turns); err != nil {
		return nil, fmt.Errorf("diarization service returned invalid turns: %w", err)
	}

	return turns, nil
}

// IsAvailable checks if the diarization service is reachable.
func (p *Pyannote) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type pyannoteResponse struct {
	Segments    []pyannoteSegment `json:"segments"`
	NumSpeakers int               `json:"num_speakers"`
	Error       string            `json:"error,omitempty"`
}

type pyannoteSegment struct {
	SpeakerID string  `json:"speaker_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}
