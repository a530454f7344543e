package transcriber

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tmarchal/scriba/internal/core/transcript"
)

// OpenAI implements Transcriber using the OpenAI Whisper API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates the hosted transcription backend.
func NewOpenAI(opts Options) (Transcriber, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not provided (set OPENAI_API_KEY)")
	}

	clientConfig := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		clientConfig.BaseURL = opts.BaseURL
	}

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// Name returns the provider name.
func (o *OpenAI) Name() string {
	return "openai"
}

// Transcribe sends the audio file to the Whisper API, requesting verbose
// JSON so segment timestamps come back.
func (o *OpenAI) Transcribe(ctx context.Context, req Request) (*transcript.Transcript, error) {
	apiReq := openai.AudioRequest{
		Model:    o.model,
		FilePath: req.AudioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Prompt:   req.InitialPrompt,
	}
	if req.Language != "" && req.Language != "auto" {
		apiReq.Language = req.Language
	}

	resp, err := o.client.CreateTranscription(ctx, apiReq)
	if err != nil {
		return nil, fmt.Errorf("transcription API error: %w", err)
	}

	tr := &transcript.Transcript{
		Language: resp.Language,
		Duration: resp.Duration,
	}
	for _, seg := range resp.Segments {
		tr.Segments = append(tr.Segments, transcript.Segment{
			Start:        seg.Start,
			End:          seg.End,
			Text:         seg.Text,
			AvgLogprob:   seg.AvgLogprob,
			NoSpeechProb: seg.NoSpeechProb,
		})
	}

	return tr, nil
}
