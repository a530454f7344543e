// Package cli implements the scriba command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tmarchal/scriba/internal/core/config"
	"github.com/tmarchal/scriba/internal/core/crypto"
	"github.com/tmarchal/scriba/internal/core/diarize"
	"github.com/tmarchal/scriba/internal/core/output"
	"github.com/tmarchal/scriba/internal/core/pipeline"
	"github.com/tmarchal/scriba/internal/core/transcript"
	"github.com/tmarchal/scriba/internal/core/version"
)

var (
	flagModel       string
	flagProvider    string
	flagLanguage    string
	flagDevice      string
	flagComputeType string
	flagDiarize     bool
	flagNoDiarize   bool
	flagHFToken     string
	flagNumSpeakers int
	flagMinSpeakers int
	flagMaxSpeakers int
	flagPrompt      string
	flagOutput      string
	flagFormat      string
	flagDebug       bool
)

var rootCmd = &cobra.Command{
	Use:     "scriba <audio-file>",
	Short:   "Speaker-attributed audio transcription",
	Version: version.Version,
	Long: `Transcribe audio files with word timestamps and speaker labels.

Transcription runs locally through whisper.cpp (models are downloaded
to ~/.config/scriba/models/) or through the OpenAI API. Speaker
diarization uses a pyannote service and needs a Hugging Face token;
store one with 'scriba auth'.

Examples:
  scriba meeting.wav
  scriba interview.mp3 --diarize --num-speakers 2
  scriba podcast.flac -l fr -f srt -o episode.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
	// Errors are printed by runTranscribe with stage context.
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&flagModel, "model", "", "transcription model (default from config, else whisper-large-v3-turbo)")
	f.StringVar(&flagProvider, "provider", "local", "transcription backend: local, openai")
	f.StringVarP(&flagLanguage, "language", "l", "", "language code, or 'auto' to detect")
	f.StringVar(&flagDevice, "device", "", "compute device hint: auto, cpu, cuda")
	f.StringVar(&flagComputeType, "compute-type", "", "precision hint: int8, float16")
	f.BoolVar(&flagDiarize, "diarize", false, "label segments with speakers")
	f.BoolVar(&flagNoDiarize, "no-diarize", false, "disable diarization even if enabled in config")
	f.StringVar(&flagHFToken, "hf-token", "", "Hugging Face token for diarization (overrides stored token)")
	f.IntVar(&flagNumSpeakers, "num-speakers", 0, "exact speaker count, if known")
	f.IntVar(&flagMinSpeakers, "min-speakers", 0, "minimum speaker count")
	f.IntVar(&flagMaxSpeakers, "max-speakers", 0, "maximum speaker count")
	f.StringVar(&flagPrompt, "initial-prompt", "", "text hint fed to the transcriber")
	f.StringVarP(&flagOutput, "output", "o", "", "output path (default: input name + format extension)")
	f.StringVarP(&flagFormat, "format", "f", "", "output format: json, txt, srt")
	f.BoolVar(&flagDebug, "debug", false, "pass backend output through instead of suppressing it")
}

func Execute() error {
	return rootCmd.Execute()
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	audioPath := args[0]
	cfg := config.LoadOrDefault()

	pipeCfg, err := buildRunConfig(audioPath, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printBanner(pipeCfg)

	p := pipeline.New(*pipeCfg)
	p.PromptToken = promptHFToken

	res, err := p.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printSummary(res)
	return nil
}

// buildRunConfig merges flags over the stored config into one run config.
// Flags win; config fills gaps; built-in defaults fill the rest.
func buildRunConfig(audioPath string, cfg *config.Config) (*pipeline.Config, error) {
	format := firstNonEmpty(flagFormat, cfg.Format, output.FormatTXT)
	if !output.IsValidFormat(format) {
		return nil, fmt.Errorf("unsupported format %q (want json, txt or srt)", format)
	}

	if flagNumSpeakers > 0 && (flagMinSpeakers > 0 || flagMaxSpeakers > 0) {
		return nil, errors.New("--num-speakers cannot be combined with --min-speakers/--max-speakers")
	}
	if flagMinSpeakers > 0 && flagMaxSpeakers > 0 && flagMinSpeakers > flagMaxSpeakers {
		return nil, errors.New("--min-speakers exceeds --max-speakers")
	}

	device, computeType := resolveDevice(
		firstNonEmpty(flagDevice, cfg.Device, "auto"),
		firstNonEmpty(flagComputeType, cfg.ComputeType),
	)

	diarizeEnabled := cfg.Diarization.Enabled
	if flagDiarize {
		diarizeEnabled = true
	}
	if flagNoDiarize {
		diarizeEnabled = false
	}

	pipeCfg := &pipeline.Config{
		AudioPath:     audioPath,
		Provider:      flagProvider,
		Model:         firstNonEmpty(flagModel, cfg.Model),
		ModelsDir:     config.ExpandPath(cfg.ModelsDir),
		Language:      firstNonEmpty(flagLanguage, cfg.Language, "auto"),
		Device:        device,
		ComputeType:   computeType,
		InitialPrompt: flagPrompt,
		Diarize:       diarizeEnabled,
		DiarizeURL:    cfg.Diarization.ServiceURL,
		Speakers: diarize.Options{
			NumSpeakers: flagNumSpeakers,
			MinSpeakers: flagMinSpeakers,
			MaxSpeakers: flagMaxSpeakers,
		},
		OutputPath: flagOutput,
		Format:     format,
		Debug:      flagDebug,
	}

	if flagProvider == "openai" {
		pipeCfg.APIKey = os.Getenv("OPENAI_API_KEY")
		pipeCfg.BaseURL = cfg.OpenAI.BaseURL
		pipeCfg.Model = firstNonEmpty(flagModel, cfg.OpenAI.Model)
	}

	if diarizeEnabled {
		pipeCfg.HFToken = resolveHFToken(cfg)
	}

	return pipeCfg, nil
}

// resolveDevice turns the "auto" hint into a concrete device/precision
// pair. Apple machines get CPU with int8; elsewhere prefer CUDA with
// float16.
func resolveDevice(device, computeType string) (string, string) {
	if device == "auto" {
		if runtime.GOOS == "darwin" {
			device = "cpu"
		} else {
			device = "cuda"
		}
	}
	if computeType == "" {
		if device == "cpu" {
			computeType = "int8"
		} else {
			computeType = "float16"
		}
	}
	return device, computeType
}

// resolveHFToken picks the diarization token: flag, then environment,
// then the PIN-encrypted token from the config file.
func resolveHFToken(cfg *config.Config) string {
	if flagHFToken != "" {
		return flagHFToken
	}
	if tok := os.Getenv("HF_TOKEN"); tok != "" {
		return tok
	}
	if cfg.Diarization.HFTokenEncrypted == "" {
		return ""
	}

	pin, err := promptHidden("Enter PIN to unlock stored Hugging Face token: ")
	if err != nil {
		return ""
	}
	token, err := crypto.Decrypt(cfg.Diarization.HFTokenEncrypted, pin)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not decrypt stored token: %v\n", err)
		return ""
	}
	return token
}

var (
	bannerKeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	bannerValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	summaryStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)

func printBanner(cfg *pipeline.Config) {
	row := func(key, value string) {
		fmt.Fprintf(os.Stderr, "  %s %s\n", bannerKeyStyle.Render(key+":"), bannerValueStyle.Render(value))
	}

	fmt.Fprintln(os.Stderr)
	row("input", cfg.AudioPath)
	if cfg.Provider == "openai" {
		row("backend", "openai")
	} else {
		row("model", firstNonEmpty(cfg.Model, "whisper-large-v3-turbo"))
		row("device", fmt.Sprintf("%s (%s)", cfg.Device, cfg.ComputeType))
	}
	row("language", cfg.Language)
	row("diarize", fmt.Sprintf("%t", cfg.Diarize))
	row("format", cfg.Format)
	fmt.Fprintln(os.Stderr)
}

func printSummary(res *pipeline.Result) {
	fmt.Fprintln(os.Stderr)
	if res.Degraded {
		fmt.Fprintln(os.Stderr, "  Completed without speaker labels.")
	}

	tr := res.Transcript
	fmt.Fprintf(os.Stderr, "  Segments: %d", len(tr.Segments))
	if speakers := countSpeakers(tr); speakers > 0 {
		fmt.Fprintf(os.Stderr, "   Speakers: %d", speakers)
	}
	if tr.Language != "" && tr.Language != "auto" {
		fmt.Fprintf(os.Stderr, "   Language: %s", tr.Language)
	}
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "  %s %s\n", summaryStyle.Render("Saved:"), res.OutputPath)
}

// countSpeakers counts named speakers, leaving out the unknown sentinel.
func countSpeakers(tr *transcript.Transcript) int {
	n := 0
	for _, s := range tr.Speakers() {
		if s != transcript.Unknown {
			n++
		}
	}
	return n
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
