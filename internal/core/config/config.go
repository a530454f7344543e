// Package config loads and persists scriba's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ConfigFileName = "config.yml"
	AppDirName     = "scriba"
)

// ConfigDir returns the standard config directory for scriba.
// Windows: %APPDATA%\scriba\
// macOS/Linux: ~/.config/scriba/
func ConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, AppDirName), nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppDirName), nil
}

// ConfigPath returns the path to the config file.
// e.g., ~/.config/scriba/config.yml
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

type Config struct {
	// Model is the default transcription model (e.g., "whisper-large-v3-turbo")
	Model string `yaml:"model,omitempty"`

	// Language is the default transcription language ("auto" = detect)
	Language string `yaml:"language,omitempty"`

	// Format is the default output format ("json", "txt" or "srt")
	Format string `yaml:"format,omitempty"`

	// Device hint passed to the transcription backend ("auto", "cpu", "cuda")
	Device string `yaml:"device,omitempty"`

	// ComputeType hint passed to the transcription backend ("int8", "float16")
	ComputeType string `yaml:"compute_type,omitempty"`

	// ModelsDir overrides where ggml models are stored
	ModelsDir string `yaml:"models_dir,omitempty"`

	// Diarization configures speaker diarization
	Diarization DiarizationConfig `yaml:"diarization,omitempty"`

	// OpenAI configures the hosted transcription backend
	OpenAI OpenAIConfig `yaml:"openai,omitempty"`
}

// DiarizationConfig holds speaker diarization settings.
type DiarizationConfig struct {
	// Enabled turns diarization on by default
	Enabled bool `yaml:"enabled,omitempty"`

	// ServiceURL is the pyannote diarization service endpoint
	ServiceURL string `yaml:"service_url,omitempty"`

	// HFTokenEncrypted is the Hugging Face token, AES-GCM encrypted with a
	// user PIN (see internal/core/crypto). Never stored in the clear.
	HFTokenEncrypted string `yaml:"hf_token_encrypted,omitempty"`
}

// OpenAIConfig holds settings for the OpenAI Whisper API backend.
type OpenAIConfig struct {
	// BaseURL overrides the API endpoint (for compatible gateways)
	BaseURL string `yaml:"base_url,omitempty"`

	// Model is the API model name (default "whisper-1")
	Model string `yaml:"model,omitempty"`
}

// Default returns a config with the built-in defaults applied.
func Default() *Config {
	return &Config{
		Language: "auto",
		Format:   "txt",
		Device:   "auto",
	}
}

// Load reads the config file. A missing file yields the defaults, not an
// error.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads the config, falling back to defaults on any error.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Save writes the config file, creating the config directory if needed.
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}
	if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
