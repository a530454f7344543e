package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Empty path",
			input:    "",
			expected: "",
		},
		{
			name:     "Absolute path",
			input:    "/absolute/path",
			expected: "/absolute/path",
		},
		{
			name:     "Home directory only",
			input:    "~",
			expected: home,
		},
		{
			name:     "Home directory with forward slash",
			input:    "~/models",
			expected: filepath.Join(home, "models"),
		},
		{
			name:     "Tilde in the middle is left alone",
			input:    "/path/~/test",
			expected: "/path/~/test",
		},
		{
			name:     "Tilde without separator is left alone",
			input:    "~user",
			expected: "~user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.expected {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Language != "auto" {
		t.Errorf("default language = %q, want auto", cfg.Language)
	}
	if cfg.Format != "txt" {
		t.Errorf("default format = %q, want txt", cfg.Format)
	}
	if cfg.Device != "auto" {
		t.Errorf("default device = %q, want auto", cfg.Device)
	}
	if cfg.Diarization.Enabled {
		t.Error("diarization should be off by default")
	}
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	cfg := &Config{
		Model:       "whisper-small",
		Language:    "fr",
		Format:      "srt",
		Device:      "cuda",
		ComputeType: "float16",
		Diarization: DiarizationConfig{
			Enabled:          true,
			ServiceURL:       "http://localhost:8388",
			HFTokenEncrypted: "b64data",
		},
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}

	var back Config
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != *cfg {
		t.Errorf("round trip mismatch:\n in: %+v\nout: %+v", cfg, back)
	}
}
