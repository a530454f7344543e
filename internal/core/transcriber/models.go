package transcriber

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"

	"github.com/tmarchal/scriba/internal/core/config"
)

// DefaultModel is used when no model is specified.
const DefaultModel = "whisper-large-v3-turbo"

// Model describes a downloadable whisper.cpp model.
type Model struct {
	Name     string
	FileName string
	URL      string
	Size     int64 // approximate bytes, for display
}

// Models lists the supported whisper.cpp models, smallest first.
var Models = []Model{
	{
		Name:     "whisper-tiny",
		FileName: "ggml-tiny.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny.bin",
		Size:     77_700_000,
	},
	{
		Name:     "whisper-base",
		FileName: "ggml-base.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.bin",
		Size:     148_000_000,
	},
	{
		Name:     "whisper-small",
		FileName: "ggml-small.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.bin",
		Size:     488_000_000,
	},
	{
		Name:     "whisper-medium",
		FileName: "ggml-medium.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-medium.bin",
		Size:     1_530_000_000,
	},
	{
		Name:     "whisper-large-v3",
		FileName: "ggml-large-v3.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3.bin",
		Size:     3_100_000_000,
	},
	{
		Name:     "whisper-large-v3-turbo",
		FileName: "ggml-large-v3-turbo.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3-turbo.bin",
		Size:     1_620_000_000,
	},
}

// GetModel looks up a model by registry name.
func GetModel(name string) (Model, error) {
	for _, m := range Models {
		if m.Name == name {
			return m, nil
		}
	}
	return Model{}, fmt.Errorf("unknown model: %s (run 'scriba models list' to see available models)", name)
}

// DefaultModelsDir returns the default model storage directory.
func DefaultModelsDir() (string, error) {
	configDir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "models"), nil
}

// Manager handles model storage and downloads.
type Manager struct {
	dir string
}

// NewManager creates a Manager rooted at dir.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Path returns where the named model lives on disk.
func (m *Manager) Path(name string) (string, error) {
	model, err := GetModel(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(m.dir, model.FileName), nil
}

// IsDownloaded reports whether the named model is present.
func (m *Manager) IsDownloaded(name string) bool {
	path, err := m.Path(name)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}

// EnsurePath resolves the named model (or the default) to a local file,
// erroring with download instructions when it is missing.
func (m *Manager) EnsurePath(name string) (string, error) {
	if name == "" {
		name = DefaultModel
	}
	path, err := m.Path(name)
	if err != nil {
		return "", err
	}
	if !m.IsDownloaded(name) {
		return "", fmt.Errorf("model %s is not downloaded, run: scriba models download %s", name, name)
	}
	return path, nil
}

// Download fetches the named model. progress, if non-nil, receives
// downloaded and total byte counts as the transfer proceeds.
func (m *Manager) Download(ctx context.Context, name string, progress func(downloaded, total int64)) error {
	model, err := GetModel(name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return fmt.Errorf("create models directory: %w", err)
	}

	dest := filepath.Join(m.dir, model.FileName)
	partial := dest + ".partial"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, model.URL, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", model.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: HTTP %d", model.Name, resp.StatusCode)
	}

	out, err := os.Create(partial)
	if err != nil {
		return err
	}

	total := resp.ContentLength
	var downloaded int64
	buf := make([]byte, 1<<20)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				out.Close()
				os.Remove(partial)
				return writeErr
			}
			downloaded += int64(n)
			if progress != nil {
				progress(downloaded, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			out.Close()
			os.Remove(partial)
			return fmt.Errorf("download %s: %w", model.Name, readErr)
		}
	}

	if err := out.Close(); err != nil {
		os.Remove(partial)
		return err
	}

	return os.Rename(partial, dest)
}

// Remove deletes the named model from disk.
func (m *Manager) Remove(name string) error {
	path, err := m.Path(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("model %s is not downloaded", name)
	}
	return os.Remove(path)
}

// ListDownloaded returns the names of models present on disk, sorted.
func (m *Manager) ListDownloaded() []string {
	var names []string
	for _, model := range Models {
		if m.IsDownloaded(model.Name) {
			names = append(names, model.Name)
		}
	}
	sort.Strings(names)
	return names
}

// FormatBytes renders a byte count for humans.
func FormatBytes(n int64) string {
	const unit = 1000
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
