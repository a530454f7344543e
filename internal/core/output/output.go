// Package output serializes a labeled transcript into the supported artifact
// formats.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/tmarchal/scriba/internal/core/transcript"
)

// Supported output formats.
const (
	FormatJSON = "json"
	FormatTXT  = "txt"
	FormatSRT  = "srt"
)

// Formats lists the supported format names.
var Formats = []string{FormatJSON, FormatTXT, FormatSRT}

// IsValidFormat reports whether name is a supported output format.
func IsValidFormat(name string) bool {
	switch name {
	case FormatJSON, FormatTXT, FormatSRT:
		return true
	}
	return false
}

// Ext returns the file extension for a format, including the dot.
func Ext(format string) string {
	return "." + format
}

// Export renders the transcript in the given format and writes it to path.
func Export(path string, tr *transcript.Transcript, format string) error {
	data, err := Render(tr, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Render produces the artifact bytes for the given format.
func Render(tr *transcript.Transcript, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return renderJSON(tr)
	case FormatTXT:
		return renderTXT(tr), nil
	case FormatSRT:
		return renderSRT(tr), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (expected one of %s)", format, strings.Join(Formats, ", "))
	}
}

// renderJSON emits the full transcript as indented UTF-8 JSON. Non-ASCII
// characters stay literal, not escaped.
func renderJSON(tr *transcript.Transcript) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tr); err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	return buf.Bytes(), nil
}

// renderTXT writes one line per segment, "[speaker] text" when a speaker
// decision exists. The unknown sentinel is written literally.
func renderTXT(tr *transcript.Transcript) []byte {
	var b strings.Builder
	for _, seg := range tr.Segments {
		text := strings.TrimSpace(seg.Text)
		if seg.Speaker != "" {
			fmt.Fprintf(&b, "[%s] %s\n", seg.Speaker, text)
		} else {
			fmt.Fprintf(&b, "%s\n", text)
		}
	}
	return []byte(b.String())
}

// renderSRT writes SubRip cues: 1-based index, time range, text, blank line.
func renderSRT(tr *transcript.Transcript) []byte {
	var b strings.Builder
	for i, seg := range tr.Segments {
		text := strings.TrimSpace(seg.Text)
		if seg.Speaker != "" {
			text = fmt.Sprintf("[%s] %s", seg.Speaker, text)
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1,
			SecondsToSRTTime(seg.Start),
			SecondsToSRTTime(seg.End),
			text,
		)
	}
	return []byte(b.String())
}

// SecondsToSRTTime formats seconds as the SubRip timestamp
// "HH:MM:SS,mmm" (comma decimal separator). Negative and NaN inputs clamp
// to zero rather than failing.
func SecondsToSRTTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	hours := int(seconds / 3600)
	minutes := int(math.Mod(seconds, 3600) / 60)
	secs := int(math.Mod(seconds, 60))
	millis := int((seconds - math.Floor(seconds)) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
