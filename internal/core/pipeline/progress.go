package pipeline

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)

// Reporter prints coarse progress lines. Values are clamped to
// [0, 100] and never go backwards; a repeated value is printed again
// with its new message.
type Reporter struct {
	w    io.Writer
	last int
}

// NewReporter creates a Reporter writing to w. A nil w discards output.
func NewReporter(w io.Writer) *Reporter {
	if w == nil {
		w = io.Discard
	}
	return &Reporter{w: w, last: -1}
}

// Report emits a progress line at pct percent.
func (r *Reporter) Report(pct int, msg string) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	if pct < r.last {
		return
	}
	r.last = pct
	fmt.Fprintf(r.w, "%s %s\n", progressStyle.Render(fmt.Sprintf("[%3d%%]", pct)), msg)
}

// Last returns the highest value reported so far, or -1.
func (r *Reporter) Last() int {
	return r.last
}
