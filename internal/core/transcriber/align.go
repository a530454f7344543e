package transcriber

import (
	"context"
	"math"

	"github.com/tmarchal/scriba/internal/core/transcript"
)

// Aligner refines segment timestamps against the raw audio.
type Aligner interface {
	Align(ctx context.Context, tr *transcript.Transcript, samples []float32, sampleRate int) (*transcript.Transcript, error)
}

// EnergyAligner tightens segment boundaries by trimming leading and
// trailing low-energy audio. Boundaries only ever move inward, so
// segment ordering is preserved.
type EnergyAligner struct {
	// FrameDur is the analysis frame length in seconds.
	FrameDur float64

	// SilenceRatio scales the clip's mean RMS into the silence threshold.
	SilenceRatio float64
}

// NewEnergyAligner returns an aligner with 20ms frames and a threshold
// of a quarter of the clip's mean energy.
func NewEnergyAligner() *EnergyAligner {
	return &EnergyAligner{FrameDur: 0.02, SilenceRatio: 0.25}
}

// Align snaps each segment's boundaries to the nearest speech frames
// inside it. Segments that are entirely quiet are left untouched.
func (a *EnergyAligner) Align(ctx context.Context, tr *transcript.Transcript, samples []float32, sampleRate int) (*transcript.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(samples) == 0 || len(tr.Segments) == 0 {
		return tr, nil
	}

	frameLen := int(a.FrameDur * float64(sampleRate))
	if frameLen < 1 {
		frameLen = 1
	}

	energies := frameRMS(samples, frameLen)
	threshold := a.SilenceRatio * mean(energies)

	out := tr.Clone()
	var prevStart float64
	for i := range out.Segments {
		seg := &out.Segments[i]

		startFrame := int(seg.Start * float64(sampleRate) / float64(frameLen))
		endFrame := int(math.Ceil(seg.End * float64(sampleRate) / float64(frameLen)))
		if startFrame < 0 {
			startFrame = 0
		}
		if endFrame > len(energies) {
			endFrame = len(energies)
		}
		if startFrame >= endFrame {
			continue
		}

		first, last := speechSpan(energies[startFrame:endFrame], threshold)
		if first < 0 {
			continue // no frame above threshold, keep the original bounds
		}

		newStart := float64((startFrame+first)*frameLen) / float64(sampleRate)
		newEnd := float64((startFrame+last+1)*frameLen) / float64(sampleRate)

		// Move inward only.
		if newStart > seg.Start && newStart < seg.End {
			seg.Start = newStart
		}
		if newEnd < seg.End && newEnd > seg.Start {
			seg.End = newEnd
		}

		// Refinement must not break ordering.
		if seg.Start < prevStart {
			seg.Start = prevStart
		}
		if seg.End <= seg.Start {
			seg.End = seg.Start + a.FrameDur
		}
		prevStart = seg.Start
	}

	return out, nil
}

// frameRMS computes per-frame root-mean-square energy.
func frameRMS(samples []float32, frameLen int) []float64 {
	n := len(samples) / frameLen
	if len(samples)%frameLen != 0 {
		n++
	}
	energies := make([]float64, 0, n)
	for off := 0; off < len(samples); off += frameLen {
		end := off + frameLen
		if end > len(samples) {
			end = len(samples)
		}
		var sum float64
		for _, s := range samples[off:end] {
			sum += float64(s) * float64(s)
		}
		energies = append(energies, math.Sqrt(sum/float64(end-off)))
	}
	return energies
}

// speechSpan returns the first and last frame index at or above the
// threshold, or (-1, -1) when every frame is below it.
func speechSpan(energies []float64, threshold float64) (first, last int) {
	first, last = -1, -1
	for i, e := range energies {
		if e >= threshold {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	return first, last
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
