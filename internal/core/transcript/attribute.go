package transcript

import "sort"

// candidate accumulates overlap evidence for one speaker label while a
// segment is resolved.
type candidate struct {
	overlap   float64 // total seconds of overlap with the segment
	turnStart float64 // start of the earliest contributing turn
}

// ResolveSpeaker returns the speaker label whose turns overlap the segment
// for the longest accumulated duration. Overlaps of several turns carrying
// the same label are summed, so a label can win across a diarization gap.
//
// Ties are broken deterministically: the label whose earliest contributing
// turn starts first wins; if those starts are equal too, the
// lexicographically smaller label wins. With no overlapping turn at all the
// Unknown sentinel is returned.
//
// The turns slice must be sorted by start time.
func ResolveSpeaker(seg Segment, turns []Turn) string {
	return resolveFrom(seg, turns, 0)
}

// resolveFrom is ResolveSpeaker starting the scan at turns[lo], which lets
// Attribute sweep both sorted sequences in one pass.
func resolveFrom(seg Segment, turns []Turn, lo int) string {
	acc := make(map[string]candidate)

	for i := lo; i < len(turns); i++ {
		t := turns[i]
		if t.Start >= seg.End {
			break // sorted: nothing later can overlap
		}
		o := seg.Overlap(t)
		if o <= 0 {
			continue
		}
		c, ok := acc[t.Speaker]
		if !ok {
			acc[t.Speaker] = candidate{overlap: o, turnStart: t.Start}
			continue
		}
		c.overlap += o
		if t.Start < c.turnStart {
			c.turnStart = t.Start
		}
		acc[t.Speaker] = c
	}

	if len(acc) == 0 {
		return Unknown
	}

	var best string
	var bestC candidate
	for label, c := range acc {
		if best == "" || beats(label, c, best, bestC) {
			best, bestC = label, c
		}
	}
	return best
}

// beats reports whether candidate (label, c) wins over the current best.
func beats(label string, c candidate, bestLabel string, best candidate) bool {
	if c.overlap != best.overlap {
		return c.overlap > best.overlap
	}
	if c.turnStart != best.turnStart {
		return c.turnStart < best.turnStart
	}
	return label < bestLabel
}

// Attribute returns a new transcript in which every segment carries a
// speaker decision: a diarization label, or Unknown when no turn overlaps.
// Segment order, times and text are untouched.
//
// With no turns at all the input transcript is returned unchanged, speaker
// fields left empty: "diarization never ran" must stay observable, and
// distinct from "diarization found nothing" (Unknown). Attribute is pure
// and idempotent with respect to its inputs.
func Attribute(tr *Transcript, turns []Turn) *Transcript {
	if len(turns) == 0 {
		return tr
	}

	sorted := make([]Turn, len(turns))
	copy(sorted, turns)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	out := tr.Clone()
	lo := 0
	for i := range out.Segments {
		seg := &out.Segments[i]
		// Turns entirely before this segment cannot overlap it, nor any
		// later segment (segments arrive in non-decreasing start order).
		for lo < len(sorted) && sorted[lo].End <= seg.Start {
			lo++
		}
		seg.Speaker = resolveFrom(*seg, sorted, lo)
	}
	return out
}
