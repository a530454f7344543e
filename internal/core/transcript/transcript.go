// Package transcript defines the segment and speaker-turn value types shared
// across the transcription pipeline, plus the speaker attribution logic that
// fuses diarization turns into a transcript.
package transcript

import (
	"fmt"
	"sort"
	"strings"
)

// Unknown is the sentinel speaker label assigned to a segment that overlaps
// no diarization turn at all. It is distinct from an empty Speaker field,
// which means diarization never ran.
const Unknown = "unknown"

// Segment is a timestamped span of transcribed speech. Times are seconds
// from the start of the recording.
type Segment struct {
	Start        float64 `json:"start"`
	End          float64 `json:"end"`
	Text         string  `json:"text"`
	Speaker      string  `json:"speaker,omitempty"`
	AvgLogprob   float64 `json:"avg_logprob,omitempty"`
	NoSpeechProb float64 `json:"no_speech_prob,omitempty"`
}

// Overlap returns the duration in seconds during which the segment and the
// turn are both active. Zero when they do not intersect.
func (s Segment) Overlap(t Turn) float64 {
	o := min(s.End, t.End) - max(s.Start, t.Start)
	if o < 0 {
		return 0
	}
	return o
}

// Turn is a diarization-produced span of time attributed to one speaker.
type Turn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Transcript is the ordered sequence of segments for one recording.
// Segment order is established by the transcription backend and preserved
// verbatim through every later stage.
type Transcript struct {
	Segments []Segment `json:"segments"`
	Language string    `json:"language,omitempty"`
	Duration float64   `json:"duration,omitempty"`
}

// Clone returns a deep copy. The copy shares no segment storage with the
// receiver.
func (t *Transcript) Clone() *Transcript {
	out := &Transcript{
		Language: t.Language,
		Duration: t.Duration,
	}
	if t.Segments != nil {
		out.Segments = make([]Segment, len(t.Segments))
		copy(out.Segments, t.Segments)
	}
	return out
}

// Speakers returns the sorted set of distinct speaker labels present in the
// transcript. Segments with no speaker assigned are skipped.
func (t *Transcript) Speakers() []string {
	seen := make(map[string]struct{})
	for _, seg := range t.Segments {
		if seg.Speaker != "" {
			seen[seg.Speaker] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ValidateSegments checks the ordering and time-range invariants the
// transcription backend is expected to uphold.
func ValidateSegments(segments []Segment) error {
	prev := 0.0
	for i, seg := range segments {
		if seg.Start < 0 {
			return fmt.Errorf("segment %d: negative start %.3f", i, seg.Start)
		}
		if seg.End <= seg.Start {
			return fmt.Errorf("segment %d: end %.3f <= start %.3f", i, seg.End, seg.Start)
		}
		if seg.Start < prev {
			return fmt.Errorf("segment %d: start %.3f before previous segment start %.3f", i, seg.Start, prev)
		}
		prev = seg.Start
	}
	return nil
}

// ValidateTurns checks every turn is a proper interval with a speaker label.
// A single malformed turn rejects the whole diarization result: attribution
// against a partially valid turn set would silently mislabel segments.
func ValidateTurns(turns []Turn) error {
	for i, t := range turns {
		if t.End <= t.Start {
			return fmt.Errorf("turn %d: end %.3f <= start %.3f", i, t.End, t.Start)
		}
		if strings.TrimSpace(t.Speaker) == "" {
			return fmt.Errorf("turn %d: empty speaker label", i)
		}
	}
	return nil
}
