package transcript

import (
	"reflect"
	"testing"
)

func TestResolveSpeaker(t *testing.T) {
	tests := []struct {
		name  string
		seg   Segment
		turns []Turn
		want  string
	}{
		{
			name:  "no turns",
			seg:   Segment{Start: 0, End: 2},
			turns: nil,
			want:  Unknown,
		},
		{
			name: "no overlap at all",
			seg:  Segment{Start: 10, End: 12},
			turns: []Turn{
				{Start: 0, End: 3, Speaker: "A"},
				{Start: 3, End: 5, Speaker: "B"},
			},
			want: Unknown,
		},
		{
			name: "single containing turn",
			seg:  Segment{Start: 1, End: 2},
			turns: []Turn{
				{Start: 0, End: 5, Speaker: "A"},
			},
			want: "A",
		},
		{
			name: "largest overlap wins",
			seg:  Segment{Start: 0, End: 4},
			turns: []Turn{
				{Start: 0, End: 1, Speaker: "A"},
				{Start: 1, End: 4, Speaker: "B"},
			},
			want: "B",
		},
		{
			name: "same label summed across a gap",
			seg:  Segment{Start: 0, End: 6},
			turns: []Turn{
				{Start: 0, End: 2, Speaker: "A"},
				{Start: 2, End: 5, Speaker: "B"},
				{Start: 5, End: 6, Speaker: "A"},
			},
			// A: 2+1=3s, B: 3s -> tie, A's earliest turn starts first.
			want: "A",
		},
		{
			name: "tie broken by earliest turn start",
			seg:  Segment{Start: 2, End: 4},
			turns: []Turn{
				{Start: 0, End: 3, Speaker: "A"},
				{Start: 3, End: 4, Speaker: "B"},
			},
			// Both overlap exactly 1s; A's turn starts earlier.
			want: "A",
		},
		{
			name: "tie with equal turn starts broken lexicographically",
			seg:  Segment{Start: 0, End: 2},
			turns: []Turn{
				{Start: 0, End: 1, Speaker: "B"},
				{Start: 0, End: 1, Speaker: "A"},
			},
			want: "A",
		},
		{
			name: "touching boundaries do not overlap",
			seg:  Segment{Start: 2, End: 4},
			turns: []Turn{
				{Start: 0, End: 2, Speaker: "A"},
				{Start: 4, End: 6, Speaker: "B"},
			},
			want: Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveSpeaker(tt.seg, tt.turns)
			if got != tt.want {
				t.Errorf("ResolveSpeaker() = %q, want %q", got, tt.want)
			}
		})
	}
}

// The chosen speaker's accumulated overlap must never be strictly dominated
// by another label's.
func TestResolveSpeakerNeverDominated(t *testing.T) {
	seg := Segment{Start: 1.5, End: 7.25}
	turns := []Turn{
		{Start: 0, End: 2, Speaker: "A"},
		{Start: 2, End: 3, Speaker: "B"},
		{Start: 3, End: 4.5, Speaker: "A"},
		{Start: 4.5, End: 6, Speaker: "C"},
		{Start: 6, End: 9, Speaker: "B"},
	}

	got := ResolveSpeaker(seg, turns)

	acc := make(map[string]float64)
	for _, turn := range turns {
		acc[turn.Speaker] += seg.Overlap(turn)
	}
	for label, total := range acc {
		if total > acc[got] {
			t.Errorf("label %q accumulates %.3fs > chosen %q with %.3fs", label, total, got, acc[got])
		}
	}
}

func TestAttribute(t *testing.T) {
	tr := &Transcript{
		Language: "en",
		Segments: []Segment{
			{Start: 0, End: 2, Text: "hello"},
			{Start: 2, End: 4, Text: "world"},
		},
	}
	turns := []Turn{
		{Start: 0, End: 3, Speaker: "A"},
		{Start: 3, End: 4, Speaker: "B"},
	}

	got := Attribute(tr, turns)

	// Segment 2 overlaps A and B for 1s each; the tie resolves to A, whose
	// turn starts earlier.
	want := []string{"A", "A"}
	for i, seg := range got.Segments {
		if seg.Speaker != want[i] {
			t.Errorf("segment %d: speaker = %q, want %q", i, seg.Speaker, want[i])
		}
	}

	// Inputs untouched.
	for i, seg := range tr.Segments {
		if seg.Speaker != "" {
			t.Errorf("input segment %d mutated: speaker = %q", i, seg.Speaker)
		}
	}
	if got.Segments[0].Text != "hello" || got.Segments[1].Text != "world" {
		t.Error("segment text changed during attribution")
	}
}

func TestAttributeUnknownForUncovered(t *testing.T) {
	tr := &Transcript{Segments: []Segment{
		{Start: 0, End: 1, Text: "covered"},
		{Start: 10, End: 11, Text: "uncovered"},
	}}
	turns := []Turn{{Start: 0, End: 1, Speaker: "A"}}

	got := Attribute(tr, turns)
	if got.Segments[0].Speaker != "A" {
		t.Errorf("segment 0: speaker = %q, want %q", got.Segments[0].Speaker, "A")
	}
	if got.Segments[1].Speaker != Unknown {
		t.Errorf("segment 1: speaker = %q, want the %q sentinel", got.Segments[1].Speaker, Unknown)
	}
}

func TestAttributeNoTurnsReturnsInputUnchanged(t *testing.T) {
	tr := &Transcript{Segments: []Segment{{Start: 0, End: 1, Text: "hi"}}}

	for _, turns := range [][]Turn{nil, {}} {
		got := Attribute(tr, turns)
		if got != tr {
			t.Error("expected the input transcript back when no turns exist")
		}
		if got.Segments[0].Speaker != "" {
			t.Errorf("speaker = %q, want empty (diarization never ran)", got.Segments[0].Speaker)
		}
	}
}

func TestAttributeIdempotent(t *testing.T) {
	tr := &Transcript{Segments: []Segment{
		{Start: 0, End: 2, Text: "a"},
		{Start: 1.5, End: 3, Text: "b"},
		{Start: 3, End: 8, Text: "c"},
	}}
	turns := []Turn{
		{Start: 0, End: 1, Speaker: "S1"},
		{Start: 1, End: 4, Speaker: "S2"},
		{Start: 4, End: 6, Speaker: "S1"},
	}

	once := Attribute(tr, turns)
	twice := Attribute(once, turns)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("attribution not idempotent:\n once: %+v\ntwice: %+v", once, twice)
	}
}

// Sweep result must match a naive per-segment scan on a larger input.
func TestAttributeMatchesNaiveScan(t *testing.T) {
	var segs []Segment
	for i := 0; i < 50; i++ {
		start := float64(i) * 1.3
		segs = append(segs, Segment{Start: start, End: start + 1.1, Text: "x"})
	}
	var turns []Turn
	speakers := []string{"A", "B", "C"}
	for i := 0; i < 40; i++ {
		start := float64(i) * 1.7
		turns = append(turns, Turn{Start: start, End: start + 1.6, Speaker: speakers[i%3]})
	}

	got := Attribute(&Transcript{Segments: segs}, turns)
	for i, seg := range segs {
		want := ResolveSpeaker(seg, turns)
		if got.Segments[i].Speaker != want {
			t.Errorf("segment %d: sweep chose %q, naive scan %q", i, got.Segments[i].Speaker, want)
		}
	}
}
