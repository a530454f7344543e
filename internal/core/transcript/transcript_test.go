package transcript

import (
	"reflect"
	"testing"
)

func TestValidateTurns(t *testing.T) {
	tests := []struct {
		name    string
		turns   []Turn
		wantErr bool
	}{
		{
			name:    "empty is valid",
			turns:   nil,
			wantErr: false,
		},
		{
			name: "well formed",
			turns: []Turn{
				{Start: 0, End: 1.5, Speaker: "SPEAKER_00"},
				{Start: 2, End: 3, Speaker: "SPEAKER_01"},
			},
			wantErr: false,
		},
		{
			name:    "end equals start",
			turns:   []Turn{{Start: 1, End: 1, Speaker: "A"}},
			wantErr: true,
		},
		{
			name:    "end before start",
			turns:   []Turn{{Start: 2, End: 1, Speaker: "A"}},
			wantErr: true,
		},
		{
			name: "one bad turn rejects the whole set",
			turns: []Turn{
				{Start: 0, End: 1, Speaker: "A"},
				{Start: 3, End: 2, Speaker: "B"},
			},
			wantErr: true,
		},
		{
			name:    "blank speaker",
			turns:   []Turn{{Start: 0, End: 1, Speaker: "  "}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTurns(tt.turns)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTurns() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSegments(t *testing.T) {
	good := []Segment{
		{Start: 0, End: 2, Text: "a"},
		{Start: 2, End: 4, Text: ""},
		{Start: 2, End: 5, Text: "overlapping starts are fine"},
	}
	if err := ValidateSegments(good); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	outOfOrder := []Segment{
		{Start: 3, End: 4, Text: "a"},
		{Start: 1, End: 2, Text: "b"},
	}
	if err := ValidateSegments(outOfOrder); err == nil {
		t.Error("expected error for out-of-order segments")
	}

	degenerate := []Segment{{Start: 2, End: 2, Text: "a"}}
	if err := ValidateSegments(degenerate); err == nil {
		t.Error("expected error for zero-length segment")
	}
}

func TestCloneIsDeep(t *testing.T) {
	tr := &Transcript{
		Language: "fr",
		Duration: 12.5,
		Segments: []Segment{{Start: 0, End: 1, Text: "bonjour"}},
	}
	cp := tr.Clone()
	if !reflect.DeepEqual(tr, cp) {
		t.Fatalf("clone differs: %+v vs %+v", tr, cp)
	}
	cp.Segments[0].Speaker = "A"
	if tr.Segments[0].Speaker != "" {
		t.Error("mutating the clone leaked into the original")
	}
}

func TestSpeakers(t *testing.T) {
	tr := &Transcript{Segments: []Segment{
		{Speaker: "B"},
		{Speaker: "A"},
		{Speaker: "B"},
		{Speaker: ""},
	}}
	got := tr.Speakers()
	want := []string{"A", "B"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Speakers() = %v, want %v", got, want)
	}
}
