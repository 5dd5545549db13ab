package models

import (
	"reflect"
	"testing"
)

const (
	symA  = 0
	symB  = 1
	blank = 2
)

func TestGreedyDecoder(t *testing.T) {
	dec := GreedyDecoder{Blank: blank}

	tests := []struct {
		name   string
		frames [][]float64
		want   []int
	}{
		{
			name:   "blank separates repeats",
			frames: [][]float64{{.9, 0, .1}, {.1, 0, .9}, {.9, 0, .1}},
			want:   []int{symA, symA},
		},
		{
			name:   "adjacent repeats merge",
			frames: [][]float64{{.9, 0, .1}, {.9, 0, .1}},
			want:   []int{symA},
		},
		{
			name:   "all blank",
			frames: [][]float64{{0, 0, 1}, {0, 0, 1}},
			want:   []int{},
		},
		{
			name:   "tie goes to lowest index",
			frames: [][]float64{{.5, .5, 0}},
			want:   []int{symA},
		},
		{
			name:   "two symbols",
			frames: [][]float64{{.8, .1, .1}, {.1, .1, .8}, {.1, .8, .1}, {.1, .8, .1}},
			want:   []int{symA, symB},
		},
		{
			name:   "no frames",
			frames: nil,
			want:   []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dec.Decode(tt.frames); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBeamDecoderSumsPaths(t *testing.T) {
	// Each frame prefers blank, but the three paths that emit "a" together
	// outweigh the single all-blank path: .16 + .24 + .24 > .36.
	frames := [][]float64{{.4, .6}, {.4, .6}}

	greedy := GreedyDecoder{Blank: 1}.Decode(frames)
	if len(greedy) != 0 {
		t.Errorf("greedy = %v, want empty", greedy)
	}

	beamOut := BeamDecoder{Blank: 1, Width: 4}.Decode(frames)
	if !reflect.DeepEqual(beamOut, []int{0}) {
		t.Errorf("beam = %v, want [0]", beamOut)
	}
}

func TestBeamMatchesGreedyOnConfidentFrames(t *testing.T) {
	frames := [][]float64{{.9, .05, .05}, {.05, .05, .9}, {.9, .05, .05}, {.05, .9, .05}}
	greedy := GreedyDecoder{Blank: blank}.Decode(frames)
	beamOut := BeamDecoder{Blank: blank}.Decode(frames)
	if !reflect.DeepEqual(greedy, beamOut) {
		t.Errorf("greedy %v and beam %v disagree", greedy, beamOut)
	}
	if !reflect.DeepEqual(beamOut, []int{symA, symA, symB}) {
		t.Errorf("beam = %v", beamOut)
	}
}

func TestNewDecoder(t *testing.T) {
	for _, kind := range []string{"", "greedy"} {
		d, err := NewDecoder(DecoderSpec{Kind: kind}, blank)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := d.(GreedyDecoder); !ok {
			t.Errorf("kind %q built %T", kind, d)
		}
	}

	d, err := NewDecoder(DecoderSpec{Kind: "beam", Width: 3}, blank)
	if err != nil {
		t.Fatal(err)
	}
	if bd, ok := d.(BeamDecoder); !ok || bd.Width != 3 || bd.Blank != blank {
		t.Errorf("beam decoder = %#v", d)
	}

	if _, err := NewDecoder(DecoderSpec{Kind: "viterbi"}, blank); err == nil {
		t.Error("unknown decoder accepted")
	}
}
