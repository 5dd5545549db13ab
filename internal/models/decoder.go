package models

import (
	"sort"

	"github.com/pkg/errors"
)

// Decoder collapses per-frame class distributions into a symbol sequence.
// frameScores[t][k] is the probability of class k at frame t.
type Decoder interface {
	Decode(frameScores [][]float64) []int
}

// GreedyDecoder takes the most probable class of each frame (ties go to the
// lowest index), merges runs of the same class and then drops the blank. A
// blank between two equal symbols therefore keeps both.
type GreedyDecoder struct {
	Blank int
}

func (g GreedyDecoder) Decode(frameScores [][]float64) []int {
	out := []int{}
	prev := -1
	for _, frame := range frameScores {
		best := argmax(frame)
		if best != prev && best != g.Blank {
			out = append(out, best)
		}
		prev = best
	}
	return out
}

// BeamDecoder runs a CTC prefix beam search keeping Width prefixes per frame.
// Prefixes of equal probability are ordered by their symbols, shorter first.
type BeamDecoder struct {
	Blank int
	Width int
}

type beam struct {
	prefix   []int
	blank    float64 // probability of the prefix with the last frame blank
	nonBlank float64
}

func (b *beam) total() float64 { return b.blank + b.nonBlank }

func prefixKey(p []int) string {
	r := make([]rune, len(p))
	for i, s := range p {
		r[i] = rune(s + 1)
	}
	return string(r)
}

func (bd BeamDecoder) Decode(frameScores [][]float64) []int {
	width := bd.Width
	if width <= 0 {
		width = 8
	}

	beams := []*beam{{prefix: []int{}, blank: 1}}
	for _, probs := range frameScores {
		next := make(map[string]*beam)
		get := func(p []int) *beam {
			key := prefixKey(p)
			b, ok := next[key]
			if !ok {
				b = &beam{prefix: p}
				next[key] = b
			}
			return b
		}

		for _, b := range beams {
			get(b.prefix).blank += b.total() * probs[bd.Blank]

			last := -1
			if len(b.prefix) > 0 {
				last = b.prefix[len(b.prefix)-1]
			}
			for c, pc := range probs {
				if c == bd.Blank || pc == 0 {
					continue
				}
				extended := append(append(make([]int, 0, len(b.prefix)+1), b.prefix...), c)
				if c == last {
					get(extended).nonBlank += b.blank * pc
					get(b.prefix).nonBlank += b.nonBlank * pc
				} else {
					get(extended).nonBlank += b.total() * pc
				}
			}
		}

		beams = beams[:0]
		norm := 0.0
		for _, b := range next {
			beams = append(beams, b)
			norm += b.total()
		}
		sortBeams(beams)
		if len(beams) > width {
			beams = beams[:width]
		}
		if norm > 0 {
			for _, b := range beams {
				b.blank /= norm
				b.nonBlank /= norm
			}
		}
	}

	sortBeams(beams)
	return beams[0].prefix
}

func sortBeams(beams []*beam) {
	sort.Slice(beams, func(i, j int) bool {
		ti, tj := beams[i].total(), beams[j].total()
		if ti != tj {
			return ti > tj
		}
		return lessPrefix(beams[i].prefix, beams[j].prefix)
	})
}

func lessPrefix(a, b []int) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// DecoderSpec is the serialisable choice of decoding strategy.
type DecoderSpec struct {
	Kind  string `yaml:"kind"`
	Width int    `yaml:"width,omitempty"`
}

// NewDecoder builds the decoder named by spec for the given blank index.
func NewDecoder(spec DecoderSpec, blank int) (Decoder, error) {
	switch spec.Kind {
	case "", "greedy":
		return GreedyDecoder{Blank: blank}, nil
	case "beam":
		return BeamDecoder{Blank: blank, Width: spec.Width}, nil
	default:
		return nil, errors.Errorf("unknown decoder %q", spec.Kind)
	}
}
