// Package features turns raw samples into fixed-length numeric vectors.
//
// Every extractor is a pure function of its configuration and the sample: the
// same input always yields the same vector, and every vector produced by one
// configuration has length Dim().
package features

import (
	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

// Vector is a fixed-arity feature vector.
type Vector []float64

// Clone returns a copy of v.
func (v Vector) Clone() Vector {
	return append(Vector(nil), v...)
}

// Extractor maps one sample to a vector of length Dim().
type Extractor interface {
	Extract(s data.Sample) (Vector, error)
	Dim() int
	Name() string
}

// ExtractAll extracts every sample or none: on the first failure no vectors
// are returned.
func ExtractAll(ex Extractor, samples []data.Sample) ([]Vector, error) {
	out := make([]Vector, len(samples))
	for i, s := range samples {
		v, err := ex.Extract(s)
		if err != nil {
			return nil, err
		}
		if len(v) != ex.Dim() {
			return nil, mlerr.ShapeMismatch(i, ex.Dim(), len(v))
		}
		out[i] = v
	}
	return out, nil
}

// Kind selects an extractor family.
type Kind string

const (
	KindAudio   Kind = "audio"
	KindTabular Kind = "tabular"
	KindImage   Kind = "image"
)

// Spec is the serialisable configuration of any extractor.
type Spec struct {
	Kind    Kind           `yaml:"kind"`
	Audio   *AudioConfig   `yaml:"audio,omitempty"`
	Tabular *TabularConfig `yaml:"tabular,omitempty"`
	Image   *ImageConfig   `yaml:"image,omitempty"`
	Cache   int            `yaml:"cache,omitempty"`
}

// New builds the extractor described by spec. A positive Cache wraps it in an
// LRU keyed by sample id.
func New(spec Spec) (Extractor, error) {
	var (
		ex  Extractor
		err error
	)
	switch spec.Kind {
	case KindAudio:
		if spec.Audio == nil {
			return nil, errors.New("audio extractor requires an audio section")
		}
		ex, err = NewAudioExtractor(*spec.Audio)
	case KindTabular:
		if spec.Tabular == nil {
			return nil, errors.New("tabular extractor requires a tabular section")
		}
		ex, err = NewTabularExtractor(*spec.Tabular)
	case KindImage:
		if spec.Image == nil {
			return nil, errors.New("image extractor requires an image section")
		}
		ex, err = NewImageExtractor(*spec.Image)
	default:
		return nil, errors.Errorf("unknown extractor kind: %q", spec.Kind)
	}
	if err != nil {
		return nil, err
	}
	if spec.Cache > 0 {
		return NewCachedExtractor(ex, spec.Cache)
	}
	return ex, nil
}
