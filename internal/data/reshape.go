package data

import (
	"github.com/shopspring/decimal"

	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

// ImageRecords reads each Record of src as a row-major Width x Height pixel
// grid, one field per pixel, dividing every value by Scale.
type ImageRecords struct {
	Source Source
	Width  int
	Height int
	Scale  float64
}

func (ir ImageRecords) Each(fn func(Sample) error) error {
	return ir.Source.Each(func(s Sample) error {
		values, err := recordValues(s, ir.Scale)
		if err != nil {
			return err
		}
		if len(values) != ir.Width*ir.Height {
			return mlerr.InvalidSample(s.ID, "%d values for a %dx%d image", len(values), ir.Width, ir.Height)
		}
		return fn(Sample{ID: s.ID, Raw: Image{Width: ir.Width, Height: ir.Height, Pixels: values}, Label: s.Label})
	})
}

// AudioRecords reads each Record of src as interleaved PCM values.
type AudioRecords struct {
	Source     Source
	SampleRate int
	Channels   int
	Scale      float64
}

func (ar AudioRecords) Each(fn func(Sample) error) error {
	return ar.Source.Each(func(s Sample) error {
		values, err := recordValues(s, ar.Scale)
		if err != nil {
			return err
		}
		return fn(Sample{ID: s.ID, Raw: Audio{SampleRate: ar.SampleRate, Channels: ar.Channels, PCM: values}, Label: s.Label})
	})
}

func recordValues(s Sample, scale float64) ([]float64, error) {
	rec, ok := s.Raw.(Record)
	if !ok {
		return nil, mlerr.InvalidSample(s.ID, "expected record, got %T", s.Raw)
	}
	if scale == 0 {
		scale = 1
	}
	values := make([]float64, len(rec.Fields))
	for i, f := range rec.Fields {
		d, err := decimal.NewFromString(f.Value)
		if err != nil {
			return nil, mlerr.InvalidSample(s.ID, "field %q: %v", f.Name, err)
		}
		values[i] = d.InexactFloat64() / scale
	}
	return values, nil
}
