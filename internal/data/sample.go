package data

// Kind names the shape of a raw input.
type Kind string

const (
	KindAudio  Kind = "audio"
	KindRecord Kind = "record"
	KindImage  Kind = "image"
)

// Raw is an opaque raw input. Concrete values are Audio, Record and Image.
type Raw interface {
	Kind() Kind
}

// Audio is a PCM clip. Samples are interleaved when Channels > 1.
type Audio struct {
	SampleRate int
	Channels   int
	PCM        []float64
}

func (Audio) Kind() Kind { return KindAudio }

// Field is one named value of a Record.
type Field struct {
	Name  string
	Value string
}

// Record is an ordered row of named fields.
type Record struct {
	Fields []Field
}

func (Record) Kind() Kind { return KindRecord }

// Get returns the value of the named field.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Image is a grayscale pixel grid in row-major order, values in [0, 1].
type Image struct {
	Width  int
	Height int
	Pixels []float64
}

func (Image) Kind() Kind { return KindImage }

// At returns the pixel at column x, row y.
func (im Image) At(x, y int) float64 {
	return im.Pixels[y*im.Width+x]
}

// Sample is one labeled raw input. It is never modified after creation.
type Sample struct {
	ID    string
	Raw   Raw
	Label string
}

// NewSample copies raw so later changes by the caller do not leak in.
func NewSample(id string, raw Raw, label string) Sample {
	switch r := raw.(type) {
	case Audio:
		r.PCM = append([]float64(nil), r.PCM...)
		raw = r
	case Record:
		r.Fields = append([]Field(nil), r.Fields...)
		raw = r
	case Image:
		r.Pixels = append([]float64(nil), r.Pixels...)
		raw = r
	}
	return Sample{ID: id, Raw: raw, Label: label}
}
