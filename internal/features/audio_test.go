package features

import (
	"math"
	"testing"

	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

func tone(freq float64, rate, n int) []float64 {
	pcm := make([]float64, n)
	for i := range pcm {
		pcm[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return pcm
}

func clip(id string, pcm []float64) data.Sample {
	return data.NewSample(id, data.Audio{SampleRate: 8000, Channels: 1, PCM: pcm}, "")
}

func TestAudioSummary(t *testing.T) {
	ex, err := NewAudioExtractor(AudioConfig{SampleRate: 8000, WindowSize: 256, Bands: 4})
	if err != nil {
		t.Fatal(err)
	}
	if ex.Dim() != 2*(4+4) {
		t.Fatalf("Dim() = %d, want 16", ex.Dim())
	}

	low, err := ex.Extract(clip("low", tone(200, 8000, 4000)))
	if err != nil {
		t.Fatal(err)
	}
	high, err := ex.Extract(clip("high", tone(2000, 8000, 4000)))
	if err != nil {
		t.Fatal(err)
	}
	if len(low) != ex.Dim() || len(high) != ex.Dim() {
		t.Fatalf("vector lengths %d, %d, want %d", len(low), len(high), ex.Dim())
	}
	// Means: [0] log energy, [1] zero crossing rate, [2] centroid.
	if high[1] <= low[1] {
		t.Errorf("zero crossing rate: high %v <= low %v", high[1], low[1])
	}
	if high[2] <= low[2] {
		t.Errorf("spectral centroid: high %v <= low %v", high[2], low[2])
	}
	if math.Abs(high[0]-low[0]) > 0.5 {
		t.Errorf("equal amplitude tones differ in log energy: %v vs %v", high[0], low[0])
	}
}

func TestAudioDeterministic(t *testing.T) {
	ex, _ := NewAudioExtractor(AudioConfig{SampleRate: 8000, WindowSize: 128, Frames: 5})
	s := clip("a", tone(440, 8000, 1000))
	first, err := ex.Extract(s)
	if err != nil {
		t.Fatal(err)
	}
	second, _ := ex.Extract(s)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("feature %d differs between calls: %v vs %v", i, first[i], second[i])
		}
	}
	if len(first) != 5*ex.FrameDim() {
		t.Errorf("len = %d, want %d", len(first), 5*ex.FrameDim())
	}
}

func TestAudioFramesPadded(t *testing.T) {
	ex, _ := NewAudioExtractor(AudioConfig{SampleRate: 8000, WindowSize: 128, HopSize: 128, Frames: 10})
	v, err := ex.Extract(clip("short", tone(440, 8000, 256)))
	if err != nil {
		t.Fatal(err)
	}
	quiet, err := ex.Extract(clip("quiet", make([]float64, 128)))
	if err != nil {
		t.Fatal(err)
	}
	silent := quiet[:ex.FrameDim()]
	if silent[0] > -20 {
		t.Fatalf("silent log energy = %v", silent[0])
	}

	// Two real frames, the rest read as silence.
	dim := ex.FrameDim()
	for i := 2 * dim; i < len(v); i++ {
		if v[i] != silent[i%dim] {
			t.Fatalf("padding value %d = %v, want %v", i, v[i], silent[i%dim])
		}
	}
	if v[0] <= silent[0] {
		t.Errorf("tone log energy %v not above silence %v", v[0], silent[0])
	}
}

func TestAudioInvalid(t *testing.T) {
	ex, _ := NewAudioExtractor(AudioConfig{SampleRate: 8000, WindowSize: 128})
	tests := []struct {
		name   string
		sample data.Sample
	}{
		{"wrong kind", data.NewSample("r", data.Record{}, "")},
		{"sample rate", data.NewSample("sr", data.Audio{SampleRate: 16000, Channels: 1, PCM: tone(440, 16000, 512)}, "")},
		{"channels", data.NewSample("ch", data.Audio{SampleRate: 8000, Channels: 2, PCM: tone(440, 8000, 512)}, "")},
		{"too short", clip("short", tone(440, 8000, 64))},
		{"nan", clip("nan", append(tone(440, 8000, 200), math.NaN()))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ex.Extract(tt.sample); !errors.Is(err, mlerr.ErrInvalidSample) {
				t.Errorf("error = %v, want ErrInvalidSample", err)
			}
		})
	}
}

func TestAudioStereoDownmix(t *testing.T) {
	ex, _ := NewAudioExtractor(AudioConfig{SampleRate: 8000, Channels: 2, WindowSize: 128})
	mono := tone(440, 8000, 600)
	stereo := make([]float64, 0, 2*len(mono))
	for _, v := range mono {
		stereo = append(stereo, v, v)
	}
	if _, err := ex.Extract(data.NewSample("s", data.Audio{SampleRate: 8000, Channels: 2, PCM: stereo}, "")); err != nil {
		t.Fatal(err)
	}
	odd := data.NewSample("odd", data.Audio{SampleRate: 8000, Channels: 2, PCM: stereo[:len(stereo)-1]}, "")
	if _, err := ex.Extract(odd); !errors.Is(err, mlerr.ErrInvalidSample) {
		t.Errorf("odd interleaving error = %v, want ErrInvalidSample", err)
	}
}
