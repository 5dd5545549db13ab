package features

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

// AudioConfig configures framing and spectral summaries of PCM clips.
//
// With Frames > 0 the vector is Frames consecutive frame descriptors,
// truncated or padded with the descriptor of a silent frame. Otherwise it is the mean followed by the standard
// deviation of every descriptor over all frames.
type AudioConfig struct {
	SampleRate int `yaml:"sample_rate"`
	Channels   int `yaml:"channels"`
	WindowSize int `yaml:"window_size"`
	HopSize    int `yaml:"hop_size"`
	Bands      int `yaml:"bands"`
	Frames     int `yaml:"frames"`
}

const audioBaseFeatures = 4 // log energy, zero crossing rate, centroid, rolloff

const rolloffFraction = 0.85

// logFloor keeps log energies finite on silent frames.
const logFloor = 1e-10

// AudioExtractor computes short-time energy and spectral shape descriptors.
type AudioExtractor struct {
	cfg    AudioConfig
	window []float64
}

func NewAudioExtractor(cfg AudioConfig) (*AudioExtractor, error) {
	if cfg.SampleRate <= 0 {
		return nil, errors.New("audio: sample_rate must be positive")
	}
	if cfg.Channels <= 0 {
		cfg.Channels = 1
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 512
	}
	if cfg.WindowSize < 2 {
		return nil, errors.Errorf("audio: window_size %d is too short", cfg.WindowSize)
	}
	if cfg.HopSize <= 0 {
		cfg.HopSize = cfg.WindowSize / 2
	}
	if cfg.Bands <= 0 {
		cfg.Bands = 8
	}
	if cfg.Bands > cfg.WindowSize/2+1 {
		return nil, errors.Errorf("audio: %d bands exceed %d spectral bins", cfg.Bands, cfg.WindowSize/2+1)
	}

	window := make([]float64, cfg.WindowSize)
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(cfg.WindowSize-1))
	}

	return &AudioExtractor{cfg: cfg, window: window}, nil
}

func (a *AudioExtractor) Name() string { return "audio" }

// Config returns the effective configuration with defaults filled in.
func (a *AudioExtractor) Config() AudioConfig { return a.cfg }

// FrameDim is the number of descriptors per frame.
func (a *AudioExtractor) FrameDim() int {
	return audioBaseFeatures + a.cfg.Bands
}

func (a *AudioExtractor) Dim() int {
	if a.cfg.Frames > 0 {
		return a.cfg.Frames * a.FrameDim()
	}
	return 2 * a.FrameDim()
}

func (a *AudioExtractor) Extract(s data.Sample) (Vector, error) {
	clip, ok := s.Raw.(data.Audio)
	if !ok {
		return nil, mlerr.InvalidSample(s.ID, "expected audio, got %T", s.Raw)
	}
	if clip.SampleRate != a.cfg.SampleRate {
		return nil, mlerr.InvalidSample(s.ID, "sample rate %d, expected %d", clip.SampleRate, a.cfg.SampleRate)
	}
	if clip.Channels != a.cfg.Channels {
		return nil, mlerr.InvalidSample(s.ID, "%d channels, expected %d", clip.Channels, a.cfg.Channels)
	}
	if len(clip.PCM)%clip.Channels != 0 {
		return nil, mlerr.InvalidSample(s.ID, "%d samples do not divide into %d channels", len(clip.PCM), clip.Channels)
	}

	mono := downmix(clip.PCM, clip.Channels)
	if len(mono) < a.cfg.WindowSize {
		return nil, mlerr.InvalidSample(s.ID, "clip has %d samples, window needs %d", len(mono), a.cfg.WindowSize)
	}
	for _, v := range mono {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, mlerr.InvalidSample(s.ID, "non-finite pcm value")
		}
	}

	frames := a.frames(mono)
	if a.cfg.Frames > 0 {
		out := make(Vector, a.Dim())
		silence := a.silence()
		for i := 0; i < a.cfg.Frames; i++ {
			frame := silence
			if i < len(frames) {
				frame = frames[i]
			}
			copy(out[i*a.FrameDim():], frame)
		}
		return out, nil
	}

	dim := a.FrameDim()
	out := make(Vector, 2*dim)
	column := make([]float64, len(frames))
	for j := 0; j < dim; j++ {
		for i, f := range frames {
			column[i] = f[j]
		}
		mean, std := stat.PopMeanStdDev(column, nil)
		out[j] = mean
		out[dim+j] = std
	}
	return out, nil
}

// silence is the descriptor frames() yields for an all-zero window.
func (a *AudioExtractor) silence() []float64 {
	desc := make([]float64, a.FrameDim())
	desc[0] = math.Log(logFloor)
	for b := 0; b < a.cfg.Bands; b++ {
		desc[audioBaseFeatures+b] = math.Log(logFloor)
	}
	return desc
}

func downmix(pcm []float64, channels int) []float64 {
	if channels == 1 {
		return pcm
	}
	mono := make([]float64, len(pcm)/channels)
	for i := range mono {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += pcm[i*channels+c]
		}
		mono[i] = sum / float64(channels)
	}
	return mono
}

func (a *AudioExtractor) frames(mono []float64) [][]float64 {
	n := a.cfg.WindowSize
	fft := fourier.NewFFT(n)
	buf := make([]float64, n)
	var coeffs []complex128

	nyquist := float64(a.cfg.SampleRate) / 2
	var out [][]float64
	for start := 0; start+n <= len(mono); start += a.cfg.HopSize {
		seg := mono[start : start+n]
		desc := make([]float64, a.FrameDim())

		energy := floats.Dot(seg, seg) / float64(n)
		desc[0] = math.Log(energy + logFloor)

		crossings := 0
		for i := 1; i < n; i++ {
			if (seg[i-1] >= 0) != (seg[i] >= 0) {
				crossings++
			}
		}
		desc[1] = float64(crossings) / float64(n-1)

		floats.MulTo(buf, seg, a.window)
		coeffs = fft.Coefficients(coeffs, buf)
		mags := make([]float64, len(coeffs))
		for k, c := range coeffs {
			mags[k] = math.Hypot(real(c), imag(c))
		}

		total := floats.Sum(mags)
		if total > 0 {
			weighted := 0.0
			for k, m := range mags {
				weighted += fft.Freq(k) * float64(a.cfg.SampleRate) * m
			}
			desc[2] = weighted / total / nyquist

			cum := 0.0
			for k, m := range mags {
				cum += m
				if cum >= rolloffFraction*total {
					desc[3] = fft.Freq(k) * float64(a.cfg.SampleRate) / nyquist
					break
				}
			}
		}

		bins := len(mags)
		for b := 0; b < a.cfg.Bands; b++ {
			lo := b * bins / a.cfg.Bands
			hi := (b + 1) * bins / a.cfg.Bands
			power := 0.0
			for _, m := range mags[lo:hi] {
				power += m * m
			}
			desc[audioBaseFeatures+b] = math.Log(power + logFloor)
		}

		out = append(out, desc)
	}
	return out
}
