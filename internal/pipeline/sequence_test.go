package pipeline

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
)

const stripConfig = `
name: strips
task: sequence
labels:
  values: [a, b]
  blank: _
extractor:
  kind: image
  image:
    width: 4
    height: 2
    column_major: true
model:
  kind: sequence
  hidden: 16
  learning_rate: 0.1
  epochs: 60
  seed: 3
split:
  test_size: 0.25
  seed: 1
`

// stripSamples draws 4x2 images whose columns spell the label: a lit top
// pixel is "a", a lit bottom pixel is "b", a dark column is a gap.
func stripSamples(n int, seed int64) []data.Sample {
	r := rand.New(rand.NewSource(seed))
	out := make([]data.Sample, 0, n)
	for i := 0; i < n; i++ {
		pixels := make([]float64, 8)
		var label strings.Builder
		prev := -1
		for x := 0; x < 4; x++ {
			sym := r.Intn(3)
			if x == 0 && sym == 2 {
				sym = r.Intn(2)
			}
			switch sym {
			case 0:
				pixels[x] = 1
			case 1:
				pixels[4+x] = 1
			}
			if sym != 2 && sym != prev {
				label.WriteString([]string{"a", "b"}[sym])
			}
			prev = sym
		}
		img := data.Image{Width: 4, Height: 2, Pixels: pixels}
		out = append(out, data.NewSample(fmt.Sprintf("strip-%d", i), img, label.String()))
	}
	return out
}

func TestRunSequence(t *testing.T) {
	cfg := mustConfig(t, stripConfig)
	p, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}

	result, err := p.RunSequence(data.NewMemorySource(stripSamples(80, 1)...))
	if err != nil {
		t.Fatal(err)
	}
	if result.Model.FrameDim != 2 {
		t.Errorf("FrameDim = %d, want the image height", result.Model.FrameDim)
	}
	if len(result.TestIndices) != 20 || result.Report.NumSamples != 20 {
		t.Errorf("test set of %d, report over %d", len(result.TestIndices), result.Report.NumSamples)
	}
	if result.TrainReport.EditDistance >= 0.5 {
		t.Errorf("training edit distance %.3f", result.TrainReport.EditDistance)
	}

	pred, err := NewPredictor(cfg, p.Labels(), result.Scaler, nil, result.Model)
	if err != nil {
		t.Fatal(err)
	}
	labels, err := pred.Predict(stripSamples(5, 2))
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range labels {
		if strings.Trim(l, "ab") != "" {
			t.Errorf("decoded %q holds symbols outside the label set", l)
		}
	}
}

func TestRunSequenceRejectsBlankInLabel(t *testing.T) {
	p, err := New(mustConfig(t, stripConfig))
	if err != nil {
		t.Fatal(err)
	}
	samples := stripSamples(8, 3)
	samples[2].Label = "a_b"
	if _, err := p.RunSequence(data.NewMemorySource(samples...)); err == nil {
		t.Error("label holding the blank symbol accepted")
	}
	if _, err := p.Run(data.NewMemorySource(samples...)); err == nil {
		t.Error("Run accepted a sequence config")
	}
}
