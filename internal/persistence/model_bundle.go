// Package persistence saves fitted pipelines as self-describing bundles.
package persistence

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
	"github.com/RuheSaniya/code-alpha-tasks/internal/features"
	"github.com/RuheSaniya/code-alpha-tasks/internal/models"
	"github.com/RuheSaniya/code-alpha-tasks/internal/pipeline"
)

func init() {
	gob.Register(&models.TreeModel{})
	gob.Register(&models.ForestModel{})
	gob.Register(&models.BayesModel{})
	gob.Register(&models.KNNModel{})
	gob.Register(&models.LinearModel{})
	gob.Register(&models.NeuralModel{})
}

// Bundle is everything needed to predict with a fitted pipeline. Exactly one
// of Classifier and Sequence is set.
type Bundle struct {
	ID         uuid.UUID
	Name       string
	Config     pipeline.Config
	Labels     data.LabelSet
	Classifier models.Trained
	Sequence   *models.SequenceModel
	Scaler     *features.Scaler
	Metadata   Metadata
	CreatedAt  time.Time
}

type Metadata struct {
	ModelName    string
	Dataset      string
	NumSamples   int
	TrainingTime time.Duration
	Metrics      map[string]float64
	Parameters   map[string]any
}

// FromResult bundles a classification run.
func FromResult(name string, cfg pipeline.Config, labels data.LabelSet, result *pipeline.Result) *Bundle {
	return &Bundle{
		ID:         uuid.New(),
		Name:       name,
		Config:     cfg,
		Labels:     labels,
		Classifier: result.Model,
		Scaler:     result.Scaler,
		CreatedAt:  time.Now(),
		Metadata: Metadata{
			ModelName:    result.Model.Name(),
			NumSamples:   len(result.TrainIndices) + len(result.TestIndices),
			TrainingTime: result.Duration,
			Metrics:      mergeMetrics(result.Report.Metrics(), result.Scores),
			Parameters:   paramsOf(result.Model),
		},
	}
}

// FromSequenceResult bundles a sequence run.
func FromSequenceResult(name string, cfg pipeline.Config, labels data.LabelSet, result *pipeline.SequenceResult) *Bundle {
	return &Bundle{
		ID:        uuid.New(),
		Name:      name,
		Config:    cfg,
		Labels:    labels,
		Sequence:  result.Model,
		Scaler:    result.Scaler,
		CreatedAt: time.Now(),
		Metadata: Metadata{
			ModelName:    result.Model.Name(),
			NumSamples:   len(result.TrainIndices) + len(result.TestIndices),
			TrainingTime: result.Duration,
			Metrics:      result.Report.Metrics(),
			Parameters:   result.Model.Parameters,
		},
	}
}

func paramsOf(m models.Trained) map[string]any {
	if p, ok := m.(interface{ Params() map[string]any }); ok {
		return p.Params()
	}
	return nil
}

func mergeMetrics(maps ...map[string]float64) map[string]float64 {
	out := make(map[string]float64)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// Predictor rebuilds the prediction path stored in the bundle.
func (b *Bundle) Predictor() (*pipeline.Predictor, error) {
	return pipeline.NewPredictor(b.Config, b.Labels, b.Scaler, b.Classifier, b.Sequence)
}

func (b *Bundle) Save(w io.Writer) error {
	if (b.Classifier == nil) == (b.Sequence == nil) {
		return errors.New("bundle needs exactly one of a classifier and a sequence model")
	}
	if err := gob.NewEncoder(w).Encode(b); err != nil {
		return errors.Wrap(err, "failed to encode bundle")
	}
	return nil
}

func Load(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := gob.NewDecoder(r).Decode(&b); err != nil {
		return nil, errors.Wrap(err, "failed to decode bundle")
	}
	return &b, nil
}

func (b *Bundle) SaveFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	if err := b.Save(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func LoadFile(filename string) (*Bundle, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()
	return Load(file)
}

// Summary is a human-readable description of the bundle.
func (b *Bundle) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ID: %s\n", b.ID)
	fmt.Fprintf(&sb, "Name: %s\n", b.Name)
	fmt.Fprintf(&sb, "Model: %s\n", b.Metadata.ModelName)
	fmt.Fprintf(&sb, "Task: %s\n", b.Config.Task)
	if b.Metadata.Dataset != "" {
		fmt.Fprintf(&sb, "Dataset: %s\n", b.Metadata.Dataset)
	}
	fmt.Fprintf(&sb, "Created: %s\n", b.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Samples: %d\n", b.Metadata.NumSamples)
	fmt.Fprintf(&sb, "Labels: %s\n", strings.Join(b.Labels.Labels, ", "))
	fmt.Fprintf(&sb, "Training Time: %v\n", b.Metadata.TrainingTime)

	keys := make([]string, 0, len(b.Metadata.Metrics))
	for k := range b.Metadata.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s: %.4f\n", k, b.Metadata.Metrics[k])
	}
	return sb.String()
}

func (b *Bundle) SaveMetadata(filename string) error {
	return os.WriteFile(filename, []byte(b.Summary()), 0o644)
}
