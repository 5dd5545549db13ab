// Package experiment runs a pipeline over a grid of scalers, splits and
// model parameters.
package experiment

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
	"github.com/RuheSaniya/code-alpha-tasks/internal/models"
	"github.com/RuheSaniya/code-alpha-tasks/internal/pipeline"
)

type Runner struct {
	Config   *Config
	Logger   *log.Logger
	Progress func(done, total int)
}

func NewRunner(cfg *Config) *Runner {
	return &Runner{
		Config:   cfg,
		Logger:   log.New(io.Discard, "", 0),
		Progress: func(int, int) {},
	}
}

// Point is one configuration of the grid.
type Point struct {
	Preprocessing string
	TrainFraction float64
	Model         models.Config
}

// Points lists the grid in run order: preprocessing, then split, then model.
func (r *Runner) Points() []Point {
	grid := r.Config.Experiment
	base := r.Config.Pipeline

	preps := grid.Preprocessing
	if len(preps) == 0 {
		preps = []string{base.Scale}
	}
	splits := grid.TrainTestSplits
	if len(splits) == 0 {
		splits = []float64{1 - base.Split.TestSize}
	}
	modelConfigs := grid.Algorithms.Models(base.Split.Seed)
	if len(modelConfigs) == 0 {
		modelConfigs = []models.Config{base.Model}
	}

	var points []Point
	for _, prep := range preps {
		for _, split := range splits {
			for _, mc := range modelConfigs {
				points = append(points, Point{
					Preprocessing: prep,
					TrainFraction: split,
					Model:         overlay(base.Model, mc),
				})
			}
		}
	}
	return points
}

// overlay applies the grid's fields on top of the base model config when both
// describe the same kind.
func overlay(base, point models.Config) models.Config {
	if base.Kind != point.Kind {
		return point
	}
	out := base
	if point.K > 0 {
		out.K = point.K
	}
	if point.Distance != "" {
		out.Distance = point.Distance
	}
	if point.MaxDepth > 0 {
		out.MaxDepth = point.MaxDepth
	}
	if point.MinSplit > 0 {
		out.MinSplit = point.MinSplit
	}
	if point.NTrees > 0 {
		out.NTrees = point.NTrees
	}
	if point.VarSmoothing > 0 {
		out.VarSmoothing = point.VarSmoothing
	}
	if point.LearningRate > 0 {
		out.LearningRate = point.LearningRate
	}
	if point.L2 > 0 {
		out.L2 = point.L2
	}
	if point.ClassWeight != "" {
		out.ClassWeight = point.ClassWeight
	}
	if point.Hidden > 0 {
		out.Hidden = point.Hidden
	}
	if point.Decoder.Kind != "" {
		out.Decoder.Kind = point.Decoder.Kind
	}
	return out
}

// RunAllExperiments reads src once and runs every grid point on it. A point
// that fails is recorded with its error and the grid continues.
func (r *Runner) RunAllExperiments(dataset string, src data.Source) ([]Result, error) {
	samples, err := data.Collect(src)
	if err != nil {
		return nil, errors.Wrap(err, "load samples")
	}
	mem := data.NewMemorySource(samples...)

	points := r.Points()
	results := make([]Result, 0, len(points))
	for i, point := range points {
		result := r.runPoint(mem, point)
		result.Dataset = dataset
		if result.Error != "" {
			r.Logger.Printf("experiment %d/%d (%s) failed: %s", i+1, len(points), result.Algorithm, result.Error)
		}
		results = append(results, result)
		r.Progress(i+1, len(points))
	}
	return results, nil
}

func (r *Runner) runPoint(src data.Source, point Point) Result {
	result := Result{
		Algorithm:      string(point.Model.Kind),
		Preprocessing:  point.Preprocessing,
		TrainTestSplit: fmt.Sprintf("%.0f-%.0f", point.TrainFraction*100, (1-point.TrainFraction)*100),
	}

	cfg := r.Config.Pipeline
	cfg.Scale = point.Preprocessing
	cfg.Split.TestSize = 1 - point.TrainFraction
	cfg.Model = point.Model
	cfg.Task = pipeline.TaskClassification
	if point.Model.Kind == models.KindSequence {
		cfg.Task = pipeline.TaskSequence
	}
	if r.Config.Experiment.CrossValidation.Folds > 0 {
		cfg.CrossValidation.Folds = r.Config.Experiment.CrossValidation.Folds
		cfg.CrossValidation.Stratify = true
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	start := time.Now()
	if cfg.Task == pipeline.TaskSequence {
		out, err := p.RunSequence(src)
		result.TrainingTimeMs = time.Since(start).Milliseconds()
		if err != nil {
			result.Error = err.Error()
			return result
		}
		result.Parameters = fmt.Sprintf("%v", out.Model.Parameters)
		result.Accuracy = out.Report.ExactMatch
		result.EditDistance = out.Report.EditDistance
		return result
	}

	out, err := p.Run(src)
	result.TrainingTimeMs = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if params, ok := out.Model.(interface{ Params() map[string]any }); ok {
		result.Parameters = fmt.Sprintf("%v", params.Params())
	}
	result.Accuracy = out.Report.Accuracy
	result.BalancedAccuracy = out.Report.BalancedAccuracy
	result.Precision = out.Report.MacroPrecision
	result.Recall = out.Report.MacroRecall
	result.F1Score = out.Report.MacroF1
	if out.CV != nil {
		result.CVMean = out.CV.Mean
		result.CVStd = out.CV.Std
	}
	return result
}

type Result struct {
	Dataset          string
	Algorithm        string
	Parameters       string
	Preprocessing    string
	TrainTestSplit   string
	Accuracy         float64
	BalancedAccuracy float64
	Precision        float64
	Recall           float64
	F1Score          float64
	EditDistance     float64
	CVMean           float64
	CVStd            float64
	TrainingTimeMs   int64
	Error            string
}

// Best returns the successful result with the highest accuracy, the earliest
// on ties. ok is false when every point failed.
func Best(results []Result) (best Result, ok bool) {
	for _, r := range results {
		if r.Error != "" {
			continue
		}
		if !ok || r.Accuracy > best.Accuracy {
			best, ok = r, true
		}
	}
	return best, ok
}

func ExportResults(results []Result, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create results file")
	}
	if err := WriteResults(file, results); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func WriteResults(w io.Writer, results []Result) error {
	writer := csv.NewWriter(w)

	writer.Write([]string{
		"Dataset", "Algorithm", "Parameters", "Preprocessing",
		"TrainTestSplit", "Accuracy", "BalancedAccuracy", "Precision", "Recall", "F1Score",
		"EditDistance", "CVMean", "CVStd", "TrainingTimeMs", "Error",
	})

	for _, result := range results {
		writer.Write([]string{
			result.Dataset,
			result.Algorithm,
			result.Parameters,
			result.Preprocessing,
			result.TrainTestSplit,
			fmt.Sprintf("%.4f", result.Accuracy),
			fmt.Sprintf("%.4f", result.BalancedAccuracy),
			fmt.Sprintf("%.4f", result.Precision),
			fmt.Sprintf("%.4f", result.Recall),
			fmt.Sprintf("%.4f", result.F1Score),
			fmt.Sprintf("%.4f", result.EditDistance),
			fmt.Sprintf("%.4f", result.CVMean),
			fmt.Sprintf("%.4f", result.CVStd),
			fmt.Sprintf("%d", result.TrainingTimeMs),
			result.Error,
		})
	}

	writer.Flush()
	return errors.Wrap(writer.Error(), "write results")
}
