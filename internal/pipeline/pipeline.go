// Package pipeline wires a sample source, a feature extractor, a model and
// the evaluator into one run.
package pipeline

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
	"github.com/RuheSaniya/code-alpha-tasks/internal/evaluation"
	"github.com/RuheSaniya/code-alpha-tasks/internal/features"
	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
	"github.com/RuheSaniya/code-alpha-tasks/internal/models"
)

// Stage names reported to the progress hook.
const (
	StageLoad     = "load"
	StageExtract  = "extract"
	StageFit      = "fit"
	StageEvaluate = "evaluate"
	StageCV       = "cross-validate"
)

// ProgressFunc observes stage progress. done counts finished units of the
// stage out of total.
type ProgressFunc func(stage string, done, total int)

type Option func(*Pipeline)

// WithContext makes runs stop between stages and between samples once ctx
// is done.
func WithContext(ctx context.Context) Option {
	return func(p *Pipeline) {
		if ctx != nil {
			p.ctx = ctx
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.progress = fn
		}
	}
}

// Pipeline is built once from a Config and can run any number of sources.
type Pipeline struct {
	cfg       Config
	labels    data.LabelSet
	extractor features.Extractor
	ctx       context.Context
	logger    *log.Logger
	progress  ProgressFunc
}

func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	labels, err := cfg.LabelSet()
	if err != nil {
		return nil, errors.Wrap(err, "labels")
	}
	extractor, err := features.New(cfg.Extractor)
	if err != nil {
		return nil, errors.Wrap(err, "extractor")
	}

	p := &Pipeline{
		cfg:       cfg,
		labels:    labels,
		extractor: extractor,
		ctx:       context.Background(),
		logger:    log.New(io.Discard, "", 0),
		progress:  func(string, int, int) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Pipeline) Config() Config { return p.cfg }

func (p *Pipeline) Labels() data.LabelSet { return p.labels }

func (p *Pipeline) Extractor() features.Extractor { return p.extractor }

// Result is the outcome of a classification run.
type Result struct {
	Model        models.Trained
	Scaler       *features.Scaler
	Report       *evaluation.Report
	TrainReport  *evaluation.Report
	Scores       map[string]float64
	CV           *evaluation.CVResult
	TrainIndices []int
	TestIndices  []int
	Duration     time.Duration
}

// Run executes a classification run over src. Every sample must extract and
// carry a known label before anything is fitted.
func (p *Pipeline) Run(src data.Source) (*Result, error) {
	if p.cfg.Task != TaskClassification {
		return nil, errors.Errorf("pipeline %q is a %s task", p.cfg.Name, p.cfg.Task)
	}
	start := time.Now()

	samples, X, err := p.extract(src)
	if err != nil {
		return nil, err
	}

	y := make([]int, len(samples))
	for i, s := range samples {
		if s.Label == "" {
			return nil, mlerr.InvalidSample(s.ID, "missing label")
		}
		y[i], err = p.labels.Index(s.Label)
		if err != nil {
			return nil, errors.Wrapf(err, "sample %s", s.ID)
		}
	}

	stats := data.GetDatasetStats(X, y)
	p.logger.Printf("%d samples, %d features, class counts %v", stats.Samples, stats.Features, stats.ClassDistribution)

	trainIdx, testIdx, err := p.split(y)
	if err != nil {
		return nil, err
	}
	p.logger.Printf("split %d samples: %d train, %d test", len(y), len(trainIdx), len(testIdx))

	scaler, err := features.NewScaler(p.cfg.Scale)
	if err != nil {
		return nil, err
	}
	XTrain, err := scaler.FitTransform(evaluation.Take(X, trainIdx))
	if err != nil {
		return nil, errors.Wrap(err, "scale training set")
	}
	yTrain := evaluation.Take(y, trainIdx)

	estimator, err := models.New(p.cfg.Model)
	if err != nil {
		return nil, err
	}

	if err := p.checkpoint(); err != nil {
		return nil, err
	}
	p.progress(StageFit, 0, 1)
	p.logger.Printf("fitting %s on %d samples", estimator.Name(), len(XTrain))
	model, err := estimator.Fit(XTrain, yTrain)
	if err != nil {
		return nil, errors.Wrap(err, "fit")
	}
	p.progress(StageFit, 1, 1)

	result := &Result{
		Model:        model,
		Scaler:       scaler,
		TrainIndices: trainIdx,
		TestIndices:  testIdx,
	}

	p.progress(StageEvaluate, 0, 1)
	result.TrainReport, err = p.evaluate(model, XTrain, yTrain)
	if err != nil {
		return nil, errors.Wrap(err, "evaluate training set")
	}

	XEval, yEval := XTrain, yTrain
	if len(testIdx) > 0 {
		XEval, err = scaler.Transform(evaluation.Take(X, testIdx))
		if err != nil {
			return nil, errors.Wrap(err, "scale test set")
		}
		yEval = evaluation.Take(y, testIdx)
		result.Report, err = p.evaluate(model, XEval, yEval)
		if err != nil {
			return nil, errors.Wrap(err, "evaluate test set")
		}
	} else {
		result.Report = result.TrainReport
	}

	result.Scores, err = p.scoreReport(model, XEval, yEval)
	if err != nil {
		return nil, err
	}
	p.progress(StageEvaluate, 1, 1)

	if p.cfg.CrossValidation.Folds >= 2 {
		if err := p.checkpoint(); err != nil {
			return nil, err
		}
		result.CV, err = p.crossValidate(estimator, X, y)
		if err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(start)
	p.logger.Printf("run %q finished in %v: accuracy %.4f", p.cfg.Name, result.Duration, result.Report.Accuracy)
	return result, nil
}

// extract collects src and extracts every sample. It fails on the first
// invalid sample and returns no partial output.
func (p *Pipeline) extract(src data.Source) ([]data.Sample, []features.Vector, error) {
	p.progress(StageLoad, 0, 1)
	samples, err := data.Collect(src)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load samples")
	}
	p.progress(StageLoad, 1, 1)
	if len(samples) == 0 {
		return nil, nil, errors.Wrap(mlerr.ErrEmptyTrainingSet, "source produced no samples")
	}
	p.logger.Printf("loaded %d samples", len(samples))

	X := make([]features.Vector, len(samples))
	for i, s := range samples {
		if err := p.checkpoint(); err != nil {
			return nil, nil, err
		}
		v, err := p.extractor.Extract(s)
		if err != nil {
			return nil, nil, err
		}
		X[i] = v
		p.progress(StageExtract, i+1, len(samples))
	}
	return samples, X, nil
}

func (p *Pipeline) checkpoint() error {
	if err := p.ctx.Err(); err != nil {
		return errors.Wrap(err, "run cancelled")
	}
	return nil
}

// split returns every index as training data when test_size is 0.
func (p *Pipeline) split(y []int) ([]int, []int, error) {
	if p.cfg.Split.TestSize == 0 {
		train := make([]int, len(y))
		for i := range train {
			train[i] = i
		}
		return train, nil, nil
	}
	splitter := evaluation.NewTrainTestSplitter(p.cfg.Split.TestSize, p.cfg.Split.Seed, true)
	if p.cfg.Split.Stratify {
		return splitter.StratifiedSplit(y)
	}
	return splitter.Split(len(y))
}

func (p *Pipeline) evaluate(model models.Trained, X []features.Vector, y []int) (*evaluation.Report, error) {
	predictions, err := model.Predict(X)
	if err != nil {
		return nil, err
	}
	return evaluation.Evaluate(predictions, y, p.labels)
}

// scoreReport is empty for models without calibrated scores.
func (p *Pipeline) scoreReport(model models.Trained, X []features.Vector, y []int) (map[string]float64, error) {
	scores, err := models.PredictScores(model, X)
	if errors.Is(err, mlerr.ErrUnsupportedCapability) {
		p.logger.Printf("%s has no scores, skipping ROC AUC", model.Name())
		return map[string]float64{}, nil
	}
	if err != nil {
		return nil, err
	}
	return evaluation.ScoreReport(scores, model.Classes(), y, p.labels)
}

// crossValidate scales every fold with a scaler fitted on that fold's
// training part only.
func (p *Pipeline) crossValidate(estimator models.Estimator, X []features.Vector, y []int) (*evaluation.CVResult, error) {
	cv := evaluation.NewCrossValidator(p.cfg.CrossValidation.Folds, p.cfg.CrossValidation.Stratify)
	cv.RandomSeed = p.cfg.Split.Seed
	if p.cfg.CrossValidation.Workers > 0 {
		cv.Workers = p.cfg.CrossValidation.Workers
	}

	p.progress(StageCV, 0, 1)
	result, err := cv.CrossValidate(X, y, &scaledEstimator{scale: p.cfg.Scale, inner: estimator}, p.labels)
	if err != nil {
		return nil, errors.Wrap(err, "cross-validate")
	}
	p.progress(StageCV, 1, 1)
	p.logger.Printf("cross-validation: %.4f ± %.4f over %d folds", result.Mean, result.Std, len(result.Scores))
	return result, nil
}

// scaledEstimator fits a scaler before the wrapped estimator.
type scaledEstimator struct {
	scale string
	inner models.Estimator
}

func (se *scaledEstimator) Name() string { return se.inner.Name() }

func (se *scaledEstimator) Params() map[string]any { return se.inner.Params() }

func (se *scaledEstimator) Fit(X []features.Vector, y []int) (models.Trained, error) {
	scaler, err := features.NewScaler(se.scale)
	if err != nil {
		return nil, err
	}
	XScaled, err := scaler.FitTransform(X)
	if err != nil {
		return nil, err
	}
	model, err := se.inner.Fit(XScaled, y)
	if err != nil {
		return nil, err
	}
	return &scaledModel{Trained: model, scaler: scaler}, nil
}

type scaledModel struct {
	models.Trained
	scaler *features.Scaler
}

func (sm *scaledModel) Predict(X []features.Vector) ([]int, error) {
	XScaled, err := sm.scaler.Transform(X)
	if err != nil {
		return nil, err
	}
	return sm.Trained.Predict(XScaled)
}
