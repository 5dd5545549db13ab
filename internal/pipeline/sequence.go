package pipeline

import (
	"time"

	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
	"github.com/RuheSaniya/code-alpha-tasks/internal/evaluation"
	"github.com/RuheSaniya/code-alpha-tasks/internal/features"
	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
	"github.com/RuheSaniya/code-alpha-tasks/internal/models"
)

// SequenceResult is the outcome of a sequence decoding run.
type SequenceResult struct {
	Model        *models.SequenceModel
	Scaler       *features.Scaler
	Report       *evaluation.SequenceReport
	TrainReport  *evaluation.SequenceReport
	TrainIndices []int
	TestIndices  []int
	Duration     time.Duration
}

// RunSequence trains a CTC sequence model on samples whose labels are symbol
// strings over the configured label set.
func (p *Pipeline) RunSequence(src data.Source) (*SequenceResult, error) {
	if p.cfg.Task != TaskSequence {
		return nil, errors.Errorf("pipeline %q is a %s task", p.cfg.Name, p.cfg.Task)
	}
	start := time.Now()

	samples, X, err := p.extract(src)
	if err != nil {
		return nil, err
	}

	targets := make([][]int, len(samples))
	for i, s := range samples {
		if s.Label == "" {
			return nil, mlerr.InvalidSample(s.ID, "missing label")
		}
		targets[i], err = p.labels.EncodeSequence(s.Label)
		if err != nil {
			return nil, errors.Wrapf(err, "sample %s", s.ID)
		}
	}

	trainIdx, testIdx, err := p.splitSequences(len(samples))
	if err != nil {
		return nil, err
	}
	p.logger.Printf("split %d sequences: %d train, %d test", len(samples), len(trainIdx), len(testIdx))

	scaler, err := features.NewScaler(p.cfg.Scale)
	if err != nil {
		return nil, err
	}
	XTrain, err := scaler.FitTransform(evaluation.Take(X, trainIdx))
	if err != nil {
		return nil, errors.Wrap(err, "scale training set")
	}
	yTrain := evaluation.Take(targets, trainIdx)

	modelCfg := p.cfg.Model
	if modelCfg.FrameDim <= 0 {
		modelCfg.FrameDim = frameDim(p.extractor)
	}
	net, err := models.NewSequence(modelCfg, p.labels.Len(), p.labels.BlankIndex())
	if err != nil {
		return nil, err
	}

	if err := p.checkpoint(); err != nil {
		return nil, err
	}
	p.progress(StageFit, 0, 1)
	p.logger.Printf("fitting %s on %d sequences", net.Name(), len(XTrain))
	model, err := net.FitSequences(XTrain, yTrain)
	if err != nil {
		return nil, errors.Wrap(err, "fit")
	}
	p.progress(StageFit, 1, 1)

	result := &SequenceResult{
		Model:        model,
		Scaler:       scaler,
		TrainIndices: trainIdx,
		TestIndices:  testIdx,
	}

	p.progress(StageEvaluate, 0, 1)
	result.TrainReport, err = evaluateSequences(model, XTrain, yTrain)
	if err != nil {
		return nil, errors.Wrap(err, "evaluate training set")
	}
	if len(testIdx) > 0 {
		XTest, err := scaler.Transform(evaluation.Take(X, testIdx))
		if err != nil {
			return nil, errors.Wrap(err, "scale test set")
		}
		result.Report, err = evaluateSequences(model, XTest, evaluation.Take(targets, testIdx))
		if err != nil {
			return nil, errors.Wrap(err, "evaluate test set")
		}
	} else {
		result.Report = result.TrainReport
	}
	p.progress(StageEvaluate, 1, 1)

	result.Duration = time.Since(start)
	p.logger.Printf("run %q finished in %v: exact match %.4f, edit distance %.4f",
		p.cfg.Name, result.Duration, result.Report.ExactMatch, result.Report.EditDistance)
	return result, nil
}

func (p *Pipeline) splitSequences(n int) ([]int, []int, error) {
	if p.cfg.Split.TestSize == 0 {
		train := make([]int, n)
		for i := range train {
			train[i] = i
		}
		return train, nil, nil
	}
	return evaluation.NewTrainTestSplitter(p.cfg.Split.TestSize, p.cfg.Split.Seed, true).Split(n)
}

func evaluateSequences(model *models.SequenceModel, X []features.Vector, truth [][]int) (*evaluation.SequenceReport, error) {
	decoded, err := model.Decode(X)
	if err != nil {
		return nil, err
	}
	return evaluation.EvaluateSequences(decoded, truth)
}

// frameDim reads the per-frame width of extractors that lay vectors out as
// frames, looking through caches. It returns 0 when the extractor has none.
func frameDim(ex features.Extractor) int {
	for {
		if f, ok := ex.(interface{ FrameDim() int }); ok {
			return f.FrameDim()
		}
		u, ok := ex.(interface{ Unwrap() features.Extractor })
		if !ok {
			return 0
		}
		ex = u.Unwrap()
	}
}
