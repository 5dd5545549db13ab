package pipeline

import (
	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
	"github.com/RuheSaniya/code-alpha-tasks/internal/features"
	"github.com/RuheSaniya/code-alpha-tasks/internal/models"
)

const defaultPredictBatch = 256

// Predictor maps raw samples to label strings with a fitted model. Exactly
// one of the classifier and the sequence model is set.
type Predictor struct {
	cfg        Config
	labels     data.LabelSet
	extractor  features.Extractor
	scaler     *features.Scaler
	classifier models.Trained
	sequence   *models.SequenceModel
	batches    *data.BatchProcessor
}

// NewPredictor rebuilds the extractor described by cfg. A nil scaler leaves
// vectors unscaled.
func NewPredictor(cfg Config, labels data.LabelSet, scaler *features.Scaler, classifier models.Trained, sequence *models.SequenceModel) (*Predictor, error) {
	if (classifier == nil) == (sequence == nil) {
		return nil, errors.New("predictor needs exactly one of a classifier and a sequence model")
	}
	extractor, err := features.New(cfg.Extractor)
	if err != nil {
		return nil, errors.Wrap(err, "extractor")
	}
	return &Predictor{
		cfg:        cfg,
		labels:     labels,
		extractor:  extractor,
		scaler:     scaler,
		classifier: classifier,
		sequence:   sequence,
		batches:    data.NewBatchProcessor(defaultPredictBatch),
	}, nil
}

// SetBatchSize bounds how many samples are extracted and scored at once.
func (p *Predictor) SetBatchSize(size int) { p.batches.SetBatchSize(size) }

// Predict returns one label per sample, in order. Sequence models return the
// decoded symbol string.
func (p *Predictor) Predict(samples []data.Sample) ([]string, error) {
	out := make([]string, 0, len(samples))
	err := p.batches.ProcessBatches(len(samples), func(start, end int) error {
		X, err := features.ExtractAll(p.extractor, samples[start:end])
		if err != nil {
			return err
		}
		if p.scaler != nil {
			X, err = p.scaler.Transform(X)
			if err != nil {
				return err
			}
		}
		labels, err := p.predictBatch(X)
		if err != nil {
			return errors.Wrapf(err, "batch %d-%d", start, end)
		}
		out = append(out, labels...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PredictSource predicts every sample of src.
func (p *Predictor) PredictSource(src data.Source) ([]data.Sample, []string, error) {
	samples, err := data.Collect(src)
	if err != nil {
		return nil, nil, errors.Wrap(err, "load samples")
	}
	labels, err := p.Predict(samples)
	if err != nil {
		return nil, nil, err
	}
	return samples, labels, nil
}

func (p *Predictor) predictBatch(X []features.Vector) ([]string, error) {
	if p.classifier != nil {
		indices, err := p.classifier.Predict(X)
		if err != nil {
			return nil, err
		}
		return p.labels.Decode(indices)
	}

	decoded, err := p.sequence.Decode(X)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(decoded))
	for i, seq := range decoded {
		out[i], err = p.labels.DecodeSequence(seq)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
