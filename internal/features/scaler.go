package features

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

// Scale types accepted by NewScaler.
const (
	ScaleNone     = "none"
	ScaleMinMax   = "minmax"
	ScaleStandard = "standard"
)

// Scaler rescales vectors per feature with statistics learned on training
// data only. A fitted scaler is read-only.
type Scaler struct {
	ScaleType   string
	IsFitted    bool
	FeatureMin  []float64
	FeatureMax  []float64
	FeatureMean []float64
	FeatureStd  []float64
}

func NewScaler(scaleType string) (*Scaler, error) {
	switch scaleType {
	case "", "raw", ScaleNone:
		scaleType = ScaleNone
	case ScaleMinMax, "normalized":
		scaleType = ScaleMinMax
	case ScaleStandard, "standardized":
		scaleType = ScaleStandard
	default:
		return nil, errors.Errorf("unknown scale type: %s", scaleType)
	}
	return &Scaler{ScaleType: scaleType}, nil
}

func (s *Scaler) Fit(X []Vector) error {
	if len(X) == 0 {
		return errors.Wrap(mlerr.ErrEmptyTrainingSet, "scaler")
	}

	nFeatures := len(X[0])
	for i, row := range X {
		if len(row) != nFeatures {
			return mlerr.ShapeMismatch(i, nFeatures, len(row))
		}
	}

	s.FeatureMin = make([]float64, nFeatures)
	s.FeatureMax = make([]float64, nFeatures)
	s.FeatureMean = make([]float64, nFeatures)
	s.FeatureStd = make([]float64, nFeatures)

	column := make([]float64, len(X))
	for j := 0; j < nFeatures; j++ {
		for i := range X {
			column[i] = X[i][j]
		}
		s.FeatureMin[j], s.FeatureMax[j] = column[0], column[0]
		for _, v := range column[1:] {
			if v < s.FeatureMin[j] {
				s.FeatureMin[j] = v
			}
			if v > s.FeatureMax[j] {
				s.FeatureMax[j] = v
			}
		}
		s.FeatureMean[j], s.FeatureStd[j] = stat.PopMeanStdDev(column, nil)
		if s.FeatureStd[j] == 0 {
			s.FeatureStd[j] = 1
		}
	}

	s.IsFitted = true
	return nil
}

// Transform returns scaled copies; the inputs are left untouched.
func (s *Scaler) Transform(X []Vector) ([]Vector, error) {
	if !s.IsFitted {
		return nil, errors.New("scaler must be fitted before transform")
	}

	result := make([]Vector, len(X))
	for i, row := range X {
		if len(row) != len(s.FeatureMean) {
			return nil, mlerr.ShapeMismatch(i, len(s.FeatureMean), len(row))
		}
		result[i] = make(Vector, len(row))
		for j, v := range row {
			switch s.ScaleType {
			case ScaleMinMax:
				span := s.FeatureMax[j] - s.FeatureMin[j]
				if span != 0 {
					result[i][j] = (v - s.FeatureMin[j]) / span
				}
			case ScaleStandard:
				result[i][j] = (v - s.FeatureMean[j]) / s.FeatureStd[j]
			default:
				result[i][j] = v
			}
		}
	}

	return result, nil
}

func (s *Scaler) FitTransform(X []Vector) ([]Vector, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
