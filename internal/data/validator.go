package data

import (
	"math"

	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

// ValidateDataset checks that X is non-empty, rectangular, finite and paired
// with y.
func ValidateDataset[V ~[]float64](X []V, y []int) error {
	if len(X) == 0 {
		return errors.Wrap(mlerr.ErrEmptyTrainingSet, "dataset is empty")
	}

	if len(X) != len(y) {
		return mlerr.LengthMismatch("features and labels", len(X), len(y))
	}

	nFeatures := len(X[0])
	if nFeatures == 0 {
		return errors.Wrap(mlerr.ErrShapeMismatch, "features cannot be empty")
	}

	for i, sample := range X {
		if len(sample) != nFeatures {
			return mlerr.ShapeMismatch(i, nFeatures, len(sample))
		}
		for j, value := range sample {
			if math.IsNaN(value) || math.IsInf(value, 0) {
				return errors.Errorf("non-finite value at sample %d, feature %d", i, j)
			}
		}
	}

	return nil
}

// ValidateLabels checks that y is non-empty and every index is below nClasses.
func ValidateLabels(y []int, nClasses int) error {
	if len(y) == 0 {
		return errors.Wrap(mlerr.ErrEmptyTrainingSet, "labels are empty")
	}

	for i, label := range y {
		if label < 0 || label >= nClasses {
			return errors.Wrapf(ErrUnknownLabel, "label index %d at sample %d", label, i)
		}
	}

	return nil
}

// DatasetStats summarises a dataset.
type DatasetStats struct {
	Samples           int
	Features          int
	Classes           int
	ClassDistribution map[int]int
	FeatureMin        []float64
	FeatureMax        []float64
	FeatureMean       []float64
}

// GetDatasetStats returns per-feature ranges and the class distribution.
func GetDatasetStats[V ~[]float64](X []V, y []int) DatasetStats {
	stats := DatasetStats{ClassDistribution: make(map[int]int)}
	for _, label := range y {
		stats.ClassDistribution[label]++
	}
	stats.Classes = len(stats.ClassDistribution)
	if len(X) == 0 {
		return stats
	}

	stats.Samples = len(X)
	stats.Features = len(X[0])
	stats.FeatureMin = make([]float64, stats.Features)
	stats.FeatureMax = make([]float64, stats.Features)
	stats.FeatureMean = make([]float64, stats.Features)

	for j := 0; j < stats.Features; j++ {
		stats.FeatureMin[j] = X[0][j]
		stats.FeatureMax[j] = X[0][j]
		sum := 0.0
		for _, row := range X {
			v := row[j]
			if v < stats.FeatureMin[j] {
				stats.FeatureMin[j] = v
			}
			if v > stats.FeatureMax[j] {
				stats.FeatureMax[j] = v
			}
			sum += v
		}
		stats.FeatureMean[j] = sum / float64(len(X))
	}

	return stats
}
