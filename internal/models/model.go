// Package models holds the swappable classifier strategies.
//
// An Estimator is configuration only; Fit returns a new Trained value that
// owns every learned parameter and is never modified by Predict, so one
// Trained value may serve concurrent callers.
package models

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/xtgo/set"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
	"github.com/RuheSaniya/code-alpha-tasks/internal/features"
	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

// Estimator fits a model to class indices.
type Estimator interface {
	Fit(X []features.Vector, y []int) (Trained, error)
	Name() string
	Params() map[string]any
}

// Trained is the read-only artifact produced by Fit.
type Trained interface {
	Predict(X []features.Vector) ([]int, error)
	// Classes lists the class indices seen during fitting, ascending.
	Classes() []int
	// Dim is the feature length the model was trained on.
	Dim() int
	Name() string
}

// Scorer is implemented by models that produce per-class probabilities. Column
// j of each row is the probability of Classes()[j].
type Scorer interface {
	PredictScores(X []features.Vector) ([][]float64, error)
}

// PredictScores returns class probabilities or ErrUnsupportedCapability.
func PredictScores(m Trained, X []features.Vector) ([][]float64, error) {
	s, ok := m.(Scorer)
	if !ok {
		return nil, mlerr.Unsupported(m.Name(), "predict_scores")
	}
	return s.PredictScores(X)
}

// BaseModel carries what every trained model exposes. Fields are exported for
// gob.
type BaseModel struct {
	ModelName  string
	ClassList  []int
	NFeatures  int
	Parameters map[string]any
}

func (bm *BaseModel) Name() string { return bm.ModelName }

func (bm *BaseModel) Classes() []int { return bm.ClassList }

func (bm *BaseModel) Dim() int { return bm.NFeatures }

func (bm *BaseModel) Params() map[string]any { return bm.Parameters }

// ExtractClasses returns the sorted distinct labels of y.
func ExtractClasses(y []int) []int {
	classes := append([]int(nil), y...)
	sort.Ints(classes)
	n := set.Uniq(sort.IntSlice(classes))
	return classes[:n]
}

// checkFit validates a training set and returns its feature length.
func checkFit(X []features.Vector, y []int) (int, error) {
	if len(X) == 0 || len(y) == 0 {
		return 0, errors.Wrapf(mlerr.ErrEmptyTrainingSet, "%d samples, %d labels", len(X), len(y))
	}
	if err := data.ValidateDataset(X, y); err != nil {
		return 0, err
	}
	for i, label := range y {
		if label < 0 {
			return 0, errors.Wrapf(data.ErrUnknownLabel, "negative class %d at sample %d", label, i)
		}
	}
	return len(X[0]), nil
}

// checkPredict validates that every row has the trained feature length.
func checkPredict(X []features.Vector, dim int) error {
	for i, row := range X {
		if len(row) != dim {
			return mlerr.ShapeMismatch(i, dim, len(row))
		}
	}
	return nil
}

// classPosition maps a class index to its column in Classes().
func classPosition(classes []int) map[int]int {
	pos := make(map[int]int, len(classes))
	for i, c := range classes {
		pos[c] = i
	}
	return pos
}

// argmax returns the first index of the largest value.
func argmax(v []float64) int {
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

// majority returns the class with most votes; ties go to the smallest class.
func majority(votes map[int]int, classes []int) int {
	best, bestCount := classes[0], -1
	for _, c := range classes {
		if votes[c] > bestCount {
			best, bestCount = c, votes[c]
		}
	}
	return best
}
