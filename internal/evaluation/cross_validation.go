package evaluation

import (
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
	"github.com/RuheSaniya/code-alpha-tasks/internal/features"
	"github.com/RuheSaniya/code-alpha-tasks/internal/models"
)

type CrossValidator struct {
	NFolds     int
	Stratified bool
	Shuffle    bool
	RandomSeed int64
	Workers    int
}

func NewCrossValidator(nFolds int, stratified bool) *CrossValidator {
	return &CrossValidator{
		NFolds:     nFolds,
		Stratified: stratified,
		Shuffle:    true,
		RandomSeed: 42,
		Workers:    1,
	}
}

// CVResult holds one accuracy per fold.
type CVResult struct {
	Scores []float64 `json:"scores" yaml:"scores"`
	Mean   float64   `json:"mean" yaml:"mean"`
	Std    float64   `json:"std" yaml:"std"`
}

// CrossValidate fits a fresh model per fold. The estimator holds no state,
// so folds never share learned parameters.
func (cv *CrossValidator) CrossValidate(
	X []features.Vector,
	y []int,
	estimator models.Estimator,
	labels data.LabelSet,
) (*CVResult, error) {

	folds, err := KFold(y, cv.NFolds, cv.Stratified, cv.Shuffle, cv.RandomSeed)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(folds))
	errs := make([]error, len(folds))

	workers := cv.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(folds) {
		workers = len(folds)
	}

	jobs := make(chan int, len(folds))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				scores[i], errs[i] = cv.evaluateFold(X, y, estimator, labels, folds[i])
			}
		}()
	}

	for i := range folds {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, errors.Wrapf(err, "fold %d failed", i)
		}
	}

	result := &CVResult{Scores: scores}
	result.Mean, result.Std = stat.MeanStdDev(scores, nil)
	return result, nil
}

func (cv *CrossValidator) evaluateFold(
	X []features.Vector,
	y []int,
	estimator models.Estimator,
	labels data.LabelSet,
	testIndices []int,
) (float64, error) {

	trainIndices := Complement(len(X), testIndices)

	model, err := estimator.Fit(Take(X, trainIndices), Take(y, trainIndices))
	if err != nil {
		return 0, err
	}

	predictions, err := model.Predict(Take(X, testIndices))
	if err != nil {
		return 0, err
	}

	report, err := Evaluate(predictions, Take(y, testIndices), labels)
	if err != nil {
		return 0, err
	}
	return report.Accuracy, nil
}
