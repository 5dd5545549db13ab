package evaluation

import (
	"math/rand"
	"sort"

	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

// TrainTestSplitter partitions sample indices. Splits are a pure function of
// the seed and the labels.
type TrainTestSplitter struct {
	testSize   float64
	randomSeed int64
	shuffle    bool
}

func NewTrainTestSplitter(testSize float64, randomSeed int64, shuffle bool) *TrainTestSplitter {
	return &TrainTestSplitter{
		testSize:   testSize,
		randomSeed: randomSeed,
		shuffle:    shuffle,
	}
}

func (tts *TrainTestSplitter) validate(n int) error {
	if n == 0 {
		return errors.Wrap(mlerr.ErrEmptyTrainingSet, "cannot split empty dataset")
	}
	if tts.testSize <= 0 || tts.testSize >= 1 {
		return errors.New("test size must be between 0 and 1")
	}
	return nil
}

// Split returns train and test indices for n samples.
func (tts *TrainTestSplitter) Split(n int) ([]int, []int, error) {
	if err := tts.validate(n); err != nil {
		return nil, nil, err
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	if tts.shuffle {
		rng := rand.New(rand.NewSource(tts.randomSeed))
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	testCount := int(float64(n) * tts.testSize)
	trainCount := n - testCount
	if trainCount == 0 {
		return nil, nil, errors.Wrap(mlerr.ErrEmptyTrainingSet, "test size leaves no training samples")
	}

	return indices[:trainCount], indices[trainCount:], nil
}

// StratifiedSplit keeps every class's share in both parts. Each class with at
// least two samples contributes one or more test samples.
func (tts *TrainTestSplitter) StratifiedSplit(y []int) ([]int, []int, error) {
	if err := tts.validate(len(y)); err != nil {
		return nil, nil, err
	}

	classIndices := make(map[int][]int)
	for i, label := range y {
		classIndices[label] = append(classIndices[label], i)
	}
	classes := make([]int, 0, len(classIndices))
	for c := range classIndices {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	var trainIndices, testIndices []int

	rng := rand.New(rand.NewSource(tts.randomSeed))
	for _, class := range classes {
		indices := classIndices[class]
		if tts.shuffle {
			rng.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}

		testCount := int(float64(len(indices)) * tts.testSize)
		if testCount == 0 && len(indices) > 1 {
			testCount = 1
		}

		trainCount := len(indices) - testCount
		trainIndices = append(trainIndices, indices[:trainCount]...)
		testIndices = append(testIndices, indices[trainCount:]...)
	}

	if tts.shuffle {
		rng.Shuffle(len(trainIndices), func(i, j int) {
			trainIndices[i], trainIndices[j] = trainIndices[j], trainIndices[i]
		})
		rng.Shuffle(len(testIndices), func(i, j int) {
			testIndices[i], testIndices[j] = testIndices[j], testIndices[i]
		})
	}

	return trainIndices, testIndices, nil
}

// KFold returns the test indices of each of nFolds folds. With stratify set,
// samples of each class are dealt round robin so folds keep class shares.
func KFold(y []int, nFolds int, stratify, shuffle bool, seed int64) ([][]int, error) {
	n := len(y)
	if nFolds < 2 || nFolds > n {
		return nil, errors.Errorf("invalid number of folds: %d (must be between 2 and %d)", nFolds, n)
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if shuffle {
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([][]int, nFolds)
	if stratify {
		sort.SliceStable(indices, func(a, b int) bool { return y[indices[a]] < y[indices[b]] })
		for i, idx := range indices {
			folds[i%nFolds] = append(folds[i%nFolds], idx)
		}
		return folds, nil
	}

	foldSize := n / nFolds
	for i := 0; i < nFolds; i++ {
		start := i * foldSize
		end := start + foldSize
		if i == nFolds-1 {
			end = n
		}
		folds[i] = append([]int(nil), indices[start:end]...)
	}

	return folds, nil
}

// Complement returns the indices in [0, n) not in subset, ascending.
func Complement(n int, subset []int) []int {
	in := make([]bool, n)
	for _, idx := range subset {
		in[idx] = true
	}
	out := make([]int, 0, n-len(subset))
	for i := 0; i < n; i++ {
		if !in[i] {
			out = append(out, i)
		}
	}
	return out
}

// Take selects items by index.
func Take[T any](items []T, indices []int) []T {
	out := make([]T, len(indices))
	for i, idx := range indices {
		out[i] = items[idx]
	}
	return out
}
