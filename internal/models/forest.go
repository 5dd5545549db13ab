package models

import (
	"math"
	"math/rand"
	"sync"

	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/features"
)

// RandomForest bags decision trees over bootstrap samples. Every split inside
// a tree scores a fresh random subset of sqrt(d) features. Tree i is always grown from seed Seed+i, so the result does not
// depend on Workers.
type RandomForest struct {
	NTrees          int
	MaxDepth        int
	MinSamplesSplit int
	Seed            int64
	Workers         int
}

func NewRandomForest(nTrees, maxDepth, minSamplesSplit int) *RandomForest {
	if nTrees <= 0 {
		nTrees = 100
	}
	return &RandomForest{
		NTrees:          nTrees,
		MaxDepth:        maxDepth,
		MinSamplesSplit: minSamplesSplit,
		Workers:         1,
	}
}

func (rf *RandomForest) Name() string { return "RandomForest" }

func (rf *RandomForest) Params() map[string]any {
	return map[string]any{
		"n_trees":           rf.NTrees,
		"max_depth":         rf.MaxDepth,
		"min_samples_split": rf.MinSamplesSplit,
		"seed":              rf.Seed,
	}
}

type ForestModel struct {
	BaseModel
	Trees []*TreeModel
}

func (rf *RandomForest) Fit(X []features.Vector, y []int) (Trained, error) {
	nFeatures, err := checkFit(X, y)
	if err != nil {
		return nil, err
	}

	maxFeatures := int(math.Sqrt(float64(nFeatures)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	fm := &ForestModel{
		BaseModel: BaseModel{
			ModelName:  rf.Name(),
			ClassList:  ExtractClasses(y),
			NFeatures:  nFeatures,
			Parameters: rf.Params(),
		},
		Trees: make([]*TreeModel, rf.NTrees),
	}

	workers := rf.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > rf.NTrees {
		workers = rf.NTrees
	}

	errs := make([]error, rf.NTrees)
	jobs := make(chan int, rf.NTrees)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fm.Trees[i], errs[i] = rf.trainSingleTree(X, y, maxFeatures, rf.Seed+int64(i))
			}
		}()
	}

	for i := 0; i < rf.NTrees; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, errors.Wrapf(err, "tree %d training failed", i)
		}
	}

	return fm, nil
}

func (rf *RandomForest) trainSingleTree(X []features.Vector, y []int, maxFeatures int, seed int64) (*TreeModel, error) {
	r := rand.New(rand.NewSource(seed))

	n := len(X)
	XBoot := make([]features.Vector, n)
	yBoot := make([]int, n)
	for i := 0; i < n; i++ {
		idx := r.Intn(n)
		XBoot[i] = X[idx]
		yBoot[i] = y[idx]
	}

	dt := NewDecisionTree(rf.MaxDepth, rf.MinSamplesSplit)
	dt.MaxFeatures = maxFeatures
	dt.rng = r
	return dt.fit(XBoot, yBoot)
}

func (fm *ForestModel) votes(sample features.Vector) map[int]int {
	votes := make(map[int]int)
	for _, tree := range fm.Trees {
		votes[predictSample(sample, tree.Root)]++
	}
	return votes
}

func (fm *ForestModel) Predict(X []features.Vector) ([]int, error) {
	if err := checkPredict(X, fm.NFeatures); err != nil {
		return nil, err
	}

	predictions := make([]int, len(X))
	for i, sample := range X {
		predictions[i] = majority(fm.votes(sample), fm.ClassList)
	}

	return predictions, nil
}

// PredictScores returns the fraction of trees voting for each class.
func (fm *ForestModel) PredictScores(X []features.Vector) ([][]float64, error) {
	if err := checkPredict(X, fm.NFeatures); err != nil {
		return nil, err
	}

	scores := make([][]float64, len(X))
	nTrees := float64(len(fm.Trees))
	for i, sample := range X {
		votes := fm.votes(sample)
		scores[i] = make([]float64, len(fm.ClassList))
		for j, class := range fm.ClassList {
			scores[i][j] = float64(votes[class]) / nTrees
		}
	}

	return scores, nil
}
