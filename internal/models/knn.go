package models

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/features"
)

const (
	DistanceEuclidean = "euclidean"
	DistanceManhattan = "manhattan"
)

// KNN classifies by majority vote among the K nearest training samples.
// Equal distances are ordered by training position.
type KNN struct {
	K        int
	Distance string
}

func NewKNN(k int, distance string) (*KNN, error) {
	if k <= 0 {
		return nil, errors.Errorf("knn: k must be positive, got %d", k)
	}

	switch distance {
	case "":
		distance = DistanceEuclidean
	case DistanceEuclidean, DistanceManhattan:
	default:
		return nil, errors.Errorf("knn: unknown distance %q", distance)
	}

	return &KNN{K: k, Distance: distance}, nil
}

func (knn *KNN) Name() string { return "KNN" }

func (knn *KNN) Params() map[string]any {
	return map[string]any{
		"k":        knn.K,
		"distance": knn.Distance,
	}
}

type KNNModel struct {
	BaseModel
	K        int
	Distance string
	XTrain   []features.Vector
	YTrain   []int
}

func (knn *KNN) Fit(X []features.Vector, y []int) (Trained, error) {
	nFeatures, err := checkFit(X, y)
	if err != nil {
		return nil, err
	}

	km := &KNNModel{
		BaseModel: BaseModel{
			ModelName:  knn.Name(),
			ClassList:  ExtractClasses(y),
			NFeatures:  nFeatures,
			Parameters: knn.Params(),
		},
		K:        knn.K,
		Distance: knn.Distance,
		XTrain:   make([]features.Vector, len(X)),
		YTrain:   append([]int(nil), y...),
	}
	for i := range X {
		km.XTrain[i] = X[i].Clone()
	}

	return km, nil
}

func (km *KNNModel) Predict(X []features.Vector) ([]int, error) {
	if err := checkPredict(X, km.NFeatures); err != nil {
		return nil, err
	}

	predictions := make([]int, len(X))
	for i, sample := range X {
		predictions[i] = majority(km.neighborVotes(sample), km.ClassList)
	}

	return predictions, nil
}

// PredictScores returns the share of the K neighbours in each class.
func (km *KNNModel) PredictScores(X []features.Vector) ([][]float64, error) {
	if err := checkPredict(X, km.NFeatures); err != nil {
		return nil, err
	}

	proba := make([][]float64, len(X))
	for i, sample := range X {
		votes := km.neighborVotes(sample)
		total := 0
		for _, v := range votes {
			total += v
		}
		proba[i] = make([]float64, len(km.ClassList))
		for j, class := range km.ClassList {
			proba[i][j] = float64(votes[class]) / float64(total)
		}
	}

	return proba, nil
}

func (km *KNNModel) neighborVotes(sample features.Vector) map[int]int {
	type neighbor struct {
		index    int
		distance float64
	}

	neighbors := make([]neighbor, len(km.XTrain))
	for i, trainSample := range km.XTrain {
		neighbors[i] = neighbor{index: i, distance: km.calculateDistance(sample, trainSample)}
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].distance < neighbors[j].distance
	})

	votes := make(map[int]int)
	for i := 0; i < km.K && i < len(neighbors); i++ {
		votes[km.YTrain[neighbors[i].index]]++
	}
	return votes
}

func (km *KNNModel) calculateDistance(a, b features.Vector) float64 {
	sum := 0.0
	switch km.Distance {
	case DistanceManhattan:
		for i := range a {
			sum += math.Abs(a[i] - b[i])
		}
		return sum
	default:
		for i := range a {
			diff := a[i] - b[i]
			sum += diff * diff
		}
		return math.Sqrt(sum)
	}
}
