package models

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/RuheSaniya/code-alpha-tasks/internal/features"
)

// NaiveBayes is a gaussian naive Bayes classifier computed in log space.
type NaiveBayes struct {
	VarSmoothing float64
}

func NewNaiveBayes(varSmoothing float64) *NaiveBayes {
	if varSmoothing <= 0 {
		varSmoothing = 1e-9
	}
	return &NaiveBayes{VarSmoothing: varSmoothing}
}

func (nb *NaiveBayes) Name() string { return "NaiveBayes" }

func (nb *NaiveBayes) Params() map[string]any {
	return map[string]any{"var_smoothing": nb.VarSmoothing}
}

// BayesModel stores per-class priors and feature moments, indexed like
// ClassList.
type BayesModel struct {
	BaseModel
	ClassLogPriors []float64
	FeatureMeans   [][]float64
	FeatureVars    [][]float64
}

func (nb *NaiveBayes) Fit(X []features.Vector, y []int) (Trained, error) {
	nFeatures, err := checkFit(X, y)
	if err != nil {
		return nil, err
	}
	classes := ExtractClasses(y)

	bm := &BayesModel{
		BaseModel: BaseModel{
			ModelName:  nb.Name(),
			ClassList:  classes,
			NFeatures:  nFeatures,
			Parameters: nb.Params(),
		},
		ClassLogPriors: make([]float64, len(classes)),
		FeatureMeans:   make([][]float64, len(classes)),
		FeatureVars:    make([][]float64, len(classes)),
	}

	// Smoothing is relative to the largest feature variance, as in sklearn.
	maxVar := 0.0
	for j := 0; j < nFeatures; j++ {
		mean, sq := 0.0, 0.0
		for _, row := range X {
			mean += row[j]
		}
		mean /= float64(len(X))
		for _, row := range X {
			d := row[j] - mean
			sq += d * d
		}
		maxVar = math.Max(maxVar, sq/float64(len(X)))
	}
	epsilon := nb.VarSmoothing * math.Max(maxVar, 1)

	for k, class := range classes {
		var classData []features.Vector
		for i, label := range y {
			if label == class {
				classData = append(classData, X[i])
			}
		}

		count := float64(len(classData))
		bm.ClassLogPriors[k] = math.Log(count / float64(len(y)))
		bm.FeatureMeans[k] = make([]float64, nFeatures)
		bm.FeatureVars[k] = make([]float64, nFeatures)

		for j := 0; j < nFeatures; j++ {
			sum := 0.0
			for _, row := range classData {
				sum += row[j]
			}
			mean := sum / count

			variance := 0.0
			for _, row := range classData {
				diff := row[j] - mean
				variance += diff * diff
			}
			bm.FeatureMeans[k][j] = mean
			bm.FeatureVars[k][j] = variance/count + epsilon
		}
	}

	return bm, nil
}

func (bm *BayesModel) jointLogLikelihood(sample features.Vector) []float64 {
	logProbs := make([]float64, len(bm.ClassList))
	for k := range bm.ClassList {
		logProb := bm.ClassLogPriors[k]
		for j, x := range sample {
			variance := bm.FeatureVars[k][j]
			diff := x - bm.FeatureMeans[k][j]
			logProb += -0.5*math.Log(2*math.Pi*variance) - (diff*diff)/(2*variance)
		}
		logProbs[k] = logProb
	}
	return logProbs
}

func (bm *BayesModel) Predict(X []features.Vector) ([]int, error) {
	if err := checkPredict(X, bm.NFeatures); err != nil {
		return nil, err
	}

	predictions := make([]int, len(X))
	for i, sample := range X {
		predictions[i] = bm.ClassList[argmax(bm.jointLogLikelihood(sample))]
	}

	return predictions, nil
}

func (bm *BayesModel) PredictScores(X []features.Vector) ([][]float64, error) {
	if err := checkPredict(X, bm.NFeatures); err != nil {
		return nil, err
	}

	proba := make([][]float64, len(X))
	for i, sample := range X {
		proba[i] = softmax(bm.jointLogLikelihood(sample))
	}

	return proba, nil
}

// softmax normalises log scores into a new slice of probabilities.
func softmax(logits []float64) []float64 {
	return softmaxInPlace(append([]float64(nil), logits...))
}

// softmaxInPlace overwrites logits with their probabilities.
func softmaxInPlace(logits []float64) []float64 {
	lse := floats.LogSumExp(logits)
	for i, v := range logits {
		logits[i] = math.Exp(v - lse)
	}
	return logits
}
