package models

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/RuheSaniya/code-alpha-tasks/internal/features"
)

// LogisticRegression is a multinomial linear classifier trained with full
// batch gradient descent from zero weights, so fitting is deterministic.
type LogisticRegression struct {
	LearningRate float64
	Epochs       int
	L2           float64
	// ClassWeight is "" or "balanced". Balanced weights each sample by
	// n / (k * count(class)) to counter skewed label distributions.
	ClassWeight string
}

func NewLogisticRegression(learningRate float64, epochs int, l2 float64, classWeight string) (*LogisticRegression, error) {
	if learningRate <= 0 {
		learningRate = 0.1
	}
	if epochs <= 0 {
		epochs = 200
	}
	if l2 < 0 {
		return nil, errors.New("linear: l2 must not be negative")
	}
	if classWeight != "" && classWeight != "balanced" {
		return nil, errors.Errorf("linear: unknown class weight %q", classWeight)
	}
	return &LogisticRegression{
		LearningRate: learningRate,
		Epochs:       epochs,
		L2:           l2,
		ClassWeight:  classWeight,
	}, nil
}

func (lr *LogisticRegression) Name() string { return "LogisticRegression" }

func (lr *LogisticRegression) Params() map[string]any {
	return map[string]any{
		"learning_rate": lr.LearningRate,
		"epochs":        lr.Epochs,
		"l2":            lr.L2,
		"class_weight":  lr.ClassWeight,
	}
}

// LinearModel holds a row-major NFeatures x len(ClassList) weight matrix.
type LinearModel struct {
	BaseModel
	Weights []float64
	Bias    []float64
}

func (lr *LogisticRegression) Fit(X []features.Vector, y []int) (Trained, error) {
	d, err := checkFit(X, y)
	if err != nil {
		return nil, err
	}
	classes := ExtractClasses(y)
	pos := classPosition(classes)
	n, k := len(X), len(classes)

	lm := &LinearModel{
		BaseModel: BaseModel{
			ModelName:  lr.Name(),
			ClassList:  classes,
			NFeatures:  d,
			Parameters: lr.Params(),
		},
		Weights: make([]float64, d*k),
		Bias:    make([]float64, k),
	}
	if k == 1 {
		return lm, nil
	}

	sampleWeight := make([]float64, n)
	counts := make([]int, k)
	for _, label := range y {
		counts[pos[label]]++
	}
	totalWeight := 0.0
	for i, label := range y {
		sampleWeight[i] = 1
		if lr.ClassWeight == "balanced" {
			sampleWeight[i] = float64(n) / (float64(k) * float64(counts[pos[label]]))
		}
		totalWeight += sampleWeight[i]
	}

	xm := toDense(X)
	w := mat.NewDense(d, k, lm.Weights)
	logits := mat.NewDense(n, k, nil)
	grad := mat.NewDense(d, k, nil)
	gradBias := make([]float64, k)

	for epoch := 0; epoch < lr.Epochs; epoch++ {
		logits.Mul(xm, w)
		for i := 0; i < n; i++ {
			row := logits.RawRowView(i)
			for j := range row {
				row[j] += lm.Bias[j]
			}
			softmaxInPlace(row)
			row[pos[y[i]]] -= 1
			for j := range row {
				row[j] *= sampleWeight[i] / totalWeight
			}
		}

		grad.Mul(xm.T(), logits)
		if lr.L2 > 0 {
			grad.Add(grad, scaled(w, lr.L2))
		}
		for j := 0; j < k; j++ {
			gradBias[j] = mat.Sum(logits.ColView(j))
		}

		grad.Scale(lr.LearningRate, grad)
		w.Sub(w, grad)
		for j := range lm.Bias {
			lm.Bias[j] -= lr.LearningRate * gradBias[j]
		}
	}

	for _, v := range lm.Weights {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New("linear: training diverged, lower the learning rate")
		}
	}

	return lm, nil
}

func scaled(m *mat.Dense, f float64) *mat.Dense {
	var out mat.Dense
	out.Scale(f, m)
	return &out
}

func toDense(X []features.Vector) *mat.Dense {
	d := len(X[0])
	raw := make([]float64, 0, len(X)*d)
	for _, row := range X {
		raw = append(raw, row...)
	}
	return mat.NewDense(len(X), d, raw)
}

func (lm *LinearModel) logits(X []features.Vector) *mat.Dense {
	k := len(lm.ClassList)
	out := mat.NewDense(len(X), k, nil)
	out.Mul(toDense(X), mat.NewDense(lm.NFeatures, k, lm.Weights))
	for i := range X {
		row := out.RawRowView(i)
		for j := range row {
			row[j] += lm.Bias[j]
		}
	}
	return out
}

func (lm *LinearModel) Predict(X []features.Vector) ([]int, error) {
	if err := checkPredict(X, lm.NFeatures); err != nil {
		return nil, err
	}
	predictions := make([]int, len(X))
	if len(X) == 0 {
		return predictions, nil
	}

	logits := lm.logits(X)
	for i := range X {
		predictions[i] = lm.ClassList[argmax(logits.RawRowView(i))]
	}
	return predictions, nil
}

func (lm *LinearModel) PredictScores(X []features.Vector) ([][]float64, error) {
	if err := checkPredict(X, lm.NFeatures); err != nil {
		return nil, err
	}
	scores := make([][]float64, len(X))
	if len(X) == 0 {
		return scores, nil
	}

	logits := lm.logits(X)
	for i := range X {
		scores[i] = softmax(logits.RawRowView(i))
	}
	return scores, nil
}
