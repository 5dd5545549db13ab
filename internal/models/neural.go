package models

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/features"
)

// NeuralNet is a feed-forward classifier trained with seeded minibatch SGD on
// cross-entropy.
type NeuralNet struct {
	Hidden       int
	LearningRate float64
	Epochs       int
	BatchSize    int
	Seed         int64
}

func NewNeuralNet(hidden int, learningRate float64, epochs, batchSize int, seed int64) *NeuralNet {
	if hidden <= 0 {
		hidden = 32
	}
	if learningRate <= 0 {
		learningRate = 0.05
	}
	if epochs <= 0 {
		epochs = 100
	}
	if batchSize <= 0 {
		batchSize = 16
	}
	return &NeuralNet{
		Hidden:       hidden,
		LearningRate: learningRate,
		Epochs:       epochs,
		BatchSize:    batchSize,
		Seed:         seed,
	}
}

func (nn *NeuralNet) Name() string { return "NeuralNet" }

func (nn *NeuralNet) Params() map[string]any {
	return map[string]any{
		"hidden":        nn.Hidden,
		"learning_rate": nn.LearningRate,
		"epochs":        nn.Epochs,
		"batch_size":    nn.BatchSize,
		"seed":          nn.Seed,
	}
}

type NeuralModel struct {
	BaseModel
	Net *Network
}

func (nn *NeuralNet) Fit(X []features.Vector, y []int) (Trained, error) {
	d, err := checkFit(X, y)
	if err != nil {
		return nil, err
	}
	classes := ExtractClasses(y)
	pos := classPosition(classes)

	r := rand.New(rand.NewSource(nn.Seed))
	net := newNetwork(d, nn.Hidden, len(classes), r)
	grad := zeroNetwork(d, nn.Hidden, len(classes))

	order := make([]int, len(X))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < nn.Epochs; epoch++ {
		r.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for start := 0; start < len(order); start += nn.BatchSize {
			end := start + nn.BatchSize
			if end > len(order) {
				end = len(order)
			}
			for _, idx := range order[start:end] {
				hidden, logits := net.forward(X[idx])
				probs := softmax(logits)
				probs[pos[y[idx]]] -= 1
				net.backward(X[idx], hidden, probs, grad)
			}
			net.step(grad, nn.LearningRate/float64(end-start))
		}
	}

	if !net.finite() {
		return nil, errors.New("neural: training diverged, lower the learning rate")
	}

	return &NeuralModel{
		BaseModel: BaseModel{
			ModelName:  nn.Name(),
			ClassList:  classes,
			NFeatures:  d,
			Parameters: nn.Params(),
		},
		Net: net,
	}, nil
}

func (nm *NeuralModel) Predict(X []features.Vector) ([]int, error) {
	if err := checkPredict(X, nm.NFeatures); err != nil {
		return nil, err
	}
	predictions := make([]int, len(X))
	for i, x := range X {
		_, logits := nm.Net.forward(x)
		predictions[i] = nm.ClassList[argmax(logits)]
	}
	return predictions, nil
}

func (nm *NeuralModel) PredictScores(X []features.Vector) ([][]float64, error) {
	if err := checkPredict(X, nm.NFeatures); err != nil {
		return nil, err
	}
	scores := make([][]float64, len(X))
	for i, x := range X {
		_, logits := nm.Net.forward(x)
		scores[i] = softmax(logits)
	}
	return scores, nil
}
