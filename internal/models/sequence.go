package models

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/RuheSaniya/code-alpha-tasks/internal/features"
	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

// SequenceNet reads each vector as consecutive frames of FrameDim values,
// scores every frame with a shared network and is trained with the CTC loss,
// so targets need no frame alignment.
type SequenceNet struct {
	FrameDim     int
	NumSymbols   int
	Blank        int
	Hidden       int
	LearningRate float64
	Epochs       int
	Seed         int64
	Decoder      DecoderSpec
}

func NewSequenceNet(frameDim, numSymbols, blank, hidden int, learningRate float64, epochs int, seed int64, decoder DecoderSpec) (*SequenceNet, error) {
	if frameDim <= 0 {
		return nil, errors.New("sequence: frame_dim must be positive")
	}
	if numSymbols < 2 {
		return nil, errors.New("sequence: need at least one symbol besides blank")
	}
	if blank < 0 || blank >= numSymbols {
		return nil, errors.Errorf("sequence: blank %d outside %d symbols", blank, numSymbols)
	}
	if _, err := NewDecoder(decoder, blank); err != nil {
		return nil, err
	}
	if hidden <= 0 {
		hidden = 32
	}
	if learningRate <= 0 {
		learningRate = 0.05
	}
	if epochs <= 0 {
		epochs = 50
	}
	return &SequenceNet{
		FrameDim:     frameDim,
		NumSymbols:   numSymbols,
		Blank:        blank,
		Hidden:       hidden,
		LearningRate: learningRate,
		Epochs:       epochs,
		Seed:         seed,
		Decoder:      decoder,
	}, nil
}

func (sn *SequenceNet) Name() string { return "SequenceNet" }

func (sn *SequenceNet) Params() map[string]any {
	return map[string]any{
		"frame_dim":     sn.FrameDim,
		"hidden":        sn.Hidden,
		"learning_rate": sn.LearningRate,
		"epochs":        sn.Epochs,
		"seed":          sn.Seed,
		"decoder":       sn.Decoder.Kind,
	}
}

// SequenceModel is a fitted SequenceNet.
type SequenceModel struct {
	ModelName  string
	Net        *Network
	FrameDim   int
	NFeatures  int
	Blank      int
	Decoding   DecoderSpec
	Parameters map[string]any
}

// SequenceDecoder is implemented by models that emit symbol sequences.
type SequenceDecoder interface {
	Decode(X []features.Vector) ([][]int, error)
}

// Decode runs m's sequence decoding or returns ErrUnsupportedCapability.
func Decode(m any, X []features.Vector) ([][]int, error) {
	if d, ok := m.(SequenceDecoder); ok {
		return d.Decode(X)
	}
	name := "model"
	if n, ok := m.(interface{ Name() string }); ok {
		name = n.Name()
	}
	return nil, mlerr.Unsupported(name, "sequence decoding")
}

// minFrames is the shortest input that can emit target under CTC: one frame
// per symbol plus a blank between repeated symbols.
func minFrames(target []int) int {
	n := len(target)
	for i := 1; i < len(target); i++ {
		if target[i] == target[i-1] {
			n++
		}
	}
	return n
}

// FitSequences trains on vectors X and their symbol index targets.
func (sn *SequenceNet) FitSequences(X []features.Vector, targets [][]int) (*SequenceModel, error) {
	if len(X) == 0 || len(targets) == 0 {
		return nil, errors.Wrapf(mlerr.ErrEmptyTrainingSet, "%d samples, %d targets", len(X), len(targets))
	}
	if len(X) != len(targets) {
		return nil, mlerr.LengthMismatch("features and targets", len(X), len(targets))
	}
	dim := len(X[0])
	if dim == 0 || dim%sn.FrameDim != 0 {
		return nil, errors.Wrapf(mlerr.ErrShapeMismatch, "%d features do not split into frames of %d", dim, sn.FrameDim)
	}
	frames := dim / sn.FrameDim
	for i, x := range X {
		if len(x) != dim {
			return nil, mlerr.ShapeMismatch(i, dim, len(x))
		}
		for _, s := range targets[i] {
			if s < 0 || s >= sn.NumSymbols || s == sn.Blank {
				return nil, errors.Errorf("sequence: target %d holds invalid symbol %d", i, s)
			}
		}
		if need := minFrames(targets[i]); need > frames {
			return nil, errors.Wrapf(mlerr.ErrShapeMismatch, "target %d needs %d frames, input has %d", i, need, frames)
		}
	}

	r := rand.New(rand.NewSource(sn.Seed))
	net := newNetwork(sn.FrameDim, sn.Hidden, sn.NumSymbols, r)
	grad := zeroNetwork(sn.FrameDim, sn.Hidden, sn.NumSymbols)

	order := make([]int, len(X))
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < sn.Epochs; epoch++ {
		r.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for _, idx := range order {
			x := X[idx]
			hidden := make([][]float64, frames)
			logProbs := make([][]float64, frames)
			for t := 0; t < frames; t++ {
				h, logits := net.forward(x[t*sn.FrameDim : (t+1)*sn.FrameDim])
				hidden[t] = h
				logProbs[t] = logSoftmax(logits)
			}

			dLogits, _ := ctcGradient(logProbs, targets[idx], sn.Blank)
			for t := 0; t < frames; t++ {
				net.backward(x[t*sn.FrameDim:(t+1)*sn.FrameDim], hidden[t], dLogits[t], grad)
			}
			net.step(grad, sn.LearningRate/float64(frames))
		}
	}

	if !net.finite() {
		return nil, errors.New("sequence: training diverged, lower the learning rate")
	}

	return &SequenceModel{
		ModelName:  sn.Name(),
		Net:        net,
		FrameDim:   sn.FrameDim,
		NFeatures:  dim,
		Blank:      sn.Blank,
		Decoding:   sn.Decoder,
		Parameters: sn.Params(),
	}, nil
}

func (sm *SequenceModel) Name() string { return sm.ModelName }

func (sm *SequenceModel) Dim() int { return sm.NFeatures }

// FrameScores returns per-frame symbol probabilities for one vector.
func (sm *SequenceModel) FrameScores(x features.Vector) ([][]float64, error) {
	if len(x) != sm.NFeatures {
		return nil, mlerr.ShapeMismatch(0, sm.NFeatures, len(x))
	}
	frames := sm.NFeatures / sm.FrameDim
	out := make([][]float64, frames)
	for t := 0; t < frames; t++ {
		_, logits := sm.Net.forward(x[t*sm.FrameDim : (t+1)*sm.FrameDim])
		out[t] = softmax(logits)
	}
	return out, nil
}

func (sm *SequenceModel) Decode(X []features.Vector) ([][]int, error) {
	dec, err := NewDecoder(sm.Decoding, sm.Blank)
	if err != nil {
		return nil, err
	}
	return sm.DecodeWith(dec, X)
}

// DecodeWith decodes X with an explicit decoding strategy.
func (sm *SequenceModel) DecodeWith(dec Decoder, X []features.Vector) ([][]int, error) {
	if err := checkPredict(X, sm.NFeatures); err != nil {
		return nil, err
	}
	out := make([][]int, len(X))
	for i, x := range X {
		scores, err := sm.FrameScores(x)
		if err != nil {
			return nil, err
		}
		out[i] = dec.Decode(scores)
	}
	return out, nil
}

// Loss returns the mean CTC negative log-likelihood of targets.
func (sm *SequenceModel) Loss(X []features.Vector, targets [][]int) (float64, error) {
	if len(X) != len(targets) {
		return 0, mlerr.LengthMismatch("features and targets", len(X), len(targets))
	}
	if err := checkPredict(X, sm.NFeatures); err != nil {
		return 0, err
	}
	if len(X) == 0 {
		return 0, nil
	}
	total := 0.0
	for i, x := range X {
		scores, err := sm.FrameScores(x)
		if err != nil {
			return 0, err
		}
		logProbs := make([][]float64, len(scores))
		for t, s := range scores {
			logProbs[t] = make([]float64, len(s))
			for k, p := range s {
				logProbs[t][k] = math.Log(p)
			}
		}
		_, ll := ctcGradient(logProbs, targets[i], sm.Blank)
		total -= ll
	}
	return total / float64(len(X)), nil
}

func logSoftmax(logits []float64) []float64 {
	lse := floats.LogSumExp(logits)
	out := make([]float64, len(logits))
	for i, v := range logits {
		out[i] = v - lse
	}
	return out
}

func logAdd(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	if a < b {
		a, b = b, a
	}
	return a + math.Log1p(math.Exp(b-a))
}

// ctcGradient runs the CTC forward-backward recursions in log space over
// logProbs (frames x symbols). It returns the gradient of the negative
// log-likelihood with respect to the frame logits, and the log-likelihood.
func ctcGradient(logProbs [][]float64, target []int, blank int) ([][]float64, float64) {
	frames := len(logProbs)
	symbols := len(logProbs[0])

	ext := make([]int, 2*len(target)+1)
	for i := range ext {
		ext[i] = blank
		if i%2 == 1 {
			ext[i] = target[i/2]
		}
	}
	S := len(ext)
	negInf := math.Inf(-1)

	alpha := make([][]float64, frames)
	beta := make([][]float64, frames)
	for t := range alpha {
		alpha[t] = make([]float64, S)
		beta[t] = make([]float64, S)
		for s := 0; s < S; s++ {
			alpha[t][s] = negInf
			beta[t][s] = negInf
		}
	}

	alpha[0][0] = logProbs[0][ext[0]]
	if S > 1 {
		alpha[0][1] = logProbs[0][ext[1]]
	}
	for t := 1; t < frames; t++ {
		for s := 0; s < S; s++ {
			a := alpha[t-1][s]
			if s > 0 {
				a = logAdd(a, alpha[t-1][s-1])
			}
			if s > 1 && ext[s] != blank && ext[s] != ext[s-2] {
				a = logAdd(a, alpha[t-1][s-2])
			}
			alpha[t][s] = a + logProbs[t][ext[s]]
		}
	}

	last := frames - 1
	beta[last][S-1] = logProbs[last][ext[S-1]]
	if S > 1 {
		beta[last][S-2] = logProbs[last][ext[S-2]]
	}
	for t := last - 1; t >= 0; t-- {
		for s := S - 1; s >= 0; s-- {
			b := beta[t+1][s]
			if s < S-1 {
				b = logAdd(b, beta[t+1][s+1])
			}
			if s < S-2 && ext[s] != blank && ext[s] != ext[s+2] {
				b = logAdd(b, beta[t+1][s+2])
			}
			beta[t][s] = b + logProbs[t][ext[s]]
		}
	}

	ll := alpha[last][S-1]
	if S > 1 {
		ll = logAdd(ll, alpha[last][S-2])
	}

	grad := make([][]float64, frames)
	for t := 0; t < frames; t++ {
		grad[t] = make([]float64, symbols)
		for k := range grad[t] {
			grad[t][k] = math.Exp(logProbs[t][k])
		}
		if math.IsInf(ll, -1) {
			continue
		}
		occupancy := make([]float64, symbols)
		for k := range occupancy {
			occupancy[k] = negInf
		}
		for s := 0; s < S; s++ {
			occupancy[ext[s]] = logAdd(occupancy[ext[s]], alpha[t][s]+beta[t][s])
		}
		for k := range grad[t] {
			if !math.IsInf(occupancy[k], -1) {
				grad[t][k] -= math.Exp(occupancy[k] - logProbs[t][k] - ll)
			}
		}
	}

	return grad, ll
}
