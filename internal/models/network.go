package models

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Network is a one hidden layer perceptron with tanh activations and linear
// outputs. Weights are row-major: W1 is In x Hidden, W2 is Hidden x Out.
type Network struct {
	In, Hidden, Out int
	W1, B1, W2, B2  []float64
}

func newNetwork(in, hidden, out int, r *rand.Rand) *Network {
	n := zeroNetwork(in, hidden, out)
	limit1 := math.Sqrt(6 / float64(in+hidden))
	for i := range n.W1 {
		n.W1[i] = (2*r.Float64() - 1) * limit1
	}
	limit2 := math.Sqrt(6 / float64(hidden+out))
	for i := range n.W2 {
		n.W2[i] = (2*r.Float64() - 1) * limit2
	}
	return n
}

func zeroNetwork(in, hidden, out int) *Network {
	return &Network{
		In: in, Hidden: hidden, Out: out,
		W1: make([]float64, in*hidden),
		B1: make([]float64, hidden),
		W2: make([]float64, hidden*out),
		B2: make([]float64, out),
	}
}

// forward returns the hidden activations and output logits for x.
func (n *Network) forward(x []float64) (hidden, logits []float64) {
	hidden = append([]float64(nil), n.B1...)
	for i, xi := range x {
		if xi != 0 {
			floats.AddScaled(hidden, xi, n.W1[i*n.Hidden:(i+1)*n.Hidden])
		}
	}
	for j := range hidden {
		hidden[j] = math.Tanh(hidden[j])
	}

	logits = append([]float64(nil), n.B2...)
	for j, hj := range hidden {
		floats.AddScaled(logits, hj, n.W2[j*n.Out:(j+1)*n.Out])
	}
	return hidden, logits
}

// backward accumulates into grad the gradient of the loss given dLogits,
// the loss gradient with respect to the output logits.
func (n *Network) backward(x, hidden, dLogits []float64, grad *Network) {
	floats.Add(grad.B2, dLogits)
	dHidden := make([]float64, n.Hidden)
	for j, hj := range hidden {
		row := n.W2[j*n.Out : (j+1)*n.Out]
		floats.AddScaled(grad.W2[j*n.Out:(j+1)*n.Out], hj, dLogits)
		dHidden[j] = floats.Dot(row, dLogits) * (1 - hj*hj)
	}

	floats.Add(grad.B1, dHidden)
	for i, xi := range x {
		if xi != 0 {
			floats.AddScaled(grad.W1[i*n.Hidden:(i+1)*n.Hidden], xi, dHidden)
		}
	}
}

// step applies grad scaled by -rate and clears grad.
func (n *Network) step(grad *Network, rate float64) {
	for _, p := range [][2][]float64{
		{n.W1, grad.W1}, {n.B1, grad.B1}, {n.W2, grad.W2}, {n.B2, grad.B2},
	} {
		floats.AddScaled(p[0], -rate, p[1])
		for i := range p[1] {
			p[1][i] = 0
		}
	}
}

func (n *Network) finite() bool {
	for _, p := range [][]float64{n.W1, n.B1, n.W2, n.B2} {
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
