package models

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/features"
	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

// blobs returns n points per class around (0,0), (4,4) and (0,4).
func blobs(n, classes int, seed int64) ([]features.Vector, []int) {
	centers := [][2]float64{{0, 0}, {4, 4}, {0, 4}}
	r := rand.New(rand.NewSource(seed))
	var X []features.Vector
	var y []int
	for c := 0; c < classes; c++ {
		for i := 0; i < n; i++ {
			X = append(X, features.Vector{
				centers[c][0] + r.NormFloat64()*0.5,
				centers[c][1] + r.NormFloat64()*0.5,
			})
			y = append(y, c)
		}
	}
	return X, y
}

func allKinds() []Config {
	forest := DefaultConfig(KindForest)
	forest.NTrees = 15
	return []Config{
		DefaultConfig(KindLinear),
		DefaultConfig(KindTree),
		forest,
		DefaultConfig(KindBayes),
		DefaultConfig(KindKNN),
		DefaultConfig(KindNeural),
	}
}

func accuracy(pred, truth []int) float64 {
	correct := 0
	for i := range pred {
		if pred[i] == truth[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(truth))
}

func TestEstimatorsSeparateBlobs(t *testing.T) {
	X, y := blobs(30, 3, 1)
	XTest, yTest := blobs(10, 3, 2)

	for _, cfg := range allKinds() {
		t.Run(string(cfg.Kind), func(t *testing.T) {
			est, err := New(cfg)
			if err != nil {
				t.Fatal(err)
			}
			model, err := est.Fit(X, y)
			if err != nil {
				t.Fatal(err)
			}
			if model.Dim() != 2 {
				t.Errorf("Dim() = %d, want 2", model.Dim())
			}
			if got := model.Classes(); len(got) != 3 || got[0] != 0 || got[2] != 2 {
				t.Errorf("Classes() = %v", got)
			}

			pred, err := model.Predict(XTest)
			if err != nil {
				t.Fatal(err)
			}
			if len(pred) != len(XTest) {
				t.Fatalf("%d predictions for %d samples", len(pred), len(XTest))
			}
			for _, p := range pred {
				if p < 0 || p > 2 {
					t.Fatalf("prediction %d outside the training classes", p)
				}
			}
			if acc := accuracy(pred, yTest); acc < 0.9 {
				t.Errorf("test accuracy %.3f, want >= 0.9", acc)
			}
		})
	}
}

func TestFitValidation(t *testing.T) {
	X, y := blobs(5, 2, 3)
	for _, cfg := range allKinds() {
		t.Run(string(cfg.Kind), func(t *testing.T) {
			est, _ := New(cfg)
			if _, err := est.Fit(nil, nil); !errors.Is(err, mlerr.ErrEmptyTrainingSet) {
				t.Errorf("empty fit error = %v, want ErrEmptyTrainingSet", err)
			}
			if _, err := est.Fit(X, y[:3]); !errors.Is(err, mlerr.ErrLengthMismatch) {
				t.Errorf("short labels error = %v, want ErrLengthMismatch", err)
			}

			model, err := est.Fit(X, y)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := model.Predict([]features.Vector{{1, 2, 3}}); !errors.Is(err, mlerr.ErrShapeMismatch) {
				t.Errorf("predict error = %v, want ErrShapeMismatch", err)
			}
		})
	}
}

func TestFitDoesNotMutateInputs(t *testing.T) {
	X, y := blobs(10, 2, 4)
	before := make([]features.Vector, len(X))
	for i := range X {
		before[i] = X[i].Clone()
	}
	yBefore := append([]int(nil), y...)

	for _, cfg := range allKinds() {
		est, _ := New(cfg)
		if _, err := est.Fit(X, y); err != nil {
			t.Fatalf("%s: %v", cfg.Kind, err)
		}
	}
	for i := range X {
		for j := range X[i] {
			if X[i][j] != before[i][j] {
				t.Fatalf("X[%d] modified", i)
			}
		}
		if y[i] != yBefore[i] {
			t.Fatalf("y[%d] modified", i)
		}
	}
}

func TestRefitYieldsIndependentModel(t *testing.T) {
	X1, y1 := blobs(20, 2, 5)
	X2 := make([]features.Vector, len(X1))
	y2 := make([]int, len(y1))
	for i := range X1 {
		X2[i] = X1[i]
		y2[i] = 1 - y1[i]
	}

	est, _ := New(DefaultConfig(KindKNN))
	first, _ := est.Fit(X1, y1)
	before, _ := first.Predict(X1)
	if _, err := est.Fit(X2, y2); err != nil {
		t.Fatal(err)
	}
	after, _ := first.Predict(X1)
	for i := range before {
		if before[i] != after[i] {
			t.Fatal("refitting changed an existing model")
		}
	}
}

func TestScores(t *testing.T) {
	X, y := blobs(20, 3, 6)
	for _, cfg := range allKinds() {
		t.Run(string(cfg.Kind), func(t *testing.T) {
			est, _ := New(cfg)
			model, err := est.Fit(X, y)
			if err != nil {
				t.Fatal(err)
			}
			scores, err := PredictScores(model, X[:5])
			if cfg.Kind == KindTree {
				if !errors.Is(err, mlerr.ErrUnsupportedCapability) {
					t.Errorf("tree scores error = %v, want ErrUnsupportedCapability", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			for i, row := range scores {
				if len(row) != 3 {
					t.Fatalf("row %d has %d scores", i, len(row))
				}
				sum := 0.0
				for _, s := range row {
					if s < 0 || s > 1 {
						t.Fatalf("score %v outside [0, 1]", s)
					}
					sum += s
				}
				if math.Abs(sum-1) > 1e-9 {
					t.Errorf("row %d sums to %v", i, sum)
				}
			}
		})
	}
}

func TestDeterministicFits(t *testing.T) {
	X, y := blobs(20, 3, 7)
	XTest, _ := blobs(10, 3, 8)
	for _, cfg := range allKinds() {
		est, _ := New(cfg)
		a, _ := est.Fit(X, y)
		b, _ := est.Fit(X, y)
		pa, _ := a.Predict(XTest)
		pb, _ := b.Predict(XTest)
		for i := range pa {
			if pa[i] != pb[i] {
				t.Fatalf("%s: two fits disagree at sample %d", cfg.Kind, i)
			}
		}
	}
}

func TestForestWorkersAgree(t *testing.T) {
	X, y := blobs(20, 3, 9)
	serial := DefaultConfig(KindForest)
	serial.NTrees = 12
	parallel := serial
	parallel.Workers = 4

	a, _ := New(serial)
	b, _ := New(parallel)
	ma, err := a.Fit(X, y)
	if err != nil {
		t.Fatal(err)
	}
	mb, err := b.Fit(X, y)
	if err != nil {
		t.Fatal(err)
	}
	sa, _ := PredictScores(ma, X)
	sb, _ := PredictScores(mb, X)
	for i := range sa {
		for j := range sa[i] {
			if sa[i][j] != sb[i][j] {
				t.Fatalf("worker count changed votes at %d,%d", i, j)
			}
		}
	}
}

func TestKNNTieBreak(t *testing.T) {
	knn, err := NewKNN(2, DistanceManhattan)
	if err != nil {
		t.Fatal(err)
	}
	model, err := knn.Fit([]features.Vector{{0}, {2}}, []int{1, 0})
	if err != nil {
		t.Fatal(err)
	}
	// One vote each: the smaller class index wins.
	pred, _ := model.Predict([]features.Vector{{1}})
	if pred[0] != 0 {
		t.Errorf("tie resolved to %d, want 0", pred[0])
	}

	if _, err := NewKNN(0, DistanceEuclidean); err == nil {
		t.Error("k = 0 accepted")
	}
	if _, err := NewKNN(3, "cosine"); err == nil {
		t.Error("unknown distance accepted")
	}
}

func TestTreePruning(t *testing.T) {
	X, y := blobs(20, 2, 10)
	tree := NewDecisionTree(8, 2)
	trained, err := tree.Fit(X, y)
	if err != nil {
		t.Fatal(err)
	}
	model := trained.(*TreeModel)
	XVal, yVal := blobs(10, 2, 11)
	pruned, err := model.Pruned(XVal, yVal)
	if err != nil {
		t.Fatal(err)
	}
	before, _ := model.Predict(XVal)
	after, _ := pruned.Predict(XVal)
	if accuracy(after, yVal) < accuracy(before, yVal) {
		t.Error("pruning lowered validation accuracy")
	}
}

func TestFactory(t *testing.T) {
	if _, err := New(Config{Kind: "svm"}); err == nil {
		t.Error("unknown kind accepted")
	}
	if _, err := New(Config{Kind: KindSequence}); err == nil {
		t.Error("sequence kind built as a classifier")
	}
	if _, err := NewSequence(Config{Kind: KindKNN}, 3, 2); err == nil {
		t.Error("knn kind built as a sequence model")
	}
	est, err := New(Config{Kind: KindKNN})
	if err != nil {
		t.Fatal(err)
	}
	if est.Params()["k"] != 5 {
		t.Errorf("default k = %v, want 5", est.Params()["k"])
	}
}

func TestForestSplitsDrawEveryFeature(t *testing.T) {
	X, y := blobs(30, 3, 1)
	rf := NewRandomForest(10, 0, 0)
	rf.Seed = 3
	trained, err := rf.Fit(X, y)
	if err != nil {
		t.Fatal(err)
	}
	fm := trained.(*ForestModel)

	var walk func(n *TreeNode, used map[int]bool)
	walk = func(n *TreeNode, used map[int]bool) {
		if n == nil || n.IsLeaf {
			return
		}
		used[n.Feature] = true
		walk(n.Left, used)
		walk(n.Right, used)
	}
	for i, tree := range fm.Trees {
		used := make(map[int]bool)
		walk(tree.Root, used)
		if !used[0] || !used[1] {
			t.Errorf("tree %d splits on features %v, want both", i, used)
		}
	}
}

func TestSoftmaxLeavesInput(t *testing.T) {
	logits := []float64{1, 2}
	probs := softmax(logits)
	if logits[0] != 1 || logits[1] != 2 {
		t.Errorf("input changed to %v", logits)
	}
	if math.Abs(probs[0]+probs[1]-1) > 1e-12 || probs[1] <= probs[0] {
		t.Errorf("softmax(%v) = %v", logits, probs)
	}

	row := []float64{1, 2}
	softmaxInPlace(row)
	if math.Abs(row[0]-probs[0]) > 1e-12 {
		t.Errorf("in-place result %v, want %v", row, probs)
	}
}
