package models

import (
	"math/rand"
	"sort"

	"github.com/RuheSaniya/code-alpha-tasks/internal/features"
)

type TreeNode struct {
	IsLeaf           bool
	Class            int
	Feature          int
	Threshold        float64
	Left             *TreeNode
	Right            *TreeNode
	Samples          int
	Impurity         float64
	ImpurityDecrease float64
}

// DecisionTree is a CART classifier using gini impurity.
type DecisionTree struct {
	MaxDepth            int
	MinSamplesSplit     int
	MinImpurityDecrease float64

	// MaxFeatures caps the features drawn at each split. Zero means all
	// features, scanned in order.
	MaxFeatures int

	rng *rand.Rand
}

func NewDecisionTree(maxDepth, minSamplesSplit int) *DecisionTree {
	if maxDepth <= 0 {
		maxDepth = 10
	}

	if minSamplesSplit <= 0 {
		minSamplesSplit = 2
	}

	return &DecisionTree{
		MaxDepth:            maxDepth,
		MinSamplesSplit:     minSamplesSplit,
		MinImpurityDecrease: 0.01,
	}
}

func (dt *DecisionTree) Name() string { return "DecisionTree" }

func (dt *DecisionTree) Params() map[string]any {
	return map[string]any{
		"max_depth":         dt.MaxDepth,
		"min_samples_split": dt.MinSamplesSplit,
	}
}

// TreeModel is a fitted decision tree. It has no calibrated scores: a leaf
// only knows its majority class.
type TreeModel struct {
	BaseModel
	Root *TreeNode
}

func (dt *DecisionTree) Fit(X []features.Vector, y []int) (Trained, error) {
	return dt.fit(X, y)
}

func (dt *DecisionTree) fit(X []features.Vector, y []int) (*TreeModel, error) {
	dim, err := checkFit(X, y)
	if err != nil {
		return nil, err
	}
	classes := ExtractClasses(y)
	return &TreeModel{
		BaseModel: BaseModel{
			ModelName:  dt.Name(),
			ClassList:  classes,
			NFeatures:  dim,
			Parameters: dt.Params(),
		},
		Root: dt.buildTree(X, y, classes, 0),
	}, nil
}

func (dt *DecisionTree) buildTree(X []features.Vector, y []int, classes []int, depth int) *TreeNode {
	node := &TreeNode{
		Samples: len(y),
	}

	node.Impurity = calculateGini(y)

	if depth >= dt.MaxDepth ||
		len(y) < dt.MinSamplesSplit ||
		isPure(y) ||
		node.Impurity < dt.MinImpurityDecrease {

		node.IsLeaf = true
		node.Class = mostCommonClass(y, classes)
		return node
	}

	bestFeature, bestThreshold, bestImpurityDecrease := dt.findBestSplit(X, y)

	if bestImpurityDecrease < dt.MinImpurityDecrease {
		node.IsLeaf = true
		node.Class = mostCommonClass(y, classes)
		return node
	}

	node.Feature = bestFeature
	node.Threshold = bestThreshold
	node.ImpurityDecrease = bestImpurityDecrease

	leftIndices, rightIndices := splitData(X, bestFeature, bestThreshold)

	if len(leftIndices) == 0 || len(rightIndices) == 0 {
		node.IsLeaf = true
		node.Class = mostCommonClass(y, classes)
		return node
	}

	XLeft, yLeft := selectData(X, y, leftIndices)
	XRight, yRight := selectData(X, y, rightIndices)

	node.Class = mostCommonClass(y, classes)
	node.Left = dt.buildTree(XLeft, yLeft, classes, depth+1)
	node.Right = dt.buildTree(XRight, yRight, classes, depth+1)

	return node
}

// splitOrder lists the features findBestSplit visits. With MaxFeatures set the
// order is a fresh random permutation per split.
func (dt *DecisionTree) splitOrder(nFeatures int) []int {
	if dt.MaxFeatures <= 0 || dt.MaxFeatures >= nFeatures || dt.rng == nil {
		order := make([]int, nFeatures)
		for i := range order {
			order[i] = i
		}
		return order
	}
	return dt.rng.Perm(nFeatures)
}

// findBestSplit scans features and thresholds ascending; the first strictly
// best split wins. With MaxFeatures set only the first MaxFeatures drawn
// features are scored, unless none of them yields a usable split.
func (dt *DecisionTree) findBestSplit(X []features.Vector, y []int) (int, float64, float64) {
	bestFeature := 0
	bestThreshold := 0.0
	bestImpurityDecrease := 0.0

	parentImpurity := calculateGini(y)
	n := len(y)

	for visited, feature := range dt.splitOrder(len(X[0])) {
		if dt.MaxFeatures > 0 && visited >= dt.MaxFeatures && bestImpurityDecrease >= dt.MinImpurityDecrease {
			break
		}
		for _, threshold := range candidateThresholds(X, feature) {
			leftIndices, rightIndices := splitData(X, feature, threshold)

			if len(leftIndices) == 0 || len(rightIndices) == 0 {
				continue
			}

			yLeft := make([]int, len(leftIndices))
			yRight := make([]int, len(rightIndices))

			for i, idx := range leftIndices {
				yLeft[i] = y[idx]
			}
			for i, idx := range rightIndices {
				yRight[i] = y[idx]
			}

			weightedImpurity := (float64(len(leftIndices))/float64(n))*calculateGini(yLeft) +
				(float64(len(rightIndices))/float64(n))*calculateGini(yRight)

			impurityDecrease := parentImpurity - weightedImpurity

			if impurityDecrease > bestImpurityDecrease {
				bestImpurityDecrease = impurityDecrease
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestImpurityDecrease
}

func (tm *TreeModel) Predict(X []features.Vector) ([]int, error) {
	if err := checkPredict(X, tm.NFeatures); err != nil {
		return nil, err
	}

	predictions := make([]int, len(X))
	for i, sample := range X {
		predictions[i] = predictSample(sample, tm.Root)
	}

	return predictions, nil
}

// Pruned returns a copy of the tree with reduced-error pruning applied
// against a validation set. The receiver is left unchanged.
func (tm *TreeModel) Pruned(XVal []features.Vector, yVal []int) (*TreeModel, error) {
	if err := checkPredict(XVal, tm.NFeatures); err != nil {
		return nil, err
	}
	out := *tm
	out.Root = copyNode(tm.Root)
	pruneNode(out.Root, XVal, yVal)
	return &out, nil
}

func copyNode(n *TreeNode) *TreeNode {
	if n == nil {
		return nil
	}
	c := *n
	c.Left = copyNode(n.Left)
	c.Right = copyNode(n.Right)
	return &c
}

func pruneNode(node *TreeNode, XVal []features.Vector, yVal []int) {
	if node.IsLeaf || len(XVal) == 0 {
		return
	}

	accuracyWithSubtrees := calculateAccuracy(node, XVal, yVal)

	node.IsLeaf = true
	accuracyAsLeaf := calculateAccuracy(node, XVal, yVal)

	if accuracyAsLeaf >= accuracyWithSubtrees {
		node.Left = nil
		node.Right = nil
		return
	}
	node.IsLeaf = false

	leftIndices, rightIndices := splitData(XVal, node.Feature, node.Threshold)
	XLeft, yLeft := selectData(XVal, yVal, leftIndices)
	XRight, yRight := selectData(XVal, yVal, rightIndices)
	pruneNode(node.Left, XLeft, yLeft)
	pruneNode(node.Right, XRight, yRight)
}

func predictSample(sample features.Vector, node *TreeNode) int {
	for !node.IsLeaf {
		if sample[node.Feature] < node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Class
}

func calculateGini(y []int) float64 {
	if len(y) == 0 {
		return 0.0
	}

	classCounts := make(map[int]int)
	for _, class := range y {
		classCounts[class]++
	}

	keys := make([]int, 0, len(classCounts))
	for class := range classCounts {
		keys = append(keys, class)
	}
	sort.Ints(keys)

	impurity := 1.0
	n := float64(len(y))

	for _, class := range keys {
		p := float64(classCounts[class]) / n
		impurity -= p * p
	}

	return impurity
}

func isPure(y []int) bool {
	for _, class := range y {
		if class != y[0] {
			return false
		}
	}
	return true
}

func mostCommonClass(y []int, classes []int) int {
	votes := make(map[int]int)
	for _, class := range y {
		votes[class]++
	}
	return majority(votes, classes)
}

// candidateThresholds returns midpoints between consecutive distinct values.
func candidateThresholds(X []features.Vector, feature int) []float64 {
	values := make([]float64, len(X))
	for i, sample := range X {
		values[i] = sample[feature]
	}
	sort.Float64s(values)

	var thresholds []float64
	for i := 1; i < len(values); i++ {
		if values[i] != values[i-1] {
			thresholds = append(thresholds, (values[i]+values[i-1])/2)
		}
	}
	return thresholds
}

func splitData(X []features.Vector, feature int, threshold float64) ([]int, []int) {
	var leftIndices, rightIndices []int

	for i, sample := range X {
		if sample[feature] < threshold {
			leftIndices = append(leftIndices, i)
		} else {
			rightIndices = append(rightIndices, i)
		}
	}

	return leftIndices, rightIndices
}

func selectData(X []features.Vector, y []int, indices []int) ([]features.Vector, []int) {
	selectedX := make([]features.Vector, len(indices))
	selectedY := make([]int, len(indices))

	for i, idx := range indices {
		selectedX[i] = X[idx]
		selectedY[i] = y[idx]
	}

	return selectedX, selectedY
}

func calculateAccuracy(node *TreeNode, XVal []features.Vector, yVal []int) float64 {
	if len(XVal) == 0 {
		return 0.0
	}

	correct := 0
	for i, sample := range XVal {
		if predictSample(sample, node) == yVal[i] {
			correct++
		}
	}

	return float64(correct) / float64(len(XVal))
}
