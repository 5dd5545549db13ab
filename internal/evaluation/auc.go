package evaluation

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

// ErrUndefinedAUC is returned when only one class is present.
var ErrUndefinedAUC = errors.New("roc auc needs positive and negative samples")

// ROCAUC is the probability that a random positive scores above a random
// negative, with tied scores counting one half.
func ROCAUC(scores []float64, positive []bool) (float64, error) {
	if len(scores) != len(positive) {
		return 0, mlerr.LengthMismatch("scores and targets", len(scores), len(positive))
	}

	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] < scores[idx[b]] })

	// average ranks over ties, 1-based
	ranks := make([]float64, len(scores))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && scores[idx[j+1]] == scores[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}

	var nPos, nNeg int
	rankSum := 0.0
	for i, p := range positive {
		if p {
			nPos++
			rankSum += ranks[i]
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0, ErrUndefinedAUC
	}

	u := rankSum - float64(nPos*(nPos+1))/2
	return u / float64(nPos*nNeg), nil
}

// ScoreReport computes one-vs-rest ROC AUC per label from model scores.
// classes gives the class index of each score column. Labels whose AUC is
// undefined on this data are left out; "macro" averages the rest.
func ScoreReport(scores [][]float64, classes []int, truth []int, labels data.LabelSet) (map[string]float64, error) {
	if len(scores) != len(truth) {
		return nil, mlerr.LengthMismatch("scores and ground truth", len(scores), len(truth))
	}

	out := make(map[string]float64)
	column := make([]float64, len(scores))
	positive := make([]bool, len(truth))
	sum := 0.0
	for j, class := range classes {
		label, err := labels.Label(class)
		if err != nil {
			return nil, err
		}
		for i, row := range scores {
			if len(row) != len(classes) {
				return nil, mlerr.ShapeMismatch(i, len(classes), len(row))
			}
			column[i] = row[j]
			positive[i] = truth[i] == class
		}
		auc, err := ROCAUC(column, positive)
		if errors.Is(err, ErrUndefinedAUC) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out["roc_auc/"+label] = auc
		sum += auc
	}
	if n := len(out); n > 0 {
		out["roc_auc/macro"] = sum / float64(n)
	}
	return out, nil
}
