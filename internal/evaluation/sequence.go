package evaluation

import (
	"fmt"

	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

// SequenceReport summarises symbol sequence predictions.
//
// EditDistance is total edits over total reference symbols. A sample with an
// empty reference scores 0 when the prediction is empty too and 1 otherwise.
type SequenceReport struct {
	NumSamples       int     `json:"num_samples" yaml:"num_samples"`
	ExactMatch       float64 `json:"exact_match" yaml:"exact_match"`
	TotalEdits       int     `json:"total_edits" yaml:"total_edits"`
	ReferenceSymbols int     `json:"reference_symbols" yaml:"reference_symbols"`
	EditDistance     float64 `json:"edit_distance" yaml:"edit_distance"`
	MeanEditDistance float64 `json:"mean_edit_distance" yaml:"mean_edit_distance"`
}

// EvaluateSequences compares decoded symbol sequences with references.
func EvaluateSequences(predictions, truth [][]int) (*SequenceReport, error) {
	if len(predictions) != len(truth) {
		return nil, mlerr.LengthMismatch("predictions and ground truth", len(predictions), len(truth))
	}

	r := &SequenceReport{NumSamples: len(truth)}
	exact := 0
	perSample := 0.0
	for i := range truth {
		d := EditDistance(predictions[i], truth[i])
		r.TotalEdits += d
		r.ReferenceSymbols += len(truth[i])
		if d == 0 {
			exact++
		}
		perSample += normalized(d, len(truth[i]))
	}

	r.ExactMatch = safeDivide(float64(exact), float64(len(truth)))
	r.EditDistance = normalized(r.TotalEdits, r.ReferenceSymbols)
	r.MeanEditDistance = safeDivide(perSample, float64(len(truth)))
	return r, nil
}

func normalized(edits, refLen int) float64 {
	if refLen == 0 {
		if edits == 0 {
			return 0
		}
		return 1
	}
	return float64(edits) / float64(refLen)
}

func (r *SequenceReport) Metrics() map[string]float64 {
	return map[string]float64{
		"exact_match":        r.ExactMatch,
		"edit_distance":      r.EditDistance,
		"mean_edit_distance": r.MeanEditDistance,
	}
}

func (r *SequenceReport) Format() string {
	return fmt.Sprintf("Exact match: %.4f\nEdit distance: %.4f (%d edits / %d symbols)\nMean per-sample edit distance: %.4f\n",
		r.ExactMatch, r.EditDistance, r.TotalEdits, r.ReferenceSymbols, r.MeanEditDistance)
}

// EditDistance is the Levenshtein distance between two symbol sequences.
func EditDistance(a, b []int) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
