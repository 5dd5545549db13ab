// Package evaluation scores predictions against ground truth.
package evaluation

import (
	"bytes"
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

type ClassMetrics struct {
	Precision   float64 `json:"precision" yaml:"precision"`
	Recall      float64 `json:"recall" yaml:"recall"`
	F1Score     float64 `json:"f1_score" yaml:"f1_score"`
	Specificity float64 `json:"specificity" yaml:"specificity"`
	Support     int     `json:"support" yaml:"support"`
}

// Confusion counts (true, predicted) label pairs. Counts is always
// len(Labels) x len(Labels); rows are true labels.
type Confusion struct {
	Labels []string
	Counts [][]int
}

// Get returns the count for a (true, predicted) pair; unknown labels count 0.
func (c *Confusion) Get(trueLabel, predLabel string) int {
	i, j := -1, -1
	for k, l := range c.Labels {
		if l == trueLabel {
			i = k
		}
		if l == predLabel {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0
	}
	return c.Counts[i][j]
}

// Cells returns every (true, predicted) pair, zero cells included.
func (c *Confusion) Cells() map[[2]string]int {
	out := make(map[[2]string]int, len(c.Labels)*len(c.Labels))
	for i, t := range c.Labels {
		for j, p := range c.Labels {
			out[[2]string{t, p}] = c.Counts[i][j]
		}
	}
	return out
}

// IsDiagonal reports whether every off-diagonal cell is zero.
func (c *Confusion) IsDiagonal() bool {
	for i := range c.Counts {
		for j, v := range c.Counts[i] {
			if i != j && v != 0 {
				return false
			}
		}
	}
	return true
}

// Report is the immutable result of one classification evaluation.
type Report struct {
	NumSamples        int                     `json:"num_samples" yaml:"num_samples"`
	NumClasses        int                     `json:"num_classes" yaml:"num_classes"`
	Accuracy          float64                 `json:"accuracy" yaml:"accuracy"`
	BalancedAccuracy  float64                 `json:"balanced_accuracy" yaml:"balanced_accuracy"`
	MacroPrecision    float64                 `json:"macro_precision" yaml:"macro_precision"`
	MacroRecall       float64                 `json:"macro_recall" yaml:"macro_recall"`
	MacroF1           float64                 `json:"macro_f1" yaml:"macro_f1"`
	WeightedPrecision float64                 `json:"weighted_precision" yaml:"weighted_precision"`
	WeightedRecall    float64                 `json:"weighted_recall" yaml:"weighted_recall"`
	WeightedF1        float64                 `json:"weighted_f1" yaml:"weighted_f1"`
	PerClass          map[string]ClassMetrics `json:"per_class" yaml:"per_class"`
	Confusion         *Confusion              `json:"confusion" yaml:"confusion"`
}

// Evaluate compares predicted class indices with ground truth over the full
// label set. Macro averages cover the labels that occur in either slice;
// balanced accuracy averages recall over labels present in the truth.
func Evaluate(predictions, truth []int, labels data.LabelSet) (*Report, error) {
	if len(predictions) != len(truth) {
		return nil, mlerr.LengthMismatch("predictions and ground truth", len(predictions), len(truth))
	}

	numClasses := labels.Len()
	counts := make([][]int, numClasses)
	for i := range counts {
		counts[i] = make([]int, numClasses)
	}
	if len(truth) > 0 {
		if err := data.ValidateLabels(truth, numClasses); err != nil {
			return nil, errors.Wrap(err, "ground truth")
		}
		if err := data.ValidateLabels(predictions, numClasses); err != nil {
			return nil, errors.Wrap(err, "predictions")
		}
	}
	for i := range truth {
		counts[truth[i]][predictions[i]]++
	}

	report := &Report{
		NumSamples: len(truth),
		NumClasses: numClasses,
		PerClass:   make(map[string]ClassMetrics, numClasses),
		Confusion:  &Confusion{Labels: append([]string(nil), labels.Labels...), Counts: counts},
	}

	correct := 0
	var macroClasses, presentClasses int
	for i, label := range labels.Labels {
		tp := counts[i][i]
		correct += tp
		fp, fn, tn := 0, 0, 0
		for j := 0; j < numClasses; j++ {
			if j == i {
				continue
			}
			fp += counts[j][i]
			fn += counts[i][j]
			for k := 0; k < numClasses; k++ {
				if k != i {
					tn += counts[j][k]
				}
			}
		}

		cm := ClassMetrics{
			Precision:   safeDivide(float64(tp), float64(tp+fp)),
			Recall:      safeDivide(float64(tp), float64(tp+fn)),
			Specificity: safeDivide(float64(tn), float64(tn+fp)),
			Support:     tp + fn,
		}
		cm.F1Score = safeDivide(2*cm.Precision*cm.Recall, cm.Precision+cm.Recall)
		report.PerClass[label] = cm

		if cm.Support > 0 {
			presentClasses++
			report.BalancedAccuracy += cm.Recall
		}
		if cm.Support > 0 || tp+fp > 0 {
			macroClasses++
			report.MacroPrecision += cm.Precision
			report.MacroRecall += cm.Recall
			report.MacroF1 += cm.F1Score
		}
		report.WeightedPrecision += cm.Precision * float64(cm.Support)
		report.WeightedRecall += cm.Recall * float64(cm.Support)
		report.WeightedF1 += cm.F1Score * float64(cm.Support)
	}

	n := float64(len(truth))
	report.Accuracy = safeDivide(float64(correct), n)
	report.BalancedAccuracy = safeDivide(report.BalancedAccuracy, float64(presentClasses))
	report.MacroPrecision = safeDivide(report.MacroPrecision, float64(macroClasses))
	report.MacroRecall = safeDivide(report.MacroRecall, float64(macroClasses))
	report.MacroF1 = safeDivide(report.MacroF1, float64(macroClasses))
	report.WeightedPrecision = safeDivide(report.WeightedPrecision, n)
	report.WeightedRecall = safeDivide(report.WeightedRecall, n)
	report.WeightedF1 = safeDivide(report.WeightedF1, n)

	return report, nil
}

// EvaluateLabels is Evaluate over label strings.
func EvaluateLabels(predictions, truth []string, labels data.LabelSet) (*Report, error) {
	if len(predictions) != len(truth) {
		return nil, mlerr.LengthMismatch("predictions and ground truth", len(predictions), len(truth))
	}
	p, err := labels.Encode(predictions)
	if err != nil {
		return nil, err
	}
	t, err := labels.Encode(truth)
	if err != nil {
		return nil, err
	}
	return Evaluate(p, t, labels)
}

// Metrics flattens the report into metric name -> value.
func (r *Report) Metrics() map[string]float64 {
	m := map[string]float64{
		"accuracy":           r.Accuracy,
		"balanced_accuracy":  r.BalancedAccuracy,
		"macro_precision":    r.MacroPrecision,
		"macro_recall":       r.MacroRecall,
		"macro_f1":           r.MacroF1,
		"weighted_precision": r.WeightedPrecision,
		"weighted_recall":    r.WeightedRecall,
		"weighted_f1":        r.WeightedF1,
	}
	for label, cm := range r.PerClass {
		m["precision/"+label] = cm.Precision
		m["recall/"+label] = cm.Recall
		m["f1/"+label] = cm.F1Score
	}
	return m
}

func (r *Report) Format() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Accuracy: %.4f\n", r.Accuracy)
	fmt.Fprintf(&buf, "Balanced Accuracy: %.4f\n", r.BalancedAccuracy)
	fmt.Fprintf(&buf, "Macro Avg - Precision: %.4f, Recall: %.4f, F1: %.4f\n",
		r.MacroPrecision, r.MacroRecall, r.MacroF1)
	fmt.Fprintf(&buf, "Weighted Avg - Precision: %.4f, Recall: %.4f, F1: %.4f\n\n",
		r.WeightedPrecision, r.WeightedRecall, r.WeightedF1)

	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "label\tprecision\trecall\tf1\tsupport")
	for _, label := range r.Confusion.Labels {
		cm := r.PerClass[label]
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%d\n", label, cm.Precision, cm.Recall, cm.F1Score, cm.Support)
	}
	fmt.Fprintln(w)

	fmt.Fprint(w, "true\\pred")
	for _, label := range r.Confusion.Labels {
		fmt.Fprintf(w, "\t%s", label)
	}
	fmt.Fprintln(w)
	for i, label := range r.Confusion.Labels {
		fmt.Fprint(w, label)
		for _, v := range r.Confusion.Counts[i] {
			fmt.Fprintf(w, "\t%d", v)
		}
		fmt.Fprintln(w)
	}
	w.Flush()
	return buf.String()
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0.0
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0.0
	}
	return result
}
