package evaluation

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

func TestROCAUC(t *testing.T) {
	tests := []struct {
		name     string
		scores   []float64
		positive []bool
		want     float64
	}{
		{"perfect", []float64{.1, .2, .8, .9}, []bool{false, false, true, true}, 1},
		{"inverted", []float64{.9, .8, .2, .1}, []bool{false, false, true, true}, 0},
		{"all tied", []float64{.5, .5, .5, .5}, []bool{false, true, false, true}, 0.5},
		{"one swap", []float64{.1, .4, .35, .8}, []bool{false, false, true, true}, 0.75},
		{"partial tie", []float64{.2, .5, .5, .9}, []bool{false, false, true, true}, 0.875},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ROCAUC(tt.scores, tt.positive)
			if err != nil {
				t.Fatal(err)
			}
			if !near(got, tt.want) {
				t.Errorf("ROCAUC = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestROCAUCErrors(t *testing.T) {
	if _, err := ROCAUC([]float64{.1, .2}, []bool{true, true}); !errors.Is(err, ErrUndefinedAUC) {
		t.Errorf("error = %v, want ErrUndefinedAUC", err)
	}
	if _, err := ROCAUC([]float64{.1}, []bool{true, false}); !errors.Is(err, mlerr.ErrLengthMismatch) {
		t.Errorf("error = %v, want ErrLengthMismatch", err)
	}
}

func TestScoreReport(t *testing.T) {
	labels := mustLabels(t, "a", "b", "c")
	// columns follow classes 0 and 1 only; "c" never occurs
	scores := [][]float64{{.9, .1}, {.8, .2}, {.3, .7}, {.1, .9}}
	truth := []int{0, 0, 1, 1}

	got, err := ScoreReport(scores, []int{0, 1}, truth, labels)
	if err != nil {
		t.Fatal(err)
	}
	if !near(got["roc_auc/a"], 1) || !near(got["roc_auc/b"], 1) {
		t.Errorf("per label auc = %v", got)
	}
	if !near(got["roc_auc/macro"], 1) {
		t.Errorf("macro = %v", got["roc_auc/macro"])
	}
	if _, ok := got["roc_auc/c"]; ok {
		t.Error("auc reported for a label with no scores")
	}

	onlyA := []int{0, 0, 0, 0}
	got, err = ScoreReport(scores, []int{0, 1}, onlyA, labels)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("single-class truth should give no auc, got %v", got)
	}

	if _, err := ScoreReport([][]float64{{1}}, []int{0, 1}, []int{0}, labels); !errors.Is(err, mlerr.ErrShapeMismatch) {
		t.Errorf("error = %v, want ErrShapeMismatch", err)
	}
}
