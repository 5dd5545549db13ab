package evaluation

import (
	"math"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
	"github.com/RuheSaniya/code-alpha-tasks/internal/mlerr"
)

func mustLabels(t *testing.T, labels ...string) data.LabelSet {
	t.Helper()
	ls, err := data.NewLabelSet(labels...)
	if err != nil {
		t.Fatal(err)
	}
	return ls
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestEvaluateLabels(t *testing.T) {
	labels := mustLabels(t, "happy", "sad")
	truth := []string{"happy", "happy", "sad", "sad"}
	predictions := []string{"happy", "sad", "sad", "sad"}

	report, err := EvaluateLabels(predictions, truth, labels)
	if err != nil {
		t.Fatal(err)
	}

	if !near(report.Accuracy, 0.75) {
		t.Errorf("Accuracy = %v, want 0.75", report.Accuracy)
	}

	cells := []struct {
		truth, pred string
		want        int
	}{
		{"happy", "happy", 1},
		{"happy", "sad", 1},
		{"sad", "sad", 2},
		{"sad", "happy", 0},
	}
	for _, c := range cells {
		if got := report.Confusion.Get(c.truth, c.pred); got != c.want {
			t.Errorf("confusion(%s, %s) = %d, want %d", c.truth, c.pred, got, c.want)
		}
	}
	all := report.Confusion.Cells()
	if len(all) != 4 {
		t.Errorf("Cells() has %d entries, want 4", len(all))
	}
	if v, ok := all[[2]string{"sad", "happy"}]; !ok || v != 0 {
		t.Errorf("zero cell missing: %v %v", v, ok)
	}

	happy := report.PerClass["happy"]
	if !near(happy.Precision, 1) || !near(happy.Recall, 0.5) || happy.Support != 2 {
		t.Errorf("happy metrics = %+v", happy)
	}
	sad := report.PerClass["sad"]
	if !near(sad.Precision, 2.0/3) || !near(sad.Recall, 1) {
		t.Errorf("sad metrics = %+v", sad)
	}
	if !near(report.BalancedAccuracy, 0.75) {
		t.Errorf("BalancedAccuracy = %v", report.BalancedAccuracy)
	}
}

func TestEvaluatePerfect(t *testing.T) {
	labels := mustLabels(t, "a", "b", "c")
	y := []int{0, 2, 1, 2, 0}

	report, err := Evaluate(y, y, labels)
	if err != nil {
		t.Fatal(err)
	}
	if report.Accuracy != 1 || report.MacroF1 != 1 {
		t.Errorf("accuracy %v, macro f1 %v on identical inputs", report.Accuracy, report.MacroF1)
	}
	if !report.Confusion.IsDiagonal() {
		t.Errorf("confusion not diagonal: %v", report.Confusion.Counts)
	}
}

func TestEvaluateAbsentClass(t *testing.T) {
	labels := mustLabels(t, "a", "b", "c")

	report, err := Evaluate([]int{0, 1}, []int{0, 1}, labels)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Confusion.Counts) != 3 {
		t.Fatalf("confusion has %d rows, want one per label", len(report.Confusion.Counts))
	}
	if report.PerClass["c"].Support != 0 {
		t.Error("absent class has support")
	}
	if report.MacroF1 != 1 {
		t.Errorf("MacroF1 = %v, absent labels should not count", report.MacroF1)
	}
}

func TestEvaluateErrors(t *testing.T) {
	labels := mustLabels(t, "a", "b")

	if _, err := Evaluate([]int{0}, []int{0, 1}, labels); !errors.Is(err, mlerr.ErrLengthMismatch) {
		t.Errorf("error = %v, want ErrLengthMismatch", err)
	}
	if _, err := Evaluate([]int{5}, []int{0}, labels); !errors.Is(err, data.ErrUnknownLabel) {
		t.Errorf("error = %v, want ErrUnknownLabel", err)
	}
	if _, err := EvaluateLabels([]string{"a"}, []string{"z"}, labels); err == nil {
		t.Error("unknown truth label accepted")
	}
}

func TestReportFormat(t *testing.T) {
	labels := mustLabels(t, "a", "b")
	report, err := Evaluate([]int{0, 1}, []int{0, 0}, labels)
	if err != nil {
		t.Fatal(err)
	}
	out := report.Format()
	for _, want := range []string{"Accuracy: 0.5000", "true\\pred"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if report.Metrics()["recall/a"] != 0.5 {
		t.Errorf("recall/a = %v", report.Metrics()["recall/a"])
	}
}
