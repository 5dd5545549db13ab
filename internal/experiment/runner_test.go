package experiment

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
	"github.com/RuheSaniya/code-alpha-tasks/internal/models"
)

const gridConfig = `
pipeline:
  name: points
  labels:
    values: [low, high]
  extractor:
    kind: tabular
    tabular:
      columns:
        - name: x
        - name: y
  scale: none
  model:
    kind: knn
    k: 3
  split:
    test_size: 0.25
    seed: 5
experiment:
  preprocessing: [minmax, standard]
  train_test_splits: [0.75]
  cross_validation:
    folds: 3
  algorithms:
    knn:
      k: [1, 3]
    decision_tree:
      max_depth: [2]
    naive_bayes:
      var_smoothing: [1e-9]
`

func loadGrid(t *testing.T) *Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grid.yaml")
	if err := os.WriteFile(path, []byte(gridConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func gridSamples(n int) []data.Sample {
	out := make([]data.Sample, 0, n)
	for i := 0; i < n; i++ {
		label, x := "low", float64(i%7)
		if i%2 == 1 {
			label, x = "high", x+20
		}
		rec := data.Record{Fields: []data.Field{
			{Name: "x", Value: fmt.Sprint(x)},
			{Name: "y", Value: fmt.Sprint(i % 3)},
		}}
		out = append(out, data.NewSample(fmt.Sprintf("s%d", i), rec, label))
	}
	return out
}

func TestAlgorithmsModels(t *testing.T) {
	var a Algorithms
	if got := a.Models(1); len(got) != 0 {
		t.Errorf("empty grid expanded to %v", got)
	}

	a.KNN.K = []int{1, 3, 5}
	a.KNN.Distance = []string{models.DistanceEuclidean, models.DistanceManhattan}
	a.Logistic.ClassWeight = []string{"balanced"}
	a.RandomForest.NTrees = []int{10}
	got := a.Models(9)

	counts := make(map[models.Kind]int)
	for _, mc := range got {
		counts[mc.Kind]++
	}
	if counts[models.KindKNN] != 6 || counts[models.KindLinear] != 1 || counts[models.KindForest] != 1 {
		t.Errorf("expanded counts = %v", counts)
	}
	if len(got) != 8 {
		t.Errorf("%d configs, want 8", len(got))
	}
	for _, mc := range got {
		if mc.Kind == models.KindForest && mc.Seed != 9 {
			t.Errorf("forest seed = %d, want 9", mc.Seed)
		}
	}
}

func TestOverlay(t *testing.T) {
	base := models.Config{Kind: models.KindKNN, K: 7, Distance: models.DistanceManhattan}

	got := overlay(base, models.Config{Kind: models.KindKNN, K: 1})
	if got.K != 1 || got.Distance != models.DistanceManhattan {
		t.Errorf("same kind overlay = %+v", got)
	}

	tree := models.Config{Kind: models.KindTree, MaxDepth: 3}
	if got := overlay(base, tree); got != tree {
		t.Errorf("other kind overlay = %+v, want %+v", got, tree)
	}
}

func TestPoints(t *testing.T) {
	r := NewRunner(loadGrid(t))
	points := r.Points()
	// 2 scalers x 1 split x (2 knn + 1 tree + 1 bayes)
	if len(points) != 8 {
		t.Fatalf("%d points, want 8", len(points))
	}
	if points[0].Preprocessing != "minmax" || points[4].Preprocessing != "standard" {
		t.Errorf("points not ordered by preprocessing: %+v", points)
	}
	if points[0].Model.Kind != models.KindKNN || points[0].Model.K != 1 {
		t.Errorf("first point model = %+v", points[0].Model)
	}

	bare := &Config{Pipeline: r.Config.Pipeline}
	fallback := NewRunner(bare).Points()
	if len(fallback) != 1 || fallback[0].Model.K != 3 || fallback[0].TrainFraction != 0.75 {
		t.Errorf("fallback points = %+v", fallback)
	}
}

func TestRunAllExperiments(t *testing.T) {
	cfg := loadGrid(t)
	cfg.Experiment.Algorithms.KNN.Distance = []string{"cosine"}

	r := NewRunner(cfg)
	var calls int
	r.Progress = func(done, total int) { calls++ }

	results, err := r.RunAllExperiments("points.csv", data.NewMemorySource(gridSamples(40)...))
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 8 || calls != 8 {
		t.Fatalf("%d results and %d progress calls, want 8", len(results), calls)
	}

	var failed int
	for _, res := range results {
		if res.Dataset != "points.csv" || res.TrainTestSplit != "75-25" {
			t.Errorf("result labels = %q %q", res.Dataset, res.TrainTestSplit)
		}
		if res.Error != "" {
			failed++
			if res.Algorithm != string(models.KindKNN) {
				t.Errorf("%s failed: %s", res.Algorithm, res.Error)
			}
			continue
		}
		if res.Accuracy < 0.9 || res.CVMean < 0.9 {
			t.Errorf("%s/%s accuracy %.3f, cv %.3f", res.Algorithm, res.Preprocessing, res.Accuracy, res.CVMean)
		}
	}
	// the unknown distance fails every knn point and nothing else
	if failed != 4 {
		t.Errorf("%d failed points, want 4", failed)
	}

	best, ok := Best(results)
	if !ok || best.Error != "" {
		t.Fatalf("Best = %+v, %v", best, ok)
	}
}

func TestBest(t *testing.T) {
	results := []Result{
		{Algorithm: "a", Accuracy: 0.9, Error: "boom"},
		{Algorithm: "b", Accuracy: 0.8},
		{Algorithm: "c", Accuracy: 0.85},
		{Algorithm: "d", Accuracy: 0.85},
	}
	best, ok := Best(results)
	if !ok || best.Algorithm != "c" {
		t.Errorf("Best = %+v, %v; want c", best, ok)
	}
	if _, ok := Best(results[:1]); ok {
		t.Error("Best found a result among failures")
	}
}

func TestWriteResults(t *testing.T) {
	results := []Result{
		{Dataset: "d", Algorithm: "knn", Parameters: "map[k:3]", Accuracy: 0.91234, TrainingTimeMs: 12},
		{Dataset: "d", Algorithm: "tree", Error: "fit: empty training set"},
	}
	var buf bytes.Buffer
	if err := WriteResults(&buf, results); err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("%d rows, want header plus 2", len(rows))
	}
	if rows[0][0] != "Dataset" || rows[0][len(rows[0])-1] != "Error" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][5] != "0.9123" || rows[1][13] != "12" {
		t.Errorf("row = %v", rows[1])
	}
	if rows[2][14] != "fit: empty training set" {
		t.Errorf("error column = %q", rows[2][14])
	}

	path := filepath.Join(t.TempDir(), "results.csv")
	if err := ExportResults(results, path); err != nil {
		t.Fatal(err)
	}
}
