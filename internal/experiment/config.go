package experiment

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/RuheSaniya/code-alpha-tasks/internal/models"
	"github.com/RuheSaniya/code-alpha-tasks/internal/pipeline"
)

// Config is a base pipeline plus the grid of variations to run over it.
type Config struct {
	Pipeline   pipeline.Config `yaml:"pipeline"`
	Experiment Grid            `yaml:"experiment"`
}

type Grid struct {
	Preprocessing []string `yaml:"preprocessing"`
	// TrainTestSplits are training fractions; 0.8 keeps 20% for testing.
	TrainTestSplits []float64 `yaml:"train_test_splits"`
	CrossValidation struct {
		Folds int `yaml:"folds"`
	} `yaml:"cross_validation"`
	Algorithms Algorithms `yaml:"algorithms"`
}

type Algorithms struct {
	KNN struct {
		K        []int    `yaml:"k"`
		Distance []string `yaml:"distance"`
	} `yaml:"knn"`
	DecisionTree struct {
		MaxDepth        []int `yaml:"max_depth"`
		MinSamplesSplit []int `yaml:"min_samples_split"`
	} `yaml:"decision_tree"`
	RandomForest struct {
		NTrees   []int `yaml:"n_trees"`
		MaxDepth []int `yaml:"max_depth"`
	} `yaml:"random_forest"`
	NaiveBayes struct {
		VarSmoothing []float64 `yaml:"var_smoothing"`
	} `yaml:"naive_bayes"`
	Logistic struct {
		LearningRate []float64 `yaml:"learning_rate"`
		L2           []float64 `yaml:"l2"`
		ClassWeight  []string  `yaml:"class_weight"`
	} `yaml:"logistic"`
	Neural struct {
		Hidden       []int     `yaml:"hidden"`
		LearningRate []float64 `yaml:"learning_rate"`
	} `yaml:"neural"`
	Sequence struct {
		Hidden  []int    `yaml:"hidden"`
		Decoder []string `yaml:"decoder"`
	} `yaml:"sequence"`
}

func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read experiment config")
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse experiment config")
	}
	return cfg, nil
}

// Models expands the algorithm grid into model configs. A family runs when
// any of its dimensions is listed; unlisted dimensions use model defaults.
func (a Algorithms) Models(seed int64) []models.Config {
	var out []models.Config

	if listed(len(a.KNN.K), len(a.KNN.Distance)) {
		for _, k := range intsOrZero(a.KNN.K) {
			for _, dist := range stringsOrEmpty(a.KNN.Distance) {
				out = append(out, models.Config{Kind: models.KindKNN, K: k, Distance: dist})
			}
		}
	}

	if listed(len(a.DecisionTree.MaxDepth), len(a.DecisionTree.MinSamplesSplit)) {
		for _, depth := range intsOrZero(a.DecisionTree.MaxDepth) {
			for _, minSplit := range intsOrZero(a.DecisionTree.MinSamplesSplit) {
				out = append(out, models.Config{Kind: models.KindTree, MaxDepth: depth, MinSplit: minSplit})
			}
		}
	}

	if listed(len(a.RandomForest.NTrees), len(a.RandomForest.MaxDepth)) {
		for _, nTrees := range intsOrZero(a.RandomForest.NTrees) {
			for _, depth := range intsOrZero(a.RandomForest.MaxDepth) {
				out = append(out, models.Config{Kind: models.KindForest, NTrees: nTrees, MaxDepth: depth, Seed: seed})
			}
		}
	}

	for _, smooth := range a.NaiveBayes.VarSmoothing {
		out = append(out, models.Config{Kind: models.KindBayes, VarSmoothing: smooth})
	}

	if listed(len(a.Logistic.LearningRate), len(a.Logistic.L2), len(a.Logistic.ClassWeight)) {
		for _, lr := range floatsOrZero(a.Logistic.LearningRate) {
			for _, l2 := range floatsOrZero(a.Logistic.L2) {
				for _, cw := range stringsOrEmpty(a.Logistic.ClassWeight) {
					out = append(out, models.Config{Kind: models.KindLinear, LearningRate: lr, L2: l2, ClassWeight: cw})
				}
			}
		}
	}

	if listed(len(a.Neural.Hidden), len(a.Neural.LearningRate)) {
		for _, hidden := range intsOrZero(a.Neural.Hidden) {
			for _, lr := range floatsOrZero(a.Neural.LearningRate) {
				out = append(out, models.Config{Kind: models.KindNeural, Hidden: hidden, LearningRate: lr, Seed: seed})
			}
		}
	}

	if listed(len(a.Sequence.Hidden), len(a.Sequence.Decoder)) {
		for _, hidden := range intsOrZero(a.Sequence.Hidden) {
			for _, dec := range stringsOrEmpty(a.Sequence.Decoder) {
				out = append(out, models.Config{
					Kind:    models.KindSequence,
					Hidden:  hidden,
					Decoder: models.DecoderSpec{Kind: dec},
					Seed:    seed,
				})
			}
		}
	}

	return out
}

func listed(lengths ...int) bool {
	for _, n := range lengths {
		if n > 0 {
			return true
		}
	}
	return false
}

func intsOrZero(v []int) []int {
	if len(v) == 0 {
		return []int{0}
	}
	return v
}

func floatsOrZero(v []float64) []float64 {
	if len(v) == 0 {
		return []float64{0}
	}
	return v
}

func stringsOrEmpty(v []string) []string {
	if len(v) == 0 {
		return []string{""}
	}
	return v
}
