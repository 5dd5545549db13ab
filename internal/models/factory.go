package models

import (
	"github.com/pkg/errors"
)

// Kind names a model variant.
type Kind string

const (
	KindLinear   Kind = "linear"
	KindTree     Kind = "tree"
	KindForest   Kind = "forest"
	KindBayes    Kind = "bayes"
	KindKNN      Kind = "knn"
	KindNeural   Kind = "neural"
	KindSequence Kind = "sequence"
)

// Config is the immutable description of a model. Only the fields of the
// selected Kind are read.
type Config struct {
	Kind Kind `yaml:"kind"`

	// knn
	K        int    `yaml:"k,omitempty"`
	Distance string `yaml:"distance,omitempty"`

	// tree, forest
	MaxDepth int `yaml:"max_depth,omitempty"`
	MinSplit int `yaml:"min_split,omitempty"`
	NTrees   int `yaml:"n_trees,omitempty"`
	Workers  int `yaml:"workers,omitempty"`

	// bayes
	VarSmoothing float64 `yaml:"var_smoothing,omitempty"`

	// linear, neural, sequence
	LearningRate float64 `yaml:"learning_rate,omitempty"`
	Epochs       int     `yaml:"epochs,omitempty"`
	L2           float64 `yaml:"l2,omitempty"`
	ClassWeight  string  `yaml:"class_weight,omitempty"`
	Hidden       int     `yaml:"hidden,omitempty"`
	BatchSize    int     `yaml:"batch_size,omitempty"`

	// sequence
	FrameDim int         `yaml:"frame_dim,omitempty"`
	Decoder  DecoderSpec `yaml:"decoder,omitempty"`

	Seed int64 `yaml:"seed,omitempty"`
}

// New builds the classification estimator described by config.
func New(config Config) (Estimator, error) {
	config = config.withDefaults()

	switch config.Kind {
	case KindKNN:
		return NewKNN(config.K, config.Distance)

	case KindTree:
		return NewDecisionTree(config.MaxDepth, config.MinSplit), nil

	case KindForest:
		rf := NewRandomForest(config.NTrees, config.MaxDepth, config.MinSplit)
		rf.Seed = config.Seed
		rf.Workers = config.Workers
		return rf, nil

	case KindBayes:
		return NewNaiveBayes(config.VarSmoothing), nil

	case KindLinear:
		return NewLogisticRegression(config.LearningRate, config.Epochs, config.L2, config.ClassWeight)

	case KindNeural:
		return NewNeuralNet(config.Hidden, config.LearningRate, config.Epochs, config.BatchSize, config.Seed), nil

	case KindSequence:
		return nil, errors.Errorf("%s models are built with NewSequence", config.Kind)

	default:
		return nil, errors.Errorf("unknown algorithm: %s", config.Kind)
	}
}

// NewSequence builds a sequence estimator over numSymbols classes including
// the blank at index blank.
func NewSequence(config Config, numSymbols, blank int) (*SequenceNet, error) {
	if config.Kind != KindSequence {
		return nil, errors.Errorf("algorithm %s is not a sequence model", config.Kind)
	}
	config = config.withDefaults()
	return NewSequenceNet(config.FrameDim, numSymbols, blank, config.Hidden, config.LearningRate, config.Epochs, config.Seed, config.Decoder)
}

func (config Config) withDefaults() Config {
	def := DefaultConfig(config.Kind)
	if config.K <= 0 {
		config.K = def.K
	}
	if config.Distance == "" {
		config.Distance = def.Distance
	}
	if config.MaxDepth <= 0 {
		config.MaxDepth = def.MaxDepth
	}
	if config.MinSplit <= 0 {
		config.MinSplit = def.MinSplit
	}
	if config.NTrees <= 0 {
		config.NTrees = def.NTrees
	}
	if config.Workers <= 0 {
		config.Workers = def.Workers
	}
	if config.VarSmoothing <= 0 {
		config.VarSmoothing = def.VarSmoothing
	}
	if config.LearningRate <= 0 {
		config.LearningRate = def.LearningRate
	}
	if config.Epochs <= 0 {
		config.Epochs = def.Epochs
	}
	if config.Hidden <= 0 {
		config.Hidden = def.Hidden
	}
	if config.BatchSize <= 0 {
		config.BatchSize = def.BatchSize
	}
	if config.Decoder.Kind == "" {
		config.Decoder = def.Decoder
	}
	return config
}

func DefaultConfig(kind Kind) Config {
	config := Config{Kind: kind}

	switch kind {
	case KindKNN:
		config.K = 5
		config.Distance = DistanceEuclidean
	case KindTree:
		config.MaxDepth = 10
		config.MinSplit = 2
	case KindForest:
		config.NTrees = 100
		config.MaxDepth = 10
		config.MinSplit = 2
		config.Workers = 1
	case KindBayes:
		config.VarSmoothing = 1e-9
	case KindLinear:
		config.LearningRate = 0.1
		config.Epochs = 200
	case KindNeural:
		config.Hidden = 32
		config.LearningRate = 0.05
		config.Epochs = 100
		config.BatchSize = 16
	case KindSequence:
		config.Hidden = 32
		config.LearningRate = 0.05
		config.Epochs = 50
		config.Decoder = DecoderSpec{Kind: "greedy"}
	}

	return config
}
