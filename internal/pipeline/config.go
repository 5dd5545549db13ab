package pipeline

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/RuheSaniya/code-alpha-tasks/internal/data"
	"github.com/RuheSaniya/code-alpha-tasks/internal/features"
	"github.com/RuheSaniya/code-alpha-tasks/internal/models"
)

const (
	TaskClassification = "classification"
	TaskSequence       = "sequence"
)

type LabelsConfig struct {
	Values    []string `yaml:"values"`
	Blank     string   `yaml:"blank,omitempty"`
	Separator string   `yaml:"separator,omitempty"`
}

type SplitConfig struct {
	// TestSize of 0 evaluates on the training data.
	TestSize float64 `yaml:"test_size"`
	Stratify bool    `yaml:"stratify"`
	Seed     int64   `yaml:"seed"`
}

type CVConfig struct {
	Folds    int  `yaml:"folds"`
	Stratify bool `yaml:"stratify"`
	Workers  int  `yaml:"workers,omitempty"`
}

// Source formats for CSV input.
const (
	FormatRecords = "records"
	FormatImage   = "image"
	FormatAudio   = "audio"
)

// SourceConfig describes how CSV rows become samples. Image rows hold
// Width*Height pixels, audio rows hold interleaved PCM; values are divided
// by Scale.
type SourceConfig struct {
	Format      string  `yaml:"format,omitempty"`
	LabelColumn string  `yaml:"label_column,omitempty"`
	IDColumn    string  `yaml:"id_column,omitempty"`
	Width       int     `yaml:"width,omitempty"`
	Height      int     `yaml:"height,omitempty"`
	SampleRate  int     `yaml:"sample_rate,omitempty"`
	Channels    int     `yaml:"channels,omitempty"`
	Scale       float64 `yaml:"scale,omitempty"`
}

// Config is the full description of one pipeline run.
type Config struct {
	Name            string        `yaml:"name"`
	Task            string        `yaml:"task"`
	Labels          LabelsConfig  `yaml:"labels"`
	Source          SourceConfig  `yaml:"source,omitempty"`
	Extractor       features.Spec `yaml:"extractor"`
	Scale           string        `yaml:"scale,omitempty"`
	Model           models.Config `yaml:"model"`
	Split           SplitConfig   `yaml:"split"`
	CrossValidation CVConfig      `yaml:"cross_validation,omitempty"`
}

// LoadConfig reads a YAML pipeline description.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return ParseConfig(raw)
}

func ParseConfig(raw []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Task {
	case "":
		c.Task = TaskClassification
	case TaskClassification, TaskSequence:
	default:
		return errors.Errorf("unknown task %q", c.Task)
	}
	if c.Task == TaskSequence && c.Labels.Blank == "" {
		return errors.New("sequence tasks need a blank label")
	}
	if c.Task == TaskSequence && c.Model.Kind != models.KindSequence {
		return errors.Errorf("sequence tasks need a %s model, got %q", models.KindSequence, c.Model.Kind)
	}
	if c.Task == TaskClassification && c.Model.Kind == models.KindSequence {
		return errors.New("sequence models need task: sequence")
	}
	if c.Split.TestSize < 0 || c.Split.TestSize >= 1 {
		return errors.Errorf("test_size %v must be in [0, 1)", c.Split.TestSize)
	}
	if c.CrossValidation.Folds == 1 || c.CrossValidation.Folds < 0 {
		return errors.Errorf("cross_validation.folds %d must be 0 or at least 2", c.CrossValidation.Folds)
	}
	switch c.Source.Format {
	case "", FormatRecords, FormatAudio:
	case FormatImage:
		if c.Source.Width <= 0 || c.Source.Height <= 0 {
			return errors.New("image sources need source.width and source.height")
		}
	default:
		return errors.Errorf("unknown source format %q", c.Source.Format)
	}
	_, err := c.LabelSet()
	return err
}

// OpenCSV returns a source over a CSV file in the configured format.
// Unlabeled files are read without a label column.
func (c *Config) OpenCSV(path string, labeled bool) data.Source {
	labelColumn := c.Source.LabelColumn
	if !labeled {
		labelColumn = data.NoLabel
	}
	var src data.Source = data.NewCSVSource(path, labelColumn, c.Source.IDColumn)

	switch c.Source.Format {
	case FormatImage:
		src = data.ImageRecords{Source: src, Width: c.Source.Width, Height: c.Source.Height, Scale: c.Source.Scale}
	case FormatAudio:
		channels := c.Source.Channels
		if channels == 0 {
			channels = 1
		}
		src = data.AudioRecords{Source: src, SampleRate: c.Source.SampleRate, Channels: channels, Scale: c.Source.Scale}
	}
	return src
}

// LabelSet builds the configured label set.
func (c *Config) LabelSet() (data.LabelSet, error) {
	if c.Task == TaskSequence {
		return data.NewSequenceLabelSet(c.Labels.Blank, c.Labels.Separator, c.Labels.Values...)
	}
	return data.NewLabelSet(c.Labels.Values...)
}

func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
