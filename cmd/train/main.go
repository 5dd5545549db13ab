package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/fatih/color"
	goerrors "github.com/go-errors/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/persistence"
	"github.com/RuheSaniya/code-alpha-tasks/internal/pipeline"
)

var (
	name    = "train"
	version = "1.0.0"
)

type args struct {
	Config   string `help:"pipeline YAML file" arg:"-c,required"`
	Data     string `help:"training CSV file" arg:"-d,required"`
	Store    string `help:"bundle store directory" arg:"--store,env:MLPIPE_STORE"`
	Name     string `help:"bundle name, defaults to the pipeline name" arg:"-n"`
	Metadata string `help:"also write a text summary to this file" arg:"--metadata"`
	Quiet    bool   `help:"no progress bar" arg:"-q"`
	Verbose  bool   `help:"log pipeline stages to stderr" arg:"-v"`
	Debug    bool   `help:"print stack traces on failure"`
}

func (args) Version() string {
	return version
}

func (args) Description() string {
	return fmt.Sprintf("%s fits a classification or sequence pipeline on a CSV file and stores the bundle", name)
}

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
)

func main() {
	a := args{Store: "models"}
	arg.MustParse(&a)

	if err := run(a); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("✗"), err)
		if a.Debug {
			fmt.Fprintln(os.Stderr, goerrors.Wrap(err, 0).ErrorStack())
		}
		os.Exit(1)
	}
}

func run(a args) error {
	cfg, err := pipeline.LoadConfig(a.Config)
	if err != nil {
		return err
	}
	if a.Name == "" {
		a.Name = cfg.Name
	}
	if a.Name == "" {
		a.Name = strings.TrimSuffix(filepath.Base(a.Config), filepath.Ext(a.Config))
	}

	var opts []pipeline.Option
	if a.Verbose {
		opts = append(opts, pipeline.WithLogger(log.New(os.Stderr, "[train] ", log.LstdFlags)))
	}
	var bars *stageBars
	if !a.Quiet {
		bars = newStageBars()
		defer bars.finish()
		opts = append(opts, pipeline.WithProgress(bars.update))
	}

	p, err := pipeline.New(*cfg, opts...)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s on %s\n", cyan("Training"), cfg.Model.Kind, a.Data)
	src := cfg.OpenCSV(a.Data, true)

	var bundle *persistence.Bundle
	if cfg.Task == pipeline.TaskSequence {
		result, err := p.RunSequence(src)
		bars.finish()
		if err != nil {
			return err
		}
		fmt.Printf("\n%s\n%s", cyan("Sequence Results:"), result.Report.Format())
		bundle = persistence.FromSequenceResult(a.Name, *cfg, p.Labels(), result)
	} else {
		result, err := p.Run(src)
		bars.finish()
		if err != nil {
			return err
		}
		fmt.Printf("\n%s\n%s", cyan("Test Results:"), result.Report.Format())
		for _, key := range sortedKeys(result.Scores) {
			fmt.Printf("%-24s %.4f\n", key, result.Scores[key])
		}
		if result.CV != nil {
			fmt.Printf("CV accuracy: %.4f ± %.4f (%d folds)\n", result.CV.Mean, result.CV.Std, len(result.CV.Scores))
		}
		bundle = persistence.FromResult(a.Name, *cfg, p.Labels(), result)
	}
	bundle.Metadata.Dataset = a.Data

	store := persistence.NewStore(a.Store)
	if err := store.Put(a.Name, bundle); err != nil {
		return err
	}
	fmt.Printf("%s bundle %s saved to %s (id %s)\n", green("✓"), a.Name, a.Store, bundle.ID)

	if a.Metadata != "" {
		if err := bundle.SaveMetadata(a.Metadata); err != nil {
			return err
		}
	}
	return nil
}
