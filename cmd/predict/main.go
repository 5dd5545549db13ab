package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/fatih/color"
	goerrors "github.com/go-errors/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/evaluation"
	"github.com/RuheSaniya/code-alpha-tasks/internal/persistence"
)

var (
	name    = "predict"
	version = "1.0.0"
)

type args struct {
	Name    string `help:"stored bundle name" arg:"required,positional"`
	Data    string `help:"CSV file to predict" arg:"-d,required"`
	Store   string `help:"bundle store directory" arg:"--store,env:MLPIPE_STORE"`
	Output  string `help:"write id,label rows to this CSV instead of stdout" arg:"-o"`
	Labeled bool   `help:"the CSV carries labels; report metrics against them" arg:"-l"`
	Batch   int    `help:"samples per prediction batch" arg:"-b"`
	Info    bool   `help:"print the bundle summary first"`
	Debug   bool   `help:"print stack traces on failure"`
}

func (args) Version() string {
	return version
}

func (args) Description() string {
	return fmt.Sprintf("%s labels CSV rows with a stored bundle", name)
}

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
)

func main() {
	a := args{Store: "models", Batch: 256}
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
	bundle, err := persistence.NewStore(a.Store).Get(a.Name)
	if err != nil {
		return err
	}
	if a.Info {
		fmt.Fprintf(os.Stderr, "%s\n%s\n", cyan("Bundle:"), bundle.Summary())
	}

	predictor, err := bundle.Predictor()
	if err != nil {
		return err
	}
	predictor.SetBatchSize(a.Batch)

	samples, labels, err := predictor.PredictSource(bundle.Config.OpenCSV(a.Data, a.Labeled))
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if a.Output != "" {
		file, err := os.Create(a.Output)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	w := csv.NewWriter(out)
	w.Write([]string{"id", "label"})
	for i, s := range samples {
		w.Write([]string{s.ID, labels[i]})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	if a.Labeled {
		truth := make([]string, len(samples))
		for i, s := range samples {
			truth[i] = s.Label
		}
		if bundle.Sequence != nil {
			return reportSequences(bundle, labels, truth)
		}
		report, err := evaluation.EvaluateLabels(labels, truth, bundle.Labels)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "\n%s\n%s", cyan("Results:"), report.Format())
	}

	fmt.Fprintf(os.Stderr, "%s predicted %d samples with %s\n", green("✓"), len(samples), bundle.Metadata.ModelName)
	return nil
}

func reportSequences(bundle *persistence.Bundle, predicted, truth []string) error {
	pred := make([][]int, len(predicted))
	ref := make([][]int, len(truth))
	for i := range predicted {
		var err error
		if pred[i], err = bundle.Labels.EncodeSequence(predicted[i]); err != nil {
			return err
		}
		if ref[i], err = bundle.Labels.EncodeSequence(truth[i]); err != nil {
			return err
		}
	}
	report, err := evaluation.EvaluateSequences(pred, ref)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "\n%s\n%s", cyan("Sequence Results:"), report.Format())
	return nil
}
