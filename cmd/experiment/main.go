package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/cheggaaa/pb/v3"
	"github.com/fatih/color"
	goerrors "github.com/go-errors/errors"

	"github.com/RuheSaniya/code-alpha-tasks/internal/experiment"
)

var (
	name    = "experiment"
	version = "1.0.0"
)

type args struct {
	Config  string `help:"experiment YAML file" arg:"-c,required"`
	Data    string `help:"dataset CSV file" arg:"-d,required"`
	Output  string `help:"directory for result files" arg:"-o"`
	Verbose bool   `help:"log failed grid points to stderr" arg:"-v"`
	Debug   bool   `help:"print stack traces on failure"`
}

func (args) Version() string {
	return version
}

func (args) Description() string {
	return fmt.Sprintf("%s runs a pipeline over a grid of scalers, splits and models", name)
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

func main() {
	a := args{Output: "experiments"}
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
	cfg, err := experiment.LoadConfig(a.Config)
	if err != nil {
		return err
	}

	runner := experiment.NewRunner(cfg)
	if a.Verbose {
		runner.Logger = log.New(os.Stderr, "[experiment] ", log.LstdFlags)
	}

	points := runner.Points()
	fmt.Printf("%s %d configurations on %s\n", cyan("Running"), len(points), a.Data)
	bar := pb.StartNew(len(points))
	runner.Progress = func(done, total int) { bar.SetCurrent(int64(done)) }

	results, err := runner.RunAllExperiments(filepath.Base(a.Data), cfg.Pipeline.OpenCSV(a.Data, true))
	bar.Finish()
	if err != nil {
		return err
	}

	expDir := filepath.Join(a.Output, fmt.Sprintf("experiment_%s", time.Now().Format("20060102_150405")))
	if err := os.MkdirAll(expDir, 0o755); err != nil {
		return err
	}
	resultsFile := filepath.Join(expDir, "experiment_results.csv")
	if err := experiment.ExportResults(results, resultsFile); err != nil {
		return err
	}
	fmt.Printf("%s results saved to %s\n", green("✓"), resultsFile)

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}
	fmt.Printf("\n%s\n", cyan("Experiment Summary:"))
	fmt.Printf("Total experiments: %d\n", len(results))
	if failed > 0 {
		fmt.Printf("%s %d failed, see the Error column\n", yellow("!"), failed)
	}

	best, ok := experiment.Best(results)
	if !ok {
		return goerrors.Errorf("all %d experiments failed", len(results))
	}
	fmt.Printf("Best accuracy: %.4f (%s %s with %s preprocessing, split %s)\n",
		best.Accuracy, best.Algorithm, best.Parameters, best.Preprocessing, best.TrainTestSplit)
	return nil
}
