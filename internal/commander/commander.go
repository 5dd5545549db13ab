// Package commander is an interactive shell over the bundle store.
package commander

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/RuheSaniya/code-alpha-tasks/internal/evaluation"
	"github.com/RuheSaniya/code-alpha-tasks/internal/experiment"
	"github.com/RuheSaniya/code-alpha-tasks/internal/jobs"
	"github.com/RuheSaniya/code-alpha-tasks/internal/persistence"
	"github.com/RuheSaniya/code-alpha-tasks/internal/pipeline"
)

type Commander struct {
	store       *persistence.Store
	current     *persistence.Bundle
	currentName string
	jobManager  *jobs.Manager
	out         io.Writer

	green  func(a ...any) string
	red    func(a ...any) string
	yellow func(a ...any) string
	cyan   func(a ...any) string
	blue   func(a ...any) string
}

func NewCommander(store *persistence.Store, out io.Writer) *Commander {
	return &Commander{
		store:      store,
		jobManager: jobs.NewManager(),
		out:        out,
		green:      color.New(color.FgGreen).SprintFunc(),
		red:        color.New(color.FgRed).SprintFunc(),
		yellow:     color.New(color.FgYellow).SprintFunc(),
		cyan:       color.New(color.FgCyan).SprintFunc(),
		blue:       color.New(color.FgBlue).SprintFunc(),
	}
}

// Start reads commands from in until quit or end of input.
func (c *Commander) Start(in io.Reader) {
	c.printWelcome()
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(c.out, c.yellow("\nmlp> "))
		if !scanner.Scan() {
			if scanner.Err() != nil {
				fmt.Fprintf(c.out, "\n%s Scanner error: %v\n", c.red("✗"), scanner.Err())
			}
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		if !c.ExecuteCommand(strings.ToLower(parts[0]), parts[1:]) {
			break
		}
	}
}

// ExecuteCommand runs one command and reports whether the shell continues.
func (c *Commander) ExecuteCommand(command string, args []string) bool {
	switch command {
	case "help", "h":
		c.showHelp()
	case "train":
		if len(args) < 2 {
			c.usage("train <config.yaml> <data.csv> [name]")
			break
		}
		c.train(args[0], args[1], optional(args, 2))
	case "train-bg":
		if len(args) < 2 {
			c.usage("train-bg <config.yaml> <data.csv> [name]")
			break
		}
		c.trainBackground(args[0], args[1], optional(args, 2))
	case "experiment":
		if len(args) < 2 {
			c.usage("experiment <experiment.yaml> <data.csv>")
			break
		}
		c.runExperiment(args[0], args[1])
	case "list", "ls":
		c.listModels()
	case "use", "loadmodel":
		if len(args) < 1 {
			c.usage("use <name>")
			break
		}
		c.useModel(args[0])
	case "current", "info":
		c.showCurrentModel()
	case "predict", "batch":
		if len(args) < 1 {
			c.usage("predict <data.csv> [labeled]")
			break
		}
		c.predict(args[0], optional(args, 1) == "labeled")
	case "delete", "rm":
		if len(args) < 1 {
			c.usage("delete <name>")
			break
		}
		c.deleteModel(args[0])
	case "jobs", "job-status":
		if len(args) > 0 {
			c.showJobStatus(args[0])
		} else {
			c.listAllJobs()
		}
	case "job-cancel":
		if len(args) < 1 {
			c.usage("job-cancel <job-id>")
			break
		}
		c.cancelJob(args[0])
	case "job-logs":
		if len(args) < 1 {
			c.usage("job-logs <job-id>")
			break
		}
		c.showJobLogs(args[0])
	case "quit", "exit", "q":
		fmt.Fprintln(c.out, c.cyan("Goodbye!"))
		return false
	default:
		fmt.Fprintf(c.out, "%s Unknown command: %s (type 'help')\n", c.red("✗"), command)
	}
	return true
}

func optional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func (c *Commander) usage(text string) {
	fmt.Fprintln(c.out, c.red("Usage: "+text))
}

func (c *Commander) fail(err error) {
	fmt.Fprintf(c.out, "%s %v\n", c.red("✗"), err)
}

func (c *Commander) printWelcome() {
	fmt.Fprintln(c.out, c.cyan("╔══════════════════════════════════════════╗"))
	fmt.Fprintln(c.out, c.cyan("║          ML Pipeline Commander           ║"))
	fmt.Fprintln(c.out, c.cyan("╚══════════════════════════════════════════╝"))
	fmt.Fprintln(c.out, "Type 'help' for available commands")
}

func (c *Commander) showHelp() {
	fmt.Fprintln(c.out, c.blue("\nAvailable Commands:"))

	fmt.Fprintln(c.out, "\n"+c.cyan("Training:"))
	fmt.Fprintln(c.out, "  train <cfg> <csv> [name]    - Fit a pipeline and store the bundle")
	fmt.Fprintln(c.out, "  train-bg <cfg> <csv> [name] - Same, as a background job")
	fmt.Fprintln(c.out, "  experiment <cfg> <csv>      - Run an experiment grid")

	fmt.Fprintln(c.out, "\n"+c.cyan("Models:"))
	fmt.Fprintln(c.out, "  list                        - List stored bundles")
	fmt.Fprintln(c.out, "  use <name>                  - Select a bundle")
	fmt.Fprintln(c.out, "  current                     - Show the selected bundle")
	fmt.Fprintln(c.out, "  predict <csv> [labeled]     - Predict with the selected bundle")
	fmt.Fprintln(c.out, "  delete <name>               - Remove a bundle")

	fmt.Fprintln(c.out, "\n"+c.cyan("Jobs:"))
	fmt.Fprintln(c.out, "  jobs [job-id]               - List jobs or show one")
	fmt.Fprintln(c.out, "  job-cancel <job-id>         - Cancel a running job")
	fmt.Fprintln(c.out, "  job-logs <job-id>           - View job logs")

	fmt.Fprintln(c.out, "\n  quit                        - Exit")
}

// fit runs the pipeline in cfgPath on dataPath and stores the bundle.
func (c *Commander) fit(cfgPath, dataPath, name string, opts ...pipeline.Option) (*persistence.Bundle, error) {
	cfg, err := pipeline.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = cfg.Name
	}
	p, err := pipeline.New(*cfg, opts...)
	if err != nil {
		return nil, err
	}

	src := cfg.OpenCSV(dataPath, true)
	var bundle *persistence.Bundle
	if cfg.Task == pipeline.TaskSequence {
		result, err := p.RunSequence(src)
		if err != nil {
			return nil, err
		}
		bundle = persistence.FromSequenceResult(name, *cfg, p.Labels(), result)
	} else {
		result, err := p.Run(src)
		if err != nil {
			return nil, err
		}
		bundle = persistence.FromResult(name, *cfg, p.Labels(), result)
	}
	bundle.Metadata.Dataset = dataPath

	if err := c.store.Put(name, bundle); err != nil {
		return nil, err
	}
	return bundle, nil
}

func (c *Commander) train(cfgPath, dataPath, name string) {
	fmt.Fprintf(c.out, "Training %s on %s...\n", cfgPath, dataPath)
	bundle, err := c.fit(cfgPath, dataPath, name, pipeline.WithLogger(log.New(c.out, "  ", 0)))
	if err != nil {
		c.fail(err)
		return
	}
	c.current, c.currentName = bundle, bundle.Name
	fmt.Fprintf(c.out, "%s Stored %s\n%s", c.green("✓"), bundle.Name, bundle.Summary())
}

func (c *Commander) trainBackground(cfgPath, dataPath, name string) {
	job := c.jobManager.Submit("train", fmt.Sprintf("Training %s on %s", cfgPath, dataPath),
		func(ctx context.Context, job *jobs.Job) (any, error) {
			job.AddLog("starting")
			bundle, err := c.fit(cfgPath, dataPath, name,
				pipeline.WithContext(ctx),
				pipeline.WithLogger(log.New(job, "", 0)),
				pipeline.WithProgress(stageProgress(job)))
			if err != nil {
				job.AddLog(err.Error())
				return nil, err
			}
			job.AddLog("stored " + bundle.Name)
			return bundle.Name, nil
		})
	fmt.Fprintf(c.out, "Job submitted: %s\n", c.cyan(job.ID))
}

// stageProgress maps pipeline stages onto a single job fraction.
func stageProgress(job *jobs.Job) pipeline.ProgressFunc {
	weights := map[string][2]float64{
		pipeline.StageLoad:     {0, 0.1},
		pipeline.StageExtract:  {0.1, 0.4},
		pipeline.StageFit:      {0.4, 0.8},
		pipeline.StageEvaluate: {0.8, 0.9},
		pipeline.StageCV:       {0.9, 1},
	}
	return func(stage string, done, total int) {
		w, ok := weights[stage]
		if !ok || total <= 0 {
			return
		}
		job.SetProgress(w[0] + (w[1]-w[0])*float64(done)/float64(total))
	}
}

func (c *Commander) runExperiment(cfgPath, dataPath string) {
	cfg, err := experiment.LoadConfig(cfgPath)
	if err != nil {
		c.fail(err)
		return
	}
	runner := experiment.NewRunner(cfg)
	runner.Progress = func(done, total int) {
		fmt.Fprintf(c.out, "\r  %d/%d", done, total)
	}
	results, err := runner.RunAllExperiments(dataPath, cfg.Pipeline.OpenCSV(dataPath, true))
	fmt.Fprintln(c.out)
	if err != nil {
		c.fail(err)
		return
	}

	fmt.Fprintf(c.out, "%-10s %-12s %-8s %-9s %s\n", "Algorithm", "Scaling", "Split", "Accuracy", "Parameters")
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(c.out, "%-10s %-12s %-8s %s\n", r.Algorithm, r.Preprocessing, r.TrainTestSplit, c.red(r.Error))
			continue
		}
		fmt.Fprintf(c.out, "%-10s %-12s %-8s %-9.4f %s\n", r.Algorithm, r.Preprocessing, r.TrainTestSplit, r.Accuracy, r.Parameters)
	}
	if best, ok := experiment.Best(results); ok {
		fmt.Fprintf(c.out, "%s Best: %s %s (%.4f)\n", c.green("✓"), best.Algorithm, best.Parameters, best.Accuracy)
	}
}

func (c *Commander) listModels() {
	names := c.store.List()
	if len(names) == 0 {
		fmt.Fprintln(c.out, "No stored models")
		return
	}

	fmt.Fprintln(c.out, c.cyan("Stored Models:"))
	fmt.Fprintf(c.out, "%-24s %-20s %-10s %s\n", "Name", "Model", "Accuracy", "Created")
	for _, name := range names {
		bundle, err := c.store.Get(name)
		if err != nil {
			fmt.Fprintf(c.out, "%-24s %s\n", name, c.red(err.Error()))
			continue
		}
		marker := " "
		if name == c.currentName {
			marker = "*"
		}
		fmt.Fprintf(c.out, "%s%-23s %-20s %-10.4f %s\n", marker, name, bundle.Metadata.ModelName,
			headline(bundle.Metadata.Metrics), bundle.CreatedAt.Format("2006-01-02 15:04"))
	}
}

// headline is the accuracy of a classifier or the exact match rate of a
// sequence model.
func headline(metrics map[string]float64) float64 {
	if v, ok := metrics["accuracy"]; ok {
		return v
	}
	return metrics["exact_match"]
}

func (c *Commander) useModel(name string) {
	bundle, err := c.store.Get(name)
	if err != nil {
		c.fail(err)
		return
	}
	c.current, c.currentName = bundle, name
	fmt.Fprintf(c.out, "%s Using %s (%s)\n", c.green("✓"), name, bundle.Metadata.ModelName)
}

func (c *Commander) showCurrentModel() {
	if c.current == nil {
		fmt.Fprintln(c.out, c.yellow("No model selected. Use 'use <name>' first"))
		return
	}
	fmt.Fprintf(c.out, "%s\n%s", c.cyan("Current Model:"), c.current.Summary())
}

func (c *Commander) predict(dataPath string, labeled bool) {
	if c.current == nil {
		fmt.Fprintln(c.out, c.red("No model selected. Use 'use <name>' first"))
		return
	}
	predictor, err := c.current.Predictor()
	if err != nil {
		c.fail(err)
		return
	}
	samples, labels, err := predictor.PredictSource(c.current.Config.OpenCSV(dataPath, labeled))
	if err != nil {
		c.fail(err)
		return
	}

	counts := make(map[string]int)
	for i, s := range samples {
		fmt.Fprintf(c.out, "%-16s %s\n", s.ID, labels[i])
		counts[labels[i]]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(c.out, c.cyan("\nPrediction Distribution:"))
	for _, k := range keys {
		fmt.Fprintf(c.out, "  %-16s %d\n", k, counts[k])
	}

	if labeled && c.current.Classifier != nil {
		truth := make([]string, len(samples))
		for i, s := range samples {
			truth[i] = s.Label
		}
		report, err := evaluation.EvaluateLabels(labels, truth, c.current.Labels)
		if err != nil {
			c.fail(err)
			return
		}
		fmt.Fprintf(c.out, "\n%s", report.Format())
	}
}

func (c *Commander) deleteModel(name string) {
	if err := c.store.Delete(name); err != nil {
		c.fail(err)
		return
	}
	if name == c.currentName {
		c.current, c.currentName = nil, ""
	}
	fmt.Fprintf(c.out, "%s Deleted %s\n", c.green("✓"), name)
}

func (c *Commander) listAllJobs() {
	all := c.jobManager.ListJobs()
	if len(all) == 0 {
		fmt.Fprintln(c.out, "No jobs found")
		return
	}

	fmt.Fprintln(c.out, c.cyan("Background Jobs:"))
	fmt.Fprintln(c.out, strings.Repeat("-", 80))
	fmt.Fprintf(c.out, "%-20s %-10s %-10s %-10s %s\n", "Job ID", "Type", "Status", "Progress", "Description")
	fmt.Fprintln(c.out, strings.Repeat("-", 80))

	for _, job := range all {
		status := job.Status()
		statusColor := c.yellow
		switch status {
		case jobs.JobCompleted:
			statusColor = c.green
		case jobs.JobFailed:
			statusColor = c.red
		case jobs.JobRunning:
			statusColor = c.cyan
		}
		fmt.Fprintf(c.out, "%-20s %-10s %-10s %-10s %s\n", job.ID, job.Type,
			statusColor(string(status)), fmt.Sprintf("%.0f%%", job.Progress()*100), job.Description)
	}
}

func (c *Commander) showJobStatus(jobID string) {
	job, exists := c.jobManager.GetJob(jobID)
	if !exists {
		fmt.Fprintf(c.out, "%s Job not found: %s\n", c.red("✗"), jobID)
		return
	}

	fmt.Fprintf(c.out, "\n%s\n", c.cyan("Job Details:"))
	fmt.Fprintf(c.out, "ID:          %s\n", job.ID)
	fmt.Fprintf(c.out, "Type:        %s\n", job.Type)
	fmt.Fprintf(c.out, "Status:      %s\n", job.Status())
	fmt.Fprintf(c.out, "Start Time:  %s\n", job.StartTime.Format("15:04:05"))
	if end := job.EndTime(); !end.IsZero() {
		fmt.Fprintf(c.out, "Duration:    %s\n", end.Sub(job.StartTime))
	}
	if err := job.Err(); err != nil {
		fmt.Fprintf(c.out, "Error:       %s\n", c.red(err.Error()))
	}
}

func (c *Commander) cancelJob(jobID string) {
	if err := c.jobManager.CancelJob(jobID); err != nil {
		c.fail(err)
		return
	}
	fmt.Fprintf(c.out, "%s Cancel requested: %s\n", c.green("✓"), jobID)
}

func (c *Commander) showJobLogs(jobID string) {
	job, exists := c.jobManager.GetJob(jobID)
	if !exists {
		fmt.Fprintf(c.out, "%s Job not found: %s\n", c.red("✗"), jobID)
		return
	}

	logs := job.Logs()
	if len(logs) == 0 {
		fmt.Fprintln(c.out, "No logs available")
		return
	}

	fmt.Fprintf(c.out, "\n%s\n", c.cyan(fmt.Sprintf("Logs for job %s:", jobID)))
	for _, line := range logs {
		fmt.Fprintln(c.out, line)
	}
}

// Wait blocks until every submitted job has ended.
func (c *Commander) Wait() {
	for _, job := range c.jobManager.ListJobs() {
		job.Wait()
	}
}
