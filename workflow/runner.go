// Package workflow runs the demo end to end: resolve the history, upload
// the input file, wait for it, run the sort tool, wait for the output and
// download it.
//
// Every step runs sequentially on the caller's goroutine. Progress is
// reported through a Reporter so the CLI can render it.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	galaxy "galaxy-sdk"
	"galaxy-sdk/internal/log"
	"galaxy-sdk/models"
	"galaxy-sdk/services"

	"github.com/google/uuid"
)

// Step identifies a stage of the run
type Step int

const (
	StepResolveHistory Step = iota
	StepUpload
	StepWaitInput
	StepFindTool
	StepRunTool
	StepWaitOutput
	StepDownload
)

var stepNames = map[Step]string{
	StepResolveHistory: "resolve history",
	StepUpload:         "upload",
	StepWaitInput:      "wait for input",
	StepFindTool:       "find tool",
	StepRunTool:        "run tool",
	StepWaitOutput:     "wait for output",
	StepDownload:       "download",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Reporter receives progress events. Implementations must not block for
// long; they are called inline.
type Reporter interface {
	Step(step Step, message string)
	Poll(datasetID string, attempt int, state models.DatasetState)
}

// Options configures a run
type Options struct {
	HistoryName string
	// HistoryID skips the name lookup when set
	HistoryID    string
	ToolName     string
	InputFile    string
	OutputFile   string
	OutputExt    string
	PollInterval time.Duration
	Sort         SortParams
}

// Result describes a completed run
type Result struct {
	RunID      string
	History    *models.History
	Input      *models.Dataset
	Tool       *models.Tool
	Output     *models.Dataset
	OutputFile string
	Bytes      int64
}

// Runner executes the demo against one Galaxy client
type Runner struct {
	client   *galaxy.GalaxyClient
	opts     Options
	reporter Reporter
}

// NewRunner creates a Runner. A nil reporter discards progress.
func NewRunner(client *galaxy.GalaxyClient, opts Options, reporter Reporter) *Runner {
	if reporter == nil {
		reporter = nopReporter{}
	}
	if opts.OutputExt == "" {
		opts.OutputExt = "csv"
	}
	if opts.Sort == (SortParams{}) {
		opts.Sort = DefaultSortParams()
	}
	return &Runner{
		client:   client,
		opts:     opts,
		reporter: reporter,
	}
}

// Run executes all steps and stops at the first error
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), OutputFile: r.opts.OutputFile}
	logger := r.client.Logger().With(log.RunID(res.RunID))
	logger.Info("run started",
		slog.String("history", r.opts.HistoryName),
		slog.String("tool", r.opts.ToolName),
		slog.String("input", r.opts.InputFile))

	history, err := r.resolveHistory(ctx)
	if err != nil {
		logger.Error("history lookup failed", log.Error(err))
		return nil, err
	}
	res.History = history
	logger = logger.With(log.HistoryID(history.ID))

	r.reporter.Step(StepUpload, fmt.Sprintf("Uploading %s", r.opts.InputFile))
	upload, err := r.client.Tools.Upload(ctx, &services.FileUploadRequest{
		HistoryID: history.ID,
		Path:      r.opts.InputFile,
	})
	if err != nil {
		logger.Error("upload failed", log.Error(err))
		return nil, fmt.Errorf("upload %s: %w", r.opts.InputFile, err)
	}
	inputID := upload.Outputs[0].ID
	logger.Info("uploaded", log.DatasetID(inputID))

	r.reporter.Step(StepWaitInput, fmt.Sprintf("Waiting for dataset %s", inputID))
	input, err := r.wait(ctx, history.ID, inputID)
	if err != nil {
		logger.Error("waiting for input failed", log.DatasetID(inputID), log.Error(err))
		return nil, err
	}
	res.Input = input

	r.reporter.Step(StepFindTool, fmt.Sprintf("Looking up tool %q", r.opts.ToolName))
	sections, err := r.client.Tools.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	tool, err := FindTool(sections, r.opts.ToolName)
	if err != nil {
		logger.Error("tool lookup failed", log.Error(err))
		return nil, err
	}
	res.Tool = tool

	r.reporter.Step(StepRunTool, fmt.Sprintf("Running %s (%s)", tool.Name, tool.ID))
	execution, err := r.client.Tools.Create(ctx, SortInputs(tool, input, history.ID, r.opts.Sort))
	if err != nil {
		logger.Error("tool run failed", log.ToolID(tool.ID), log.Error(err))
		return nil, fmt.Errorf("run tool %s: %w", tool.ID, err)
	}
	outputID := execution.Outputs[0].ID
	logger.Info("tool submitted", log.ToolID(tool.ID), log.DatasetID(outputID))

	r.reporter.Step(StepWaitOutput, fmt.Sprintf("Waiting for dataset %s", outputID))
	output, err := r.wait(ctx, history.ID, outputID)
	if err != nil {
		logger.Error("waiting for output failed", log.DatasetID(outputID), log.Error(err))
		return nil, err
	}
	res.Output = output

	r.reporter.Step(StepDownload, fmt.Sprintf("Downloading to %s", r.opts.OutputFile))
	n, err := r.download(ctx, outputID)
	if err != nil {
		logger.Error("download failed", log.DatasetID(outputID), log.Error(err))
		return nil, err
	}
	res.Bytes = n

	logger.Info("run finished", slog.String("output", r.opts.OutputFile), slog.Int64("bytes", n))
	return res, nil
}

func (r *Runner) resolveHistory(ctx context.Context) (*models.History, error) {
	if r.opts.HistoryID != "" {
		r.reporter.Step(StepResolveHistory, fmt.Sprintf("Using history %s", r.opts.HistoryID))
		return &models.History{ID: r.opts.HistoryID, Name: r.opts.HistoryName}, nil
	}

	r.reporter.Step(StepResolveHistory, fmt.Sprintf("Looking up history %q", r.opts.HistoryName))
	histories, err := r.client.Histories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list histories: %w", err)
	}
	return FindHistory(histories, r.opts.HistoryName)
}

func (r *Runner) wait(ctx context.Context, historyID, datasetID string) (*models.Dataset, error) {
	dataset, err := r.client.Datasets.WaitUntilReady(ctx, historyID, datasetID, &services.WaitOptions{
		Interval: r.opts.PollInterval,
		OnPoll: func(attempt int, d *models.Dataset) {
			r.client.Logger().Debug("dataset polled",
				log.DatasetID(datasetID), log.State(d.State), slog.Int("attempt", attempt))
			r.reporter.Poll(datasetID, attempt, d.State)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("wait for dataset %s: %w", datasetID, err)
	}
	return dataset, nil
}

// download writes the dataset next to the output file and renames it into
// place only once the transfer succeeded, so a failed download leaves any
// previous output untouched
func (r *Runner) download(ctx context.Context, datasetID string) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(r.opts.OutputFile), ".response-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("failed to set output file mode: %w", err)
	}

	n, err := r.client.Datasets.Display(ctx, datasetID, r.opts.OutputExt, tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close temp file: %w", cerr)
	}
	if err != nil {
		return 0, err
	}

	if err := os.Rename(tmp.Name(), r.opts.OutputFile); err != nil {
		return 0, fmt.Errorf("failed to replace output file: %w", err)
	}
	return n, nil
}

type nopReporter struct{}

func (nopReporter) Step(Step, string) {}
func (nopReporter) Poll(string, int, models.DatasetState) {}
