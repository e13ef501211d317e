package main

import (
	"fmt"
	"io"

	"galaxy-sdk/models"
	"galaxy-sdk/workflow"
)

// plainReporter prints one line per step and per poll, for pipes and CI
type plainReporter struct {
	w io.Writer
}

func newPlainReporter(w io.Writer) *plainReporter {
	return &plainReporter{w: w}
}

func (r *plainReporter) Step(step workflow.Step, message string) {
	fmt.Fprintf(r.w, "[%s] %s\n", step, message)
}

func (r *plainReporter) Poll(datasetID string, attempt int, state models.DatasetState) {
	fmt.Fprintf(r.w, "  %s: %s (attempt %d)\n", datasetID, state, attempt)
}
