package model

import (
	"time"
)

const (
	// StatusPending indicates a step has not started yet.
	StatusPending = "pending"
	// StatusRunning indicates a step is actively executing.
	StatusRunning = "running"
	// StatusSuccess marks a successful step execution.
	StatusSuccess = "success"
	// StatusSkipped indicates the pipeline skipped the step.
	StatusSkipped = "skipped"
	// StatusWarning marks an advisory step that failed without aborting the run.
	StatusWarning = "warning"
	// StatusFailed marks a failure during step execution.
	StatusFailed = "failed"
)

// StepResult captures the outcome of executing a single pipeline step.
type StepResult struct {
	StepID    string
	Status    string
	Message   string
	Error     error
	Duration  time.Duration
	Timestamp time.Time
}

// RunSummary accumulates step results for the final report.
type RunSummary struct {
	Results  []StepResult
	Reboot   RebootStatus
	Duration time.Duration
}

// Failed reports whether any critical step failed.
func (s *RunSummary) Failed() bool {
	for _, res := range s.Results {
		if res.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Warnings returns the results of advisory steps that did not succeed.
func (s *RunSummary) Warnings() []StepResult {
	var out []StepResult
	for _, res := range s.Results {
		if res.Status == StatusWarning {
			out = append(out, res)
		}
	}
	return out
}
