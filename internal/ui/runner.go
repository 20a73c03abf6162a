package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig holds configuration for a command execution
type RunnerConfig struct {
	Title     string    // Command title (e.g., "Contact")
	Command   string    // Full command (e.g., "midnightbrew contact")
	Params    []Param   // Parameters to display in header
	StepNames []string  // Names for each step
	Output    io.Writer // Output writer (default: os.Stdout)

	// Troubleshoot returns tips for a failure. Optional.
	Troubleshoot func(error) []string
}

// Runner orchestrates the output of a multi-step command.
// It manages the header → progress → result flow and provides
// callbacks for reporting progress.
type Runner struct {
	config   RunnerConfig
	header   *Header
	progress *Progress
	output   io.Writer
	width    int
}

// NewRunner creates a new runner for a command
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	width := GetTerminalWidth()

	var prog *Progress
	if len(config.StepNames) > 0 {
		prog = NewProgress("", config.StepNames...).SetWidth(width)
	}

	return &Runner{
		config:   config,
		header:   NewHeader(config.Title, config.Command, config.Params...).SetWidth(width),
		progress: prog,
		output:   config.Output,
		width:    width,
	}
}

// SetWidth overrides the detected terminal width
func (r *Runner) SetWidth(width int) *Runner {
	r.width = width
	r.header.SetWidth(width)
	if r.progress != nil {
		r.progress.SetWidth(width)
	}
	return r
}

// Operation is the work performed by a command. It reports progress
// through onStep and returns the details to show on success.
type Operation func(ctx context.Context, onStep StepCallback) ([]Detail, error)

// Run executes the operation with UI updates.
// It displays the header, tracks progress, and shows the result.
func (r *Runner) Run(ctx context.Context, operation Operation) error {
	start := time.Now()

	_, _ = fmt.Fprintln(r.output, r.header.Render())
	_, _ = fmt.Fprintln(r.output)

	details, err := operation(ctx, r.stepCallback())
	duration := time.Since(start)

	_, _ = fmt.Fprintln(r.output)
	if err != nil {
		var tips []string
		if r.config.Troubleshoot != nil {
			tips = r.config.Troubleshoot(err)
		}
		result := NewFailureResult(r.config.Title+" failed", err, tips).SetWidth(r.width)
		_, _ = fmt.Fprintln(r.output, result.Render())
		return err
	}

	details = append(details, Detail{Key: "Duration", Value: duration.Round(time.Millisecond).String()})
	result := NewSuccessResult(r.config.Title+" complete", details...).SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, result.Render())
	return nil
}

// stepCallback prints a line whenever a step finishes. Running steps
// are printed with a carriage return so the final status overwrites them.
func (r *Runner) stepCallback() StepCallback {
	return func(stepNumber int, status StepStatus, message string) {
		if r.progress == nil || stepNumber < 1 || stepNumber > len(r.progress.Steps) {
			return
		}
		r.progress.UpdateStep(stepNumber, status, message)
		line := r.progress.renderStepLine(r.progress.Steps[stepNumber-1])

		switch status {
		case StepComplete, StepFailed, StepSkipped:
			_, _ = fmt.Fprintln(r.output, line)
		case StepRunning:
			_, _ = fmt.Fprint(r.output, line+"\r")
		}
	}
}
