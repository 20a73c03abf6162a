package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/muurk/midnightbrew/internal/logging"
	"go.uber.org/zap"
)

// DefaultSubmitTimeout bounds a single call to the Submitter.
const DefaultSubmitTimeout = 30 * time.Second

// Receipt is returned by a Submitter that accepted the submission.
type Receipt struct {
	ID      string            // Confirmation identifier
	Message string            // Message to show the user
	Data    map[string]string // Collaborator-specific details
}

// Submitter is the external collaborator that receives the validated values
// of a completed wizard. It is invoked at most once per Submit call.
type Submitter interface {
	Submit(ctx context.Context, values Values) (*Receipt, error)
}

// SubmitterFunc adapts a function to the Submitter interface.
type SubmitterFunc func(ctx context.Context, values Values) (*Receipt, error)

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, values Values) (*Receipt, error) {
	return f(ctx, values)
}

// Config configures an Engine.
type Config struct {
	Name      string        // Form name used in logs (e.g., "signup")
	Steps     []Step        // Ordered steps; at least one
	Submitter Submitter     // Collaborator invoked by Submit
	Timeout   time.Duration // Submit timeout (0 = DefaultSubmitTimeout)
}

// Snapshot is a read-only copy of the engine state for rendering.
type Snapshot struct {
	Index      int    // Current step index; StepCount when completed
	StepCount  int    // Number of steps
	StepID     string // Current step ID (empty when completed)
	Values     Values // Copy of all field values
	Errors     Errors // Copy of current field errors
	Completed  bool   // Terminal state reached
	Submitting bool   // A submission is in flight
	Message    string // Wizard-level message (e.g., a rejection reason)
	Receipt    *Receipt
}

// Engine sequences a multi-step form with gated progression.
//
// States are Step 0..n-1 and Completed. Advance moves forward only when the
// current step validates; Retreat moves back without validating; Submit is
// only accepted on the last step and leads to Completed. Reset is the only
// way out of Completed.
//
// Engine is safe for concurrent use. The lock is released while the
// Submitter runs so the host can keep rendering snapshots.
type Engine struct {
	name      string
	steps     []Step
	submitter Submitter
	timeout   time.Duration

	mu         sync.Mutex
	index      int
	values     Values
	errors     Errors
	completed  bool
	submitting bool
	message    string
	receipt    *Receipt
	generation uint64
}

// New creates an engine positioned on the first step with empty values.
func New(cfg Config) (*Engine, error) {
	if len(cfg.Steps) == 0 {
		return nil, fmt.Errorf("wizard %q: at least one step is required", cfg.Name)
	}

	seen := make(map[string]bool, len(cfg.Steps))
	for _, s := range cfg.Steps {
		if s.ID == "" {
			return nil, fmt.Errorf("wizard %q: step with empty ID", cfg.Name)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("wizard %q: duplicate step ID %q", cfg.Name, s.ID)
		}
		seen[s.ID] = true
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}

	return &Engine{
		name:      cfg.Name,
		steps:     cfg.Steps,
		submitter: cfg.Submitter,
		timeout:   timeout,
		values:    make(Values),
		errors:    make(Errors),
	}, nil
}

// MustNew is like New but panics on an invalid configuration. It is meant
// for package-level step tables that are known to be valid.
func MustNew(cfg Config) *Engine {
	e, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return e
}

// Steps returns the configured steps.
func (e *Engine) Steps() []Step {
	return e.steps
}

// StepCount returns the number of steps.
func (e *Engine) StepCount() int {
	return len(e.steps)
}

// stepIndex returns the index of the step with the given ID, or -1.
func (e *Engine) stepIndex(id string) int {
	for i, s := range e.steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// UpdateField sets a field value and clears its error. Updates naming an
// unknown step or a field the step does not collect are dropped, as are
// updates while a submission is in flight and after completion.
func (e *Engine) UpdateField(step, field, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.stepIndex(step)
	if i < 0 || !e.steps[i].HasField(field) || e.submitting || e.completed {
		logging.Debug("Field update ignored",
			zap.String("form", e.name),
			zap.String("step", step),
			zap.String("field", field),
		)
		return
	}

	e.values[field] = value
	delete(e.errors, field)
}

// Value returns the current value of field.
func (e *Engine) Value(field string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.values[field]
}

// ValidateStep applies the rules of the named step to the current values.
// It never changes the step index or the stored errors. An unknown step
// validates cleanly.
func (e *Engine) ValidateStep(step string) Errors {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.stepIndex(step)
	if i < 0 {
		return Errors{}
	}
	return e.steps[i].Validate(e.values)
}

// Advance validates the current step and moves to the next one. On
// failure the errors are stored and returned as a *ValidationFailed; the
// index does not move.
func (e *Engine) Advance() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.completed || e.submitting {
		return ErrNavigationIgnored
	}
	if e.index == len(e.steps)-1 {
		return ErrUseSubmit
	}

	step := e.steps[e.index]
	if errs := step.Validate(e.values); len(errs) > 0 {
		e.storeErrors(step, errs)
		logging.LogValidationFailed(e.name, step.ID, fieldNames(errs))
		return &ValidationFailed{Step: step.ID, StepIndex: e.index, Fields: errs}
	}

	e.clearStepErrors(step)
	e.message = ""
	from := step.ID
	e.index++
	logging.LogStepTransition(e.name, from, e.steps[e.index].ID, e.index)
	return nil
}

// Retreat moves to the previous step without validating. It is a no-op on
// the first step, after completion, and while a submission is in flight.
func (e *Engine) Retreat() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.completed || e.submitting || e.index == 0 {
		return
	}
	from := e.steps[e.index].ID
	e.index--
	e.message = ""
	logging.LogStepTransition(e.name, from, e.steps[e.index].ID, e.index)
}

// Submit validates every step and hands the values to the Submitter. It is
// only accepted on the last step. While the Submitter runs, further Submit
// calls fail with ErrSubmitInFlight. If the engine is reset before the
// Submitter returns, the result is discarded and ErrStale is returned.
//
// Validation failures return a *ValidationFailed for the first failing step
// (the index does not move). Collaborator failures and timeouts return a
// *SubmissionRejected and leave the engine on the last step.
func (e *Engine) Submit(ctx context.Context) (*Receipt, error) {
	e.mu.Lock()

	if e.completed {
		e.mu.Unlock()
		return nil, ErrNavigationIgnored
	}
	if e.submitting {
		e.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if e.index != len(e.steps)-1 {
		e.mu.Unlock()
		return nil, ErrNotFinalStep
	}
	if e.submitter == nil {
		e.mu.Unlock()
		return nil, ErrNoSubmitter
	}

	for i, step := range e.steps {
		if errs := step.Validate(e.values); len(errs) > 0 {
			e.storeErrors(step, errs)
			e.mu.Unlock()
			logging.LogValidationFailed(e.name, step.ID, fieldNames(errs))
			return nil, &ValidationFailed{Step: step.ID, StepIndex: i, Fields: errs}
		}
	}

	e.submitting = true
	e.message = ""
	gen := e.generation
	values := e.values.Clone()
	submitter := e.submitter
	e.mu.Unlock()

	start := time.Now()
	receipt, err := e.callSubmitter(ctx, submitter, values)
	elapsed := time.Since(start)

	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation {
		logging.LogSubmission(e.name, "stale", elapsed, err)
		return nil, ErrStale
	}
	e.submitting = false

	if err != nil {
		rejected := rejectionFrom(err)
		e.message = rejected.Reason
		logging.LogSubmission(e.name, "rejected", elapsed, err)
		return nil, rejected
	}

	e.completed = true
	e.index = len(e.steps)
	e.errors = make(Errors)
	e.receipt = receipt
	if receipt != nil {
		e.message = receipt.Message
	}
	logging.LogSubmission(e.name, "accepted", elapsed, nil)
	return receipt, nil
}

// callSubmitter invokes the collaborator under the submit timeout and maps
// a deadline overrun to ErrSubmitTimeout.
func (e *Engine) callSubmitter(ctx context.Context, s Submitter, values Values) (*Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	receipt, err := s.Submit(ctx, values)
	if err == nil {
		return receipt, nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, &SubmissionRejected{
			Reason:    "The service did not respond in time. Please try again.",
			Err:       ErrSubmitTimeout,
			Retryable: true,
		}
	}
	return nil, err
}

// Reset clears all values, errors and the completion flag and returns to
// the first step. An outstanding submission is orphaned.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.index = 0
	e.values = make(Values)
	e.errors = make(Errors)
	e.completed = false
	e.submitting = false
	e.message = ""
	e.receipt = nil
	e.generation++
	logging.Debug("Wizard reset", zap.String("form", e.name), zap.Uint64("generation", e.generation))
}

// Generation returns the reset counter. It increments on every Reset.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Index:      e.index,
		StepCount:  len(e.steps),
		Values:     e.values.Clone(),
		Errors:     e.errors.Clone(),
		Completed:  e.completed,
		Submitting: e.submitting,
		Message:    e.message,
		Receipt:    e.receipt,
	}
	if e.index < len(e.steps) {
		s.StepID = e.steps[e.index].ID
	}
	return s
}

// storeErrors replaces the stored errors of step's fields with errs.
// Errors of other steps are left untouched.
func (e *Engine) storeErrors(step Step, errs Errors) {
	e.clearStepErrors(step)
	for f, msg := range errs {
		e.errors[f] = msg
	}
}

func (e *Engine) clearStepErrors(step Step) {
	for _, f := range step.Fields {
		delete(e.errors, f)
	}
	for _, r := range step.Rules {
		delete(e.errors, r.Field)
	}
}

func fieldNames(errs Errors) []string {
	names := make([]string, 0, len(errs))
	for f := range errs {
		names = append(names, f)
	}
	return names
}
