package wizard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors returned by Engine operations. None of them is fatal; the
// engine state is unchanged whenever one of these is returned.
var (
	// ErrNavigationIgnored signals a navigation request that had no effect,
	// such as advancing a completed wizard.
	ErrNavigationIgnored = errors.New("navigation ignored")

	// ErrNotFinalStep is returned by Submit when the wizard is not on its
	// last step.
	ErrNotFinalStep = errors.New("submit is only allowed from the final step")

	// ErrUseSubmit is returned by Advance on the last step, which can only
	// be left through Submit.
	ErrUseSubmit = errors.New("final step must be submitted")

	// ErrSubmitInFlight is returned when Submit is called while a previous
	// submission has not returned yet.
	ErrSubmitInFlight = errors.New("submission already in progress")

	// ErrSubmitTimeout is wrapped by a SubmissionRejected when the
	// collaborator does not answer within the configured timeout.
	ErrSubmitTimeout = errors.New("submission timed out")

	// ErrStale is returned by Submit when the wizard was reset while the
	// collaborator was running. The collaborator's result is discarded.
	ErrStale = errors.New("wizard was reset during submission")

	// ErrNoSubmitter is returned when Submit is called on an engine
	// configured without a collaborator.
	ErrNoSubmitter = errors.New("no submitter configured")
)

// Kind is the category of a wizard error.
type Kind int

const (
	// KindValidation is a field-level validation failure.
	KindValidation Kind = iota
	// KindRejected is a failure reported by the submission collaborator.
	KindRejected
	// KindTimeout is a collaborator that did not answer in time.
	KindTimeout
	// KindIgnored is a request the engine dropped without changing state.
	KindIgnored
	// KindUnknown is anything else.
	KindUnknown
)

// String returns a human-readable name for the kind
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "Validation Failed"
	case KindRejected:
		return "Submission Rejected"
	case KindTimeout:
		return "Timeout"
	case KindIgnored:
		return "Ignored"
	case KindUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// ValidationFailed carries the per-field messages of a failed step.
type ValidationFailed struct {
	Step      string // Step identifier that failed
	StepIndex int    // Index of the failing step
	Fields    Errors // Failing fields and their messages
}

// Error implements the error interface
func (e *ValidationFailed) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed on step %q: %s", e.Step, strings.Join(fields, ", "))
}

// SubmissionRejected is returned by Submit when the collaborator refused or
// failed to accept the submission. The wizard stays on its final step and
// can be submitted again.
type SubmissionRejected struct {
	Reason    string // Wizard-level message for the user
	Err       error  // Underlying collaborator error (if any)
	Retryable bool   // Whether resubmitting may succeed
}

// Error implements the error interface
func (e *SubmissionRejected) Error() string {
	if e.Err != nil && e.Err.Error() != e.Reason {
		return fmt.Sprintf("submission rejected: %s (caused by: %v)", e.Reason, e.Err)
	}
	return fmt.Sprintf("submission rejected: %s", e.Reason)
}

// Unwrap returns the underlying error for error chain inspection
func (e *SubmissionRejected) Unwrap() error {
	return e.Err
}

// userMessager is implemented by collaborator errors that carry a message
// suitable for direct display.
type userMessager interface {
	UserMessage() string
}

// retryableError is implemented by collaborator errors that know whether a
// retry is worthwhile.
type retryableError interface {
	IsRetryable() bool
}

// rejectionFrom converts a collaborator error into a SubmissionRejected.
func rejectionFrom(err error) *SubmissionRejected {
	var rejected *SubmissionRejected
	if errors.As(err, &rejected) {
		return rejected
	}

	reason := err.Error()
	var um userMessager
	if errors.As(err, &um) {
		reason = um.UserMessage()
	}

	retryable := true
	var re retryableError
	if errors.As(err, &re) {
		retryable = re.IsRetryable()
	}

	return &SubmissionRejected{Reason: reason, Err: err, Retryable: retryable}
}

// Classify returns the Kind of an error returned by the engine.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var vf *ValidationFailed
	if errors.As(err, &vf) {
		return KindValidation
	}
	if errors.Is(err, ErrSubmitTimeout) {
		return KindTimeout
	}
	var sr *SubmissionRejected
	if errors.As(err, &sr) {
		return KindRejected
	}
	if errors.Is(err, ErrNavigationIgnored) ||
		errors.Is(err, ErrSubmitInFlight) ||
		errors.Is(err, ErrStale) {
		return KindIgnored
	}
	return KindUnknown
}

// IsValidationFailed reports whether err is a ValidationFailed
func IsValidationFailed(err error) bool {
	var vf *ValidationFailed
	return errors.As(err, &vf)
}

// IsRejected reports whether err is a SubmissionRejected
func IsRejected(err error) bool {
	var sr *SubmissionRejected
	return errors.As(err, &sr)
}

// IsRetryable reports whether submitting again may succeed.
func IsRetryable(err error) bool {
	var sr *SubmissionRejected
	if errors.As(err, &sr) {
		return sr.Retryable
	}
	return false
}

// ShortMessage returns a concise, user-facing description of err.
func ShortMessage(err error) string {
	if err == nil {
		return ""
	}

	var vf *ValidationFailed
	if errors.As(err, &vf) {
		n := len(vf.Fields)
		if n == 1 {
			return "Please fix the highlighted field"
		}
		return fmt.Sprintf("Please fix the %d highlighted fields", n)
	}

	switch Classify(err) {
	case KindTimeout:
		return "The service did not respond in time. Please try again."
	case KindRejected:
		var sr *SubmissionRejected
		errors.As(err, &sr)
		return sr.Reason
	case KindIgnored:
		return ""
	default:
		return err.Error()
	}
}
