package signup

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of a submission failure
type ErrorType int

const (
	// ErrTypeNetwork indicates the server could not be reached
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the request timed out
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing is listening at the server URL
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates the server hostname could not be resolved
	ErrTypeDNS
	// ErrTypeHTTP indicates an unexpected HTTP status
	ErrTypeHTTP
	// ErrTypeRejected indicates the server refused the application (409, 422)
	ErrTypeRejected
	// ErrTypeParse indicates a malformed server response
	ErrTypeParse
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeRejected:
		return "Rejected"
	case ErrTypeParse:
		return "Parse Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// SubmitError is returned by HTTPSubmitter. It satisfies the optional
// UserMessage and IsRetryable interfaces the wizard engine looks for, so
// the reason shown to the user comes from here.
type SubmitError struct {
	Type       ErrorType         // Category of error
	Message    string            // Human-readable error message
	StatusCode int               // HTTP status code (if applicable)
	Fields     map[string]string // Field errors reported by the server
	Err        error             // Underlying error (if any)
	Retryable  bool              // Whether another attempt may succeed
}

// Error implements the error interface
func (e *SubmitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *SubmitError) Unwrap() error {
	return e.Err
}

// UserMessage returns the message shown on the review step.
func (e *SubmitError) UserMessage() string {
	return ShortErrorMessage(e)
}

// IsRetryable reports whether the user can simply try again.
func (e *SubmitError) IsRetryable() bool {
	return e.Retryable
}

// ClassifyNetworkError analyzes a transport error and returns a more
// specific error type
func ClassifyNetworkError(err error) *SubmitError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return &SubmitError{Type: ErrTypeTimeout, Message: "Request timed out", Err: err, Retryable: true}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &SubmitError{
			Type:    ErrTypeDNS,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:     err,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return &SubmitError{Type: ErrTypeConnectionRefused, Message: "Server refused connection", Err: err, Retryable: true}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ClassifyNetworkError(urlErr.Err)
	}

	return &SubmitError{Type: ErrTypeNetwork, Message: "Network error occurred", Err: err, Retryable: true}
}

// NewHTTPError creates an error for an unexpected status code. Server
// errors are retryable.
func NewHTTPError(statusCode int, message string) *SubmitError {
	return &SubmitError{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  statusCode >= 500 || statusCode == http.StatusTooManyRequests,
	}
}

// NewRejectedError creates an error for an application the server refused.
func NewRejectedError(statusCode int, message string, fields map[string]string) *SubmitError {
	return &SubmitError{
		Type:       ErrTypeRejected,
		Message:    message,
		StatusCode: statusCode,
		Fields:     fields,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *SubmitError {
	return &SubmitError{Type: ErrTypeParse, Message: message, Err: err}
}

// IsRejected checks if the server refused the application
func IsRejected(err error) bool {
	var se *SubmitError
	return errors.As(err, &se) && se.Type == ErrTypeRejected
}

// IsNetworkError checks if an error is a transport-level error
func IsNetworkError(err error) bool {
	var se *SubmitError
	if !errors.As(err, &se) {
		return false
	}
	switch se.Type {
	case ErrTypeNetwork, ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS:
		return true
	}
	return false
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var se *SubmitError
	if errors.As(err, &se) {
		return se.Retryable
	}
	// Unknown errors are not retryable by default
	return false
}

// TroubleshootingHint returns user-friendly advice for a submission error
func TroubleshootingHint(err error) string {
	var se *SubmitError
	if !errors.As(err, &se) {
		return "An unexpected error occurred. Please try again."
	}

	switch se.Type {
	case ErrTypeTimeout:
		return strings.Join([]string{
			"The signup service did not respond in time.",
			"Troubleshooting:",
			"  • Check your network connection",
			"  • Try again in a moment",
			"  • Increase submit_timeout in the config file",
		}, "\n")

	case ErrTypeConnectionRefused:
		return strings.Join([]string{
			"Nothing is listening at the server address.",
			"Troubleshooting:",
			"  • Start the server with: midnightbrew-server",
			"  • Check the --server flag or server_url in the config file",
			"  • Run 'midnightbrew servers' to find servers on your network",
		}, "\n")

	case ErrTypeDNS:
		return strings.Join([]string{
			"Could not resolve the server hostname.",
			"Troubleshooting:",
			"  • Use the IP address instead of hostname",
			"  • Check your network DNS settings",
		}, "\n")

	case ErrTypeNetwork:
		return strings.Join([]string{
			"Network communication failed.",
			"Troubleshooting:",
			"  • Check your network connection",
			"  • Verify the server is running",
		}, "\n")

	case ErrTypeHTTP:
		if se.StatusCode >= 500 {
			return fmt.Sprintf("The server returned an error (HTTP %d). Please try again later.", se.StatusCode)
		}
		return fmt.Sprintf("The server returned HTTP error %d. Check the server version.", se.StatusCode)

	case ErrTypeRejected:
		if len(se.Fields) > 0 {
			return "Go back and correct the highlighted fields, then submit again."
		}
		return se.Message

	case ErrTypeParse:
		return "The server response could not be read. The client and server versions may not match."

	default:
		return "An error occurred. Please check the error message for details."
	}
}

// ShortErrorMessage returns a concise, user-friendly error message
func ShortErrorMessage(err error) string {
	var se *SubmitError
	if !errors.As(err, &se) {
		return err.Error()
	}

	switch se.Type {
	case ErrTypeTimeout:
		return "Signup service not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Cannot connect to the signup service"
	case ErrTypeDNS:
		return "Cannot resolve server hostname"
	case ErrTypeNetwork:
		return "Network error - check connection"
	case ErrTypeHTTP:
		return fmt.Sprintf("Server error (HTTP %d)", se.StatusCode)
	case ErrTypeRejected:
		return se.Message
	case ErrTypeParse:
		return "Failed to parse server response"
	default:
		return se.Message
	}
}
