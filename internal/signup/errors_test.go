package signup

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"
)

func TestErrorTypeString(t *testing.T) {
	tests := []struct {
		et   ErrorType
		want string
	}{
		{ErrTypeNetwork, "Network Error"},
		{ErrTypeRejected, "Rejected"},
		{ErrorType(99), "ErrorType(99)"},
	}
	for _, tt := range tests {
		if got := tt.et.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestClassifyNetworkError(t *testing.T) {
	refused := &url.Error{
		Op:  "Post",
		URL: "http://localhost:1",
		Err: &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED},
	}

	tests := []struct {
		name      string
		err       error
		wantType  ErrorType
		retryable bool
	}{
		{"deadline", context.DeadlineExceeded, ErrTypeTimeout, true},
		{"dns", &net.DNSError{Name: "brew.invalid"}, ErrTypeDNS, false},
		{"refused", refused, ErrTypeConnectionRefused, true},
		{"generic", errors.New("broken pipe"), ErrTypeNetwork, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := ClassifyNetworkError(tt.err)
			if se.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", se.Type, tt.wantType)
			}
			if se.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", se.Retryable, tt.retryable)
			}
		})
	}

	if ClassifyNetworkError(nil) != nil {
		t.Error("ClassifyNetworkError(nil) should be nil")
	}
}

func TestNewHTTPErrorRetryable(t *testing.T) {
	if !NewHTTPError(503, "x").Retryable {
		t.Error("5xx should be retryable")
	}
	if !NewHTTPError(429, "x").Retryable {
		t.Error("429 should be retryable")
	}
	if NewHTTPError(404, "x").Retryable {
		t.Error("404 should not be retryable")
	}
}

func TestTroubleshootingHint(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&SubmitError{Type: ErrTypeConnectionRefused}, "midnightbrew-server"},
		{&SubmitError{Type: ErrTypeTimeout}, "submit_timeout"},
		{&SubmitError{Type: ErrTypeHTTP, StatusCode: 502}, "HTTP 502"},
		{NewRejectedError(422, "bad", map[string]string{"cvv": "x"}), "highlighted fields"},
		{NewRejectedError(409, "already registered", nil), "already registered"},
		{errors.New("x"), "unexpected error"},
	}
	for _, tt := range tests {
		if got := TroubleshootingHint(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("TroubleshootingHint(%v) = %q, want containing %q", tt.err, got, tt.want)
		}
	}
}

func TestIsHelpersSeeWrappedErrors(t *testing.T) {
	err := errors.Join(errors.New("outer"), NewRejectedError(409, "dup", nil))
	if !IsRejected(err) {
		t.Error("IsRejected should see through wrapping")
	}
	if IsRetryable(err) {
		t.Error("rejections are not retryable")
	}
	if IsNetworkError(err) {
		t.Error("a rejection is not a network error")
	}
}
