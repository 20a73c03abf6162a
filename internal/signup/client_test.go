package signup

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func newTestSubmitter(url string) *HTTPSubmitter {
	c := NewHTTPSubmitter(url)
	c.SetRetry(2, time.Millisecond)
	return c
}

func TestNewHTTPSubmitter(t *testing.T) {
	c := NewHTTPSubmitter("http://localhost:8080/")

	if c.BaseURL != "http://localhost:8080" {
		t.Errorf("BaseURL = %s, want trailing slash trimmed", c.BaseURL)
	}
	if c.MaxRetries != DefaultMaxRetries {
		t.Errorf("MaxRetries = %d, want %d", c.MaxRetries, DefaultMaxRetries)
	}
	if c.HTTPClient == nil || c.HTTPClient.Timeout != DefaultTimeout {
		t.Error("HTTPClient should use DefaultTimeout")
	}
}

func TestSubmitSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != SignupsPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get(IdempotencyKeyHeader) == "" {
			t.Error("missing idempotency key")
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "midnightbrew/") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}

		var app Application
		if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Confirmation{ID: "abc", PlanID: app.PlanID, Email: app.Email, Message: "ok"})
	}))
	defer server.Close()

	conf, err := newTestSubmitter(server.URL).Submit(context.Background(), NewApplication("enthusiast", validValues()))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if conf.ID != "abc" || conf.PlanID != "enthusiast" || conf.Email != "hanako@example.jp" {
		t.Errorf("Submit() = %+v", conf)
	}
}

func TestSubmitRetriesServerErrors(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
		keys  = map[string]bool{}
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		n := calls
		keys[r.Header.Get(IdempotencyKeyHeader)] = true
		mu.Unlock()

		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"third-time","plan":"discovery"}`))
	}))
	defer server.Close()

	conf, err := newTestSubmitter(server.URL).Submit(context.Background(), NewApplication("discovery", validValues()))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if conf.ID != "third-time" {
		t.Errorf("ID = %s, want third-time", conf.ID)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(keys) != 1 {
		t.Errorf("idempotency keys = %d, want the same key on every attempt", len(keys))
	}
}

func TestSubmitGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestSubmitter(server.URL).Submit(context.Background(), NewApplication("discovery", validValues()))
	if !IsRetryable(err) {
		t.Fatalf("error = %v, want retryable HTTP error", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3 (1 + 2 retries)", calls.Load())
	}
}

func TestSubmitRejectedIsNotRetried(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantFields int
	}{
		{
			name:    "duplicate email",
			status:  http.StatusConflict,
			body:    `{"error":"This email address is already registered"}`,
			wantMsg: "This email address is already registered",
		},
		{
			name:       "field errors",
			status:     http.StatusUnprocessableEntity,
			body:       `{"error":"Some fields are invalid","fields":{"zipCode":"Postal code must look like 123-4567"}}`,
			wantMsg:    "Some fields are invalid",
			wantFields: 1,
		},
		{
			name:    "unreadable body",
			status:  http.StatusConflict,
			body:    `<html>`,
			wantMsg: "The application was not accepted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestSubmitter(server.URL).Submit(context.Background(), NewApplication("discovery", validValues()))
			se, ok := err.(*SubmitError)
			if !ok {
				t.Fatalf("error = %T %v, want *SubmitError", err, err)
			}
			if se.Type != ErrTypeRejected || se.Retryable {
				t.Errorf("Type = %v, Retryable = %v", se.Type, se.Retryable)
			}
			if se.UserMessage() != tt.wantMsg {
				t.Errorf("UserMessage() = %q, want %q", se.UserMessage(), tt.wantMsg)
			}
			if len(se.Fields) != tt.wantFields {
				t.Errorf("Fields = %v", se.Fields)
			}
			if calls.Load() != 1 {
				t.Errorf("calls = %d, want 1", calls.Load())
			}
		})
	}
}

func TestSubmitParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	}))
	defer server.Close()

	_, err := newTestSubmitter(server.URL).Submit(context.Background(), NewApplication("discovery", validValues()))
	se, ok := err.(*SubmitError)
	if !ok || se.Type != ErrTypeParse {
		t.Fatalf("error = %v, want parse error", err)
	}
}

func TestSubmitConnectionRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	_ = l.Close()

	c := newTestSubmitter("http://" + addr)
	c.SetRetry(0, 0)
	_, err = c.Submit(context.Background(), NewApplication("discovery", validValues()))
	if !IsNetworkError(err) {
		t.Fatalf("error = %v, want network error", err)
	}
	if ShortErrorMessage(err) != "Cannot connect to the signup service" {
		t.Errorf("ShortErrorMessage() = %q", ShortErrorMessage(err))
	}
}

func TestSubmitStopsOnContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewHTTPSubmitter(server.URL)
	c.SetRetry(5, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Submit(ctx, NewApplication("discovery", validValues()))
	if err == nil {
		t.Fatal("Submit() should fail")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Submit() did not stop waiting when the context ended")
	}
	if se, ok := err.(*SubmitError); !ok || se.Type != ErrTypeTimeout {
		t.Errorf("error = %v, want timeout", err)
	}
}
