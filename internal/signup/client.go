package signup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/muurk/midnightbrew/internal/logging"
	"github.com/muurk/midnightbrew/internal/version"
	"go.uber.org/zap"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 500 * time.Millisecond

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 5 * time.Second

	// IdempotencyKeyHeader carries a per-submission key so the server can
	// recognise a retried application.
	IdempotencyKeyHeader = "Idempotency-Key"
)

// HTTPSubmitter posts applications to a Midnight Brew server.
type HTTPSubmitter struct {
	// BaseURL is the server base URL (e.g., "http://localhost:8080")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	UseExponentialBackoff bool
}

// NewHTTPSubmitter creates a submitter for the server at baseURL
func NewHTTPSubmitter(baseURL string) *HTTPSubmitter {
	return &HTTPSubmitter{
		BaseURL:               strings.TrimRight(baseURL, "/"),
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true,
	}
}

// SetRetry configures retry behavior
func (c *HTTPSubmitter) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// Submit posts the application, retrying retryable failures with
// exponential backoff. Every attempt carries the same idempotency key.
func (c *HTTPSubmitter) Submit(ctx context.Context, app *Application) (*Confirmation, error) {
	body, err := json.Marshal(app)
	if err != nil {
		return nil, fmt.Errorf("failed to encode application: %w", err)
	}
	key := uuid.NewString()

	var lastErr error
	currentDelay := c.RetryDelay

	// Retry loop with exponential backoff
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			logging.Debug("Retrying signup submission",
				zap.Int("attempt", attempt),
				zap.Duration("delay", currentDelay),
				zap.Error(lastErr),
			)
			if err := sleep(ctx, currentDelay); err != nil {
				return nil, ClassifyNetworkError(err)
			}

			// Exponential backoff
			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		conf, err := c.submitAttempt(ctx, key, body)
		if err == nil {
			logging.Info("Signup accepted", append(app.LogFields(), zap.String("id", conf.ID))...)
			return conf, nil
		}

		lastErr = err

		// Don't retry non-retryable errors
		if !IsRetryable(err) || ctx.Err() != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// submitAttempt performs a single POST
func (c *HTTPSubmitter) submitAttempt(ctx context.Context, key string, body []byte) (*Confirmation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+SignupsPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create signup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent(version.Storefront))
	req.Header.Set(IdempotencyKeyHeader, key)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, ClassifyNetworkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, ClassifyNetworkError(err)
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var conf Confirmation
		if err := json.Unmarshal(data, &conf); err != nil {
			return nil, NewParseError("failed to parse confirmation", err)
		}
		if conf.ID == "" {
			return nil, NewParseError("confirmation has no id", nil)
		}
		return &conf, nil

	case resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity:
		var er ErrorResponse
		if err := json.Unmarshal(data, &er); err != nil || er.Error == "" {
			return nil, NewRejectedError(resp.StatusCode, "The application was not accepted", nil)
		}
		return nil, NewRejectedError(resp.StatusCode, er.Error, er.Fields)

	default:
		return nil, NewHTTPError(resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
