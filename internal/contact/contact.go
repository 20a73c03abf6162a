// Package contact implements the contact form: a single-step wizard whose
// submission is acknowledged after a short delay, after which the form
// clears itself.
package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/muurk/midnightbrew/internal/clock"
	"github.com/muurk/midnightbrew/internal/signup"
	"github.com/muurk/midnightbrew/internal/version"
	"github.com/muurk/midnightbrew/internal/wizard"
)

// Path is the API endpoint accepting contact messages.
const Path = "/api/v1/contact"

// Field names.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
)

const (
	// DefaultSendDelay is how long SimulatedSender takes to acknowledge.
	DefaultSendDelay = 1500 * time.Millisecond
	// DefaultClearAfter is how long the thank-you state is shown before
	// the form clears.
	DefaultClearAfter = 3 * time.Second
	// ThanksMessage is shown after a message is sent.
	ThanksMessage = "お問い合わせありがとうございます。24時間以内にご返信いたします。"
)

// Subject is a selectable message topic.
type Subject struct {
	Value string
	Label string
}

// Subjects are the topics offered by the form.
var Subjects = []Subject{
	{"plan", "プランについて"},
	{"delivery", "配送について"},
	{"payment", "お支払いについて"},
	{"product", "商品について"},
	{"gift", "ギフトについて"},
	{"technical", "技術的な問題"},
	{"other", "その他"},
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Step returns the single form step.
func Step() wizard.Step {
	values := make([]string, len(Subjects))
	for i, s := range Subjects {
		values[i] = s.Value
	}
	return wizard.Step{
		ID:     "contact",
		Title:  "Contact",
		Fields: []string{FieldName, FieldEmail, FieldSubject, FieldMessage},
		Rules: []wizard.Rule{
			wizard.Required(FieldName, "Please enter your name"),
			wizard.Required(FieldEmail, "Please enter your email address"),
			wizard.Matches(FieldEmail, emailPattern, "Please enter a valid email address"),
			wizard.Required(FieldSubject, "Please choose a subject"),
			wizard.OneOf(FieldSubject, values, "Please choose one of the listed subjects"),
			wizard.Required(FieldMessage, "Please enter a message"),
		},
	}
}

// Message is a contact message as sent to the server.
type Message struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Body    string `json:"message"`
}

// NewMessage builds a message from form values.
func NewMessage(values wizard.Values) *Message {
	return &Message{
		Name:    strings.TrimSpace(values[FieldName]),
		Email:   strings.TrimSpace(values[FieldEmail]),
		Subject: values[FieldSubject],
		Body:    strings.TrimSpace(values[FieldMessage]),
	}
}

// Values flattens the message back into form values.
func (m *Message) Values() wizard.Values {
	return wizard.Values{
		FieldName:    m.Name,
		FieldEmail:   m.Email,
		FieldSubject: m.Subject,
		FieldMessage: m.Body,
	}
}

// Ack acknowledges a received message.
type Ack struct {
	Ticket  string `json:"ticket"`
	Message string `json:"message"`
}

// Sender delivers a contact message.
type Sender interface {
	Send(ctx context.Context, msg *Message) (*Ack, error)
}

// SimulatedSender acknowledges every message after a fixed delay.
type SimulatedSender struct {
	Clock clock.Clock
	Delay time.Duration
}

// Send waits for the delay and acknowledges, or returns the context error.
func (s *SimulatedSender) Send(ctx context.Context, _ *Message) (*Ack, error) {
	clk := s.Clock
	if clk == nil {
		clk = clock.Real()
	}
	delay := s.Delay
	if delay <= 0 {
		delay = DefaultSendDelay
	}

	done := make(chan struct{})
	t := clk.AfterFunc(delay, func() { close(done) })
	defer t.Stop()

	select {
	case <-done:
		return &Ack{Ticket: uuid.NewString(), Message: ThanksMessage}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// HTTPSender posts messages to a Midnight Brew server. Messages are sent
// once; failures use the signup error taxonomy.
type HTTPSender struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewHTTPSender creates a sender for the server at baseURL.
func NewHTTPSender(baseURL string) *HTTPSender {
	return &HTTPSender{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: signup.DefaultTimeout},
	}
}

// Send posts the message.
func (s *HTTPSender) Send(ctx context.Context, msg *Message) (*Ack, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+Path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create contact request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent(version.Storefront))

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, signup.ClassifyNetworkError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		var ack Ack
		if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
			return nil, signup.NewParseError("failed to parse acknowledgement", err)
		}
		return &ack, nil
	case http.StatusUnprocessableEntity:
		var er signup.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&er)
		if er.Error == "" {
			er.Error = "The message was not accepted"
		}
		return nil, signup.NewRejectedError(resp.StatusCode, er.Error, er.Fields)
	default:
		return nil, signup.NewHTTPError(resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	}
}

// Options configures a Form.
type Options struct {
	Clock      clock.Clock   // Schedules the clear (default clock.Real())
	ClearAfter time.Duration // Default DefaultClearAfter
	Timeout    time.Duration // Submit timeout
}

// Form is the contact form. After a successful Submit it resets itself
// once ClearAfter has passed, unless the user reset or edited it first.
type Form struct {
	*wizard.Engine

	clock      clock.Clock
	clearAfter time.Duration

	mu    sync.Mutex
	timer clock.Timer
}

// NewForm creates a contact form delivering through s.
func NewForm(s Sender, opts Options) *Form {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.ClearAfter <= 0 {
		opts.ClearAfter = DefaultClearAfter
	}

	f := &Form{clock: opts.Clock, clearAfter: opts.ClearAfter}
	f.Engine = wizard.MustNew(wizard.Config{
		Name:    "contact",
		Steps:   []wizard.Step{Step()},
		Timeout: opts.Timeout,
		Submitter: wizard.SubmitterFunc(func(ctx context.Context, values wizard.Values) (*wizard.Receipt, error) {
			ack, err := s.Send(ctx, NewMessage(values))
			if err != nil {
				return nil, err
			}
			return &wizard.Receipt{ID: ack.Ticket, Message: ack.Message}, nil
		}),
	})
	return f
}

// Submit sends the message and, on success, schedules the form to clear.
func (f *Form) Submit(ctx context.Context) (*wizard.Receipt, error) {
	receipt, err := f.Engine.Submit(ctx)
	if err != nil {
		return nil, err
	}

	gen := f.Engine.Generation()
	f.mu.Lock()
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = f.clock.AfterFunc(f.clearAfter, func() {
		if f.Engine.Generation() == gen && f.Engine.Snapshot().Completed {
			f.Engine.Reset()
		}
	})
	f.mu.Unlock()
	return receipt, nil
}

// Close cancels a pending clear.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}
