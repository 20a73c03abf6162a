package server

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/muurk/midnightbrew/internal/contact"
	"github.com/muurk/midnightbrew/internal/logging"
	"github.com/muurk/midnightbrew/internal/signup"
	"go.uber.org/zap"
)

// Messages returned by the signup and contact endpoints
const (
	msgInvalidFields = "Please correct the highlighted fields"
	msgDuplicate     = "This email address is already registered"
)

// signupStore keeps accepted applications for the life of the process.
type signupStore struct {
	mu        sync.Mutex
	byEmail   map[string]*signup.Confirmation
	byIdemKey map[string]*signup.Confirmation
}

func newSignupStore() *signupStore {
	return &signupStore{
		byEmail:   make(map[string]*signup.Confirmation),
		byIdemKey: make(map[string]*signup.Confirmation),
	}
}

// replay returns the confirmation previously issued for key.
func (st *signupStore) replay(key string) (*signup.Confirmation, bool) {
	if key == "" {
		return nil, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	c, ok := st.byIdemKey[key]
	return c, ok
}

// add records an accepted application. It fails when the email is taken
// by a different submission.
func (st *signupStore) add(key string, c *signup.Confirmation) (*signup.Confirmation, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if key != "" {
		if prev, ok := st.byIdemKey[key]; ok {
			return prev, true
		}
	}
	email := strings.ToLower(c.Email)
	if _, taken := st.byEmail[email]; taken {
		return nil, false
	}
	st.byEmail[email] = c
	if key != "" {
		st.byIdemKey[key] = c
	}
	return c, true
}

func (st *signupStore) registered(email string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.byEmail[strings.ToLower(email)]
	return ok
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var app signup.Application
	if err := decodeJSON(w, r, &app); err != nil {
		recordSignupMetric(resultInvalid)
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	key := r.Header.Get(signup.IdempotencyKeyHeader)
	if c, ok := s.signups.replay(key); ok {
		logging.Info("Replaying signup for idempotency key", zap.String("id", c.ID))
		writeJSON(w, http.StatusCreated, c)
		return
	}

	fields := signup.Validate(app.Values())
	if _, ok := s.catalog.Plan(app.PlanID); !ok {
		if fields == nil {
			fields = make(map[string]string)
		}
		fields["plan"] = "Please choose one of the available plans"
	}
	if len(fields) > 0 {
		recordSignupMetric(resultInvalid)
		writeError(w, http.StatusUnprocessableEntity, msgInvalidFields, fields)
		return
	}

	if s.signups.registered(app.Email) {
		recordSignupMetric(resultDuplicate)
		writeError(w, http.StatusConflict, msgDuplicate, nil)
		return
	}

	if err := s.wait(r.Context(), s.config.SignupDelay); err != nil {
		recordSignupMetric(resultAborted)
		return
	}

	conf := &signup.Confirmation{
		ID:      uuid.NewString(),
		PlanID:  app.PlanID,
		Email:   app.Email,
		Message: signup.AcceptedMessage,
	}
	stored, ok := s.signups.add(key, conf)
	if !ok {
		// Another request registered the email during the delay
		recordSignupMetric(resultDuplicate)
		writeError(w, http.StatusConflict, msgDuplicate, nil)
		return
	}

	recordSignupMetric(resultAccepted)
	logging.Info("Signup accepted", append(app.LogFields(), zap.String("id", stored.ID))...)
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	var msg contact.Message
	if err := decodeJSON(w, r, &msg); err != nil {
		recordContactMetric(resultInvalid)
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	step := contact.Step()
	if fields := step.Validate(msg.Values()); len(fields) > 0 {
		recordContactMetric(resultInvalid)
		writeError(w, http.StatusUnprocessableEntity, msgInvalidFields, fields)
		return
	}

	ack := &contact.Ack{
		Ticket:  uuid.NewString(),
		Message: contact.ThanksMessage,
	}
	recordContactMetric(resultAccepted)
	logging.Info("Contact message received",
		zap.String("ticket", ack.Ticket),
		zap.String("subject", msg.Subject),
		zap.String("email", logging.MaskEmail(msg.Email)),
	)
	writeJSON(w, http.StatusAccepted, ack)
}

// wait blocks for d on the server clock or until ctx ends.
func (s *Server) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	done := make(chan struct{})
	t := s.clock.AfterFunc(d, func() { close(done) })
	defer t.Stop()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
