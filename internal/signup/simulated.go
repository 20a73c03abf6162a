package signup

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/muurk/midnightbrew/internal/clock"
)

// DefaultSimulatedDelay is how long SimulatedSubmitter takes to accept.
const DefaultSimulatedDelay = 2 * time.Second

// AcceptedMessage is shown once a signup has gone through.
const AcceptedMessage = "Thank you for subscribing! A confirmation email is on its way."

// SimulatedSubmitter accepts every application after a fixed delay. It is
// used when no server is configured.
type SimulatedSubmitter struct {
	Clock clock.Clock   // Defaults to the real clock
	Delay time.Duration // Defaults to DefaultSimulatedDelay
}

// Submit waits for the delay and returns a confirmation, or the context
// error if ctx ends first.
func (s *SimulatedSubmitter) Submit(ctx context.Context, app *Application) (*Confirmation, error) {
	clk := s.Clock
	if clk == nil {
		clk = clock.Real()
	}
	delay := s.Delay
	if delay <= 0 {
		delay = DefaultSimulatedDelay
	}

	done := make(chan struct{})
	t := clk.AfterFunc(delay, func() { close(done) })
	defer t.Stop()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return &Confirmation{
		ID:      uuid.NewString(),
		PlanID:  app.PlanID,
		Email:   app.Email,
		Message: AcceptedMessage,
	}, nil
}
