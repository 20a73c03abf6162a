package wizard

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func testSteps() []Step {
	return []Step{
		{
			ID:     "account",
			Fields: []string{"email", "password", "confirmPassword"},
			Rules: []Rule{
				Required("email", "email required"),
				Matches("email", testEmail, "email invalid"),
				Required("password", "password required"),
				MinLength("password", 8, "password too short"),
				Required("confirmPassword", "confirm required"),
				EqualsField("confirmPassword", "password", "passwords differ"),
			},
		},
		{
			ID:     "shipping",
			Fields: []string{"city"},
			Rules:  []Rule{Required("city", "city required")},
		},
		{
			ID:     "review",
			Fields: nil,
		},
	}
}

func acceptAll() Submitter {
	return SubmitterFunc(func(ctx context.Context, v Values) (*Receipt, error) {
		return &Receipt{ID: "r-1", Message: "thanks"}, nil
	})
}

func newTestEngine(t *testing.T, s Submitter) *Engine {
	t.Helper()
	e, err := New(Config{Name: "test", Steps: testSteps(), Submitter: s})
	require.NoError(t, err)
	return e
}

func fillAccount(e *Engine) {
	e.UpdateField("account", "email", "a@b.co")
	e.UpdateField("account", "password", "12345678")
	e.UpdateField("account", "confirmPassword", "12345678")
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(Config{Name: "empty"})
	assert.Error(t, err)

	_, err = New(Config{Steps: []Step{{ID: "a"}, {ID: "a"}}})
	assert.Error(t, err)

	_, err = New(Config{Steps: []Step{{ID: ""}}})
	assert.Error(t, err)
}

func TestAdvanceScenarioA(t *testing.T) {
	e := newTestEngine(t, acceptAll())

	e.UpdateField("account", "email", "bad-email")
	err := e.Advance()

	var vf *ValidationFailed
	require.ErrorAs(t, err, &vf)
	assert.Equal(t, "account", vf.Step)
	assert.Equal(t, "email invalid", vf.Fields["email"])
	assert.Equal(t, 0, e.Snapshot().Index)

	fillAccount(e)
	require.NoError(t, e.Advance())

	snap := e.Snapshot()
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, "shipping", snap.StepID)
	assert.Empty(t, snap.Errors)
}

func TestAdvanceNeverMovesOnErrors(t *testing.T) {
	inputs := []Values{
		{},
		{"email": "a@b.co"},
		{"email": "a@b.co", "password": "short", "confirmPassword": "short"},
		{"email": "a@b.co", "password": "12345678", "confirmPassword": "87654321"},
		{"email": "no-at-sign.com", "password": "12345678", "confirmPassword": "12345678"},
	}

	for _, in := range inputs {
		e := newTestEngine(t, acceptAll())
		for f, v := range in {
			e.UpdateField("account", f, v)
		}
		errs := e.ValidateStep("account")
		require.NotEmpty(t, errs, "input %v should fail", in)

		err := e.Advance()
		assert.True(t, IsValidationFailed(err))
		assert.Equal(t, 0, e.Snapshot().Index)
		assert.Equal(t, errs, e.Snapshot().Errors)
	}
}

func TestFirstFailingRulePerField(t *testing.T) {
	e := newTestEngine(t, acceptAll())
	errs := e.ValidateStep("account")

	assert.Equal(t, "email required", errs["email"])
	assert.Equal(t, "password required", errs["password"])
	assert.Equal(t, "confirm required", errs["confirmPassword"])
}

func TestValidateStepDoesNotMutate(t *testing.T) {
	e := newTestEngine(t, acceptAll())
	_ = e.ValidateStep("account")

	snap := e.Snapshot()
	assert.Equal(t, 0, snap.Index)
	assert.Empty(t, snap.Errors)
	assert.Empty(t, e.ValidateStep("unknown"))
}

func TestUpdateFieldClearsError(t *testing.T) {
	e := newTestEngine(t, acceptAll())
	_ = e.Advance()
	require.Contains(t, e.Snapshot().Errors, "email")

	e.UpdateField("account", "email", "x")
	snap := e.Snapshot()
	assert.NotContains(t, snap.Errors, "email")
	assert.Contains(t, snap.Errors, "password")
	assert.Equal(t, "x", snap.Values["email"])
}

func TestUpdateFieldIgnoresUnknown(t *testing.T) {
	e := newTestEngine(t, acceptAll())
	e.UpdateField("account", "city", "Tokyo")
	e.UpdateField("nope", "email", "a@b.co")

	assert.Empty(t, e.Snapshot().Values)
}

func TestRetreatFloorsAtZero(t *testing.T) {
	e := newTestEngine(t, acceptAll())
	e.Retreat()
	e.Retreat()
	assert.Equal(t, 0, e.Snapshot().Index)

	fillAccount(e)
	require.NoError(t, e.Advance())
	e.Retreat()
	assert.Equal(t, 0, e.Snapshot().Index)
	e.Retreat()
	assert.Equal(t, 0, e.Snapshot().Index)
}

func TestRetreatDoesNotValidate(t *testing.T) {
	e := newTestEngine(t, acceptAll())
	fillAccount(e)
	require.NoError(t, e.Advance())

	e.UpdateField("account", "email", "")
	e.Retreat()
	snap := e.Snapshot()
	assert.Equal(t, 0, snap.Index)
	assert.Empty(t, snap.Errors)
}

func TestSubmitOnlyFromLastStep(t *testing.T) {
	e := newTestEngine(t, acceptAll())
	fillAccount(e)

	_, err := e.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotFinalStep)

	require.NoError(t, e.Advance())
	_, err = e.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotFinalStep)
	assert.Equal(t, 1, e.Snapshot().Index)
}

func TestAdvanceOnLastStepRequiresSubmit(t *testing.T) {
	e := newTestEngine(t, acceptAll())
	fillAccount(e)
	require.NoError(t, e.Advance())
	e.UpdateField("shipping", "city", "Tokyo")
	require.NoError(t, e.Advance())

	assert.ErrorIs(t, e.Advance(), ErrUseSubmit)
	assert.Equal(t, 2, e.Snapshot().Index)
}

func advanceToReview(t *testing.T, e *Engine) {
	t.Helper()
	fillAccount(e)
	require.NoError(t, e.Advance())
	e.UpdateField("shipping", "city", "Tokyo")
	require.NoError(t, e.Advance())
}

func TestSubmitCompletes(t *testing.T) {
	var got Values
	e := newTestEngine(t, SubmitterFunc(func(ctx context.Context, v Values) (*Receipt, error) {
		got = v
		return &Receipt{ID: "r-1", Message: "thanks"}, nil
	}))
	advanceToReview(t, e)

	receipt, err := e.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r-1", receipt.ID)
	assert.Equal(t, "Tokyo", got["city"])

	snap := e.Snapshot()
	assert.True(t, snap.Completed)
	assert.Equal(t, snap.StepCount, snap.Index)
	assert.Equal(t, "", snap.StepID)
	assert.Equal(t, "thanks", snap.Message)

	// Completed is terminal until Reset.
	assert.ErrorIs(t, e.Advance(), ErrNavigationIgnored)
	e.Retreat()
	assert.Equal(t, snap.StepCount, e.Snapshot().Index)
	_, err = e.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNavigationIgnored)

	e.Reset()
	snap = e.Snapshot()
	assert.False(t, snap.Completed)
	assert.Equal(t, 0, snap.Index)
	assert.Empty(t, snap.Values)
}

func TestSubmitRevalidatesEarlierSteps(t *testing.T) {
	calls := 0
	e := newTestEngine(t, SubmitterFunc(func(ctx context.Context, v Values) (*Receipt, error) {
		calls++
		return &Receipt{}, nil
	}))
	advanceToReview(t, e)
	e.UpdateField("shipping", "city", "")

	_, err := e.Submit(context.Background())
	var vf *ValidationFailed
	require.ErrorAs(t, err, &vf)
	assert.Equal(t, "shipping", vf.Step)
	assert.Equal(t, 1, vf.StepIndex)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 2, e.Snapshot().Index)
}

type declined struct{}

func (declined) Error() string       { return "card declined by issuer" }
func (declined) UserMessage() string { return "Your card was declined" }
func (declined) IsRetryable() bool   { return false }

func TestSubmitRejected(t *testing.T) {
	attempts := 0
	e := newTestEngine(t, SubmitterFunc(func(ctx context.Context, v Values) (*Receipt, error) {
		attempts++
		if attempts == 1 {
			return nil, declined{}
		}
		return &Receipt{ID: "ok"}, nil
	}))
	advanceToReview(t, e)

	_, err := e.Submit(context.Background())
	var sr *SubmissionRejected
	require.ErrorAs(t, err, &sr)
	assert.Equal(t, "Your card was declined", sr.Reason)
	assert.False(t, IsRetryable(err))
	assert.Equal(t, KindRejected, Classify(err))

	snap := e.Snapshot()
	assert.False(t, snap.Completed)
	assert.False(t, snap.Submitting)
	assert.Equal(t, 2, snap.Index)
	assert.Equal(t, "Your card was declined", snap.Message)

	// Re-submit is allowed after a rejection.
	receipt, err := e.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", receipt.ID)
	assert.Equal(t, 2, attempts)
}

func TestSubmitInFlightRejectsSecondCall(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	calls := 0
	e := newTestEngine(t, SubmitterFunc(func(ctx context.Context, v Values) (*Receipt, error) {
		calls++
		close(entered)
		<-release
		return &Receipt{ID: "once"}, nil
	}))
	advanceToReview(t, e)

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = e.Submit(context.Background())
	}()

	<-entered
	assert.True(t, e.Snapshot().Submitting)
	_, err := e.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	assert.ErrorIs(t, e.Advance(), ErrNavigationIgnored)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, 1, calls)
	assert.True(t, e.Snapshot().Completed)
}

func TestUpdateFieldIgnoredWhileSubmitting(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var submitted Values
	e := newTestEngine(t, SubmitterFunc(func(ctx context.Context, v Values) (*Receipt, error) {
		submitted = v.Clone()
		close(entered)
		<-release
		return &Receipt{ID: "frozen"}, nil
	}))
	advanceToReview(t, e)

	var wg sync.WaitGroup
	wg.Add(1)
	var submitErr error
	go func() {
		defer wg.Done()
		_, submitErr = e.Submit(context.Background())
	}()

	<-entered
	e.UpdateField("account", "email", "bad")
	e.UpdateField("shipping", "city", "")
	assert.Equal(t, "a@b.co", e.Value("email"))
	assert.Equal(t, "Tokyo", e.Value("city"))

	close(release)
	wg.Wait()
	require.NoError(t, submitErr)
	assert.Equal(t, "a@b.co", submitted["email"])
	assert.Equal(t, "Tokyo", submitted["city"])

	snap := e.Snapshot()
	assert.True(t, snap.Completed)
	assert.Equal(t, "a@b.co", snap.Values["email"])
	assert.Equal(t, "Tokyo", snap.Values["city"])
}

func TestResetDuringSubmitDiscardsResult(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	e := newTestEngine(t, SubmitterFunc(func(ctx context.Context, v Values) (*Receipt, error) {
		close(entered)
		<-release
		return &Receipt{ID: "late"}, nil
	}))
	advanceToReview(t, e)
	gen := e.Generation()

	done := make(chan error, 1)
	go func() {
		_, err := e.Submit(context.Background())
		done <- err
	}()

	<-entered
	e.Reset()
	assert.Equal(t, gen+1, e.Generation())
	close(release)

	assert.ErrorIs(t, <-done, ErrStale)
	snap := e.Snapshot()
	assert.False(t, snap.Completed)
	assert.Equal(t, 0, snap.Index)
	assert.Nil(t, snap.Receipt)
}

func TestSubmitTimeout(t *testing.T) {
	e, err := New(Config{
		Name:    "slow",
		Steps:   []Step{{ID: "only"}},
		Timeout: 10 * time.Millisecond,
		Submitter: SubmitterFunc(func(ctx context.Context, v Values) (*Receipt, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}),
	})
	require.NoError(t, err)

	_, err = e.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitTimeout)
	assert.True(t, IsRejected(err))
	assert.True(t, IsRetryable(err))
	assert.Equal(t, KindTimeout, Classify(err))
	assert.False(t, e.Snapshot().Submitting)
}

func TestSubmitWithoutSubmitter(t *testing.T) {
	e, err := New(Config{Steps: []Step{{ID: "only"}}})
	require.NoError(t, err)

	_, err = e.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNoSubmitter)
}

func TestPlainCollaboratorErrorIsRetryable(t *testing.T) {
	e, err := New(Config{
		Steps: []Step{{ID: "only"}},
		Submitter: SubmitterFunc(func(ctx context.Context, v Values) (*Receipt, error) {
			return nil, errors.New("connection reset")
		}),
	})
	require.NoError(t, err)

	_, err = e.Submit(context.Background())
	assert.True(t, IsRetryable(err))
	assert.Equal(t, "connection reset", ShortMessage(err))
}

func TestSnapshotIsACopy(t *testing.T) {
	e := newTestEngine(t, acceptAll())
	e.UpdateField("account", "email", "a@b.co")

	snap := e.Snapshot()
	snap.Values["email"] = "changed"
	assert.Equal(t, "a@b.co", e.Value("email"))
}
