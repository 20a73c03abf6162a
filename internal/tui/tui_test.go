package tui

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/clock"
	"github.com/muurk/midnightbrew/internal/contact"
	"github.com/muurk/midnightbrew/internal/diagnostic"
	"github.com/muurk/midnightbrew/internal/server"
	"github.com/muurk/midnightbrew/internal/signup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyLeft  = tea.KeyMsg{Type: tea.KeyLeft}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd and returns the messages it produces, expanding batches.
// Commands that would tick (spinner, blink) are run too; they return
// quickly enough for tests.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// find returns the first message of type T produced by cmd.
func find[T any](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	for _, msg := range collect(cmd) {
		if v, ok := msg.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("no %T produced", zero)
	return zero
}

type stubSubmitter struct {
	calls int
	err   error
}

func (s *stubSubmitter) Submit(_ context.Context, app *signup.Application) (*signup.Confirmation, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &signup.Confirmation{ID: "conf-1", PlanID: app.PlanID, Email: app.Email, Message: signup.AcceptedMessage}, nil
}

type stubSender struct {
	got *contact.Message
}

func (s *stubSender) Send(_ context.Context, msg *contact.Message) (*contact.Ack, error) {
	s.got = msg
	return &contact.Ack{Ticket: "ticket-1", Message: contact.ThanksMessage}, nil
}

func newTestApp(opts Options) AppModel {
	if opts.Clock == nil {
		opts.Clock = clock.NewManual(time.Unix(0, 0))
	}
	m := NewAppModel(opts)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(AppModel)
}

// press sends a key to the app and follows any transition it requests.
func press(m AppModel, k tea.KeyMsg) (AppModel, tea.Cmd) {
	updated, cmd := m.Update(k)
	m = updated.(AppModel)
	if cmd == nil {
		return m, nil
	}
	msg := cmd()
	switch msg.(type) {
	case screenTransitionMsg, goBackMsg:
		updated, cmd = m.Update(msg)
		return updated.(AppModel), cmd
	}
	return m, func() tea.Msg { return msg }
}

func TestMenuNavigation(t *testing.T) {
	m := newTestApp(Options{})
	assert.Equal(t, ScreenMenu, m.CurrentScreen)

	m, _ = press(m, keyEnter)
	assert.Equal(t, ScreenPlans, m.CurrentScreen)
	assert.Contains(t, m.View(), "Subscription Plans")

	m, _ = press(m, keyEsc)
	assert.Equal(t, ScreenMenu, m.CurrentScreen)

	for i := 0; i < 4; i++ {
		m, _ = press(m, keyDown)
	}
	m, _ = press(m, keyEnter)
	assert.Equal(t, ScreenFAQ, m.CurrentScreen)
}

func TestMenuQuit(t *testing.T) {
	m := newTestApp(Options{})
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestPlansStartOnPopularPlanAndOpenSignup(t *testing.T) {
	var chosen string
	m := newTestApp(Options{OnPlanChosen: func(id string) { chosen = id }})
	m, _ = press(m, keyEnter)

	p, ok := m.Plans.Selected()
	require.True(t, ok)
	assert.True(t, p.Popular)

	m, _ = press(m, runes("k"))
	p, _ = m.Plans.Selected()
	assert.Equal(t, "discovery", p.ID)

	m, _ = press(m, keyEnter)
	assert.Equal(t, ScreenSignup, m.CurrentScreen)
	assert.Equal(t, "discovery", m.Signup.form.Plan.ID)
	assert.Equal(t, "discovery", chosen)

	// Backing out of the first step returns to the plans
	m, _ = press(m, keyEsc)
	assert.Equal(t, ScreenPlans, m.CurrentScreen)
}

func TestFAQToggle(t *testing.T) {
	c := catalog.Default()
	m := NewFAQModel(c.FAQ)
	m.SetSize(100, 40)

	assert.NotContains(t, m.Viewport.View(), c.FAQ[0].Answer)

	m, _ = m.Update(keyEnter)
	assert.True(t, m.Open[c.FAQ[0].ID])

	m, _ = m.Update(keyDown)
	m, _ = m.Update(keyEnter)
	assert.True(t, m.Open[c.FAQ[1].ID], "several entries can be open")
	assert.True(t, m.Open[c.FAQ[0].ID])

	m, _ = m.Update(keyEnter)
	assert.False(t, m.Open[c.FAQ[1].ID])

	m, _ = m.Update(runes("c"))
	assert.Empty(t, m.Open)
}

func TestDiagnosticFlow(t *testing.T) {
	var recommended string
	m := NewDiagnosticModel(catalog.Default())
	m.OnComplete = func(id string) { recommended = id }
	m.SetSize(100, 40)

	// fruity, morning, daily2plus
	m, _ = m.Update(keyEnter)
	m, _ = m.Update(keyEnter)
	m, _ = m.Update(keyEnter)

	rec, done := m.diag.Result()
	require.True(t, done)
	assert.Equal(t, "connoisseur", rec.Plan.ID)
	assert.Equal(t, "connoisseur", recommended)
	assert.Contains(t, m.View(), rec.Plan.Name)

	_, cmd := m.Update(keyEnter)
	msg := find[screenTransitionMsg](t, cmd)
	assert.Equal(t, ScreenSignup, msg.screen)
	assert.Equal(t, rec.Plan, msg.data)
}

func TestDiagnosticBackAndRestart(t *testing.T) {
	m := NewDiagnosticModel(catalog.Default())

	m, _ = m.Update(keyDown)
	m, _ = m.Update(keyEnter)
	assert.Equal(t, "chocolate", m.diag.Answers()[diagnostic.QuestionTaste])
	q, _ := m.diag.Question()
	assert.Equal(t, diagnostic.QuestionScene, q.ID)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	q, _ = m.diag.Question()
	assert.Equal(t, diagnostic.QuestionTaste, q.ID)

	m, _ = m.Update(runes("r"))
	assert.Empty(t, m.diag.Answers())
}

func fillSignupStep(m SignupModel, values ...string) SignupModel {
	for i, v := range values {
		m, _ = m.Update(runes(v))
		if i < len(values)-1 {
			m, _ = m.Update(keyTab)
		}
	}
	return m
}

func TestSignupWizard(t *testing.T) {
	plan, _ := catalog.Default().Plan("enthusiast")
	sub := &stubSubmitter{}
	m := NewSignupModel(signup.NewForm(plan, sub, time.Second))
	m.SetSize(100, 40)

	// Advancing with empty fields shows the errors and stays put
	m, _ = m.Update(keyTab)
	m, _ = m.Update(keyTab)
	m, _ = m.Update(keyEnter)
	snap := m.Snapshot()
	assert.Equal(t, signup.StepAccount, snap.StepID)
	assert.Contains(t, snap.Errors, signup.FieldEmail)
	assert.Contains(t, m.View(), "Please enter your email address")

	// Focus moved to the first field with an error
	field, _ := m.fields.focused()
	assert.Equal(t, signup.FieldEmail, field)

	m = fillSignupStep(m, "hanako@example.com", "midnight-roast", "midnight-roast")
	m, _ = m.Update(keyEnter)
	require.Equal(t, signup.StepShipping, m.Snapshot().StepID)

	m = fillSignupStep(m, "山田", "花子", "150-0001", "東京都", "渋谷区", "神宮前1-1-1", "", "090-1234-5678")
	m, _ = m.Update(keyEnter)
	require.Equal(t, signup.StepPayment, m.Snapshot().StepID)

	m = fillSignupStep(m, "4242 4242 4242 4242", "12/28", "123", "HANAKO YAMADA")
	m, _ = m.Update(keyEnter)
	require.Equal(t, signup.StepReview, m.Snapshot().StepID)
	view := m.View()
	assert.Contains(t, view, "hanako@example.com")
	assert.NotContains(t, view, "4242 4242 4242 4242", "card number is masked")

	m, cmd := m.Update(keyEnter)
	assert.Contains(t, m.View(), "Submitting")
	done := find[signupDoneMsg](t, cmd)
	require.NoError(t, done.err)

	m, _ = m.Update(done)
	snap = m.Snapshot()
	assert.True(t, snap.Completed)
	assert.Equal(t, 1, sub.calls)
	assert.Contains(t, m.View(), "conf-1")

	_, cmd = m.Update(keyEnter)
	find[goBackMsg](t, cmd)
}

func TestSignupRejectionShowsError(t *testing.T) {
	plan, _ := catalog.Default().Plan("discovery")
	sub := &stubSubmitter{err: signup.NewRejectedError(409, "This email address is already registered", nil)}
	m := NewSignupModel(signup.NewForm(plan, sub, time.Second))
	m.SetSize(100, 40)

	m = fillSignupStep(m, "hanako@example.com", "midnight-roast", "midnight-roast")
	m, _ = m.Update(keyEnter)
	m = fillSignupStep(m, "山田", "花子", "150-0001", "東京都", "渋谷区", "神宮前1-1-1", "", "090-1234-5678")
	m, _ = m.Update(keyEnter)
	m = fillSignupStep(m, "4242424242424242", "12/28", "123", "HANAKO YAMADA")
	m, _ = m.Update(keyEnter)

	_, cmd := m.Update(keyEnter)
	done := find[signupDoneMsg](t, cmd)
	m, _ = m.Update(done)

	snap := m.Snapshot()
	assert.False(t, snap.Completed)
	assert.Equal(t, signup.StepReview, snap.StepID)
	assert.Contains(t, m.View(), "already registered")
}

func TestContactForm(t *testing.T) {
	sender := &stubSender{}
	m := NewContactModel(contact.NewForm(sender, contact.Options{Clock: clock.NewManual(time.Unix(0, 0))}), catalog.Default().Contact)
	m.SetSize(100, 40)

	m, _ = m.Update(runes("山田 太郎"))
	m, _ = m.Update(keyEnter)
	m, _ = m.Update(runes("taro@example.com"))
	m, _ = m.Update(keyTab)
	m, _ = m.Update(keyRight)
	m, _ = m.Update(keyRight)
	assert.Equal(t, contact.Subjects[1].Value, m.Subject())
	m, _ = m.Update(keyLeft)
	assert.Equal(t, contact.Subjects[0].Value, m.Subject())
	m, _ = m.Update(keyTab)
	m, _ = m.Update(runes("豆の挽き方を変えたい"))

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	done := find[contactDoneMsg](t, cmd)
	require.NoError(t, done.err)
	m, _ = m.Update(done)

	assert.True(t, m.Snapshot().Completed)
	require.NotNil(t, sender.got)
	assert.Equal(t, "taro@example.com", sender.got.Email)
	assert.Equal(t, contact.Subjects[0].Value, sender.got.Subject)
	assert.Contains(t, m.View(), "ticket-1")

	// Any key starts a new message
	m, _ = m.Update(runes("x"))
	assert.False(t, m.Snapshot().Completed)
	assert.Equal(t, "", m.Subject())
}

func TestContactValidation(t *testing.T) {
	m := NewContactModel(contact.NewForm(&stubSender{}, contact.Options{}), catalog.ContactInfo{})
	m.SetSize(100, 40)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	done := find[contactDoneMsg](t, cmd)
	require.Error(t, done.err)
	m, _ = m.Update(done)

	assert.Contains(t, m.Snapshot().Errors, contact.FieldName)
	assert.Contains(t, m.View(), "Please enter your name")
	m.Close()
}

// pump applies every update already queued on the feed.
func pump(m TestimonialsModel) TestimonialsModel {
	for {
		select {
		case u := <-m.feed.Updates():
			m, _ = m.Update(feedMsg{feed: m.feed, update: u})
		default:
			return m
		}
	}
}

func TestTestimonialsLocalCarousel(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	items := catalog.Default().Testimonials
	m := NewTestimonialsModel(TestimonialsOptions{Items: items, Clock: clk, Interval: 3 * time.Second})
	m.SetSize(100, 40)

	ready := find[feedReadyMsg](t, m.Init())
	assert.False(t, ready.remote)
	m, _ = m.Update(ready)
	defer m.Close()
	m = pump(m)

	cur, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, items[0].ID, cur.ID)
	assert.True(t, m.frame.Autoplay)

	m, _ = m.Update(keyRight)
	m = pump(m)
	assert.Equal(t, 1, m.frame.Position)
	assert.True(t, m.frame.InFlight)

	// Input during a transition is dropped
	m, _ = m.Update(keyRight)
	m = pump(m)
	assert.Equal(t, 1, m.frame.Position)

	clk.Advance(500 * time.Millisecond)
	m = pump(m)
	assert.False(t, m.frame.InFlight)

	// Indicators advance by one slide unless jumping is enabled
	m, _ = m.Update(runes("5"))
	m = pump(m)
	assert.Equal(t, 2, m.frame.Logical)
	clk.Advance(500 * time.Millisecond)

	m, _ = m.Update(runes(" "))
	m = pump(m)
	assert.True(t, m.frame.Paused)
	assert.Contains(t, m.View(), "paused")

	m, _ = m.Update(runes("r"))
	m = pump(m)
	assert.Equal(t, 0, m.frame.Position)
}

func TestTestimonialsJumpToIndicator(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	m := NewTestimonialsModel(TestimonialsOptions{Items: catalog.Default().Testimonials, Clock: clk, Jump: true})
	m, _ = m.Update(find[feedReadyMsg](t, m.Init()))
	defer m.Close()

	m, _ = m.Update(runes("5"))
	m = pump(m)
	assert.Equal(t, 4, m.frame.Logical)
}

func TestTestimonialsFromServer(t *testing.T) {
	srv, err := server.New(&server.Config{})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	m := NewTestimonialsModel(TestimonialsOptions{ServerURL: ts.URL})
	ready := find[feedReadyMsg](t, m.Init())
	require.True(t, ready.remote)
	require.NoError(t, ready.err)
	m, cmd := m.Update(ready)
	defer m.Close()

	// Items first, then the initial frame
	m, cmd = m.Update(find[feedMsg](t, cmd))
	assert.Len(t, m.items, len(catalog.Default().Testimonials))
	m, _ = m.Update(find[feedMsg](t, cmd))
	assert.Contains(t, m.View(), "live from "+ts.URL)
}

func TestTestimonialsFallBackWhenServerDown(t *testing.T) {
	m := NewTestimonialsModel(TestimonialsOptions{
		ServerURL: "http://127.0.0.1:1",
		Items:     catalog.Default().Testimonials,
		Clock:     clock.NewManual(time.Unix(0, 0)),
	})
	ready := find[feedReadyMsg](t, m.Init())
	assert.False(t, ready.remote)
	assert.Error(t, ready.err)

	m, _ = m.Update(ready)
	defer m.Close()
	m = pump(m)
	_, ok := m.Current()
	assert.True(t, ok)
}

func TestStaleFeedUpdatesAreIgnored(t *testing.T) {
	clk := clock.NewManual(time.Unix(0, 0))
	m := NewTestimonialsModel(TestimonialsOptions{Items: catalog.Default().Testimonials, Clock: clk})
	m, _ = m.Update(find[feedReadyMsg](t, m.Init()))
	defer m.Close()
	m = pump(m)

	other := newLocalFeed(catalog.Default().Testimonials, clk, 0, false)
	defer other.Close()
	m, _ = m.Update(feedMsg{feed: other, update: feedUpdate{Frame: m.frame, Err: errors.New("stale")}})
	assert.NoError(t, m.Err)
}
