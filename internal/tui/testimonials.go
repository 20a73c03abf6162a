package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/midnightbrew/internal/carousel"
	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/clock"
	"github.com/muurk/midnightbrew/internal/logging"
	"github.com/muurk/midnightbrew/internal/ui"
	"go.uber.org/zap"
)

// dialTimeout bounds the connection to the storefront server
const dialTimeout = 5 * time.Second

// feedReadyMsg carries the result of connecting the testimonial feed
type feedReadyMsg struct {
	feed   testimonialFeed
	remote bool
	err    error
}

// testimonialsKeyMap defines key bindings for the testimonials screen
type testimonialsKeyMap struct {
	Prev  key.Binding
	Next  key.Binding
	GoTo  key.Binding
	Swipe key.Binding
	Pause key.Binding
	Reset key.Binding
	Back  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k testimonialsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.GoTo, k.Swipe, k.Pause, k.Reset, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k testimonialsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Prev, k.Next, k.GoTo},
		{k.Swipe, k.Pause, k.Reset, k.Back},
	}
}

// TestimonialsOptions configures the testimonials screen
type TestimonialsOptions struct {
	Items     []catalog.Testimonial
	ServerURL string // Stream from this server instead of running locally
	Clock     clock.Clock
	Interval  time.Duration
	Jump      bool
}

// TestimonialsModel shows customer reviews in an endless carousel
type TestimonialsModel struct {
	opts TestimonialsOptions

	feed   testimonialFeed
	remote bool
	items  []catalog.Testimonial
	frame  carousel.Frame
	paused bool
	Err    error

	Width  int
	Height int
	Help   help.Model
	Keys   testimonialsKeyMap
}

// NewTestimonialsModel creates the testimonials screen. The feed is
// connected by Init.
func NewTestimonialsModel(opts TestimonialsOptions) TestimonialsModel {
	return TestimonialsModel{
		opts:  opts,
		items: opts.Items,
		Help:  help.New(),
		Keys: testimonialsKeyMap{
			Prev: key.NewBinding(
				key.WithKeys("left"),
				key.WithHelp("←", "previous"),
			),
			Next: key.NewBinding(
				key.WithKeys("right"),
				key.WithHelp("→", "next"),
			),
			GoTo: key.NewBinding(
				key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
				key.WithHelp("1-9", "indicator"),
			),
			Swipe: key.NewBinding(
				key.WithKeys("h", "l", "<", ">"),
				key.WithHelp("h/l", "swipe"),
			),
			Pause: key.NewBinding(
				key.WithKeys(" ", "p"),
				key.WithHelp("space", "pause"),
			),
			Reset: key.NewBinding(
				key.WithKeys("r"),
				key.WithHelp("r", "reset"),
			),
			Back: backKey,
		},
	}
}

// SetSize records the terminal size
func (m *TestimonialsModel) SetSize(width, height int) {
	m.Width, m.Height = width, height
}

// Init connects the feed: to the server when one is configured, falling
// back to an in-process carousel
func (m TestimonialsModel) Init() tea.Cmd {
	opts := m.opts
	return func() tea.Msg {
		if opts.ServerURL != "" {
			ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
			defer cancel()
			feed, err := dialRemoteFeed(ctx, opts.ServerURL, opts.Jump)
			if err == nil {
				return feedReadyMsg{feed: feed, remote: true}
			}
			logging.Warn("Testimonial stream unavailable, running locally",
				zap.String("server", opts.ServerURL),
				zap.Error(err),
			)
			return feedReadyMsg{feed: newLocalFeed(opts.Items, opts.Clock, opts.Interval, opts.Jump), err: err}
		}
		return feedReadyMsg{feed: newLocalFeed(opts.Items, opts.Clock, opts.Interval, opts.Jump)}
	}
}

// Close stops the feed
func (m TestimonialsModel) Close() {
	if m.feed != nil {
		m.feed.Close()
	}
}

// Update handles messages and updates the model
func (m TestimonialsModel) Update(msg tea.Msg) (TestimonialsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case feedReadyMsg:
		if m.feed != nil {
			msg.feed.Close()
			return m, nil
		}
		m.feed = msg.feed
		m.remote = msg.remote
		m.Err = msg.err
		return m, waitForUpdate(m.feed)

	case feedMsg:
		if msg.feed != m.feed {
			return m, nil
		}
		m.apply(msg.update)
		return m, waitForUpdate(m.feed)

	case feedClosedMsg:
		if msg.feed == m.feed && m.remote {
			m.Err = fmt.Errorf("connection to %s closed", m.opts.ServerURL)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// apply folds a feed update into the model
func (m *TestimonialsModel) apply(u feedUpdate) {
	if u.Err != nil {
		m.Err = u.Err
		return
	}
	if u.Items != nil {
		m.items = u.Items
		if u.Frame.Count == 0 {
			return
		}
	}
	m.frame = u.Frame
	m.paused = u.Frame.Paused
}

func (m TestimonialsModel) handleKey(msg tea.KeyMsg) (TestimonialsModel, tea.Cmd) {
	if key.Matches(msg, m.Keys.Back) {
		return m, goBack
	}
	if m.feed == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.Keys.Prev):
		m.feed.Prev()
	case key.Matches(msg, m.Keys.Next):
		m.feed.Next()
	case key.Matches(msg, m.Keys.GoTo):
		m.feed.GoTo(int(msg.Runes[0]-'1'))
	case key.Matches(msg, m.Keys.Swipe):
		if s := msg.String(); s == "h" || s == "<" {
			m.feed.Swipe(swipeDistance)
		} else {
			m.feed.Swipe(-swipeDistance)
		}
	case key.Matches(msg, m.Keys.Pause):
		m.paused = !m.paused
		m.feed.SetPaused(m.paused)
	case key.Matches(msg, m.Keys.Reset):
		m.feed.Reset()
	}
	return m, nil
}

// Current returns the testimonial on screen
func (m TestimonialsModel) Current() (catalog.Testimonial, bool) {
	if len(m.items) == 0 || m.frame.Logical >= len(m.items) {
		return catalog.Testimonial{}, false
	}
	return m.items[m.frame.Logical], true
}

// View renders the screen
func (m TestimonialsModel) View() string {
	width := ContentWidth(m.Width)
	var b strings.Builder

	b.WriteString(RenderTitle("Testimonials"))
	b.WriteString("\n")

	source := "local carousel"
	if m.remote {
		source = "live from " + m.opts.ServerURL
	}
	b.WriteString(RenderSubtitle(source))
	b.WriteString("\n\n")

	if m.Err != nil {
		b.WriteString(RenderError(m.Err.Error()))
		b.WriteString("\n\n")
	}

	t, ok := m.Current()
	if !ok {
		b.WriteString(RenderSubtitle("No testimonials yet."))
		return RenderApplicationContainer(b.String(), m.Help.View(m.Keys), m.Width, m.Height)
	}

	b.WriteString(ui.RenderTestimonial(t, width))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, ui.RenderIndicators(len(m.items), m.frame.Logical)))
	b.WriteString("\n\n")
	b.WriteString(RenderSubtitle(m.status()))

	return RenderApplicationContainer(b.String(), m.Help.View(m.Keys), m.Width, m.Height)
}

// status describes the carousel state in one line
func (m TestimonialsModel) status() string {
	parts := []string{fmt.Sprintf("slide %d/%d", m.frame.Position+1, m.frame.Count*m.frame.Blocks)}
	switch {
	case !m.frame.Autoplay:
		parts = append(parts, "autoplay off")
	case m.frame.Paused:
		parts = append(parts, "paused")
	default:
		parts = append(parts, "autoplay")
	}
	if m.frame.InFlight {
		parts = append(parts, "sliding")
	}
	if !m.frame.TransitionEnabled {
		parts = append(parts, "snap")
	}
	return strings.Join(parts, " · ")
}
