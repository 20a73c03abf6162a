package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/diagnostic"
	"github.com/muurk/midnightbrew/internal/ui"
	"github.com/muurk/midnightbrew/internal/wizard"
)

// diagnosticKeyMap defines key bindings for the diagnostic screen
type diagnosticKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Answer  key.Binding
	Prev    key.Binding
	Restart key.Binding
	Back    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k diagnosticKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Answer, k.Prev, k.Restart, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k diagnosticKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Answer}, {k.Prev, k.Restart, k.Back}}
}

// DiagnosticModel walks through the taste diagnostic
type DiagnosticModel struct {
	diag   *diagnostic.Diagnostic
	Cursor int
	Err    error

	// OnComplete, if set, receives the recommended plan ID
	OnComplete func(planID string)

	Width  int
	Height int
	Help   help.Model
	Keys   diagnosticKeyMap
}

// NewDiagnosticModel creates the diagnostic screen on the first question
func NewDiagnosticModel(c *catalog.Catalog) DiagnosticModel {
	return DiagnosticModel{
		diag: diagnostic.New(c),
		Help: help.New(),
		Keys: diagnosticKeyMap{
			Up: key.NewBinding(
				key.WithKeys("up", "k"),
				key.WithHelp("↑/k", "move up"),
			),
			Down: key.NewBinding(
				key.WithKeys("down", "j"),
				key.WithHelp("↓/j", "move down"),
			),
			Answer: key.NewBinding(
				key.WithKeys("enter", " "),
				key.WithHelp("enter", "choose"),
			),
			Prev: key.NewBinding(
				key.WithKeys("backspace", "left"),
				key.WithHelp("⌫", "previous question"),
			),
			Restart: key.NewBinding(
				key.WithKeys("r"),
				key.WithHelp("r", "start over"),
			),
			Back: backKey,
		},
	}
}

// SetSize records the terminal size
func (m *DiagnosticModel) SetSize(width, height int) {
	m.Width, m.Height = width, height
}

// Init initializes the screen
func (m DiagnosticModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m DiagnosticModel) Update(msg tea.Msg) (DiagnosticModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if key.Matches(keyMsg, m.Keys.Back) {
		return m, goBack
	}
	if key.Matches(keyMsg, m.Keys.Restart) {
		m.diag.Reset()
		m.Cursor, m.Err = 0, nil
		return m, nil
	}

	if rec, done := m.diag.Result(); done {
		// Answer on the result signs up for the recommended plan
		if key.Matches(keyMsg, m.Keys.Answer) {
			return m, transitionTo(ScreenSignup, rec.Plan)
		}
		if key.Matches(keyMsg, m.Keys.Prev) {
			m.diag.Reset()
			m.Cursor = 0
		}
		return m, nil
	}

	q, _ := m.diag.Question()
	switch {
	case key.Matches(keyMsg, m.Keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
	case key.Matches(keyMsg, m.Keys.Down):
		if m.Cursor < len(q.Options)-1 {
			m.Cursor++
		}
	case key.Matches(keyMsg, m.Keys.Prev):
		m.diag.Back()
		m.Cursor, m.Err = 0, nil
	case key.Matches(keyMsg, m.Keys.Answer):
		m.Err = m.diag.Answer(q.Options[m.Cursor].Value)
		m.Cursor = 0
		if rec, done := m.diag.Result(); done && m.OnComplete != nil {
			m.OnComplete(rec.Plan.ID)
		}
	}
	return m, nil
}

// View renders the screen
func (m DiagnosticModel) View() string {
	var b strings.Builder
	b.WriteString(RenderTitle("Taste Diagnostic"))
	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(RenderError(wizard.ShortMessage(m.Err)))
		b.WriteString("\n\n")
	}

	if rec, done := m.diag.Result(); done {
		b.WriteString(ui.RenderRecommendation(rec, ContentWidth(m.Width)))
		b.WriteString("\n\n")
		b.WriteString(MenuItemStyle.Render("enter - このプランで申し込む"))
		return RenderApplicationContainer(b.String(), m.Help.View(m.Keys), m.Width, m.Height)
	}

	q, _ := m.diag.Question()
	index, total := m.diag.Progress()
	b.WriteString(RenderSubtitle(fmt.Sprintf("Question %d of %d", index+1, total)))
	b.WriteString("\n\n")
	b.WriteString(ui.CardTitleStyle.Render(q.Prompt))
	b.WriteString("\n\n")
	for i, o := range q.Options {
		b.WriteString(RenderMenuItem(o.Icon+"  "+o.Label, i == m.Cursor))
		b.WriteString("\n")
	}

	return RenderApplicationContainer(b.String(), m.Help.View(m.Keys), m.Width, m.Height)
}
