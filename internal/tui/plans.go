package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/ui"
)

// plansKeyMap defines key bindings for the plans screen
type plansKeyMap struct {
	Prev   key.Binding
	Next   key.Binding
	Signup key.Binding
	Back   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k plansKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.Signup, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k plansKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Prev, k.Next, k.Signup, k.Back}}
}

// PlansModel lists the subscription plans and starts a signup
type PlansModel struct {
	plans  []catalog.Plan
	Cursor int

	Width    int
	Height   int
	Viewport viewport.Model
	Help     help.Model
	Keys     plansKeyMap
}

// NewPlansModel creates the plans screen
func NewPlansModel(c *catalog.Catalog) PlansModel {
	m := PlansModel{
		plans:    c.Plans,
		Viewport: viewport.New(MinTerminalWidth, 16),
		Help:     help.New(),
		Keys: plansKeyMap{
			Prev: key.NewBinding(
				key.WithKeys("up", "k", "left", "h"),
				key.WithHelp("↑/k", "previous plan"),
			),
			Next: key.NewBinding(
				key.WithKeys("down", "j", "right", "l"),
				key.WithHelp("↓/j", "next plan"),
			),
			Signup: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "subscribe"),
			),
			Back: backKey,
		},
	}
	// Open on the popular plan
	for i, p := range c.Plans {
		if p.Popular {
			m.Cursor = i
		}
	}
	m.refresh()
	return m
}

// SetSize records the terminal size
func (m *PlansModel) SetSize(width, height int) {
	m.Width, m.Height = width, height
	m.Viewport.Width = ContentWidth(width)
	m.Viewport.Height = viewportHeight(height)
	m.refresh()
}

// viewportHeight is the content height left inside the application container
func viewportHeight(height int) int {
	h := height - 10
	if h < 5 {
		h = 5
	}
	return h
}

// Init initializes the plans screen
func (m PlansModel) Init() tea.Cmd {
	return nil
}

// Selected returns the highlighted plan
func (m PlansModel) Selected() (catalog.Plan, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.plans) {
		return catalog.Plan{}, false
	}
	return m.plans[m.Cursor], true
}

// Update handles messages and updates the model
func (m PlansModel) Update(msg tea.Msg) (PlansModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, m.Keys.Prev):
			if m.Cursor > 0 {
				m.Cursor--
				m.refresh()
			}
			return m, nil
		case key.Matches(keyMsg, m.Keys.Next):
			if m.Cursor < len(m.plans)-1 {
				m.Cursor++
				m.refresh()
			}
			return m, nil
		case key.Matches(keyMsg, m.Keys.Signup):
			if p, ok := m.Selected(); ok {
				return m, transitionTo(ScreenSignup, p)
			}
			return m, nil
		case key.Matches(keyMsg, m.Keys.Back):
			return m, goBack
		}
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// refresh re-renders the cards and scrolls the selected one into view
func (m *PlansModel) refresh() {
	width := m.Viewport.Width
	if width < MinTerminalWidth-6 {
		width = MinTerminalWidth - 6
	}

	var (
		cards  []string
		offset int
	)
	for i, p := range m.plans {
		card := ui.RenderPlan(p, width-2)
		if i == m.Cursor {
			card = lipgloss.JoinHorizontal(lipgloss.Center, SelectedMenuItemStyle.Render("→"), card)
			offset = lipgloss.Height(strings.Join(cards, "\n"))
			if len(cards) > 0 {
				offset++
			}
		} else {
			card = lipgloss.NewStyle().PaddingLeft(3).Render(card)
		}
		cards = append(cards, card)
	}

	m.Viewport.SetContent(strings.Join(cards, "\n"))
	m.Viewport.SetYOffset(offset)
}

// View renders the plans screen
func (m PlansModel) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		RenderTitle("Subscription Plans"),
		m.Viewport.View(),
	)
	return RenderApplicationContainer(content, m.Help.View(m.Keys), m.Width, m.Height)
}
