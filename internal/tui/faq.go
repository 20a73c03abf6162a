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

// faqKeyMap defines key bindings for the FAQ screen
type faqKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Toggle   key.Binding
	Collapse key.Binding
	Back     key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k faqKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Toggle, k.Collapse, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k faqKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Toggle, k.Collapse, k.Back}}
}

// FAQModel is the FAQ accordion. Any number of entries can be open.
type FAQModel struct {
	entries []catalog.FAQEntry
	Open    map[int]bool
	Cursor  int

	Width    int
	Height   int
	Viewport viewport.Model
	Help     help.Model
	Keys     faqKeyMap
}

// NewFAQModel creates the FAQ screen with every entry closed
func NewFAQModel(entries []catalog.FAQEntry) FAQModel {
	m := FAQModel{
		entries:  entries,
		Open:     make(map[int]bool),
		Viewport: viewport.New(MinTerminalWidth, 16),
		Help:     help.New(),
		Keys: faqKeyMap{
			Up: key.NewBinding(
				key.WithKeys("up", "k"),
				key.WithHelp("↑/k", "move up"),
			),
			Down: key.NewBinding(
				key.WithKeys("down", "j"),
				key.WithHelp("↓/j", "move down"),
			),
			Toggle: key.NewBinding(
				key.WithKeys("enter", " "),
				key.WithHelp("enter", "open/close"),
			),
			Collapse: key.NewBinding(
				key.WithKeys("c"),
				key.WithHelp("c", "close all"),
			),
			Back: backKey,
		},
	}
	m.refresh()
	return m
}

// SetSize records the terminal size
func (m *FAQModel) SetSize(width, height int) {
	m.Width, m.Height = width, height
	m.Viewport.Width = ContentWidth(width)
	m.Viewport.Height = viewportHeight(height)
	m.refresh()
}

// Init initializes the screen
func (m FAQModel) Init() tea.Cmd {
	return nil
}

// Toggle opens the entry with the given ID, or closes it if it is open
func (m *FAQModel) Toggle(id int) {
	if m.Open[id] {
		delete(m.Open, id)
	} else {
		m.Open[id] = true
	}
	m.refresh()
}

// Update handles messages and updates the model
func (m FAQModel) Update(msg tea.Msg) (FAQModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.Keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
	case key.Matches(keyMsg, m.Keys.Down):
		if m.Cursor < len(m.entries)-1 {
			m.Cursor++
		}
	case key.Matches(keyMsg, m.Keys.Toggle):
		if m.Cursor < len(m.entries) {
			m.Toggle(m.entries[m.Cursor].ID)
		}
	case key.Matches(keyMsg, m.Keys.Collapse):
		m.Open = make(map[int]bool)
	case key.Matches(keyMsg, m.Keys.Back):
		return m, goBack
	}
	m.refresh()
	return m, nil
}

// refresh re-renders the entries and keeps the cursor in view
func (m *FAQModel) refresh() {
	width := m.Viewport.Width
	lines := make([]string, 0, len(m.entries))
	cursorLine := 0
	for i, e := range m.entries {
		entry := ui.RenderFAQ([]catalog.FAQEntry{e}, m.Open, width-2)
		if i == m.Cursor {
			cursorLine = lipgloss.Height(strings.Join(lines, "\n"))
			if len(lines) == 0 {
				cursorLine = 0
			}
			entry = lipgloss.JoinHorizontal(lipgloss.Top, SelectedMenuItemStyle.PaddingLeft(0).Render("→ "), entry)
		} else {
			entry = "  " + strings.ReplaceAll(entry, "\n", "\n  ")
		}
		lines = append(lines, entry)
	}
	m.Viewport.SetContent(strings.Join(lines, "\n"))

	if cursorLine < m.Viewport.YOffset {
		m.Viewport.SetYOffset(cursorLine)
	} else if cursorLine >= m.Viewport.YOffset+m.Viewport.Height {
		m.Viewport.SetYOffset(cursorLine - m.Viewport.Height + 1)
	}
}

// View renders the screen
func (m FAQModel) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		RenderTitle("Frequently Asked Questions"),
		m.Viewport.View(),
	)
	return RenderApplicationContainer(content, m.Help.View(m.Keys), m.Width, m.Height)
}
