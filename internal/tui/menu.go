package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// menuEntry is one destination of the main menu
type menuEntry struct {
	Screen Screen
	Title  string
	Hint   string
}

var menuEntries = []menuEntry{
	{ScreenPlans, "Plans", "3つの定期便プランを比較"},
	{ScreenCoffee, "Coffee of the Month", "今月のシングルオリジン"},
	{ScreenTestimonials, "Testimonials", "お客様の声"},
	{ScreenDiagnostic, "Taste Diagnostic", "3つの質問であなたに合うプランを診断"},
	{ScreenFAQ, "FAQ", "よくあるご質問"},
	{ScreenContact, "Contact", "お問い合わせ"},
}

// menuKeyMap defines key bindings for the menu screen
type menuKeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Quit  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k menuKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k menuKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Enter, k.Quit}}
}

// MenuModel is the main menu
type MenuModel struct {
	Cursor int

	Width  int
	Height int
	Help   help.Model
	Keys   menuKeyMap
}

// NewMenuModel creates the main menu
func NewMenuModel() MenuModel {
	return MenuModel{
		Help: help.New(),
		Keys: menuKeyMap{
			Up: key.NewBinding(
				key.WithKeys("up", "k"),
				key.WithHelp("↑/k", "move up"),
			),
			Down: key.NewBinding(
				key.WithKeys("down", "j"),
				key.WithHelp("↓/j", "move down"),
			),
			Enter: key.NewBinding(
				key.WithKeys("enter", " "),
				key.WithHelp("enter", "open"),
			),
			Quit: key.NewBinding(
				key.WithKeys("q", "esc"),
				key.WithHelp("q", "quit"),
			),
		},
	}
}

// SetSize records the terminal size
func (m *MenuModel) SetSize(width, height int) {
	m.Width, m.Height = width, height
}

// Init initializes the menu
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m MenuModel) Update(msg tea.Msg) (MenuModel, tea.Cmd) {
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
		if m.Cursor < len(menuEntries)-1 {
			m.Cursor++
		}
	case key.Matches(keyMsg, m.Keys.Enter):
		return m, transitionTo(menuEntries[m.Cursor].Screen, nil)
	case key.Matches(keyMsg, m.Keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}

// View renders the menu
func (m MenuModel) View() string {
	var b strings.Builder

	b.WriteString(RenderTitle("Welcome to Midnight Brew"))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle("真夜中に焙煎した、最高の一杯をあなたに。"))
	b.WriteString("\n\n")

	for i, e := range menuEntries {
		b.WriteString(RenderMenuItem(e.Title, i == m.Cursor))
		b.WriteString("\n")
		b.WriteString(MenuItemStyle.Render(RenderSubtitle(e.Hint)))
		b.WriteString("\n\n")
	}

	return RenderApplicationContainer(b.String(), m.Help.View(m.Keys), m.Width, m.Height)
}
