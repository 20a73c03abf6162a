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

// coffeeKeyMap defines key bindings for the coffee of the month screen
type coffeeKeyMap struct {
	Up   key.Binding
	Down key.Binding
	Back key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k coffeeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k coffeeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down, k.Back}}
}

// CoffeeModel shows the coffee of the month and the brand commitments
type CoffeeModel struct {
	catalog *catalog.Catalog

	Width    int
	Height   int
	Viewport viewport.Model
	Help     help.Model
	Keys     coffeeKeyMap
}

// NewCoffeeModel creates the coffee of the month screen
func NewCoffeeModel(c *catalog.Catalog) CoffeeModel {
	m := CoffeeModel{
		catalog:  c,
		Viewport: viewport.New(MinTerminalWidth, 16),
		Help:     help.New(),
		Keys: coffeeKeyMap{
			Up: key.NewBinding(
				key.WithKeys("up", "k"),
				key.WithHelp("↑/k", "scroll up"),
			),
			Down: key.NewBinding(
				key.WithKeys("down", "j"),
				key.WithHelp("↓/j", "scroll down"),
			),
			Back: backKey,
		},
	}
	m.refresh()
	return m
}

// SetSize records the terminal size
func (m *CoffeeModel) SetSize(width, height int) {
	m.Width, m.Height = width, height
	m.Viewport.Width = ContentWidth(width)
	m.Viewport.Height = viewportHeight(height)
	m.refresh()
}

func (m *CoffeeModel) refresh() {
	if m.catalog == nil {
		return
	}
	width := m.Viewport.Width
	if width < MinTerminalWidth-6 {
		width = MinTerminalWidth - 6
	}

	sections := []string{ui.RenderCoffee(m.catalog.MonthlyCoffee, width)}
	if len(m.catalog.Commitments) > 0 {
		sections = append(sections, "", ui.CardTitleStyle.Render("Our Commitments"))
		for _, c := range m.catalog.Commitments {
			sections = append(sections, "", ui.BodyStyle.Bold(true).Render(c.Title), ui.MutedStyle.Width(width).Render(c.Description))
			for _, d := range c.Details {
				sections = append(sections, "  "+ui.SuccessMarker+" "+d)
			}
		}
	}
	m.Viewport.SetContent(strings.Join(sections, "\n"))
}

// Init initializes the screen
func (m CoffeeModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m CoffeeModel) Update(msg tea.Msg) (CoffeeModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.Keys.Back) {
		return m, goBack
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

// View renders the screen
func (m CoffeeModel) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		RenderTitle("Coffee of the Month"),
		m.Viewport.View(),
	)
	return RenderApplicationContainer(content, m.Help.View(m.Keys), m.Width, m.Height)
}
