package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/midnightbrew/internal/ui"
	"github.com/muurk/midnightbrew/internal/version"
)

// Application branding constants
const (
	AppName = "MIDNIGHT BREW"
	Tagline = "深夜焙煎のスペシャルティコーヒー定期便"
)

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 72  // Minimum supported terminal width
	MaxContentWidth  = 100 // Maximum content width before capping
)

// Colors are shared with the non-interactive output
var (
	PrimaryColor = ui.PrimaryColor
	AccentColor  = ui.AccentColor
	SuccessColor = ui.SuccessColor
	WarningColor = ui.WarningColor
	ErrorColor   = ui.ErrorColor
	TextColor    = ui.TextColor
	SubtleColor  = ui.MutedColor
	BorderColor  = ui.PrimaryColor
)

// Common styles
var (
	// Title style - bold, with breathing room
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			Padding(1, 0, 0, 0).
			MarginBottom(1)

	// Subtitle style
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	// Menu item style (unselected)
	MenuItemStyle = lipgloss.NewStyle().
			PaddingLeft(4).
			Foreground(TextColor)

	// Menu item style (selected)
	SelectedMenuItemStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Foreground(AccentColor).
				Bold(true)

	// Error message style
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true).
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ErrorColor)

	// Success message style
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true).
			Padding(1, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(SuccessColor)

	// Spinner style
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// Field label style
	LabelStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Width(18)

	// Field error style, shown under the input
	FieldErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			PaddingLeft(20)

	// Focused input style
	FocusedInputStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	// Blurred input style
	BlurredInputStyle = lipgloss.NewStyle().
				Foreground(SubtleColor)
)

// RenderTitle renders a title with consistent styling
func RenderTitle(text string) string {
	return TitleStyle.Render(text)
}

// RenderSubtitle renders a subtitle with consistent styling
func RenderSubtitle(text string) string {
	return SubtitleStyle.Render(text)
}

// RenderMenuItem renders a menu item with selection indicator
func RenderMenuItem(text string, selected bool) string {
	if selected {
		return SelectedMenuItemStyle.Render("→ " + text)
	}
	return MenuItemStyle.Render(text)
}

// RenderError renders an error message
func RenderError(text string) string {
	return ErrorStyle.Render("✗ " + text)
}

// RenderSuccess renders a success message
func RenderSuccess(text string) string {
	return SuccessStyle.Render("✓ " + text)
}

// ContentWidth returns the usable width inside the application container
func ContentWidth(terminalWidth int) int {
	w := terminalWidth - 6
	if w < MinTerminalWidth-6 {
		w = MinTerminalWidth - 6
	}
	if w > MaxContentWidth {
		w = MaxContentWidth
	}
	return w
}

// BuildHeaderContent creates header content with app name and tagline
func BuildHeaderContent() string {
	left := lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true).
		Render("☕ " + AppName + " v" + AppVersion())

	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(Tagline)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// BuildFooterContent creates footer content with help text
func BuildFooterContent(helpText string) string {
	return lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(helpText)
}

// RenderApplicationContainer is the wrapper for all screens in the application.
// It provides a full-screen bordered panel with the application header on
// top and the context-sensitive help footer pinned to the bottom.
//
//	func (m Model) View() string {
//	    content := m.buildContent()
//	    helpText := m.help.View(m.keys)
//	    return RenderApplicationContainer(content, helpText, m.width, m.height)
//	}
func RenderApplicationContainer(content string, footerText string, terminalWidth int, terminalHeight int) string {
	if terminalWidth < MinTerminalWidth {
		terminalWidth = MinTerminalWidth
	}
	if terminalHeight < 10 {
		terminalHeight = 24
	}

	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	styledHeader := headerStyle.Render(BuildHeaderContent())
	styledFooter := footerStyle.Render(BuildFooterContent(footerText))

	// Content gets whatever height is left so the footer stays at the bottom
	contentHeight := terminalHeight - 2 - lipgloss.Height(styledHeader) - lipgloss.Height(styledFooter)
	if contentHeight < 1 {
		contentHeight = 1
	}
	styledContent := lipgloss.NewStyle().
		Width(terminalWidth - 4).
		Height(contentHeight).
		MaxHeight(contentHeight).
		PaddingLeft(1).
		Render(content)

	innerContent := lipgloss.JoinVertical(
		lipgloss.Left,
		styledHeader,
		styledContent,
		styledFooter,
	)

	bordered := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Render(innerContent)

	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Left,
		lipgloss.Top,
		bordered,
	)
}
