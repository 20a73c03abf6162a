package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Confirm asks a yes/no question on out and reads the answer from in.
// Only "y" and "yes" (any case) confirm; anything else, including EOF,
// declines.
func Confirm(in io.Reader, out io.Writer, question string) bool {
	promptStyle := lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true)
	_, _ = fmt.Fprint(out, promptStyle.Render(question+" [y/N]: "))

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		_, _ = fmt.Fprintln(out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "y", "yes":
		return true
	default:
		_, _ = fmt.Fprintln(out, MutedStyle.Render("  Cancelled."))
		return false
	}
}
