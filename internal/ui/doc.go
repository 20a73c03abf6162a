// Package ui provides terminal UI components for the midnightbrew CLI.
//
// This package uses Lipgloss (and the Bubbles progress bar) to render
// polished terminal output for the non-interactive commands. Unlike the
// interactive storefront in package tui, these components follow a
// "run once and exit" pattern.
//
// # Architecture
//
// The UI package provides these component types:
//
//   - Header: Command banner showing the operation name and parameters
//   - Progress: Progress bar with step list showing real-time status
//   - Result: Success/failure/warning boxes with styled information
//   - Catalog renderers: plan cards, coffee of the month, testimonials,
//     FAQ entries and the diagnostic recommendation
//
// Multi-step commands (contact, servers) are orchestrated by a Runner,
// which manages the header → progress → result flow:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:     "Contact",
//	    Command:   "midnightbrew contact",
//	    StepNames: []string{"Validate message", "Send message"},
//	})
//
//	err := runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) ([]ui.Detail, error) {
//	    onStep(1, ui.StepRunning, "")
//	    // ... do work ...
//	    onStep(1, ui.StepComplete, "")
//	    return []ui.Detail{{Key: "Ticket", Value: ack.Ticket}}, nil
//	})
//
// The interactive storefront reuses the catalog renderers and
// WizardProgress so both surfaces look the same.
//
// # Logging Integration
//
// Logging is controlled via --log-level or the MIDNIGHTBREW_LOG_LEVEL
// environment variable. When unset, zap logging is silent so the styled
// output is displayed cleanly.
package ui
