package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/muurk/midnightbrew/internal/wizard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRender(t *testing.T) {
	h := NewHeader("plans", "midnightbrew plans",
		Param{Key: "Source", Value: "embedded"},
		Param{Key: "Server", Value: "none"},
	).SetWidth(80)

	out := h.Render()
	assert.Contains(t, out, "PLANS")
	assert.Contains(t, out, "midnightbrew plans")
	assert.Contains(t, out, "Source:")
	assert.Contains(t, out, "embedded")

	// Params keep their order
	assert.Less(t, strings.Index(out, "Source"), strings.Index(out, "Server"))
	assert.Equal(t, out, h.String())
}

func TestHeaderWithoutParams(t *testing.T) {
	out := NewHeader("faq", "midnightbrew faq").SetWidth(80).Render()
	assert.Contains(t, out, "FAQ")
	assert.NotContains(t, out, ":")
}

func TestResultRender(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   []string
		absent []string
	}{
		{
			name:   "success",
			result: NewSuccessResult("Message sent", Detail{Key: "Ticket", Value: "abc"}),
			want:   []string{"SUCCESS", "Message sent", "Ticket:", "abc"},
		},
		{
			name:   "failure",
			result: NewFailureResult("Send failed", errors.New("connection refused"), []string{"Is the server running?"}),
			want:   []string{"FAILED", "connection refused", "Troubleshooting:", "Is the server running?"},
		},
		{
			name:   "failure without tips",
			result: NewFailureResult("Send failed", errors.New("boom"), nil),
			want:   []string{"FAILED", "boom"},
			absent: []string{"Troubleshooting:"},
		},
		{
			name:   "warning",
			result: NewWarningResult("No servers").AddDetail("Timeout", "5s"),
			want:   []string{"WARNING", "No servers", "Timeout:", "5s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(80).Render()
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestProgressUpdateStep(t *testing.T) {
	p := NewProgress("Working", "one", "two", "three", "four").SetWidth(80)
	require.Equal(t, 4, p.Total)

	p.StartStep(1, "")
	assert.Equal(t, 1, p.Current)
	assert.Equal(t, 0.0, p.Percent)

	p.CompleteStep(1, "")
	p.StartStep(2, "")
	p.UpdateStep(2, StepSkipped, "")
	assert.Equal(t, 2, p.Current)
	assert.InDelta(t, 0.5, p.Percent, 1e-9)

	p.FailStep(3, "timeout")
	assert.InDelta(t, 0.5, p.Percent, 1e-9)

	// Out of range is ignored
	p.UpdateStep(0, StepComplete, "")
	p.UpdateStep(5, StepComplete, "")
	assert.InDelta(t, 0.5, p.Percent, 1e-9)

	out := p.Render()
	assert.Contains(t, out, "Working")
	assert.Contains(t, out, "[3/4] three")
	assert.Contains(t, out, "(timeout)")
	assert.Contains(t, out, FailureMarker)
}

func TestWizardProgress(t *testing.T) {
	steps := []wizard.Step{
		{ID: "account", Title: "Account"},
		{ID: "shipping"},
		{ID: "review", Title: "Review"},
	}

	out := WizardProgress(steps, wizard.Snapshot{Index: 1, StepCount: 3}, 80)
	assert.Contains(t, out, "Account")
	assert.Contains(t, out, "shipping", "untitled steps fall back to their ID")
	assert.Contains(t, out, "33%")

	out = WizardProgress(steps, wizard.Snapshot{Index: 1, StepCount: 3, Errors: wizard.Errors{"zip": "bad"}}, 80)
	assert.Contains(t, out, FailureMarker)

	out = WizardProgress(steps, wizard.Snapshot{Index: 3, StepCount: 3, Completed: true}, 80)
	assert.Contains(t, out, "100%")
	assert.Contains(t, out, "[3/3]")
}

func TestRunnerSuccess(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(RunnerConfig{
		Title:     "Contact",
		Command:   "midnightbrew contact",
		StepNames: []string{"Validate", "Send"},
		Output:    &buf,
	}).SetWidth(80)

	err := r.Run(context.Background(), func(ctx context.Context, onStep StepCallback) ([]Detail, error) {
		onStep(1, StepRunning, "")
		onStep(1, StepComplete, "")
		onStep(2, StepRunning, "")
		onStep(2, StepComplete, "1.5s")
		onStep(9, StepComplete, "")
		return []Detail{{Key: "Ticket", Value: "T-1"}}, nil
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "CONTACT")
	assert.Contains(t, out, "(1.5s)")
	assert.Contains(t, out, "Contact complete")
	assert.Contains(t, out, "T-1")
	assert.Contains(t, out, "Duration:")
}

func TestRunnerFailure(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("server unreachable")
	r := NewRunner(RunnerConfig{
		Title:        "Contact",
		Command:      "midnightbrew contact",
		Output:       &buf,
		Troubleshoot: func(error) []string { return []string{"Check --server"} },
	}).SetWidth(80)

	err := r.Run(context.Background(), func(ctx context.Context, onStep StepCallback) ([]Detail, error) {
		onStep(1, StepRunning, "") // no steps configured
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	out := buf.String()
	assert.Contains(t, out, "Contact failed")
	assert.Contains(t, out, "server unreachable")
	assert.Contains(t, out, "Check --server")
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yes", true},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got := Confirm(strings.NewReader(tt.input), &out, "Save server?")
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Save server? [y/N]")
		})
	}
}

func TestRenderStars(t *testing.T) {
	tests := []struct {
		rating      int
		full, empty int
	}{
		{5, 5, 0},
		{3, 3, 2},
		{0, 0, 5},
		{-1, 0, 5},
		{9, 5, 0},
	}
	for _, tt := range tests {
		out := RenderStars(tt.rating)
		assert.Equal(t, tt.full, strings.Count(out, StarFull), "rating %d", tt.rating)
		assert.Equal(t, tt.empty, strings.Count(out, StarEmpty), "rating %d", tt.rating)
	}
}

func TestClampWidth(t *testing.T) {
	assert.Equal(t, MinTerminalWidth, ClampWidth(10))
	assert.Equal(t, MaxContentWidth, ClampWidth(10000))
	assert.Equal(t, MinTerminalWidth+1, ClampWidth(MinTerminalWidth+1))
}
