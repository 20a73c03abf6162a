package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/logging"
	"github.com/muurk/midnightbrew/internal/signup"
	"github.com/muurk/midnightbrew/internal/ui"
	"github.com/muurk/midnightbrew/internal/wizard"
)

var signupFields = map[string]fieldSpec{
	signup.FieldEmail:           {Label: "Email", Placeholder: "you@example.com"},
	signup.FieldPassword:        {Label: "Password", Placeholder: "8文字以上", Secret: true},
	signup.FieldConfirmPassword: {Label: "Confirm password", Secret: true},
	signup.FieldLastName:        {Label: "Last name", Placeholder: "山田"},
	signup.FieldFirstName:       {Label: "First name", Placeholder: "太郎"},
	signup.FieldZipCode:         {Label: "Postal code", Placeholder: "123-4567", CharLimit: 8},
	signup.FieldPrefecture:      {Label: "Prefecture", Placeholder: "東京都"},
	signup.FieldCity:            {Label: "City", Placeholder: "渋谷区"},
	signup.FieldAddress:         {Label: "Address", Placeholder: "1-2-3"},
	signup.FieldBuilding:        {Label: "Building", Placeholder: "(optional)"},
	signup.FieldPhone:           {Label: "Phone", Placeholder: "090-1234-5678"},
	signup.FieldCardNumber:      {Label: "Card number", Placeholder: "1234 5678 9012 3456", CharLimit: 19},
	signup.FieldExpiryDate:      {Label: "Expiry", Placeholder: "MM/YY", CharLimit: 5},
	signup.FieldCVV:             {Label: "Security code", Placeholder: "123", Secret: true, CharLimit: 4},
	signup.FieldCardName:        {Label: "Name on card", Placeholder: "TARO YAMADA"},
}

// signupDoneMsg carries the outcome of a submission
type signupDoneMsg struct {
	receipt *wizard.Receipt
	err     error
}

// signupKeyMap defines key bindings for the signup screen
type signupKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Back   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k signupKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Submit, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k signupKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev, k.Submit, k.Back}}
}

// SignupModel drives the signup wizard for one plan
type SignupModel struct {
	form   *signup.Form
	fields fieldSet

	submitting bool
	Err        error

	Width   int
	Height  int
	Spinner spinner.Model
	Help    help.Model
	Keys    signupKeyMap
}

// NewSignupModel creates the signup screen for form
func NewSignupModel(form *signup.Form) SignupModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := SignupModel{
		form:    form,
		fields:  newFieldSet(signupFields),
		Spinner: s,
		Help:    help.New(),
		Keys: signupKeyMap{
			Next: key.NewBinding(
				key.WithKeys("tab", "down"),
				key.WithHelp("tab", "next field"),
			),
			Prev: key.NewBinding(
				key.WithKeys("shift+tab", "up"),
				key.WithHelp("shift+tab", "previous field"),
			),
			Submit: key.NewBinding(
				key.WithKeys("enter"),
				key.WithHelp("enter", "continue"),
			),
			Back: key.NewBinding(
				key.WithKeys("esc"),
				key.WithHelp("esc", "back"),
			),
		},
	}
	m.showCurrentStep()
	return m
}

// SetSize records the terminal size
func (m *SignupModel) SetSize(width, height int) {
	m.Width, m.Height = width, height
}

// Init starts the cursor blinking
func (m SignupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Snapshot returns the wizard state
func (m SignupModel) Snapshot() wizard.Snapshot {
	return m.form.Snapshot()
}

func (m *SignupModel) showCurrentStep() {
	snap := m.form.Snapshot()
	if snap.Completed {
		return
	}
	m.fields.show(m.form.Steps()[snap.Index], snap.Errors)
}

// Update handles messages and updates the model
func (m SignupModel) Update(msg tea.Msg) (SignupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case signupDoneMsg:
		m.submitting = false
		m.Err = msg.err
		if msg.err != nil {
			logging.Debug("Signup not completed: " + wizard.ShortMessage(msg.err))
			m.showCurrentStep()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	_, in := m.fields.focused()
	if in == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return m, cmd
}

func (m SignupModel) handleKey(msg tea.KeyMsg) (SignupModel, tea.Cmd) {
	snap := m.form.Snapshot()

	if snap.Completed {
		if key.Matches(msg, m.Keys.Submit, m.Keys.Back) {
			return m, goBack
		}
		return m, nil
	}
	if m.submitting {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.Keys.Back):
		if snap.Index == 0 {
			return m, goBack
		}
		m.form.Retreat()
		m.Err = nil
		m.showCurrentStep()
		return m, nil

	case key.Matches(msg, m.Keys.Next):
		m.fields.move(1)
		return m, nil

	case key.Matches(msg, m.Keys.Prev):
		m.fields.move(-1)
		return m, nil

	case key.Matches(msg, m.Keys.Submit):
		if snap.Index == snap.StepCount-1 {
			return m.submit()
		}
		if !m.fields.onLastField() {
			m.fields.move(1)
			return m, nil
		}
		m.Err = m.form.Advance()
		m.showCurrentStep()
		return m, nil
	}

	field, in := m.fields.focused()
	if in == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	m.form.UpdateField(snap.StepID, field, in.Value())
	return m, cmd
}

// submit hands the application to the submitter in the background
func (m SignupModel) submit() (SignupModel, tea.Cmd) {
	m.submitting = true
	m.Err = nil
	form := m.form
	return m, tea.Batch(
		func() tea.Msg {
			receipt, err := form.Submit(context.Background())
			return signupDoneMsg{receipt: receipt, err: err}
		},
		m.Spinner.Tick,
	)
}

// View renders the screen
func (m SignupModel) View() string {
	if m.form == nil {
		return ""
	}
	snap := m.form.Snapshot()
	width := ContentWidth(m.Width)
	var b strings.Builder

	b.WriteString(RenderTitle(fmt.Sprintf("Subscribe: %s", m.form.Plan.Name)))
	b.WriteString("\n")
	b.WriteString(ui.WizardProgress(m.form.Steps(), snap, width))
	b.WriteString("\n\n")

	switch {
	case snap.Completed:
		b.WriteString(m.renderCompleted(snap))
	case m.submitting || snap.Submitting:
		b.WriteString(SpinnerStyle.Render(m.Spinner.View() + " Submitting your application..."))
	default:
		if m.Err != nil && wizard.Classify(m.Err) != wizard.KindIgnored {
			b.WriteString(RenderError(wizard.ShortMessage(m.Err)))
			b.WriteString("\n")
			if wizard.Classify(m.Err) != wizard.KindValidation {
				b.WriteString(RenderSubtitle(signup.TroubleshootingHint(m.Err)))
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
		if snap.StepID == signup.StepReview {
			b.WriteString(m.renderReview(snap))
		} else {
			b.WriteString(m.renderFields(snap))
		}
	}

	return RenderApplicationContainer(b.String(), m.Help.View(m.Keys), m.Width, m.Height)
}

func (m SignupModel) renderFields(snap wizard.Snapshot) string {
	var b strings.Builder
	for _, f := range m.fields.order {
		spec := m.fields.specs[f]
		b.WriteString(LabelStyle.Render(spec.Label))
		b.WriteString("  ")
		b.WriteString(m.fields.inputs[f].View())
		b.WriteString("\n")
		if msg, bad := snap.Errors[f]; bad {
			b.WriteString(FieldErrorStyle.Render(msg))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m SignupModel) renderReview(snap wizard.Snapshot) string {
	v := snap.Values
	p := m.form.Plan
	detail := func(k, val string) string {
		return LabelStyle.Render(k) + "  " + val + "\n"
	}

	var b strings.Builder
	b.WriteString(ui.CardTitleStyle.Render("Please review your order"))
	b.WriteString("\n\n")
	b.WriteString(detail("Plan", fmt.Sprintf("%s  %s (初月)  以降 %s/月", p.Name,
		catalog.FormatYen(p.FirstMonthPrice), catalog.FormatYen(p.OriginalPrice))))
	b.WriteString(detail("Email", v[signup.FieldEmail]))
	b.WriteString(detail("Name", v[signup.FieldLastName]+" "+v[signup.FieldFirstName]))
	address := strings.TrimSpace(strings.Join([]string{
		"〒" + v[signup.FieldZipCode], v[signup.FieldPrefecture], v[signup.FieldCity],
		v[signup.FieldAddress], v[signup.FieldBuilding],
	}, " "))
	b.WriteString(detail("Ship to", address))
	b.WriteString(detail("Card", logging.MaskCardNumber(v[signup.FieldCardNumber])))
	b.WriteString("\n")
	b.WriteString(RenderSubtitle("enter - 申し込む   esc - 戻る"))
	return b.String()
}

func (m SignupModel) renderCompleted(snap wizard.Snapshot) string {
	var b strings.Builder
	b.WriteString(RenderSuccess(snap.Message))
	b.WriteString("\n\n")
	if snap.Receipt != nil {
		b.WriteString(LabelStyle.Render("Confirmation"))
		b.WriteString("  ")
		b.WriteString(snap.Receipt.ID)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(RenderSubtitle("enter - back to the menu"))
	return b.String()
}
