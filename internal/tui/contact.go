package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muurk/midnightbrew/internal/catalog"
	"github.com/muurk/midnightbrew/internal/contact"
	"github.com/muurk/midnightbrew/internal/ui"
	"github.com/muurk/midnightbrew/internal/wizard"
)

var contactFields = map[string]fieldSpec{
	contact.FieldName:  {Label: "Name", Placeholder: "山田 太郎"},
	contact.FieldEmail: {Label: "Email", Placeholder: "you@example.com"},
}

// contactDoneMsg carries the outcome of sending a message
type contactDoneMsg struct {
	err error
}

// contactRefreshMsg fires once the thank-you state may have been cleared
type contactRefreshMsg struct {
	generation uint64
}

// contactKeyMap defines key bindings for the contact screen
type contactKeyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Subject key.Binding
	Send    key.Binding
	Back    key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k contactKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Subject, k.Send, k.Back}
}

// FullHelp returns keybindings for the expanded help view
func (k contactKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev, k.Subject}, {k.Send, k.Back}}
}

// contactFocus orders the focusable parts of the form
var contactFocus = []string{contact.FieldName, contact.FieldEmail, contact.FieldSubject, contact.FieldMessage}

// ContactModel is the contact form
type ContactModel struct {
	form    *contact.Form
	info    catalog.ContactInfo
	inputs  map[string]*textinput.Model
	message *textarea.Model
	subject int // Index into contact.Subjects, -1 when unset
	focus   int // Index into contactFocus

	// ClearAfter mirrors the form's clear delay so the screen redraws
	// once the form has cleared itself
	ClearAfter time.Duration

	submitting bool
	Err        error

	Width   int
	Height  int
	Spinner spinner.Model
	Help    help.Model
	Keys    contactKeyMap
}

// NewContactModel creates the contact screen
func NewContactModel(form *contact.Form, info catalog.ContactInfo) ContactModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	inputs := make(map[string]*textinput.Model, len(contactFields))
	for f, spec := range contactFields {
		in := newInput(spec)
		inputs[f] = &in
	}
	ta := textarea.New()
	ta.Placeholder = "お問い合わせ内容をご記入ください"
	ta.ShowLineNumbers = false
	ta.SetWidth(50)
	ta.SetHeight(5)

	m := ContactModel{
		form:       form,
		info:       info,
		inputs:     inputs,
		message:    &ta,
		subject:    -1,
		ClearAfter: contact.DefaultClearAfter,
		Spinner:    s,
		Help:       help.New(),
		Keys: contactKeyMap{
			Next: key.NewBinding(
				key.WithKeys("tab"),
				key.WithHelp("tab", "next field"),
			),
			Prev: key.NewBinding(
				key.WithKeys("shift+tab"),
				key.WithHelp("shift+tab", "previous field"),
			),
			Subject: key.NewBinding(
				key.WithKeys("left", "right"),
				key.WithHelp("←/→", "subject"),
			),
			Send: key.NewBinding(
				key.WithKeys("ctrl+s"),
				key.WithHelp("ctrl+s", "send"),
			),
			Back: backKey,
		},
	}
	m.applyFocus()
	return m
}

// SetSize records the terminal size
func (m *ContactModel) SetSize(width, height int) {
	m.Width, m.Height = width, height
	if m.message != nil {
		m.message.SetWidth(ContentWidth(width) - 22)
	}
}

// Init starts the cursor blinking
func (m ContactModel) Init() tea.Cmd {
	return textinput.Blink
}

// Close cancels the pending clear of the form
func (m ContactModel) Close() {
	if m.form != nil {
		m.form.Close()
	}
}

// Snapshot returns the form state
func (m ContactModel) Snapshot() wizard.Snapshot {
	return m.form.Snapshot()
}

// Subject returns the selected subject value, or "" when none is selected
func (m ContactModel) Subject() string {
	if m.subject < 0 || m.subject >= len(contact.Subjects) {
		return ""
	}
	return contact.Subjects[m.subject].Value
}

func (m *ContactModel) applyFocus() {
	for f, in := range m.inputs {
		if contactFocus[m.focus] == f {
			in.Focus()
			in.TextStyle = FocusedInputStyle
		} else {
			in.Blur()
			in.TextStyle = BlurredInputStyle
		}
	}
	if contactFocus[m.focus] == contact.FieldMessage {
		m.message.Focus()
	} else {
		m.message.Blur()
	}
}

func (m *ContactModel) clearInputs() {
	for _, in := range m.inputs {
		in.SetValue("")
	}
	m.message.Reset()
	m.subject = -1
	m.focus = 0
	m.applyFocus()
}

// Update handles messages and updates the model
func (m ContactModel) Update(msg tea.Msg) (ContactModel, tea.Cmd) {
	switch msg := msg.(type) {
	case contactDoneMsg:
		m.submitting = false
		m.Err = msg.err
		if msg.err != nil {
			return m, nil
		}
		gen := m.form.Generation()
		return m, tea.Tick(m.ClearAfter+100*time.Millisecond, func(time.Time) tea.Msg {
			return contactRefreshMsg{generation: gen}
		})

	case contactRefreshMsg:
		snap := m.form.Snapshot()
		if m.form.Generation() != msg.generation && !snap.Completed && len(snap.Values) == 0 {
			m.clearInputs()
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
	return m, nil
}

func (m ContactModel) handleKey(msg tea.KeyMsg) (ContactModel, tea.Cmd) {
	if key.Matches(msg, m.Keys.Back) {
		return m, goBack
	}
	if m.submitting {
		return m, nil
	}
	if m.form.Snapshot().Completed {
		// Any key starts a new message
		m.form.Reset()
		m.clearInputs()
		return m, nil
	}

	field := contactFocus[m.focus]
	switch {
	case key.Matches(msg, m.Keys.Next):
		m.focus = (m.focus + 1) % len(contactFocus)
		m.applyFocus()
		return m, nil

	case key.Matches(msg, m.Keys.Prev):
		m.focus = (m.focus - 1 + len(contactFocus)) % len(contactFocus)
		m.applyFocus()
		return m, nil

	case key.Matches(msg, m.Keys.Send):
		return m.send()

	case field == contact.FieldSubject && key.Matches(msg, m.Keys.Subject):
		n := len(contact.Subjects)
		if msg.String() == "right" {
			m.subject = (m.subject + 1) % n
		} else if m.subject <= 0 {
			m.subject = n - 1
		} else {
			m.subject--
		}
		m.form.UpdateField("contact", contact.FieldSubject, m.Subject())
		return m, nil

	case field != contact.FieldMessage && msg.String() == "enter":
		m.focus = (m.focus + 1) % len(contactFocus)
		m.applyFocus()
		return m, nil
	}

	var cmd tea.Cmd
	switch field {
	case contact.FieldMessage:
		*m.message, cmd = m.message.Update(msg)
		m.form.UpdateField("contact", field, m.message.Value())
	case contact.FieldSubject:
	default:
		in := m.inputs[field]
		*in, cmd = in.Update(msg)
		m.form.UpdateField("contact", field, in.Value())
	}
	return m, cmd
}

// send submits the message in the background
func (m ContactModel) send() (ContactModel, tea.Cmd) {
	m.submitting = true
	m.Err = nil
	form := m.form
	return m, tea.Batch(
		func() tea.Msg {
			_, err := form.Submit(context.Background())
			return contactDoneMsg{err: err}
		},
		m.Spinner.Tick,
	)
}

// View renders the screen
func (m ContactModel) View() string {
	if m.form == nil {
		return ""
	}
	snap := m.form.Snapshot()
	var b strings.Builder

	b.WriteString(RenderTitle("Contact Us"))
	b.WriteString("\n")
	b.WriteString(ui.RenderContactInfo(m.info))
	b.WriteString("\n\n")

	switch {
	case snap.Completed:
		b.WriteString(RenderSuccess(snap.Message))
		b.WriteString("\n\n")
		if snap.Receipt != nil {
			b.WriteString(RenderSubtitle("Ticket " + snap.Receipt.ID))
		}
		return RenderApplicationContainer(b.String(), m.Help.View(m.Keys), m.Width, m.Height)

	case m.submitting || snap.Submitting:
		b.WriteString(SpinnerStyle.Render(m.Spinner.View() + " Sending your message..."))
		return RenderApplicationContainer(b.String(), m.Help.View(m.Keys), m.Width, m.Height)
	}

	if m.Err != nil && wizard.Classify(m.Err) != wizard.KindIgnored {
		b.WriteString(RenderError(wizard.ShortMessage(m.Err)))
		b.WriteString("\n\n")
	}

	for i, f := range contactFocus {
		var label, value string
		switch f {
		case contact.FieldSubject:
			label = "Subject"
			value = BlurredInputStyle.Render("← choose →")
			if m.subject >= 0 {
				value = contact.Subjects[m.subject].Label
			}
			if i == m.focus {
				value = FocusedInputStyle.Render("‹ " + value + " ›")
			}
		case contact.FieldMessage:
			label = "Message"
			value = m.message.View()
		default:
			label = contactFields[f].Label
			value = m.inputs[f].View()
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, LabelStyle.Render(label), "  ", value))
		b.WriteString("\n")
		if msg, bad := snap.Errors[f]; bad {
			b.WriteString(FieldErrorStyle.Render(msg))
			b.WriteString("\n")
		}
	}

	return RenderApplicationContainer(b.String(), m.Help.View(m.Keys), m.Width, m.Height)
}
