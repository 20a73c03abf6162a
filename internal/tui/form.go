package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/muurk/midnightbrew/internal/wizard"
)

// fieldSpec describes how a form field is entered
type fieldSpec struct {
	Label       string
	Placeholder string
	Secret      bool
	CharLimit   int
}

// newInput creates the text input for a field
func newInput(spec fieldSpec) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = spec.Placeholder
	in.CharLimit = spec.CharLimit
	if in.CharLimit == 0 {
		in.CharLimit = 128
	}
	in.Width = 40
	in.PromptStyle = FocusedInputStyle
	in.TextStyle = FocusedInputStyle
	if spec.Secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return in
}

// fieldSet holds one text input per field and tracks focus within the
// fields of the current step.
type fieldSet struct {
	specs  map[string]fieldSpec
	inputs map[string]*textinput.Model
	order  []string // Fields of the current step
	focus  int
}

func newFieldSet(specs map[string]fieldSpec) fieldSet {
	fs := fieldSet{specs: specs, inputs: make(map[string]*textinput.Model, len(specs))}
	for f, spec := range specs {
		in := newInput(spec)
		fs.inputs[f] = &in
	}
	return fs
}

// show switches to the fields of step and focuses the first one, or the
// first field with an error.
func (fs *fieldSet) show(step wizard.Step, errs wizard.Errors) {
	fs.order = step.Fields
	fs.focus = 0
	for i, f := range fs.order {
		if _, bad := errs[f]; bad {
			fs.focus = i
			break
		}
	}
	fs.applyFocus()
}

func (fs *fieldSet) applyFocus() {
	for i, f := range fs.order {
		in := fs.inputs[f]
		if in == nil {
			continue
		}
		if i == fs.focus {
			in.Focus()
			in.TextStyle = FocusedInputStyle
		} else {
			in.Blur()
			in.TextStyle = BlurredInputStyle
		}
	}
}

// move shifts focus by delta, wrapping around
func (fs *fieldSet) move(delta int) {
	if len(fs.order) == 0 {
		return
	}
	fs.focus = (fs.focus + delta + len(fs.order)) % len(fs.order)
	fs.applyFocus()
}

// focused returns the focused field name and input
func (fs *fieldSet) focused() (string, *textinput.Model) {
	if fs.focus >= len(fs.order) {
		return "", nil
	}
	f := fs.order[fs.focus]
	return f, fs.inputs[f]
}

// onLastField reports whether focus is on the last field of the step
func (fs *fieldSet) onLastField() bool {
	return fs.focus >= len(fs.order)-1
}
