package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Field is one labelled text input of a Form.
type Field struct {
	Label    string
	Required bool
	// Validate checks the trimmed value; nil accepts anything.
	Validate func(string) error

	input textinput.Model
}

// Form is a vertical list of fields with Tab navigation. Enter on the last
// field submits after validation; Esc cancels.
type Form struct {
	title     string
	fields    []*Field
	focus     int
	submitted bool
	cancelled bool
	err       string
	styles    Styles
}

// NewForm creates an empty form.
func NewForm(title string, styles Styles) *Form {
	return &Form{title: title, styles: styles}
}

// AddField appends a field. The first field added gets focus.
func (f *Form) AddField(label, placeholder string, required bool, validate func(string) error) *Form {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = 100
	in.Width = 40
	in.Cursor.SetMode(cursor.CursorStatic)

	field := &Field{Label: label, Required: required, Validate: validate, input: in}
	f.fields = append(f.fields, field)
	if len(f.fields) == 1 {
		field.input.Focus()
	}
	return f
}

// Update handles navigation keys and forwards everything else to the
// focused input.
func (f *Form) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return f.updateFocused(msg)
	}

	switch key.String() {
	case "tab", "down":
		return f.move(1)
	case "shift+tab", "up":
		return f.move(-1)
	case "esc":
		f.cancelled = true
		return nil
	case "ctrl+s":
		f.submit()
		return nil
	case "enter":
		if f.focus == len(f.fields)-1 {
			f.submit()
			return nil
		}
		return f.move(1)
	}
	return f.updateFocused(msg)
}

func (f *Form) updateFocused(msg tea.Msg) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	field := f.fields[f.focus]
	field.input, cmd = field.input.Update(msg)
	return cmd
}

func (f *Form) move(delta int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	return f.fields[f.focus].input.Focus()
}

func (f *Form) submit() {
	for i, field := range f.fields {
		v := strings.TrimSpace(field.input.Value())
		var err error
		switch {
		case field.Required && v == "":
			err = fmt.Errorf("required")
		case field.Validate != nil && v != "":
			err = field.Validate(v)
		}
		if err != nil {
			f.err = field.Label + ": " + err.Error()
			f.fields[f.focus].input.Blur()
			f.focus = i
			f.fields[i].input.Focus()
			return
		}
	}
	f.err = ""
	f.submitted = true
}

// Value returns the trimmed value of the field with label.
func (f *Form) Value(label string) string {
	for _, field := range f.fields {
		if field.Label == label {
			return strings.TrimSpace(field.input.Value())
		}
	}
	return ""
}

// SetValue sets the value of the field with label.
func (f *Form) SetValue(label, value string) {
	for _, field := range f.fields {
		if field.Label == label {
			field.input.SetValue(value)
		}
	}
}

// IsSubmitted returns true if the form was submitted and validated.
func (f *Form) IsSubmitted() bool {
	return f.submitted
}

// IsCancelled returns true if the form was cancelled.
func (f *Form) IsCancelled() bool {
	return f.cancelled
}

// SetError shows err and reopens the form for editing.
func (f *Form) SetError(err string) {
	f.err = err
	f.submitted = false
}

// Err returns the message currently shown.
func (f *Form) Err() string {
	return f.err
}

// View renders the form.
func (f *Form) View() string {
	var b strings.Builder

	b.WriteString(f.styles.Title.Render(fmt.Sprintf("═══ %s ═══", strings.ToUpper(f.title))))
	b.WriteString("\n\n")

	for i, field := range f.fields {
		label := field.Label
		if field.Required {
			label += "*"
		}
		labelStyle := f.styles.Label
		if i == f.focus {
			labelStyle = f.styles.Accent
		}
		b.WriteString(labelStyle.Width(18).Render(label + ":"))
		b.WriteString(" ")
		b.WriteString(field.input.View())
		b.WriteString("\n")
	}

	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(f.styles.Error.Render("Error: " + f.err))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(f.styles.Muted.Render("Tab:Next  Shift+Tab:Prev  Enter:Save  Esc:Cancel"))

	return b.String()
}
