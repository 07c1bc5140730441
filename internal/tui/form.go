package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studyplan/planner/internal/domain"
)

// Task form fields that are not validated and so have no domain field name.
const (
	fieldSubject domain.Field = "subject"
	fieldType    domain.Field = "type"
)

// fieldSpec describes one input of a form.
type fieldSpec struct {
	field       domain.Field
	label       string
	placeholder string
	charLimit   int
}

// form is an ordered group of text inputs with a single focused input.
type form struct {
	specs  []fieldSpec
	inputs []textinput.Model
	focus  int
}

func newForm(specs ...fieldSpec) form {
	inputs := make([]textinput.Model, len(specs))
	for i, s := range specs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = s.placeholder
		ti.CharLimit = s.charLimit
		inputs[i] = ti
	}
	f := form{specs: specs, inputs: inputs}
	f.Focus(0)
	return f
}

func newTaskForm() form {
	return newForm(
		fieldSpec{field: domain.FieldTitle, label: "Nombre", placeholder: "Ensayo de historia", charLimit: domain.TitleMaxLen},
		fieldSpec{field: domain.FieldDueDate, label: "Fecha límite", placeholder: domain.DateLayout, charLimit: 10},
		fieldSpec{field: domain.FieldPriority, label: "Prioridad", placeholder: "low / medium / high", charLimit: 6},
		fieldSpec{field: fieldSubject, label: "Materia", placeholder: "Historia", charLimit: 100},
		fieldSpec{field: fieldType, label: "Tipo", placeholder: "Ensayo, examen...", charLimit: 100},
		fieldSpec{field: domain.FieldDescription, label: "Descripción", placeholder: "(opcional)", charLimit: 1000},
	)
}

func newSubtaskForm() form {
	return newForm(
		fieldSpec{field: domain.FieldDescription, label: "Descripción", placeholder: "Leer capítulo 3", charLimit: domain.DescriptionMaxLen},
		fieldSpec{field: domain.FieldPlanificationDate, label: "Fecha", placeholder: domain.DateLayout, charLimit: 10},
		fieldSpec{field: domain.FieldNeededHours, label: "Horas", placeholder: "1.5", charLimit: 5},
	)
}

// Focus focuses input i and blurs the others.
func (f *form) Focus(i int) {
	if len(f.inputs) == 0 {
		return
	}
	f.focus = (i%len(f.inputs) + len(f.inputs)) % len(f.inputs)
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

// Next moves focus to the next input. It reports false when focus wrapped around.
func (f *form) Next() bool {
	f.Focus(f.focus + 1)
	return f.focus != 0
}

// Prev moves focus to the previous input.
func (f *form) Prev() {
	f.Focus(f.focus - 1)
}

// Value returns the raw value of field.
func (f *form) Value(field domain.Field) string {
	for i, s := range f.specs {
		if s.field == field {
			return f.inputs[i].Value()
		}
	}
	return ""
}

// SetValue replaces the value of field.
func (f *form) SetValue(field domain.Field, value string) {
	for i, s := range f.specs {
		if s.field == field {
			f.inputs[i].SetValue(value)
		}
	}
}

// Reset clears every input and focuses the first one.
func (f *form) Reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	f.Focus(0)
}

// Update routes msg to the focused input. It returns the field whose value changed, if any.
func (f *form) Update(msg tea.Msg) (tea.Cmd, domain.Field, bool) {
	if len(f.inputs) == 0 {
		return nil, "", false
	}
	before := f.inputs[f.focus].Value()
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	after := f.inputs[f.focus].Value()
	return cmd, f.specs[f.focus].field, before != after
}

// taskFields returns the task form values.
func (f *form) taskFields() domain.TaskFields {
	return domain.TaskFields{
		Title:       f.Value(domain.FieldTitle),
		DueDate:     f.Value(domain.FieldDueDate),
		Priority:    f.Value(domain.FieldPriority),
		Subject:     f.Value(fieldSubject),
		Type:        f.Value(fieldType),
		Description: f.Value(domain.FieldDescription),
	}
}

// subtaskFields returns the subtask form values.
func (f *form) subtaskFields() domain.SubtaskFields {
	return domain.SubtaskFields{
		Description:       f.Value(domain.FieldDescription),
		PlanificationDate: f.Value(domain.FieldPlanificationDate),
		NeededHours:       f.Value(domain.FieldNeededHours),
	}
}

// loadSubtask fills the subtask form from raw fields.
func (f *form) loadSubtask(sf domain.SubtaskFields) {
	f.SetValue(domain.FieldDescription, sf.Description)
	f.SetValue(domain.FieldPlanificationDate, sf.PlanificationDate)
	f.SetValue(domain.FieldNeededHours, sf.NeededHours)
	f.Focus(0)
}

// View renders one line per input with its error, if any, below it.
// When active is false no input is shown as focused.
func (f *form) View(s Styles, errs domain.ValidationErrors, active bool) string {
	var b strings.Builder
	for i, spec := range f.specs {
		label := s.FieldLabel
		if active && i == f.focus {
			label = s.FieldLabelFocused
		}
		b.WriteString(label.Render(spec.label))
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
		if msg, ok := errs[spec.field]; ok {
			b.WriteString(s.FieldError.Render(msg))
			b.WriteString("\n")
		}
	}
	return b.String()
}
