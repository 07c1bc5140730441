package domain

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Subtask field limits.
const (
	DescriptionMinLen = 5
	DescriptionMaxLen = 300
	MinNeededHours    = 0.5
	MaxNeededHours    = 24.0
)

// TitleMaxLen is the maximum length of a task title.
const TitleMaxLen = 200

// Field names a form field. Subtask fields use the store's attribute names.
type Field string

// Subtask form fields.
const (
	FieldDescription       Field = "description"
	FieldPlanificationDate Field = "planification_date"
	FieldNeededHours       Field = "needed_hours"
)

// Task form fields.
const (
	FieldTitle    Field = "title"
	FieldDueDate  Field = "due_date"
	FieldPriority Field = "priority"
)

// SubtaskFields holds the raw, unvalidated values of a subtask form as typed by the user.
type SubtaskFields struct {
	Description       string
	PlanificationDate string
	NeededHours       string
}

// FieldsOf returns the form representation of v.
func FieldsOf(v SubtaskValues) SubtaskFields {
	return SubtaskFields{
		Description:       v.Description,
		PlanificationDate: v.PlanificationDate.String(),
		NeededHours:       strconv.FormatFloat(v.NeededHours, 'f', -1, 64),
	}
}

// Get returns the raw value of field.
func (f SubtaskFields) Get(field Field) string {
	switch field {
	case FieldDescription:
		return f.Description
	case FieldPlanificationDate:
		return f.PlanificationDate
	case FieldNeededHours:
		return f.NeededHours
	}
	return ""
}

// With returns a copy of f with field set to value.
// Unknown fields leave f unchanged.
func (f SubtaskFields) With(field Field, value string) SubtaskFields {
	switch field {
	case FieldDescription:
		f.Description = value
	case FieldPlanificationDate:
		f.PlanificationDate = value
	case FieldNeededHours:
		f.NeededHours = value
	}
	return f
}

// ValidationErrors maps a field to its error message. A missing key means the field is valid.
type ValidationErrors map[Field]string

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	fields := slices.Sorted(maps.Keys(e))
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field has an error.
func (e ValidationErrors) Has(field Field) bool {
	_, ok := e[field]
	return ok
}

// Clone returns a copy of e.
func (e ValidationErrors) Clone() ValidationErrors {
	if len(e) == 0 {
		return ValidationErrors{}
	}
	return maps.Clone(e)
}

// Err returns e as an error, or nil when there are no errors.
func (e ValidationErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Subtask validation messages.
const (
	MsgDescriptionRequired = "La descripción es obligatoria"
	MsgDescriptionTooShort = "La descripción debe tener al menos 5 caracteres"
	MsgDescriptionTooLong  = "La descripción no puede exceder 300 caracteres"
	MsgDateRequired        = "La fecha es obligatoria"
	MsgDateInvalid         = "La fecha no es válida"
	MsgDateInPast          = "La fecha no puede ser anterior a hoy"
	MsgHoursRequired       = "El tiempo estimado es obligatorio"
	MsgHoursInvalid        = "El tiempo estimado debe ser un número"
	MsgHoursTooLow         = "El tiempo mínimo es 0.5 horas"
	MsgHoursTooHigh        = "La duración no puede superar 24 horas"
)

// ValidateSubtask checks raw subtask fields against the field rules, relative to today.
// Every failing field is reported; no rule short-circuits another field.
func ValidateSubtask(f SubtaskFields, today Date) ValidationErrors {
	errs := ValidationErrors{}

	desc := strings.TrimSpace(f.Description)
	switch n := utf8.RuneCountInString(desc); {
	case n == 0:
		errs[FieldDescription] = MsgDescriptionRequired
	case n < DescriptionMinLen:
		errs[FieldDescription] = MsgDescriptionTooShort
	case n > DescriptionMaxLen:
		errs[FieldDescription] = MsgDescriptionTooLong
	}

	if strings.TrimSpace(f.PlanificationDate) == "" {
		errs[FieldPlanificationDate] = MsgDateRequired
	} else if d, err := ParseDate(f.PlanificationDate); err != nil {
		errs[FieldPlanificationDate] = MsgDateInvalid
	} else if d.Before(today) {
		errs[FieldPlanificationDate] = MsgDateInPast
	}

	raw := strings.TrimSpace(f.NeededHours)
	if raw == "" {
		errs[FieldNeededHours] = MsgHoursRequired
	} else if h, err := strconv.ParseFloat(raw, 64); err != nil || math.IsNaN(h) || math.IsInf(h, 0) {
		errs[FieldNeededHours] = MsgHoursInvalid
	} else if h == 0 {
		errs[FieldNeededHours] = MsgHoursRequired
	} else if h < MinNeededHours {
		errs[FieldNeededHours] = MsgHoursTooLow
	} else if h > MaxNeededHours {
		errs[FieldNeededHours] = MsgHoursTooHigh
	}

	return errs
}

// ParseSubtask validates f and returns the normalized values.
// The description is trimmed. On failure the returned error is a ValidationErrors.
func ParseSubtask(f SubtaskFields, today Date) (SubtaskValues, error) {
	if errs := ValidateSubtask(f, today); len(errs) > 0 {
		return SubtaskValues{}, errs
	}
	// Both parses succeeded during validation.
	d, _ := ParseDate(f.PlanificationDate)
	h, _ := strconv.ParseFloat(strings.TrimSpace(f.NeededHours), 64)
	return SubtaskValues{
		Description:       strings.TrimSpace(f.Description),
		PlanificationDate: d,
		NeededHours:       h,
	}, nil
}

// TaskFields holds the raw values of the task creation form.
// Fields are ordered to minimize memory padding.
type TaskFields struct {
	Title       string
	DueDate     string
	Priority    string
	Subject     string
	Type        string
	Description string
}

// Task validation messages.
const (
	MsgTitleRequired    = "El nombre de la tarea es obligatorio."
	MsgTitleTooLong     = "El nombre de la tarea no puede exceder 200 caracteres."
	MsgDueDateRequired  = "La fecha límite es obligatoria."
	MsgDueDateInvalid   = "La fecha límite no es válida."
	MsgPriorityInvalid  = "La prioridad debe ser low, medium o high."
	MsgTaskSubmitFailed = "Ocurrió un error al guardar la tarea en el servidor."
)

// ParseTask validates the task form and returns the store input.
// Title and due date are plain presence checks; a due date in the past is accepted.
// On failure the returned error is a ValidationErrors holding every failing field.
func ParseTask(f TaskFields) (TaskInput, error) {
	errs := ValidationErrors{}

	title := strings.TrimSpace(f.Title)
	if title == "" {
		errs[FieldTitle] = MsgTitleRequired
	} else if utf8.RuneCountInString(title) > TitleMaxLen {
		errs[FieldTitle] = MsgTitleTooLong
	}

	var due Date
	if strings.TrimSpace(f.DueDate) == "" {
		errs[FieldDueDate] = MsgDueDateRequired
	} else if d, err := ParseDate(f.DueDate); err != nil {
		errs[FieldDueDate] = MsgDueDateInvalid
	} else {
		due = d
	}

	priority, err := ParsePriority(f.Priority)
	if err != nil {
		errs[FieldPriority] = MsgPriorityInvalid
	}

	if len(errs) > 0 {
		return TaskInput{}, errs
	}
	return TaskInput{
		Title:       title,
		DueDate:     due,
		Priority:    priority,
		Subject:     strings.TrimSpace(f.Subject),
		Type:        strings.TrimSpace(f.Type),
		Description: strings.TrimSpace(f.Description),
	}, nil
}
