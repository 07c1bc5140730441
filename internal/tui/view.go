package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/planning"
)

// View renders the TUI.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.mode {
	case ModeHelp:
		content = m.viewHelp()
	case ModeNewTask:
		content = m.viewNewTask()
	case ModePlan:
		content = m.viewPlan()
	case ModeEdit, ModeEditItem, ModeConfirmDelete:
		content = m.viewEdit()
	case ModeToday:
		content = m.viewToday()
	case ModeTasks:
		content = m.viewTasks()
	}

	var b strings.Builder
	b.WriteString(content)
	if toast := m.viewToast(); toast != "" {
		b.WriteString("\n")
		b.WriteString(toast)
	}
	b.WriteString("\n")
	b.WriteString(m.viewFooter())

	return m.styles.App.Render(b.String())
}

// viewHeader renders a title with right-aligned info, and the spinner while busy.
func (m *Model) viewHeader(title, info string) string {
	left := m.styles.HeaderText.Render(title)
	if m.busy {
		left += " " + m.spinner.View()
	}
	right := m.styles.HeaderInfo.Render(info)

	spacing := m.contentWidth() - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}
	return m.styles.Header.Render(left + strings.Repeat(" ", spacing) + right)
}

func (m *Model) viewTasks() string {
	var b strings.Builder
	b.WriteString(m.viewHeader("Tareas", fmt.Sprintf("%d tareas", len(m.tasks))))
	b.WriteString("\n")

	if len(m.tasks) == 0 {
		b.WriteString(m.styles.RowMuted.Render("No hay tareas. Pulsa n para crear una."))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(m.taskList.View())
	b.WriteString("\n")
	return b.String()
}

func (m *Model) viewNewTask() string {
	var b strings.Builder
	b.WriteString(m.viewHeader("Nueva tarea", ""))
	b.WriteString("\n")
	b.WriteString(m.taskForm.View(m.styles, m.taskErrs, true))
	return b.String()
}

func (m *Model) viewPlan() string {
	var b strings.Builder
	b.WriteString(m.viewHeader("Planificar: "+m.activeTitle, fmt.Sprintf("%d actividades", len(m.drafts))))
	b.WriteString("\n")

	b.WriteString(m.subForm.View(m.styles, m.formErrs, !m.listFocus))
	if m.err != nil {
		b.WriteString(m.styles.ErrorMsg.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Section.Render("Actividades"))
	b.WriteString("\n")
	if len(m.drafts) == 0 {
		b.WriteString(m.styles.RowMuted.Render("Aún no hay actividades."))
		b.WriteString("\n")
	}
	for i, d := range m.drafts {
		selected := m.listFocus && i == m.cursor
		b.WriteString(m.renderSubtaskRow(d.SubtaskValues, "", selected, d.ID == m.grabbed))
		b.WriteString("\n")
	}
	b.WriteString(m.viewTotal(m.draftTotal))
	return b.String()
}

func (m *Model) viewEdit() string {
	var b strings.Builder
	b.WriteString(m.viewHeader("Editar: "+m.sessionTitle, fmt.Sprintf("%d subtareas", len(m.items))))
	b.WriteString("\n")

	if len(m.items) == 0 {
		b.WriteString(m.styles.RowMuted.Render("Esta tarea no tiene subtareas."))
		b.WriteString("\n")
	}
	for i, it := range m.items {
		b.WriteString(m.renderSubtaskRow(it.SubtaskValues, it.Status, i == m.cursor, false))
		b.WriteString("\n")
	}
	b.WriteString(m.viewTotal(m.itemTotal))

	switch m.mode {
	case ModeEditItem:
		title := "Editar subtarea"
		if m.addingItem {
			title = "Nueva subtarea"
		}
		b.WriteString(m.styles.Section.Render(title))
		b.WriteString("\n")
		b.WriteString(m.subForm.View(m.styles, m.formErrs, true))
	case ModeConfirmDelete:
		b.WriteString("\n")
		b.WriteString(m.viewConfirmDialog())
	case ModeTasks, ModeNewTask, ModePlan, ModeEdit, ModeToday, ModeHelp:
	}
	return b.String()
}

// renderSubtaskRow renders "> 10 mar  1.5h  ○ description".
func (m *Model) renderSubtaskRow(v domain.SubtaskValues, status domain.Status, selected, grabbed bool) string {
	indicator := " "
	style := m.styles.Row
	switch {
	case grabbed:
		indicator = m.styles.Cursor.Render("≡")
		style = m.styles.RowGrabbed
	case selected:
		indicator = m.styles.Cursor.Render(">")
		style = m.styles.RowSelected
	}

	icon := " "
	if status != "" {
		icon = m.styles.StatusStyle(status).Render(StatusIcon(status))
	}

	date := fmt.Sprintf("%-7s", domain.FormatShortDate(v.PlanificationDate))
	hours := fmt.Sprintf("%6s", domain.FormatHours(v.NeededHours))
	const prefixWidth = 22
	desc := truncate.StringWithTail(escapeNewlines(v.Description), uint(max(m.contentWidth()-prefixWidth, 10)), "…")

	return fmt.Sprintf("%s %s %s %s %s", indicator, m.styles.RowMuted.Render(date), hours, icon, style.Render(desc))
}

func (m *Model) viewTotal(hours float64) string {
	return m.styles.Total.Render("Total: "+domain.FormatHoursLong(hours)) + "\n"
}

func (m *Model) viewConfirmDialog() string {
	var prompt string
	if m.pendingDelete.IsTask() {
		prompt = fmt.Sprintf("¿Eliminar la tarea «%s» y todas sus subtareas?", m.sessionTitle)
	} else if id, ok := m.pendingDelete.Subtask(); ok {
		desc := ""
		for _, it := range m.items {
			if it.ID == id {
				desc = it.Description
			}
		}
		prompt = fmt.Sprintf("¿Eliminar la subtarea «%s»?", desc)
	}

	width := min(m.contentWidth()-6, 60)
	body := wordwrap.String(prompt, width) + "\n\n" + m.styles.Footer.Render("[y] sí   [n] no")
	return m.styles.Dialog.Render(m.styles.DialogTitle.Render("Confirmar") + "\n\n" + body)
}

func (m *Model) viewToday() string {
	var b strings.Builder
	date := domain.Date{}
	if m.today != nil {
		date = m.today.Date
	}
	b.WriteString(m.viewHeader("Hoy, "+domain.FormatLongDate(date), ""))
	b.WriteString("\n")

	if m.today == nil || len(m.today.Subtasks) == 0 {
		b.WriteString(m.styles.RowMuted.Render("No hay actividades planificadas para hoy."))
		b.WriteString("\n")
		return b.String()
	}

	for _, s := range m.today.Subtasks {
		task := ""
		if s.Task != nil {
			task = s.Task.Title
		}
		line := fmt.Sprintf("%6s  %s  %s",
			domain.FormatHours(s.NeededHours),
			m.styles.RowMuted.Render(truncate.StringWithTail(task, 24, "…")),
			s.Description,
		)
		b.WriteString(truncate.StringWithTail(line, uint(m.contentWidth()), "…"))
		b.WriteString("\n")
	}
	b.WriteString(m.viewTotal(m.today.TotalHours))
	return b.String()
}

func (m *Model) viewHelp() string {
	intro := "Crea una tarea, divídela en actividades con fecha y horas estimadas, " +
		"y revisa cada día lo que tienes planificado."
	content := wordwrap.String(intro, min(m.contentWidth()-6, 70)) + "\n\n" + m.help.FullHelpView(m.keys.FullHelp())
	return m.styles.Help.Render(content)
}

func (m *Model) viewToast() string {
	n, ok := m.relay.Current()
	if !ok {
		return ""
	}
	if n.Kind == planning.KindError {
		return m.styles.ToastError.Render(n.Message)
	}
	return m.styles.ToastSuccess.Render(n.Message)
}

func (m *Model) viewFooter() string {
	bindings := m.keys.modeHelp(m.mode, m.listFocus)
	return m.styles.Footer.Render(m.help.ShortHelpView(bindings))
}
