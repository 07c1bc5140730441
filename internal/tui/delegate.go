package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/studyplan/planner/internal/domain"
)

type taskItem struct {
	task domain.Task
}

func (t taskItem) FilterValue() string {
	return t.task.Title + " " + t.task.Subject
}

// escapeNewlines replaces newline characters with spaces for single-line display.
func escapeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

// fit truncates s to width cells with an ellipsis.
func fit(s string, width int) string {
	if width < 4 {
		width = 4
	}
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "...")
	}
	return s
}

type taskDelegate struct {
	styles Styles
}

func newTaskDelegate(styles Styles) taskDelegate {
	return taskDelegate{styles: styles}
}

func (d taskDelegate) Height() int {
	return 2
}

func (d taskDelegate) Spacing() int {
	return 1
}

func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a task as a title line and a detail line:
//
//	> #12  ○ Ensayo de historia
//	       20 mar 2025 · Alta · Historia · 3.5h
func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(taskItem)
	if !ok {
		return
	}
	task := ti.task
	selected := index == m.Index()

	indicator := " "
	rowStyle := d.styles.Row
	if selected {
		indicator = d.styles.Cursor.Render(">")
		rowStyle = d.styles.RowSelected
	}

	const prefixWidth = 11
	listWidth := m.Width()
	title := fit(escapeNewlines(task.Title), listWidth-prefixWidth-2)

	line := fmt.Sprintf("%s %s %s %s",
		indicator,
		d.styles.RowID.Render(fmt.Sprintf("#%d", task.ID)),
		d.styles.StatusStyle(task.Status).Render(StatusIcon(task.Status)),
		rowStyle.Render(title),
	)
	_, _ = fmt.Fprintln(w, line)

	parts := []string{
		domain.FormatDueDate(task.DueDate),
		d.styles.PriorityStyle(task.Priority).Render(task.Priority.Display()),
	}
	if task.Subject != "" {
		parts = append(parts, task.Subject)
	}
	parts = append(parts, domain.FormatHours(task.TotalHours()))

	detail := strings.Repeat(" ", prefixWidth-2) + strings.Join(parts, " · ")
	_, _ = fmt.Fprint(w, d.styles.RowMuted.Render(detail))
}
