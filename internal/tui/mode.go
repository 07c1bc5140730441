// Package tui provides the terminal user interface for the planner.
package tui

// Mode represents the current UI mode.
type Mode int

const (
	ModeTasks         Mode = iota // Task list navigation
	ModeNewTask                   // Task creation form
	ModePlan                      // Draft subtask planning for the active task
	ModeEdit                      // Edit session item list
	ModeEditItem                  // Edit session item form
	ModeConfirmDelete             // Delete confirmation dialog
	ModeToday                     // Subtasks planned for today
	ModeHelp                      // Help overlay
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeTasks:
		return "tasks"
	case ModeNewTask:
		return "new_task"
	case ModePlan:
		return "plan"
	case ModeEdit:
		return "edit"
	case ModeEditItem:
		return "edit_item"
	case ModeConfirmDelete:
		return "confirm_delete"
	case ModeToday:
		return "today"
	case ModeHelp:
		return "help"
	default:
		return "unknown"
	}
}

// IsInputMode returns true if the mode always routes printable keys to a form.
// ModePlan accepts text only while its form has focus.
func (m Mode) IsInputMode() bool {
	switch m {
	case ModeNewTask, ModeEditItem:
		return true
	case ModeTasks, ModePlan, ModeEdit, ModeConfirmDelete, ModeToday, ModeHelp:
		return false
	}
	return false
}
