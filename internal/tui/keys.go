package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the TUI.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Tasks
	New     key.Binding // Create new task
	Plan    key.Binding // Plan subtasks of the selected task
	Edit    key.Binding // Open edit session on the selected task
	Today   key.Binding // Show today's subtasks
	Refresh key.Binding // Reload from the store

	// Forms
	Enter     key.Binding // Submit form / open item
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding // Send drafts or save session

	// Lists of subtasks
	Add        key.Binding // Add item in edit session
	Remove     key.Binding // Remove draft / delete subtask
	DeleteTask key.Binding // Delete the whole task
	MoveUp     key.Binding // Move draft up
	MoveDown   key.Binding // Move draft down
	Grab       key.Binding // Pick up / drop a draft

	// General
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding // Cancel/back
	Confirm key.Binding // Confirm action (in confirm mode)
	Cancel  key.Binding // Cancel action (in confirm mode)
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		Plan: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "plan"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit subtasks"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "ok"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Remove: key.NewBinding(
			key.WithKeys("d", "x", "delete"),
			key.WithHelp("d", "delete"),
		),
		DeleteTask: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete task"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "move down"),
		),
		Grab: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "grab/drop"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "cancel"),
		),
	}
}

// ShortHelp returns keybindings to show in the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.New, k.Plan, k.Edit, k.Today, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Escape},                             // Navigation
		{k.New, k.Plan, k.Edit, k.Today, k.Refresh},                   // Tasks
		{k.NextField, k.PrevField, k.Submit},                          // Forms
		{k.Add, k.Remove, k.DeleteTask, k.MoveUp, k.MoveDown, k.Grab}, // Subtasks
		{k.Help, k.Quit},                                              // General
	}
}

// modeHelp returns the footer hints for mode.
func (k KeyMap) modeHelp(mode Mode, listFocus bool) []key.Binding {
	switch mode {
	case ModeNewTask:
		return []key.Binding{k.NextField, k.Enter, k.Escape}
	case ModePlan:
		if listFocus {
			return []key.Binding{k.Up, k.Down, k.MoveUp, k.MoveDown, k.Grab, k.Remove, k.NextField, k.Submit, k.Escape}
		}
		return []key.Binding{k.NextField, k.Enter, k.Submit, k.Escape}
	case ModeEdit:
		return []key.Binding{k.Up, k.Down, k.Enter, k.Add, k.Remove, k.DeleteTask, k.Submit, k.Escape}
	case ModeEditItem:
		return []key.Binding{k.NextField, k.Enter, k.Escape}
	case ModeConfirmDelete:
		return []key.Binding{k.Confirm, k.Cancel}
	case ModeToday:
		return []key.Binding{k.Refresh, k.Escape}
	case ModeTasks, ModeHelp:
	}
	return k.ShortHelp()
}
