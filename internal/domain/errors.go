package domain

import "errors"

// Domain errors.
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrSubtaskNotFound  = errors.New("subtask not found")
	ErrEmptyTitle       = errors.New("title cannot be empty")
	ErrEmptyDueDate     = errors.New("due date cannot be empty")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrNotEditing       = errors.New("no subtask is being edited")
	ErrDeletePending    = errors.New("a delete confirmation is already pending")
	ErrNoDeletePending  = errors.New("no delete confirmation is pending")
	ErrNoDrafts         = errors.New("no subtasks to submit")
	ErrEmptyFile        = errors.New("file is empty")
	ErrNoSubtasksInFile = errors.New("no subtasks found in file")
	ErrConfigExists     = errors.New("config file already exists")
	ErrInvalidConfig    = errors.New("invalid config")
	ErrUnknownBackend   = errors.New("unknown store backend")
	ErrInvalidTimezone  = errors.New("invalid timezone")
)
