package domain

import (
	"context"
	"time"
)

// TaskStore is the remote persistence boundary for tasks and subtasks.
// Every call is a request/response pair; a failure is reported as a non-nil error,
// never as an empty result.
type TaskStore interface {
	// CreateTask creates a task and returns it with its store-assigned ID.
	CreateTask(ctx context.Context, in TaskInput) (*Task, error)

	// GetTask returns a task including its current subtasks.
	// Returns ErrTaskNotFound if the task does not exist.
	GetTask(ctx context.Context, id int) (*Task, error)

	// ListTasks returns all tasks of the configured user.
	ListTasks(ctx context.Context) ([]Task, error)

	// DeleteTask removes a task and, with it, all its subtasks.
	DeleteTask(ctx context.Context, id int) error

	// CreateSubtask creates a subtask owned by taskID.
	CreateSubtask(ctx context.Context, taskID int, v SubtaskValues) (*Subtask, error)

	// UpdateSubtask replaces the editable fields of subtask id.
	UpdateSubtask(ctx context.Context, id, taskID int, v SubtaskValues) (*Subtask, error)

	// DeleteSubtask removes a subtask.
	DeleteSubtask(ctx context.Context, id int) error

	// ListTodaySubtasks returns the configured user's subtasks matching the filter.
	ListTodaySubtasks(ctx context.Context, filter SubtaskFilter) ([]Subtask, error)
}

// StoreInitializer initializes a local data store.
type StoreInitializer interface {
	// Initialize creates the store if it doesn't exist.
	Initialize() error
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Calendar answers what day it is for the user.
type Calendar interface {
	// Today returns the current date in the user's timezone.
	Today() Date
}

// ZonedCalendar implements Calendar for a fixed IANA location.
type ZonedCalendar struct {
	Clock    Clock
	Location *time.Location
}

// NewZonedCalendar returns a calendar reading clock in loc.
func NewZonedCalendar(clock Clock, loc *time.Location) ZonedCalendar {
	if loc == nil {
		loc = time.Local
	}
	return ZonedCalendar{Clock: clock, Location: loc}
}

// Today returns the current date in the calendar's location.
func (c ZonedCalendar) Today() Date {
	return DateOf(c.Clock.Now().In(c.Location))
}

// Logger writes diagnostics. A taskID of 0 means the entry is not tied to a task.
type Logger interface {
	Debug(taskID int, category, msg string)
	Info(taskID int, category, msg string)
	Warn(taskID int, category, msg string)
	Error(taskID int, category, msg string)
}

// NopLogger discards all entries.
type NopLogger struct{}

// Debug discards the entry.
func (NopLogger) Debug(int, string, string) {}

// Info discards the entry.
func (NopLogger) Info(int, string, string) {}

// Warn discards the entry.
func (NopLogger) Warn(int, string, string) {}

// Error discards the entry.
func (NopLogger) Error(int, string, string) {}

// ConfigLoader loads configuration from files.
type ConfigLoader interface {
	// Load returns the merged configuration (project + global + environment).
	Load() (*Config, error)

	// LoadGlobal returns only the global configuration.
	LoadGlobal() (*Config, error)
}

// ConfigManager manages configuration files.
type ConfigManager interface {
	// GetProjectConfigInfo returns information about the project config file.
	GetProjectConfigInfo() ConfigInfo

	// GetGlobalConfigInfo returns information about the global config file.
	GetGlobalConfigInfo() ConfigInfo

	// InitProjectConfig writes the config template to the project config path.
	InitProjectConfig(force bool) (string, error)

	// InitGlobalConfig writes the config template to the global config path.
	InitGlobalConfig(force bool) (string, error)
}
