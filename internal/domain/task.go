// Package domain contains core business entities and interfaces.
package domain

import "time"

// Task represents a planned piece of work owned by the store.
// Fields are ordered to minimize memory padding.
type Task struct {
	Created     time.Time `json:"created_at"`            // Creation time reported by the store
	Updated     time.Time `json:"updated_at"`            // Last update reported by the store
	DueDate     Date      `json:"due_date"`              // Due date (required)
	Title       string    `json:"title"`                 // Title (required)
	Description string    `json:"description,omitempty"` // Description (optional)
	Subject     string    `json:"subject,omitempty"`     // Subject, e.g. "Historia" (optional)
	Type        string    `json:"type,omitempty"`        // Evaluation type (optional)
	Priority    Priority  `json:"priority"`              // Priority
	Status      Status    `json:"status"`                // Lifecycle status set by the store
	Subtasks    []Subtask `json:"subtasks,omitempty"`    // Current subtasks, in display order
	Progress    float64   `json:"progress"`              // Progress reported by the store
	StoreHours  float64   `json:"total_hours"`           // Total hours as last reported by the store
	ID          int       `json:"id"`                    // Store-assigned ID
}

// TotalHours returns the sum of the task's subtask hours.
// When the task carries no subtasks, the store-reported total is returned.
func (t *Task) TotalHours() float64 {
	if len(t.Subtasks) == 0 {
		return t.StoreHours
	}
	return SumHours(t.Subtasks)
}

// SumHours returns the sum of NeededHours over subtasks.
func SumHours(subtasks []Subtask) float64 {
	total := 0.0
	for _, s := range subtasks {
		total += s.NeededHours
	}
	return total
}

// TaskInput holds the fields of a task to be created.
// Fields are ordered to minimize memory padding.
type TaskInput struct {
	DueDate     Date
	Title       string
	Description string
	Subject     string
	Type        string
	Priority    Priority
}

// SubtaskValues holds the user-editable fields of a subtask.
// Fields are ordered to minimize memory padding.
type SubtaskValues struct {
	PlanificationDate Date    `json:"planification_date"`
	Description       string  `json:"description"`
	NeededHours       float64 `json:"needed_hours"`
}

// Subtask is a subtask persisted by the store.
// Fields are ordered to minimize memory padding.
type Subtask struct {
	Task *TaskRef `json:"task,omitempty"` // Parent task summary, when the store embeds it
	SubtaskValues
	Status Status `json:"status,omitempty"` // Lifecycle status set by the store
	ID     int    `json:"id"`               // Store-assigned ID
	TaskID int    `json:"-"`                // Owning task ID
}

// IsCompleted reports whether the store has marked the subtask completed.
func (s *Subtask) IsCompleted() bool {
	return s.Status == StatusCompleted
}

// TaskRef is the summary of a parent task embedded in subtask listings.
// Fields are ordered to minimize memory padding.
type TaskRef struct {
	DueDate    Date     `json:"due_date"`
	Title      string   `json:"title"`
	Subject    string   `json:"subject,omitempty"`
	Type       string   `json:"type,omitempty"`
	Priority   Priority `json:"priority,omitempty"`
	Status     Status   `json:"status,omitempty"`
	TotalHours float64  `json:"total_hours"`
	ID         int      `json:"id"`
}

// SubtaskFilter selects subtasks for the today view.
type SubtaskFilter struct {
	Date   Date   // Planification date to match
	Status Status // Status to match (empty = any)
}
