package httpstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/studyplan/planner/internal/domain"
)

// dueDateSuffix is appended to task due dates; the REST service stores them as end-of-day timestamps.
const dueDateSuffix = "T23:59:59Z"

// taskPayload is the body of POST /api/task/.
type taskPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Subject     string `json:"subject,omitempty"`
	Type        string `json:"type,omitempty"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	User        int    `json:"user"`
}

// subtaskCreatePayload is the body of POST /api/subtasks/.
type subtaskCreatePayload struct {
	Description       string  `json:"description"`
	PlanificationDate string  `json:"planification_date"`
	NeededHours       float64 `json:"needed_hours"`
	Task              int     `json:"task"`
}

// subtaskPatchPayload is the body of PATCH /api/subtasks/{id}/.
type subtaskPatchPayload struct {
	Description       string  `json:"description"`
	PlanificationDate string  `json:"planification_date"`
	NeededHours       float64 `json:"needed_hours"`
	TaskID            int     `json:"task_id,omitempty"`
}

// wireTask is a task as returned by the REST service.
// Fields are ordered to minimize memory padding.
type wireTask struct {
	Created     time.Time     `json:"created_at"`
	Updated     time.Time     `json:"updated_at"`
	DueDate     wireDate      `json:"due_date"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Subject     string        `json:"subject"`
	Type        string        `json:"type"`
	Priority    string        `json:"priority"`
	Status      string        `json:"status"`
	Subtasks    []wireSubtask `json:"subtasks"`
	Progress    float64       `json:"progress"`
	TotalHours  float64       `json:"total_hours"`
	ID          int           `json:"id"`
}

// wireSubtask is a subtask as returned by the REST service.
// Fields are ordered to minimize memory padding.
type wireSubtask struct {
	Task              wireTaskField `json:"task"`
	PlanificationDate wireDate      `json:"planification_date"`
	Description       string        `json:"description"`
	Status            string        `json:"status"`
	NeededHours       float64       `json:"needed_hours"`
	ID                int           `json:"id"`
}

// wireTaskRef is the parent summary embedded in subtask responses.
// Fields are ordered to minimize memory padding.
type wireTaskRef struct {
	DueDate    wireDate `json:"due_date"`
	Title      string   `json:"title"`
	Subject    string   `json:"subject"`
	Type       string   `json:"type"`
	Priority   string   `json:"priority"`
	Status     string   `json:"status"`
	TotalHours float64  `json:"total_hours"`
	ID         int      `json:"id"`
}

// wireTaskField holds the "task" member of a subtask, which the service
// returns either as a bare ID or as an embedded summary.
type wireTaskField struct {
	Ref *wireTaskRef
	ID  int
}

// UnmarshalJSON accepts a number, an object or null.
func (f *wireTaskField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = wireTaskField{}
		return nil
	case len(b) > 0 && b[0] == '{':
		var ref wireTaskRef
		if err := json.Unmarshal(b, &ref); err != nil {
			return err
		}
		*f = wireTaskField{Ref: &ref, ID: ref.ID}
		return nil
	default:
		var id int
		if err := json.Unmarshal(b, &id); err != nil {
			return fmt.Errorf("subtask task: %w", err)
		}
		*f = wireTaskField{ID: id}
		return nil
	}
}

// wireDate accepts "YYYY-MM-DD" and full timestamps, keeping only the calendar date.
type wireDate domain.Date

// UnmarshalJSON parses a date or timestamp string.
func (d *wireDate) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = wireDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if len(s) > 10 && strings.ContainsAny(s[10:11], "T ") {
		s = s[:10]
	}
	if s == "" {
		*d = wireDate{}
		return nil
	}
	parsed, err := domain.ParseDate(s)
	if err != nil {
		return err
	}
	*d = wireDate(parsed)
	return nil
}

func (w *wireTask) toDomain() *domain.Task {
	t := &domain.Task{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		DueDate:     domain.Date(w.DueDate),
		Subject:     w.Subject,
		Type:        w.Type,
		Priority:    domain.Priority(w.Priority),
		Status:      domain.Status(w.Status),
		Progress:    w.Progress,
		StoreHours:  w.TotalHours,
		Created:     w.Created,
		Updated:     w.Updated,
	}
	for i := range w.Subtasks {
		st := w.Subtasks[i].toDomain()
		if st.TaskID == 0 {
			st.TaskID = w.ID
		}
		t.Subtasks = append(t.Subtasks, *st)
	}
	return t
}

func (w *wireSubtask) toDomain() *domain.Subtask {
	st := &domain.Subtask{
		ID:     w.ID,
		TaskID: w.Task.ID,
		SubtaskValues: domain.SubtaskValues{
			Description:       w.Description,
			PlanificationDate: domain.Date(w.PlanificationDate),
			NeededHours:       w.NeededHours,
		},
		Status: domain.Status(w.Status),
	}
	if r := w.Task.Ref; r != nil {
		st.Task = &domain.TaskRef{
			ID:         r.ID,
			Title:      r.Title,
			DueDate:    domain.Date(r.DueDate),
			Subject:    r.Subject,
			Type:       r.Type,
			Priority:   domain.Priority(r.Priority),
			Status:     domain.Status(r.Status),
			TotalHours: r.TotalHours,
		}
	}
	return st
}
