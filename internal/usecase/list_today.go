package usecase

import (
	"context"
	"fmt"

	"github.com/studyplan/planner/internal/domain"
)

// ListTodaySubtasksInput contains the parameters for the today view.
type ListTodaySubtasksInput struct {
	Date   domain.Date   // Day to list (zero = today in the user's timezone)
	Status domain.Status // Status to match (empty = pending)
}

// ListTodaySubtasksOutput contains the day's subtasks.
type ListTodaySubtasksOutput struct {
	Subtasks   []domain.Subtask
	Date       domain.Date
	TotalHours float64
}

// ListTodaySubtasks is the use case for listing the subtasks planned for a day.
type ListTodaySubtasks struct {
	store domain.TaskStore
	cal   domain.Calendar
}

// NewListTodaySubtasks creates a new ListTodaySubtasks use case.
func NewListTodaySubtasks(store domain.TaskStore, cal domain.Calendar) *ListTodaySubtasks {
	return &ListTodaySubtasks{
		store: store,
		cal:   cal,
	}
}

// Execute lists the subtasks.
func (uc *ListTodaySubtasks) Execute(ctx context.Context, in ListTodaySubtasksInput) (*ListTodaySubtasksOutput, error) {
	filter := domain.SubtaskFilter{Date: in.Date, Status: in.Status}
	if filter.Date.IsZero() {
		filter.Date = uc.cal.Today()
	}
	if filter.Status == "" {
		filter.Status = domain.StatusPending
	}

	subtasks, err := uc.store.ListTodaySubtasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list subtasks for %s: %w", filter.Date, err)
	}

	return &ListTodaySubtasksOutput{
		Subtasks:   subtasks,
		Date:       filter.Date,
		TotalHours: domain.SumHours(subtasks),
	}, nil
}
