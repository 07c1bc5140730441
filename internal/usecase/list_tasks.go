package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/studyplan/planner/internal/domain"
)

// ListTasksInput contains the parameters for listing tasks.
type ListTasksInput struct {
	Status domain.Status // Filter by status (empty = all)
}

// ListTasksOutput contains the listed tasks.
type ListTasksOutput struct {
	Tasks []domain.Task // Tasks ordered by due date, then ID
}

// ListTasks is the use case for listing tasks.
type ListTasks struct {
	store domain.TaskStore
}

// NewListTasks creates a new ListTasks use case.
func NewListTasks(store domain.TaskStore) *ListTasks {
	return &ListTasks{store: store}
}

// Execute lists the user's tasks.
func (uc *ListTasks) Execute(ctx context.Context, in ListTasksInput) (*ListTasksOutput, error) {
	tasks, err := uc.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	if in.Status != "" {
		tasks = slices.DeleteFunc(tasks, func(t domain.Task) bool { return t.Status != in.Status })
	}
	slices.SortStableFunc(tasks, compareTasks)

	return &ListTasksOutput{Tasks: tasks}, nil
}

func compareTasks(a, b domain.Task) int {
	switch {
	case a.DueDate.Before(b.DueDate):
		return -1
	case a.DueDate.After(b.DueDate):
		return 1
	}
	return a.ID - b.ID
}
