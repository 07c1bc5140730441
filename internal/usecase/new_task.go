// Package usecase contains application use cases.
package usecase

import (
	"context"
	"fmt"

	"github.com/studyplan/planner/internal/domain"
)

// CreateTaskInput contains the raw task form.
type CreateTaskInput struct {
	Fields domain.TaskFields
}

// CreateTaskOutput contains the created task.
type CreateTaskOutput struct {
	Task *domain.Task // The task with its store-assigned ID
}

// CreateTask is the use case for creating a task.
type CreateTask struct {
	store  domain.TaskStore
	logger domain.Logger
}

// NewCreateTask creates a new CreateTask use case.
func NewCreateTask(store domain.TaskStore, logger domain.Logger) *CreateTask {
	return &CreateTask{
		store:  store,
		logger: logger,
	}
}

// Execute validates the form and creates the task.
// A form error is returned as domain.ValidationErrors and nothing is sent to the store.
func (uc *CreateTask) Execute(ctx context.Context, in CreateTaskInput) (*CreateTaskOutput, error) {
	input, err := domain.ParseTask(in.Fields)
	if err != nil {
		return nil, err
	}

	task, err := uc.store.CreateTask(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	if uc.logger != nil {
		uc.logger.Info(task.ID, "task", fmt.Sprintf("created: %q due %s", task.Title, task.DueDate))
	}

	return &CreateTaskOutput{Task: task}, nil
}
