package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/studyplan/planner/internal/domain"
)

// ShowTaskInput contains the parameters for showing a task.
type ShowTaskInput struct {
	TaskID int
}

// ShowTaskOutput contains the task with its subtasks.
type ShowTaskOutput struct {
	Task *domain.Task
}

// ShowTask is the use case for displaying a task.
type ShowTask struct {
	store domain.TaskStore
}

// NewShowTask creates a new ShowTask use case.
func NewShowTask(store domain.TaskStore) *ShowTask {
	return &ShowTask{store: store}
}

// Execute fetches the task.
func (uc *ShowTask) Execute(ctx context.Context, in ShowTaskInput) (*ShowTaskOutput, error) {
	task, err := getTask(ctx, uc.store, in.TaskID)
	if err != nil {
		return nil, err
	}
	return &ShowTaskOutput{Task: task}, nil
}

// getTask fetches a task, keeping ErrTaskNotFound matchable.
func getTask(ctx context.Context, store domain.TaskStore, id int) (*domain.Task, error) {
	task, err := store.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, fmt.Errorf("task #%d: %w", id, domain.ErrTaskNotFound)
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, fmt.Errorf("task #%d: %w", id, domain.ErrTaskNotFound)
	}
	return task, nil
}
