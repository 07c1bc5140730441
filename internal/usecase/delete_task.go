package usecase

import (
	"context"
	"fmt"

	"github.com/studyplan/planner/internal/domain"
)

// DeleteTaskInput contains the parameters for deleting a task outside an edit session.
type DeleteTaskInput struct {
	TaskID int
}

// DeleteTaskOutput is empty; the task and its subtasks are gone on success.
type DeleteTaskOutput struct{}

// DeleteTask is the use case for deleting a task together with its subtasks.
type DeleteTask struct {
	store  domain.TaskStore
	logger domain.Logger
}

// NewDeleteTask creates a new DeleteTask use case.
func NewDeleteTask(store domain.TaskStore, logger domain.Logger) *DeleteTask {
	return &DeleteTask{
		store:  store,
		logger: logger,
	}
}

// Execute deletes the task.
func (uc *DeleteTask) Execute(ctx context.Context, in DeleteTaskInput) (*DeleteTaskOutput, error) {
	if err := uc.store.DeleteTask(ctx, in.TaskID); err != nil {
		return nil, fmt.Errorf("delete task #%d: %w", in.TaskID, err)
	}

	if uc.logger != nil {
		uc.logger.Info(in.TaskID, "task", "deleted")
	}

	return &DeleteTaskOutput{}, nil
}
