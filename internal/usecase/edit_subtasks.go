package usecase

import (
	"context"
	"fmt"

	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/planning"
)

// OpenEditSessionInput contains the task to edit.
type OpenEditSessionInput struct {
	TaskID int
}

// OpenEditSessionOutput contains the new session.
type OpenEditSessionOutput struct {
	Session *planning.EditSession
}

// OpenEditSession is the use case for starting an edit session.
// The task is always re-fetched so the session starts from the store's state.
type OpenEditSession struct {
	store domain.TaskStore
	cal   domain.Calendar
}

// NewOpenEditSession creates a new OpenEditSession use case.
func NewOpenEditSession(store domain.TaskStore, cal domain.Calendar) *OpenEditSession {
	return &OpenEditSession{
		store: store,
		cal:   cal,
	}
}

// Execute fetches the task and opens a session over its subtasks.
func (uc *OpenEditSession) Execute(ctx context.Context, in OpenEditSessionInput) (*OpenEditSessionOutput, error) {
	task, err := getTask(ctx, uc.store, in.TaskID)
	if err != nil {
		return nil, err
	}
	return &OpenEditSessionOutput{Session: planning.NewEditSession(task, uc.cal)}, nil
}

// SaveSubtasksInput contains the session to save.
type SaveSubtasksInput struct {
	Session *planning.EditSession
}

// SaveSubtasksOutput contains the result of saving a session.
type SaveSubtasksOutput struct {
	Task domain.Task // The task with its subtasks as now shown in the session
}

// SaveSubtasks is the use case for saving every persisted subtask of a session.
type SaveSubtasks struct {
	store  domain.TaskStore
	logger domain.Logger
}

// NewSaveSubtasks creates a new SaveSubtasks use case.
func NewSaveSubtasks(store domain.TaskStore, logger domain.Logger) *SaveSubtasks {
	return &SaveSubtasks{
		store:  store,
		logger: logger,
	}
}

// Execute saves the session. A partial failure is returned as a *planning.BatchError.
func (uc *SaveSubtasks) Execute(ctx context.Context, in SaveSubtasksInput) (*SaveSubtasksOutput, error) {
	s := in.Session
	if err := s.SaveAll(ctx, uc.store); err != nil {
		return nil, fmt.Errorf("save subtasks of task %d: %w", s.TaskID(), err)
	}

	if uc.logger != nil {
		uc.logger.Info(s.TaskID(), "subtask", fmt.Sprintf("saved %d subtasks", len(s.Items())))
	}

	return &SaveSubtasksOutput{Task: s.Task()}, nil
}

// ConfirmDeleteInput contains the session holding the pending confirmation.
type ConfirmDeleteInput struct {
	Session *planning.EditSession
}

// ConfirmDeleteOutput contains the outcome of the deletion.
type ConfirmDeleteOutput struct {
	Outcome planning.DeleteOutcome
}

// ConfirmDelete is the use case for carrying out a pending delete confirmation.
type ConfirmDelete struct {
	store  domain.TaskStore
	logger domain.Logger
}

// NewConfirmDelete creates a new ConfirmDelete use case.
func NewConfirmDelete(store domain.TaskStore, logger domain.Logger) *ConfirmDelete {
	return &ConfirmDelete{
		store:  store,
		logger: logger,
	}
}

// Execute deletes the confirmed target. The confirmation is closed whatever the outcome.
func (uc *ConfirmDelete) Execute(ctx context.Context, in ConfirmDeleteInput) (*ConfirmDeleteOutput, error) {
	out, err := in.Session.ConfirmDelete(ctx, uc.store)
	if err != nil {
		return &ConfirmDeleteOutput{Outcome: out}, err
	}

	if uc.logger != nil {
		uc.logger.Info(in.Session.TaskID(), "delete", "deleted "+out.Target.String())
	}

	return &ConfirmDeleteOutput{Outcome: out}, nil
}
