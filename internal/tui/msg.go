package tui

import (
	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/planning"
	"github.com/studyplan/planner/internal/usecase"
)

// Msg is the sealed interface for all planner messages.
// All message types must implement the sealed() method.
//
// go-sumtype:decl Msg
type Msg interface {
	sealed()
}

// MsgTasksLoaded is sent when the task list has been refreshed.
type MsgTasksLoaded struct {
	Err error
}

func (MsgTasksLoaded) sealed() {}

// MsgTaskCreated is sent when the task form has been submitted.
type MsgTaskCreated struct {
	Err  error
	Task *domain.Task
}

func (MsgTaskCreated) sealed() {}

// MsgDraftsSubmitted is sent when the active task's drafts have been submitted.
type MsgDraftsSubmitted struct {
	Err      error
	Subtasks []domain.Subtask
}

func (MsgDraftsSubmitted) sealed() {}

// MsgSessionOpened is sent when an edit session has been opened.
type MsgSessionOpened struct {
	Err    error
	TaskID int
}

func (MsgSessionOpened) sealed() {}

// MsgSessionSaved is sent when the edit session has been saved.
type MsgSessionSaved struct {
	Err error
}

func (MsgSessionSaved) sealed() {}

// MsgDeleteConfirmed is sent when a confirmed deletion has been carried out.
type MsgDeleteConfirmed struct {
	Err     error
	Outcome planning.DeleteOutcome
}

func (MsgDeleteConfirmed) sealed() {}

// MsgTodayLoaded is sent when today's subtasks have been loaded.
type MsgTodayLoaded struct {
	Err error
	Out *usecase.ListTodaySubtasksOutput
}

func (MsgTodayLoaded) sealed() {}

// MsgToastExpired is sent once the notification with Seq has been shown long enough.
type MsgToastExpired struct {
	Seq uint64
}

func (MsgToastExpired) sealed() {}

// MsgDayChanged is sent at every local midnight.
type MsgDayChanged struct{}

func (MsgDayChanged) sealed() {}
