package usecase

import (
	"context"
	"fmt"

	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/planning"
)

// AttachSubtasksInput contains the drafts to submit for a task.
type AttachSubtasksInput struct {
	Drafts []domain.SubtaskValues // Finalized drafts, in display order
	TaskID int                    // Owning task
}

// AttachSubtasksOutput contains the subtasks the store accepted.
type AttachSubtasksOutput struct {
	Subtasks []domain.Subtask // Created subtasks, in draft order
}

// AttachSubtasks is the use case for bulk-creating the subtasks of a task.
type AttachSubtasks struct {
	store  domain.TaskStore
	logger domain.Logger
}

// NewAttachSubtasks creates a new AttachSubtasks use case.
func NewAttachSubtasks(store domain.TaskStore, logger domain.Logger) *AttachSubtasks {
	return &AttachSubtasks{
		store:  store,
		logger: logger,
	}
}

// Execute creates every draft concurrently under in.TaskID.
// If any call fails a *planning.BatchError is returned together with the output;
// subtasks already created are not retracted.
func (uc *AttachSubtasks) Execute(ctx context.Context, in AttachSubtasksInput) (*AttachSubtasksOutput, error) {
	if len(in.Drafts) == 0 {
		return nil, domain.ErrNoDrafts
	}

	created := make([]*domain.Subtask, len(in.Drafts))
	err := planning.RunBatch(len(in.Drafts), func(i int) error {
		st, err := uc.store.CreateSubtask(ctx, in.TaskID, in.Drafts[i])
		if err != nil {
			return fmt.Errorf("create subtask %q: %w", in.Drafts[i].Description, err)
		}
		created[i] = st
		return nil
	})

	out := &AttachSubtasksOutput{}
	for _, st := range created {
		if st != nil {
			out.Subtasks = append(out.Subtasks, *st)
		}
	}

	if uc.logger != nil {
		uc.logger.Info(in.TaskID, "subtask", fmt.Sprintf("attached %d of %d subtasks", len(out.Subtasks), len(in.Drafts)))
	}

	return out, err
}
