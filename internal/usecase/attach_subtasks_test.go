package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/planning"
	"github.com/studyplan/planner/internal/testutil"
)

func drafts(descs ...string) []domain.SubtaskValues {
	out := make([]domain.SubtaskValues, len(descs))
	for i, d := range descs {
		out[i] = domain.SubtaskValues{Description: d, PlanificationDate: today, NeededHours: float64(i + 1)}
	}
	return out
}

func TestAttachSubtasks_Execute(t *testing.T) {
	// Setup
	store := testutil.NewMockTaskStore()
	store.AddTask(domain.Task{ID: 42, Title: "Essay"})
	uc := NewAttachSubtasks(store, nil)

	// Execute
	out, err := uc.Execute(context.Background(), AttachSubtasksInput{TaskID: 42, Drafts: drafts("Research", "Outline")})

	// Assert
	require.NoError(t, err)
	require.Len(t, out.Subtasks, 2)
	assert.Equal(t, "Research", out.Subtasks[0].Description)
	assert.Equal(t, "Outline", out.Subtasks[1].Description)
	for _, c := range store.CallsTo("CreateSubtask") {
		assert.Equal(t, 42, c.TaskID)
	}
	assert.Equal(t, 2, store.CallCount("CreateSubtask"))
}

func TestAttachSubtasks_Execute_NoDrafts(t *testing.T) {
	uc := NewAttachSubtasks(testutil.NewMockTaskStore(), nil)

	_, err := uc.Execute(context.Background(), AttachSubtasksInput{TaskID: 1})

	assert.ErrorIs(t, err, domain.ErrNoDrafts)
}

func TestAttachSubtasks_Execute_PartialFailure(t *testing.T) {
	// Setup
	store := testutil.NewMockTaskStore()
	store.AddTask(domain.Task{ID: 42, Title: "Essay"})
	store.CreateSubtaskErrs["Outline"] = assert.AnError
	logger := &testutil.MockLogger{}
	uc := NewAttachSubtasks(store, logger)

	// Execute
	out, err := uc.Execute(context.Background(), AttachSubtasksInput{TaskID: 42, Drafts: drafts("Research", "Outline", "Write")})

	// Assert
	assert.ErrorIs(t, err, planning.ErrBatchFailed)
	assert.ErrorIs(t, err, assert.AnError)
	require.NotNil(t, out)
	assert.Len(t, out.Subtasks, 2, "created subtasks are not retracted")
	assert.Len(t, store.Subtasks, 2)
	assert.Equal(t, 3, store.CallCount("CreateSubtask"))
}
