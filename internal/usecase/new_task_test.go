package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/testutil"
)

var today = domain.NewDate(2025, 2, 10)

func TestCreateTask_Execute(t *testing.T) {
	// Setup
	store := testutil.NewMockTaskStore()
	store.NextTaskID = 42
	logger := &testutil.MockLogger{}
	uc := NewCreateTask(store, logger)

	// Execute
	out, err := uc.Execute(context.Background(), CreateTaskInput{Fields: domain.TaskFields{
		Title:   "Essay",
		DueDate: "2025-03-01",
		Subject: "Historia",
	}})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 42, out.Task.ID)
	assert.Equal(t, "Essay", out.Task.Title)
	assert.Equal(t, domain.NewDate(2025, 3, 1), out.Task.DueDate)
	assert.Equal(t, domain.PriorityMedium, out.Task.Priority)
	assert.Contains(t, store.Tasks, 42)
	require.Len(t, logger.Entries, 1)
	assert.Equal(t, 42, logger.Entries[0].TaskID)
}

func TestCreateTask_Execute_ValidationError(t *testing.T) {
	store := testutil.NewMockTaskStore()
	uc := NewCreateTask(store, nil)

	_, err := uc.Execute(context.Background(), CreateTaskInput{Fields: domain.TaskFields{Title: ""}})

	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has(domain.FieldTitle))
	assert.True(t, verrs.Has(domain.FieldDueDate))
	assert.Zero(t, store.CallCount("CreateTask"))
}

func TestCreateTask_Execute_StoreError(t *testing.T) {
	store := testutil.NewMockTaskStore()
	store.CreateTaskErr = assert.AnError
	uc := NewCreateTask(store, nil)

	_, err := uc.Execute(context.Background(), CreateTaskInput{Fields: domain.TaskFields{Title: "Essay", DueDate: "2025-03-01"}})

	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "create task")
}
