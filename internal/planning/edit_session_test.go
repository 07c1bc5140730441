package planning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/testutil"
)

// newTestSession seeds a store with task 42 and three subtasks (IDs 1, 2, 3)
// and opens a session on the fetched task.
func newTestSession(t *testing.T) (*EditSession, *testutil.MockTaskStore) {
	t.Helper()
	store := testutil.NewMockTaskStore()
	store.AddTask(domain.Task{ID: 42, Title: "Essay", DueDate: domain.NewDate(2025, 3, 1)},
		domain.SubtaskValues{Description: "Research", PlanificationDate: today, NeededHours: 1},
		domain.SubtaskValues{Description: "Outline", PlanificationDate: today.AddDays(1), NeededHours: 2},
		domain.SubtaskValues{Description: "Write draft", PlanificationDate: today.AddDays(2), NeededHours: 3},
	)
	task, err := store.GetTask(context.Background(), 42)
	require.NoError(t, err)

	s := NewEditSession(task, testutil.FixedCalendar(today), WithSessionKeyGenerator(sequentialKeys()))
	return s, store
}

func itemIDs(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID.String()
	}
	return out
}

func TestNewEditSession(t *testing.T) {
	s, _ := newTestSession(t)

	assert.Equal(t, 42, s.TaskID())
	assert.Equal(t, []string{"1", "2", "3"}, itemIDs(s.Items()))
	assert.InDelta(t, 6.0, s.TotalHours(), 1e-9)
	_, editing := s.Editing()
	assert.False(t, editing)
}

func TestEditSession_EditRoundTrip(t *testing.T) {
	// Setup
	s, _ := newTestSession(t)
	id := domain.PersistedID(2)

	// Execute
	require.NoError(t, s.BeginEdit(id))
	assert.Equal(t, "Outline", s.Buffer().Description)
	assert.Equal(t, "2", s.Buffer().NeededHours)
	require.NoError(t, s.UpdateField(domain.FieldDescription, "Detailed outline"))
	require.NoError(t, s.UpdateField(domain.FieldNeededHours, "2.5"))
	require.NoError(t, s.CommitEdit())

	// Assert
	items := s.Items()
	assert.Equal(t, []string{"1", "2", "3"}, itemIDs(items))
	assert.Equal(t, id, items[1].ID)
	assert.Equal(t, "Detailed outline", items[1].Description)
	assert.InDelta(t, 2.5, items[1].NeededHours, 1e-9)
	assert.Equal(t, today.AddDays(1), items[1].PlanificationDate)
	assert.InDelta(t, 6.5, s.TotalHours(), 1e-9)
	_, editing := s.Editing()
	assert.False(t, editing)
}

func TestEditSession_CommitInvalidStaysEditing(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.BeginEdit(domain.PersistedID(1)))
	require.NoError(t, s.UpdateField(domain.FieldNeededHours, "30"))

	err := s.CommitEdit()

	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, domain.MsgHoursTooHigh, s.Errors()[domain.FieldNeededHours])
	id, editing := s.Editing()
	assert.True(t, editing)
	assert.Equal(t, domain.PersistedID(1), id)
	assert.InDelta(t, 1.0, s.Items()[0].NeededHours, 1e-9, "item keeps its old values")

	require.NoError(t, s.UpdateField(domain.FieldNeededHours, "4"))
	assert.Empty(t, s.Errors())
}

func TestEditSession_BeginEditDiscardsOtherBuffer(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.BeginEdit(domain.PersistedID(1)))
	require.NoError(t, s.UpdateField(domain.FieldDescription, "Unsaved change"))

	require.NoError(t, s.BeginEdit(domain.PersistedID(3)))

	assert.Equal(t, "Research", s.Items()[0].Description)
	assert.Equal(t, "Write draft", s.Buffer().Description)
	id, _ := s.Editing()
	assert.Equal(t, domain.PersistedID(3), id)
}

func TestEditSession_CancelEdit(t *testing.T) {
	s, _ := newTestSession(t)
	require.NoError(t, s.BeginEdit(domain.PersistedID(1)))
	require.NoError(t, s.UpdateField(domain.FieldDescription, "x"))
	assert.Error(t, s.CommitEdit())

	s.CancelEdit()

	_, editing := s.Editing()
	assert.False(t, editing)
	assert.Empty(t, s.Errors())
	assert.Equal(t, "Research", s.Items()[0].Description)
	assert.ErrorIs(t, s.CommitEdit(), domain.ErrNotEditing)
	assert.ErrorIs(t, s.UpdateField(domain.FieldDescription, "y"), domain.ErrNotEditing)
}

func TestEditSession_BeginEditUnknown(t *testing.T) {
	s, _ := newTestSession(t)
	assert.ErrorIs(t, s.BeginEdit(domain.PersistedID(99)), domain.ErrSubtaskNotFound)
}

func TestEditSession_RequestDelete(t *testing.T) {
	s, _ := newTestSession(t)

	require.NoError(t, s.RequestDelete(SubtaskTarget(domain.PersistedID(2))))
	target, ok := s.PendingDelete()
	assert.True(t, ok)
	id, _ := target.Subtask()
	assert.Equal(t, domain.PersistedID(2), id)

	assert.ErrorIs(t, s.RequestDelete(TaskTarget()), domain.ErrDeletePending)

	require.NoError(t, s.CancelDelete())
	_, ok = s.PendingDelete()
	assert.False(t, ok)
	assert.ErrorIs(t, s.CancelDelete(), domain.ErrNoDeletePending)
	assert.ErrorIs(t, s.RequestDelete(SubtaskTarget(domain.PersistedID(99))), domain.ErrSubtaskNotFound)
}

func TestEditSession_ConfirmDeleteSubtask(t *testing.T) {
	// Setup
	s, store := newTestSession(t)
	require.NoError(t, s.BeginEdit(domain.PersistedID(2)))
	require.NoError(t, s.RequestDelete(SubtaskTarget(domain.PersistedID(2))))

	// Execute
	out, err := s.ConfirmDelete(context.Background(), store)

	// Assert
	require.NoError(t, err)
	assert.False(t, out.TaskDeleted)
	assert.Equal(t, []string{"1", "3"}, itemIDs(s.Items()))
	assert.InDelta(t, 4.0, s.TotalHours(), 1e-9)
	_, editing := s.Editing()
	assert.False(t, editing, "edit buffer of the deleted item is discarded")
	_, pending := s.PendingDelete()
	assert.False(t, pending)
	assert.NotContains(t, store.Subtasks, 2)
	assert.Equal(t, []testutil.StoreCall{{Op: "DeleteSubtask", ID: 2}}, store.CallsTo("DeleteSubtask"))
}

func TestEditSession_ConfirmDeleteKeepsOtherEdit(t *testing.T) {
	s, store := newTestSession(t)
	require.NoError(t, s.BeginEdit(domain.PersistedID(1)))
	require.NoError(t, s.RequestDelete(SubtaskTarget(domain.PersistedID(3))))

	_, err := s.ConfirmDelete(context.Background(), store)

	require.NoError(t, err)
	id, editing := s.Editing()
	assert.True(t, editing)
	assert.Equal(t, domain.PersistedID(1), id)
}

func TestEditSession_ConfirmDeleteSubtask_StoreError(t *testing.T) {
	s, store := newTestSession(t)
	store.DeleteSubtaskErr = assert.AnError
	require.NoError(t, s.RequestDelete(SubtaskTarget(domain.PersistedID(1))))

	_, err := s.ConfirmDelete(context.Background(), store)

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []string{"1", "2", "3"}, itemIDs(s.Items()))
	_, pending := s.PendingDelete()
	assert.False(t, pending, "confirmation closes regardless of outcome")
}

func TestEditSession_ConfirmDeleteTask(t *testing.T) {
	s, store := newTestSession(t)
	require.NoError(t, s.RequestDelete(TaskTarget()))

	out, err := s.ConfirmDelete(context.Background(), store)

	require.NoError(t, err)
	assert.True(t, out.TaskDeleted)
	assert.True(t, out.Target.IsTask())
	assert.Equal(t, 1, store.CallCount("DeleteTask"))
	tasks, err := store.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestEditSession_ConfirmDeleteTask_StoreError(t *testing.T) {
	s, store := newTestSession(t)
	store.DeleteTaskErr = assert.AnError
	require.NoError(t, s.RequestDelete(TaskTarget()))

	out, err := s.ConfirmDelete(context.Background(), store)

	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, out.TaskDeleted)
	assert.Len(t, s.Items(), 3)
}

func TestEditSession_ConfirmDeleteWithoutRequest(t *testing.T) {
	s, store := newTestSession(t)

	_, err := s.ConfirmDelete(context.Background(), store)

	assert.ErrorIs(t, err, domain.ErrNoDeletePending)
	assert.Empty(t, store.CallsTo("DeleteSubtask"))
}

func TestEditSession_AddDraftAndDeleteWithoutStore(t *testing.T) {
	s, store := newTestSession(t)

	it, err := s.AddDraft(domain.SubtaskFields{Description: "Proofread", PlanificationDate: "2025-02-12", NeededHours: "1"})
	require.NoError(t, err)
	assert.True(t, it.ID.IsTemp())
	assert.InDelta(t, 7.0, s.TotalHours(), 1e-9)

	require.NoError(t, s.RequestDelete(SubtaskTarget(it.ID)))
	_, err = s.ConfirmDelete(context.Background(), store)

	require.NoError(t, err)
	assert.Len(t, s.Items(), 3)
	assert.Zero(t, store.CallCount("DeleteSubtask"))
}

func TestEditSession_AddDraftInvalid(t *testing.T) {
	s, _ := newTestSession(t)

	_, err := s.AddDraft(domain.SubtaskFields{Description: "Proofread", PlanificationDate: "2025-01-01", NeededHours: "1"})

	assert.Error(t, err)
	assert.Len(t, s.Items(), 3)
}

func TestEditSession_SaveAll(t *testing.T) {
	// Setup
	s, store := newTestSession(t)
	require.NoError(t, s.BeginEdit(domain.PersistedID(1)))
	require.NoError(t, s.UpdateField(domain.FieldDescription, "Deep research"))
	require.NoError(t, s.CommitEdit())
	_, err := s.AddDraft(domain.SubtaskFields{Description: "Never sent", PlanificationDate: "2025-02-12", NeededHours: "1"})
	require.NoError(t, err)

	// Execute
	err = s.SaveAll(context.Background(), store)

	// Assert
	require.NoError(t, err)
	calls := store.CallsTo("UpdateSubtask")
	assert.Len(t, calls, 3)
	for _, c := range calls {
		assert.Equal(t, 42, c.TaskID)
	}
	assert.Equal(t, "Deep research", store.Subtasks[1].Description)
	assert.Equal(t, "Outline", store.Subtasks[2].Description)
}

func TestEditSession_SaveAllExitsEditMode(t *testing.T) {
	s, store := newTestSession(t)
	require.NoError(t, s.BeginEdit(domain.PersistedID(1)))
	require.NoError(t, s.UpdateField(domain.FieldDescription, "Uncommitted"))

	require.NoError(t, s.SaveAll(context.Background(), store))

	_, editing := s.Editing()
	assert.False(t, editing)
	assert.Equal(t, "Research", store.Subtasks[1].Description, "uncommitted buffer is discarded")
}

func TestEditSession_SaveAllPartialFailure(t *testing.T) {
	// Setup
	s, store := newTestSession(t)
	for _, id := range []int{1, 2, 3} {
		require.NoError(t, s.BeginEdit(domain.PersistedID(id)))
		require.NoError(t, s.UpdateField(domain.FieldNeededHours, "4"))
		require.NoError(t, s.CommitEdit())
	}
	store.UpdateErrs[2] = assert.AnError

	// Execute
	err := s.SaveAll(context.Background(), store)

	// Assert
	assert.ErrorIs(t, err, ErrBatchFailed)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 3, store.CallCount("UpdateSubtask"))
	assert.InDelta(t, 4.0, store.Subtasks[1].NeededHours, 1e-9)
	assert.InDelta(t, 2.0, store.Subtasks[2].NeededHours, 1e-9)
	assert.InDelta(t, 4.0, store.Subtasks[3].NeededHours, 1e-9)
	_, editing := s.Editing()
	assert.False(t, editing)
}

func TestEditSession_TaskReflectsItems(t *testing.T) {
	s, _ := newTestSession(t)
	_, err := s.AddDraft(domain.SubtaskFields{Description: "Local only", PlanificationDate: "2025-02-12", NeededHours: "1"})
	require.NoError(t, err)

	task := s.Task()

	assert.Equal(t, "Essay", task.Title)
	assert.Len(t, task.Subtasks, 3)
	assert.InDelta(t, 6.0, task.TotalHours(), 1e-9)
}

func TestEditSession_TaskRecomputesStoreHours(t *testing.T) {
	// Setup
	store := testutil.NewMockTaskStore()
	store.AddTask(domain.Task{ID: 7, Title: "Essay", StoreHours: 3},
		domain.SubtaskValues{Description: "Research", PlanificationDate: today, NeededHours: 3},
	)
	task, err := store.GetTask(context.Background(), 7)
	require.NoError(t, err)
	s := NewEditSession(task, testutil.FixedCalendar(today))
	require.NoError(t, s.RequestDelete(SubtaskTarget(domain.PersistedID(task.Subtasks[0].ID))))

	// Execute
	_, err = s.ConfirmDelete(context.Background(), store)
	require.NoError(t, err)
	got := s.Task()

	// Assert
	assert.Empty(t, got.Subtasks)
	assert.Zero(t, got.StoreHours)
	assert.Zero(t, got.TotalHours())
}

func TestDeleteTarget(t *testing.T) {
	assert.True(t, DeleteTarget{}.IsZero())
	assert.Equal(t, "none", DeleteTarget{}.String())

	task := TaskTarget()
	assert.True(t, task.IsTask())
	_, ok := task.Subtask()
	assert.False(t, ok)
	assert.Equal(t, "task", task.String())

	sub := SubtaskTarget(domain.PersistedID(5))
	assert.False(t, sub.IsTask())
	id, ok := sub.Subtask()
	assert.True(t, ok)
	assert.Equal(t, domain.PersistedID(5), id)
	assert.Equal(t, "subtask 5", sub.String())
}
