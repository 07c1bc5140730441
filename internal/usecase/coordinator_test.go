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

type coordinatorFixture struct {
	c      *Coordinator
	store  *testutil.MockTaskStore
	logger *testutil.MockLogger
	relay  *planning.Relay
}

func newCoordinatorFixture(store *testutil.MockTaskStore) *coordinatorFixture {
	logger := &testutil.MockLogger{}
	relay := planning.NewRelay(domain.DefaultDismissAfter, planning.WithManualExpiry())
	c := NewCoordinator(CoordinatorDeps{
		Store:    store,
		Calendar: testutil.FixedCalendar(today),
		Logger:   logger,
		Relay:    relay,
	})
	return &coordinatorFixture{c: c, store: store, logger: logger, relay: relay}
}

func (f *coordinatorFixture) notification(t *testing.T) planning.Notification {
	t.Helper()
	n, ok := f.relay.Current()
	require.True(t, ok, "expected a notification")
	return n
}

func TestCoordinator_CreateTaskAndFinalize(t *testing.T) {
	// Setup
	store := testutil.NewMockTaskStore()
	store.NextTaskID = 42
	f := newCoordinatorFixture(store)
	ctx := context.Background()

	// Execute
	task, err := f.c.CreateTask(ctx, domain.TaskFields{Title: "Essay", DueDate: "2025-03-01"})
	require.NoError(t, err)
	require.Equal(t, 42, task.ID)

	drafts := f.c.Drafts()
	require.NotNil(t, drafts)
	for _, d := range []domain.SubtaskFields{
		{Description: "Research topic", PlanificationDate: "2025-02-10", NeededHours: "1.0"},
		{Description: "Write first draft", PlanificationDate: "2025-02-12", NeededHours: "2.5"},
	} {
		drafts.SetPending(d)
		_, err := drafts.Add()
		require.NoError(t, err)
	}
	created, err := f.c.FinalizeDrafts(ctx)

	// Assert
	require.NoError(t, err)
	assert.Len(t, created, 2)
	calls := store.CallsTo("CreateSubtask")
	require.Len(t, calls, 2)
	for _, call := range calls {
		assert.Equal(t, 42, call.TaskID)
	}
	n := f.notification(t)
	assert.Equal(t, planning.KindSuccess, n.Kind)
	assert.Equal(t, MsgDraftsAttached, n.Message)
	assert.Zero(t, drafts.Len())

	listed, ok := f.c.Task(42)
	require.True(t, ok)
	assert.InDelta(t, 3.5, listed.TotalHours(), 1e-9)
}

func TestCoordinator_CreateTask_ValidationNotNotified(t *testing.T) {
	f := newCoordinatorFixture(testutil.NewMockTaskStore())

	_, err := f.c.CreateTask(context.Background(), domain.TaskFields{})

	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	_, shown := f.relay.Current()
	assert.False(t, shown)
	assert.Empty(t, f.logger.Entries)
	assert.Empty(t, f.c.Tasks())
}

func TestCoordinator_CreateTask_StoreError(t *testing.T) {
	store := testutil.NewMockTaskStore()
	store.CreateTaskErr = assert.AnError
	f := newCoordinatorFixture(store)

	_, err := f.c.CreateTask(context.Background(), domain.TaskFields{Title: "Essay", DueDate: "2025-03-01"})

	assert.ErrorIs(t, err, assert.AnError)
	n := f.notification(t)
	assert.Equal(t, planning.KindError, n.Kind)
	assert.Equal(t, MsgTaskCreateFailed, n.Message)
	assert.NotContains(t, n.Message, assert.AnError.Error())
	assert.Equal(t, []string{"ERROR"}, f.logger.Levels())
	assert.Nil(t, f.c.Drafts())
}

func TestCoordinator_FinalizeFailureKeepsDrafts(t *testing.T) {
	store := testutil.NewMockTaskStore()
	f := newCoordinatorFixture(store)
	ctx := context.Background()
	_, err := f.c.CreateTask(ctx, domain.TaskFields{Title: "Essay", DueDate: "2025-03-01"})
	require.NoError(t, err)
	f.c.Drafts().Seed(drafts("Research", "Outline")...)
	store.CreateSubtaskErrs["Outline"] = assert.AnError

	_, err = f.c.FinalizeDrafts(ctx)

	assert.ErrorIs(t, err, planning.ErrBatchFailed)
	assert.Equal(t, 2, f.c.Drafts().Len())
	n := f.notification(t)
	assert.Equal(t, planning.KindError, n.Kind)
	assert.Equal(t, MsgDraftsAttachFailed, n.Message)
}

func TestCoordinator_FinalizeWithoutTask(t *testing.T) {
	f := newCoordinatorFixture(testutil.NewMockTaskStore())

	_, err := f.c.FinalizeDrafts(context.Background())

	assert.ErrorIs(t, err, ErrNoActiveTask)
}

func TestCoordinator_SaveSessionPartialFailure(t *testing.T) {
	// Setup
	store := seededStore()
	f := newCoordinatorFixture(store)
	ctx := context.Background()
	require.NoError(t, f.c.Refresh(ctx))
	s, err := f.c.OpenEdit(ctx, 42)
	require.NoError(t, err)
	for _, id := range []int{1, 2, 3} {
		require.NoError(t, s.BeginEdit(domain.PersistedID(id)))
		require.NoError(t, s.UpdateField(domain.FieldNeededHours, "5"))
		require.NoError(t, s.CommitEdit())
	}
	store.UpdateErrs[2] = assert.AnError

	// Execute
	err = f.c.SaveSession(ctx)

	// Assert
	assert.ErrorIs(t, err, planning.ErrBatchFailed)
	assert.InDelta(t, 5.0, store.Subtasks[1].NeededHours, 1e-9)
	assert.InDelta(t, 2.0, store.Subtasks[2].NeededHours, 1e-9)
	assert.InDelta(t, 5.0, store.Subtasks[3].NeededHours, 1e-9)
	n := f.notification(t)
	assert.Equal(t, planning.KindError, n.Kind)
	assert.Equal(t, MsgSubtasksSaveFailed, n.Message)
	_, editing := s.Editing()
	assert.False(t, editing)
}

func TestCoordinator_SaveSession(t *testing.T) {
	store := seededStore()
	f := newCoordinatorFixture(store)
	ctx := context.Background()
	require.NoError(t, f.c.Refresh(ctx))
	s, err := f.c.OpenEdit(ctx, 42)
	require.NoError(t, err)
	require.NoError(t, s.BeginEdit(domain.PersistedID(1)))
	require.NoError(t, s.UpdateField(domain.FieldNeededHours, "4"))
	require.NoError(t, s.CommitEdit())

	require.NoError(t, f.c.SaveSession(ctx))

	assert.Equal(t, MsgSubtasksSaved, f.notification(t).Message)
	listed, _ := f.c.Task(42)
	assert.InDelta(t, 9.0, listed.TotalHours(), 1e-9)
}

func TestCoordinator_OpenEditFailure(t *testing.T) {
	store := seededStore()
	store.GetTaskErr = assert.AnError
	f := newCoordinatorFixture(store)

	_, err := f.c.OpenEdit(context.Background(), 42)

	assert.Error(t, err)
	assert.Nil(t, f.c.Session())
	assert.Equal(t, MsgEditOpenFailed, f.notification(t).Message)
	require.Len(t, f.logger.Entries, 1)
	assert.Equal(t, 42, f.logger.Entries[0].TaskID)
}

func TestCoordinator_DeleteTaskCascade(t *testing.T) {
	// Setup
	store := seededStore()
	store.AddTask(domain.Task{ID: 43, Title: "Exam"})
	f := newCoordinatorFixture(store)
	ctx := context.Background()
	require.NoError(t, f.c.Refresh(ctx))
	s, err := f.c.OpenEdit(ctx, 42)
	require.NoError(t, err)
	require.NoError(t, s.RequestDelete(planning.TaskTarget()))

	// Execute
	out, err := f.c.ConfirmDelete(ctx)

	// Assert
	require.NoError(t, err)
	assert.True(t, out.TaskDeleted)
	assert.Equal(t, 1, store.CallCount("DeleteTask"))
	assert.Equal(t, []testutil.StoreCall{{Op: "DeleteTask", ID: 42}}, store.CallsTo("DeleteTask"))
	assert.Nil(t, f.c.Session())
	_, listed := f.c.Task(42)
	assert.False(t, listed)
	assert.Len(t, f.c.Tasks(), 1)
	assert.Equal(t, MsgTaskDeleted, f.notification(t).Message)

	tasks, err := store.ListTasks(ctx)
	require.NoError(t, err)
	for _, task := range tasks {
		assert.NotEqual(t, 42, task.ID)
	}
}

func TestCoordinator_DeleteTaskFailureKeepsSession(t *testing.T) {
	store := seededStore()
	store.DeleteTaskErr = assert.AnError
	f := newCoordinatorFixture(store)
	ctx := context.Background()
	require.NoError(t, f.c.Refresh(ctx))
	s, err := f.c.OpenEdit(ctx, 42)
	require.NoError(t, err)
	require.NoError(t, s.RequestDelete(planning.TaskTarget()))

	_, err = f.c.ConfirmDelete(ctx)

	assert.ErrorIs(t, err, assert.AnError)
	assert.NotNil(t, f.c.Session())
	_, listed := f.c.Task(42)
	assert.True(t, listed)
	n := f.notification(t)
	assert.Equal(t, planning.KindError, n.Kind)
	assert.Equal(t, MsgTaskDeleteFailed, n.Message)
}

func TestCoordinator_DeleteSubtask(t *testing.T) {
	store := seededStore()
	f := newCoordinatorFixture(store)
	ctx := context.Background()
	require.NoError(t, f.c.Refresh(ctx))
	s, err := f.c.OpenEdit(ctx, 42)
	require.NoError(t, err)
	require.NoError(t, s.RequestDelete(planning.SubtaskTarget(domain.PersistedID(3))))

	_, err = f.c.ConfirmDelete(ctx)

	require.NoError(t, err)
	listed, _ := f.c.Task(42)
	assert.InDelta(t, 3.0, listed.TotalHours(), 1e-9)
	assert.Equal(t, MsgSubtaskDeleted, f.notification(t).Message)
}

func TestCoordinator_DeleteLastSubtaskZeroesTotal(t *testing.T) {
	// Setup
	store := testutil.NewMockTaskStore()
	store.AddTask(domain.Task{ID: 42, Title: "Essay", DueDate: today, StoreHours: 3},
		domain.SubtaskValues{Description: "Research", PlanificationDate: today, NeededHours: 3},
	)
	f := newCoordinatorFixture(store)
	ctx := context.Background()
	require.NoError(t, f.c.Refresh(ctx))
	s, err := f.c.OpenEdit(ctx, 42)
	require.NoError(t, err)
	items := s.Items()
	require.Len(t, items, 1)
	require.NoError(t, s.RequestDelete(planning.SubtaskTarget(items[0].ID)))

	// Execute
	_, err = f.c.ConfirmDelete(ctx)

	// Assert
	require.NoError(t, err)
	listed, ok := f.c.Task(42)
	require.True(t, ok)
	assert.Empty(t, listed.Subtasks)
	assert.Zero(t, listed.TotalHours())
}

func TestCoordinator_DeleteSubtaskFailure(t *testing.T) {
	store := seededStore()
	store.DeleteSubtaskErr = assert.AnError
	f := newCoordinatorFixture(store)
	ctx := context.Background()
	s, err := f.c.OpenEdit(ctx, 42)
	require.NoError(t, err)
	require.NoError(t, s.RequestDelete(planning.SubtaskTarget(domain.PersistedID(3))))

	_, err = f.c.ConfirmDelete(ctx)

	assert.Error(t, err)
	assert.Len(t, s.Items(), 3)
	assert.Equal(t, MsgSubtaskDeleteFailed, f.notification(t).Message)
}

func TestCoordinator_NoSession(t *testing.T) {
	f := newCoordinatorFixture(testutil.NewMockTaskStore())

	assert.ErrorIs(t, f.c.SaveSession(context.Background()), ErrNoSession)
	_, err := f.c.ConfirmDelete(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestCoordinator_RefreshError(t *testing.T) {
	store := testutil.NewMockTaskStore()
	store.ListTasksErr = assert.AnError
	f := newCoordinatorFixture(store)

	err := f.c.Refresh(context.Background())

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, MsgTasksLoadFailed, f.notification(t).Message)
}

func TestCoordinator_Today(t *testing.T) {
	store := seededStore()
	f := newCoordinatorFixture(store)

	out, err := f.c.Today(context.Background())

	require.NoError(t, err)
	assert.Len(t, out.Subtasks, 3)
	assert.InDelta(t, 6.0, out.TotalHours, 1e-9)

	store.ListTodayErr = assert.AnError
	_, err = f.c.Today(context.Background())
	assert.Error(t, err)
	assert.Equal(t, MsgTodayLoadFailed, f.notification(t).Message)
}
