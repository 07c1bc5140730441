package sqlitestore

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/testutil"
)

var (
	day1 = domain.NewDate(2025, time.March, 1)
	day2 = domain.NewDate(2025, time.March, 2)
	now  = time.Date(2025, time.February, 20, 9, 30, 0, 0, time.UTC)
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "tasks.db"), &testutil.MockClock{NowTime: now})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func createTask(t *testing.T, s *Store, title string) *domain.Task {
	t.Helper()
	task, err := s.CreateTask(context.Background(), domain.TaskInput{
		Title:    title,
		DueDate:  day2,
		Priority: domain.PriorityLow,
		Subject:  "Historia",
	})
	require.NoError(t, err)
	return task
}

func values(desc string, date domain.Date, hours float64) domain.SubtaskValues {
	return domain.SubtaskValues{Description: desc, PlanificationDate: date, NeededHours: hours}
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open("", nil)
	assert.Error(t, err)
}

func TestOpen_Reopen(t *testing.T) {
	// Setup
	path := filepath.Join(t.TempDir(), "tasks.db")
	store, err := Open(path, nil)
	require.NoError(t, err)
	_, err = store.CreateTask(context.Background(), domain.TaskInput{Title: "Ensayo", DueDate: day1})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Execute
	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()
	tasks, err := reopened.ListTasks(context.Background())

	// Assert
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Ensayo", tasks[0].Title)
}

func TestStore_CreateAndGetTask(t *testing.T) {
	// Setup
	store := newTestStore(t)

	// Execute
	created := createTask(t, store, "Ensayo")

	// Assert
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "Ensayo", created.Title)
	assert.Equal(t, "Historia", created.Subject)
	assert.Equal(t, day2, created.DueDate)
	assert.Equal(t, domain.PriorityLow, created.Priority)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.True(t, now.Equal(created.Created))
}

func TestStore_GetTask_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetTask(context.Background(), 7)

	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestStore_SubtaskLifecycle(t *testing.T) {
	// Setup
	store := newTestStore(t)
	ctx := context.Background()
	task := createTask(t, store, "A")

	// Execute
	sub, err := store.CreateSubtask(ctx, task.ID, values("leer capítulo", day1, 2))
	require.NoError(t, err)
	updated, err := store.UpdateSubtask(ctx, sub.ID, task.ID, values("leer dos capítulos", day2, 2.5))
	require.NoError(t, err)
	got, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, task.ID, sub.TaskID)
	assert.Equal(t, domain.StatusPending, sub.Status)
	assert.Equal(t, "leer dos capítulos", updated.Description)
	require.Len(t, got.Subtasks, 1)
	assert.Equal(t, day2, got.Subtasks[0].PlanificationDate)
	assert.InDelta(t, 2.5, got.StoreHours, 1e-9)

	require.NoError(t, store.DeleteSubtask(ctx, sub.ID))
	assert.ErrorIs(t, store.DeleteSubtask(ctx, sub.ID), domain.ErrSubtaskNotFound)
}

func TestStore_CreateSubtask_UnknownTask(t *testing.T) {
	store := newTestStore(t)

	_, err := store.CreateSubtask(context.Background(), 3, values("leer capítulo", day1, 1))

	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestStore_UpdateSubtask_NotFound(t *testing.T) {
	store := newTestStore(t)
	task := createTask(t, store, "A")

	_, err := store.UpdateSubtask(context.Background(), 12, task.ID, values("leer capítulo", day1, 1))

	assert.ErrorIs(t, err, domain.ErrSubtaskNotFound)
}

func TestStore_UpdateSubtask_Concurrent(t *testing.T) {
	// Setup
	store := newTestStore(t)
	ctx := context.Background()
	task := createTask(t, store, "A")
	var ids []int
	for range 5 {
		sub, err := store.CreateSubtask(ctx, task.ID, values("leer capítulo", day1, 1))
		require.NoError(t, err)
		ids = append(ids, sub.ID)
	}

	// Execute
	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = store.UpdateSubtask(ctx, id, task.ID, values("repasar notas", day2, 2))
		}()
	}
	wg.Wait()

	// Assert
	for _, err := range errs {
		assert.NoError(t, err)
	}
	got, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, got.TotalHours(), 1e-9)
}

func TestStore_DeleteTask_Cascades(t *testing.T) {
	// Setup
	store := newTestStore(t)
	ctx := context.Background()
	task := createTask(t, store, "A")
	other := createTask(t, store, "B")
	sub, err := store.CreateSubtask(ctx, task.ID, values("leer capítulo", day1, 1))
	require.NoError(t, err)
	_, err = store.CreateSubtask(ctx, other.ID, values("resumir ideas", day1, 1))
	require.NoError(t, err)

	// Execute
	require.NoError(t, store.DeleteTask(ctx, task.ID))

	// Assert
	assert.ErrorIs(t, store.DeleteSubtask(ctx, sub.ID), domain.ErrSubtaskNotFound)
	assert.ErrorIs(t, store.DeleteTask(ctx, task.ID), domain.ErrTaskNotFound)
	tasks, err := store.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Len(t, tasks[0].Subtasks, 1)
}

func TestStore_ListTodaySubtasks(t *testing.T) {
	// Setup
	store := newTestStore(t)
	ctx := context.Background()
	task := createTask(t, store, "Historia")
	_, err := store.CreateSubtask(ctx, task.ID, values("leer capítulo", day1, 1))
	require.NoError(t, err)
	_, err = store.CreateSubtask(ctx, task.ID, values("otro día", day2, 1))
	require.NoError(t, err)

	// Execute
	subs, err := store.ListTodaySubtasks(ctx, domain.SubtaskFilter{Date: day1, Status: domain.StatusPending})

	// Assert
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "leer capítulo", subs[0].Description)
	require.NotNil(t, subs[0].Task)
	assert.Equal(t, "Historia", subs[0].Task.Title)
	assert.InDelta(t, 2.0, subs[0].Task.TotalHours, 1e-9)
}
