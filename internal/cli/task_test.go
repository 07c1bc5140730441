package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyplan/planner/internal/app"
	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/testutil"
)

var testToday = domain.NewDate(2025, time.March, 10)

// newTestContainer creates an app.Container with mock dependencies.
func newTestContainer(store *testutil.MockTaskStore) *app.Container {
	c := app.NewWithDeps(
		app.Config{},
		nil,
		store,
		&testutil.MockClock{NowTime: testToday.Time(time.UTC)},
		testutil.FixedCalendar(testToday),
		nil,
	)
	c.ConfigLoader = testutil.NewMockConfigLoader()
	c.ConfigManager = testutil.NewMockConfigManager()
	return c
}

// =============================================================================
// task new
// =============================================================================

func TestTaskNewCommand_CreateTask(t *testing.T) {
	// Setup
	store := testutil.NewMockTaskStore()
	container := newTestContainer(store)

	cmd := newTaskNewCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--title", "Ensayo de historia", "--due", "2025-03-20", "--subject", "Historia"})

	// Execute
	err := cmd.Execute()

	// Assert
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Created task #1: Ensayo de historia")

	task := store.Tasks[1]
	require.NotNil(t, task)
	assert.Equal(t, domain.NewDate(2025, time.March, 20), task.DueDate)
	assert.Equal(t, domain.PriorityMedium, task.Priority)
	assert.Equal(t, "Historia", task.Subject)
}

func TestTaskNewCommand_ValidationErrors(t *testing.T) {
	// Setup
	store := testutil.NewMockTaskStore()
	container := newTestContainer(store)

	cmd := newTaskNewCommand(container)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"--priority", "urgent"})

	// Execute
	err := cmd.Execute()

	// Assert
	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3)
	assert.Contains(t, errOut.String(), "title: "+domain.MsgTitleRequired)
	assert.Contains(t, errOut.String(), "due_date: "+domain.MsgDueDateRequired)
	assert.Contains(t, errOut.String(), "priority: "+domain.MsgPriorityInvalid)
	assert.Zero(t, store.CallCount("CreateTask"))
}

func TestTaskNewCommand_StoreError(t *testing.T) {
	// Setup
	store := testutil.NewMockTaskStore()
	store.CreateTaskErr = assert.AnError
	container := newTestContainer(store)

	cmd := newTaskNewCommand(container)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--title", "Parcial", "--due", "2025-04-02"})

	// Execute
	err := cmd.Execute()

	// Assert
	assert.ErrorIs(t, err, assert.AnError)
}

// =============================================================================
// task list
// =============================================================================

func TestTaskListCommand_ListsByDueDate(t *testing.T) {
	// Setup
	store := testutil.NewMockTaskStore()
	store.AddTask(domain.Task{Title: "Later", DueDate: domain.NewDate(2025, time.April, 1), Priority: domain.PriorityLow})
	store.AddTask(domain.Task{Title: "Sooner", DueDate: domain.NewDate(2025, time.March, 15), Priority: domain.PriorityHigh},
		domain.SubtaskValues{Description: "Leer capítulo", PlanificationDate: testToday, NeededHours: 1.5})
	container := newTestContainer(store)

	cmd := newTaskListCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	// Execute
	err := cmd.Execute()

	// Assert
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "1.5h")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Sooner")), bytes.Index(buf.Bytes(), []byte("Later")))
}

func TestTaskListCommand_Empty(t *testing.T) {
	// Setup
	container := newTestContainer(testutil.NewMockTaskStore())

	cmd := newTaskListCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	// Execute
	err := cmd.Execute()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "No tasks found.\n", buf.String())
}

func TestTaskListCommand_InvalidStatus(t *testing.T) {
	// Setup
	container := newTestContainer(testutil.NewMockTaskStore())

	cmd := newTaskListCommand(container)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--status", "archived"})

	// Execute
	err := cmd.Execute()

	// Assert
	assert.ErrorContains(t, err, "invalid status")
}

// =============================================================================
// task show / rm
// =============================================================================

func TestTaskShowCommand(t *testing.T) {
	// Setup
	store := testutil.NewMockTaskStore()
	store.AddTask(domain.Task{Title: "Ensayo", DueDate: domain.NewDate(2025, time.March, 20), Priority: domain.PriorityHigh, Subject: "Historia"},
		domain.SubtaskValues{Description: "Buscar fuentes", PlanificationDate: testToday, NeededHours: 2},
		domain.SubtaskValues{Description: "Redactar borrador", PlanificationDate: testToday.AddDays(1), NeededHours: 1})
	container := newTestContainer(store)

	cmd := newTaskShowCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"1"})

	// Execute
	err := cmd.Execute()

	// Assert
	require.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "# 1: Ensayo")
	assert.Contains(t, output, "Due: 20 mar 2025")
	assert.Contains(t, output, "Priority: Alta")
	assert.Contains(t, output, "Subject: Historia")
	assert.Contains(t, output, "Buscar fuentes")
	assert.Contains(t, output, "Total: 3 Hours")
}

func TestTaskShowCommand_NotFound(t *testing.T) {
	// Setup
	container := newTestContainer(testutil.NewMockTaskStore())

	cmd := newTaskShowCommand(container)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"99"})

	// Execute
	err := cmd.Execute()

	// Assert
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestTaskShowCommand_InvalidID(t *testing.T) {
	// Setup
	container := newTestContainer(testutil.NewMockTaskStore())

	cmd := newTaskShowCommand(container)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"abc"})

	// Execute
	err := cmd.Execute()

	// Assert
	assert.ErrorContains(t, err, `invalid task ID: "abc"`)
}

func TestTaskRmCommand(t *testing.T) {
	// Setup
	store := testutil.NewMockTaskStore()
	store.AddTask(domain.Task{Title: "Ensayo", DueDate: testToday},
		domain.SubtaskValues{Description: "Buscar fuentes", PlanificationDate: testToday, NeededHours: 2})
	container := newTestContainer(store)

	cmd := newTaskRmCommand(container)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"#1"})

	// Execute
	err := cmd.Execute()

	// Assert
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Deleted task #1")
	assert.Empty(t, store.Tasks)
	assert.Empty(t, store.Subtasks)
}
