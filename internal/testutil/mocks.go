// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/studyplan/planner/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// FixedCalendar is a domain.Calendar that always answers the same date.
type FixedCalendar domain.Date

// Today returns the fixed date.
func (c FixedCalendar) Today() domain.Date {
	return domain.Date(c)
}

// StoreCall records one call made to MockTaskStore.
type StoreCall struct {
	Op     string
	ID     int
	TaskID int
}

// MockTaskStore is an in-memory test double for domain.TaskStore.
// It is safe for concurrent use, as bulk operations call it from several goroutines.
// Fields are ordered to minimize memory padding.
type MockTaskStore struct {
	Tasks             map[int]*domain.Task
	Subtasks          map[int]*domain.Subtask
	UpdateErrs        map[int]error    // Per-subtask UpdateSubtask failures
	CreateSubtaskErrs map[string]error // Per-description CreateSubtask failures
	CreateTaskErr     error
	GetTaskErr        error
	ListTasksErr      error
	DeleteTaskErr     error
	CreateSubtaskErr  error
	DeleteSubtaskErr  error
	ListTodayErr      error
	LastFilter        domain.SubtaskFilter
	Calls             []StoreCall
	mu                sync.Mutex
	NextTaskID        int
	NextSubtaskID     int
}

// Ensure MockTaskStore implements domain.TaskStore interface.
var _ domain.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates a new MockTaskStore with initialized maps.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks:             make(map[int]*domain.Task),
		Subtasks:          make(map[int]*domain.Subtask),
		UpdateErrs:        make(map[int]error),
		CreateSubtaskErrs: make(map[string]error),
		NextTaskID:        1,
		NextSubtaskID:     1,
	}
}

// AddTask stores task with the given subtasks and returns it.
// Subtask IDs are assigned when zero.
func (m *MockTaskStore) AddTask(task domain.Task, subtasks ...domain.SubtaskValues) *domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	if task.ID == 0 {
		task.ID = m.NextTaskID
	}
	if task.ID >= m.NextTaskID {
		m.NextTaskID = task.ID + 1
	}
	if task.Status == "" {
		task.Status = domain.StatusPending
	}
	t := task
	m.Tasks[t.ID] = &t
	for _, v := range subtasks {
		m.newSubtaskLocked(t.ID, v)
	}
	return &t
}

// CallCount returns how many times op was called.
func (m *MockTaskStore) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// CallsTo returns the recorded calls to op.
func (m *MockTaskStore) CallsTo(op string) []StoreCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var calls []StoreCall
	for _, c := range m.Calls {
		if c.Op == op {
			calls = append(calls, c)
		}
	}
	return calls
}

func (m *MockTaskStore) record(op string, id, taskID int) {
	m.Calls = append(m.Calls, StoreCall{Op: op, ID: id, TaskID: taskID})
}

// CreateTask stores a new task.
func (m *MockTaskStore) CreateTask(_ context.Context, in domain.TaskInput) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateTask", 0, 0)
	if m.CreateTaskErr != nil {
		return nil, m.CreateTaskErr
	}

	t := &domain.Task{
		ID:          m.NextTaskID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Subject:     in.Subject,
		Type:        in.Type,
		Priority:    in.Priority,
		Status:      domain.StatusPending,
	}
	m.NextTaskID++
	m.Tasks[t.ID] = t
	out := *t
	return &out, nil
}

// GetTask returns a task with its subtasks in ID order.
func (m *MockTaskStore) GetTask(_ context.Context, id int) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("GetTask", id, 0)
	if m.GetTaskErr != nil {
		return nil, m.GetTaskErr
	}
	t, ok := m.Tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	out := *t
	out.Subtasks = m.subtasksOfLocked(id)
	return &out, nil
}

// ListTasks returns all tasks in ID order.
func (m *MockTaskStore) ListTasks(_ context.Context) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListTasks", 0, 0)
	if m.ListTasksErr != nil {
		return nil, m.ListTasksErr
	}
	tasks := make([]domain.Task, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		out := *t
		out.Subtasks = m.subtasksOfLocked(t.ID)
		tasks = append(tasks, out)
	}
	slices.SortFunc(tasks, func(a, b domain.Task) int { return a.ID - b.ID })
	return tasks, nil
}

// DeleteTask removes a task and its subtasks.
func (m *MockTaskStore) DeleteTask(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteTask", id, 0)
	if m.DeleteTaskErr != nil {
		return m.DeleteTaskErr
	}
	if _, ok := m.Tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(m.Tasks, id)
	for sid, st := range m.Subtasks {
		if st.TaskID == id {
			delete(m.Subtasks, sid)
		}
	}
	return nil
}

// CreateSubtask stores a new subtask.
func (m *MockTaskStore) CreateSubtask(_ context.Context, taskID int, v domain.SubtaskValues) (*domain.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("CreateSubtask", 0, taskID)
	if m.CreateSubtaskErr != nil {
		return nil, m.CreateSubtaskErr
	}
	if err := m.CreateSubtaskErrs[v.Description]; err != nil {
		return nil, err
	}
	if _, ok := m.Tasks[taskID]; !ok {
		return nil, domain.ErrTaskNotFound
	}
	st := m.newSubtaskLocked(taskID, v)
	out := *st
	return &out, nil
}

// UpdateSubtask replaces the values of a subtask.
func (m *MockTaskStore) UpdateSubtask(_ context.Context, id, taskID int, v domain.SubtaskValues) (*domain.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("UpdateSubtask", id, taskID)
	if err := m.UpdateErrs[id]; err != nil {
		return nil, err
	}
	st, ok := m.Subtasks[id]
	if !ok {
		return nil, domain.ErrSubtaskNotFound
	}
	st.SubtaskValues = v
	out := *st
	return &out, nil
}

// DeleteSubtask removes a subtask.
func (m *MockTaskStore) DeleteSubtask(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("DeleteSubtask", id, 0)
	if m.DeleteSubtaskErr != nil {
		return m.DeleteSubtaskErr
	}
	if _, ok := m.Subtasks[id]; !ok {
		return domain.ErrSubtaskNotFound
	}
	delete(m.Subtasks, id)
	return nil
}

// ListTodaySubtasks returns the subtasks matching filter, each with its parent summary.
func (m *MockTaskStore) ListTodaySubtasks(_ context.Context, filter domain.SubtaskFilter) ([]domain.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ListTodaySubtasks", 0, 0)
	m.LastFilter = filter
	if m.ListTodayErr != nil {
		return nil, m.ListTodayErr
	}
	var out []domain.Subtask
	for _, st := range m.sortedSubtasksLocked() {
		if st.PlanificationDate != filter.Date {
			continue
		}
		if filter.Status != "" && st.Status != filter.Status {
			continue
		}
		if t, ok := m.Tasks[st.TaskID]; ok {
			st.Task = &domain.TaskRef{ID: t.ID, Title: t.Title, DueDate: t.DueDate, Priority: t.Priority, Status: t.Status}
		}
		out = append(out, st)
	}
	return out, nil
}

func (m *MockTaskStore) newSubtaskLocked(taskID int, v domain.SubtaskValues) *domain.Subtask {
	st := &domain.Subtask{
		ID:            m.NextSubtaskID,
		TaskID:        taskID,
		SubtaskValues: v,
		Status:        domain.StatusPending,
	}
	m.NextSubtaskID++
	m.Subtasks[st.ID] = st
	return st
}

func (m *MockTaskStore) sortedSubtasksLocked() []domain.Subtask {
	out := make([]domain.Subtask, 0, len(m.Subtasks))
	for _, st := range m.Subtasks {
		out = append(out, *st)
	}
	slices.SortFunc(out, func(a, b domain.Subtask) int { return a.ID - b.ID })
	return out
}

func (m *MockTaskStore) subtasksOfLocked(taskID int) []domain.Subtask {
	var out []domain.Subtask
	for _, st := range m.sortedSubtasksLocked() {
		if st.TaskID == taskID {
			out = append(out, st)
		}
	}
	return out
}

// LogEntry is one entry recorded by MockLogger.
type LogEntry struct {
	Level    string
	Category string
	Msg      string
	TaskID   int
}

// String formats the entry like the file logger does.
func (e LogEntry) String() string {
	return fmt.Sprintf("[%s] [task-%d] [%s] %s", e.Level, e.TaskID, e.Category, e.Msg)
}

// MockLogger is a test double for domain.Logger that records entries.
type MockLogger struct {
	Entries []LogEntry
	mu      sync.Mutex
}

// Ensure MockLogger implements domain.Logger interface.
var _ domain.Logger = (*MockLogger)(nil)

func (m *MockLogger) add(level string, taskID int, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, LogEntry{Level: level, TaskID: taskID, Category: category, Msg: msg})
}

// Debug records a debug entry.
func (m *MockLogger) Debug(taskID int, category, msg string) { m.add("DEBUG", taskID, category, msg) }

// Info records an info entry.
func (m *MockLogger) Info(taskID int, category, msg string) { m.add("INFO", taskID, category, msg) }

// Warn records a warning entry.
func (m *MockLogger) Warn(taskID int, category, msg string) { m.add("WARN", taskID, category, msg) }

// Error records an error entry.
func (m *MockLogger) Error(taskID int, category, msg string) { m.add("ERROR", taskID, category, msg) }

// Levels returns the level of every recorded entry.
func (m *MockLogger) Levels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	levels := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		levels[i] = e.Level
	}
	return levels
}

// MockConfigLoader is a test double for domain.ConfigLoader.
type MockConfigLoader struct {
	Config       *domain.Config
	GlobalConfig *domain.Config
	LoadErr      error
	GlobalErr    error
}

// Ensure MockConfigLoader implements domain.ConfigLoader interface.
var _ domain.ConfigLoader = (*MockConfigLoader)(nil)

// NewMockConfigLoader creates a new MockConfigLoader with default config.
func NewMockConfigLoader() *MockConfigLoader {
	return &MockConfigLoader{
		Config: domain.NewDefaultConfig(),
	}
}

// Load returns the configured config or error.
func (m *MockConfigLoader) Load() (*domain.Config, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Config, nil
}

// LoadGlobal returns the global config, falling back to Config.
func (m *MockConfigLoader) LoadGlobal() (*domain.Config, error) {
	if m.GlobalErr != nil {
		return nil, m.GlobalErr
	}
	if m.GlobalConfig != nil {
		return m.GlobalConfig, nil
	}
	return m.Config, nil
}

// MockConfigManager is a test double for domain.ConfigManager.
// Fields are ordered to minimize memory padding.
type MockConfigManager struct {
	ProjectInfo   domain.ConfigInfo
	GlobalInfo    domain.ConfigInfo
	InitErr       error
	InitForce     bool
	InitProjectOK bool
	InitGlobalOK  bool
}

// Ensure MockConfigManager implements domain.ConfigManager interface.
var _ domain.ConfigManager = (*MockConfigManager)(nil)

// NewMockConfigManager creates a MockConfigManager with conventional paths.
func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		ProjectInfo: domain.ConfigInfo{Path: "/project/.planner/config.toml"},
		GlobalInfo:  domain.ConfigInfo{Path: "/home/user/.config/planner/config.toml"},
	}
}

// GetProjectConfigInfo returns the configured project info.
func (m *MockConfigManager) GetProjectConfigInfo() domain.ConfigInfo {
	return m.ProjectInfo
}

// GetGlobalConfigInfo returns the configured global info.
func (m *MockConfigManager) GetGlobalConfigInfo() domain.ConfigInfo {
	return m.GlobalInfo
}

// InitProjectConfig records the call.
func (m *MockConfigManager) InitProjectConfig(force bool) (string, error) {
	m.InitForce = force
	if m.InitErr != nil {
		return "", m.InitErr
	}
	m.InitProjectOK = true
	return m.ProjectInfo.Path, nil
}

// InitGlobalConfig records the call.
func (m *MockConfigManager) InitGlobalConfig(force bool) (string, error) {
	m.InitForce = force
	if m.InitErr != nil {
		return "", m.InitErr
	}
	m.InitGlobalOK = true
	return m.GlobalInfo.Path, nil
}
