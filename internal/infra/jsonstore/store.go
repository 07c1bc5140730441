// Package jsonstore provides a JSON file-based implementation of domain.TaskStore.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"syscall"

	"github.com/studyplan/planner/internal/domain"
)

// storeData represents the JSON file structure.
// Fields are ordered to minimize memory padding.
type storeData struct {
	Tasks    map[string]*taskData    `json:"tasks"`
	Subtasks map[string]*subtaskData `json:"subtasks"`
	Meta     meta                    `json:"meta"`
}

// meta contains store metadata.
type meta struct {
	NextTaskID    int `json:"nextTaskID"`
	NextSubtaskID int `json:"nextSubtaskID"`
}

// taskData is the JSON representation of a task (without ID, which is the map key).
// Subtasks are stored separately and joined on read.
type taskData = domain.Task

// subtaskData is the JSON representation of a subtask.
// Fields are ordered to minimize memory padding.
type subtaskData struct {
	domain.SubtaskValues
	Status domain.Status `json:"status"`
	TaskID int           `json:"task_id"`
}

// Store implements domain.TaskStore using a JSON file.
// Every operation holds a flock on a sibling lock file, so several processes may share the file.
type Store struct {
	clock    domain.Clock
	path     string
	lockPath string
}

// Ensure Store implements domain.TaskStore and domain.StoreInitializer.
var (
	_ domain.TaskStore        = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)

// New creates a new Store for the given file path.
// The file does not need to exist; it will be created on first write.
func New(path string, clock domain.Clock) *Store {
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &Store{
		clock:    clock,
		path:     path,
		lockPath: path + ".lock",
	}
}

// CreateTask stores a new pending task.
func (s *Store) CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var task domain.Task
	err := s.withLockWrite(func(data *storeData) error {
		now := s.clock.Now()
		task = domain.Task{
			ID:          data.Meta.NextTaskID,
			Title:       in.Title,
			Description: in.Description,
			DueDate:     in.DueDate,
			Subject:     in.Subject,
			Type:        in.Type,
			Priority:    in.Priority,
			Status:      domain.StatusPending,
			Created:     now,
			Updated:     now,
		}
		data.Meta.NextTaskID++
		t := task
		data.Tasks[strconv.Itoa(task.ID)] = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask retrieves a task by ID with its subtasks.
func (s *Store) GetTask(ctx context.Context, id int) (*domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var task *domain.Task
	err := s.withLock(func(data *storeData) error {
		t, ok := data.Tasks[strconv.Itoa(id)]
		if !ok {
			return fmt.Errorf("get task %d: %w", id, domain.ErrTaskNotFound)
		}
		task = data.joinTask(id, t)
		return nil
	})
	return task, err
}

// ListTasks returns all tasks ordered by ID.
func (s *Store) ListTasks(ctx context.Context) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var tasks []domain.Task
	err := s.withLock(func(data *storeData) error {
		tasks = make([]domain.Task, 0, len(data.Tasks))
		for key, t := range data.Tasks {
			id, _ := strconv.Atoi(key)
			tasks = append(tasks, *data.joinTask(id, t))
		}
		return nil
	})

	// Sort by ID for consistent ordering
	slices.SortFunc(tasks, func(a, b domain.Task) int {
		return a.ID - b.ID
	})

	return tasks, err
}

// DeleteTask removes a task and its subtasks.
func (s *Store) DeleteTask(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.withLockWrite(func(data *storeData) error {
		key := strconv.Itoa(id)
		if _, ok := data.Tasks[key]; !ok {
			return fmt.Errorf("delete task %d: %w", id, domain.ErrTaskNotFound)
		}
		delete(data.Tasks, key)
		for sk, st := range data.Subtasks {
			if st.TaskID == id {
				delete(data.Subtasks, sk)
			}
		}
		return nil
	})
}

// CreateSubtask stores a new pending subtask under taskID.
func (s *Store) CreateSubtask(ctx context.Context, taskID int, v domain.SubtaskValues) (*domain.Subtask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var sub domain.Subtask
	err := s.withLockWrite(func(data *storeData) error {
		if _, ok := data.Tasks[strconv.Itoa(taskID)]; !ok {
			return fmt.Errorf("create subtask: %w", domain.ErrTaskNotFound)
		}
		id := data.Meta.NextSubtaskID
		data.Meta.NextSubtaskID++
		st := &subtaskData{SubtaskValues: v, Status: domain.StatusPending, TaskID: taskID}
		data.Subtasks[strconv.Itoa(id)] = st
		data.touch(taskID, s.clock)
		sub = st.toDomain(id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// UpdateSubtask replaces the editable fields of a subtask.
func (s *Store) UpdateSubtask(ctx context.Context, id, taskID int, v domain.SubtaskValues) (*domain.Subtask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var sub domain.Subtask
	err := s.withLockWrite(func(data *storeData) error {
		st, ok := data.Subtasks[strconv.Itoa(id)]
		if !ok {
			return fmt.Errorf("update subtask %d: %w", id, domain.ErrSubtaskNotFound)
		}
		if taskID != 0 && st.TaskID != taskID {
			return fmt.Errorf("update subtask %d of task %d: %w", id, taskID, domain.ErrSubtaskNotFound)
		}
		st.SubtaskValues = v
		data.touch(st.TaskID, s.clock)
		sub = st.toDomain(id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// DeleteSubtask removes a subtask.
func (s *Store) DeleteSubtask(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.withLockWrite(func(data *storeData) error {
		key := strconv.Itoa(id)
		st, ok := data.Subtasks[key]
		if !ok {
			return fmt.Errorf("delete subtask %d: %w", id, domain.ErrSubtaskNotFound)
		}
		delete(data.Subtasks, key)
		data.touch(st.TaskID, s.clock)
		return nil
	})
}

// ListTodaySubtasks returns the subtasks matching filter, ordered by ID, each with its parent summary.
func (s *Store) ListTodaySubtasks(ctx context.Context, filter domain.SubtaskFilter) ([]domain.Subtask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var subs []domain.Subtask
	err := s.withLock(func(data *storeData) error {
		for key, st := range data.Subtasks {
			if st.PlanificationDate != filter.Date {
				continue
			}
			if filter.Status != "" && st.Status != filter.Status {
				continue
			}
			id, _ := strconv.Atoi(key)
			sub := st.toDomain(id)
			if t, ok := data.Tasks[strconv.Itoa(st.TaskID)]; ok {
				sub.Task = refOf(st.TaskID, data.joinTask(st.TaskID, t))
			}
			subs = append(subs, sub)
		}
		return nil
	})
	slices.SortFunc(subs, func(a, b domain.Subtask) int {
		return a.ID - b.ID
	})
	return subs, err
}

// Initialize creates an empty store file if it doesn't exist.
func (s *Store) Initialize() error {
	// Ensure parent directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	// Check if file already exists
	if _, err := os.Stat(s.path); err == nil {
		return nil // Already exists
	}

	return s.write(newStoreData())
}

func newStoreData() *storeData {
	return &storeData{
		Meta:     meta{NextTaskID: 1, NextSubtaskID: 1},
		Tasks:    make(map[string]*taskData),
		Subtasks: make(map[string]*subtaskData),
	}
}

// joinTask returns a copy of t with its ID and subtasks ordered by ID.
func (d *storeData) joinTask(id int, t *taskData) *domain.Task {
	task := *t
	task.ID = id
	task.Subtasks = nil
	for key, st := range d.Subtasks {
		if st.TaskID != id {
			continue
		}
		sid, _ := strconv.Atoi(key)
		task.Subtasks = append(task.Subtasks, st.toDomain(sid))
	}
	slices.SortFunc(task.Subtasks, func(a, b domain.Subtask) int {
		return a.ID - b.ID
	})
	task.StoreHours = domain.SumHours(task.Subtasks)
	task.Progress = progressOf(task.Subtasks)
	return &task
}

// touch bumps the update time of a task.
func (d *storeData) touch(taskID int, clock domain.Clock) {
	if t, ok := d.Tasks[strconv.Itoa(taskID)]; ok {
		t.Updated = clock.Now()
	}
}

func (st *subtaskData) toDomain(id int) domain.Subtask {
	return domain.Subtask{
		ID:            id,
		TaskID:        st.TaskID,
		SubtaskValues: st.SubtaskValues,
		Status:        st.Status,
	}
}

func refOf(id int, t *domain.Task) *domain.TaskRef {
	return &domain.TaskRef{
		ID:         id,
		Title:      t.Title,
		DueDate:    t.DueDate,
		Subject:    t.Subject,
		Type:       t.Type,
		Priority:   t.Priority,
		Status:     t.Status,
		TotalHours: t.StoreHours,
	}
}

// progressOf returns the completed share of hours as a percentage.
func progressOf(subtasks []domain.Subtask) float64 {
	total := domain.SumHours(subtasks)
	if total == 0 {
		return 0
	}
	done := 0.0
	for _, st := range subtasks {
		if st.IsCompleted() {
			done += st.NeededHours
		}
	}
	return done / total * 100
}

// withLock executes fn with a shared (read) lock.
func (s *Store) withLock(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_SH)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	return fn(data)
}

// withLockWrite executes fn with an exclusive (write) lock and writes the result.
func (s *Store) withLockWrite(fn func(*storeData) error) error {
	lock, err := s.acquireLock(syscall.LOCK_EX)
	if err != nil {
		return err
	}
	defer s.releaseLock(lock)

	data, err := s.read()
	if err != nil {
		return err
	}

	if err := fn(data); err != nil {
		return err
	}

	return s.write(data)
}

func (s *Store) acquireLock(lockType int) (*os.File, error) {
	// Ensure lock file directory exists
	dir := filepath.Dir(s.lockPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(lock.Fd()), lockType); err != nil {
		_ = lock.Close()
		return nil, fmt.Errorf("acquire lock: %w", err)
	}

	return lock, nil
}

func (s *Store) releaseLock(lock *os.File) {
	_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	_ = lock.Close()
}

// read loads the store file. A missing file reads as an empty store.
func (s *Store) read() (*storeData, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return newStoreData(), nil
		}
		return nil, fmt.Errorf("read store file: %w", err)
	}

	var data storeData
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("parse store file: %w", err)
	}

	// Ensure maps are initialized
	if data.Tasks == nil {
		data.Tasks = make(map[string]*taskData)
	}
	if data.Subtasks == nil {
		data.Subtasks = make(map[string]*subtaskData)
	}
	if data.Meta.NextTaskID == 0 {
		data.Meta.NextTaskID = 1
	}
	if data.Meta.NextSubtaskID == 0 {
		data.Meta.NextSubtaskID = 1
	}

	return &data, nil
}

func (s *Store) write(data *storeData) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	content, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store data: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath) // Clean up
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
