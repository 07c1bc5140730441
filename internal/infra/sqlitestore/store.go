// Package sqlitestore provides a SQLite implementation of domain.TaskStore.
package sqlitestore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/studyplan/planner/internal/domain"
)

//go:embed schema.sql
var schemaFS embed.FS

const timeLayout = time.RFC3339Nano

const taskColumns = "id, title, description, subject, type, priority, status, due_date, created_at, updated_at"

const subtaskColumns = "id, task_id, description, planification_date, needed_hours, status"

// Store implements domain.TaskStore on a SQLite database.
type Store struct {
	db    *sql.DB
	clock domain.Clock
}

// Ensure Store implements domain.TaskStore.
var _ domain.TaskStore = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string, clock domain.Clock) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Bulk saves call the store from several goroutines; one connection serializes writers.
	db.SetMaxOpenConns(1)

	if err := applySchema(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if clock == nil {
		clock = domain.RealClock{}
	}
	return &Store{db: db, clock: clock}, nil
}

func applySchema(ctx context.Context, db *sql.DB) error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(schemaSQL)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateTask inserts a pending task.
func (s *Store) CreateTask(ctx context.Context, in domain.TaskInput) (*domain.Task, error) {
	now := s.clock.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, subject, type, priority, status, due_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Title, in.Description, in.Subject, in.Type, string(in.Priority), string(domain.StatusPending),
		in.DueDate.String(), now, now)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return s.GetTask(ctx, int(id))
}

// GetTask returns a task with its subtasks ordered by ID.
func (s *Store) GetTask(ctx context.Context, id int) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get task %d: %w", id, domain.ErrTaskNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}

	subs, err := s.querySubtasks(ctx, "SELECT "+subtaskColumns+" FROM subtasks WHERE task_id = ? ORDER BY id", id)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	task.Subtasks = subs
	task.StoreHours = domain.SumHours(subs)
	return task, nil
}

// ListTasks returns all tasks ordered by ID, each with its subtasks.
func (s *Store) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	index := make(map[int]int)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		index[task.ID] = len(tasks)
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	subs, err := s.querySubtasks(ctx, "SELECT "+subtaskColumns+" FROM subtasks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	for _, st := range subs {
		if i, ok := index[st.TaskID]; ok {
			tasks[i].Subtasks = append(tasks[i].Subtasks, st)
		}
	}
	for i := range tasks {
		tasks[i].StoreHours = domain.SumHours(tasks[i].Subtasks)
	}
	return tasks, nil
}

// DeleteTask removes a task; its subtasks go with it.
func (s *Store) DeleteTask(ctx context.Context, id int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM subtasks WHERE task_id = ?", id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete task %d: %w", id, domain.ErrTaskNotFound)
	}
	return tx.Commit()
}

// CreateSubtask inserts a pending subtask under taskID.
func (s *Store) CreateSubtask(ctx context.Context, taskID int, v domain.SubtaskValues) (*domain.Subtask, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM tasks WHERE id = ?", taskID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("create subtask: %w", domain.ErrTaskNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("create subtask: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO subtasks (task_id, description, planification_date, needed_hours, status) VALUES (?, ?, ?, ?, ?)`,
		taskID, v.Description, v.PlanificationDate.String(), v.NeededHours, string(domain.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("create subtask: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create subtask: %w", err)
	}
	s.touch(ctx, taskID)
	return s.getSubtask(ctx, int(id))
}

// UpdateSubtask replaces the editable fields of a subtask. A taskID of 0 matches any owner.
func (s *Store) UpdateSubtask(ctx context.Context, id, taskID int, v domain.SubtaskValues) (*domain.Subtask, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE subtasks SET description = ?, planification_date = ?, needed_hours = ?
		 WHERE id = ? AND (? = 0 OR task_id = ?)`,
		v.Description, v.PlanificationDate.String(), v.NeededHours, id, taskID, taskID)
	if err != nil {
		return nil, fmt.Errorf("update subtask %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("update subtask %d: %w", id, domain.ErrSubtaskNotFound)
	}
	sub, err := s.getSubtask(ctx, id)
	if err != nil {
		return nil, err
	}
	s.touch(ctx, sub.TaskID)
	return sub, nil
}

// DeleteSubtask removes a subtask.
func (s *Store) DeleteSubtask(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM subtasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete subtask %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete subtask %d: %w", id, domain.ErrSubtaskNotFound)
	}
	return nil
}

// ListTodaySubtasks returns the subtasks matching filter, each with its parent summary.
func (s *Store) ListTodaySubtasks(ctx context.Context, filter domain.SubtaskFilter) ([]domain.Subtask, error) {
	subs, err := s.querySubtasks(ctx,
		"SELECT "+subtaskColumns+" FROM subtasks WHERE planification_date = ? AND (? = '' OR status = ?) ORDER BY id",
		filter.Date.String(), string(filter.Status), string(filter.Status))
	if err != nil {
		return nil, fmt.Errorf("list today subtasks: %w", err)
	}

	refs := make(map[int]*domain.TaskRef)
	for i := range subs {
		taskID := subs[i].TaskID
		ref, ok := refs[taskID]
		if !ok {
			task, err := s.GetTask(ctx, taskID)
			if err != nil {
				return nil, fmt.Errorf("list today subtasks: %w", err)
			}
			ref = &domain.TaskRef{
				ID:         task.ID,
				Title:      task.Title,
				DueDate:    task.DueDate,
				Subject:    task.Subject,
				Type:       task.Type,
				Priority:   task.Priority,
				Status:     task.Status,
				TotalHours: task.StoreHours,
			}
			refs[taskID] = ref
		}
		subs[i].Task = ref
	}
	return subs, nil
}

func (s *Store) getSubtask(ctx context.Context, id int) (*domain.Subtask, error) {
	subs, err := s.querySubtasks(ctx, "SELECT "+subtaskColumns+" FROM subtasks WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get subtask %d: %w", id, err)
	}
	if len(subs) == 0 {
		return nil, fmt.Errorf("get subtask %d: %w", id, domain.ErrSubtaskNotFound)
	}
	return &subs[0], nil
}

// touch bumps the update time of a task. Failures are ignored; the time is informational.
func (s *Store) touch(ctx context.Context, taskID int) {
	_, _ = s.db.ExecContext(ctx, "UPDATE tasks SET updated_at = ? WHERE id = ?",
		s.clock.Now().UTC().Format(timeLayout), taskID)
}

func (s *Store) querySubtasks(ctx context.Context, query string, args ...any) ([]domain.Subtask, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Subtask
	for rows.Next() {
		var (
			st     domain.Subtask
			date   string
			status string
		)
		if err := rows.Scan(&st.ID, &st.TaskID, &st.Description, &date, &st.NeededHours, &status); err != nil {
			return nil, err
		}
		if err := st.PlanificationDate.UnmarshalText([]byte(date)); err != nil {
			return nil, fmt.Errorf("subtask %d: %w", st.ID, err)
		}
		st.Status = domain.Status(status)
		subs = append(subs, st)
	}
	return subs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*domain.Task, error) {
	var (
		t                domain.Task
		priority, status string
		due              string
		created, updated string
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Subject, &t.Type,
		&priority, &status, &due, &created, &updated); err != nil {
		return nil, err
	}
	if err := t.DueDate.UnmarshalText([]byte(due)); err != nil {
		return nil, fmt.Errorf("task %d: %w", t.ID, err)
	}
	t.Priority = domain.Priority(priority)
	t.Status = domain.Status(status)
	t.Created, _ = time.Parse(timeLayout, created)
	t.Updated, _ = time.Parse(timeLayout, updated)
	return &t, nil
}
