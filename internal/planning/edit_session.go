package planning

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/studyplan/planner/internal/domain"
)

// Item is a subtask shown in an edit session.
// Fields are ordered to minimize memory padding.
type Item struct {
	domain.SubtaskValues
	Status domain.Status
	ID     domain.SubtaskID
}

// EditSession lets the user review, edit and delete the subtasks of a persisted task
// before saving them back. At most one item is edited and at most one delete
// confirmation is pending at a time.
// An EditSession is not safe for concurrent use.
// Fields are ordered to minimize memory padding.
type EditSession struct {
	cal     domain.Calendar
	newKey  func() string
	errs    domain.ValidationErrors
	task    domain.Task
	pending DeleteTarget
	editing domain.SubtaskID
	buffer  domain.SubtaskFields
	items   []Item
}

// EditSessionOption configures an EditSession.
type EditSessionOption func(*EditSession)

// WithSessionKeyGenerator sets the generator of temporary keys for items added in the session.
func WithSessionKeyGenerator(fn func() string) EditSessionOption {
	return func(s *EditSession) {
		s.newKey = fn
	}
}

// NewEditSession starts a session over the subtasks of task.
// The task should be freshly fetched from the store.
func NewEditSession(task *domain.Task, cal domain.Calendar, opts ...EditSessionOption) *EditSession {
	s := &EditSession{
		cal:    cal,
		newKey: uuid.NewString,
		errs:   domain.ValidationErrors{},
		task:   *task,
		items:  make([]Item, 0, len(task.Subtasks)),
	}
	s.task.Subtasks = nil
	for _, st := range task.Subtasks {
		s.items = append(s.items, Item{
			ID:            domain.PersistedID(st.ID),
			SubtaskValues: st.SubtaskValues,
			Status:        st.Status,
		})
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TaskID returns the ID of the task owning the session.
func (s *EditSession) TaskID() int {
	return s.task.ID
}

// Task returns the owning task with its subtasks as currently shown in the session.
func (s *EditSession) Task() domain.Task {
	t := s.task
	t.Subtasks = make([]domain.Subtask, 0, len(s.items))
	for _, it := range s.items {
		id, ok := it.ID.Persisted()
		if !ok {
			continue
		}
		t.Subtasks = append(t.Subtasks, domain.Subtask{
			SubtaskValues: it.SubtaskValues,
			Status:        it.Status,
			ID:            id,
			TaskID:        s.task.ID,
		})
	}
	// The session knows every subtask, so the store total is stale once items change
	t.StoreHours = domain.SumHours(t.Subtasks)
	return t
}

// Items returns a copy of the items in display order.
func (s *EditSession) Items() []Item {
	return slices.Clone(s.items)
}

// TotalHours returns the sum of the items' needed hours.
func (s *EditSession) TotalHours() float64 {
	total := 0.0
	for _, it := range s.items {
		total += it.NeededHours
	}
	return total
}

// BeginEdit loads the item with id into the edit buffer.
// Any other buffer in progress is discarded without saving.
func (s *EditSession) BeginEdit(id domain.SubtaskID) error {
	i := s.index(id)
	if i < 0 {
		return domain.ErrSubtaskNotFound
	}
	s.editing = id
	s.buffer = domain.FieldsOf(s.items[i].SubtaskValues)
	s.errs = domain.ValidationErrors{}
	return nil
}

// Editing returns the item being edited, and false when no item is.
func (s *EditSession) Editing() (domain.SubtaskID, bool) {
	return s.editing, !s.editing.IsZero()
}

// Buffer returns the edit buffer.
func (s *EditSession) Buffer() domain.SubtaskFields {
	return s.buffer
}

// Errors returns a copy of the edit buffer's validation errors.
func (s *EditSession) Errors() domain.ValidationErrors {
	return s.errs.Clone()
}

// UpdateField sets a field of the edit buffer and clears that field's error.
func (s *EditSession) UpdateField(field domain.Field, value string) error {
	if s.editing.IsZero() {
		return domain.ErrNotEditing
	}
	s.buffer = s.buffer.With(field, value)
	delete(s.errs, field)
	return nil
}

// CancelEdit discards the edit buffer and its errors.
func (s *EditSession) CancelEdit() {
	s.editing = domain.SubtaskID{}
	s.buffer = domain.SubtaskFields{}
	s.errs = domain.ValidationErrors{}
}

// CommitEdit validates the edit buffer and writes it back to the edited item,
// keeping its position and id. On failure the session stays in edit mode and
// the returned error is a domain.ValidationErrors.
func (s *EditSession) CommitEdit() error {
	if s.editing.IsZero() {
		return domain.ErrNotEditing
	}
	v, err := domain.ParseSubtask(s.buffer, s.cal.Today())
	if err != nil {
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			s.errs = verrs.Clone()
		}
		return err
	}
	if i := s.index(s.editing); i >= 0 {
		s.items[i].SubtaskValues = v
	}
	s.CancelEdit()
	return nil
}

// AddDraft validates f and appends it with a temporary identity.
// Such items are shown and counted in TotalHours but never sent by SaveAll.
func (s *EditSession) AddDraft(f domain.SubtaskFields) (Item, error) {
	v, err := domain.ParseSubtask(f, s.cal.Today())
	if err != nil {
		return Item{}, err
	}
	it := Item{ID: domain.TempID(s.newKey()), SubtaskValues: v, Status: domain.StatusPending}
	s.items = append(s.items, it)
	return it, nil
}

// RequestDelete opens a delete confirmation for target.
func (s *EditSession) RequestDelete(target DeleteTarget) error {
	if !s.pending.IsZero() {
		return domain.ErrDeletePending
	}
	if target.IsZero() {
		return fmt.Errorf("request delete: %w", domain.ErrSubtaskNotFound)
	}
	if id, ok := target.Subtask(); ok && s.index(id) < 0 {
		return domain.ErrSubtaskNotFound
	}
	s.pending = target
	return nil
}

// PendingDelete returns the open delete confirmation, and false when none is open.
func (s *EditSession) PendingDelete() (DeleteTarget, bool) {
	return s.pending, !s.pending.IsZero()
}

// CancelDelete closes the open delete confirmation without deleting anything.
func (s *EditSession) CancelDelete() error {
	if s.pending.IsZero() {
		return domain.ErrNoDeletePending
	}
	s.pending = DeleteTarget{}
	return nil
}

// ConfirmDelete carries out the open delete confirmation against store.
// The confirmation is closed whatever the outcome. When the store call fails the
// items are unchanged. Items that were never persisted are removed without a store call.
func (s *EditSession) ConfirmDelete(ctx context.Context, store domain.TaskStore) (DeleteOutcome, error) {
	target := s.pending
	if target.IsZero() {
		return DeleteOutcome{}, domain.ErrNoDeletePending
	}
	s.pending = DeleteTarget{}
	out := DeleteOutcome{Target: target}

	if target.IsTask() {
		if err := store.DeleteTask(ctx, s.task.ID); err != nil {
			return out, fmt.Errorf("delete task %d: %w", s.task.ID, err)
		}
		s.CancelEdit()
		out.TaskDeleted = true
		return out, nil
	}

	id, _ := target.Subtask()
	if n, ok := id.Persisted(); ok {
		if err := store.DeleteSubtask(ctx, n); err != nil {
			return out, fmt.Errorf("delete subtask %d: %w", n, err)
		}
	}
	if i := s.index(id); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
	}
	if s.editing == id {
		s.CancelEdit()
	}
	return out, nil
}

// SaveAll leaves edit mode, discarding an uncommitted buffer, and sends the current
// values of every persisted item to store. The updates are issued concurrently and
// all of them run to completion. Items the store accepted take the returned values.
// If any update fails a *BatchError is returned; accepted updates are not rolled back.
func (s *EditSession) SaveAll(ctx context.Context, store domain.TaskStore) error {
	s.CancelEdit()

	type update struct {
		values domain.SubtaskValues
		id     int
	}
	var updates []update
	for _, it := range s.items {
		if id, ok := it.ID.Persisted(); ok {
			updates = append(updates, update{id: id, values: it.SubtaskValues})
		}
	}

	results := make([]*domain.Subtask, len(updates))
	err := RunBatch(len(updates), func(i int) error {
		u := updates[i]
		st, err := store.UpdateSubtask(ctx, u.id, s.task.ID, u.values)
		if err != nil {
			return fmt.Errorf("update subtask %d: %w", u.id, err)
		}
		results[i] = st
		return nil
	})

	for _, st := range results {
		if st == nil {
			continue
		}
		if i := s.index(domain.PersistedID(st.ID)); i >= 0 {
			s.items[i].SubtaskValues = st.SubtaskValues
			if st.Status != "" {
				s.items[i].Status = st.Status
			}
		}
	}
	return err
}

func (s *EditSession) index(id domain.SubtaskID) int {
	if id.IsZero() {
		return -1
	}
	return slices.IndexFunc(s.items, func(it Item) bool { return it.ID == id })
}
