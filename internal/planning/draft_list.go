package planning

import (
	"errors"
	"slices"

	"github.com/google/uuid"

	"github.com/studyplan/planner/internal/domain"
)

// Draft is a subtask that has not been sent to the store yet.
type Draft struct {
	domain.SubtaskValues
	ID domain.SubtaskID // Always a temporary identity
}

// DraftList owns the ordered drafts of a task being planned together with the
// single pending entry form. It never talks to the store.
// A DraftList is not safe for concurrent use.
type DraftList struct {
	cal     domain.Calendar
	newKey  func() string
	errs    domain.ValidationErrors
	pending domain.SubtaskFields
	drafts  []Draft
}

// DraftListOption configures a DraftList.
type DraftListOption func(*DraftList)

// WithKeyGenerator sets the generator of temporary draft keys.
// Generated keys must be unique for the lifetime of the list.
func WithKeyGenerator(fn func() string) DraftListOption {
	return func(l *DraftList) {
		l.newKey = fn
	}
}

// NewDraftList returns an empty draft list validating dates against cal.
func NewDraftList(cal domain.Calendar, opts ...DraftListOption) *DraftList {
	l := &DraftList{
		cal:    cal,
		newKey: uuid.NewString,
		errs:   domain.ValidationErrors{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// UpdateField sets a field of the pending entry and clears that field's error.
func (l *DraftList) UpdateField(field domain.Field, value string) {
	l.pending = l.pending.With(field, value)
	delete(l.errs, field)
}

// SetPending replaces the whole pending entry and clears all errors.
func (l *DraftList) SetPending(f domain.SubtaskFields) {
	l.pending = f
	l.errs = domain.ValidationErrors{}
}

// Add validates the pending entry and, when valid, appends it as a new draft.
// On failure the errors are kept for display, the list is unchanged,
// and the returned error is a domain.ValidationErrors.
func (l *DraftList) Add() (Draft, error) {
	v, err := domain.ParseSubtask(l.pending, l.cal.Today())
	if err != nil {
		l.errs = domain.ValidationErrors{}
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			l.errs = verrs.Clone()
		}
		return Draft{}, err
	}

	d := Draft{ID: domain.TempID(l.newKey()), SubtaskValues: v}
	l.drafts = append(l.drafts, d)
	l.pending = domain.SubtaskFields{}
	l.errs = domain.ValidationErrors{}
	return d, nil
}

// Remove deletes the draft with id. Unknown ids are ignored.
func (l *DraftList) Remove(id domain.SubtaskID) {
	if i := l.index(id); i >= 0 {
		l.drafts = slices.Delete(l.drafts, i, i+1)
	}
}

// Reorder moves the dragged draft to the target's position, shifting the drafts in between.
// The dragged draft is removed first and then inserted at the target's original index,
// so moving A onto C in [A B C] gives [B C A] and moving C onto A gives [C A B].
// Missing or equal ids leave the list unchanged.
func (l *DraftList) Reorder(dragged, target domain.SubtaskID) {
	if dragged == target {
		return
	}
	from, to := l.index(dragged), l.index(target)
	if from < 0 || to < 0 {
		return
	}
	d := l.drafts[from]
	l.drafts = slices.Delete(l.drafts, from, from+1)
	l.drafts = slices.Insert(l.drafts, to, d)
}

// Move shifts the draft with id by delta positions, clamped to the list bounds.
func (l *DraftList) Move(id domain.SubtaskID, delta int) {
	from := l.index(id)
	if from < 0 {
		return
	}
	to := min(max(from+delta, 0), len(l.drafts)-1)
	if to != from {
		l.Reorder(id, l.drafts[to].ID)
	}
}

// TotalHours returns the sum of the drafts' needed hours.
func (l *DraftList) TotalHours() float64 {
	total := 0.0
	for _, d := range l.drafts {
		total += d.NeededHours
	}
	return total
}

// Len returns the number of drafts.
func (l *DraftList) Len() int {
	return len(l.drafts)
}

// Drafts returns a copy of the drafts in display order.
func (l *DraftList) Drafts() []Draft {
	return slices.Clone(l.drafts)
}

// Values returns the drafts' values in display order.
func (l *DraftList) Values() []domain.SubtaskValues {
	values := make([]domain.SubtaskValues, len(l.drafts))
	for i, d := range l.drafts {
		values[i] = d.SubtaskValues
	}
	return values
}

// Pending returns the pending entry.
func (l *DraftList) Pending() domain.SubtaskFields {
	return l.pending
}

// Errors returns a copy of the pending entry's validation errors.
func (l *DraftList) Errors() domain.ValidationErrors {
	return l.errs.Clone()
}

// Reset removes every draft and clears the pending entry and its errors.
func (l *DraftList) Reset() {
	l.drafts = nil
	l.pending = domain.SubtaskFields{}
	l.errs = domain.ValidationErrors{}
}

// Seed appends already accepted values as drafts with fresh temporary ids.
func (l *DraftList) Seed(values ...domain.SubtaskValues) {
	for _, v := range values {
		l.drafts = append(l.drafts, Draft{ID: domain.TempID(l.newKey()), SubtaskValues: v})
	}
}

func (l *DraftList) index(id domain.SubtaskID) int {
	return slices.IndexFunc(l.drafts, func(d Draft) bool { return d.ID == id })
}
