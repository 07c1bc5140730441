package planning

import "github.com/studyplan/planner/internal/domain"

// DeleteTarget is what a delete confirmation is about: either the whole task
// owning the session or one of its subtasks. The zero value targets nothing.
type DeleteTarget struct {
	subtask domain.SubtaskID
	task    bool
}

// TaskTarget targets the task owning the session.
func TaskTarget() DeleteTarget {
	return DeleteTarget{task: true}
}

// SubtaskTarget targets the subtask with id.
func SubtaskTarget(id domain.SubtaskID) DeleteTarget {
	return DeleteTarget{subtask: id}
}

// IsZero reports whether t targets nothing.
func (t DeleteTarget) IsZero() bool {
	return !t.task && t.subtask.IsZero()
}

// IsTask reports whether t targets the whole task.
func (t DeleteTarget) IsTask() bool {
	return t.task
}

// Subtask returns the targeted subtask, and false when t targets the whole task.
func (t DeleteTarget) Subtask() (domain.SubtaskID, bool) {
	if t.task || t.subtask.IsZero() {
		return domain.SubtaskID{}, false
	}
	return t.subtask, true
}

// String returns "task" or "subtask <id>".
func (t DeleteTarget) String() string {
	switch {
	case t.task:
		return "task"
	case !t.subtask.IsZero():
		return "subtask " + t.subtask.String()
	}
	return "none"
}

// DeleteOutcome is the result of a confirmed deletion.
type DeleteOutcome struct {
	Target DeleteTarget
	// TaskDeleted is set when the whole task is gone. The caller must close the
	// session and evict the task from any list it renders.
	TaskDeleted bool
}
