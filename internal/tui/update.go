package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/planning"
)

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayoutSizes()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case MsgTasksLoaded:
		m.busy = false
		m.sync()
		return m, m.scheduleToast()

	case MsgTaskCreated:
		m.busy = false
		if msg.Err != nil {
			var verrs domain.ValidationErrors
			if errors.As(msg.Err, &verrs) {
				m.taskErrs = verrs.Clone()
			}
			return m, m.scheduleToast()
		}
		m.taskForm.Reset()
		m.taskErrs = nil
		m.enterPlan()
		return m, m.scheduleToast()

	case MsgDraftsSubmitted:
		m.busy = false
		if msg.Err == nil {
			m.coord.FinishPlanning()
			m.mode = ModeTasks
		}
		m.sync()
		return m, m.scheduleToast()

	case MsgSessionOpened:
		m.busy = false
		if msg.Err == nil {
			m.mode = ModeEdit
			m.cursor = 0
		}
		m.sync()
		return m, m.scheduleToast()

	case MsgSessionSaved:
		m.busy = false
		if msg.Err == nil {
			m.coord.CloseSession()
			m.mode = ModeTasks
		}
		m.sync()
		return m, m.scheduleToast()

	case MsgDeleteConfirmed:
		m.busy = false
		m.pendingDelete = planning.DeleteTarget{}
		m.mode = ModeEdit
		if msg.Outcome.TaskDeleted {
			m.mode = ModeTasks
		}
		m.sync()
		return m, m.scheduleToast()

	case MsgTodayLoaded:
		m.busy = false
		if msg.Err == nil {
			m.today = msg.Out
			m.mode = ModeToday
		}
		return m, m.scheduleToast()

	case MsgToastExpired:
		m.relay.Expire(msg.Seq)
		return m, nil

	case MsgDayChanged:
		cmds := []tea.Cmd{m.waitDayChange()}
		if m.mode == ModeToday && !m.busy {
			cmds = append(cmds, m.startBusy(), m.loadToday())
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

// handleKeyMsg handles keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	// Ignore input while a store call is in flight
	if m.busy {
		return m, nil
	}

	switch m.mode {
	case ModeTasks:
		return m.handleTasksMode(msg)
	case ModeNewTask:
		return m.handleNewTaskMode(msg)
	case ModePlan:
		return m.handlePlanMode(msg)
	case ModeEdit:
		return m.handleEditMode(msg)
	case ModeEditItem:
		return m.handleEditItemMode(msg)
	case ModeConfirmDelete:
		return m.handleConfirmDeleteMode(msg)
	case ModeToday:
		return m.handleTodayMode(msg)
	case ModeHelp:
		m.mode = m.prevMode
		return m, nil
	}
	return m, nil
}

func (m *Model) handleTasksMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the list filter is open every key belongs to it
	if m.taskList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.taskList, cmd = m.taskList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.prevMode = m.mode
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.taskForm.Reset()
		m.taskErrs = nil
		m.mode = ModeNewTask
		return m, nil

	case key.Matches(msg, m.keys.Plan):
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		m.coord.StartPlanning(task)
		m.enterPlan()
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		return m, tea.Batch(m.startBusy(), m.openEdit(task.ID))

	case key.Matches(msg, m.keys.Today):
		return m, tea.Batch(m.startBusy(), m.loadToday())

	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(m.startBusy(), m.refresh())
	}

	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

func (m *Model) handleNewTaskMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = ModeTasks
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		m.taskForm.Next()
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.taskForm.Prev()
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		return m, tea.Batch(m.startBusy(), m.createTask(m.taskForm.taskFields()))
	}

	cmd, field, changed := m.taskForm.Update(msg)
	if changed {
		delete(m.taskErrs, field)
	}
	return m, cmd
}

// enterPlan switches to planning the coordinator's active task with an empty form.
func (m *Model) enterPlan() {
	m.mode = ModePlan
	m.subForm.Reset()
	m.formErrs = nil
	m.listFocus = false
	m.grabbed = domain.SubtaskID{}
	m.cursor = 0
	m.sync()
}

func (m *Model) handlePlanMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	drafts := m.coord.Drafts()
	if drafts == nil {
		m.mode = ModeTasks
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Escape):
		if !m.grabbed.IsZero() {
			m.grabbed = domain.SubtaskID{}
			return m, nil
		}
		m.coord.FinishPlanning()
		m.mode = ModeTasks
		m.sync()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if drafts.Len() == 0 {
			m.err = domain.ErrNoDrafts
			return m, nil
		}
		m.grabbed = domain.SubtaskID{}
		return m, tea.Batch(m.startBusy(), m.submitDrafts())
	}

	if m.listFocus {
		return m.handleDraftList(msg, drafts)
	}

	switch {
	case key.Matches(msg, m.keys.NextField):
		if !m.subForm.Next() && drafts.Len() > 0 {
			m.listFocus = true
		}
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.subForm.Prev()
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		if _, err := drafts.Add(); err != nil {
			m.formErrs = drafts.Errors()
			return m, nil
		}
		m.subForm.Reset()
		m.formErrs = nil
		m.err = nil
		m.sync()
		m.cursor = len(m.drafts) - 1
		return m, nil
	}

	cmd, field, changed := m.subForm.Update(msg)
	if changed {
		drafts.UpdateField(field, m.subForm.Value(field))
		m.formErrs = drafts.Errors()
	}
	return m, cmd
}

func (m *Model) handleDraftList(msg tea.KeyMsg, drafts *planning.DraftList) (tea.Model, tea.Cmd) {
	var current domain.SubtaskID
	if m.cursor < len(m.drafts) {
		current = m.drafts[m.cursor].ID
	}

	switch {
	case key.Matches(msg, m.keys.NextField), key.Matches(msg, m.keys.PrevField):
		m.listFocus = false
		m.grabbed = domain.SubtaskID{}
		m.subForm.Focus(0)
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.cursor--
	case key.Matches(msg, m.keys.Down):
		m.cursor++

	case key.Matches(msg, m.keys.MoveUp):
		drafts.Move(current, -1)
		m.cursor--
	case key.Matches(msg, m.keys.MoveDown):
		drafts.Move(current, 1)
		m.cursor++

	case key.Matches(msg, m.keys.Grab):
		// Pick up the draft under the cursor, or drop the grabbed one onto it
		if m.grabbed.IsZero() {
			m.grabbed = current
			return m, nil
		}
		drafts.Reorder(m.grabbed, current)
		m.grabbed = domain.SubtaskID{}

	case key.Matches(msg, m.keys.Remove):
		drafts.Remove(current)
		if m.grabbed == current {
			m.grabbed = domain.SubtaskID{}
		}
		if drafts.Len() == 0 {
			m.listFocus = false
			m.subForm.Focus(0)
		}

	default:
		return m, nil
	}

	m.sync()
	return m, nil
}

func (m *Model) handleEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	session := m.coord.Session()
	if session == nil {
		m.mode = ModeTasks
		return m, nil
	}

	var current domain.SubtaskID
	if m.cursor < len(m.items) {
		current = m.items[m.cursor].ID
	}

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.coord.CloseSession()
		m.mode = ModeTasks
		m.sync()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()

	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()

	case key.Matches(msg, m.keys.Enter):
		if err := session.BeginEdit(current); err != nil {
			return m, nil
		}
		m.subForm.loadSubtask(session.Buffer())
		m.formErrs = session.Errors()
		m.addingItem = false
		m.mode = ModeEditItem

	case key.Matches(msg, m.keys.Add):
		m.subForm.Reset()
		m.formErrs = nil
		m.addingItem = true
		m.mode = ModeEditItem

	case key.Matches(msg, m.keys.Remove):
		m.requestDelete(session, planning.SubtaskTarget(current))

	case key.Matches(msg, m.keys.DeleteTask):
		m.requestDelete(session, planning.TaskTarget())

	case key.Matches(msg, m.keys.Submit):
		return m, tea.Batch(m.startBusy(), m.saveSession())
	}

	return m, nil
}

func (m *Model) requestDelete(session *planning.EditSession, target planning.DeleteTarget) {
	if err := session.RequestDelete(target); err != nil {
		return
	}
	m.pendingDelete = target
	m.mode = ModeConfirmDelete
}

func (m *Model) handleEditItemMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	session := m.coord.Session()
	if session == nil {
		m.mode = ModeTasks
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Escape):
		if !m.addingItem {
			session.CancelEdit()
		}
		m.formErrs = nil
		m.mode = ModeEdit
		return m, nil

	case key.Matches(msg, m.keys.NextField):
		m.subForm.Next()
		return m, nil

	case key.Matches(msg, m.keys.PrevField):
		m.subForm.Prev()
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if m.addingItem {
			if _, err := session.AddDraft(m.subForm.subtaskFields()); err != nil {
				var verrs domain.ValidationErrors
				if errors.As(err, &verrs) {
					m.formErrs = verrs.Clone()
				}
				return m, nil
			}
			m.sync()
			m.cursor = len(m.items) - 1
		} else {
			if err := session.CommitEdit(); err != nil {
				m.formErrs = session.Errors()
				return m, nil
			}
			m.sync()
		}
		m.formErrs = nil
		m.mode = ModeEdit
		return m, nil
	}

	cmd, field, changed := m.subForm.Update(msg)
	if changed {
		if m.addingItem {
			delete(m.formErrs, field)
		} else {
			_ = session.UpdateField(field, m.subForm.Value(field))
			m.formErrs = session.Errors()
		}
	}
	return m, cmd
}

func (m *Model) handleConfirmDeleteMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	session := m.coord.Session()
	if session == nil {
		m.mode = ModeTasks
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Confirm):
		return m, tea.Batch(m.startBusy(), m.confirmDelete())
	case key.Matches(msg, m.keys.Cancel):
		_ = session.CancelDelete()
		m.pendingDelete = planning.DeleteTarget{}
		m.mode = ModeEdit
	}
	return m, nil
}

func (m *Model) handleTodayMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = ModeTasks
	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(m.startBusy(), m.loadToday())
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	}
	return m, nil
}
