package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/studyplan/planner/internal/app"
	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/infra/scheduler"
	"github.com/studyplan/planner/internal/planning"
	"github.com/studyplan/planner/internal/usecase"
)

// Model is the main bubbletea model for the TUI.
//
// Store calls run as commands on their own goroutine, one at a time: while busy is
// set no key reaches the coordinator. The view renders only the snapshots taken by
// sync, never the coordinator itself.
type Model struct {
	// Dependencies (pointers first for alignment)
	container *app.Container
	coord     *usecase.Coordinator
	relay     *planning.Relay
	dayChange *scheduler.DayChange
	dayCh     chan struct{}
	today     *usecase.ListTodaySubtasksOutput
	err       error // Local hint that is not a store failure, e.g. submitting no drafts

	// Snapshots (slices)
	tasks  []domain.Task
	drafts []planning.Draft
	items  []planning.Item

	// Validation errors of the visible form
	taskErrs domain.ValidationErrors
	formErrs domain.ValidationErrors

	// Components (structs with pointers)
	keys     KeyMap
	styles   Styles
	help     help.Model
	taskList list.Model
	spinner  spinner.Model
	taskForm form
	subForm  form

	// Small state
	pendingDelete planning.DeleteTarget
	grabbed       domain.SubtaskID
	activeTitle   string
	sessionTitle  string
	draftTotal    float64
	itemTotal     float64
	toastSeq      uint64
	mode          Mode
	prevMode      Mode
	width         int
	height        int
	cursor        int
	busy          bool
	listFocus     bool // ModePlan: the draft list has focus instead of the form
	addingItem    bool // ModeEditItem: the form adds a new item instead of editing one
}

// New creates a new TUI Model with the given container.
func New(c *app.Container) *Model {
	styles := DefaultStyles()
	taskList := list.New([]list.Item{}, newTaskDelegate(styles), 0, 0)
	taskList.SetShowTitle(false)
	taskList.SetShowStatusBar(false)
	taskList.SetShowHelp(false)
	taskList.SetFilteringEnabled(true)
	taskList.DisableQuitKeybindings()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	relay := c.NewRelay(planning.WithManualExpiry())
	m := &Model{
		container: c,
		coord:     c.NewCoordinator(relay),
		relay:     relay,
		dayCh:     make(chan struct{}, 1),
		keys:      DefaultKeyMap(),
		styles:    styles,
		help:      help.New(),
		taskList:  taskList,
		spinner:   sp,
		taskForm:  newTaskForm(),
		subForm:   newSubtaskForm(),
		mode:      ModeTasks,
	}

	dc, err := c.NewDayChange(m.notifyDayChange)
	if err != nil {
		c.Logger.Warn(0, "tui", "day change scheduler disabled: "+err.Error())
	} else {
		m.dayChange = dc
	}
	return m
}

// Init initializes the model and returns the initial command.
func (m *Model) Init() tea.Cmd {
	if m.dayChange != nil {
		if err := m.dayChange.Start(context.Background()); err != nil {
			m.container.Logger.Warn(0, "tui", "start day change scheduler: "+err.Error())
		}
	}
	return tea.Batch(
		m.startBusy(),
		m.refresh(),
		m.waitDayChange(),
	)
}

// Close stops background work started by Init.
func (m *Model) Close() {
	if m.dayChange != nil {
		m.dayChange.Stop()
	}
}

// Mode returns the current UI mode.
func (m *Model) Mode() Mode {
	return m.mode
}

// notifyDayChange is called by the scheduler goroutine at every local midnight.
func (m *Model) notifyDayChange() {
	select {
	case m.dayCh <- struct{}{}:
	default:
	}
}

// waitDayChange returns a command that waits for the next day change.
func (m *Model) waitDayChange() tea.Cmd {
	ch := m.dayCh
	return func() tea.Msg {
		<-ch
		return MsgDayChanged{}
	}
}

// startBusy marks a store call in flight and starts the spinner.
func (m *Model) startBusy() tea.Cmd {
	m.busy = true
	m.err = nil
	return m.spinner.Tick
}

// Commands. Each runs exactly one coordinator call off the UI goroutine.

func (m *Model) refresh() tea.Cmd {
	coord := m.coord
	return func() tea.Msg {
		return MsgTasksLoaded{Err: coord.Refresh(context.Background())}
	}
}

func (m *Model) createTask(fields domain.TaskFields) tea.Cmd {
	coord := m.coord
	return func() tea.Msg {
		task, err := coord.CreateTask(context.Background(), fields)
		return MsgTaskCreated{Task: task, Err: err}
	}
}

func (m *Model) submitDrafts() tea.Cmd {
	coord := m.coord
	return func() tea.Msg {
		subtasks, err := coord.FinalizeDrafts(context.Background())
		return MsgDraftsSubmitted{Subtasks: subtasks, Err: err}
	}
}

func (m *Model) openEdit(taskID int) tea.Cmd {
	coord := m.coord
	return func() tea.Msg {
		_, err := coord.OpenEdit(context.Background(), taskID)
		return MsgSessionOpened{TaskID: taskID, Err: err}
	}
}

func (m *Model) saveSession() tea.Cmd {
	coord := m.coord
	return func() tea.Msg {
		return MsgSessionSaved{Err: coord.SaveSession(context.Background())}
	}
}

func (m *Model) confirmDelete() tea.Cmd {
	coord := m.coord
	return func() tea.Msg {
		out, err := coord.ConfirmDelete(context.Background())
		return MsgDeleteConfirmed{Outcome: out, Err: err}
	}
}

func (m *Model) loadToday() tea.Cmd {
	coord := m.coord
	return func() tea.Msg {
		out, err := coord.Today(context.Background())
		return MsgTodayLoaded{Out: out, Err: err}
	}
}

// scheduleToast returns a command expiring the visible notification after the
// relay's delay, once per notification.
func (m *Model) scheduleToast() tea.Cmd {
	n, ok := m.relay.Current()
	if !ok || n.Seq == m.toastSeq {
		return nil
	}
	m.toastSeq = n.Seq
	seq := n.Seq
	return tea.Tick(m.relay.Delay(), func(time.Time) tea.Msg {
		return MsgToastExpired{Seq: seq}
	})
}

// sync copies the coordinator state into the view snapshots.
// It must not be called while a store call is in flight.
func (m *Model) sync() {
	m.tasks = m.coord.Tasks()
	m.updateTaskList()

	m.drafts, m.draftTotal, m.activeTitle = nil, 0, ""
	if d := m.coord.Drafts(); d != nil {
		m.drafts = d.Drafts()
		m.draftTotal = d.TotalHours()
	}
	if t, ok := m.coord.ActiveTask(); ok {
		m.activeTitle = t.Title
	}

	m.items, m.itemTotal, m.sessionTitle = nil, 0, ""
	if s := m.coord.Session(); s != nil {
		m.items = s.Items()
		m.itemTotal = s.TotalHours()
		m.sessionTitle = s.Task().Title
	}

	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := 0
	switch m.mode {
	case ModePlan:
		n = len(m.drafts)
	case ModeEdit, ModeEditItem, ModeConfirmDelete:
		n = len(m.items)
	case ModeTasks, ModeNewTask, ModeToday, ModeHelp:
		return
	}
	m.cursor = min(max(m.cursor, 0), max(n-1, 0))
}

// updateTaskList replaces the list items, keeping the selected task when it is still listed.
func (m *Model) updateTaskList() {
	selectedID := 0
	if t, ok := m.SelectedTask(); ok {
		selectedID = t.ID
	}

	items := make([]list.Item, 0, len(m.tasks))
	selected := 0
	for i, t := range m.tasks {
		if t.ID == selectedID {
			selected = i
		}
		items = append(items, taskItem{task: t})
	}
	m.taskList.SetItems(items)
	m.taskList.Select(selected)
}

// SelectedTask returns the currently selected task.
func (m *Model) SelectedTask() (domain.Task, bool) {
	if ti, ok := m.taskList.SelectedItem().(taskItem); ok {
		return ti.task, true
	}
	return domain.Task{}, false
}

func (m *Model) updateLayoutSizes() {
	m.help.Width = m.width
	listHeight := m.height - 10
	if listHeight < 5 {
		listHeight = 5
	}
	m.taskList.SetSize(m.contentWidth(), listHeight)
}

// contentWidth returns the usable width inside the app padding.
func (m *Model) contentWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	return w
}
