package usecase

import (
	"context"
	"errors"
	"slices"

	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/planning"
)

// User-visible notification messages. They never carry the underlying error text.
const (
	MsgTaskCreated         = "Tarea creada correctamente."
	MsgTaskCreateFailed    = domain.MsgTaskSubmitFailed
	MsgTasksLoadFailed     = "No se pudieron cargar las tareas."
	MsgDraftsAttached      = "¡Listo! Las actividades se han añadido a tu tarea exitosamente."
	MsgDraftsAttachFailed  = "Hubo un problema al intentar guardar las actividades."
	MsgEditOpenFailed      = "No se pudo abrir la edición de subtareas."
	MsgSubtasksSaved       = "Subtareas actualizadas correctamente."
	MsgSubtasksSaveFailed  = "No se pudieron guardar los cambios."
	MsgTaskDeleted         = "Tarea eliminada correctamente."
	MsgTaskDeleteFailed    = "No se pudo eliminar la tarea."
	MsgSubtaskDeleted      = "Subtarea eliminada correctamente."
	MsgSubtaskDeleteFailed = "No se pudo eliminar la subtarea."
	MsgTodayLoadFailed     = "No se pudieron cargar las actividades de hoy."
)

// ErrNoActiveTask is returned when an operation needs a newly created task and there is none.
var ErrNoActiveTask = errors.New("no task is being planned")

// ErrNoSession is returned when an operation needs an open edit session and there is none.
var ErrNoSession = errors.New("no edit session is open")

// CoordinatorDeps holds the collaborators of a Coordinator.
type CoordinatorDeps struct {
	Store    domain.TaskStore
	Calendar domain.Calendar
	Logger   domain.Logger
	Relay    *planning.Relay
}

// Coordinator sequences the task lifecycle: create a task, plan its subtasks,
// open an edit session, save and delete. It holds the task list being rendered,
// catches every store failure, logs it and turns it into a notification.
// Form validation errors are returned to the caller and never notified.
// A Coordinator is not safe for concurrent use.
// Fields are ordered to minimize memory padding.
type Coordinator struct {
	logger        domain.Logger
	cal           domain.Calendar
	relay         *planning.Relay
	createTask    *CreateTask
	attach        *AttachSubtasks
	openEdit      *OpenEditSession
	saveSubtasks  *SaveSubtasks
	confirmDelete *ConfirmDelete
	listTasks     *ListTasks
	listToday     *ListTodaySubtasks
	active        *domain.Task
	drafts        *planning.DraftList
	session       *planning.EditSession
	tasks         []domain.Task
}

// NewCoordinator creates a Coordinator.
func NewCoordinator(deps CoordinatorDeps) *Coordinator {
	logger := deps.Logger
	if logger == nil {
		logger = domain.NopLogger{}
	}
	relay := deps.Relay
	if relay == nil {
		relay = planning.NewRelay(domain.DefaultDismissAfter)
	}
	return &Coordinator{
		logger:        logger,
		cal:           deps.Calendar,
		relay:         relay,
		createTask:    NewCreateTask(deps.Store, logger),
		attach:        NewAttachSubtasks(deps.Store, logger),
		openEdit:      NewOpenEditSession(deps.Store, deps.Calendar),
		saveSubtasks:  NewSaveSubtasks(deps.Store, logger),
		confirmDelete: NewConfirmDelete(deps.Store, logger),
		listTasks:     NewListTasks(deps.Store),
		listToday:     NewListTodaySubtasks(deps.Store, deps.Calendar),
	}
}

// Relay returns the notification relay.
func (c *Coordinator) Relay() *planning.Relay {
	return c.relay
}

// Tasks returns a copy of the task list being rendered.
func (c *Coordinator) Tasks() []domain.Task {
	return slices.Clone(c.tasks)
}

// Task returns the listed task with id.
func (c *Coordinator) Task(id int) (domain.Task, bool) {
	if i := c.taskIndex(id); i >= 0 {
		return c.tasks[i], true
	}
	return domain.Task{}, false
}

// ActiveTask returns the task created last, whose subtasks are being planned.
func (c *Coordinator) ActiveTask() (*domain.Task, bool) {
	return c.active, c.active != nil
}

// Drafts returns the draft list of the active task, or nil when no task is being planned.
func (c *Coordinator) Drafts() *planning.DraftList {
	return c.drafts
}

// Session returns the open edit session, or nil.
func (c *Coordinator) Session() *planning.EditSession {
	return c.session
}

// Refresh reloads the task list from the store.
func (c *Coordinator) Refresh(ctx context.Context) error {
	out, err := c.listTasks.Execute(ctx, ListTasksInput{})
	if err != nil {
		return c.fail(0, MsgTasksLoadFailed, err)
	}
	c.tasks = out.Tasks
	return nil
}

// CreateTask validates the task form and creates the task. On success the task is
// appended to the list and becomes the active task with an empty draft list.
// A form error is returned as domain.ValidationErrors; the form should stay as typed.
func (c *Coordinator) CreateTask(ctx context.Context, fields domain.TaskFields) (*domain.Task, error) {
	out, err := c.createTask.Execute(ctx, CreateTaskInput{Fields: fields})
	if err != nil {
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, err
		}
		return nil, c.fail(0, MsgTaskCreateFailed, err)
	}

	task := *out.Task
	c.tasks = append(c.tasks, task)
	c.active = &task
	c.drafts = planning.NewDraftList(c.cal)
	c.relay.Success(MsgTaskCreated)
	return &task, nil
}

// StartPlanning makes an already persisted task the active task with an empty draft list.
func (c *Coordinator) StartPlanning(task domain.Task) *planning.DraftList {
	c.active = &task
	c.drafts = planning.NewDraftList(c.cal)
	return c.drafts
}

// FinalizeDrafts submits the active task's drafts. On success the drafts are cleared
// and the listed task gains the created subtasks. On failure the drafts are kept for a retry.
func (c *Coordinator) FinalizeDrafts(ctx context.Context) ([]domain.Subtask, error) {
	if c.active == nil || c.drafts == nil {
		return nil, ErrNoActiveTask
	}

	taskID := c.active.ID
	out, err := c.attach.Execute(ctx, AttachSubtasksInput{TaskID: taskID, Drafts: c.drafts.Values()})
	if out != nil {
		c.appendSubtasks(taskID, out.Subtasks)
	}
	if err != nil {
		return nil, c.fail(taskID, MsgDraftsAttachFailed, err)
	}

	c.drafts.Reset()
	c.relay.Success(MsgDraftsAttached)
	return out.Subtasks, nil
}

// FinishPlanning forgets the active task and its drafts.
func (c *Coordinator) FinishPlanning() {
	c.active = nil
	c.drafts = nil
}

// OpenEdit re-fetches the task and opens an edit session on it, replacing any open session.
func (c *Coordinator) OpenEdit(ctx context.Context, taskID int) (*planning.EditSession, error) {
	out, err := c.openEdit.Execute(ctx, OpenEditSessionInput{TaskID: taskID})
	if err != nil {
		return nil, c.fail(taskID, MsgEditOpenFailed, err)
	}
	c.session = out.Session
	c.replaceTask(out.Session.Task())
	return c.session, nil
}

// CloseSession closes the open edit session without saving.
func (c *Coordinator) CloseSession() {
	c.session = nil
}

// SaveSession saves the open edit session. Edit mode is left whatever the outcome.
func (c *Coordinator) SaveSession(ctx context.Context) error {
	if c.session == nil {
		return ErrNoSession
	}

	out, err := c.saveSubtasks.Execute(ctx, SaveSubtasksInput{Session: c.session})
	if err != nil {
		return c.fail(c.session.TaskID(), MsgSubtasksSaveFailed, err)
	}

	c.replaceTask(out.Task)
	c.relay.Success(MsgSubtasksSaved)
	return nil
}

// ConfirmDelete carries out the session's pending delete confirmation.
// When the whole task is deleted it is evicted from the list and the session is closed.
func (c *Coordinator) ConfirmDelete(ctx context.Context) (planning.DeleteOutcome, error) {
	if c.session == nil {
		return planning.DeleteOutcome{}, ErrNoSession
	}
	taskID := c.session.TaskID()
	target, _ := c.session.PendingDelete()

	out, err := c.confirmDelete.Execute(ctx, ConfirmDeleteInput{Session: c.session})
	if err != nil {
		if errors.Is(err, domain.ErrNoDeletePending) {
			return planning.DeleteOutcome{}, err
		}
		msg := MsgSubtaskDeleteFailed
		if target.IsTask() {
			msg = MsgTaskDeleteFailed
		}
		return out.Outcome, c.fail(taskID, msg, err)
	}

	if out.Outcome.TaskDeleted {
		c.evictTask(taskID)
		c.relay.Success(MsgTaskDeleted)
		return out.Outcome, nil
	}

	c.replaceTask(c.session.Task())
	c.relay.Success(MsgSubtaskDeleted)
	return out.Outcome, nil
}

// Today lists the pending subtasks planned for today.
func (c *Coordinator) Today(ctx context.Context) (*ListTodaySubtasksOutput, error) {
	out, err := c.listToday.Execute(ctx, ListTodaySubtasksInput{})
	if err != nil {
		return nil, c.fail(0, MsgTodayLoadFailed, err)
	}
	return out, nil
}

// fail logs err and shows msg as an error notification. It returns err.
func (c *Coordinator) fail(taskID int, msg string, err error) error {
	c.logger.Error(taskID, "store", err.Error())
	c.relay.Error(msg)
	return err
}

func (c *Coordinator) taskIndex(id int) int {
	return slices.IndexFunc(c.tasks, func(t domain.Task) bool { return t.ID == id })
}

func (c *Coordinator) replaceTask(task domain.Task) {
	if i := c.taskIndex(task.ID); i >= 0 {
		c.tasks[i] = task
	}
	if c.active != nil && c.active.ID == task.ID {
		c.active = &task
	}
}

func (c *Coordinator) appendSubtasks(taskID int, subtasks []domain.Subtask) {
	if len(subtasks) == 0 {
		return
	}
	if i := c.taskIndex(taskID); i >= 0 {
		t := &c.tasks[i]
		t.Subtasks = append(slices.Clone(t.Subtasks), subtasks...)
	}
	if c.active != nil && c.active.ID == taskID {
		c.active.Subtasks = append(slices.Clone(c.active.Subtasks), subtasks...)
	}
}

// evictTask removes every trace of the task from the coordinator.
func (c *Coordinator) evictTask(id int) {
	c.tasks = slices.DeleteFunc(c.tasks, func(t domain.Task) bool { return t.ID == id })
	if c.session != nil && c.session.TaskID() == id {
		c.session = nil
	}
	if c.active != nil && c.active.ID == id {
		c.FinishPlanning()
	}
}
