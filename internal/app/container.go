// Package app provides the dependency injection container for the application.
package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/infra/config"
	"github.com/studyplan/planner/internal/infra/httpstore"
	"github.com/studyplan/planner/internal/infra/jsonstore"
	"github.com/studyplan/planner/internal/infra/logging"
	"github.com/studyplan/planner/internal/infra/scheduler"
	"github.com/studyplan/planner/internal/infra/sqlitestore"
	"github.com/studyplan/planner/internal/planning"
	"github.com/studyplan/planner/internal/usecase"
)

// Config holds the application paths.
type Config struct {
	ProjectDir string // Directory the planner was started in
	ConfigDir  string // Path to <ProjectDir>/.planner
	StateDir   string // Path to the state directory holding logs and local stores
}

// newConfig creates a new Config for dir.
func newConfig(dir string) Config {
	return Config{
		ProjectDir: dir,
		ConfigDir:  domain.ProjectConfigDir(dir),
		StateDir:   defaultStateDir(),
	}
}

// defaultStateDir returns $XDG_STATE_HOME/planner, falling back to ~/.local/state/planner.
func defaultStateDir() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return domain.StateDir(stateHome)
}

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
type Container struct {
	// Ports (interfaces bound to implementations)
	Store            domain.TaskStore
	StoreInitializer domain.StoreInitializer // nil for the http backend
	Clock            domain.Clock
	Calendar         domain.Calendar
	ConfigLoader     domain.ConfigLoader
	ConfigManager    domain.ConfigManager
	Logger           domain.Logger

	// Pointer fields
	AppConfig *domain.Config
	Location  *time.Location
	closers   []io.Closer

	// Configuration
	Config Config
}

// New creates a new Container for the project in dir.
// Configuration is loaded and validated here; an invalid configuration is an error.
func New(dir string) (*Container, error) {
	cfg := newConfig(dir)

	configLoader := config.NewLoader(cfg.ConfigDir)
	appConfig, err := configLoader.Load()
	if err != nil {
		return nil, err
	}
	if err := appConfig.Validate(); err != nil {
		return nil, err
	}
	loc, err := appConfig.Location()
	if err != nil {
		return nil, err
	}

	clock := domain.RealClock{}
	logger := logging.New(cfg.StateDir, logging.ParseLevel(appConfig.Log.Level))

	c := &Container{
		Clock:         clock,
		Calendar:      domain.NewZonedCalendar(clock, loc),
		ConfigLoader:  configLoader,
		ConfigManager: config.NewManager(cfg.ConfigDir),
		Logger:        logger,
		AppConfig:     appConfig,
		Location:      loc,
		closers:       []io.Closer{logger},
		Config:        cfg,
	}
	if err := c.openStore(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// NewWithDeps creates a new Container with custom dependencies for testing.
func NewWithDeps(cfg Config, appConfig *domain.Config, store domain.TaskStore, clock domain.Clock, cal domain.Calendar, logger domain.Logger) *Container {
	if appConfig == nil {
		appConfig = domain.NewDefaultConfig()
	}
	if logger == nil {
		logger = domain.NopLogger{}
	}
	return &Container{
		Store:     store,
		Clock:     clock,
		Calendar:  cal,
		Logger:    logger,
		AppConfig: appConfig,
		Location:  time.UTC,
		Config:    cfg,
	}
}

// openStore binds Store to the configured backend.
func (c *Container) openStore() error {
	store := c.AppConfig.Store
	path := store.Path
	if path == "" {
		path = domain.DefaultStorePath(c.Config.StateDir, store.Backend)
	}

	switch store.Backend {
	case domain.BackendHTTP:
		c.Store = httpstore.New(store.BaseURL, c.AppConfig.User.ID, store.Timeout)
	case domain.BackendJSON:
		js := jsonstore.New(path, c.Clock)
		c.Store = js
		c.StoreInitializer = js
	case domain.BackendSQLite:
		ss, err := sqlitestore.Open(path, c.Clock)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		c.Store = ss
		c.closers = append(c.closers, ss)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnknownBackend, store.Backend)
	}
	c.Logger.Debug(0, "app", "store backend: "+store.Backend)
	return nil
}

// Close releases the store and log files.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// NewRelay returns a notification relay using the configured dismiss delay.
func (c *Container) NewRelay(opts ...planning.RelayOption) *planning.Relay {
	return planning.NewRelay(c.AppConfig.Notify.DismissAfter, opts...)
}

// NewCoordinator returns a lifecycle coordinator notifying through relay.
func (c *Container) NewCoordinator(relay *planning.Relay) *usecase.Coordinator {
	return usecase.NewCoordinator(usecase.CoordinatorDeps{
		Store:    c.Store,
		Calendar: c.Calendar,
		Logger:   c.Logger,
		Relay:    relay,
	})
}

// NewDayChange returns a scheduler calling onChange at every local midnight.
func (c *Container) NewDayChange(onChange func()) (*scheduler.DayChange, error) {
	return scheduler.NewDayChange(c.Location, c.Logger, onChange)
}

// UseCase factory methods

// CreateTaskUseCase returns a new CreateTask use case.
func (c *Container) CreateTaskUseCase() *usecase.CreateTask {
	return usecase.NewCreateTask(c.Store, c.Logger)
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Store)
}

// ShowTaskUseCase returns a new ShowTask use case.
func (c *Container) ShowTaskUseCase() *usecase.ShowTask {
	return usecase.NewShowTask(c.Store)
}

// DeleteTaskUseCase returns a new DeleteTask use case.
func (c *Container) DeleteTaskUseCase() *usecase.DeleteTask {
	return usecase.NewDeleteTask(c.Store, c.Logger)
}

// ImportDraftsUseCase returns a new ImportDrafts use case.
func (c *Container) ImportDraftsUseCase() *usecase.ImportDrafts {
	return usecase.NewImportDrafts(c.Calendar)
}

// ListTodaySubtasksUseCase returns a new ListTodaySubtasks use case.
func (c *Container) ListTodaySubtasksUseCase() *usecase.ListTodaySubtasks {
	return usecase.NewListTodaySubtasks(c.Store, c.Calendar)
}

// ShowConfigUseCase returns a new ShowConfig use case.
func (c *Container) ShowConfigUseCase() *usecase.ShowConfig {
	return usecase.NewShowConfig(c.ConfigManager, c.ConfigLoader)
}

// ShowConfigTemplateUseCase returns a new ShowConfigTemplate use case.
func (c *Container) ShowConfigTemplateUseCase() *usecase.ShowConfigTemplate {
	return usecase.NewShowConfigTemplate()
}

// InitConfigUseCase returns a new InitConfig use case.
func (c *Container) InitConfigUseCase() *usecase.InitConfig {
	return usecase.NewInitConfig(c.ConfigManager)
}

// ShowLogsUseCase returns a new ShowLogs use case.
func (c *Container) ShowLogsUseCase() *usecase.ShowLogs {
	return usecase.NewShowLogs(c.Config.StateDir)
}

// InitProjectUseCase returns a new InitProject use case.
func (c *Container) InitProjectUseCase() *usecase.InitProject {
	return usecase.NewInitProject(c.ConfigManager, c.StoreInitializer)
}
