package domain

import (
	_ "embed"
	"fmt"
	"time"
)

//go:embed config_template.toml
var configTemplateContent string

// ConfigTemplate returns the commented configuration template written by "planner config init".
func ConfigTemplate() string {
	return configTemplateContent
}

// Store backends.
const (
	BackendHTTP   = "http"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Configuration defaults.
const (
	DefaultBackend      = BackendHTTP
	DefaultBaseURL      = "http://localhost:8000"
	DefaultStoreTimeout = 10 * time.Second
	DefaultUserID       = 1
	DefaultTimezone     = "America/Bogota"
	DefaultDismissAfter = 3 * time.Second
	DefaultLogLevel     = "info"
)

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings []string
	Store    StoreConfig
	User     UserConfig
	Log      LogConfig
	Notify   NotifyConfig
}

// StoreConfig holds TaskStore settings from the [store] section.
// Fields are ordered to minimize memory padding.
type StoreConfig struct {
	Backend string        // "http" (default), "json" or "sqlite"
	BaseURL string        // REST API root for the http backend
	Path    string        // Database file for json/sqlite backends
	Timeout time.Duration // Per-request timeout for the http backend
}

// UserConfig holds the acting user's settings from the [user] section.
type UserConfig struct {
	Timezone string // IANA zone used to decide what "today" is
	ID       int    // User ID sent with tasks and today filters
}

// NotifyConfig holds notification settings from the [notify] section.
type NotifyConfig struct {
	DismissAfter time.Duration // Auto-dismiss delay
}

// LogConfig holds logging settings from the [log] section.
type LogConfig struct {
	Level string // Log level: debug, info, warn, error
}

// NewDefaultConfig returns a config populated with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: DefaultBackend,
			BaseURL: DefaultBaseURL,
			Timeout: DefaultStoreTimeout,
		},
		User: UserConfig{
			ID:       DefaultUserID,
			Timezone: DefaultTimezone,
		},
		Notify: NotifyConfig{DismissAfter: DefaultDismissAfter},
		Log:    LogConfig{Level: DefaultLogLevel},
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	name := c.User.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, name)
	}
	return loc, nil
}

// Validate checks the settings that cannot be defaulted silently.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendHTTP:
		if c.Store.BaseURL == "" {
			return fmt.Errorf("%w: store.base_url is required for the http backend", ErrInvalidConfig)
		}
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Store.Backend)
	}
	if c.User.ID <= 0 {
		return fmt.Errorf("%w: user.id must be positive", ErrInvalidConfig)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// ConfigInfo holds information about a config file.
type ConfigInfo struct {
	Path    string // File path
	Content string // File content (empty if not exists)
	Exists  bool   // Whether the file exists
}
