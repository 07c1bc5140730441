package domain

import (
	"fmt"
	"path/filepath"
)

// ConfigFileName is the name of the configuration file in both config directories.
const ConfigFileName = "config.toml"

// AppName is used for config and state directory names.
const AppName = "planner"

// ProjectConfigDir returns the project-local config directory under dir.
func ProjectConfigDir(dir string) string {
	return filepath.Join(dir, "."+AppName)
}

// GlobalConfigDir returns the global config directory under configHome (e.g. ~/.config).
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, AppName)
}

// StateDir returns the state directory under stateHome (e.g. ~/.local/state).
func StateDir(stateHome string) string {
	return filepath.Join(stateHome, AppName)
}

// TaskLogPath returns the path to the task log file.
func TaskLogPath(stateDir string, taskID int) string {
	return filepath.Join(stateDir, "logs", fmt.Sprintf("task-%d.log", taskID))
}

// GlobalLogPath returns the path to the global log file.
func GlobalLogPath(stateDir string) string {
	return filepath.Join(stateDir, "logs", AppName+".log")
}

// DefaultStorePath returns the default file path of a local store backend.
func DefaultStorePath(stateDir, backend string) string {
	switch backend {
	case BackendSQLite:
		return filepath.Join(stateDir, "tasks.db")
	default:
		return filepath.Join(stateDir, "tasks.json")
	}
}
