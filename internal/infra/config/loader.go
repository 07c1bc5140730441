// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/studyplan/planner/internal/domain"
)

// Environment variables overriding file configuration.
const (
	EnvAPIURL   = "PLANNER_API_URL"
	EnvUserID   = "PLANNER_USER_ID"
	EnvTimezone = "PLANNER_TIMEZONE"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files and the environment.
type Loader struct {
	lookupEnv     func(string) (string, bool)
	projectDir    string // Path to the project's .planner directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/planner)
}

// NewLoader creates a new Loader.
func NewLoader(projectDir string) *Loader {
	return &Loader{
		lookupEnv:     os.LookupEnv,
		projectDir:    projectDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(projectDir, globalConfDir string) *Loader {
	return &Loader{
		lookupEnv:     os.LookupEnv,
		projectDir:    projectDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns the default global config directory.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// Load returns the merged configuration.
// Merge order: default <- global <- project <- environment (later takes precedence).
func (l *Loader) Load() (*domain.Config, error) {
	global, err := l.LoadGlobal()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	project, err := l.loadFile(filepath.Join(l.projectDir, domain.ConfigFileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	base := domain.NewDefaultConfig()
	if global != nil {
		base = mergeConfigs(base, global)
	}
	if project != nil {
		base = mergeConfigs(base, project)
	}
	l.applyEnv(base)

	return base, nil
}

// LoadGlobal returns only the global configuration.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(filepath.Join(l.globalConfDir, domain.ConfigFileName))
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return convertRawToDomainConfig(raw), nil
}

// applyEnv overrides cfg with the PLANNER_* environment variables.
func (l *Loader) applyEnv(cfg *domain.Config) {
	if v, ok := l.lookupEnv(EnvAPIURL); ok && v != "" {
		cfg.Store.BaseURL = v
	}
	if v, ok := l.lookupEnv(EnvUserID); ok && v != "" {
		if id, err := strconv.Atoi(v); err == nil && id > 0 {
			cfg.User.ID = id
		} else {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("invalid %s: %q", EnvUserID, v))
		}
	}
	if v, ok := l.lookupEnv(EnvTimezone); ok && v != "" {
		cfg.User.Timezone = v
	}
}

// convertRawToDomainConfig converts the raw map to a partial domain config and collects warnings.
// Keys that are absent stay at their zero value so they do not override during merging.
func convertRawToDomainConfig(raw map[string]any) *domain.Config {
	res := &domain.Config{}
	var warnings []string
	warnf := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warnf("unknown section: %s", section)
			continue
		}
		switch section {
		case "store":
			for k, v := range m {
				switch k {
				case "backend":
					res.Store.Backend = stringValue(v)
				case "base_url":
					res.Store.BaseURL = stringValue(v)
				case "path":
					res.Store.Path = stringValue(v)
				case "timeout":
					if d, ok := durationValue(v); ok {
						res.Store.Timeout = d
					} else {
						warnf("invalid value in [store]: timeout = %v", v)
					}
				default:
					warnf("unknown key in [store]: %s", k)
				}
			}
		case "user":
			for k, v := range m {
				switch k {
				case "id":
					if n, ok := v.(int64); ok && n > 0 {
						res.User.ID = int(n)
					} else {
						warnf("invalid value in [user]: id = %v", v)
					}
				case "timezone":
					res.User.Timezone = stringValue(v)
				default:
					warnf("unknown key in [user]: %s", k)
				}
			}
		case "notify":
			for k, v := range m {
				switch k {
				case "dismiss_after":
					if d, ok := durationValue(v); ok {
						res.Notify.DismissAfter = d
					} else {
						warnf("invalid value in [notify]: dismiss_after = %v", v)
					}
				default:
					warnf("unknown key in [notify]: %s", k)
				}
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					res.Log.Level = stringValue(v)
				default:
					warnf("unknown key in [log]: %s", k)
				}
			}
		default:
			warnf("unknown section: %s", section)
		}
	}

	sort.Strings(warnings)
	res.Warnings = warnings
	return res
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// durationValue accepts a duration string ("3s", "1m30s") or a number of seconds.
func durationValue(v any) (time.Duration, bool) {
	switch x := v.(type) {
	case string:
		d, err := time.ParseDuration(x)
		return d, err == nil && d > 0
	case int64:
		return time.Duration(x) * time.Second, x > 0
	case float64:
		return time.Duration(x * float64(time.Second)), x > 0
	}
	return 0, false
}

// mergeConfigs merges two configs, with non-zero override values taking precedence.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := *base
	result.Warnings = append(append([]string{}, base.Warnings...), override.Warnings...)

	if override.Store.Backend != "" {
		result.Store.Backend = override.Store.Backend
	}
	if override.Store.BaseURL != "" {
		result.Store.BaseURL = override.Store.BaseURL
	}
	if override.Store.Path != "" {
		result.Store.Path = override.Store.Path
	}
	if override.Store.Timeout != 0 {
		result.Store.Timeout = override.Store.Timeout
	}
	if override.User.ID != 0 {
		result.User.ID = override.User.ID
	}
	if override.User.Timezone != "" {
		result.User.Timezone = override.User.Timezone
	}
	if override.Notify.DismissAfter != 0 {
		result.Notify.DismissAfter = override.Notify.DismissAfter
	}
	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}

	return &result
}
