// Package logging provides file-based logging for the planner.
// Entries go to the global log (<state>/logs/planner.log) and, when they concern
// a task, also to that task's log (<state>/logs/task-N.log).
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/studyplan/planner/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger writes formatted entries to append-only log files opened on first use.
// Fields are ordered to minimize memory padding.
type Logger struct {
	clock    domain.Clock
	files    map[string]*os.File
	stateDir string
	mu       sync.Mutex
	level    slog.Level
}

// Option configures a Logger.
type Option func(*Logger)

// WithClock sets the clock used to timestamp entries.
func WithClock(clock domain.Clock) Option {
	return func(l *Logger) {
		l.clock = clock
	}
}

// New creates a Logger writing under stateDir.
// If stateDir is empty, logging is disabled.
func New(stateDir string, level slog.Level, opts ...Option) *Logger {
	l := &Logger{
		clock:    domain.RealClock{},
		files:    make(map[string]*os.File),
		stateDir: stateDir,
		level:    level,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ParseLevel parses a log level name into slog.Level. Unknown names mean info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// file returns the open log file at path, opening it on first use.
// Must be called with l.mu held.
func (l *Logger) file(path string) (*os.File, error) {
	if f, ok := l.files[path]; ok {
		return f, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.files[path] = f
	return f, nil
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	for path, f := range l.files {
		if err := f.Close(); err != nil {
			lastErr = err
		}
		delete(l.files, path)
	}
	return lastErr
}

// format formats one log line:
// [2025-03-01 09:32:51] [INFO] [task-42] [subtask] attached 2 of 2 subtasks
// Line breaks in msg are folded so every entry stays on one line.
func (l *Logger) format(level slog.Level, taskID int, category, msg string) string {
	scope := "global"
	if taskID > 0 {
		scope = fmt.Sprintf("task-%d", taskID)
	}
	msg = strings.ReplaceAll(strings.TrimRight(msg, "\n"), "\n", " | ")
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		l.clock.Now().Format("2006-01-02 15:04:05"),
		level.String(),
		scope,
		category,
		msg,
	)
}

// write appends an entry to the global log and, for taskID > 0, to the task log.
func (l *Logger) write(level slog.Level, taskID int, category, msg string) {
	if l.stateDir == "" || level < l.level {
		return
	}

	entry := l.format(level, taskID, category, msg)
	paths := []string{domain.GlobalLogPath(l.stateDir)}
	if taskID > 0 {
		paths = append(paths, domain.TaskLogPath(l.stateDir, taskID))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range paths {
		if f, err := l.file(p); err == nil {
			_, _ = io.WriteString(f, entry)
		}
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(taskID int, category, msg string) {
	l.write(slog.LevelDebug, taskID, category, msg)
}

// Info logs an info message.
func (l *Logger) Info(taskID int, category, msg string) {
	l.write(slog.LevelInfo, taskID, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(taskID int, category, msg string) {
	l.write(slog.LevelWarn, taskID, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(taskID int, category, msg string) {
	l.write(slog.LevelError, taskID, category, msg)
}
