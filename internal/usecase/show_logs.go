package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/studyplan/planner/internal/domain"
)

// ErrNoLogFile is returned when the requested log file does not exist.
var ErrNoLogFile = errors.New("no log file")

// ShowLogsInput contains the parameters for showing logs.
type ShowLogsInput struct {
	TaskID int // Task to show logs for (0 = global log)
	Lines  int // Number of lines to display from the end (0 = all)
}

// ShowLogsOutput contains the log content.
type ShowLogsOutput struct {
	LogPath string // Path to the log file
	Content string // Log file content
}

// ShowLogs is the use case for viewing the planner's logs.
type ShowLogs struct {
	stateDir string
}

// NewShowLogs creates a new ShowLogs use case.
func NewShowLogs(stateDir string) *ShowLogs {
	return &ShowLogs{stateDir: stateDir}
}

// Execute reads the log file.
func (uc *ShowLogs) Execute(_ context.Context, in ShowLogsInput) (*ShowLogsOutput, error) {
	logPath := domain.GlobalLogPath(uc.stateDir)
	if in.TaskID > 0 {
		logPath = domain.TaskLogPath(uc.stateDir, in.TaskID)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoLogFile, logPath)
		}
		return nil, fmt.Errorf("read log file: %w", err)
	}

	result := strings.TrimRight(string(content), "\n")
	if in.Lines > 0 {
		lines := strings.Split(result, "\n")
		if len(lines) > in.Lines {
			lines = lines[len(lines)-in.Lines:]
		}
		result = strings.Join(lines, "\n")
	}

	return &ShowLogsOutput{
		LogPath: logPath,
		Content: result,
	}, nil
}
