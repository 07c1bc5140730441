package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/studyplan/planner/internal/domain"
)

// InitProjectInput contains the input parameters for InitProject.
type InitProjectInput struct {
	ProjectDir string // Directory to initialize
}

// InitProjectOutput contains the output from InitProject.
type InitProjectOutput struct {
	ConfigPath        string // Path to the project config file
	ConfigCreated     bool   // False if the config file already existed
	StoreInitialized  bool   // True if a local store was initialized
	GitignoreNeedsAdd bool   // True if .planner/ is not in .gitignore
}

// InitProject prepares a directory for the planner: project config and local store.
type InitProject struct {
	configManager domain.ConfigManager
	storeInit     domain.StoreInitializer
}

// NewInitProject creates a new InitProject use case.
// storeInit may be nil when the configured backend needs no local initialization.
func NewInitProject(configManager domain.ConfigManager, storeInit domain.StoreInitializer) *InitProject {
	return &InitProject{
		configManager: configManager,
		storeInit:     storeInit,
	}
}

// Execute writes the config template if missing and initializes the local store.
// Running it again is harmless.
func (uc *InitProject) Execute(_ context.Context, in InitProjectInput) (*InitProjectOutput, error) {
	out := &InitProjectOutput{}

	path, err := uc.configManager.InitProjectConfig(false)
	switch {
	case err == nil:
		out.ConfigCreated = true
		out.ConfigPath = path
	case errors.Is(err, domain.ErrConfigExists):
		out.ConfigPath = uc.configManager.GetProjectConfigInfo().Path
	default:
		return nil, fmt.Errorf("create project config: %w", err)
	}

	if uc.storeInit != nil {
		if err := uc.storeInit.Initialize(); err != nil {
			return nil, fmt.Errorf("initialize task store: %w", err)
		}
		out.StoreInitialized = true
	}

	if in.ProjectDir != "" {
		out.GitignoreNeedsAdd = !isPlannerInGitignore(in.ProjectDir)
	}

	return out, nil
}

// isPlannerInGitignore checks if the project config directory is in .gitignore.
func isPlannerInGitignore(projectDir string) bool {
	content, err := os.ReadFile(filepath.Join(projectDir, ".gitignore"))
	if err != nil {
		return false
	}

	dir := "." + domain.AppName
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == dir || line == dir+"/" || line == "/"+dir || line == "/"+dir+"/" {
			return true
		}
	}
	return false
}
