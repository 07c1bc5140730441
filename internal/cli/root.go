// Package cli provides the command-line interface for the planner.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyplan/planner/internal/app"
)

// Command group IDs.
const (
	groupSetup = "setup"
	groupPlan  = "plan"
)

// launchTUIFunc is a function variable for launching the TUI, allowing it to be mocked in tests.
var launchTUIFunc = launchTUI

// NewRootCommand creates the root command for the planner.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "planner",
		Short: "Plan study tasks as subtasks with dates and hours",
		Long: `planner breaks tasks into subtasks, each with a planification date
and an estimate of needed hours, and shows what is planned for today.

Running planner without a subcommand opens the interactive TUI.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// Skip if container is nil (e.g. in tests)
			if c == nil || c.AppConfig == nil {
				return
			}
			for _, w := range c.AppConfig.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return launchTUIFunc(cmd.Context(), c)
		},
	}

	// Define command groups
	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupPlan, Title: "Planning Commands:"},
	)

	// Setup commands
	initCmd := newInitCommand(c)
	initCmd.GroupID = groupSetup

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	logsCmd := newLogsCommand(c)
	logsCmd.GroupID = groupSetup

	// Planning commands
	taskCmd := newTaskCommand(c)
	taskCmd.GroupID = groupPlan

	subtaskCmd := newSubtaskCommand(c)
	subtaskCmd.GroupID = groupPlan

	todayCmd := newTodayCommand(c)
	todayCmd.GroupID = groupPlan

	tuiCmd := newTUICommand(c)
	tuiCmd.GroupID = groupPlan

	root.AddCommand(
		initCmd,
		configCmd,
		logsCmd,
		taskCmd,
		subtaskCmd,
		todayCmd,
		tuiCmd,
	)

	return root
}
