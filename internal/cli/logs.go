package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studyplan/planner/internal/app"
	"github.com/studyplan/planner/internal/usecase"
)

// newLogsCommand creates the logs command.
func newLogsCommand(c *app.Container) *cobra.Command {
	var lines int

	cmd := &cobra.Command{
		Use:   "logs [task-id]",
		Short: "Show planner logs",
		Long: `Show the global log, or the log of one task.

Examples:
  # Show the last 50 lines of the global log
  planner logs -n 50

  # Show the log of task 42
  planner logs 42`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := usecase.ShowLogsInput{Lines: lines}
			if len(args) == 1 {
				id, err := parseTaskID(args[0])
				if err != nil {
					return err
				}
				in.TaskID = id
			}

			out, err := c.ShowLogsUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Content)
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 0, "Number of lines to show from the end (0 = all)")

	return cmd
}
