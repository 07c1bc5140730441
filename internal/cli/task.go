package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/studyplan/planner/internal/app"
	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/usecase"
)

// newTaskCommand creates the task command.
func newTaskCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
		Long:  `Create, list, show and delete tasks.`,
	}

	cmd.AddCommand(
		newTaskNewCommand(c),
		newTaskListCommand(c),
		newTaskShowCommand(c),
		newTaskRmCommand(c),
	)

	return cmd
}

// newTaskNewCommand creates the task new subcommand.
func newTaskNewCommand(c *app.Container) *cobra.Command {
	var fields domain.TaskFields

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a new task",
		Long: `Create a new task.

The title and the due date are required. The priority defaults to medium.

Examples:
  planner task new --title "Ensayo de historia" --due 2025-03-20
  planner task new --title "Parcial" --due 2025-04-02 --priority high --subject Matemáticas --type examen`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.CreateTaskUseCase().Execute(cmd.Context(), usecase.CreateTaskInput{Fields: fields})
			if err != nil {
				var verrs domain.ValidationErrors
				if errors.As(err, &verrs) {
					printFieldErrors(cmd.ErrOrStderr(), "  ", verrs)
				}
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task #%d: %s\n", out.Task.ID, out.Task.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&fields.Title, "title", "t", "", "Task title (required)")
	cmd.Flags().StringVarP(&fields.DueDate, "due", "d", "", "Due date, YYYY-MM-DD (required)")
	cmd.Flags().StringVarP(&fields.Priority, "priority", "p", "", "Priority: low, medium or high")
	cmd.Flags().StringVar(&fields.Subject, "subject", "", "Subject, e.g. Historia")
	cmd.Flags().StringVar(&fields.Type, "type", "", "Evaluation type")
	cmd.Flags().StringVarP(&fields.Description, "body", "b", "", "Task description")

	return cmd
}

// newTaskListCommand creates the task list subcommand.
func newTaskListCommand(c *app.Container) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long:    `List tasks ordered by due date.`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := domain.Status(status)
			if st != "" && !st.IsValid() {
				return fmt.Errorf("invalid status: %q", status)
			}

			out, err := c.ListTasksUseCase().Execute(cmd.Context(), usecase.ListTasksInput{Status: st})
			if err != nil {
				return err
			}

			if len(out.Tasks) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No tasks found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tDUE\tPRIORITY\tSTATUS\tHOURS\tTITLE")
			for _, t := range out.Tasks {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					t.ID,
					t.DueDate,
					t.Priority,
					t.Status,
					domain.FormatHours(t.TotalHours()),
					t.Title,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status: pending, in_progress or completed")

	return cmd
}

// newTaskShowCommand creates the task show subcommand.
func newTaskShowCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details",
		Long:  `Show a task together with its subtasks.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			out, err := c.ShowTaskUseCase().Execute(cmd.Context(), usecase.ShowTaskInput{TaskID: id})
			if err != nil {
				return err
			}

			t := out.Task
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "# %d: %s\n\n", t.ID, t.Title)
			_, _ = fmt.Fprintf(w, "Due: %s\n", domain.FormatDueDate(t.DueDate))
			_, _ = fmt.Fprintf(w, "Priority: %s\n", t.Priority.Display())
			_, _ = fmt.Fprintf(w, "Status: %s\n", t.Status.Display())
			if t.Subject != "" {
				_, _ = fmt.Fprintf(w, "Subject: %s\n", t.Subject)
			}
			if t.Type != "" {
				_, _ = fmt.Fprintf(w, "Type: %s\n", t.Type)
			}
			if t.Description != "" {
				_, _ = fmt.Fprintf(w, "\n%s\n", t.Description)
			}

			_, _ = fmt.Fprintln(w)
			if len(t.Subtasks) == 0 {
				_, _ = fmt.Fprintln(w, "No subtasks planned.")
				return nil
			}
			printSubtaskTable(w, t.Subtasks)
			return nil
		},
	}
}

// newTaskRmCommand creates the task rm subcommand.
func newTaskRmCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task and its subtasks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			if _, err := c.DeleteTaskUseCase().Execute(cmd.Context(), usecase.DeleteTaskInput{TaskID: id}); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task #%d\n", id)
			return nil
		},
	}
}
