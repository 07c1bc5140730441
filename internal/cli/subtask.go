package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/studyplan/planner/internal/app"
	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/infra/planfile"
	"github.com/studyplan/planner/internal/planning"
	"github.com/studyplan/planner/internal/usecase"
)

// newSubtaskCommand creates the subtask command.
func newSubtaskCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subtask",
		Aliases: []string{"sub"},
		Short:   "Plan and edit subtasks",
		Long:    `Plan the subtasks of a task, edit them and delete them.`,
	}

	cmd.AddCommand(
		newSubtaskPlanCommand(c),
		newSubtaskEditCommand(c),
		newSubtaskRmCommand(c),
	)

	return cmd
}

// newSubtaskPlanCommand creates the subtask plan subcommand.
func newSubtaskPlanCommand(c *app.Container) *cobra.Command {
	var opts struct {
		from   string
		adds   []string
		dryRun bool
	}

	cmd := &cobra.Command{
		Use:   "plan <task-id>",
		Short: "Add planned subtasks to a task",
		Long: `Add planned subtasks to a task.

Subtasks come from a YAML plan file (--from, "-" for stdin) and from
--add flags in the form "description|YYYY-MM-DD|hours". Every entry is
validated like the interactive form: the description needs 5 to 300
characters, the date cannot be in the past and hours go from 0.5 to 24.
If any entry is rejected nothing is submitted.

Plan file format:
  subtasks:
    - description: Leer capítulo 3
      date: 2025-03-10
      hours: 1.5
    - description: Resumir lecturas
      date: 2025-03-11
      hours: 2

Examples:
  planner subtask plan 3 --from plan.yaml
  planner subtask plan 3 --add "Leer capítulo 3|2025-03-10|1.5" --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}

			entries, err := readPlanEntries(cmd.InOrStdin(), opts.from)
			if err != nil {
				return err
			}
			for _, a := range opts.adds {
				f, err := parseSubtaskSpec(a)
				if err != nil {
					return err
				}
				entries = append(entries, f)
			}

			imported, err := c.ImportDraftsUseCase().Execute(cmd.Context(), usecase.ImportDraftsInput{Entries: entries})
			if err != nil {
				return err
			}
			if n := len(imported.Rejected); n > 0 {
				stderr := cmd.ErrOrStderr()
				for _, r := range imported.Rejected {
					_, _ = fmt.Fprintf(stderr, "Entry %d (%q):\n", r.Index, r.Entry.Description)
					printFieldErrors(stderr, "  ", r.Errors)
				}
				return fmt.Errorf("%d of %d subtasks rejected", n, len(entries))
			}

			if opts.dryRun {
				printDrafts(cmd.OutOrStdout(), imported.Drafts)
				return nil
			}

			shown, err := c.ShowTaskUseCase().Execute(cmd.Context(), usecase.ShowTaskInput{TaskID: taskID})
			if err != nil {
				return err
			}

			relay := c.NewRelay(planning.WithManualExpiry())
			coord := c.NewCoordinator(relay)
			drafts := coord.StartPlanning(*shown.Task)
			drafts.Seed(imported.Drafts.Values()...)

			created, err := coord.FinalizeDrafts(cmd.Context())
			if err != nil {
				printNotification(cmd.ErrOrStderr(), relay)
				return err
			}

			w := cmd.OutOrStdout()
			printNotification(w, relay)
			printSubtaskTable(w, created)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.from, "from", "f", "", `YAML plan file ("-" for stdin)`)
	cmd.Flags().StringArrayVarP(&opts.adds, "add", "a", nil, `Subtask as "description|YYYY-MM-DD|hours" (repeatable)`)
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Validate the subtasks without submitting them")

	return cmd
}

// readPlanEntries reads the plan file at path, or stdin when path is "-".
// An empty path yields no entries.
func readPlanEntries(stdin io.Reader, path string) ([]domain.SubtaskFields, error) {
	switch path {
	case "":
		return nil, nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return planfile.Parse(data)
	default:
		return planfile.ParseFile(path)
	}
}

// printDrafts writes the drafts of l as a numbered table followed by their total hours.
func printDrafts(w io.Writer, l *planning.DraftList) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "#\tDATE\tHOURS\tDESCRIPTION")
	for i, d := range l.Drafts() {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			i+1,
			d.PlanificationDate,
			domain.FormatHours(d.NeededHours),
			d.Description,
		)
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(w, "Total: %s\n", domain.FormatHoursLong(l.TotalHours()))
}

// newSubtaskEditCommand creates the subtask edit subcommand.
func newSubtaskEditCommand(c *app.Container) *cobra.Command {
	var description, date, hours string

	cmd := &cobra.Command{
		Use:   "edit <task-id> <subtask-id>",
		Short: "Edit a planned subtask",
		Long: `Edit the description, date or hours of a planned subtask.

Only the given flags are changed. The result is validated like the
interactive form before it is saved.

Examples:
  planner subtask edit 3 12 --hours 2.5
  planner subtask edit 3 12 --date 2025-03-14 --description "Leer capítulo 4"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			subtaskID, err := parseSubtaskID(args[1])
			if err != nil {
				return err
			}

			changes := map[domain.Field]string{}
			if cmd.Flags().Changed("description") {
				changes[domain.FieldDescription] = description
			}
			if cmd.Flags().Changed("date") {
				changes[domain.FieldPlanificationDate] = date
			}
			if cmd.Flags().Changed("hours") {
				changes[domain.FieldNeededHours] = hours
			}
			if len(changes) == 0 {
				return errors.New("nothing to change: use --description, --date or --hours")
			}

			relay := c.NewRelay(planning.WithManualExpiry())
			coord := c.NewCoordinator(relay)
			session, err := coord.OpenEdit(cmd.Context(), taskID)
			if err != nil {
				printNotification(cmd.ErrOrStderr(), relay)
				return err
			}

			if err := session.BeginEdit(domain.PersistedID(subtaskID)); err != nil {
				return fmt.Errorf("subtask %d of task #%d: %w", subtaskID, taskID, err)
			}
			for field, value := range changes {
				if err := session.UpdateField(field, value); err != nil {
					return err
				}
			}
			if err := session.CommitEdit(); err != nil {
				var verrs domain.ValidationErrors
				if errors.As(err, &verrs) {
					printFieldErrors(cmd.ErrOrStderr(), "  ", verrs)
				}
				return err
			}

			if err := coord.SaveSession(cmd.Context()); err != nil {
				printNotification(cmd.ErrOrStderr(), relay)
				return err
			}

			w := cmd.OutOrStdout()
			printNotification(w, relay)
			if t, ok := coord.Task(taskID); ok {
				printSubtaskTable(w, t.Subtasks)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&date, "date", "", "New planification date, YYYY-MM-DD")
	cmd.Flags().StringVar(&hours, "hours", "", "New needed hours")

	return cmd
}

// newSubtaskRmCommand creates the subtask rm subcommand.
func newSubtaskRmCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task-id> <subtask-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a planned subtask",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := parseTaskID(args[0])
			if err != nil {
				return err
			}
			subtaskID, err := parseSubtaskID(args[1])
			if err != nil {
				return err
			}

			relay := c.NewRelay(planning.WithManualExpiry())
			coord := c.NewCoordinator(relay)
			session, err := coord.OpenEdit(cmd.Context(), taskID)
			if err != nil {
				printNotification(cmd.ErrOrStderr(), relay)
				return err
			}

			if err := session.RequestDelete(planning.SubtaskTarget(domain.PersistedID(subtaskID))); err != nil {
				return fmt.Errorf("subtask %d of task #%d: %w", subtaskID, taskID, err)
			}
			if _, err := coord.ConfirmDelete(cmd.Context()); err != nil {
				printNotification(cmd.ErrOrStderr(), relay)
				return err
			}

			printNotification(cmd.OutOrStdout(), relay)
			return nil
		},
	}
}
