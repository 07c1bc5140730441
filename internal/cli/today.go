package cli

import (
	"context"
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/studyplan/planner/internal/app"
	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/usecase"
)

// newTodayCommand creates the today command.
func newTodayCommand(c *app.Container) *cobra.Command {
	var date, status string
	var watch bool

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show the subtasks planned for today",
		Long: `Show the pending subtasks planned for today in the configured timezone.

With --watch the list is printed again every time the day changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := usecase.ListTodaySubtasksInput{Status: domain.Status(status)}
			if in.Status != "" && !in.Status.IsValid() {
				return fmt.Errorf("invalid status: %q", status)
			}
			if date != "" {
				d, err := domain.ParseDate(date)
				if err != nil {
					return err
				}
				in.Date = d
			}

			uc := c.ListTodaySubtasksUseCase()
			w := cmd.OutOrStdout()
			if err := printToday(cmd.Context(), w, uc, in); err != nil {
				return err
			}
			if !watch || date != "" {
				return nil
			}

			return watchToday(cmd.Context(), c, func(ctx context.Context) {
				_, _ = fmt.Fprintln(w)
				if err := printToday(ctx, w, uc, in); err != nil {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				}
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Day to show, YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Status to match (default pending)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Print the list again at every midnight")

	return cmd
}

// watchToday calls refresh at every local midnight until ctx is done.
func watchToday(ctx context.Context, c *app.Container, refresh func(context.Context)) error {
	var mu sync.Mutex
	dc, err := c.NewDayChange(func() {
		mu.Lock()
		defer mu.Unlock()
		refresh(ctx)
	})
	if err != nil {
		return err
	}
	if err := dc.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	dc.Stop()
	return nil
}

func printToday(ctx context.Context, w io.Writer, uc *usecase.ListTodaySubtasks, in usecase.ListTodaySubtasksInput) error {
	out, err := uc.Execute(ctx, in)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(w, "Today: %s\n\n", domain.FormatLongDate(out.Date))
	if len(out.Subtasks) == 0 {
		_, _ = fmt.Fprintln(w, "Nothing planned for today.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tHOURS\tTASK\tDESCRIPTION")
	for _, s := range out.Subtasks {
		task := ""
		if s.Task != nil {
			task = s.Task.Title
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			s.ID,
			domain.FormatHours(s.NeededHours),
			task,
			s.Description,
		)
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(w, "Total: %s\n", domain.FormatHoursLong(out.TotalHours))
	return nil
}
