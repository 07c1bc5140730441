package cli

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/studyplan/planner/internal/domain"
	"github.com/studyplan/planner/internal/planning"
)

// parseTaskID parses a task ID argument.
func parseTaskID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(s, "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task ID: %q", s)
	}
	return id, nil
}

// parseSubtaskID parses a persisted subtask ID argument.
func parseSubtaskID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid subtask ID: %q", s)
	}
	return id, nil
}

// parseSubtaskSpec parses "description|YYYY-MM-DD|hours" into raw form fields.
// Validation is left to the draft list.
func parseSubtaskSpec(s string) (domain.SubtaskFields, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 3 {
		return domain.SubtaskFields{}, fmt.Errorf("invalid subtask %q: expected \"description|YYYY-MM-DD|hours\"", s)
	}
	return domain.SubtaskFields{
		Description:       strings.TrimSpace(parts[0]),
		PlanificationDate: strings.TrimSpace(parts[1]),
		NeededHours:       strings.TrimSpace(parts[2]),
	}, nil
}

// printFieldErrors writes one line per failing field, in field order.
func printFieldErrors(w io.Writer, prefix string, errs domain.ValidationErrors) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, string(f))
	}
	slices.Sort(fields)
	for _, f := range fields {
		_, _ = fmt.Fprintf(w, "%s%s: %s\n", prefix, f, errs[domain.Field(f)])
	}
}

// printNotification writes the relay's current notification, if any.
func printNotification(w io.Writer, relay *planning.Relay) {
	if n, ok := relay.Current(); ok {
		_, _ = fmt.Fprintln(w, n.Message)
	}
}

// printSubtaskTable writes subtasks as an aligned table followed by their total hours.
func printSubtaskTable(w io.Writer, subtasks []domain.Subtask) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tDATE\tHOURS\tSTATUS\tDESCRIPTION")
	for _, s := range subtasks {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			s.ID,
			s.PlanificationDate,
			domain.FormatHours(s.NeededHours),
			s.Status,
			s.Description,
		)
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(w, "Total: %s\n", domain.FormatHoursLong(domain.SumHours(subtasks)))
}
