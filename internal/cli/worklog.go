package cli

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/focus/internal/model"
)

// WorklogCmd returns the worklog command.
func WorklogCmd(s *session) *Command {
	fs := flag.NewFlagSet("worklog", flag.ContinueOnError)
	fs.String("day", "", "Worklog day as YYYY-MM-DD (default: today)")
	fs.Bool("json", false, "Output as JSON object")

	return &Command{
		Flags: fs,
		Usage: "worklog [--day <YYYY-MM-DD>] [--json]",
		Short: "Show time worked and the tasks touched on a day",
		Long: `Show time worked and the remaining estimate for a day, followed by the
tasks that were worked on or finished, plus all repeatable tasks.

The remaining estimate only counts tasks with time logged on that day.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			a, err := s.open(ctx, o)
			if err != nil {
				return err
			}

			day, _ := fs.GetString("day")
			if day == "" {
				day = a.day
			}

			_, err = model.ParseWorklogDay(day)
			if err != nil {
				return fmt.Errorf("invalid --day %q: %w", day, err)
			}

			asJSON, _ := fs.GetBool("json")

			return execWorklog(o, a, day, asJSON)
		},
	}
}

type worklogJSON struct {
	Day         string     `json:"day"`
	WorkedMS    int64      `json:"worked"`
	RemainingMS int64      `json:"remaining"`
	Tasks       []taskJSON `json:"tasks"`
}

func execWorklog(o *IO, a *app, day string, asJSON bool) error {
	worked := valueOr(a.svc.TimeWorkedForDay(day), 0)
	remaining := valueOr(a.svc.TimeEstimateRemainingForDay(day), 0)
	tasks := valueOr(a.svc.TasksWorkedOnOrDoneOrRepeatableFlat(day), nil)

	if asJSON {
		return printJSON(o, worklogJSON{
			Day:         day,
			WorkedMS:    worked.Milliseconds(),
			RemainingMS: remaining.Milliseconds(),
			Tasks:       flatJSON(tasks),
		})
	}

	o.Printf("day=%s worked=%s remaining=%s\n", day, formatDuration(worked), formatDuration(remaining))
	newTaskPrinter(o, day).flat(tasks)

	return nil
}
