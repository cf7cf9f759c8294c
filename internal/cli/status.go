package cli

import (
	"context"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/focus/pkg/graph"
)

// StatusCmd returns the status command.
func StatusCmd(s *session) *Command {
	return &Command{
		Flags: flag.NewFlagSet("status", flag.ContinueOnError),
		Usage: "status",
		Short: "Show the active context and what is left today",
		Long: `Show the active work context with counts and time totals.

Output (one key=value per line):
  context=<type>:<id> "<title>"
  today=<n> done=<n> undone=<n> startable=<n> backlog=<n>
  worked=<duration> remaining=<duration> estimate_left=<duration>`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			a, err := s.open(ctx, o)
			if err != nil {
				return err
			}

			execStatus(o, a)

			return nil
		},
	}
}

func execStatus(o *IO, a *app) {
	bold := o.Paint(color.Bold)
	svc := a.svc

	wc, ok := svc.ActiveContext().Value()
	switch {
	case ok:
		o.Printf("context=%s %q\n", bold(wc.Pair().String()), wc.Title)
	case svc.ContextErr() != nil:
		o.Warn("active context: "+svc.ContextErr().Error(), "run 'focus switch tag MY_DAY'")
		o.Println("context=unresolved")
	default:
		pair, _ := svc.Cached()
		o.Warn("context "+pair.String()+" not found", "import it or switch to an existing tag or project")
		o.Println("context=unresolved")
	}

	today := valueOr(svc.TodayTasks(), nil)
	done := valueOr(svc.DoneTasks(), nil)
	undone := valueOr(svc.UndoneTasks(), nil)
	startable := valueOr(svc.StartableTasks(), nil)
	backlog := valueOr(svc.BacklogTasks(), nil)

	o.Printf("today=%d done=%d undone=%d startable=%d backlog=%d\n",
		len(today), len(done), len(undone), len(startable), len(backlog))

	o.Printf("worked=%s remaining=%s estimate_left=%s\n",
		formatDuration(valueOr(svc.TimeWorkedForDay(a.day), 0)),
		formatDuration(valueOr(svc.TimeEstimateRemainingForDay(a.day), 0)),
		formatDuration(valueOr(svc.EstimateRemainingToday(), 0)))

	if !valueOr(svc.IsHasTasksToWorkOn(), false) && ok {
		o.Println("nothing left to work on")
	}

	if theme, ok := svc.CurrentTheme().Value(); ok && theme.Primary != "" {
		o.Printf("theme=%s\n", theme.Primary)
	}
}

// valueOr reads the latest value of r, or def if r has none.
func valueOr[T any](r graph.Readable[T], def T) T {
	v, ok := r.Value()
	if !ok {
		return def
	}

	return v
}
