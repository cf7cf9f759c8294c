package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/focus/internal/model"
	"github.com/calvinalkan/focus/pkg/graph"
)

// TodayCmd returns the today command.
func TodayCmd(s *session) *Command {
	return treeListCmd(s, "today", "List today's tasks of the active context",
		`List the today list of the active context with subtasks indented.

Examples:
  focus today
  focus today --json`,
		func(a *app) graph.Readable[[]model.TaskWithSubTasks] { return a.svc.TodayTasks() })
}

// BacklogCmd returns the backlog command.
func BacklogCmd(s *session) *Command {
	return treeListCmd(s, "backlog", "List the backlog of the active project",
		"List the backlog of the active project. Tags have no backlog, the list is empty.",
		func(a *app) graph.Readable[[]model.TaskWithSubTasks] { return a.svc.BacklogTasks() })
}

// DoneCmd returns the done command.
func DoneCmd(s *session) *Command {
	return treeListCmd(s, "done", "List today's finished tasks", "",
		func(a *app) graph.Readable[[]model.TaskWithSubTasks] { return a.svc.DoneTasks() })
}

// UndoneCmd returns the undone command.
func UndoneCmd(s *session) *Command {
	return treeListCmd(s, "undone", "List today's open tasks", "",
		func(a *app) graph.Readable[[]model.TaskWithSubTasks] { return a.svc.UndoneTasks() })
}

// StartableCmd returns the startable command.
func StartableCmd(s *session) *Command {
	fs := flag.NewFlagSet("startable", flag.ContinueOnError)
	fs.Bool("json", false, "Output as JSON array")

	return &Command{
		Flags: fs,
		Usage: "startable [--json]",
		Short: "List tasks that can be started now",
		Long: `List the tasks that can be worked on now.

A task is startable if it is not done and either:
  - it is a subtask of a task on today's list, or
  - it is on today's list and has no subtasks`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			a, err := s.open(ctx, o)
			if err != nil {
				return err
			}

			tasks := valueOr(a.svc.StartableTasks(), nil)

			if asJSON, _ := fs.GetBool("json"); asJSON {
				return printJSON(o, flatJSON(tasks))
			}

			newTaskPrinter(o, a.day).flat(tasks)

			return nil
		},
	}
}

func treeListCmd(
	s *session,
	name, short, long string,
	pick func(*app) graph.Readable[[]model.TaskWithSubTasks],
) *Command {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Bool("json", false, "Output as JSON array")

	return &Command{
		Flags: fs,
		Usage: name + " [--json]",
		Short: short,
		Long:  long,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			a, err := s.open(ctx, o)
			if err != nil {
				return err
			}

			tasks := valueOr(pick(a), nil)

			if asJSON, _ := fs.GetBool("json"); asJSON {
				return printJSON(o, treeJSON(tasks))
			}

			newTaskPrinter(o, a.day).tree(tasks)

			return nil
		},
	}
}
