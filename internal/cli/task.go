package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/focus/internal/model"
	"github.com/calvinalkan/focus/internal/store"
)

// AddCmd returns the add command.
func AddCmd(s *session) *Command {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.Bool("backlog", false, "Add to the backlog instead of today (projects only)")
	fs.String("parent", "", "Add as subtask of this task")
	fs.Duration("estimate", 0, "Time estimate, e.g. 1h30m")
	fs.String("repeat", "", "Repeat config id")

	return &Command{
		Flags:   fs,
		Usage:   "add [flags] <title>",
		Short:   "Add a task to the active context",
		MinArgs: 1,
		MaxArgs: -1,
		Long: `Add a task to the today list of the active context and print its id.

With --parent the task becomes a subtask and is not listed on the context
itself.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			a, err := s.open(ctx, o)
			if err != nil {
				return err
			}

			id, err := model.NewTaskID()
			if err != nil {
				return err
			}

			task := model.Task{ID: id, Title: strings.Join(args, " "), SubTaskIDs: []string{}}
			task.ParentID, _ = fs.GetString("parent")
			task.TimeEstimate, _ = fs.GetDuration("estimate")
			task.RepeatCfgID, _ = fs.GetString("repeat")

			action := store.AddTask{Task: task}
			action.Backlog, _ = fs.GetBool("backlog")

			if !task.HasParent() {
				pair, err := a.activePair()
				if err != nil {
					return err
				}

				action.WorkContextID, action.WorkContextType = pair.ID, pair.Type
			}

			err = a.store.Dispatch(action)
			if err != nil {
				return err
			}

			err = a.commit(ctx)
			if err != nil {
				return err
			}

			o.Println(task.ID)

			return nil
		},
	}
}

// LogCmd returns the log command.
func LogCmd(s *session) *Command {
	fs := flag.NewFlagSet("log", flag.ContinueOnError)
	fs.String("day", "", "Worklog day as YYYY-MM-DD (default: today)")

	return &Command{
		Flags:   fs,
		Usage:   "log [--day <YYYY-MM-DD>] <task-id> <duration>",
		Short:   "Log time spent on a task",
		MinArgs: 2,
		MaxArgs: 2,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			a, err := s.open(ctx, o)
			if err != nil {
				return err
			}

			d, err := time.ParseDuration(args[1])
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", args[1], err)
			}

			day, _ := fs.GetString("day")
			if day == "" {
				day = a.day
			}

			err = a.store.Dispatch(store.AddTimeSpent{TaskID: args[0], Day: day, Duration: d})
			if err != nil {
				return err
			}

			err = a.commit(ctx)
			if err != nil {
				return err
			}

			o.Printf("logged %s on %s for %s\n", formatDuration(d), args[0], day)

			return nil
		},
	}
}

// CheckCmd returns the check command.
func CheckCmd(s *session) *Command {
	return setDoneCmd(s, "check", "Mark a task done", true)
}

// UncheckCmd returns the uncheck command.
func UncheckCmd(s *session) *Command {
	return setDoneCmd(s, "uncheck", "Mark a task not done", false)
}

func setDoneCmd(s *session, name, short string, done bool) *Command {
	return &Command{
		Flags:   flag.NewFlagSet(name, flag.ContinueOnError),
		Usage:   name + " <task-id>",
		Short:   short,
		MinArgs: 1,
		MaxArgs: 1,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			a, err := s.open(ctx, o)
			if err != nil {
				return err
			}

			err = a.store.Dispatch(store.SetTaskDone{TaskID: args[0], Done: done})
			if err != nil {
				return err
			}

			return a.commit(ctx)
		},
	}
}

// MoveToBacklogCmd returns the move-to-backlog command.
func MoveToBacklogCmd(s *session) *Command {
	return &Command{
		Flags:   flag.NewFlagSet("move-to-backlog", flag.ContinueOnError),
		Usage:   "move-to-backlog <task-id>",
		Short:   "Move a task from today to the backlog of the active project",
		MinArgs: 1,
		MaxArgs: 1,
		Long: `Move a task from the today list to the front of the backlog.

Only projects have a backlog; this fails while a tag is active.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			a, err := s.open(ctx, o)
			if err != nil {
				return err
			}

			err = a.svc.MoveTaskToBacklog(args[0])
			if err != nil {
				return err
			}

			err = a.commit(ctx)
			if err != nil {
				return err
			}

			o.Println("moved", args[0], "to backlog")

			return nil
		},
	}
}
