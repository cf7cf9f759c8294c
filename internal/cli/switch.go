package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/focus/internal/model"
	"github.com/calvinalkan/focus/internal/store"
	"github.com/calvinalkan/focus/internal/workctx"
)

var (
	errNoContextInPath = errors.New("path names no tag or project")
	errContextNotFound = errors.New("work context not found")
)

// SwitchCmd returns the switch command.
func SwitchCmd(s *session) *Command {
	return &Command{
		Flags:   flag.NewFlagSet("switch", flag.ContinueOnError),
		Usage:   "switch <tag|project> <id> | switch <path>",
		Short:   "Switch the active work context",
		MinArgs: 1,
		MaxArgs: 2,
		Long: `Switch the active work context and remember it for the next run.

The target is either a type and an id, or a path containing
"tag/<id>" or "project/<id>", as produced by links.

Examples:
  focus switch tag MY_DAY
  focus switch project p1
  focus switch /project/p1/tasks`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			a, err := s.open(ctx, o)
			if err != nil {
				return err
			}

			return execSwitch(ctx, o, a, args)
		},
	}
}

func execSwitch(ctx context.Context, o *IO, a *app, args []string) error {
	var target model.Pair

	if len(args) == 1 {
		pair, ok := workctx.ParseContextURL(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", errNoContextInPath, args[0])
		}

		target = pair
	} else {
		contextType, err := model.ParseContextType(args[0])
		if err != nil {
			return err
		}

		target = model.Pair{ID: args[1], Type: contextType}
	}

	if !contextExists(a.store.Snapshot(), target) {
		return fmt.Errorf("%w: %s", errContextNotFound, target)
	}

	if len(args) == 1 {
		a.router.Navigate(args[0])
	} else {
		err := a.svc.SetActiveContext(target.ID, target.Type)
		if err != nil {
			return err
		}
	}

	err := a.commit(ctx)
	if err != nil {
		return err
	}

	wc, ok := a.svc.ActiveContext().Value()
	if !ok {
		return fmt.Errorf("%w: %s", errContextNotFound, target)
	}

	o.Printf("switched to %s %q\n", wc.Pair(), wc.Title)

	return nil
}

func contextExists(state store.State, p model.Pair) bool {
	switch p.Type {
	case model.ContextTypeTag:
		_, ok := state.Tags.Get(p.ID)

		return ok
	case model.ContextTypeProject:
		_, ok := state.Projects.Get(p.ID)

		return ok
	default:
		return false
	}
}
