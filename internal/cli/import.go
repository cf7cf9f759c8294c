package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/focus/internal/persistence"
	"github.com/calvinalkan/focus/internal/store"
)

// ImportCmd returns the import command.
func ImportCmd(s *session) *Command {
	return &Command{
		Flags:   flag.NewFlagSet("import", flag.ContinueOnError),
		Usage:   "import <file>",
		Short:   "Import tasks, projects and tags from YAML or JSONC",
		MinArgs: 1,
		MaxArgs: 1,
		Long: `Import tasks, projects and tags from a .yaml/.yml or .json/.jsonc file.

Entities are upserted by id. Tasks without an id get a new one, and
nested "subTasks" are linked to their parent.

Example file (YAML):
  tasks:
    - id: release
      title: Ship release
      timeEstimate: 3600000   # milliseconds
      subTasks:
        - title: Write changelog
  projects:
    - id: p1
      title: Release
      taskIds: [release]`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			incoming, err := persistence.Import(args[0])
			if err != nil {
				return err
			}

			a, err := s.open(ctx, o)
			if err != nil {
				return err
			}

			return execImport(ctx, o, a, incoming)
		},
	}
}

func execImport(ctx context.Context, o *IO, a *app, incoming persistence.Data) error {
	snap := a.store.Snapshot()
	merged := persistence.Merge(persistence.Data{
		Tasks:    snap.Tasks.All(),
		Projects: snap.Projects.All(),
		Tags:     snap.Tags.All(),
	}, incoming)

	for _, action := range []store.Action{
		store.LoadTasks{Tasks: merged.Tasks},
		store.LoadProjects{Projects: merged.Projects},
		store.LoadTags{Tags: merged.Tags},
	} {
		err := a.store.Dispatch(action)
		if err != nil {
			return err
		}
	}

	err := a.commit(ctx)
	if err != nil {
		return err
	}

	o.Printf("imported tasks=%d projects=%d tags=%d\n",
		len(incoming.Tasks), len(incoming.Projects), len(incoming.Tags))

	return nil
}
