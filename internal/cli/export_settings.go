package cli

import (
	"context"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/focus/internal/model"
)

// ExportSettingsCmd returns the export-settings command.
func ExportSettingsCmd(s *session) *Command {
	fs := flag.NewFlagSet("export-settings", flag.ContinueOnError)
	fs.StringSlice("cols", nil, "Columns of the worklog export (comma separated)")
	fs.Duration("round-work", 0, "Round worked time to this duration")
	fs.Duration("round-start", 0, "Round start times to this duration")
	fs.Duration("round-end", 0, "Round end times to this duration")
	fs.String("separate-by", "", "Separator between task titles")
	fs.String("group-by", "", "Group rows by this column")

	return &Command{
		Flags: fs,
		Usage: "export-settings [flags]",
		Short: "Show or change worklog export settings of the active context",
		Long: `Show or change the worklog export settings of the active tag or project.

Without flags the current settings are printed. Flags change only the
given fields; everything else is kept.

Examples:
  focus export-settings
  focus export-settings --cols DATE,TITLES,TIME_CLOCK --round-work 15m
  focus export-settings --group-by DATE`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			a, err := s.open(ctx, o)
			if err != nil {
				return err
			}

			return execExportSettings(ctx, o, a, fs)
		},
	}
}

func execExportSettings(ctx context.Context, o *IO, a *app, fs *flag.FlagSet) error {
	var current model.WorklogExportSettings

	if wc, ok := a.svc.ActiveContext().Value(); ok && wc.AdvancedCfg.WorklogExportSettings != nil {
		current = wc.AdvancedCfg.WorklogExportSettings.Clone()
	}

	if fs.NFlag() == 0 {
		printExportSettings(o, current)

		return nil
	}

	next := current

	if fs.Changed("cols") {
		next.Cols, _ = fs.GetStringSlice("cols")
	}

	if fs.Changed("round-work") {
		next.RoundWorkTimeTo, _ = fs.GetDuration("round-work")
	}

	if fs.Changed("round-start") {
		next.RoundStartTimeTo, _ = fs.GetDuration("round-start")
	}

	if fs.Changed("round-end") {
		next.RoundEndTimeTo, _ = fs.GetDuration("round-end")
	}

	if fs.Changed("separate-by") {
		next.SeparateTasksBy, _ = fs.GetString("separate-by")
	}

	if fs.Changed("group-by") {
		next.GroupBy, _ = fs.GetString("group-by")
	}

	err := a.svc.UpdateWorklogExportSettings(next)
	if err != nil {
		return err
	}

	err = a.commit(ctx)
	if err != nil {
		return err
	}

	printExportSettings(o, next)

	return nil
}

func printExportSettings(o *IO, s model.WorklogExportSettings) {
	o.Println("cols=" + strings.Join(s.Cols, ","))
	o.Println("round_work=" + formatDuration(s.RoundWorkTimeTo))
	o.Println("round_start=" + formatDuration(s.RoundStartTimeTo))
	o.Println("round_end=" + formatDuration(s.RoundEndTimeTo))
	o.Println("separate_by=" + s.SeparateTasksBy)
	o.Println("group_by=" + s.GroupBy)
}
