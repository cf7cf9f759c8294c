package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/calvinalkan/focus/internal/config"
	"github.com/calvinalkan/focus/pkg/clock"
)

const (
	minArgs      = 2
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

var (
	errFlagRequiresArg = errors.New("flag requires an argument")
	errUnknownFlag     = errors.New("unknown flag")
)

// Run is the main entry point. Returns exit code. A signal on sigCh cancels
// the running command; sigCh may be nil.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	if len(args) < minArgs {
		printUsage(out, commands(&session{}, stdin))

		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err == nil && flags.hasDataDir && flags.dataDir == "" {
		err = config.ErrDataDirEmpty
	}

	if err != nil {
		fprintln(errOut, "error:", err)
		fprintln(errOut)
		printUsage(errOut, commands(&session{}, stdin))

		return 1
	}

	if len(flags.remaining) == 0 || flags.remaining[0] == helpFlag {
		printUsage(out, commands(&session{}, stdin))

		return 0
	}

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: flags.workDir,
		ConfigPath:      flags.configPath,
		DataDirOverride: flags.dataDir,
		DayOverride:     flags.day,
		Env:             env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	logger := log.New(io.Discard, "", 0)
	if flags.verbose {
		logger = log.New(errOut, "focus: ", log.Ltime)
	}

	sess := &session{cfg: cfg, logger: logger, clock: clock.Real()}
	cmds := commands(sess, stdin)

	cmd, ok := findCommand(cmds, flags.remaining[0])
	if !ok {
		fprintln(errOut, "error: unknown command:", flags.remaining[0])
		printUsage(errOut, cmds)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sigCh != nil {
		go func() {
			select {
			case <-sigCh:
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	o := NewIO(out, errOut)
	o.color = colorEnabled(out, env)

	code := cmd.Run(ctx, o, flags.remaining[1:])

	err = sess.close(context.WithoutCancel(ctx))
	if err != nil {
		fprintln(errOut, "error:", err)

		code = 1
	}

	if warnCode := o.Finish(); code == 0 {
		code = warnCode
	}

	return code
}

// commands lists every command in help order.
func commands(s *session, stdin io.Reader) []*Command {
	return []*Command{
		StatusCmd(s),
		TodayCmd(s),
		BacklogCmd(s),
		StartableCmd(s),
		DoneCmd(s),
		UndoneCmd(s),
		WorklogCmd(s),
		SwitchCmd(s),
		AddCmd(s),
		LogCmd(s),
		CheckCmd(s),
		UncheckCmd(s),
		MoveToBacklogCmd(s),
		ExportSettingsCmd(s),
		ImportCmd(s),
		ReplCmd(s, stdin),
		PrintConfigCmd(s.cfg),
	}
}

func findCommand(cmds []*Command, name string) (*Command, bool) {
	for _, c := range cmds {
		if c.Name() == name {
			return c, true
		}
	}

	return nil, false
}

func colorEnabled(out io.Writer, env map[string]string) bool {
	if _, noColor := env["NO_COLOR"]; noColor {
		return false
	}

	return out == os.Stdout && !color.NoColor
}

type globalFlags struct {
	workDir    string
	configPath string
	dataDir    string
	hasDataDir bool
	day        string
	verbose    bool
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// valueFlag matches "--name value", "--name=value" and, if short is set,
// "-s value" and "-svalue". Returns the value and the number of args consumed.
func valueFlag(args []string, idx int, long, short string) (string, int, error) {
	arg := args[idx]

	if arg == long || (short != "" && arg == short) {
		if idx+1 >= len(args) {
			return "", consumedNone, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
		}

		return args[idx+1], consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, long+"="); ok {
		return after, consumedOne, nil
	}

	if short != "" && len(arg) > len(short) {
		if after, ok := strings.CutPrefix(arg, short); ok {
			return after, consumedOne, nil
		}
	}

	return "", consumedNone, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	targets := []struct {
		long, short string
		dst         *string
	}{
		{"--cwd", "-C", &flags.workDir},
		{"--config", "-c", &flags.configPath},
		{"--data-dir", "", &flags.dataDir},
		{"--day", "", &flags.day},
	}

	for _, t := range targets {
		value, consumed, err := valueFlag(args, idx, t.long, t.short)
		if err != nil {
			return consumedNone, err
		}

		if consumed > 0 {
			*t.dst = value
			flags.hasDataDir = flags.hasDataDir || t.dst == &flags.dataDir

			return consumed, nil
		}
	}

	if arg == "-v" || arg == "--verbose" {
		flags.verbose = true

		return consumedOne, nil
	}

	// -h/--help flags
	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", errUnknownFlag, arg)
	}

	// Not a flag
	return consumedNone, nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(w io.Writer, cmds []*Command) {
	fprintln(w, `focus - work context views over your tasks

Usage: focus [options] <command> [args]

Options:
  -C, --cwd <dir>        Run as if started in <dir>
  -c, --config <file>    Use specified config file
      --data-dir <dir>   Override the data directory
      --day <YYYY-MM-DD> Use this day instead of today
  -v, --verbose          Log engine warnings to stderr

Commands:`)

	for _, c := range cmds {
		fprintln(w, c.HelpLine())
	}

	fprintln(w, `
Run 'focus <command> --help' for details.`)
}
