package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
)

// HistoryFile is the repl history file inside the data directory.
const HistoryFile = ".history"

// lineReader is the input side of the repl.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

// ReplCmd returns the repl command. Lines are read from stdin; when stdin is
// the process terminal, liner provides editing, history and completion.
func ReplCmd(s *session, stdin io.Reader) *Command {
	return &Command{
		Flags: flag.NewFlagSet("repl", flag.ContinueOnError),
		Usage: "repl",
		Short: "Interactive shell on one live engine",
		Long: `Start an interactive shell. Every command of the CLI is available
without the "focus" prefix and works on the same engine, so views update
in place. Changes are saved after each command.

Type "help" for commands and "exit" to leave.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			a, err := s.open(ctx, o)
			if err != nil {
				return err
			}

			var in lineReader
			if stdin == os.Stdin {
				in = newLinerReader(filepath.Join(s.cfg.DataDirAbs, HistoryFile), func(line string) []string {
					return completions(a, replCommandNames(s), line)
				})
			} else {
				in = &scanReader{sc: bufio.NewScanner(stdin)}
			}

			defer func() { _ = in.Close() }()

			return runRepl(ctx, o, s, in)
		},
	}
}

func runRepl(ctx context.Context, o *IO, s *session, in lineReader) error {
	a, err := s.open(ctx, o)
	if err != nil {
		return err
	}

	warn := o.Paint(color.FgYellow)
	unsubscribe := a.svc.IsContextChanging().Subscribe(func(changing bool) {
		if changing {
			o.ErrPrintln(warn("switching context..."))
		}
	})
	defer unsubscribe()

	prompt := o.Paint(color.Bold, color.FgCyan)

	for ctx.Err() == nil {
		title := "?"
		if wc, ok := a.svc.ActiveContext().Value(); ok {
			title = wc.Title
		}

		line, err := in.Prompt(prompt("focus ["+title+"]") + "> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		in.AppendHistory(strings.TrimSpace(line))

		switch parts[0] {
		case "exit", "quit", "q":
			return nil
		case "help", "?":
			for _, cmd := range replCommands(s) {
				o.Println(cmd.HelpLine())
			}

			continue
		}

		cmd, ok := findCommand(replCommands(s), parts[0])
		if !ok {
			o.ErrPrintln("error: unknown command:", parts[0], "(type 'help' for commands)")

			continue
		}

		cmd.Run(ctx, o, parts[1:])
		o.Finish()
	}

	return ctx.Err()
}

// replCommands builds fresh commands so flag values never leak between lines.
func replCommands(s *session) []*Command {
	return slices.DeleteFunc(commands(s, nil), func(c *Command) bool { return c.Name() == "repl" })
}

func replCommandNames(s *session) []string {
	var names []string

	for _, c := range replCommands(s) {
		names = append(names, c.Name())
	}

	return append(names, "help", "exit")
}

// completions completes command names and, after "switch tag" or
// "switch project", entity ids.
func completions(a *app, names []string, line string) []string {
	fields := strings.Fields(line)
	trailing := strings.HasSuffix(line, " ")

	if len(fields) == 0 || (len(fields) == 1 && !trailing) {
		prefix := ""
		if len(fields) == 1 {
			prefix = fields[0]
		}

		var out []string

		for _, n := range names {
			if strings.HasPrefix(n, prefix) {
				out = append(out, n)
			}
		}

		return out
	}

	if fields[0] != "switch" {
		return nil
	}

	snap := a.store.Snapshot()

	switch {
	case len(fields) == 1 && trailing, len(fields) == 2 && !trailing:
		var out []string

		for _, kind := range []string{"tag", "project"} {
			if len(fields) == 1 || strings.HasPrefix(kind, fields[1]) {
				out = append(out, "switch "+kind+" ")
			}
		}

		return out
	case len(fields) == 2 && trailing, len(fields) == 3 && !trailing:
		ids := snap.Tags.IDs
		if fields[1] == "project" {
			ids = snap.Projects.IDs
		}

		prefix := ""
		if len(fields) == 3 {
			prefix = fields[2]
		}

		var out []string

		for _, id := range ids {
			if strings.HasPrefix(id, prefix) {
				out = append(out, "switch "+fields[1]+" "+id)
			}
		}

		return out
	default:
		return nil
	}
}

type linerReader struct {
	*liner.State

	historyPath string
}

func newLinerReader(historyPath string, complete liner.Completer) *linerReader {
	st := liner.NewLiner()
	st.SetCtrlCAborts(true)
	st.SetCompleter(complete)

	if f, err := os.Open(historyPath); err == nil {
		_, _ = st.ReadHistory(f)
		_ = f.Close()
	}

	return &linerReader{State: st, historyPath: historyPath}
}

// Close saves history, then restores the terminal.
func (r *linerReader) Close() error {
	if f, err := os.Create(r.historyPath); err == nil {
		_, _ = r.WriteHistory(f)
		_ = f.Close()
	}

	return r.State.Close()
}

// scanReader reads lines from a plain reader without echoing a prompt.
type scanReader struct {
	sc *bufio.Scanner
}

func (r *scanReader) Prompt(string) (string, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}

		return "", io.EOF
	}

	return r.sc.Text(), nil
}

func (*scanReader) AppendHistory(string) {}

func (*scanReader) Close() error { return nil }
