package cli

import (
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/fatih/color"
)

// IO handles command output with warnings that stay visible when piped.
type IO struct {
	out    io.Writer
	errOut io.Writer
	color  bool

	mu       sync.Mutex
	warnings []string
	started  bool
}

// NewIO creates a new IO instance. Output is never colored.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Warn adds an actionable warning.
//
// Parameters:
//   - issue: what went wrong
//   - action: what the user should do about it
//
// Warnings are printed to stderr at both the START and END of output, so they
// survive head/tail. Any warning makes the exit code 1. Identical warnings
// are recorded once.
func (o *IO) Warn(issue string, action string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	w := fmt.Sprintf("%s: %s", issue, action)
	if !slices.Contains(o.warnings, w) {
		o.warnings = append(o.warnings, w)
	}
}

// Println writes to stdout. On first call, any collected warnings
// are printed to stderr first.
func (o *IO) Println(a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout. On first call, any collected
// warnings are printed to stderr first.
func (o *IO) Printf(format string, a ...any) {
	o.flushWarningsStart()
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Paint returns a sprint function for attrs. It falls back to plain
// fmt.Sprint when color is off.
func (o *IO) Paint(attrs ...color.Attribute) func(a ...any) string {
	if !o.color {
		return fmt.Sprint
	}

	c := color.New(attrs...)
	c.EnableColor()

	return c.SprintFunc()
}

// Finish prints warnings to stderr and returns exit code.
// Returns 1 if any warnings, 0 otherwise.
func (o *IO) Finish() int {
	// If no output happened but we have warnings, print them at "start" position
	o.flushWarningsStart()

	o.mu.Lock()
	defer o.mu.Unlock()

	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, "warning:", w)
	}

	code := 0
	if len(o.warnings) > 0 {
		code = 1
	}

	o.warnings = nil
	o.started = false

	return code
}

func (o *IO) flushWarningsStart() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.started && len(o.warnings) > 0 {
		for _, w := range o.warnings {
			_, _ = fmt.Fprintln(o.errOut, "warning:", w)
		}

		o.started = true
	}
}
