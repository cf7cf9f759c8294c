package cli_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calvinalkan/focus/internal/cli"
)

// Contract: the repl keeps one engine alive, so a switch is visible to the
// next line without reloading.
func Test_Repl_Runs_Commands_On_One_Engine(t *testing.T) {
	t.Parallel()

	c := seeded(t)

	input := strings.Join([]string{
		"today",
		"switch project p1",
		"",
		"today",
		"exit",
		"status",
	}, "\n")

	stdout, stderr, code := c.RunWithInput(input, "repl")

	assert.Equal(t, 0, code, "stderr: %s", stderr)

	first := strings.Index(stdout, "write Write report")
	switched := strings.Index(stdout, `switched to PROJECT:p1 "Release"`)
	release := strings.Index(stdout, "release Ship release")

	assert.Less(t, first, switched)
	assert.Less(t, switched, release)
	cli.AssertNotContains(t, stdout, "context=")
	cli.AssertContains(t, stderr, "switching context...")
}

func Test_Repl_Reports_Errors_And_Keeps_Going(t *testing.T) {
	t.Parallel()

	c := seeded(t)

	stdout, stderr, code := c.RunWithInput("frobnicate\nmove-to-backlog write\nhelp\n", "repl")

	assert.Equal(t, 0, code)
	cli.AssertContains(t, stderr, "unknown command: frobnicate")
	cli.AssertContains(t, stderr, "work context has no backlog")
	cli.AssertContains(t, stdout, "startable [--json]")
	cli.AssertNotContains(t, stdout, "  repl ")
}

func Test_Repl_Saves_Changes_For_Next_Run(t *testing.T) {
	t.Parallel()

	c := seeded(t)

	c.RunWithInput("switch tag MY_DAY\ncheck write\n", "repl")

	cli.AssertContains(t, c.MustRun("done"), "write Write report")
}
