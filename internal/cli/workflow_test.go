package cli_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/focus/internal/cli"
	"github.com/calvinalkan/focus/internal/persistence"
)

const day = "2024-01-01"

const seedYAML = `
tasks:
  - id: write
    title: Write report
    timeEstimate: 3600000
    timeSpent: 1800000
    timeSpentOnDay:
      "2024-01-01": 1800000
  - id: review
    title: Review PR
    isDone: true
  - id: release
    title: Ship release
    subTasks:
      - id: changelog
        title: Write changelog
      - id: tag
        title: Tag release
        isDone: true
  - id: later
    title: Later
projects:
  - id: p1
    title: Release
    taskIds: [release, write]
    backlogTaskIds: [later]
tags:
  - id: MY_DAY
    title: My Day
    taskIds: [write, review]
`

// seeded returns a CLI whose data dir holds the seed file above.
func seeded(t *testing.T) *cli.CLI {
	t.Helper()

	c := cli.NewCLI(t)
	path := c.WriteFile("seed.yaml", seedYAML)

	out := c.MustRun("import", path)
	cli.AssertContains(t, out, "imported tasks=6 projects=1 tags=1")

	return c
}

func Test_Status_Shows_Default_Context_When_Data_Dir_Is_Empty(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	stdout := c.MustRun("--day", day, "status")

	cli.AssertContains(t, stdout, `context=TAG:MY_DAY "My Day"`)
	cli.AssertContains(t, stdout, "today=0 done=0 undone=0 startable=0 backlog=0")
	cli.AssertContains(t, stdout, "nothing left to work on")
}

func Test_Status_Summarizes_Active_Tag(t *testing.T) {
	t.Parallel()

	c := seeded(t)
	stdout := c.MustRun("--day", day, "status")

	cli.AssertContains(t, stdout, `context=TAG:MY_DAY "My Day"`)
	cli.AssertContains(t, stdout, "today=2 done=1 undone=1 startable=1 backlog=0")
	cli.AssertContains(t, stdout, "worked=30m remaining=1h estimate_left=30m")
	cli.AssertNotContains(t, stdout, "nothing left")
}

func Test_Today_Lists_Tasks_Of_Active_Tag(t *testing.T) {
	t.Parallel()

	c := seeded(t)
	stdout := c.MustRun("--day", day, "today")

	want := strings.Join([]string{
		"[ ] write Write report  (est 1h, spent 30m, today 30m)",
		"[x] review Review PR",
	}, "\n")

	if diff := cmp.Diff(want, stdout); diff != "" {
		t.Fatalf("today (-want +got):\n%s", diff)
	}
}

func Test_Done_And_Undone_Split_Today(t *testing.T) {
	t.Parallel()

	c := seeded(t)

	assert.Equal(t, "[x] review Review PR", c.MustRun("done"))
	assert.Contains(t, c.MustRun("undone"), "write Write report")
	assert.NotContains(t, c.MustRun("undone"), "review")
}

func Test_Switch_To_Project_Shows_Subtasks_And_Backlog(t *testing.T) {
	t.Parallel()

	c := seeded(t)

	cli.AssertContains(t, c.MustRun("switch", "project", "p1"), `switched to PROJECT:p1 "Release"`)

	today := c.MustRun("today")
	want := strings.Join([]string{
		"[ ] release Ship release",
		"    [ ] changelog Write changelog",
		"    [x] tag Tag release",
		"[ ] write Write report  (est 1h, spent 30m)",
	}, "\n")

	if diff := cmp.Diff(want, today); diff != "" {
		t.Fatalf("today (-want +got):\n%s", diff)
	}

	assert.Equal(t, "[ ] later Later", c.MustRun("backlog"))
}

func Test_Switch_Is_Remembered_Across_Runs(t *testing.T) {
	t.Parallel()

	c := seeded(t)
	c.MustRun("switch", "/project/p1/tasks")

	cli.AssertContains(t, c.MustRun("status"), `context=PROJECT:p1 "Release"`)
	assert.JSONEq(t, `{"activeId": "p1", "activeType": "PROJECT"}`, c.ReadDataFile(persistence.ContextFile))
}

func Test_Switch_Fails_When_Context_Does_Not_Exist(t *testing.T) {
	t.Parallel()

	c := seeded(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing tag", args: []string{"switch", "tag", "nope"}, want: "work context not found"},
		{name: "unknown type", args: []string{"switch", "folder", "x"}, want: "unknown work context type"},
		{name: "path without context", args: []string{"switch", "/settings"}, want: "path names no tag or project"},
	}

	for _, tt := range tests {
		stderr := c.MustFail(tt.args...)
		cli.AssertContains(t, stderr, tt.want)
	}

	cli.AssertContains(t, c.MustRun("status"), "context=TAG:MY_DAY")
}

func Test_Startable_Selects_Subtasks_Of_Today_Parents(t *testing.T) {
	t.Parallel()

	c := seeded(t)
	c.MustRun("switch", "project", "p1")

	stdout := c.MustRun("startable", "--json")

	var got []struct {
		ID string `json:"id"`
	}

	require.NoError(t, json.Unmarshal([]byte(stdout), &got))

	ids := make([]string, 0, len(got))
	for _, g := range got {
		ids = append(ids, g.ID)
	}

	assert.Equal(t, []string{"write", "changelog"}, ids)
}

func Test_Today_JSON_Nests_Subtasks(t *testing.T) {
	t.Parallel()

	c := seeded(t)
	c.MustRun("switch", "project", "p1")

	stdout := c.MustRun("today", "--json")

	var got []struct {
		ID           string `json:"id"`
		TimeEstimate int64  `json:"timeEstimate"`
		SubTasks     []struct {
			ID     string `json:"id"`
			IsDone bool   `json:"isDone"`
		} `json:"subTasks"`
	}

	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "release", got[0].ID)
	require.Len(t, got[0].SubTasks, 2)
	assert.True(t, got[0].SubTasks[1].IsDone)
	assert.Equal(t, int64(3600000), got[1].TimeEstimate)
}

func Test_Worklog_Shows_Time_And_Touched_Tasks(t *testing.T) {
	t.Parallel()

	c := seeded(t)
	stdout := c.MustRun("--day", day, "worklog")

	lines := strings.Split(stdout, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "day=2024-01-01 worked=30m remaining=1h", lines[0])
	assert.Contains(t, lines[1], "write Write report")
	assert.Contains(t, lines[2], "review Review PR")

	other := c.MustRun("worklog", "--day", "2024-01-02")
	assert.Equal(t, "day=2024-01-02 worked=0m remaining=0m\n[x] review Review PR", other)

	stderr := c.MustFail("worklog", "--day", "yesterday")
	cli.AssertContains(t, stderr, `invalid --day "yesterday"`)
}

func Test_MoveToBacklog_Moves_Task_Of_Active_Project(t *testing.T) {
	t.Parallel()

	c := seeded(t)
	c.MustRun("switch", "project", "p1")

	assert.Equal(t, "moved write to backlog", c.MustRun("move-to-backlog", "write"))

	backlog := c.MustRun("backlog")
	assert.True(t, strings.HasPrefix(backlog, "[ ] write"), "moved task goes first: %q", backlog)
	cli.AssertNotContains(t, c.MustRun("today"), "write Write report")
}

func Test_MoveToBacklog_Fails_When_Tag_Is_Active(t *testing.T) {
	t.Parallel()

	c := seeded(t)

	stderr := c.MustFail("move-to-backlog", "write")

	cli.AssertContains(t, stderr, "work context has no backlog")
}

func Test_ExportSettings_Updates_Only_Given_Fields(t *testing.T) {
	t.Parallel()

	c := seeded(t)

	stdout := c.MustRun("export-settings", "--cols", "DATE,TITLES", "--round-work", "15m")
	cli.AssertContains(t, stdout, "cols=DATE,TITLES")
	cli.AssertContains(t, stdout, "round_work=15m")

	stdout = c.MustRun("export-settings", "--group-by", "DATE")
	cli.AssertContains(t, stdout, "cols=DATE,TITLES")
	cli.AssertContains(t, stdout, "group_by=DATE")

	cli.AssertContains(t, c.ReadDataFile(persistence.TagsFile), `"roundWorkTimeTo": 900000`)

	c.MustRun("switch", "project", "p1")
	cli.AssertContains(t, c.MustRun("export-settings"), "cols=\n")
}

func Test_Add_Log_And_Check_Update_Views(t *testing.T) {
	t.Parallel()

	c := seeded(t)

	id := c.MustRun("add", "--estimate", "45m", "Buy", "milk")
	require.Len(t, id, 36)

	cli.AssertContains(t, c.MustRun("today"), id+" Buy milk  (est 45m)")

	c.MustRun("--day", day, "log", id, "15m")
	cli.AssertContains(t, c.MustRun("--day", day, "status"), "worked=45m")

	c.MustRun("check", id)
	cli.AssertContains(t, c.MustRun("done"), id)

	c.MustRun("uncheck", id)
	cli.AssertNotContains(t, c.MustRun("done"), id)

	stderr := c.MustFail("log", "ghost", "5m")
	cli.AssertContains(t, stderr, "not found")
}

func Test_Add_Subtask_Is_Not_Listed_On_Context(t *testing.T) {
	t.Parallel()

	c := seeded(t)

	id := c.MustRun("add", "--parent", "write", "Outline")

	today := c.MustRun("today")
	cli.AssertContains(t, today, "    [ ] "+id+" Outline")
	assert.Equal(t, 1, strings.Count(today, id))
}

func Test_Status_Warns_When_Persisted_Context_Type_Is_Unknown(t *testing.T) {
	t.Parallel()

	c := seeded(t)
	c.WriteFile(".focus/"+persistence.ContextFile, `{"activeId": "x", "activeType": "FOLDER"}`)

	stdout, stderr, code := c.Run("status")

	assert.Equal(t, 1, code)
	cli.AssertContains(t, stdout, "context=unresolved")
	cli.AssertContains(t, stderr, "warning:")
	cli.AssertContains(t, stderr, "unknown work context type")
}

func Test_Tag_Without_Task_List_Works_When_Written_By_Hand(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".focus/"+persistence.TagsFile, `[{"id": "MY_DAY", "title": "My Day"}]`)

	stdout, stderr, code := c.Run("today")
	assert.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Empty(t, stdout)

	id, stderr, code := c.Run("add", "hello")
	assert.Equal(t, 0, code, "stderr: %s", stderr)
	cli.AssertNotContains(t, stderr, "warning:")

	cli.AssertContains(t, c.MustRun("today"), strings.TrimSpace(id)+" hello")
}

func Test_Import_Fails_When_Format_Is_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	path := c.WriteFile("seed.toml", "")

	stderr := c.MustFail("import", path)

	cli.AssertContains(t, stderr, "unsupported import format")
	assert.NoDirExists(t, c.DataDir())
}
