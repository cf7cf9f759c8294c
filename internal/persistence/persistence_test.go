package persistence_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/focus/internal/model"
	"github.com/calvinalkan/focus/internal/persistence"
)

func openStore(t *testing.T, dir string) *persistence.Store {
	t.Helper()

	s, err := persistence.Open(dir)
	if err != nil {
		t.Fatalf("Open(%s): %v", dir, err)
	}

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	err := os.WriteFile(path, []byte(content), 0o600)
	if err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func Test_LoadContextState_Returns_Nil_When_Nothing_Was_Saved(t *testing.T) {
	t.Parallel()

	s := openStore(t, t.TempDir())

	got, err := s.LoadContextState(context.Background())

	require.NoError(t, err)
	assert.Nil(t, got)
}

func Test_SaveContextState_Round_Trips(t *testing.T) {
	t.Parallel()

	s := openStore(t, t.TempDir())
	want := model.ContextState{ActiveID: "p1", ActiveType: model.ContextTypeProject}

	require.NoError(t, s.SaveContextState(context.Background(), want))

	got, err := s.LoadContextState(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	raw, err := os.ReadFile(filepath.Join(s.Dir(), persistence.ContextFile))
	require.NoError(t, err)
	assert.JSONEq(t, `{"activeId": "p1", "activeType": "PROJECT"}`, string(raw))
}

func Test_SaveAll_Stores_Durations_In_Milliseconds(t *testing.T) {
	t.Parallel()

	s := openStore(t, t.TempDir())
	data := persistence.Data{
		Tasks: []model.Task{{
			ID:             "t1",
			Title:          "write report",
			SubTaskIDs:     []string{},
			TimeEstimate:   90 * time.Minute,
			TimeSpent:      1500 * time.Millisecond,
			TimeSpentOnDay: map[string]time.Duration{"2024-01-01": 1500 * time.Millisecond},
		}},
		Projects: []model.Project{{
			ID:      "p1",
			TaskIDs: []string{"t1"},
			AdvancedCfg: model.AdvancedCfg{WorklogExportSettings: &model.WorklogExportSettings{
				Cols:            []string{"DATE"},
				RoundWorkTimeTo: 15 * time.Minute,
			}},
		}},
		Tags: []model.Tag{{ID: model.MyDayTagID, TaskIDs: []string{}}},
	}

	require.NoError(t, s.SaveAll(context.Background(), data))

	raw, err := os.ReadFile(filepath.Join(s.Dir(), persistence.TasksFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"timeEstimate": 5400000`)
	assert.Contains(t, string(raw), `"2024-01-01": 1500`)

	got, err := s.LoadAll(context.Background())
	require.NoError(t, err)

	if diff := cmp.Diff(data, got); diff != "" {
		t.Fatalf("LoadAll (-want +got):\n%s", diff)
	}
}

func Test_LoadAll_Accepts_Comments_And_Trailing_Commas(t *testing.T) {
	t.Parallel()

	s := openStore(t, t.TempDir())
	writeFile(t, filepath.Join(s.Dir(), persistence.TagsFile), `[
		// edited by hand
		{"id": "MY_DAY", "title": "My Day", "taskIds": ["a"],},
	]`)

	got, err := s.LoadAll(context.Background())
	require.NoError(t, err)

	require.Len(t, got.Tags, 1)
	assert.Equal(t, []string{"a"}, got.Tags[0].TaskIDs)
	assert.Empty(t, got.Tasks)
}

func Test_LoadAll_Defaults_Tag_Task_List_When_Field_Is_Missing(t *testing.T) {
	t.Parallel()

	s := openStore(t, t.TempDir())
	writeFile(t, filepath.Join(s.Dir(), persistence.TagsFile), `[{"id": "MY_DAY", "title": "My Day"}]`)

	got, err := s.LoadAll(context.Background())
	require.NoError(t, err)

	require.Len(t, got.Tags, 1)
	assert.NotNil(t, got.Tags[0].TaskIDs)
	assert.Empty(t, got.Tags[0].TaskIDs)
}

func Test_LoadAll_Returns_Error_When_File_Is_Corrupt(t *testing.T) {
	t.Parallel()

	s := openStore(t, t.TempDir())
	writeFile(t, filepath.Join(s.Dir(), persistence.TasksFile), `[{"id": `)

	_, err := s.LoadAll(context.Background())

	require.ErrorIs(t, err, persistence.ErrCorrupt)
}

func Test_Open_Returns_Error_When_Directory_Is_Locked(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	openStore(t, dir)

	_, err := persistence.Open(dir)

	require.ErrorIs(t, err, persistence.ErrLocked)
}

func Test_Open_Succeeds_After_Close(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	first, err := persistence.Open(dir)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	_, err = first.LoadContextState(context.Background())
	require.ErrorIs(t, err, persistence.ErrClosed)

	openStore(t, dir)
}

func Test_Read_Returns_Error_When_Context_Is_Canceled(t *testing.T) {
	t.Parallel()

	s := openStore(t, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.LoadContextState(ctx)

	require.ErrorIs(t, err, context.Canceled)
}

func Test_Import_Reads_YAML_With_Nested_Subtasks(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seed.yaml")
	writeFile(t, path, strings.TrimSpace(`
tasks:
  - id: parent
    title: Ship release
    timeEstimate: 3600000
    subTasks:
      - title: Write changelog
      - id: tag-it
        title: Tag release
        isDone: true
  - title: Inbox zero
    repeatCfgId: daily
projects:
  - id: p1
    title: Release
    taskIds: [parent]
    backlogTaskIds: []
tags:
  - id: MY_DAY
    title: My Day
    taskIds: [parent]
`))

	got, err := persistence.Import(path)
	require.NoError(t, err)

	require.Len(t, got.Tasks, 4)

	parent := got.Tasks[0]
	assert.Equal(t, "parent", parent.ID)
	assert.Equal(t, time.Hour, parent.TimeEstimate)
	require.Len(t, parent.SubTaskIDs, 2)

	changelog := got.Tasks[1]
	assert.Equal(t, "parent", changelog.ParentID)
	assert.Equal(t, parent.SubTaskIDs[0], changelog.ID)

	id, err := uuid.Parse(changelog.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	assert.Equal(t, "tag-it", parent.SubTaskIDs[1])
	assert.True(t, got.Tasks[2].IsDone)
	assert.Equal(t, "daily", got.Tasks[3].RepeatCfgID)
	assert.Empty(t, got.Tasks[3].ParentID)

	require.Len(t, got.Projects, 1)
	assert.Equal(t, []string{}, got.Projects[0].BacklogTaskIDs)
	require.Len(t, got.Tags, 1)
}

func Test_Import_Reads_JSONC(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seed.jsonc")
	writeFile(t, path, `{
		// tags only
		"tags": [{"id": "focus", "title": "Focus"}],
	}`)

	got, err := persistence.Import(path)
	require.NoError(t, err)

	require.Len(t, got.Tags, 1)
	assert.Equal(t, []string{}, got.Tags[0].TaskIDs)
}

func Test_Import_Returns_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		content string
		want    error
	}{
		{name: "unknown extension", file: "seed.toml", content: "", want: persistence.ErrUnsupportedFormat},
		{name: "unknown yaml field", file: "seed.yaml", content: "taskz: []", want: persistence.ErrCorrupt},
		{name: "project without id", file: "seed.json", content: `{"projects": [{"title": "x"}]}`, want: persistence.ErrIDRequired},
		{name: "tag without id", file: "seed.yml", content: "tags:\n  - title: x\n", want: persistence.ErrIDRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), tt.file)
			writeFile(t, path, tt.content)

			_, err := persistence.Import(path)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func Test_Merge_Replaces_By_ID_And_Appends_New(t *testing.T) {
	t.Parallel()

	base := persistence.Data{Tasks: []model.Task{{ID: "a", Title: "old"}, {ID: "b"}}}
	incoming := persistence.Data{Tasks: []model.Task{{ID: "c"}, {ID: "a", Title: "new"}}}

	got := persistence.Merge(base, incoming)

	want := []model.Task{{ID: "a", Title: "new"}, {ID: "b"}, {ID: "c"}}
	if diff := cmp.Diff(want, got.Tasks); diff != "" {
		t.Fatalf("merged tasks (-want +got):\n%s", diff)
	}
}
