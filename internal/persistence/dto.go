package persistence

import (
	"time"

	"github.com/calvinalkan/focus/internal/model"
)

// Durations are stored as integer milliseconds.

type taskDTO struct {
	ID             string           `json:"id"                       yaml:"id"`
	Title          string           `json:"title"                    yaml:"title"`
	ParentID       string           `json:"parentId,omitempty"       yaml:"parentId,omitempty"`
	SubTaskIDs     []string         `json:"subTaskIds"               yaml:"subTaskIds,omitempty"`
	IsDone         bool             `json:"isDone"                   yaml:"isDone"`
	TimeSpentOnDay map[string]int64 `json:"timeSpentOnDay,omitempty" yaml:"timeSpentOnDay,omitempty"`
	TimeEstimate   int64            `json:"timeEstimate"             yaml:"timeEstimate"`
	TimeSpent      int64            `json:"timeSpent"                yaml:"timeSpent"`
	RepeatCfgID    string           `json:"repeatCfgId,omitempty"    yaml:"repeatCfgId,omitempty"`

	// Only read by Import: nested subtasks get their parent links filled in.
	SubTasks []taskDTO `json:"subTasks,omitempty" yaml:"subTasks,omitempty"`
}

type exportSettingsDTO struct {
	Cols             []string `json:"cols"                       yaml:"cols"`
	RoundWorkTimeTo  int64    `json:"roundWorkTimeTo,omitempty"  yaml:"roundWorkTimeTo,omitempty"`
	RoundStartTimeTo int64    `json:"roundStartTimeTo,omitempty" yaml:"roundStartTimeTo,omitempty"`
	RoundEndTimeTo   int64    `json:"roundEndTimeTo,omitempty"   yaml:"roundEndTimeTo,omitempty"`
	SeparateTasksBy  string   `json:"separateTasksBy,omitempty"  yaml:"separateTasksBy,omitempty"`
	GroupBy          string   `json:"groupBy,omitempty"          yaml:"groupBy,omitempty"`
}

type advancedCfgDTO struct {
	WorklogExportSettings *exportSettingsDTO `json:"worklogExportSettings,omitempty" yaml:"worklogExportSettings,omitempty"`
}

type tagDTO struct {
	ID          string         `json:"id"                    yaml:"id"`
	Title       string         `json:"title"                 yaml:"title"`
	Icon        string         `json:"icon,omitempty"        yaml:"icon,omitempty"`
	TaskIDs     []string       `json:"taskIds"               yaml:"taskIds"`
	Theme       model.Theme    `json:"theme"                 yaml:"theme,omitempty"`
	AdvancedCfg advancedCfgDTO `json:"advancedCfg"           yaml:"advancedCfg,omitempty"`
}

type projectDTO struct {
	ID             string         `json:"id"             yaml:"id"`
	Title          string         `json:"title"          yaml:"title"`
	Icon           string         `json:"icon,omitempty" yaml:"icon,omitempty"`
	TaskIDs        []string       `json:"taskIds"        yaml:"taskIds"`
	BacklogTaskIDs []string       `json:"backlogTaskIds" yaml:"backlogTaskIds"`
	Theme          model.Theme    `json:"theme"          yaml:"theme,omitempty"`
	AdvancedCfg    advancedCfgDTO `json:"advancedCfg"    yaml:"advancedCfg,omitempty"`
}

// dataFile is the shape of an import file.
type dataFile struct {
	Tasks    []taskDTO    `json:"tasks"    yaml:"tasks"`
	Projects []projectDTO `json:"projects" yaml:"projects"`
	Tags     []tagDTO     `json:"tags"     yaml:"tags"`
}

func ms(d time.Duration) int64 {
	return d.Milliseconds()
}

func fromMS(v int64) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func taskToDTO(t model.Task) taskDTO {
	var spent map[string]int64

	if len(t.TimeSpentOnDay) > 0 {
		spent = make(map[string]int64, len(t.TimeSpentOnDay))
		for day, d := range t.TimeSpentOnDay {
			spent[day] = ms(d)
		}
	}

	subTaskIDs := t.SubTaskIDs
	if subTaskIDs == nil {
		subTaskIDs = []string{}
	}

	return taskDTO{
		ID:             t.ID,
		Title:          t.Title,
		ParentID:       t.ParentID,
		SubTaskIDs:     subTaskIDs,
		IsDone:         t.IsDone,
		TimeSpentOnDay: spent,
		TimeEstimate:   ms(t.TimeEstimate),
		TimeSpent:      ms(t.TimeSpent),
		RepeatCfgID:    t.RepeatCfgID,
	}
}

func taskFromDTO(dto taskDTO) model.Task {
	var spent map[string]time.Duration

	if len(dto.TimeSpentOnDay) > 0 {
		spent = make(map[string]time.Duration, len(dto.TimeSpentOnDay))
		for day, v := range dto.TimeSpentOnDay {
			spent[day] = fromMS(v)
		}
	}

	return model.Task{
		ID:             dto.ID,
		Title:          dto.Title,
		ParentID:       dto.ParentID,
		SubTaskIDs:     dto.SubTaskIDs,
		IsDone:         dto.IsDone,
		TimeSpentOnDay: spent,
		TimeEstimate:   fromMS(dto.TimeEstimate),
		TimeSpent:      fromMS(dto.TimeSpent),
		RepeatCfgID:    dto.RepeatCfgID,
	}
}

func advancedCfgToDTO(cfg model.AdvancedCfg) advancedCfgDTO {
	s := cfg.WorklogExportSettings
	if s == nil {
		return advancedCfgDTO{}
	}

	return advancedCfgDTO{WorklogExportSettings: &exportSettingsDTO{
		Cols:             s.Cols,
		RoundWorkTimeTo:  ms(s.RoundWorkTimeTo),
		RoundStartTimeTo: ms(s.RoundStartTimeTo),
		RoundEndTimeTo:   ms(s.RoundEndTimeTo),
		SeparateTasksBy:  s.SeparateTasksBy,
		GroupBy:          s.GroupBy,
	}}
}

func advancedCfgFromDTO(dto advancedCfgDTO) model.AdvancedCfg {
	s := dto.WorklogExportSettings
	if s == nil {
		return model.AdvancedCfg{}
	}

	return model.AdvancedCfg{WorklogExportSettings: &model.WorklogExportSettings{
		Cols:             s.Cols,
		RoundWorkTimeTo:  fromMS(s.RoundWorkTimeTo),
		RoundStartTimeTo: fromMS(s.RoundStartTimeTo),
		RoundEndTimeTo:   fromMS(s.RoundEndTimeTo),
		SeparateTasksBy:  s.SeparateTasksBy,
		GroupBy:          s.GroupBy,
	}}
}

func tagToDTO(t model.Tag) tagDTO {
	taskIDs := t.TaskIDs
	if taskIDs == nil {
		taskIDs = []string{}
	}

	return tagDTO{
		ID:          t.ID,
		Title:       t.Title,
		Icon:        t.Icon,
		TaskIDs:     taskIDs,
		Theme:       t.Theme,
		AdvancedCfg: advancedCfgToDTO(t.AdvancedCfg),
	}
}

// Tags always carry a task list, hand-written files may omit it.
func tagFromDTO(dto tagDTO) model.Tag {
	taskIDs := dto.TaskIDs
	if taskIDs == nil {
		taskIDs = []string{}
	}

	return model.Tag{
		ID:          dto.ID,
		Title:       dto.Title,
		Icon:        dto.Icon,
		TaskIDs:     taskIDs,
		Theme:       dto.Theme,
		AdvancedCfg: advancedCfgFromDTO(dto.AdvancedCfg),
	}
}

// Project lists stay nil when absent so readers can tell "never populated"
// from "empty".
func projectToDTO(p model.Project) projectDTO {
	return projectDTO{
		ID:             p.ID,
		Title:          p.Title,
		Icon:           p.Icon,
		TaskIDs:        p.TaskIDs,
		BacklogTaskIDs: p.BacklogTaskIDs,
		Theme:          p.Theme,
		AdvancedCfg:    advancedCfgToDTO(p.AdvancedCfg),
	}
}

func projectFromDTO(dto projectDTO) model.Project {
	return model.Project{
		ID:             dto.ID,
		Title:          dto.Title,
		Icon:           dto.Icon,
		TaskIDs:        dto.TaskIDs,
		BacklogTaskIDs: dto.BacklogTaskIDs,
		Theme:          dto.Theme,
		AdvancedCfg:    advancedCfgFromDTO(dto.AdvancedCfg),
	}
}
