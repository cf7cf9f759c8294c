package store

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/calvinalkan/focus/internal/model"
)

// State is the canonical application state.
type State struct {
	Context  model.ContextState
	Tasks    model.Collection[model.Task]
	Projects model.Collection[model.Project]
	Tags     model.Collection[model.Tag]
}

// slices touched by a reduction.
type changeSet uint8

const (
	changedContext changeSet = 1 << iota
	changedTasks
	changedProjects
	changedTags
)

func taskID(t model.Task) string       { return t.ID }
func projectID(p model.Project) string { return p.ID }
func tagID(t model.Tag) string         { return t.ID }

// reduce applies action to a copy of state. The receiver state is never
// modified.
func reduce(state State, action Action) (State, changeSet, error) {
	switch a := action.(type) {
	case LoadContextState:
		state.Context = a.State

		return state, changedContext, nil

	case SetActiveContext:
		state.Context = model.ContextState{ActiveID: a.ID, ActiveType: a.Type}

		return state, changedContext, nil

	case UpdateProjectAdvancedCfg:
		project, ok := state.Projects.Get(a.ProjectID)
		if !ok {
			return state, 0, fmt.Errorf("project %s: %w", a.ProjectID, ErrNotFound)
		}

		cfg, err := applySection(project.AdvancedCfg, a.SectionKey, a.Data)
		if err != nil {
			return state, 0, err
		}

		project.AdvancedCfg = cfg
		state.Projects = state.Projects.With(project.ID, project)

		return state, changedProjects, nil

	case UpdateTagAdvancedCfg:
		tag, ok := state.Tags.Get(a.TagID)
		if !ok {
			return state, 0, fmt.Errorf("tag %s: %w", a.TagID, ErrNotFound)
		}

		cfg, err := applySection(tag.AdvancedCfg, a.SectionKey, a.Data)
		if err != nil {
			return state, 0, err
		}

		tag.AdvancedCfg = cfg
		state.Tags = state.Tags.With(tag.ID, tag)

		return state, changedTags, nil

	case MoveTaskToBacklog:
		return moveTaskToBacklog(state, a)

	case LoadTasks:
		state.Tasks = model.NewCollection(a.Tasks, taskID)

		return state, changedTasks, nil

	case LoadProjects:
		state.Projects = model.NewCollection(a.Projects, projectID)

		return state, changedProjects, nil

	case LoadTags:
		tags := make([]model.Tag, len(a.Tags))
		for i, tag := range a.Tags {
			if tag.TaskIDs == nil {
				tag.TaskIDs = []string{}
			}

			tags[i] = tag
		}

		state.Tags = model.NewCollection(tags, tagID)

		return state, changedTags, nil

	case AddTask:
		return addTask(state, a)

	case UpsertTask:
		if a.Task.ID == "" {
			return state, 0, fmt.Errorf("task: %w", ErrIDRequired)
		}

		state.Tasks = state.Tasks.With(a.Task.ID, a.Task)

		return state, changedTasks, nil

	case SetTaskDone:
		task, ok := state.Tasks.Get(a.TaskID)
		if !ok {
			return state, 0, fmt.Errorf("task %s: %w", a.TaskID, ErrNotFound)
		}

		task.IsDone = a.Done
		state.Tasks = state.Tasks.With(task.ID, task)

		return state, changedTasks, nil

	case AddTimeSpent:
		return addTimeSpent(state, a)

	default:
		return state, 0, fmt.Errorf("%w: %T", ErrUnknownAction, action)
	}
}

func applySection(cfg model.AdvancedCfg, sectionKey string, data any) (model.AdvancedCfg, error) {
	switch sectionKey {
	case model.SectionWorklogExportSettings:
		var settings model.WorklogExportSettings

		switch d := data.(type) {
		case model.WorklogExportSettings:
			settings = d.Clone()
		case *model.WorklogExportSettings:
			if d == nil {
				return cfg, fmt.Errorf("%w: %s is nil", ErrInvalidSectionData, sectionKey)
			}

			settings = d.Clone()
		default:
			return cfg, fmt.Errorf("%w: %s got %T", ErrInvalidSectionData, sectionKey, data)
		}

		cfg.WorklogExportSettings = &settings

		return cfg, nil
	default:
		return cfg, fmt.Errorf("%w: %q", ErrUnknownSection, sectionKey)
	}
}

func moveTaskToBacklog(state State, a MoveTaskToBacklog) (State, changeSet, error) {
	switch a.WorkContextType {
	case model.ContextTypeProject:
	case model.ContextTypeTag:
		return state, 0, fmt.Errorf("tag %s: %w", a.WorkContextID, ErrBacklogUnsupported)
	default:
		return state, 0, fmt.Errorf("%w: %q", model.ErrUnknownContextType, a.WorkContextType)
	}

	project, ok := state.Projects.Get(a.WorkContextID)
	if !ok {
		return state, 0, fmt.Errorf("project %s: %w", a.WorkContextID, ErrNotFound)
	}

	idx := slices.Index(project.TaskIDs, a.TaskID)
	if idx < 0 {
		return state, 0, fmt.Errorf("task %s in today list of project %s: %w", a.TaskID, project.ID, ErrNotFound)
	}

	project.TaskIDs = slices.Delete(slices.Clone(project.TaskIDs), idx, idx+1)

	backlog := slices.DeleteFunc(slices.Clone(project.BacklogTaskIDs), func(id string) bool { return id == a.TaskID })
	project.BacklogTaskIDs = append([]string{a.TaskID}, backlog...)

	state.Projects = state.Projects.With(project.ID, project)

	return state, changedProjects, nil
}

func addTask(state State, a AddTask) (State, changeSet, error) {
	task := a.Task
	if task.ID == "" {
		return state, 0, fmt.Errorf("task: %w", ErrIDRequired)
	}

	if task.HasParent() {
		parent, ok := state.Tasks.Get(task.ParentID)
		if !ok {
			return state, 0, fmt.Errorf("parent task %s: %w", task.ParentID, ErrNotFound)
		}

		if !slices.Contains(parent.SubTaskIDs, task.ID) {
			parent.SubTaskIDs = append(slices.Clone(parent.SubTaskIDs), task.ID)
		}

		state.Tasks = state.Tasks.With(parent.ID, parent).With(task.ID, task)

		return state, changedTasks, nil
	}

	var changed changeSet

	switch a.WorkContextType {
	case model.ContextTypeTag:
		if a.Backlog {
			return state, 0, fmt.Errorf("tag %s: %w", a.WorkContextID, ErrBacklogUnsupported)
		}

		tag, ok := state.Tags.Get(a.WorkContextID)
		if !ok {
			return state, 0, fmt.Errorf("tag %s: %w", a.WorkContextID, ErrNotFound)
		}

		tag.TaskIDs = appendUnique(tag.TaskIDs, task.ID)
		state.Tags = state.Tags.With(tag.ID, tag)
		changed = changedTags

	case model.ContextTypeProject:
		project, ok := state.Projects.Get(a.WorkContextID)
		if !ok {
			return state, 0, fmt.Errorf("project %s: %w", a.WorkContextID, ErrNotFound)
		}

		if a.Backlog {
			project.BacklogTaskIDs = appendUnique(project.BacklogTaskIDs, task.ID)
		} else {
			project.TaskIDs = appendUnique(project.TaskIDs, task.ID)
		}

		state.Projects = state.Projects.With(project.ID, project)
		changed = changedProjects

	default:
		return state, 0, fmt.Errorf("%w: %q", model.ErrUnknownContextType, a.WorkContextType)
	}

	state.Tasks = state.Tasks.With(task.ID, task)

	return state, changed | changedTasks, nil
}

func addTimeSpent(state State, a AddTimeSpent) (State, changeSet, error) {
	if _, err := model.ParseWorklogDay(a.Day); err != nil {
		return state, 0, fmt.Errorf("%w: %q", ErrInvalidDay, a.Day)
	}

	if a.Duration < 0 {
		return state, 0, fmt.Errorf("%w: %s", ErrNegativeDuration, a.Duration)
	}

	task, ok := state.Tasks.Get(a.TaskID)
	if !ok {
		return state, 0, fmt.Errorf("task %s: %w", a.TaskID, ErrNotFound)
	}

	spent := maps.Clone(task.TimeSpentOnDay)
	if spent == nil {
		spent = make(map[string]time.Duration, 1)
	}

	spent[a.Day] += a.Duration
	task.TimeSpentOnDay = spent
	task.TimeSpent += a.Duration

	state.Tasks = state.Tasks.With(task.ID, task)

	return state, changedTasks, nil
}

func appendUnique(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}

	return append(slices.Clone(ids), id)
}
