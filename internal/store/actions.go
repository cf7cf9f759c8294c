package store

import (
	"time"

	"github.com/calvinalkan/focus/internal/model"
)

// Action is an intent dispatched to the store.
type Action interface {
	ActionType() string
}

// LoadContextState replaces the active context state, typically after
// hydration.
type LoadContextState struct {
	State model.ContextState
}

// SetActiveContext switches the active work context.
type SetActiveContext struct {
	ID   string
	Type model.ContextType
}

// UpdateProjectAdvancedCfg writes one advanced config section of a project.
type UpdateProjectAdvancedCfg struct {
	ProjectID  string
	SectionKey string
	Data       any
}

// UpdateTagAdvancedCfg writes one advanced config section of a tag.
type UpdateTagAdvancedCfg struct {
	TagID      string
	SectionKey string
	Data       any
}

// MoveTaskToBacklog moves a task from the today list to the top of the
// backlog of a project.
type MoveTaskToBacklog struct {
	TaskID          string
	WorkContextID   string
	WorkContextType model.ContextType
}

// LoadTasks replaces the task collection.
type LoadTasks struct {
	Tasks []model.Task
}

// LoadProjects replaces the project collection.
type LoadProjects struct {
	Projects []model.Project
}

// LoadTags replaces the tag collection.
type LoadTags struct {
	Tags []model.Tag
}

// AddTask stores a new task. A task with a parent is appended to the parent's
// subtasks; otherwise it is appended to the today (or backlog) list of the
// given work context.
type AddTask struct {
	Task            model.Task
	WorkContextID   string
	WorkContextType model.ContextType
	Backlog         bool
}

// UpsertTask stores a task as is.
type UpsertTask struct {
	Task model.Task
}

// SetTaskDone marks a task done or undone.
type SetTaskDone struct {
	TaskID string
	Done   bool
}

// AddTimeSpent logs time on a task for a worklog day.
type AddTimeSpent struct {
	TaskID   string
	Day      string
	Duration time.Duration
}

func (LoadContextState) ActionType() string         { return "[WorkContext] Load state" }
func (SetActiveContext) ActionType() string         { return "[WorkContext] Set active context" }
func (UpdateProjectAdvancedCfg) ActionType() string { return "[Project] Update advanced config" }
func (UpdateTagAdvancedCfg) ActionType() string     { return "[Tag] Update advanced config" }
func (MoveTaskToBacklog) ActionType() string        { return "[WorkContextMeta] Move task to backlog" }
func (LoadTasks) ActionType() string                { return "[Task] Load tasks" }
func (LoadProjects) ActionType() string             { return "[Project] Load projects" }
func (LoadTags) ActionType() string                 { return "[Tag] Load tags" }
func (AddTask) ActionType() string                  { return "[Task] Add task" }
func (UpsertTask) ActionType() string               { return "[Task] Upsert task" }
func (SetTaskDone) ActionType() string              { return "[Task] Set done" }
func (AddTimeSpent) ActionType() string             { return "[Task] Add time spent" }
