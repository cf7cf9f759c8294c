package testutil

import (
	"github.com/calvinalkan/focus/internal/model"
	"github.com/calvinalkan/focus/internal/store"
)

// StateBuilder builds a [store.State] without spelling out collections.
// Entities keep the order they were added in.
type StateBuilder struct {
	context  model.ContextState
	tasks    []model.Task
	projects []model.Project
	tags     []model.Tag
}

// NewState returns an empty builder. The context is left unset so the engine
// has no active pair until one is dispatched.
func NewState() *StateBuilder {
	return &StateBuilder{}
}

// Tasks appends tasks.
func (b *StateBuilder) Tasks(tasks ...model.Task) *StateBuilder {
	b.tasks = append(b.tasks, tasks...)

	return b
}

// Projects appends projects.
func (b *StateBuilder) Projects(projects ...model.Project) *StateBuilder {
	b.projects = append(b.projects, projects...)

	return b
}

// Tags appends tags.
func (b *StateBuilder) Tags(tags ...model.Tag) *StateBuilder {
	b.tags = append(b.tags, tags...)

	return b
}

// Active sets the active context.
func (b *StateBuilder) Active(id string, contextType model.ContextType) *StateBuilder {
	b.context = model.ContextState{ActiveID: id, ActiveType: contextType}

	return b
}

// Build returns the state.
func (b *StateBuilder) Build() store.State {
	return store.State{
		Context:  b.context,
		Tasks:    model.NewCollection(b.tasks, func(t model.Task) string { return t.ID }),
		Projects: model.NewCollection(b.projects, func(p model.Project) string { return p.ID }),
		Tags:     model.NewCollection(b.tags, func(t model.Tag) string { return t.ID }),
	}
}

// MyDay returns the built-in tag listing taskIDs.
func MyDay(taskIDs ...string) model.Tag {
	if taskIDs == nil {
		taskIDs = []string{}
	}

	return model.Tag{ID: model.MyDayTagID, Title: "My Day", Icon: "wb_sunny", TaskIDs: taskIDs}
}
