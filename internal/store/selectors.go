package store

import (
	"fmt"
	"slices"

	"github.com/calvinalkan/focus/internal/model"
	"github.com/calvinalkan/focus/pkg/graph"
)

// TasksByIDs routes to the task collection and materializes ids into tasks
// with their subtasks. ids must be a list; nil is rejected.
func (s *Store) TasksByIDs(ids []string) (graph.Route[[]model.TaskWithSubTasks], error) {
	if ids == nil {
		return graph.Empty[[]model.TaskWithSubTasks](),
			fmt.Errorf("tasks by ids: %w: ids must be a list, got nil", ErrInvalidArgument)
	}

	ids = slices.Clone(ids)

	return graph.Select(s.Tasks(), func(tasks model.Collection[model.Task]) ([]model.TaskWithSubTasks, error) {
		return TasksWithSubTasksByIDs(tasks, ids), nil
	}), nil
}

// TagByID routes to the tag collection. The route has no value while the tag
// is missing.
func (s *Store) TagByID(id string) graph.Route[model.Tag] {
	return graph.Select(s.Tags(), func(tags model.Collection[model.Tag]) (model.Tag, error) {
		tag, ok := tags.Get(id)
		if !ok {
			return model.Tag{}, graph.ErrSkip
		}

		return tag, nil
	})
}

// ProjectByID routes to the project collection. The route has no value while
// the project is missing.
func (s *Store) ProjectByID(id string) graph.Route[model.Project] {
	return graph.Select(s.Projects(), func(projects model.Collection[model.Project]) (model.Project, error) {
		project, ok := projects.Get(id)
		if !ok {
			return model.Project{}, graph.ErrSkip
		}

		return project, nil
	})
}

// TasksWithSubTasksByIDs materializes ids in order. Ids without a task, and
// subtask ids without a task, are left out.
func TasksWithSubTasksByIDs(tasks model.Collection[model.Task], ids []string) []model.TaskWithSubTasks {
	out := make([]model.TaskWithSubTasks, 0, len(ids))

	for _, id := range ids {
		task, ok := tasks.Get(id)
		if !ok {
			continue
		}

		subTasks := make([]model.Task, 0, len(task.SubTaskIDs))

		for _, subID := range task.SubTaskIDs {
			if sub, ok := tasks.Get(subID); ok {
				subTasks = append(subTasks, sub)
			}
		}

		out = append(out, model.TaskWithSubTasks{Task: task, SubTasks: subTasks})
	}

	return out
}
