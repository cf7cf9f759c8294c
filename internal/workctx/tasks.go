package workctx

import (
	"slices"

	"github.com/calvinalkan/focus/internal/model"
	"github.com/calvinalkan/focus/pkg/graph"
)

// TaskViews derives the task lists of the active context.
type TaskViews struct {
	todayIDs   *graph.Node[[]string]
	backlogIDs *graph.Node[[]string]

	today   *graph.Node[[]model.TaskWithSubTasks]
	backlog *graph.Node[[]model.TaskWithSubTasks]

	split     *graph.Node[doneSplit]
	done      *graph.Node[[]model.TaskWithSubTasks]
	undone    *graph.Node[[]model.TaskWithSubTasks]
	startable *graph.Node[[]model.Task]
}

type doneSplit struct {
	done   []model.TaskWithSubTasks
	undone []model.TaskWithSubTasks
}

// NewTaskViews hangs the task views off active. lookup materializes id lists;
// tasks is the full collection used for startable selection.
func NewTaskViews(
	sched *graph.Scheduler,
	active graph.Readable[model.WorkContext],
	tasks graph.Readable[model.Collection[model.Task]],
	lookup TaskLookup,
) *TaskViews {
	v := &TaskViews{}

	v.todayIDs = graph.Derive1(sched, "todaysTaskIds", active, func(c model.WorkContext) ([]string, error) {
		return c.TaskIDs, nil
	}, graph.SliceEqual[string]())

	v.backlogIDs = graph.Derive1(sched, "backlogTaskIds", active, func(c model.WorkContext) ([]string, error) {
		if c.BacklogTaskIDs == nil {
			return []string{}, nil
		}

		return c.BacklogTaskIDs, nil
	}, graph.SliceEqual[string]())

	v.today = graph.Switch(sched, "todaysTasks", v.todayIDs, lookup.TasksByIDs)
	v.backlog = graph.Switch(sched, "backlogTasks", v.backlogIDs, lookup.TasksByIDs)

	v.split = graph.Derive1(sched, "doneSplit", v.today, func(tasks []model.TaskWithSubTasks) (doneSplit, error) {
		return splitDone(tasks), nil
	})

	v.done = graph.Derive1(sched, "doneTasks", v.split, func(s doneSplit) ([]model.TaskWithSubTasks, error) {
		return s.done, nil
	})

	v.undone = graph.Derive1(sched, "undoneTasks", v.split, func(s doneSplit) ([]model.TaskWithSubTasks, error) {
		return s.undone, nil
	})

	v.startable = graph.Derive2(sched, "startableTasks", active, tasks,
		func(c model.WorkContext, all model.Collection[model.Task]) ([]model.Task, error) {
			return StartableTasks(c.TaskIDs, all), nil
		})

	return v
}

// TodayIDs emits the today list of the active context when its contents
// change.
func (v *TaskViews) TodayIDs() graph.Readable[[]string] { return v.todayIDs }

// BacklogIDs emits the backlog list of the active context, empty for tags.
func (v *TaskViews) BacklogIDs() graph.Readable[[]string] { return v.backlogIDs }

// TodayTasks emits the materialized today list.
func (v *TaskViews) TodayTasks() *graph.Node[[]model.TaskWithSubTasks] { return v.today }

// BacklogTasks emits the materialized backlog list.
func (v *TaskViews) BacklogTasks() *graph.Node[[]model.TaskWithSubTasks] { return v.backlog }

// DoneTasks emits the done part of the today list.
func (v *TaskViews) DoneTasks() graph.Readable[[]model.TaskWithSubTasks] { return v.done }

// UndoneTasks emits the undone part of the today list.
func (v *TaskViews) UndoneTasks() graph.Readable[[]model.TaskWithSubTasks] { return v.undone }

// StartableTasks emits the undone leaf tasks that can be worked on now.
func (v *TaskViews) StartableTasks() graph.Readable[[]model.Task] { return v.startable }

func splitDone(tasks []model.TaskWithSubTasks) doneSplit {
	s := doneSplit{
		done:   []model.TaskWithSubTasks{},
		undone: []model.TaskWithSubTasks{},
	}

	for _, t := range tasks {
		if t.IsDone {
			s.done = append(s.done, t)
		} else {
			s.undone = append(s.undone, t)
		}
	}

	return s
}

// StartableTasks selects, in collection order, every undone task that is
// either a subtask of a today task, or a today task without subtasks.
func StartableTasks(todayIDs []string, all model.Collection[model.Task]) []model.Task {
	out := []model.Task{}

	for _, id := range all.IDs {
		t, ok := all.Get(id)
		if !ok || t.IsDone {
			continue
		}

		if t.HasParent() {
			if slices.Contains(todayIDs, t.ParentID) {
				out = append(out, t)
			}

			continue
		}

		if len(t.SubTaskIDs) == 0 && slices.Contains(todayIDs, t.ID) {
			out = append(out, t)
		}
	}

	return out
}
