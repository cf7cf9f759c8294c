package workctx

import (
	"sync"

	"github.com/calvinalkan/focus/internal/model"
	"github.com/calvinalkan/focus/pkg/graph"
)

// Flattener linearizes the today and backlog trees of the active context.
type Flattener struct {
	sched *graph.Scheduler

	all        *graph.Node[[]model.TaskWithSubTasks]
	repeatable *graph.Node[[]model.Task]

	mu       sync.Mutex
	workedOn map[string]*graph.Node[[]model.Task]
	combined map[string]*graph.Node[[]model.Task]
}

// NewFlattener joins today and backlog.
func NewFlattener(sched *graph.Scheduler, today, backlog graph.Readable[[]model.TaskWithSubTasks]) *Flattener {
	f := &Flattener{
		sched:    sched,
		workedOn: make(map[string]*graph.Node[[]model.Task]),
		combined: make(map[string]*graph.Node[[]model.Task]),
	}

	f.all = graph.Derive2(sched, "allNonArchiveTasks", today, backlog,
		func(t, b []model.TaskWithSubTasks) ([]model.TaskWithSubTasks, error) {
			out := make([]model.TaskWithSubTasks, 0, len(t)+len(b))
			out = append(out, t...)

			return append(out, b...), nil
		})

	f.repeatable = graph.Derive1(sched, "allRepeatableTasksFlat", f.all,
		func(tasks []model.TaskWithSubTasks) ([]model.Task, error) {
			return filterTasks(Flatten(tasks), model.Task.IsRepeatable), nil
		})

	return f
}

// AllNonArchiveTasks emits today followed by backlog.
func (f *Flattener) AllNonArchiveTasks() graph.Readable[[]model.TaskWithSubTasks] { return f.all }

// AllRepeatableTasksFlat emits every flattened task with a repeat config.
func (f *Flattener) AllRepeatableTasksFlat() graph.Readable[[]model.Task] { return f.repeatable }

// TasksWorkedOnOrDoneFlat emits flattened tasks that are done or have time
// logged on day.
func (f *Flattener) TasksWorkedOnOrDoneFlat(day string) graph.Readable[[]model.Task] {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.workedOnLocked(day)
}

// TasksWorkedOnOrDoneOrRepeatableFlat emits the repeatable tasks followed by
// the non-repeatable tasks worked on or done on day. No id appears twice.
func (f *Flattener) TasksWorkedOnOrDoneOrRepeatableFlat(day string) graph.Readable[[]model.Task] {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n, ok := f.combined[day]; ok {
		return n
	}

	n := graph.Derive2(f.sched, "tasksWorkedOnOrDoneOrRepeatableFlat("+day+")", f.repeatable, f.workedOnLocked(day),
		func(repeatable, worked []model.Task) ([]model.Task, error) {
			out := make([]model.Task, 0, len(repeatable)+len(worked))
			out = append(out, repeatable...)

			for _, t := range worked {
				if !t.IsRepeatable() {
					out = append(out, t)
				}
			}

			return out, nil
		})
	f.combined[day] = n

	return n
}

func (f *Flattener) workedOnLocked(day string) *graph.Node[[]model.Task] {
	if n, ok := f.workedOn[day]; ok {
		return n
	}

	n := graph.Derive1(f.sched, "tasksWorkedOnOrDoneFlat("+day+")", f.all,
		func(tasks []model.TaskWithSubTasks) ([]model.Task, error) {
			return filterTasks(Flatten(tasks), func(t model.Task) bool {
				spent, _ := t.SpentOn(day)

				return t.IsDone || spent > 0
			}), nil
		})
	f.workedOn[day] = n

	return n
}

// Flatten lists each task followed by its subtasks. A task reachable twice,
// for example a subtask that is also listed on its own, is kept at its first
// position.
func Flatten(tasks []model.TaskWithSubTasks) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	seen := make(map[string]struct{}, len(tasks))

	add := func(t model.Task) {
		if _, dup := seen[t.ID]; dup {
			return
		}

		seen[t.ID] = struct{}{}
		out = append(out, t)
	}

	for _, t := range tasks {
		add(t.Task)

		for _, sub := range t.SubTasks {
			add(sub)
		}
	}

	return out
}

func filterTasks(tasks []model.Task, keep func(model.Task) bool) []model.Task {
	out := []model.Task{}

	for _, t := range tasks {
		if keep(t) {
			out = append(out, t)
		}
	}

	return out
}
