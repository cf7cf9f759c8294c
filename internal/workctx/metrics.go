package workctx

import (
	"sync"
	"time"

	"github.com/calvinalkan/focus/internal/model"
	"github.com/calvinalkan/focus/pkg/graph"
)

// Metrics sums time over the today list. Per-day views are created on first
// use and shared afterwards.
type Metrics struct {
	sched *graph.Scheduler
	today graph.Readable[[]model.TaskWithSubTasks]

	hasTasksToWorkOn  *graph.Node[bool]
	estimateRemaining *graph.Node[time.Duration]

	mu        sync.Mutex
	worked    map[string]*graph.Node[time.Duration]
	remaining map[string]*graph.Node[time.Duration]
}

// NewMetrics creates the metric views below today.
func NewMetrics(sched *graph.Scheduler, today graph.Readable[[]model.TaskWithSubTasks]) *Metrics {
	m := &Metrics{
		sched:     sched,
		today:     today,
		worked:    make(map[string]*graph.Node[time.Duration]),
		remaining: make(map[string]*graph.Node[time.Duration]),
	}

	m.hasTasksToWorkOn = graph.Derive1(sched, "isHasTasksToWorkOn", today,
		func(tasks []model.TaskWithSubTasks) (bool, error) {
			return HasTasksToWorkOn(tasks), nil
		}, graph.Comparable[bool]())

	m.estimateRemaining = graph.Derive1(sched, "estimateRemainingToday", today,
		func(tasks []model.TaskWithSubTasks) (time.Duration, error) {
			return EstimateRemaining(tasks), nil
		}, graph.Comparable[time.Duration]())

	return m
}

// TimeWorkedForDay emits the time logged on day across the today list.
func (m *Metrics) TimeWorkedForDay(day string) graph.Readable[time.Duration] {
	return m.perDay(m.worked, "timeWorkedForDay", day, TimeWorked)
}

// TimeEstimateRemainingForDay emits the remaining estimate attributed to day.
// Tasks without an entry for day do not count.
func (m *Metrics) TimeEstimateRemainingForDay(day string) graph.Readable[time.Duration] {
	return m.perDay(m.remaining, "timeEstimateRemainingForDay", day, TimeEstimateRemaining)
}

// IsHasTasksToWorkOn emits whether some today task or subtask is still open.
func (m *Metrics) IsHasTasksToWorkOn() graph.Readable[bool] { return m.hasTasksToWorkOn }

// EstimateRemainingToday emits the open estimate of the today list.
func (m *Metrics) EstimateRemainingToday() graph.Readable[time.Duration] { return m.estimateRemaining }

func (m *Metrics) perDay(
	cache map[string]*graph.Node[time.Duration],
	name, day string,
	sum func([]model.TaskWithSubTasks, string) time.Duration,
) graph.Readable[time.Duration] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n, ok := cache[day]; ok {
		return n
	}

	n := graph.Derive1(m.sched, name+"("+day+")", m.today, func(tasks []model.TaskWithSubTasks) (time.Duration, error) {
		return sum(tasks, day), nil
	}, graph.Comparable[time.Duration]())
	cache[day] = n

	return n
}

// TimeWorked sums the time logged on day. Missing entries count as zero.
func TimeWorked(tasks []model.TaskWithSubTasks, day string) time.Duration {
	var total time.Duration

	for _, t := range tasks {
		spent, _ := t.SpentOn(day)
		total += spent
	}

	return total
}

// TimeEstimateRemaining sums max(0, estimate + spent on day - spent) over the
// tasks that have an entry for day.
func TimeEstimateRemaining(tasks []model.TaskWithSubTasks, day string) time.Duration {
	var total time.Duration

	for _, t := range tasks {
		spentOnDay, ok := t.SpentOn(day)
		if !ok {
			continue
		}

		total += max(0, t.TimeEstimate+spentOnDay-t.TimeSpent)
	}

	return total
}

// HasTasksToWorkOn reports whether a task is undone and has no subtasks, or
// has an undone subtask.
func HasTasksToWorkOn(tasks []model.TaskWithSubTasks) bool {
	for _, t := range tasks {
		if len(t.SubTasks) == 0 {
			if !t.IsDone {
				return true
			}

			continue
		}

		for _, sub := range t.SubTasks {
			if !sub.IsDone {
				return true
			}
		}
	}

	return false
}

// EstimateRemaining sums the open estimate of undone tasks. Parents count
// through their undone subtasks.
func EstimateRemaining(tasks []model.TaskWithSubTasks) time.Duration {
	var total time.Duration

	for _, t := range tasks {
		if t.IsDone {
			continue
		}

		if len(t.SubTasks) == 0 {
			total += max(0, t.TimeEstimate-t.TimeSpent)

			continue
		}

		for _, sub := range t.SubTasks {
			if !sub.IsDone {
				total += max(0, sub.TimeEstimate-sub.TimeSpent)
			}
		}
	}

	return total
}
