package model

import (
	"time"
)

// Task is a unit of work. ParentID and RepeatCfgID are empty when unset.
type Task struct {
	ID             string
	Title          string
	ParentID       string
	SubTaskIDs     []string
	IsDone         bool
	TimeSpentOnDay map[string]time.Duration
	TimeEstimate   time.Duration
	TimeSpent      time.Duration
	RepeatCfgID    string
}

// HasParent reports whether t is a subtask.
func (t Task) HasParent() bool {
	return t.ParentID != ""
}

// IsRepeatable reports whether t is an instance of a repeat config.
func (t Task) IsRepeatable() bool {
	return t.RepeatCfgID != ""
}

// SpentOn returns the time logged for day and whether day has an entry at all.
func (t Task) SpentOn(day string) (time.Duration, bool) {
	d, ok := t.TimeSpentOnDay[day]

	return d, ok
}

// TaskWithSubTasks is a task plus its materialized subtasks.
type TaskWithSubTasks struct {
	Task

	SubTasks []Task
}

// worklogDayLayout is the key format of Task.TimeSpentOnDay.
const worklogDayLayout = "2006-01-02"

// WorklogDay returns the day key for t in t's location.
func WorklogDay(t time.Time) string {
	return t.Format(worklogDayLayout)
}

// ParseWorklogDay validates a day key.
func ParseWorklogDay(s string) (time.Time, error) {
	return time.Parse(worklogDayLayout, s)
}
