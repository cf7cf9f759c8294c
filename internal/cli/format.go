package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/calvinalkan/focus/internal/model"
)

// formatDuration renders d as "1h30m", "45m" or "20s". Zero is "0m".
func formatDuration(d time.Duration) string {
	if d == 0 {
		return "0m"
	}

	if d < time.Minute {
		return d.Round(time.Second).String()
	}

	d = d.Truncate(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute

	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%dm", h, m)
	}
}

type taskPrinter struct {
	o     *IO
	day   string
	done  func(a ...any) string
	id    func(a ...any) string
	muted func(a ...any) string
}

func newTaskPrinter(o *IO, day string) taskPrinter {
	return taskPrinter{
		o:     o,
		day:   day,
		done:  o.Paint(color.FgGreen),
		id:    o.Paint(color.FgCyan),
		muted: o.Paint(color.Faint),
	}
}

func (p taskPrinter) line(t model.Task, indent string) {
	box := "[ ]"
	if t.IsDone {
		box = p.done("[x]")
	}

	var meta []string

	if t.TimeEstimate > 0 {
		meta = append(meta, "est "+formatDuration(t.TimeEstimate))
	}

	if t.TimeSpent > 0 {
		meta = append(meta, "spent "+formatDuration(t.TimeSpent))
	}

	if spent, ok := t.SpentOn(p.day); ok && spent > 0 {
		meta = append(meta, "today "+formatDuration(spent))
	}

	if t.IsRepeatable() {
		meta = append(meta, "repeats")
	}

	suffix := ""
	if len(meta) > 0 {
		suffix = "  " + p.muted("("+strings.Join(meta, ", ")+")")
	}

	p.o.Printf("%s%s %s %s%s\n", indent, box, p.id(t.ID), t.Title, suffix)
}

func (p taskPrinter) tree(tasks []model.TaskWithSubTasks) {
	for _, t := range tasks {
		p.line(t.Task, "")

		for _, sub := range t.SubTasks {
			p.line(sub, "    ")
		}
	}
}

func (p taskPrinter) flat(tasks []model.Task) {
	for _, t := range tasks {
		p.line(t, "")
	}
}

// taskJSON is the --json shape of a task. Durations are milliseconds, the
// same unit as the data files.
type taskJSON struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	ParentID       string     `json:"parentId,omitempty"`
	IsDone         bool       `json:"isDone"`
	TimeEstimateMS int64      `json:"timeEstimate"`
	TimeSpentMS    int64      `json:"timeSpent"`
	RepeatCfgID    string     `json:"repeatCfgId,omitempty"`
	SubTasks       []taskJSON `json:"subTasks,omitempty"`
}

func toTaskJSON(t model.Task) taskJSON {
	return taskJSON{
		ID:             t.ID,
		Title:          t.Title,
		ParentID:       t.ParentID,
		IsDone:         t.IsDone,
		TimeEstimateMS: t.TimeEstimate.Milliseconds(),
		TimeSpentMS:    t.TimeSpent.Milliseconds(),
		RepeatCfgID:    t.RepeatCfgID,
	}
}

func treeJSON(tasks []model.TaskWithSubTasks) []taskJSON {
	out := make([]taskJSON, 0, len(tasks))

	for _, t := range tasks {
		j := toTaskJSON(t.Task)
		for _, sub := range t.SubTasks {
			j.SubTasks = append(j.SubTasks, toTaskJSON(sub))
		}

		out = append(out, j)
	}

	return out
}

func flatJSON(tasks []model.Task) []taskJSON {
	out := make([]taskJSON, 0, len(tasks))

	for _, t := range tasks {
		out = append(out, toTaskJSON(t))
	}

	return out
}

func printJSON(o *IO, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	o.Println(string(data))

	return nil
}
