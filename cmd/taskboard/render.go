package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/kazz187/taskboard/internal/board"
	"github.com/kazz187/taskboard/internal/task"
	palette "github.com/kazz187/taskboard/pkg/color"
)

var statusColors = map[task.Status]*color.Color{
	task.StatusToDo:       color.New(color.FgYellow, color.Bold),
	task.StatusInProgress: color.New(color.FgCyan, color.Bold),
	task.StatusDone:       color.New(color.FgGreen, color.Bold),
}

func statusColor(s task.Status) *color.Color {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return color.New(color.Reset)
}

func renderColumns(w io.Writer, cols []board.Column) {
	for i, col := range cols {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", statusColor(col.Status).Sprint(col.Status), len(col.Entries))
		if len(col.Entries) == 0 {
			fmt.Fprintln(w, color.New(color.Faint).Sprint("  (empty)"))
			continue
		}
		for _, e := range col.Entries {
			fmt.Fprint(w, "  ")
			renderEntry(w, e)
		}
	}
}

func renderEntry(w io.Writer, e board.Entry) {
	renderTask(w, e.Task, e.Pending)
}

func renderTask(w io.Writer, t *task.Task, pending bool) {
	id := t.ID
	if pending {
		id = "(pending)"
	}
	line := fmt.Sprintf("%s  %s  %s", color.New(color.Faint).Sprint(id), statusColor(t.Status).Sprintf("[%s]", t.Status), t.Title)
	if t.AssignedTo != "" {
		line += " " + palette.Label(t.AssignedTo)
	}
	fmt.Fprintln(w, line)
	if t.Description != "" {
		fmt.Fprintf(w, "      %s\n", t.Description)
	}
}
