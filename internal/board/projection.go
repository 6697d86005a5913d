package board

import "github.com/kazz187/taskboard/internal/task"

// Column is one status column of the board.
type Column struct {
	Status  task.Status
	Entries []Entry
}

// Entries returns a copy of every row in board order.
func (b *Board) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, 0, len(b.entries))
	for _, e := range b.entries {
		out = append(out, e.view())
	}
	return out
}

// Tasks returns copies of every task on the board, pending ones included.
func (b *Board) Tasks() []*task.Task {
	entries := b.Entries()
	out := make([]*task.Task, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Task)
	}
	return out
}

// Project returns the rows in status. An empty status selects every row.
func (b *Board) Project(status task.Status) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []Entry{}
	for _, e := range b.entries {
		if status == "" || e.task.Status == status {
			out = append(out, e.view())
		}
	}
	return out
}

// Columns groups the rows by status in board order.
func (b *Board) Columns() []Column {
	statuses := task.Statuses()
	cols := make([]Column, 0, len(statuses))
	for _, st := range statuses {
		cols = append(cols, Column{Status: st, Entries: b.Project(st)})
	}
	return cols
}
