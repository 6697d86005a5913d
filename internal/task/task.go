package task

import (
	"fmt"
	"strings"
	"time"
)

// Task is the unit of work shown on the board.
type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	AssignedTo  string    `json:"assignedTo,omitempty" yaml:"assigned_to,omitempty"`
	Status      Status    `json:"status" yaml:"status"`
	CreatedAt   time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updated_at"`
}

// Status is a board column. The wire values are the labels shown to users.
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

// Statuses returns every status in board order.
func Statuses() []Status {
	return []Status{StatusToDo, StatusInProgress, StatusDone}
}

// Valid reports whether s is one of the board columns.
func (s Status) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus accepts only the exact wire values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", newInvalidStatusError(s)
	}
	return st, nil
}

// Patch lists the fields to change on a task. Nil fields are left untouched.
type Patch struct {
	Title       *string
	Description *string
	AssignedTo  *string
	Status      *Status
}

// Empty reports whether p changes nothing.
func (p *Patch) Empty() bool {
	return p == nil || (p.Title == nil && p.Description == nil && p.AssignedTo == nil && p.Status == nil)
}

// Validate rejects blank titles and unknown statuses among the set fields.
func (p *Patch) Validate() error {
	if p == nil {
		return nil
	}
	if p.Title != nil && isBlank(*p.Title) {
		return newValidationError("title must not be empty")
	}
	if p.Status != nil && !p.Status.Valid() {
		return newInvalidStatusError(string(*p.Status))
	}
	return nil
}

// Apply merges p into t. Timestamps are the store's business.
func (t *Task) Apply(p *Patch) {
	if p == nil {
		return
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.AssignedTo != nil {
		t.AssignedTo = *p.AssignedTo
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
}

// Validate checks the invariants every persisted task satisfies.
func (t *Task) Validate() error {
	if isBlank(t.Title) {
		return newValidationError("title is required")
	}
	if !t.Status.Valid() {
		return newInvalidStatusError(string(t.Status))
	}
	return nil
}

// Clone returns a copy of t. A nil task clones to nil.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func (t *Task) String() string {
	return fmt.Sprintf("%s %q [%s]", t.ID, t.Title, t.Status)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
