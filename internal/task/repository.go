package task

import "context"

// Repository is the task store. Implementations assign IDs and timestamps,
// reject tasks that break the invariants checked by Task.Validate and
// serialize writes to the same task.
type Repository interface {
	// Create fills in t.ID, t.CreatedAt and t.UpdatedAt and persists t.
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	// List returns tasks in insertion order. An empty status lists all tasks.
	List(ctx context.Context, status Status) ([]*Task, error)
	// Replace merges p into the stored task, refreshes UpdatedAt and returns the result.
	Replace(ctx context.Context, id string, p *Patch) (*Task, error)
	Delete(ctx context.Context, id string) error
}

// UserDirectory resolves assignee references.
type UserDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}
