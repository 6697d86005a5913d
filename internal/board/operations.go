package board

import (
	"context"
	"log/slog"
	"time"

	"github.com/kazz187/taskboard/internal/task"
)

// Create adds a task optimistically and reconciles it with the server.
func (b *Board) Create(ctx context.Context, req *task.CreateTaskRequest) (*task.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	op := b.BeginCreate(req)
	var created *task.Task
	err := b.withRetry(ctx, "create task", func() error {
		var err error
		created, err = b.api.CreateTask(ctx, req)
		return err
	})
	if err != nil {
		b.Rollback(op)
		return nil, err
	}
	b.ApplyServerTask(op, created)
	return created.Clone(), nil
}

// Update changes the supplied fields of task id.
func (b *Board) Update(ctx context.Context, id string, req *task.UpdateTaskRequest) (*task.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	op, err := b.BeginUpdate(id, req.Patch())
	if err != nil {
		return nil, err
	}
	var updated *task.Task
	err = b.withRetry(ctx, "update task", func() error {
		var err error
		updated, err = b.api.UpdateTask(ctx, id, req)
		return err
	})
	if err != nil {
		b.Rollback(op)
		return nil, err
	}
	b.ApplyServerTask(op, updated)
	return updated.Clone(), nil
}

// Transition moves task id to status.
func (b *Board) Transition(ctx context.Context, id string, status task.Status) (*task.Task, error) {
	req := &task.TransitionRequest{Status: status}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	op, err := b.BeginUpdate(id, &task.Patch{Status: &status})
	if err != nil {
		return nil, err
	}
	var moved *task.Task
	err = b.withRetry(ctx, "move task", func() error {
		var err error
		moved, err = b.api.TransitionStatus(ctx, id, req)
		return err
	})
	if err != nil {
		b.Rollback(op)
		return nil, err
	}
	b.ApplyServerTask(op, moved)
	return moved.Clone(), nil
}

// Delete removes task id. When the server call fails the task stays off the
// board and the returned Op can be passed to Restore.
func (b *Board) Delete(ctx context.Context, id string) (*Op, error) {
	op, err := b.BeginDelete(id)
	if err != nil {
		return nil, err
	}
	err = b.withRetry(ctx, "delete task", func() error {
		return b.api.DeleteTask(ctx, id)
	})
	if err != nil {
		return op, err
	}
	b.ApplyServerTask(op, nil)
	return op, nil
}

func (b *Board) withRetry(ctx context.Context, name string, call func() error) error {
	wait := b.backoff
	for attempt := 1; ; attempt++ {
		err := call()
		if err == nil || attempt >= b.attempts || !task.Retryable(err) {
			return err
		}
		slog.WarnContext(ctx, "retrying after store failure", "op", name, "attempt", attempt, "wait", wait, "error", err)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(wait):
		}
		wait *= 2
	}
}
