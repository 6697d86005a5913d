// Package board keeps a local, renderable copy of the task collection and
// reconciles it with the server.
//
// Every mutation runs in two phases. Begin* applies a tentative local effect
// and returns an *Op. Once the server answers, ApplyServerTask replaces the
// tentative state with the canonical task, or Rollback undoes it. The local
// copy is advisory; whatever the server returns wins.
package board

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
)

// API is the subset of the task surface the board drives.
// *client.Client implements it.
type API interface {
	ListTasks(ctx context.Context, status task.Status) ([]*task.Task, error)
	CreateTask(ctx context.Context, req *task.CreateTaskRequest) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, req *task.UpdateTaskRequest) (*task.Task, error)
	TransitionStatus(ctx context.Context, id string, req *task.TransitionRequest) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Entry is a read-only view of one row on the board. Key is the task id, or
// the correlation id of a create that has not been confirmed yet.
type Entry struct {
	Key     string
	Task    *task.Task
	Pending bool
}

// entry keeps the last task the server confirmed and the updates still in
// flight for it. task is base with every pending patch applied.
type entry struct {
	key         string
	base        *task.Task
	placeholder bool
	patches     []pendingPatch
	task        *task.Task
}

type pendingPatch struct {
	revision uint64
	patch    *task.Patch
}

func confirmed(t *task.Task) *entry {
	return &entry{key: t.ID, base: t.Clone(), task: t.Clone()}
}

func (e *entry) pending() bool {
	return e.placeholder || len(e.patches) > 0
}

func (e *entry) rebuild() {
	t := e.base.Clone()
	for _, p := range e.patches {
		t.Apply(p.patch)
	}
	e.task = t
}

func (e *entry) dropPatch(revision uint64) bool {
	i := slices.IndexFunc(e.patches, func(p pendingPatch) bool { return p.revision == revision })
	if i < 0 {
		return false
	}
	e.patches = slices.Delete(e.patches, i, i+1)
	return true
}

func (e *entry) view() Entry {
	return Entry{Key: e.key, Task: e.task.Clone(), Pending: e.pending()}
}

// Board is the client-side copy of the task collection.
type Board struct {
	api API

	attempts int
	backoff  time.Duration

	mu       sync.Mutex
	entries  []*entry
	revision uint64
	// deleted holds ids whose deletion the server confirmed. Late update
	// responses for them are dropped.
	deleted map[string]struct{}
}

type Option func(*Board)

// WithRetry retries calls that failed with a store failure up to attempts
// times in total, doubling the wait from base after each failure. Other
// failures are never retried.
func WithRetry(attempts int, base time.Duration) Option {
	return func(b *Board) {
		if attempts < 1 {
			attempts = 1
		}
		b.attempts = attempts
		b.backoff = base
	}
}

func New(api API, opts ...Option) *Board {
	b := &Board{
		api:      api,
		attempts: 1,
		deleted:  map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func notInBoard(id string) error {
	return cerr.NewReasonError(cerr.NotFound, cerr.ReasonNotFound, fmt.Sprintf("task %s is not on the board", id), nil)
}

// OpKind names the mutation an Op tracks.
type OpKind int

const (
	OpCreate OpKind = iota + 1
	OpUpdate
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Op is an in-flight mutation started by one of the Begin methods.
type Op struct {
	Kind OpKind
	// Key is the correlation id for creates and the task id otherwise.
	Key string

	revision uint64
	before   *task.Task
	index    int
}

func (b *Board) nextRevision() uint64 {
	b.revision++
	return b.revision
}

func (b *Board) indexOf(key string) int {
	return slices.IndexFunc(b.entries, func(e *entry) bool { return e.key == key })
}

// Load replaces the whole local collection with the server's.
func (b *Board) Load(ctx context.Context) error {
	var tasks []*task.Task
	err := b.withRetry(ctx, "list tasks", func() error {
		var err error
		tasks, err = b.api.ListTasks(ctx, "")
		return err
	})
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	entries := make([]*entry, 0, len(tasks))
	for _, t := range tasks {
		if _, gone := b.deleted[t.ID]; gone {
			continue
		}
		entries = append(entries, confirmed(t))
	}
	b.entries = entries
	return nil
}

// BeginCreate inserts a pending placeholder for req and returns its Op. The
// placeholder has no id until the server assigns one.
func (b *Board) BeginCreate(req *task.CreateTaskRequest) *Op {
	status := req.Status
	if status == "" {
		status = task.StatusToDo
	}
	placeholder := &task.Task{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Status:      status,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	e := &entry{
		key:         uuid.NewString(),
		base:        placeholder,
		placeholder: true,
		task:        placeholder.Clone(),
	}
	b.entries = append(b.entries, e)
	return &Op{Kind: OpCreate, Key: e.key, revision: b.nextRevision()}
}

// BeginUpdate applies p to the local copy of task id. The confirmed task is
// kept aside until the server answers.
func (b *Board) BeginUpdate(id string, p *task.Patch) (*Op, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 {
		return nil, notInBoard(id)
	}
	e := b.entries[i]
	patch := *p
	rev := b.nextRevision()
	e.patches = append(e.patches, pendingPatch{revision: rev, patch: &patch})
	e.rebuild()
	return &Op{Kind: OpUpdate, Key: id, revision: rev}, nil
}

// BeginDelete removes task id from the local collection. The removed task is
// kept on the Op so the caller can Restore it.
func (b *Board) BeginDelete(id string) (*Op, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(id)
	if i < 0 {
		return nil, notInBoard(id)
	}
	removed := b.entries[i]
	b.entries = slices.Delete(b.entries, i, i+1)
	return &Op{Kind: OpDelete, Key: id, revision: b.nextRevision(), before: removed.base.Clone(), index: i}, nil
}

// ApplyServerTask reconciles op with the canonical task the server returned.
// t is ignored for deletes. An update answer for a task that is no longer on
// the board is dropped.
func (b *Board) ApplyServerTask(op *Op, t *task.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if op.Kind == OpDelete {
		if i := b.indexOf(op.Key); i >= 0 {
			b.entries = slices.Delete(b.entries, i, i+1)
		}
		b.deleted[op.Key] = struct{}{}
		return
	}
	if t == nil {
		return
	}

	existing := b.indexOf(t.ID)
	if op.Kind == OpUpdate {
		if existing < 0 {
			return
		}
		e := b.entries[existing]
		e.dropPatch(op.revision)
		if !t.UpdatedAt.Before(e.base.UpdatedAt) {
			e.base = t.Clone()
		}
		e.rebuild()
		return
	}

	if _, gone := b.deleted[t.ID]; gone {
		if i := b.indexOf(op.Key); i >= 0 {
			b.entries = slices.Delete(b.entries, i, i+1)
		}
		return
	}
	canonical := confirmed(t)
	placeholder := b.indexOf(op.Key)
	switch {
	case placeholder >= 0 && existing >= 0:
		// A Load already brought the task in.
		b.entries[existing] = canonical
		b.entries = slices.Delete(b.entries, placeholder, placeholder+1)
	case placeholder >= 0:
		b.entries[placeholder] = canonical
	case existing >= 0:
		b.entries[existing] = canonical
	default:
		b.entries = append(b.entries, canonical)
	}
}

// Rollback undoes the tentative effect of a failed op and reports whether
// the local collection changed. A failed update is dropped from the entry,
// which is rebuilt from the confirmed task and the updates still in flight.
// Deletes are never undone here, see Restore.
func (b *Board) Rollback(op *Op) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch op.Kind {
	case OpCreate:
		if i := b.indexOf(op.Key); i >= 0 {
			b.entries = slices.Delete(b.entries, i, i+1)
			return true
		}
	case OpUpdate:
		i := b.indexOf(op.Key)
		if i < 0 || !b.entries[i].dropPatch(op.revision) {
			return false
		}
		b.entries[i].rebuild()
		return true
	}
	return false
}

// Restore puts back the task removed by a delete op, at its last confirmed
// value and old position. It does nothing if the task is already on the
// board again or the server confirmed the deletion.
func (b *Board) Restore(op *Op) bool {
	if op.Kind != OpDelete || op.before == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, gone := b.deleted[op.Key]; gone || b.indexOf(op.Key) >= 0 {
		return false
	}
	i := min(op.index, len(b.entries))
	e := &entry{key: op.Key, base: op.before.Clone(), placeholder: op.before.ID == ""}
	e.rebuild()
	b.entries = slices.Insert(b.entries, i, e)
	return true
}
