package repositoryimpl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"gopkg.in/yaml.v3"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

const tasksPrefix = "tasks"

var _ task.Repository = (*YAMLRepository)(nil)

// YAMLRepository stores one YAML document per task. IDs are ULIDs, so the
// lexical order of the stored paths is the insertion order.
type YAMLRepository struct {
	storage storage.Storage
	now     func() time.Time
	// mu serializes every write so read-modify-write sequences in Replace
	// cannot interleave with each other or with Delete.
	mu sync.Mutex
}

type Option func(*YAMLRepository)

// WithClock overrides the clock used for CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(r *YAMLRepository) {
		r.now = now
	}
}

func NewYAMLRepository(s storage.Storage, opts ...Option) *YAMLRepository {
	r := &YAMLRepository{
		storage: s,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func path(id string) string {
	return fmt.Sprintf("%s/%s.yaml", tasksPrefix, id)
}

// validID rejects anything that is not a ULID, which also keeps ids from
// escaping the tasks prefix.
func validID(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}

func notFound() error {
	return cerr.NewReasonError(cerr.NotFound, cerr.ReasonNotFound, "task not found", nil)
}

func (r *YAMLRepository) timestamp() time.Time {
	return r.now().Round(0).UTC()
}

func (r *YAMLRepository) Create(ctx context.Context, t *task.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := ulid.Make().String()
	exists, err := r.storage.Exists(ctx, path(id))
	if err != nil {
		return cerr.WrapStorageWriteError("task", err)
	}
	if exists {
		return cerr.NewReasonError(cerr.AlreadyExists, cerr.ReasonAlreadyExists, "task already exists", nil)
	}

	now := r.timestamp()
	stored := t.Clone()
	stored.ID = id
	stored.CreatedAt = now
	stored.UpdatedAt = now
	if err := r.write(ctx, stored); err != nil {
		return err
	}
	*t = *stored
	return nil
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	if !validID(id) {
		return nil, notFound()
	}
	data, err := r.storage.Read(ctx, path(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("task", err)
	}
	var t task.Task
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, cerr.NewMarshalError("task", err)
	}
	return &t, nil
}

func (r *YAMLRepository) List(ctx context.Context, status task.Status) ([]*task.Task, error) {
	paths, err := r.storage.List(ctx, tasksPrefix)
	if err != nil {
		return nil, cerr.WrapStorageReadError("tasks", err)
	}

	sort.Strings(paths)

	tasks := make([]*task.Task, 0, len(paths))
	for _, p := range paths {
		data, err := r.storage.Read(ctx, p)
		if err != nil {
			// Deleted between List and Read.
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			return nil, cerr.WrapStorageReadError("tasks", err)
		}
		var t task.Task
		if err := yaml.Unmarshal(data, &t); err != nil {
			slog.WarnContext(ctx, "skipping unreadable task record", "path", p, "error", err)
			continue
		}
		if status != "" && t.Status != status {
			continue
		}
		tasks = append(tasks, &t)
	}
	return tasks, nil
}

func (r *YAMLRepository) Replace(ctx context.Context, id string, p *task.Patch) (*task.Task, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Apply(p)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.UpdatedAt = r.timestamp()
	if err := r.write(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *YAMLRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return notFound()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.storage.Delete(ctx, path(id)); err != nil {
		return cerr.WrapStorageDeleteError("task", err)
	}
	return nil
}

func (r *YAMLRepository) write(ctx context.Context, t *task.Task) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return cerr.NewMarshalError("task", err)
	}
	if err := r.storage.Write(ctx, path(t.ID), data); err != nil {
		return cerr.WrapStorageWriteError("task", err)
	}
	return nil
}
