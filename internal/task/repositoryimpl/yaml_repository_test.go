package repositoryimpl

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/storage"
)

type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestRepository(t *testing.T) *YAMLRepository {
	t.Helper()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	clock := &tickingClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	return NewYAMLRepository(s, WithClock(clock.Now))
}

func ptr[T any](v T) *T { return &v }

func TestYAMLRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	in := &task.Task{Title: "Write release notes", Description: "first draft", Status: task.StatusToDo}
	require.NoError(t, repo.Create(ctx, in))
	assert.NotEmpty(t, in.ID)
	assert.False(t, in.CreatedAt.IsZero())
	assert.True(t, in.CreatedAt.Equal(in.UpdatedAt))

	got, err := repo.Get(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, in.ID, got.ID)
	assert.Equal(t, "Write release notes", got.Title)
	assert.Equal(t, "first draft", got.Description)
	assert.Equal(t, task.StatusToDo, got.Status)
	assert.True(t, in.CreatedAt.Equal(got.CreatedAt))
}

func TestYAMLRepository_CreateRejectsInvalidTasks(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	err := repo.Create(ctx, &task.Task{Title: "   ", Status: task.StatusToDo})
	assert.Equal(t, task.KindValidation, task.KindOf(err))

	err = repo.Create(ctx, &task.Task{Title: "ok", Status: "Blocked"})
	assert.Equal(t, task.KindInvalidStatus, task.KindOf(err))

	err = repo.Create(ctx, &task.Task{Title: "ok"})
	assert.Equal(t, task.KindInvalidStatus, task.KindOf(err))

	tasks, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestYAMLRepository_GetNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	for _, id := range []string{"", "01ARZ3NDEKTSV4RRFFQ69G5FAV", "../users/01ARZ3NDEKTSV4RRFFQ69G5FAV"} {
		_, err := repo.Get(ctx, id)
		assert.True(t, task.IsNotFound(err), "id %q: %v", id, err)
	}
}

func TestYAMLRepository_ListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	statuses := task.Statuses()
	var ids []string
	for i := 0; i < 12; i++ {
		tk := &task.Task{Title: "task", Status: statuses[i%len(statuses)]}
		require.NoError(t, repo.Create(ctx, tk))
		ids = append(ids, tk.ID)
	}

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 12)
	for i, tk := range all {
		assert.Equal(t, ids[i], tk.ID)
	}

	done, err := repo.List(ctx, task.StatusDone)
	require.NoError(t, err)
	require.Len(t, done, 4)
	for i, tk := range done {
		assert.Equal(t, task.StatusDone, tk.Status)
		assert.Equal(t, ids[3*i+2], tk.ID)
	}
}

func TestYAMLRepository_ReplaceMergesSuppliedFields(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	tk := &task.Task{Title: "Write release notes", Description: "draft", AssignedTo: "u1", Status: task.StatusToDo}
	require.NoError(t, repo.Create(ctx, tk))

	got, err := repo.Replace(ctx, tk.ID, &task.Patch{Status: ptr(task.StatusInProgress)})
	require.NoError(t, err)
	assert.Equal(t, task.StatusInProgress, got.Status)
	assert.Equal(t, "Write release notes", got.Title)
	assert.Equal(t, "draft", got.Description)
	assert.Equal(t, "u1", got.AssignedTo)
	assert.True(t, tk.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, got.UpdatedAt.After(tk.UpdatedAt))

	got, err = repo.Replace(ctx, tk.ID, &task.Patch{Title: ptr("Ship release notes"), AssignedTo: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "Ship release notes", got.Title)
	assert.Equal(t, "", got.AssignedTo)
	assert.Equal(t, task.StatusInProgress, got.Status)

	stored, err := repo.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Title, stored.Title)
	assert.True(t, got.UpdatedAt.Equal(stored.UpdatedAt))
}

func TestYAMLRepository_ReplaceRejects(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	_, err := repo.Replace(ctx, "01ARZ3NDEKTSV4RRFFQ69G5FAV", &task.Patch{Title: ptr("x")})
	assert.True(t, task.IsNotFound(err))

	tk := &task.Task{Title: "keep", Status: task.StatusToDo}
	require.NoError(t, repo.Create(ctx, tk))

	_, err = repo.Replace(ctx, tk.ID, &task.Patch{Title: ptr(" ")})
	assert.Equal(t, task.KindValidation, task.KindOf(err))
	_, err = repo.Replace(ctx, tk.ID, &task.Patch{Status: ptr(task.Status("Archived"))})
	assert.Equal(t, task.KindInvalidStatus, task.KindOf(err))

	stored, err := repo.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep", stored.Title)
	assert.True(t, tk.UpdatedAt.Equal(stored.UpdatedAt))
}

func TestYAMLRepository_DeleteIsTerminal(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	tk := &task.Task{Title: "gone soon", Status: task.StatusDone}
	require.NoError(t, repo.Create(ctx, tk))
	require.NoError(t, repo.Delete(ctx, tk.ID))

	_, err := repo.Get(ctx, tk.ID)
	assert.True(t, task.IsNotFound(err))
	_, err = repo.Replace(ctx, tk.ID, &task.Patch{Status: ptr(task.StatusToDo)})
	assert.True(t, task.IsNotFound(err))
	assert.True(t, task.IsNotFound(repo.Delete(ctx, tk.ID)))

	tasks, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestYAMLRepository_ConcurrentCreatesGetUniqueIDs(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	const n = 32
	var (
		mu  sync.Mutex
		ids = make(map[string]struct{}, n)
		wg  conc.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Go(func() {
			tk := &task.Task{Title: "parallel", Status: task.StatusToDo}
			if err := repo.Create(ctx, tk); err != nil {
				t.Errorf("create: %v", err)
				return
			}
			mu.Lock()
			ids[tk.ID] = struct{}{}
			mu.Unlock()
		})
	}
	wg.Wait()

	assert.Len(t, ids, n)
	tasks, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, tasks, n)
}

func TestYAMLRepository_ConcurrentReplaceLastWriteWins(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	tk := &task.Task{Title: "contended", Status: task.StatusToDo}
	require.NoError(t, repo.Create(ctx, tk))

	var wg conc.WaitGroup
	for i := 0; i < 30; i++ {
		st := task.Statuses()[i%3]
		wg.Go(func() {
			_, err := repo.Replace(ctx, tk.ID, &task.Patch{Status: &st})
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	stored, err := repo.Get(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, stored.Status.Valid())
	assert.Equal(t, "contended", stored.Title)
}
