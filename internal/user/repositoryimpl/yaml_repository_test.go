package repositoryimpl

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/storage"
)

func TestYAMLRepository(t *testing.T) {
	ctx := context.Background()
	s, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	repo := NewYAMLRepository(s)

	alice := &user.User{ID: ulid.Make().String(), Name: "alice", CreatedAt: time.Now().UTC()}
	bob := &user.User{ID: ulid.Make().String(), Name: "bob", CreatedAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, alice))
	require.NoError(t, repo.Create(ctx, bob))
	assert.True(t, cerr.IsCode(repo.Create(ctx, alice), cerr.AlreadyExists))

	ok, err := repo.Exists(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, ulid.Make().String())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Exists(ctx, "../tasks/x")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := repo.Get(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Name)

	_, err = repo.Get(ctx, ulid.Make().String())
	assert.True(t, cerr.IsCode(err, cerr.NotFound))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, alice.ID, users[0].ID)
	assert.Equal(t, bob.ID, users[1].ID)
}
