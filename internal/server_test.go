package internal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/auth"
	"github.com/kazz187/taskboard/internal/config"
	"github.com/kazz187/taskboard/internal/task"
	taskrepo "github.com/kazz187/taskboard/internal/task/repositoryimpl"
	"github.com/kazz187/taskboard/internal/user"
	userrepo "github.com/kazz187/taskboard/internal/user/repositoryimpl"
	"github.com/kazz187/taskboard/pkg/storage"
)

func newTestServer(t *testing.T) (http.Handler, string) {
	t.Helper()
	s, err := storage.NewSQLiteStorage(t.TempDir() + "/taskboard.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	a, err := auth.New("server-test")
	require.NoError(t, err)
	token, err := a.Issue("tester", 0)
	require.NoError(t, err)

	users := userrepo.NewYAMLRepository(s)
	srv := NewServer(
		&config.Env{},
		a,
		task.NewServer(task.NewService(taskrepo.NewYAMLRepository(s), users)),
		user.NewServer(users),
	)
	return srv.Handler(), token
}

func request(h http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_HealthNeedsNoToken(t *testing.T) {
	h, _ := newTestServer(t)
	rec := request(h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServer_RequiresToken(t *testing.T) {
	h, _ := newTestServer(t)
	for _, target := range []string{"/tasks", "/users"} {
		rec := request(h, http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
		assert.Contains(t, rec.Body.String(), `"reason":"UNAUTHENTICATED"`)

		rec = request(h, http.MethodGet, target, "garbage", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestServer_RoutesTasksAndUsers(t *testing.T) {
	h, token := newTestServer(t)

	rec := request(h, http.MethodPost, "/users", token, `{"name":"alice"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"name":"alice"`)

	rec = request(h, http.MethodPost, "/tasks", token, `{"title":"X","status":"Done"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = request(h, http.MethodGet, "/tasks", token, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, strings.Count(rec.Body.String(), `"title":"X"`))
	assert.Contains(t, rec.Body.String(), `"status":"Done"`)

	rec = request(h, http.MethodGet, "/nowhere", token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"code":"NotFound","message":"not found"}`, rec.Body.String())

	rec = request(h, http.MethodPatch, "/tasks", token, "")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
