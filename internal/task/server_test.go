package task_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/pkg/cerr"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	svc, _ := newTestService(t, fakeUsers{"u1": true})
	r := chi.NewRouter()
	r.Use(cerr.NewJSONResponseChiMiddleware())
	task.NewServer(svc).Routes(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Code    string `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func TestServer_TaskLifecycle(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/tasks", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/tasks", `{"title":"Write release notes","assignedTo":"u1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[task.Task](t, rec)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, task.StatusToDo, created.Status)
	assert.Equal(t, "u1", created.AssignedTo)

	rec = do(t, h, http.MethodGet, "/tasks/"+created.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[task.Task](t, rec).ID)

	rec = do(t, h, http.MethodPut, "/tasks/"+created.ID+"/move", `{"status":"In Progress"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decode[task.Task](t, rec)
	assert.Equal(t, task.StatusInProgress, moved.Status)
	assert.Equal(t, "Write release notes", moved.Title)

	rec = do(t, h, http.MethodPut, "/tasks/"+created.ID, `{"title":"Write full release notes","status":"Done"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[task.Task](t, rec)
	assert.Equal(t, "Write full release notes", updated.Title)
	assert.Equal(t, task.StatusDone, updated.Status)

	rec = do(t, h, http.MethodGet, "/tasks?status=Done", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]task.Task](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/tasks?status=To+Do", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/tasks/"+created.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Task deleted successfully"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/tasks/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, "NotFound", body.Code)
	assert.Equal(t, cerr.ReasonNotFound, body.Reason)
}

func TestServer_Errors(t *testing.T) {
	h := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/tasks", `{"title":"x"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[task.Task](t, rec).ID

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
		reason string
	}{
		{"missing title", http.MethodPost, "/tasks", `{"description":"no title"}`, http.StatusBadRequest, cerr.ReasonValidation},
		{"empty body", http.MethodPost, "/tasks", ``, http.StatusBadRequest, cerr.ReasonValidation},
		{"malformed body", http.MethodPost, "/tasks", `{"title":`, http.StatusBadRequest, cerr.ReasonValidation},
		{"unknown field", http.MethodPost, "/tasks", `{"title":"x","priority":1}`, http.StatusBadRequest, cerr.ReasonValidation},
		{"invalid status", http.MethodPost, "/tasks", `{"title":"x","status":"Blocked"}`, http.StatusBadRequest, task.ReasonInvalidStatus},
		{"unknown assignee", http.MethodPost, "/tasks", `{"title":"x","assignedTo":"ghost"}`, http.StatusBadRequest, task.ReasonInvalidReference},
		{"list invalid status", http.MethodGet, "/tasks?status=Nope", ``, http.StatusBadRequest, task.ReasonInvalidStatus},
		{"empty update", http.MethodPut, "/tasks/" + id, `{}`, http.StatusBadRequest, cerr.ReasonValidation},
		{"move without status", http.MethodPut, "/tasks/" + id + "/move", `{}`, http.StatusBadRequest, cerr.ReasonValidation},
		{"move invalid status", http.MethodPut, "/tasks/" + id + "/move", `{"status":"done"}`, http.StatusBadRequest, task.ReasonInvalidStatus},
		{"update missing", http.MethodPut, "/tasks/unknown", `{"title":"y"}`, http.StatusNotFound, cerr.ReasonNotFound},
		{"move missing", http.MethodPut, "/tasks/unknown/move", `{"status":"Done"}`, http.StatusNotFound, cerr.ReasonNotFound},
		{"delete missing", http.MethodDelete, "/tasks/unknown", ``, http.StatusNotFound, cerr.ReasonNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decode[errorBody](t, rec)
			assert.Equal(t, tt.reason, body.Reason)
			assert.NotEmpty(t, body.Message)
		})
	}

	rec = do(t, h, http.MethodGet, "/tasks/"+id, "")
	assert.Equal(t, "x", decode[task.Task](t, rec).Title)
}
