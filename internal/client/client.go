package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kazz187/taskboard/internal/task"
	"github.com/kazz187/taskboard/internal/user"
	"github.com/kazz187/taskboard/pkg/cerr"
)

const maxResponseBody = 4 << 20

// Client talks to the taskboard server. Failed calls return errors that wrap
// a *cerr.Error, so task.KindOf works on them just like on server-side errors.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client with a 10s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a new client for the server at baseURL
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListTasks lists tasks, optionally only those in status
func (c *Client) ListTasks(ctx context.Context, status task.Status) ([]*task.Task, error) {
	path := "/tasks"
	if status != "" {
		path += "?" + url.Values{"status": {string(status)}}.Encode()
	}
	var tasks []*task.Task
	if err := c.do(ctx, http.MethodGet, path, nil, &tasks); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// GetTask gets a specific task
func (c *Client) GetTask(ctx context.Context, id string) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &t); err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

// CreateTask creates a new task
func (c *Client) CreateTask(ctx context.Context, req *task.CreateTaskRequest) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", req, &t); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &t, nil
}

// UpdateTask changes the supplied fields of a task
func (c *Client) UpdateTask(ctx context.Context, id string, req *task.UpdateTaskRequest) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), req, &t); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return &t, nil
}

// TransitionStatus moves a task to another column
func (c *Client) TransitionStatus(ctx context.Context, id string, req *task.TransitionRequest) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id)+"/move", req, &t); err != nil {
		return nil, fmt.Errorf("failed to move task: %w", err)
	}
	return &t, nil
}

// DeleteTask deletes a task
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	var resp task.DeleteTaskResponse
	if err := c.do(ctx, http.MethodDelete, taskPath(id), nil, &resp); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ListUsers lists all users
func (c *Client) ListUsers(ctx context.Context) ([]*user.User, error) {
	var users []*user.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// CreateUser registers a new assignee
func (c *Client) CreateUser(ctx context.Context, name string) (*user.User, error) {
	var u user.User
	if err := c.do(ctx, http.MethodPost, "/users", &user.CreateUserRequest{Name: name}, &u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return cerr.NewError(cerr.Internal, "failed to encode request", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return cerr.NewError(cerr.Internal, "failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return cerr.NewError(cerr.Canceled, "request canceled", ctx.Err())
		}
		if neverSent(err) {
			return cerr.NewReasonError(cerr.Unavailable, cerr.ReasonStoreFailure, "server unreachable", err)
		}
		return outcomeUnknown("connection lost", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return outcomeUnknown("failed to read response", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return cerr.DecodeHTTPError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return outcomeUnknown("malformed response", err)
	}
	return nil
}

// neverSent reports whether err happened before the request reached the
// server, so repeating it cannot apply a mutation twice.
func neverSent(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// outcomeUnknown is for failures after the server may have acted on the
// request. They are never retried.
func outcomeUnknown(msg string, err error) error {
	return cerr.NewReasonError(cerr.Unknown, cerr.ReasonOutcomeUnknown, msg, err)
}
