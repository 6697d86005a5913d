package task

import (
	"context"
	"log/slog"

	"github.com/kazz187/taskboard/pkg/cerr"
	"github.com/kazz187/taskboard/pkg/clog"
)

// Service holds the business rules on top of the Repository. It is the only
// writer of tasks.
type Service struct {
	repo  Repository
	users UserDirectory
}

func NewService(repo Repository, users UserDirectory) *Service {
	return &Service{
		repo:  repo,
		users: users,
	}
}

func (s *Service) CreateTask(ctx context.Context, req *CreateTaskRequest) (*Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.AssignedTo != "" {
		if err := s.checkAssignee(ctx, req.AssignedTo); err != nil {
			return nil, err
		}
	}

	t := &Task{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Status:      req.status(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	clog.AddAttribute(ctx, "task_id", t.ID)
	slog.InfoContext(ctx, "task created", "status", t.Status)
	return t, nil
}

func (s *Service) GetTask(ctx context.Context, id string) (*Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListTasks(ctx context.Context, filter ListFilter) ([]*Task, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, filter.Status)
}

func (s *Service) UpdateTask(ctx context.Context, id string, req *UpdateTaskRequest) (*Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.AssignedTo != nil && *req.AssignedTo != "" {
		if err := s.checkAssignee(ctx, *req.AssignedTo); err != nil {
			return nil, err
		}
	}

	t, err := s.repo.Replace(ctx, id, req.Patch())
	if err != nil {
		return nil, err
	}

	clog.AddAttribute(ctx, "task_id", t.ID)
	slog.InfoContext(ctx, "task updated", "status", t.Status)
	return t, nil
}

// TransitionStatus moves a task to any status, including the one it is
// already in. Every successful call refreshes UpdatedAt.
func (s *Service) TransitionStatus(ctx context.Context, id string, req *TransitionRequest) (*Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	st := req.Status
	t, err := s.repo.Replace(ctx, id, &Patch{Status: &st})
	if err != nil {
		return nil, err
	}

	clog.AddAttribute(ctx, "task_id", t.ID)
	slog.InfoContext(ctx, "task moved", "status", t.Status)
	return t, nil
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	clog.AddAttribute(ctx, "task_id", id)
	slog.InfoContext(ctx, "task deleted")
	return nil
}

func (s *Service) checkAssignee(ctx context.Context, userID string) error {
	if s.users == nil {
		return newInvalidReferenceError(userID)
	}
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return cerr.NewReasonError(cerr.Internal, cerr.ReasonStoreFailure, "server error", err)
	}
	if !ok {
		return newInvalidReferenceError(userID)
	}
	return nil
}
