package tasks

import (
	"context"
	"fmt"

	"github.com/slok/opsdesk/internal/log"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/storage"
)

// ServiceConfig is the configuration of the tasks service.
type ServiceConfig struct {
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Tasks"})
	return nil
}

// Service answers operator queries about tasks and manages task comments.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService returns a new tasks service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

type ListRequest struct {
	Identity model.Identity
	// CallbackID scopes the list to a callback, otherwise the identity current operation is used.
	CallbackID int64
	// NotCompleted only returns tasks that aren't processed yet.
	NotCompleted bool
	// Search matches a substring of the params or original params.
	Search string
	// Commented only returns tasks with a comment.
	Commented     bool
	CommentSearch string
}

// List returns the tasks matching the request, oldest first.
func (s *Service) List(ctx context.Context, req ListRequest) ([]model.Task, error) {
	q := model.TaskQuery{
		Search:        req.Search,
		Commented:     req.Commented,
		CommentSearch: req.CommentSearch,
	}
	if req.NotCompleted {
		q.NotStatus = model.TaskStatusProcessed
	}

	if req.CallbackID != 0 {
		cb, err := s.repo.GetCallback(ctx, req.CallbackID)
		if err != nil {
			return nil, fmt.Errorf("could not get callback: %w", err)
		}
		if !req.Identity.MemberOf(cb.OperationName) {
			return nil, fmt.Errorf("operator %q is not a member of operation %q: %w", req.Identity.Username, cb.OperationName, model.ErrPermissionDenied)
		}
		q.CallbackID = cb.ID
	} else {
		if req.Identity.CurrentOperationID == 0 {
			return nil, model.ErrMustJoinOperation
		}
		q.OperationID = req.Identity.CurrentOperationID
	}

	ts, err := s.repo.ListTasks(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}
	if ts == nil {
		ts = []model.Task{}
	}
	return ts, nil
}

type GetRequest struct {
	Identity model.Identity
	TaskID   int64
}

type GetResponse struct {
	Task      model.Task
	Responses []model.Response
}

// Get returns a task with its responses.
func (s *Service) Get(ctx context.Context, req GetRequest) (*GetResponse, error) {
	task, err := s.authorizedTask(ctx, req.Identity, req.TaskID)
	if err != nil {
		return nil, err
	}

	resps, err := s.repo.ListResponses(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("could not list responses: %w", err)
	}
	if resps == nil {
		resps = []model.Response{}
	}

	return &GetResponse{Task: *task, Responses: resps}, nil
}

type CommentRequest struct {
	Identity model.Identity
	TaskID   int64
	// Comment replaces the task comment, empty removes it.
	Comment string
}

// Comment sets or removes the comment of a task. It's the only change allowed on
// processed tasks.
func (s *Service) Comment(ctx context.Context, req CommentRequest) (*model.Task, error) {
	task, err := s.authorizedTask(ctx, req.Identity, req.TaskID)
	if err != nil {
		return nil, err
	}

	var operatorID *int64
	if req.Comment != "" {
		operatorID = &req.Identity.OperatorID
	}
	if err := s.repo.UpdateTaskComment(ctx, task.ID, req.Comment, operatorID); err != nil {
		return nil, fmt.Errorf("could not update comment: %w", err)
	}

	updated, err := s.repo.GetTask(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}
	return updated, nil
}

func (s *Service) authorizedTask(ctx context.Context, id model.Identity, taskID int64) (*model.Task, error) {
	task, err := s.repo.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}
	op, err := s.repo.GetOperation(ctx, task.OperationID)
	if err != nil {
		return nil, fmt.Errorf("could not get operation: %w", err)
	}
	if !id.MemberOf(op.Name) {
		return nil, fmt.Errorf("operator %q is not a member of operation %q: %w", id.Username, op.Name, model.ErrPermissionDenied)
	}
	return task, nil
}
