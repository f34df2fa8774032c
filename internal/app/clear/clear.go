package clear

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/slok/opsdesk/internal/log"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/storage"
)

const (
	// SelectorAll clears every submitted task of the callback.
	SelectorAll = "all"
	// SelectorLast clears the most recently submitted task of the callback.
	SelectorLast = ""
)

// CascadeDeleter deletes the records owned by a task.
type CascadeDeleter interface {
	DeleteTaskCascade(ctx context.Context, taskID int64) error
}

// ServiceConfig is the configuration of the clear service.
type ServiceConfig struct {
	Repository storage.Repository
	Cascade    CascadeDeleter
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Cascade == nil {
		return fmt.Errorf("cascade is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Clear"})
	return nil
}

// Service clears submitted tasks before their callback picks them up.
type Service struct {
	repo    storage.Repository
	cascade CascadeDeleter
	logger  log.Logger
}

// NewService returns a new clear service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:    cfg.Repository,
		cascade: cfg.Cascade,
		logger:  cfg.Logger,
	}, nil
}

type Request struct {
	Identity   model.Identity
	CallbackID int64
	// Selector is SelectorAll, SelectorLast or a task ID.
	Selector string
}

// Run clears the selected tasks and returns their snapshots as they were before clearing.
// Tasks that aren't submitted anymore are skipped.
func (s *Service) Run(ctx context.Context, req Request) ([]model.Task, error) {
	cb, err := s.repo.GetCallback(ctx, req.CallbackID)
	if err != nil {
		return nil, fmt.Errorf("could not get callback: %w", err)
	}
	if !req.Identity.MemberOf(cb.OperationName) {
		return nil, fmt.Errorf("operator %q is not a member of operation %q: %w", req.Identity.Username, cb.OperationName, model.ErrPermissionDenied)
	}

	candidates, err := s.selectTasks(ctx, cb.ID, strings.TrimSpace(req.Selector))
	if err != nil {
		return nil, err
	}

	cleared := []model.Task{}
	for _, t := range candidates {
		won, err := s.repo.UpdateTaskStatus(ctx, t.ID, model.TaskStatusSubmitted, model.TaskStatusProcessed)
		if err != nil {
			return cleared, fmt.Errorf("could not clear task %d: %w", t.ID, err)
		}
		if !won {
			s.logger.Debugf("Task %d was picked up before clearing it", t.ID)
			continue
		}

		if err := s.cascade.DeleteTaskCascade(ctx, t.ID); err != nil {
			return cleared, fmt.Errorf("could not delete task %d records: %w", t.ID, err)
		}

		resp := model.Response{TaskID: t.ID, Response: "CLEARED TASK by " + req.Identity.Username}
		if err := s.repo.CreateResponse(ctx, &resp); err != nil {
			return cleared, fmt.Errorf("could not create clear response: %w", err)
		}

		cleared = append(cleared, t)
	}

	s.logger.Infof("Cleared %d tasks of callback %d", len(cleared), cb.ID)
	return cleared, nil
}

func (s *Service) selectTasks(ctx context.Context, callbackID int64, selector string) ([]model.Task, error) {
	q := model.TaskQuery{CallbackID: callbackID, Statuses: []model.TaskStatus{model.TaskStatusSubmitted}}

	switch selector {
	case SelectorAll:
	case SelectorLast:
		q.Newest = true
		q.Limit = 1
	default:
		id, err := strconv.ParseInt(selector, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("task selector %q must be %q, empty or a task id: %w", selector, SelectorAll, model.ErrNotValid)
		}
		q.ID = id
	}

	tasks, err := s.repo.ListTasks(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}
	return tasks, nil
}
