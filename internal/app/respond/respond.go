package respond

import (
	"context"
	"fmt"

	"github.com/slok/opsdesk/internal/log"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/storage"
)

// ServiceConfig is the configuration of the respond service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Respond"})
	return nil
}

// Service stores the output agents post for their tasks.
type Service struct {
	repo   storage.Repository
	logger log.Logger
}

// NewService returns a new respond service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

type Request struct {
	TaskID   int64
	Response string
}

// Run appends a response to a task and marks it processed. Processed tasks keep
// accepting responses, agents may send their output in more than one message.
func (s *Service) Run(ctx context.Context, req Request) (*model.Response, error) {
	task, err := s.repo.GetTask(ctx, req.TaskID)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	resp := &model.Response{TaskID: task.ID, Response: req.Response}
	if err := s.repo.CreateResponse(ctx, resp); err != nil {
		return nil, fmt.Errorf("could not create response: %w", err)
	}

	if task.Status != model.TaskStatusProcessed {
		won, err := s.repo.UpdateTaskStatus(ctx, task.ID, task.Status, model.TaskStatusProcessed)
		if err != nil {
			return nil, fmt.Errorf("could not mark task %d processed: %w", task.ID, err)
		}
		if !won {
			s.logger.Debugf("Task %d status changed while responding", task.ID)
		}
	}

	s.logger.Infof("Response %d stored for task %d", resp.ID, task.ID)
	return resp, nil
}
