package nexttask

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/slok/opsdesk/internal/cipher"
	"github.com/slok/opsdesk/internal/log"
	"github.com/slok/opsdesk/internal/metrics"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/storage"
)

// NoneCommand is the command sent to callbacks without pending tasks.
const NoneCommand = "none"

// ServiceConfig is the configuration of the next task service.
type ServiceConfig struct {
	Repository      storage.Repository
	MetricsRecorder metrics.Recorder
	TimeNow         func() time.Time
	Logger          log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.MetricsRecorder == nil {
		c.MetricsRecorder = metrics.Noop
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.NextTask"})
	return nil
}

// Service hands the oldest submitted task of a callback to the agent.
type Service struct {
	repo    storage.Repository
	metrics metrics.Recorder
	timeNow func() time.Time
	logger  log.Logger
}

// NewService returns a new next task service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:    cfg.Repository,
		metrics: cfg.MetricsRecorder,
		timeNow: cfg.TimeNow,
		logger:  cfg.Logger,
	}, nil
}

type Request struct {
	CallbackID int64
}

type Response struct {
	// Task is the claimed task, nil when the callback has nothing pending.
	Task *model.Task
	// Body is the message for the agent, encrypted and base64 framed when the
	// callback has a cipher configured.
	Body      []byte
	Encrypted bool
}

type message struct {
	Command string `json:"command"`
	Params  string `json:"params,omitempty"`
	ID      int64  `json:"id,omitempty"`
}

// Run checks in the callback and claims its oldest submitted task. Unknown callbacks
// and callbacks of complete operations return model.ErrNotFound.
func (s *Service) Run(ctx context.Context, req Request) (*Response, error) {
	cb, err := s.repo.GetCallback(ctx, req.CallbackID)
	if err != nil {
		return nil, fmt.Errorf("could not get callback: %w", err)
	}
	op, err := s.repo.GetOperation(ctx, cb.OperationID)
	if err != nil {
		return nil, fmt.Errorf("could not get operation: %w", err)
	}
	if op.Complete {
		return nil, fmt.Errorf("operation %q is complete: %w", op.Name, model.ErrNotFound)
	}

	cb.LastCheckin = s.timeNow()
	cb.Active = true
	if err := s.repo.UpdateCallback(ctx, *cb); err != nil {
		return nil, fmt.Errorf("could not check in callback: %w", err)
	}

	// Claimed tasks must always reach the agent, the cipher is resolved before claiming.
	c, err := cipher.ForCallback(*cb)
	if err != nil {
		return nil, fmt.Errorf("could not get callback cipher: %w", err)
	}

	task, err := s.claim(ctx, cb.ID)
	if err != nil {
		return nil, err
	}

	msg := message{Command: NoneCommand}
	if task != nil {
		msg = message{Command: task.Command, Params: task.Params, ID: task.ID}
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("could not encode message: %w", err)
	}

	if c != nil {
		body, err = c.Encrypt(body)
		if err != nil {
			return nil, fmt.Errorf("could not encrypt message: %w", err)
		}
	}

	return &Response{Task: task, Body: body, Encrypted: c != nil}, nil
}

// claim moves the oldest submitted task to processing, trying the next one when
// another poller wins the race.
func (s *Service) claim(ctx context.Context, callbackID int64) (*model.Task, error) {
	candidates, err := s.repo.ListTasks(ctx, model.TaskQuery{
		CallbackID: callbackID,
		Statuses:   []model.TaskStatus{model.TaskStatusSubmitted},
	})
	if err != nil {
		return nil, fmt.Errorf("could not list submitted tasks: %w", err)
	}

	for _, t := range candidates {
		won, err := s.repo.UpdateTaskStatus(ctx, t.ID, model.TaskStatusSubmitted, model.TaskStatusProcessing)
		if err != nil {
			return nil, fmt.Errorf("could not claim task %d: %w", t.ID, err)
		}
		s.metrics.TaskClaimed(won)
		if !won {
			s.logger.Debugf("Task %d already claimed", t.ID)
			continue
		}

		t.Status = model.TaskStatusProcessing
		s.logger.Infof("Task %d sent to callback %d", t.ID, callbackID)
		return &t, nil
	}

	return nil, nil
}
