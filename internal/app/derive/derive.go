package derive

import (
	"context"
	"fmt"
	"strings"

	"github.com/slok/opsdesk/internal/log"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/utils/params"
)

// Repository is the storage the derivation recorder needs.
type Repository interface {
	ListAttackCommands(ctx context.Context, commandID int64) ([]model.AttackCommand, error)
	GetOrCreateAttackTask(ctx context.Context, attackID, taskID int64) (*model.AttackTask, bool, error)
	ListArtifactTemplates(ctx context.Context, commandID int64) ([]model.ArtifactTemplate, error)
	CreateTaskArtifact(ctx context.Context, a *model.TaskArtifact) error
}

// ServiceConfig is the configuration of the derivation service.
type ServiceConfig struct {
	Repository Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Derive"})
	return nil
}

// Service records the techniques and forensic artifacts a task implies.
type Service struct {
	repo   Repository
	logger log.Logger
}

// NewService returns a new derivation service.
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
	Task model.Task
}

type Response struct {
	Attacks   []model.AttackTask
	Artifacts []model.TaskArtifact
}

// Run derives the records of a task. Techniques are get-or-create so running it again
// doesn't duplicate them.
func (s *Service) Run(ctx context.Context, req Request) (*Response, error) {
	res := &Response{}
	if req.Task.CommandID == nil {
		return res, nil
	}
	commandID := *req.Task.CommandID

	mappings, err := s.repo.ListAttackCommands(ctx, commandID)
	if err != nil {
		return nil, fmt.Errorf("could not list command techniques: %w", err)
	}
	for _, m := range mappings {
		at, _, err := s.repo.GetOrCreateAttackTask(ctx, m.AttackID, req.Task.ID)
		if err != nil {
			return nil, fmt.Errorf("could not record technique %d: %w", m.AttackID, err)
		}
		res.Attacks = append(res.Attacks, *at)
	}

	templates, err := s.repo.ListArtifactTemplates(ctx, commandID)
	if err != nil {
		return nil, fmt.Errorf("could not list artifact templates: %w", err)
	}
	var taskParams map[string]any
	for _, tpl := range templates {
		rendered := tpl.ArtifactString
		switch {
		case tpl.CommandParameterID != nil:
			if taskParams == nil {
				taskParams, err = params.Decode(req.Task.Params)
				if err != nil {
					return nil, fmt.Errorf("task params are not a JSON object: %w", err)
				}
			}
			v, ok := taskParams[tpl.ParameterName]
			if !ok {
				return nil, fmt.Errorf("task params are missing %q", tpl.ParameterName)
			}
			if tpl.ReplaceString != "" {
				rendered = strings.ReplaceAll(rendered, tpl.ReplaceString, params.String(v))
			}
		case tpl.ReplaceString != "":
			rendered = strings.ReplaceAll(rendered, tpl.ReplaceString, req.Task.Params)
		}

		a := model.TaskArtifact{TaskID: req.Task.ID, ArtifactTemplateID: tpl.ID, ArtifactInstance: rendered}
		if err := s.repo.CreateTaskArtifact(ctx, &a); err != nil {
			return nil, fmt.Errorf("could not record artifact: %w", err)
		}
		res.Artifacts = append(res.Artifacts, a)
	}

	s.logger.Debugf("Task %d derived %d techniques and %d artifacts", req.Task.ID, len(res.Attacks), len(res.Artifacts))
	return res, nil
}
