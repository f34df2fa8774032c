// Package cascade has the explicit delete rules of task owned records.
//
// Two file policies exist and both live here so they can be audited together:
// clearing a task removes its files unconditionally, while discarding files staged by
// a dry run only removes them from disk once nothing else references the path.
package cascade

import (
	"context"
	"fmt"

	"github.com/slok/opsdesk/internal/log"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/utils/file"
)

// Repository is the storage the cascade rules need.
type Repository interface {
	ListAttackTasks(ctx context.Context, taskID int64) ([]model.AttackTask, error)
	DeleteAttackTask(ctx context.Context, id int64) error
	ListTaskArtifacts(ctx context.Context, taskID int64) ([]model.TaskArtifact, error)
	DeleteTaskArtifact(ctx context.Context, id int64) error
	ListFileMeta(ctx context.Context, q model.FileMetaQuery) ([]model.FileMeta, error)
	DeleteFileMeta(ctx context.Context, id int64) error
	CountFileMetaByPath(ctx context.Context, path string) (int, error)
	CountPayloadsByLocation(ctx context.Context, path string) (int, error)
}

// ServiceConfig is the configuration of the cascade service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Cascade"})
	return nil
}

// Service applies cascade delete rules.
type Service struct {
	repo   Repository
	logger log.Logger
}

// NewService returns a new cascade service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// DeleteTaskCascade deletes the technique instances, rendered artifacts and files of a
// task. Files are removed from disk regardless of other references.
func (s *Service) DeleteTaskCascade(ctx context.Context, taskID int64) error {
	attacks, err := s.repo.ListAttackTasks(ctx, taskID)
	if err != nil {
		return fmt.Errorf("could not list task techniques: %w", err)
	}
	for _, a := range attacks {
		if err := s.repo.DeleteAttackTask(ctx, a.ID); err != nil {
			return fmt.Errorf("could not delete task technique %d: %w", a.ID, err)
		}
	}

	artifacts, err := s.repo.ListTaskArtifacts(ctx, taskID)
	if err != nil {
		return fmt.Errorf("could not list task artifacts: %w", err)
	}
	for _, a := range artifacts {
		if err := s.repo.DeleteTaskArtifact(ctx, a.ID); err != nil {
			return fmt.Errorf("could not delete task artifact %d: %w", a.ID, err)
		}
	}

	files, err := s.repo.ListFileMeta(ctx, model.FileMetaQuery{TaskID: taskID, IncludeDeleted: true})
	if err != nil {
		return fmt.Errorf("could not list task files: %w", err)
	}
	for _, f := range files {
		if err := file.Remove(f.Path); err != nil {
			return err
		}
		if err := s.repo.DeleteFileMeta(ctx, f.ID); err != nil {
			return fmt.Errorf("could not delete file meta %d: %w", f.ID, err)
		}
	}

	s.logger.Debugf("Task %d cascade: %d techniques, %d artifacts, %d files", taskID, len(attacks), len(artifacts), len(files))
	return nil
}

// ReleaseFileMeta deletes a file meta row and removes its file from disk only when no
// other non deleted file meta or payload references the same path.
func (s *Service) ReleaseFileMeta(ctx context.Context, f model.FileMeta) error {
	if err := s.repo.DeleteFileMeta(ctx, f.ID); err != nil {
		return fmt.Errorf("could not delete file meta %d: %w", f.ID, err)
	}

	files, err := s.repo.CountFileMetaByPath(ctx, f.Path)
	if err != nil {
		return fmt.Errorf("could not count file references: %w", err)
	}
	payloads, err := s.repo.CountPayloadsByLocation(ctx, f.Path)
	if err != nil {
		return fmt.Errorf("could not count payload references: %w", err)
	}
	if refs := files + payloads; refs > 0 {
		s.logger.Debugf("Keeping %q, still referenced %d times", f.Path, refs)
		return nil
	}

	return file.Remove(f.Path)
}
