package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slok/opsdesk/internal/api"
	"github.com/slok/opsdesk/internal/app/cascade"
	"github.com/slok/opsdesk/internal/app/clear"
	"github.com/slok/opsdesk/internal/app/derive"
	"github.com/slok/opsdesk/internal/app/issue"
	"github.com/slok/opsdesk/internal/app/nexttask"
	"github.com/slok/opsdesk/internal/app/respond"
	"github.com/slok/opsdesk/internal/app/tasks"
	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/conventions"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/storage/sqlite"
	"github.com/slok/opsdesk/internal/transform"
	"github.com/slok/opsdesk/pkg/lib/log"
)

// Config configures the SDK client.
//
// All fields are optional. An empty Config{} uses ~/.opsdesk/opsdesk.db for
// storage and ~/.opsdesk/transforms.yaml for transform definitions.
type Config struct {
	// DataDir is the base directory for staged files and payload type templates.
	// Default: ~/.opsdesk.
	DataDir string

	// DBPath is the SQLite database path.
	// Default: <DataDir>/opsdesk.db.
	DBPath string

	// TransformsFile is the YAML file with transform definitions, a missing file
	// only registers the built-in transforms.
	// Default: <DataDir>/transforms.yaml.
	TransformsFile string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not get user home dir: %w", err)
		}
		c.DataDir = filepath.Join(home, conventions.DefaultDataDir)
	}

	if c.DBPath == "" {
		c.DBPath = conventions.DBPath(c.DataDir)
	}

	if c.TransformsFile == "" {
		c.TransformsFile = conventions.TransformsPath(c.DataDir)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point for tasking callbacks programmatically.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	repo     *sqlite.Repository
	registry *transform.Registry
	issue    *issue.Service
	clear    *clear.Service
	tasks    *tasks.Service
	nextTask *nexttask.Service
	respond  *respond.Service
	logger   log.Logger
}

// New creates a new SDK client backed by a SQLite database.
//
// The caller must call [Client.Close] when done to release the database
// connection.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger := cfg.Logger

	// The SDK doesn't serve streams, changes are not published.
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath:    cfg.DBPath,
		Publisher: changefeed.NoopPublisher,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	c, err := newClient(ctx, repo, cfg)
	if err != nil {
		_ = repo.Close()
		return nil, err
	}
	return c, nil
}

func newClient(ctx context.Context, repo *sqlite.Repository, cfg Config) (*Client, error) {
	logger := cfg.Logger

	reg, err := transform.NewRegistry(ctx, transform.RegistryConfig{
		Sources: []transform.Source{transform.Builtins, transform.NewFileSource(cfg.TransformsFile)},
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create transform registry: %w", err)
	}
	engine, err := transform.NewEngine(transform.EngineConfig{
		Registry:   reg,
		Repository: repo,
		DataDir:    cfg.DataDir,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create transform engine: %w", err)
	}

	cascadeSvc, err := cascade.NewService(cascade.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("could not create cascade service: %w", err)
	}
	deriveSvc, err := derive.NewService(derive.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("could not create derive service: %w", err)
	}
	clearSvc, err := clear.NewService(clear.ServiceConfig{Repository: repo, Cascade: cascadeSvc, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("could not create clear service: %w", err)
	}
	issueSvc, err := issue.NewService(issue.ServiceConfig{
		Repository: repo,
		Transforms: engine,
		Deriver:    deriveSvc,
		Clearer:    clearSvc,
		Files:      cascadeSvc,
		DataDir:    cfg.DataDir,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create issue service: %w", err)
	}
	tasksSvc, err := tasks.NewService(tasks.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("could not create tasks service: %w", err)
	}
	nextSvc, err := nexttask.NewService(nexttask.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("could not create next task service: %w", err)
	}
	respondSvc, err := respond.NewService(respond.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("could not create respond service: %w", err)
	}

	return &Client{
		repo:     repo,
		registry: reg,
		issue:    issueSvc,
		clear:    clearSvc,
		tasks:    tasksSvc,
		nextTask: nextSvc,
		respond:  respondSvc,
		logger:   logger,
	}, nil
}

// Close releases resources held by the client, including the database connection.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	return c.repo.Close()
}

// ReloadTransforms reads the transform definitions file again. On error the
// previous definitions are kept.
func (c *Client) ReloadTransforms(ctx context.Context) error {
	return mapError(c.registry.Refresh(ctx))
}

// Transforms returns the names of the registered command and load transforms.
func (c *Client) Transforms() (command, load []string) {
	return c.registry.Names()
}

func (c *Client) identity(ctx context.Context, operator string) (model.Identity, error) {
	if operator == "" {
		return model.Identity{}, fmt.Errorf("operator is required: %w", ErrNotValid)
	}
	id, err := api.IdentityFor(ctx, c.repo, operator)
	if err != nil {
		return model.Identity{}, mapError(err)
	}
	return *id, nil
}
