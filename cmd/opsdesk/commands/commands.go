package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/opsdesk/internal/app/cascade"
	"github.com/slok/opsdesk/internal/app/clear"
	"github.com/slok/opsdesk/internal/app/derive"
	"github.com/slok/opsdesk/internal/app/issue"
	"github.com/slok/opsdesk/internal/app/nexttask"
	"github.com/slok/opsdesk/internal/app/respond"
	"github.com/slok/opsdesk/internal/app/tasks"
	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/conventions"
	"github.com/slok/opsdesk/internal/log"
	"github.com/slok/opsdesk/internal/metrics"
	"github.com/slok/opsdesk/internal/printer"
	"github.com/slok/opsdesk/internal/storage/sqlite"
	"github.com/slok/opsdesk/internal/transform"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug          bool
	NoLog          bool
	NoColor        bool
	LoggerType     string
	DBPath         string
	DataDir        string
	TransformsFile string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	defaultDataDir := filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir)
	app.Flag("data-dir", "Directory for uploaded files, payload templates and load outputs.").Envar("OPSDESK_DATA_DIR").Default(defaultDataDir).StringVar(&c.DataDir)
	app.Flag("db-path", "Path to the SQLite database file (default: <data-dir>/opsdesk.db).").Envar("OPSDESK_DB_PATH").StringVar(&c.DBPath)
	app.Flag("transforms-file", "YAML file with the transform definitions, reloaded on change by serve (default: <data-dir>/transforms.yaml).").Envar("OPSDESK_TRANSFORMS_FILE").StringVar(&c.TransformsFile)

	return c
}

// SetDefaults fills the paths that default relative to the data dir.
func (r *RootCommand) SetDefaults() {
	if r.DBPath == "" {
		r.DBPath = conventions.DBPath(r.DataDir)
	}
	if r.TransformsFile == "" {
		r.TransformsFile = conventions.TransformsPath(r.DataDir)
	}
}

func addFormatFlag(cmd *kingpin.CmdClause, format *string) {
	cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(format, formatTable, formatJSON)
}

func newPrinter(w io.Writer, format string) printer.Printer {
	if format == formatJSON {
		return printer.NewJSONPrinter(w)
	}
	return printer.NewTablePrinter(w)
}

func (r *RootCommand) newRepository(ctx context.Context, pub changefeed.Publisher) (*sqlite.Repository, error) {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath:    r.DBPath,
		Publisher: pub,
		Logger:    r.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create repository: %w", err)
	}
	return repo, nil
}

func (r *RootCommand) newRegistry(ctx context.Context) (*transform.Registry, *transform.FileSource, error) {
	defs := transform.NewFileSource(r.TransformsFile)
	reg, err := transform.NewRegistry(ctx, transform.RegistryConfig{
		Sources: []transform.Source{transform.Builtins, defs},
		Logger:  r.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create transform registry: %w", err)
	}
	return reg, defs, nil
}

// services are the application services wired on the same repository.
type services struct {
	registry    *transform.Registry
	definitions *transform.FileSource
	issue       *issue.Service
	clear       *clear.Service
	tasks       *tasks.Service
	nextTask    *nexttask.Service
	respond     *respond.Service
}

func (r *RootCommand) newServices(ctx context.Context, repo *sqlite.Repository, rec metrics.Recorder) (*services, error) {
	logger := r.Logger

	reg, defs, err := r.newRegistry(ctx)
	if err != nil {
		return nil, err
	}
	engine, err := transform.NewEngine(transform.EngineConfig{
		Registry:   reg,
		Repository: repo,
		DataDir:    r.DataDir,
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
		Repository:      repo,
		Transforms:      engine,
		Deriver:         deriveSvc,
		Clearer:         clearSvc,
		Files:           cascadeSvc,
		DataDir:         r.DataDir,
		MetricsRecorder: rec,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create issue service: %w", err)
	}
	tasksSvc, err := tasks.NewService(tasks.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("could not create tasks service: %w", err)
	}
	nextSvc, err := nexttask.NewService(nexttask.ServiceConfig{Repository: repo, MetricsRecorder: rec, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("could not create next task service: %w", err)
	}
	respondSvc, err := respond.NewService(respond.ServiceConfig{Repository: repo, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("could not create respond service: %w", err)
	}

	return &services{
		registry:    reg,
		definitions: defs,
		issue:       issueSvc,
		clear:       clearSvc,
		tasks:       tasksSvc,
		nextTask:    nextSvc,
		respond:     respondSvc,
	}, nil
}
