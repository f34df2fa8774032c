package transform

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/opsdesk/internal/conventions"
	"github.com/slok/opsdesk/internal/log"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/utils/file"
)

const (
	ChainCommand = "command"
	ChainLoad    = "load"

	// InitialTraceLabel is the trace label of the chain input.
	InitialTraceLabel = "0 - initial params"

	// Placeholders replaced in payload type template files when seeding a load working dir.
	TemplateC2ProfilePlaceholder = "C2PROFILE_NAME_HERE"
	TemplateUUIDPlaceholder      = "UUID_HERE"
)

// StepRepository is the storage the engine reads chain configuration from.
type StepRepository interface {
	ListCommandTransforms(ctx context.Context, commandID, operationID int64, onlyActive bool) ([]model.CommandTransform, error)
	ListTransforms(ctx context.Context, payloadTypeID int64, phase model.TransformPhase, onlyActive bool) ([]model.Transform, error)
}

// TraceStep is the output of one executed chain step.
type TraceStep struct {
	Order int
	Name  string
	Value any
}

// Label returns the step label, "<order> - <name>".
func (t TraceStep) Label() string {
	if t.Order == 0 {
		return InitialTraceLabel
	}
	return strconv.Itoa(t.Order) + " - " + t.Name
}

// Trace is the ordered output of every executed step, starting with the chain input.
type Trace []TraceStep

// Map returns the trace keyed by step label.
func (t Trace) Map() map[string]any {
	m := make(map[string]any, len(t))
	for _, s := range t {
		m[s.Label()] = s.Value
	}
	return m
}

// EngineConfig is the configuration of the transform engine.
type EngineConfig struct {
	Registry   *Registry
	Repository StepRepository
	DataDir    string
	// TimeNow is used to name load outputs.
	TimeNow func() time.Time
	Logger  log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.Registry == nil {
		return fmt.Errorf("registry is required")
	}
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data dir is required")
	}
	if c.TimeNow == nil {
		c.TimeNow = time.Now
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "transform.Engine"})
	return nil
}

// Engine runs transform chains.
type Engine struct {
	registry *Registry
	repo     StepRepository
	dataDir  string
	timeNow  func() time.Time
	logger   log.Logger
}

// NewEngine returns a new transform engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		registry: cfg.Registry,
		repo:     cfg.Repository,
		dataDir:  cfg.DataDir,
		timeNow:  cfg.TimeNow,
		logger:   cfg.Logger,
	}, nil
}

// Registry returns the engine function registry.
func (e *Engine) Registry() *Registry { return e.registry }

type CommandChainRequest struct {
	CommandID   int64
	OperationID int64
	Params      string
	// Toggles disables configured steps for this run only, keyed by step order.
	// Steps missing from the map run.
	Toggles map[int]bool
}

type CommandChainResult struct {
	Params string
	Trace  Trace
}

// RunCommandChain runs the active command transforms of a command over the params.
func (e *Engine) RunCommandChain(ctx context.Context, req CommandChainRequest) (*CommandChainResult, error) {
	steps, err := e.repo.ListCommandTransforms(ctx, req.CommandID, req.OperationID, true)
	if err != nil {
		return nil, fmt.Errorf("could not list command transforms: %w", err)
	}

	res := &CommandChainResult{
		Params: req.Params,
		Trace:  Trace{{Value: req.Params}},
	}
	if len(steps) == 0 {
		return res, nil
	}

	if err := e.registry.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("could not refresh transform registry: %w", err)
	}

	index := 0
	for _, step := range steps {
		if enabled, ok := req.Toggles[step.Order]; ok && !enabled {
			e.logger.Debugf("Command transform %q (order %d) toggled off", step.Name, step.Order)
			continue
		}

		fn, ok := e.registry.CommandFunc(step.Name)
		if !ok {
			return nil, &model.TransformError{Chain: ChainCommand, Step: step.Name, Index: index, Order: step.Order, Err: fmt.Errorf("unknown transform: %w", model.ErrNotFound)}
		}

		out, err := fn(ctx, res.Params, step.Parameter)
		if err != nil {
			return nil, &model.TransformError{Chain: ChainCommand, Step: step.Name, Index: index, Order: step.Order, Err: err}
		}

		res.Params = out
		res.Trace = append(res.Trace, TraceStep{Order: step.Order, Name: step.Name, Value: out})
		index++
	}

	return res, nil
}

type LoadChainRequest struct {
	PayloadTypeID   int64
	PayloadTypeName string
	C2ProfileName   string
	OperationName   string
	Commands        []string
}

type LoadChainResult struct {
	// Path is the single file that will be loaded, never inside the removed working dir.
	Path  string
	Trace Trace
}

// RunLoadChain runs the active load transforms of a payload type over the files of the
// requested commands.
func (e *Engine) RunLoadChain(ctx context.Context, req LoadChainRequest) (res *LoadChainResult, err error) {
	if len(req.Commands) == 0 {
		return nil, fmt.Errorf("at least one command is required: %w", model.ErrNotValid)
	}

	steps, err := e.repo.ListTransforms(ctx, req.PayloadTypeID, model.TransformPhaseLoad, true)
	if err != nil {
		return nil, fmt.Errorf("could not list load transforms: %w", err)
	}

	id := ulid.Make().String()
	workingDir := conventions.LoadWorkingDir(e.dataDir, req.OperationName, id)
	if err := os.MkdirAll(workingDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create working dir: %w: %w", model.ErrFilePrep, err)
	}
	defer func() {
		if rerr := os.RemoveAll(workingDir); rerr != nil {
			e.logger.Warningf("Could not remove load working dir %q: %s", workingDir, rerr)
		}
	}()

	if err := seedWorkingDir(conventions.PayloadTypeTemplateDir(e.dataDir, req.PayloadTypeName), workingDir, req.C2ProfileName, id); err != nil {
		return nil, fmt.Errorf("could not seed working dir: %w: %w", model.ErrFilePrep, err)
	}

	paths := make([]string, 0, len(req.Commands))
	for _, c := range req.Commands {
		paths = append(paths, conventions.CommandPath(e.dataDir, req.PayloadTypeName, c))
	}
	trace := Trace{{Value: paths}}

	if len(steps) > 0 {
		if err := e.registry.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("could not refresh transform registry: %w", err)
		}
	}

	env := LoadEnv{WorkingDir: workingDir, PayloadType: req.PayloadTypeName, Operation: req.OperationName}
	for i, step := range steps {
		fn, ok := e.registry.LoadFunc(step.Name)
		if !ok {
			return nil, &model.TransformError{Chain: ChainLoad, Step: step.Name, Index: i, Order: step.Order, Err: fmt.Errorf("unknown transform: %w", model.ErrNotFound)}
		}
		out, err := fn(ctx, env, paths, step.Parameter)
		if err != nil {
			return nil, &model.TransformError{Chain: ChainLoad, Step: step.Name, Index: i, Order: step.Order, Err: err}
		}
		paths = out
		trace = append(trace, TraceStep{Order: step.Order, Name: step.Name, Value: out})
	}

	if len(paths) != 1 {
		return nil, fmt.Errorf("load chain must end with exactly one file, got %d: %w", len(paths), model.ErrFilePrep)
	}

	path := paths[0]
	if inDir(workingDir, path) {
		dst := conventions.LoadOutputPath(e.dataDir, req.OperationName, e.timeNow())
		if err := file.Copy(path, dst); err != nil {
			return nil, fmt.Errorf("could not keep load output: %w: %w", model.ErrFilePrep, err)
		}
		path = dst
	}

	return &LoadChainResult{Path: path, Trace: trace}, nil
}

// seedWorkingDir copies the payload type template into the working dir replacing
// the template placeholders of every top level file.
func seedWorkingDir(templateDir, workingDir, c2Profile, id string) error {
	if _, err := os.Stat(templateDir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	if err := file.CopyDir(templateDir, workingDir); err != nil {
		return err
	}

	entries, err := os.ReadDir(workingDir)
	if err != nil {
		return err
	}
	r := strings.NewReplacer(TemplateC2ProfilePlaceholder, c2Profile, TemplateUUIDPlaceholder, id)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(workingDir, e.Name())
		b, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(r.Replace(string(b))), 0644); err != nil {
			return err
		}
	}

	return nil
}

func inDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
