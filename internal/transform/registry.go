package transform

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/slok/opsdesk/internal/log"
)

// CommandFunc transforms task parameters. parameter is the step's configured parameter.
type CommandFunc func(ctx context.Context, value, parameter string) (string, error)

// LoadEnv is what a load step knows about where it runs.
type LoadEnv struct {
	// WorkingDir is scratch space removed once the chain finishes.
	WorkingDir  string
	PayloadType string
	Operation   string
}

// LoadFunc transforms the set of files that will be loaded into an agent.
type LoadFunc func(ctx context.Context, env LoadEnv, paths []string, parameter string) ([]string, error)

// Funcs are named transform functions.
type Funcs struct {
	Command map[string]CommandFunc
	Load    map[string]LoadFunc
}

// Source provides transform functions. Sources are asked again on every refresh so
// edits take effect without restarting.
type Source interface {
	Funcs(ctx context.Context, base Funcs) (Funcs, error)
}

// SourceFunc is a helper to use functions as Sources.
type SourceFunc func(ctx context.Context, base Funcs) (Funcs, error)

func (s SourceFunc) Funcs(ctx context.Context, base Funcs) (Funcs, error) { return s(ctx, base) }

// RegistryConfig is the configuration of the transform registry.
type RegistryConfig struct {
	// Sources are applied in order, each one sees the funcs of the previous ones and
	// can add or override names.
	Sources []Source
	Logger  log.Logger
}

func (c *RegistryConfig) defaults() error {
	if len(c.Sources) == 0 {
		c.Sources = []Source{Builtins}
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "transform.Registry"})
	return nil
}

// Registry resolves transform functions by name.
type Registry struct {
	sources []Source
	logger  log.Logger
	group   singleflight.Group
	// rebuildMu serializes rebuilds so functions are replaced in the order they were read.
	rebuildMu sync.Mutex

	mu    sync.RWMutex
	funcs Funcs
}

// NewRegistry returns a new registry loaded from its sources.
func NewRegistry(ctx context.Context, cfg RegistryConfig) (*Registry, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	r := &Registry{
		sources: cfg.Sources,
		logger:  cfg.Logger,
	}
	if err := r.Refresh(ctx); err != nil {
		return nil, err
	}

	return r, nil
}

const refreshKey = "refresh"

// Refresh rebuilds the registry from its sources. Refreshes waiting for the same rebuild
// share it, a rebuild that already read its sources is never shared so every caller sees
// the source edits made before it called.
func (r *Registry) Refresh(ctx context.Context) error {
	_, err, _ := r.group.Do(refreshKey, func() (any, error) {
		r.rebuildMu.Lock()
		defer r.rebuildMu.Unlock()
		r.group.Forget(refreshKey)

		funcs := Funcs{Command: map[string]CommandFunc{}, Load: map[string]LoadFunc{}}
		for _, s := range r.sources {
			f, err := s.Funcs(ctx, funcs)
			if err != nil {
				return nil, fmt.Errorf("could not load transform source: %w", err)
			}
			funcs = f
		}

		r.mu.Lock()
		r.funcs = funcs
		r.mu.Unlock()

		return nil, nil
	})
	if err != nil {
		r.logger.Errorf("Transform registry refresh failed, keeping previous functions: %s", err)
		return err
	}

	return nil
}

// CommandFunc returns a command transform by name.
func (r *Registry) CommandFunc(name string) (CommandFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.funcs.Command[name]
	return f, ok
}

// LoadFunc returns a load transform by name.
func (r *Registry) LoadFunc(name string) (LoadFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.funcs.Load[name]
	return f, ok
}

// Names returns the sorted names of the registered command and load transforms.
func (r *Registry) Names() (command, load []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for n := range r.funcs.Command {
		command = append(command, n)
	}
	for n := range r.funcs.Load {
		load = append(load, n)
	}
	sort.Strings(command)
	sort.Strings(load)

	return command, load
}

func copyFuncs(f Funcs) Funcs {
	out := Funcs{Command: make(map[string]CommandFunc, len(f.Command)), Load: make(map[string]LoadFunc, len(f.Load))}
	for k, v := range f.Command {
		out.Command[k] = v
	}
	for k, v := range f.Load {
		out.Load[k] = v
	}
	return out
}
