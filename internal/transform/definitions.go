package transform

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ParamPlaceholder in a definition step parameter is replaced by the parameter of the
// configured step that invoked the definition.
const ParamPlaceholder = "{{param}}"

// Definitions is the YAML document of composed transforms.
//
//	command:
//	  b64_twice:
//	    - func: base64_encode
//	    - func: base64_encode
//	load:
//	  bundle:
//	    - func: collect
//	    - func: zip
//	      parameter: "{{param}}"
type Definitions struct {
	Command map[string][]DefinitionStep `yaml:"command"`
	Load    map[string][]DefinitionStep `yaml:"load"`
}

// DefinitionStep is a call to an already registered transform.
type DefinitionStep struct {
	Func string `yaml:"func"`
	// Parameter is passed to the function. Empty passes the invoking parameter through.
	Parameter string `yaml:"parameter"`
}

func (d DefinitionStep) parameter(invoking string) string {
	if d.Parameter == "" {
		return invoking
	}
	return strings.ReplaceAll(d.Parameter, ParamPlaceholder, invoking)
}

// FileSource is a Source backed by a YAML definitions file. The file is parsed again
// on refresh only after Invalidate was called, unless nothing is watching it, in which
// case every refresh reads it.
type FileSource struct {
	path    string
	watched bool

	mu    sync.Mutex
	dirty bool
	defs  *Definitions
}

// NewFileSource returns a new definitions file source.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, dirty: true}
}

// Path returns the definitions file path.
func (f *FileSource) Path() string { return f.path }

// Invalidate marks the definitions as stale.
func (f *FileSource) Invalidate() {
	f.mu.Lock()
	f.dirty = true
	f.mu.Unlock()
}

func (f *FileSource) setWatched(w bool) {
	f.mu.Lock()
	f.watched = w
	f.dirty = true
	f.mu.Unlock()
}

// Funcs satisfies Source.
func (f *FileSource) Funcs(_ context.Context, base Funcs) (Funcs, error) {
	defs, err := f.definitions()
	if err != nil {
		return Funcs{}, err
	}
	return defs.compose(base)
}

func (f *FileSource) definitions() (*Definitions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.defs != nil && f.watched && !f.dirty {
		return f.defs, nil
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		// A missing file is an empty set of definitions, it may be created later.
		if errors.Is(err, fs.ErrNotExist) {
			f.defs = &Definitions{}
			f.dirty = false
			return f.defs, nil
		}
		return nil, fmt.Errorf("could not read transform definitions: %w", err)
	}

	var defs Definitions
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("could not parse transform definitions %q: %w", f.path, err)
	}

	f.defs = &defs
	f.dirty = false
	return f.defs, nil
}

// compose returns base plus the definitions, each one chaining base functions.
func (d Definitions) compose(base Funcs) (Funcs, error) {
	funcs := copyFuncs(base)

	for name, steps := range d.Command {
		if len(steps) == 0 {
			return Funcs{}, fmt.Errorf("command definition %q has no steps", name)
		}
		fns := make([]CommandFunc, 0, len(steps))
		for _, s := range steps {
			fn, ok := base.Command[s.Func]
			if !ok {
				return Funcs{}, fmt.Errorf("command definition %q uses unknown function %q", name, s.Func)
			}
			fns = append(fns, fn)
		}
		steps := steps
		funcs.Command[name] = func(ctx context.Context, value, parameter string) (string, error) {
			var err error
			for i, fn := range fns {
				value, err = fn(ctx, value, steps[i].parameter(parameter))
				if err != nil {
					return "", fmt.Errorf("%s: %w", steps[i].Func, err)
				}
			}
			return value, nil
		}
	}

	for name, steps := range d.Load {
		if len(steps) == 0 {
			return Funcs{}, fmt.Errorf("load definition %q has no steps", name)
		}
		fns := make([]LoadFunc, 0, len(steps))
		for _, s := range steps {
			fn, ok := base.Load[s.Func]
			if !ok {
				return Funcs{}, fmt.Errorf("load definition %q uses unknown function %q", name, s.Func)
			}
			fns = append(fns, fn)
		}
		steps := steps
		funcs.Load[name] = func(ctx context.Context, env LoadEnv, paths []string, parameter string) ([]string, error) {
			var err error
			for i, fn := range fns {
				paths, err = fn(ctx, env, paths, steps[i].parameter(parameter))
				if err != nil {
					return nil, fmt.Errorf("%s: %w", steps[i].Func, err)
				}
			}
			return paths, nil
		}
	}

	return funcs, nil
}
