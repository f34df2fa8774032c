package transform_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/opsdesk/internal/conventions"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/transform"
)

type fakeSteps struct {
	command []model.CommandTransform
	load    []model.Transform
}

func (f fakeSteps) ListCommandTransforms(_ context.Context, _, _ int64, onlyActive bool) ([]model.CommandTransform, error) {
	var out []model.CommandTransform
	for _, c := range f.command {
		if onlyActive && !c.Active {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f fakeSteps) ListTransforms(_ context.Context, _ int64, _ model.TransformPhase, onlyActive bool) ([]model.Transform, error) {
	var out []model.Transform
	for _, t := range f.load {
		if onlyActive && !t.Active {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

var failing = transform.SourceFunc(func(_ context.Context, base transform.Funcs) (transform.Funcs, error) {
	base.Command["explode"] = func(context.Context, string, string) (string, error) {
		return "", errors.New("boom")
	}
	return base, nil
})

func newEngine(t *testing.T, steps fakeSteps, dataDir string) *transform.Engine {
	t.Helper()
	reg, err := transform.NewRegistry(context.TODO(), transform.RegistryConfig{
		Sources: []transform.Source{transform.Builtins, failing},
	})
	require.NoError(t, err)
	e, err := transform.NewEngine(transform.EngineConfig{
		Registry:   reg,
		Repository: steps,
		DataDir:    dataDir,
		TimeNow:    func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	require.NoError(t, err)
	return e
}

func ct(order int, name, param string, active bool) model.CommandTransform {
	return model.CommandTransform{Order: order, Name: name, Parameter: param, Active: active}
}

func TestEngineRunCommandChain(t *testing.T) {
	tests := map[string]struct {
		steps     []model.CommandTransform
		params    string
		toggles   map[int]bool
		expParams string
		expTrace  map[string]any
		expErr    bool
		expStep   string
		expIndex  int
	}{
		"Without transforms the params should be returned as they are.": {
			params:    `{"path": "/tmp"}`,
			expParams: `{"path": "/tmp"}`,
			expTrace:  map[string]any{"0 - initial params": `{"path": "/tmp"}`},
		},

		"Inactive transforms should not run.": {
			steps:     []model.CommandTransform{ct(1, "upper", "", false), ct(2, "append", "!", false)},
			params:    "ls",
			expParams: "ls",
			expTrace:  map[string]any{"0 - initial params": "ls"},
		},

		"Transforms should run in order threading the output.": {
			steps:     []model.CommandTransform{ct(1, "upper", "", true), ct(2, "append", "!", true), ct(3, "prepend", "> ", true)},
			params:    "ls",
			expParams: "> LS!",
			expTrace: map[string]any{
				"0 - initial params": "ls",
				"1 - upper":          "LS",
				"2 - append":         "LS!",
				"3 - prepend":        "> LS!",
			},
		},

		"A toggled off step should be skipped.": {
			steps:     []model.CommandTransform{ct(1, "upper", "", true), ct(2, "append", "!", true)},
			params:    "ls",
			toggles:   map[int]bool{1: false, 2: true},
			expParams: "ls!",
			expTrace: map[string]any{
				"0 - initial params": "ls",
				"2 - append":         "ls!",
			},
		},

		"A failing step should abort with the step name and index.": {
			steps:    []model.CommandTransform{ct(1, "upper", "", true), ct(4, "explode", "", true), ct(5, "append", "!", true)},
			params:   "ls",
			expErr:   true,
			expStep:  "explode",
			expIndex: 1,
		},

		"An unknown step should fail.": {
			steps:    []model.CommandTransform{ct(1, "missing", "", true)},
			params:   "ls",
			expErr:   true,
			expStep:  "missing",
			expIndex: 0,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			e := newEngine(t, fakeSteps{command: test.steps}, t.TempDir())
			res, err := e.RunCommandChain(context.TODO(), transform.CommandChainRequest{Params: test.params, Toggles: test.toggles})

			if test.expErr {
				require.Error(err)
				assert.ErrorIs(err, model.ErrTransformFailure)
				var terr *model.TransformError
				require.ErrorAs(err, &terr)
				assert.Equal(test.expStep, terr.Step)
				assert.Equal(test.expIndex, terr.Index)
				return
			}
			require.NoError(err)
			assert.Equal(test.expParams, res.Params)
			assert.Equal(test.expTrace, res.Trace.Map())
		})
	}
}

func TestEngineToggleOffEqualsMissingStep(t *testing.T) {
	require := require.New(t)

	all := []model.CommandTransform{ct(1, "base64_encode", "", true), ct(2, "upper", "", true), ct(3, "append", "=", true)}
	missing := []model.CommandTransform{all[0], all[2]}

	toggled, err := newEngine(t, fakeSteps{command: all}, t.TempDir()).
		RunCommandChain(context.TODO(), transform.CommandChainRequest{Params: "whoami", Toggles: map[int]bool{2: false}})
	require.NoError(err)
	physical, err := newEngine(t, fakeSteps{command: missing}, t.TempDir()).
		RunCommandChain(context.TODO(), transform.CommandChainRequest{Params: "whoami"})
	require.NoError(err)

	assert.Equal(t, physical.Params, toggled.Params)
	assert.Equal(t, physical.Trace.Map(), toggled.Trace.Map())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestEngineRunLoadChain(t *testing.T) {
	lt := func(order int, name, param string) model.Transform {
		return model.Transform{Order: order, Name: name, Parameter: param, Active: true, Phase: model.TransformPhaseLoad}
	}

	tests := map[string]struct {
		steps      []model.Transform
		commands   []string
		template   bool
		expPath    func(dataDir string) string
		expContent string
		expErr     error
	}{
		"A single command without transforms should load the command file itself.": {
			commands:   []string{"shell"},
			expPath:    func(d string) string { return conventions.CommandPath(d, "poseidon", "shell") },
			expContent: "shell-code",
		},

		"Multiple commands without transforms should fail.": {
			commands: []string{"shell", "ls"},
			expErr:   model.ErrFilePrep,
		},

		"Outputs in the working dir should be kept in the operation dir.": {
			steps:    []model.Transform{lt(1, "concat", "")},
			commands: []string{"shell", "ls"},
			expPath: func(d string) string {
				return filepath.Join(conventions.OperationPayloadsDir(d, "op1"), "load-2026-01-02-03:04:05")
			},
			expContent: "shell-code\nls-code\n",
		},

		"A payload type template should not end in the loaded files.": {
			steps:    []model.Transform{lt(1, "collect", ""), lt(2, "concat", "")},
			commands: []string{"shell"},
			template: true,
			expPath: func(d string) string {
				return filepath.Join(conventions.OperationPayloadsDir(d, "op1"), "load-2026-01-02-03:04:05")
			},
			expContent: "shell-code\n",
		},

		"A failing load step should return a transform error.": {
			steps:    []model.Transform{lt(1, "missing", "")},
			commands: []string{"shell"},
			expErr:   model.ErrTransformFailure,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			dataDir := t.TempDir()
			writeFile(t, conventions.CommandPath(dataDir, "poseidon", "shell"), "shell-code")
			writeFile(t, conventions.CommandPath(dataDir, "poseidon", "ls"), "ls-code")
			if test.template {
				writeFile(t, filepath.Join(conventions.PayloadTypeTemplateDir(dataDir, "poseidon"), "agent.py"), "c2=C2PROFILE_NAME_HERE")
			}

			e := newEngine(t, fakeSteps{load: test.steps}, dataDir)
			res, err := e.RunLoadChain(context.TODO(), transform.LoadChainRequest{
				PayloadTypeName: "poseidon",
				C2ProfileName:   "http",
				OperationName:   "op1",
				Commands:        test.commands,
			})

			// Working dirs are always removed.
			entries, _ := os.ReadDir(conventions.OperationPayloadsDir(dataDir, "op1"))
			for _, e := range entries {
				assert.False(e.IsDir(), "working dir %q was not removed", e.Name())
			}

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				return
			}
			require.NoError(err)
			assert.Equal(test.expPath(dataDir), res.Path)
			got, err := os.ReadFile(res.Path)
			require.NoError(err)
			assert.Equal(test.expContent, string(got))
		})
	}
}
