package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = `
operators:
  - username: alice
    admin: true
    operations: [red]
    current_operation: red
  - username: mallory
operations:
  - name: red
    admin: alice
c2_profiles:
  - name: http
    operator: alice
payload_types:
  - name: poseidon
    operator: alice
    commands:
      - cmd: ls
payloads:
  - tag: initial
    operator: alice
    payload_type: poseidon
    c2_profile: http
    operation: red
    callbacks:
      - user: root
        host: web-01
`

type cli struct {
	dir string
}

func newCLI(t *testing.T) cli {
	t.Helper()
	return cli{dir: t.TempDir()}
}

func (c cli) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	base := []string{
		"opsdesk", "--no-log",
		"--data-dir", c.dir,
		"--db-path", filepath.Join(c.dir, "opsdesk.db"),
		"--transforms-file", filepath.Join(c.dir, "transforms.yaml"),
	}
	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), append(base, args...), strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), err
}

func TestCLITaskingFlow(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	c := newCLI(t)
	seedPath := filepath.Join(c.dir, "seed.yaml")
	require.NoError(os.WriteFile(seedPath, []byte(testSeed), 0644))

	out, err := c.run(t, "", "seed", "--file", seedPath)
	require.NoError(err)
	assert.Contains(out, "Seeded 2 operators, 1 operations")

	// Issue.
	out, err = c.run(t, "", "task", "issue", "--operator", "alice", "--callback", "1", "--command", "ls", "--params", "/tmp", "--format", "json")
	require.NoError(err)
	var issued struct {
		Task map[string]any `json:"task"`
	}
	require.NoError(json.Unmarshal([]byte(out), &issued))
	assert.Equal("ls", issued.Task["command"])
	assert.Equal("/tmp", issued.Task["params"])
	assert.Equal("submitted", issued.Task["status"])

	// Agent picks it up and responds.
	out, err = c.run(t, "", "agent", "next", "--callback", "1")
	require.NoError(err)
	assert.JSONEq(`{"command":"ls","params":"/tmp","id":1}`, out)

	_, err = c.run(t, "file1\nfile2", "agent", "respond", "1")
	require.NoError(err)

	out, err = c.run(t, "", "task", "show", "1", "--operator", "alice", "--format", "json")
	require.NoError(err)
	var shown struct {
		Task      map[string]any   `json:"task"`
		Responses []map[string]any `json:"responses"`
	}
	require.NoError(json.Unmarshal([]byte(out), &shown))
	assert.Equal("processed", shown.Task["status"])
	require.Len(shown.Responses, 1)
	assert.Equal("file1\nfile2", shown.Responses[0]["response"])

	// Nothing left.
	out, err = c.run(t, "", "agent", "next", "--callback", "1")
	require.NoError(err)
	assert.JSONEq(`{"command":"none"}`, out)

	out, err = c.run(t, "", "task", "list", "--operator", "alice", "--format", "json")
	require.NoError(err)
	var listed []map[string]any
	require.NoError(json.Unmarshal([]byte(out), &listed))
	assert.Len(listed, 1)
}

func TestCLIErrors(t *testing.T) {
	tests := map[string]struct {
		args   []string
		errMsg string
	}{
		"Issuing an unknown command should fail showing the command.": {
			args:   []string{"task", "issue", "--operator", "alice", "--callback", "1", "--command", "rm", "--params", "-rf"},
			errMsg: `could not issue "rm" with params "-rf"`,
		},
		"Issuing without a current operation should fail.": {
			args:   []string{"task", "issue", "--operator", "mallory", "--callback", "1", "--command", "ls"},
			errMsg: "must be part of a current operation",
		},
		"Acting as an unknown operator should fail.": {
			args:   []string{"task", "list", "--operator", "eve"},
			errMsg: "could not resolve operator",
		},
		"Invalid toggles should fail.": {
			args:   []string{"task", "issue", "--operator", "alice", "--callback", "1", "--command", "ls", "--toggle", "x=true"},
			errMsg: "invalid toggles",
		},
		"Missing required flags should fail.": {
			args:   []string{"task", "issue", "--operator", "alice"},
			errMsg: "invalid command configuration",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			c := newCLI(t)
			seedPath := filepath.Join(c.dir, "seed.yaml")
			require.NoError(t, os.WriteFile(seedPath, []byte(testSeed), 0644))
			_, err := c.run(t, "", "seed", "--file", seedPath)
			require.NoError(t, err)

			_, err = c.run(t, "", test.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.errMsg)
		})
	}
}

func TestCLITransformList(t *testing.T) {
	c := newCLI(t)

	out, err := c.run(t, "", "transform", "list", "--format", "json")
	require.NoError(t, err)

	var got struct {
		Command []string `json:"command"`
		Load    []string `json:"load"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.Command)
	assert.NotEmpty(t, got.Load)
}
