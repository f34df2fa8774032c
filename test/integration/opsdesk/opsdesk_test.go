package opsdesk_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	intopsdesk "github.com/slok/opsdesk/test/integration/opsdesk"
	"github.com/slok/opsdesk/test/integration/testutils"
)

const seed = `
operators:
  - username: alice
    operations: [red]
    current_operation: red
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

const authFile = `
tokens:
  - token: alice-token
    username: alice
`

func freeAddress(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

type server struct {
	url string
}

// startServer seeds a fresh data dir and serves it until the test ends.
func startServer(t *testing.T, config intopsdesk.Config) server {
	t.Helper()

	dir := t.TempDir()
	env := []string{"OPSDESK_DATA_DIR=" + dir}

	seedPath := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(seed), 0644))
	authPath := filepath.Join(dir, "auth.yaml")
	require.NoError(t, os.WriteFile(authPath, []byte(authFile), 0644))

	_, stderr, err := testutils.RunOpsdesk(context.Background(), env, config.Binary, "seed --file "+seedPath, true)
	require.NoError(t, err, string(stderr))

	addr := freeAddress(t)
	ctx, cancel := context.WithCancel(context.Background())
	cmd := testutils.OpsdeskCmd(ctx, env, config.Binary, []string{"serve", "--listen-address", addr, "--auth-file", authPath}, true)
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		cancel()
		_ = cmd.Wait()
	})

	url := "http://" + addr
	require.Eventually(t, func() bool {
		resp, err := http.Get(url + "/metrics")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 100*time.Millisecond)

	return server{url: url}
}

func (s server) do(t *testing.T, method, path, body string, auth bool) (int, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, s.url+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer alice-token")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	out := map[string]any{}
	_ = json.Unmarshal(buf.Bytes(), &out)
	return resp.StatusCode, out
}

func TestOpsdeskServeTaskingFlow(t *testing.T) {
	config := intopsdesk.NewConfig(t)
	assert := assert.New(t)
	require := require.New(t)

	srv := startServer(t, config)

	// Watch callbacks of the current operation.
	wsURL := strings.Replace(srv.url, "http", "ws", 1) + "/api/v1/ws/callbacks/current_operation?token=alice-token"
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(err)
	defer ws.Close()

	require.NoError(ws.SetReadDeadline(time.Now().Add(5 * time.Second)))
	_, msg, err := ws.ReadMessage()
	require.NoError(err)
	var cb map[string]any
	require.NoError(json.Unmarshal(msg, &cb))
	assert.Equal("web-01", cb["host"])

	// Issue.
	status, body := srv.do(t, http.MethodPost, "/api/v1/callbacks/1/tasks", `{"command":"ls","params":"/root"}`, true)
	require.Equal(http.StatusOK, status, body)
	assert.Equal("success", body["status"])
	taskID := int64(body["id"].(float64))

	// Agent.
	status, body = srv.do(t, http.MethodGet, "/api/v1/agent/callbacks/1/nexttask", "", false)
	require.Equal(http.StatusOK, status)
	assert.Equal("ls", body["command"])
	assert.Equal("/root", body["params"])

	status, _ = srv.do(t, http.MethodPost, fmt.Sprintf("/api/v1/agent/tasks/%d/responses", taskID), `{"response":".bashrc"}`, false)
	require.Equal(http.StatusOK, status)

	status, body = srv.do(t, http.MethodGet, fmt.Sprintf("/api/v1/tasks/%d", taskID), "", true)
	require.Equal(http.StatusOK, status)
	task := body["task"].(map[string]any)
	assert.Equal("processed", task["status"])
	assert.Len(body["responses"], 1)

	// Unauthenticated operators are rejected.
	status, _ = srv.do(t, http.MethodGet, "/api/v1/tasks", "", false)
	assert.Equal(http.StatusUnauthorized, status)
}

func TestOpsdeskCLI(t *testing.T) {
	config := intopsdesk.NewConfig(t)
	assert := assert.New(t)
	require := require.New(t)

	ctx := context.Background()
	dir := t.TempDir()
	env := []string{"OPSDESK_DATA_DIR=" + dir, "OPSDESK_OPERATOR=alice"}

	seedPath := filepath.Join(dir, "seed.yaml")
	require.NoError(os.WriteFile(seedPath, []byte(seed), 0644))
	_, stderr, err := testutils.RunOpsdesk(ctx, env, config.Binary, "seed --file "+seedPath, true)
	require.NoError(err, string(stderr))

	_, stderr, err = testutils.RunOpsdeskArgs(ctx, env, config.Binary, []string{"task", "issue", "-c", "1", "--command", "ls", "--params", "/home/alice docs"}, true)
	require.NoError(err, string(stderr))

	stdout, stderr, err := testutils.RunOpsdesk(ctx, env, config.Binary, "task list --format json", true)
	require.NoError(err, string(stderr))
	var tasks []map[string]any
	require.NoError(json.Unmarshal(stdout, &tasks))
	require.Len(tasks, 1)
	assert.Equal("/home/alice docs", tasks[0]["params"])

	stdout, stderr, err = testutils.RunOpsdesk(ctx, env, config.Binary, "task clear -c 1 all", true)
	require.NoError(err, string(stderr))
	assert.Contains(string(stdout), "ls")

	_, _, err = testutils.RunOpsdesk(ctx, env, config.Binary, "task issue -c 1 --command nope", true)
	assert.Error(err)
}
