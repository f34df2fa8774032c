package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

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
	"github.com/slok/opsdesk/internal/fanout"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/storage/sqlite"
	"github.com/slok/opsdesk/internal/storage/sqlite/sqlitetest"
	"github.com/slok/opsdesk/internal/transform"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

const (
	token      = "t0k3n"
	otherToken = "0th3r"
)

type env struct {
	repo    *sqlite.Repository
	hub     *changefeed.Hub
	f       sqlitetest.Fixture
	other   sqlitetest.Fixture
	dataDir string
	srv     *httptest.Server
}

type envOpts struct {
	pollRate  rate.Limit
	pollBurst int
}

func newEnv(t *testing.T, opts envOpts) env {
	t.Helper()
	require := require.New(t)

	hub := changefeed.NewHub()
	repo := sqlitetest.NewRepository(t, hub)
	f := sqlitetest.NewFixture(t, repo, "op1")
	other := sqlitetest.NewFixture(t, repo, "op2")
	dataDir := t.TempDir()

	reg, err := transform.NewRegistry(context.TODO(), transform.RegistryConfig{})
	require.NoError(err)
	engine, err := transform.NewEngine(transform.EngineConfig{Registry: reg, Repository: repo, DataDir: dataDir})
	require.NoError(err)
	files, err := cascade.NewService(cascade.ServiceConfig{Repository: repo})
	require.NoError(err)
	deriver, err := derive.NewService(derive.ServiceConfig{Repository: repo})
	require.NoError(err)
	clearer, err := clear.NewService(clear.ServiceConfig{Repository: repo, Cascade: files})
	require.NoError(err)
	issuer, err := issue.NewService(issue.ServiceConfig{
		Repository: repo,
		Transforms: engine,
		Deriver:    deriver,
		Clearer:    clearer,
		Files:      files,
		DataDir:    dataDir,
	})
	require.NoError(err)
	taskSvc, err := tasks.NewService(tasks.ServiceConfig{Repository: repo})
	require.NoError(err)
	next, err := nexttask.NewService(nexttask.ServiceConfig{Repository: repo})
	require.NoError(err)
	responder, err := respond.NewService(respond.ServiceConfig{Repository: repo})
	require.NoError(err)
	streams, err := fanout.NewEngine(fanout.EngineConfig{Repository: repo, Subscriber: hub})
	require.NoError(err)

	h, err := api.NewHandler(api.HandlerConfig{
		Issuer:    issuer,
		Clearer:   clearer,
		Tasks:     taskSvc,
		NextTask:  next,
		Responder: responder,
		Streams:   streams,
		Authenticator: api.NewTokenAuthenticator(map[string]string{
			token:      f.Operator.Username,
			otherToken: other.Operator.Username,
		}, repo),
		AgentPollRate:  opts.pollRate,
		AgentPollBurst: opts.pollBurst,
	})
	require.NoError(err)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return env{repo: repo, hub: hub, f: f, other: other, dataDir: dataDir, srv: srv}
}

func (e env) do(t *testing.T, method, path, tkn string, body any) (int, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tkn != "" {
		req.Header.Set("Authorization", "Bearer "+tkn)
	}

	return e.send(t, req)
}

func (e env) send(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(b) > 0 {
		require.NoError(t, json.Unmarshal(b, &out), string(b))
	}
	return resp.StatusCode, out
}

func tasksPath(cbID int64) string {
	return "/api/v1/callbacks/" + strconv.FormatInt(cbID, 10) + "/tasks"
}

func TestIssueTask(t *testing.T) {
	tests := map[string]struct {
		token     string
		callback  func(e env) int64
		setup     func(t *testing.T, e env)
		body      any
		expStatus int
		expBody   map[string]any
	}{
		"Issuing a command should return the created task.": {
			token:     token,
			body:      map[string]any{"command": "shell", "params": "whoami"},
			expStatus: http.StatusOK,
			expBody: map[string]any{
				"status":          "success",
				"task_status":     "submitted",
				"command":         "shell",
				"params":          "whoami",
				"original_params": "whoami",
			},
		},

		"Issuing a test command should return the transform outputs without task.": {
			token:     token,
			body:      map[string]any{"command": "shell", "params": "whoami", "test_command": true},
			expStatus: http.StatusOK,
			expBody: map[string]any{
				"status":      "success",
				"cmd":         "shell",
				"params":      "whoami",
				"test_output": map[string]any{transform.InitialTraceLabel: "whoami"},
			},
		},

		"Issuing a test command should return the params before the transforms.": {
			token: token,
			setup: func(t *testing.T, e env) {
				ct := model.CommandTransform{CommandID: e.f.Command.ID, OperationID: e.f.Operation.ID, OperatorID: e.f.Operator.ID, Name: "base64_encode", Order: 1, Active: true}
				require.NoError(t, e.repo.CreateCommandTransform(context.Background(), &ct))
			},
			body:      map[string]any{"command": "shell", "params": "whoami", "test_command": true},
			expStatus: http.StatusOK,
			expBody: map[string]any{
				"status": "success",
				"cmd":    "shell",
				"params": "whoami",
			},
		},

		"Issuing an unknown command should echo the command and params.": {
			token:     token,
			body:      map[string]any{"command": "frobnicate", "params": "x"},
			expStatus: http.StatusBadRequest,
			expBody:   map[string]any{"status": "error", "cmd": "frobnicate", "params": "x"},
		},

		"Issuing without command should fail validation.": {
			token:     token,
			body:      map[string]any{"params": "x"},
			expStatus: http.StatusBadRequest,
			expBody:   map[string]any{"status": "error", "cmd": "", "params": "x"},
		},

		"Issuing with a non numeric transform order should fail.": {
			token:     token,
			body:      map[string]any{"command": "shell", "params": "x", "transform_status": map[string]bool{"first": false}},
			expStatus: http.StatusBadRequest,
			expBody:   map[string]any{"status": "error", "cmd": "shell", "params": "x"},
		},

		"Issuing to a callback of another operation should be denied.": {
			token:     otherToken,
			body:      map[string]any{"command": "shell", "params": "whoami"},
			expStatus: http.StatusForbidden,
			expBody:   map[string]any{"status": "error", "cmd": "shell"},
		},

		"Issuing to a missing callback should return not found.": {
			token:     token,
			callback:  func(e env) int64 { return 9999 },
			body:      map[string]any{"command": "shell", "params": "whoami"},
			expStatus: http.StatusNotFound,
			expBody:   map[string]any{"status": "error"},
		},

		"Issuing without token should be unauthorized.": {
			body:      map[string]any{"command": "shell", "params": "whoami"},
			expStatus: http.StatusUnauthorized,
			expBody:   map[string]any{"status": "error"},
		},

		"Issuing with an unknown token should be unauthorized.": {
			token:     "nope",
			body:      map[string]any{"command": "shell", "params": "whoami"},
			expStatus: http.StatusUnauthorized,
			expBody:   map[string]any{"status": "error"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			e := newEnv(t, envOpts{})

			if test.setup != nil {
				test.setup(t, e)
			}
			cbID := e.f.Callback.ID
			if test.callback != nil {
				cbID = test.callback(e)
			}
			status, body := e.do(t, http.MethodPost, tasksPath(cbID), test.token, test.body)

			assert.Equal(test.expStatus, status)
			for k, v := range test.expBody {
				assert.Equal(v, body[k], k)
			}
		})
	}
}

func TestIssueTaskMultipart(t *testing.T) {
	type part struct {
		field, filename, data string
	}

	tests := map[string]struct {
		params    string
		parts     []part
		expFile   string
		expData   string
		expNoFile string
	}{
		"A field named after the params key should be the attachment.": {
			params:  `{"file": "FILEUPLOAD", "remote_path": "/tmp/x"}`,
			parts:   []part{{field: "file", filename: "tool.exe", data: "MZ"}},
			expFile: "tool.exe",
			expData: "MZ",
		},

		"A field prefixed with file should be the attachment of the key.": {
			params:  `{"binary": "FILEUPLOAD", "remote_path": "/tmp/x"}`,
			parts:   []part{{field: "filebinary", filename: "agent.bin", data: "ELF"}},
			expFile: "agent.bin",
			expData: "ELF",
		},

		"A prefixed field should win over a bare one.": {
			params: `{"binary": "FILEUPLOAD", "remote_path": "/tmp/x"}`,
			parts: []part{
				{field: "binary", filename: "bare.bin", data: "bare"},
				{field: "filebinary", filename: "prefixed.bin", data: "prefixed"},
			},
			expFile:   "prefixed.bin",
			expData:   "prefixed",
			expNoFile: "bare.bin",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			assert := assert.New(t)
			e := newEnv(t, envOpts{})

			issueBody, err := json.Marshal(map[string]any{"command": "shell", "params": test.params})
			require.NoError(err)

			var buf bytes.Buffer
			w := multipart.NewWriter(&buf)
			require.NoError(w.WriteField("json", string(issueBody)))
			for _, p := range test.parts {
				fw, err := w.CreateFormFile(p.field, p.filename)
				require.NoError(err)
				_, err = fw.Write([]byte(p.data))
				require.NoError(err)
			}
			require.NoError(w.Close())

			req, err := http.NewRequest(http.MethodPost, e.srv.URL+tasksPath(e.f.Callback.ID), &buf)
			require.NoError(err)
			req.Header.Set("Content-Type", w.FormDataContentType())
			req.Header.Set("Authorization", "Bearer "+token)

			status, body := e.send(t, req)
			require.Equal(http.StatusOK, status, body)
			assert.Equal("shell", body["command"])

			dir := conventions.OperationFilesDir(e.dataDir, e.f.Operation.Name)
			got, err := os.ReadFile(filepath.Join(dir, test.expFile))
			require.NoError(err)
			assert.Equal(test.expData, string(got))
			if test.expNoFile != "" {
				assert.NoFileExists(filepath.Join(dir, test.expNoFile))
			}
		})
	}
}

func TestAgentFlow(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	e := newEnv(t, envOpts{})

	nextPath := "/api/v1/agent/callbacks/" + strconv.FormatInt(e.f.Callback.ID, 10) + "/nexttask"

	// Nothing queued.
	status, body := e.do(t, http.MethodGet, nextPath, "", nil)
	require.Equal(http.StatusOK, status)
	assert.Equal(map[string]any{"command": "none"}, body)

	status, issued := e.do(t, http.MethodPost, tasksPath(e.f.Callback.ID), token, map[string]any{"command": "shell", "params": "whoami"})
	require.Equal(http.StatusOK, status)
	taskID := int64(issued["id"].(float64))

	status, body = e.do(t, http.MethodGet, nextPath, "", nil)
	require.Equal(http.StatusOK, status)
	assert.Equal(map[string]any{"command": "shell", "params": "whoami", "id": float64(taskID)}, body)

	// Claimed tasks are not handed twice.
	_, body = e.do(t, http.MethodGet, nextPath, "", nil)
	assert.Equal(map[string]any{"command": "none"}, body)

	respPath := "/api/v1/agent/tasks/" + strconv.FormatInt(taskID, 10) + "/responses"
	status, body = e.do(t, http.MethodPost, respPath, "", map[string]any{"response": "root"})
	require.Equal(http.StatusOK, status)
	assert.Equal("root", body["response"])

	status, _ = e.do(t, http.MethodPost, respPath, "", map[string]any{})
	assert.Equal(http.StatusBadRequest, status)

	status, body = e.do(t, http.MethodGet, "/api/v1/tasks/"+strconv.FormatInt(taskID, 10), token, nil)
	require.Equal(http.StatusOK, status)
	task := body["task"].(map[string]any)
	assert.Equal("processed", task["status"])
	assert.Len(body["responses"], 1)

	// Other operations can't see it.
	status, _ = e.do(t, http.MethodGet, "/api/v1/tasks/"+strconv.FormatInt(taskID, 10), otherToken, nil)
	assert.Equal(http.StatusForbidden, status)
}

func TestAgentNextTaskNotFound(t *testing.T) {
	tests := map[string]struct {
		path    func(e env) string
		prepare func(t *testing.T, e env)
	}{
		"An unknown callback should return an empty not found.": {
			path: func(e env) string { return "/api/v1/agent/callbacks/9999/nexttask" },
		},

		"An invalid callback id should return an empty not found.": {
			path: func(e env) string { return "/api/v1/agent/callbacks/abc/nexttask" },
		},

		"A callback of a complete operation should return an empty not found.": {
			path: func(e env) string {
				return "/api/v1/agent/callbacks/" + strconv.FormatInt(e.f.Callback.ID, 10) + "/nexttask"
			},
			prepare: func(t *testing.T, e env) {
				op := e.f.Operation
				op.Complete = true
				require.NoError(t, e.repo.UpdateOperation(context.Background(), op))
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t, envOpts{})
			if test.prepare != nil {
				test.prepare(t, e)
			}

			status, body := e.do(t, http.MethodGet, test.path(e), "", nil)
			assert.Equal(t, http.StatusNotFound, status)
			assert.Empty(t, body)
		})
	}
}

func TestAgentPollRateLimit(t *testing.T) {
	e := newEnv(t, envOpts{pollRate: rate.Every(1 << 62), pollBurst: 1})

	path := "/api/v1/agent/callbacks/" + strconv.FormatInt(e.f.Callback.ID, 10) + "/nexttask"
	status, _ := e.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = e.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusTooManyRequests, status)

	// Other callbacks have their own budget.
	path = "/api/v1/agent/callbacks/" + strconv.FormatInt(e.other.Callback.ID, 10) + "/nexttask"
	status, _ = e.do(t, http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestClearTasks(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	e := newEnv(t, envOpts{})

	for _, p := range []string{"whoami", "id"} {
		status, _ := e.do(t, http.MethodPost, tasksPath(e.f.Callback.ID), token, map[string]any{"command": "shell", "params": p})
		require.Equal(http.StatusOK, status)
	}

	status, body := e.do(t, http.MethodPost, tasksPath(e.f.Callback.ID)+"/clear", token, map[string]any{"task": "all"})
	require.Equal(http.StatusOK, status)
	assert.Equal("success", body["status"])
	assert.Len(body["tasks"], 2)

	status, _ = e.do(t, http.MethodPost, tasksPath(e.f.Callback.ID)+"/clear", token, map[string]any{"task": "nope"})
	assert.Equal(http.StatusBadRequest, status)

	status, body = e.do(t, http.MethodGet, tasksPath(e.f.Callback.ID), token, nil)
	require.Equal(http.StatusOK, status)
	assert.Empty(body["tasks"])
}

func TestTaskComments(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	e := newEnv(t, envOpts{})

	task := e.f.CreateTask(t, e.repo, "whoami", model.TaskStatusProcessed)
	path := "/api/v1/tasks/" + strconv.FormatInt(task.ID, 10) + "/comment"

	status, body := e.do(t, http.MethodPost, path, token, map[string]any{"comment": "got root"})
	require.Equal(http.StatusOK, status)
	assert.Equal("got root", body["comment"])
	assert.Equal(e.f.Operator.Username, body["comment_operator"])

	status, _ = e.do(t, http.MethodGet, "/api/v1/tasks?commented=true", token, nil)
	require.Equal(http.StatusOK, status)

	status, _ = e.do(t, http.MethodPost, path, token, map[string]any{})
	assert.Equal(http.StatusBadRequest, status)

	status, body = e.do(t, http.MethodDelete, path, token, nil)
	require.Equal(http.StatusOK, status)
	assert.Equal("", body["comment"])
	assert.Equal("null", body["comment_operator"])
}

func TestListTasks(t *testing.T) {
	tests := map[string]struct {
		query     string
		expParams []string
	}{
		"Listing not completed tasks should skip processed ones.": {
			query:     "?not_completed=true",
			expParams: []string{"ls /etc"},
		},

		"Searching should match params.": {
			query:     "?search=whoami",
			expParams: []string{"whoami"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t, envOpts{})
			e.f.CreateTask(t, e.repo, "whoami", model.TaskStatusProcessed)
			e.f.CreateTask(t, e.repo, "ls /etc", model.TaskStatusSubmitted)
			e.other.CreateTask(t, e.repo, "ls /etc", model.TaskStatusSubmitted)

			status, body := e.do(t, http.MethodGet, "/api/v1/tasks"+test.query, token, nil)
			require.Equal(t, http.StatusOK, status)

			gotParams := []string{}
			for _, task := range body["tasks"].([]any) {
				gotParams = append(gotParams, task.(map[string]any)["params"].(string))
			}
			assert.Equal(t, test.expParams, gotParams)
		})
	}
}

func itoa(i int64) string { return strconv.FormatInt(i, 10) }
