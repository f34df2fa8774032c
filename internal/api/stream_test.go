package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/opsdesk/internal/fanout"
	"github.com/slok/opsdesk/internal/model"
)

func (e env) dial(t *testing.T, stream, tkn string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/api/v1/ws/" + stream + "?token=" + tkn
	ws, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if ws != nil {
		t.Cleanup(func() { _ = ws.Close() })
	}
	return ws, resp, err
}

// readObject returns the next non heartbeat frame decoded.
func readObject(t *testing.T, ws *websocket.Conn) map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, b, err := ws.ReadMessage()
		require.NoError(t, err)
		if string(b) == fanout.Heartbeat {
			continue
		}
		obj := map[string]any{}
		require.NoError(t, json.Unmarshal(b, &obj))
		return obj
	}
}

// readHeartbeat consumes frames until the heartbeat that ends the replay.
func readHeartbeat(t *testing.T, ws *websocket.Conn) []map[string]any {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(3*time.Second)))
	replayed := []map[string]any{}
	for {
		_, b, err := ws.ReadMessage()
		require.NoError(t, err)
		if string(b) == fanout.Heartbeat {
			return replayed
		}
		obj := map[string]any{}
		require.NoError(t, json.Unmarshal(b, &obj))
		replayed = append(replayed, obj)
	}
}

func TestStreamCallbacks(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	e := newEnv(t, envOpts{})

	ws, _, err := e.dial(t, fanout.StreamCallbacksCurrentOp, token)
	require.NoError(err)

	replayed := readHeartbeat(t, ws)
	require.Len(replayed, 1)
	assert.Equal(float64(e.f.Callback.ID), replayed[0]["id"])

	// Wait until the stream is subscribed before changing rows.
	require.Eventually(func() bool { return e.hub.Subscriptions() == 1 }, 3*time.Second, 10*time.Millisecond)

	// A callback of another operation is not delivered.
	cb := e.other.Callback
	cb.ID = 0
	require.NoError(e.repo.CreateCallback(context.Background(), &cb))

	cb = e.f.Callback
	cb.ID = 0
	cb.Host = "host-new"
	require.NoError(e.repo.CreateCallback(context.Background(), &cb))

	got := readObject(t, ws)
	assert.Equal(float64(cb.ID), got["id"])
	assert.Equal("host-new", got["host"])
}

func TestStreamTasksViewFilter(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)
	e := newEnv(t, envOpts{})

	ws, _, err := e.dial(t, fanout.StreamTasksCurrentOperation, token)
	require.NoError(err)
	assert.Empty(readHeartbeat(t, ws))
	require.Eventually(func() bool { return e.hub.Subscriptions() == 1 }, 3*time.Second, 10*time.Millisecond)

	require.NoError(ws.WriteMessage(websocket.TextMessage, []byte("a"+itoa(e.f.Callback.ID))))
	// Malformed control frames are ignored.
	require.NoError(ws.WriteMessage(websocket.TextMessage, []byte("zzz")))

	objs := make(chan map[string]any, 100)
	go func() {
		defer close(objs)
		_ = ws.SetReadDeadline(time.Time{})
		for {
			_, b, err := ws.ReadMessage()
			if err != nil {
				return
			}
			obj := map[string]any{}
			if string(b) != fanout.Heartbeat && json.Unmarshal(b, &obj) == nil {
				objs <- obj
			}
		}
	}()

	// The view filter is applied asynchronously, tasks before that are not delivered.
	var got map[string]any
	require.Eventually(func() bool {
		e.other.CreateTask(t, e.repo, "other", model.TaskStatusSubmitted)
		e.f.CreateTask(t, e.repo, "whoami", model.TaskStatusSubmitted)
		select {
		case got = <-objs:
			return true
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
	assert.Equal("whoami", got["params"])
	assert.Equal(float64(e.f.Callback.ID), got["callback"])
}

func TestStreamErrors(t *testing.T) {
	tests := map[string]struct {
		stream    string
		token     string
		expStatus int
	}{
		"An unknown stream should return not found.": {
			stream:    "nope",
			token:     token,
			expStatus: http.StatusNotFound,
		},

		"An admin stream should be denied to non admins.": {
			stream:    fanout.StreamTasks,
			token:     token,
			expStatus: http.StatusForbidden,
		},

		"A stream without token should be unauthorized.": {
			stream:    fanout.StreamCallbacksCurrentOp,
			expStatus: http.StatusUnauthorized,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t, envOpts{})

			_, resp, err := e.dial(t, test.stream, test.token)
			require.ErrorIs(t, err, websocket.ErrBadHandshake)
			require.NotNil(t, resp)
			assert.Equal(t, test.expStatus, resp.StatusCode)
		})
	}
}
