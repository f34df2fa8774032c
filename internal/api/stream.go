package api

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/slok/opsdesk/internal/model"
)

const streamWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wsConn adapts a websocket to a fanout session. Sends and receives happen on
// different goroutines, never more than one of each.
type wsConn struct {
	ws *websocket.Conn
}

func (w wsConn) Send(ctx context.Context, frame string) error {
	deadline := time.Now().Add(streamWriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := w.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return w.ws.WriteMessage(websocket.TextMessage, []byte(frame))
}

func (w wsConn) Receive(ctx context.Context) (string, error) {
	for {
		typ, b, err := w.ws.ReadMessage()
		if err != nil {
			var cerr *websocket.CloseError
			if errors.As(err, &cerr) {
				return "", io.EOF
			}
			return "", err
		}
		if typ == websocket.TextMessage {
			return string(b), nil
		}
	}
}

func (h *handler) stream(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("stream"), "/")
	id := identity(c)

	if err := h.streams.Authorize(name, id); err != nil {
		h.writeError(c, err)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader already answered the client.
		h.logger.Warningf("Could not upgrade stream %q: %s", name, err)
		return
	}
	defer ws.Close()

	err = h.streams.Serve(c.Request.Context(), name, id, wsConn{ws: ws})
	code, reason := websocket.CloseNormalClosure, ""
	if err != nil {
		code, reason = websocket.CloseInternalServerErr, closeReason(err)
		if !errors.Is(err, model.ErrStreamFatal) {
			h.logger.Errorf("Stream %q failed: %s", name, err)
		}
	}
	msg := websocket.FormatCloseMessage(code, reason)
	_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

// maxCloseReason keeps the close frame payload, code included, within the 125 bytes of
// a control frame.
const maxCloseReason = 120

// closeReason returns the error message cut to fit a close frame on a rune boundary.
func closeReason(err error) string {
	reason := err.Error()
	if len(reason) <= maxCloseReason {
		return reason
	}
	i := maxCloseReason
	for i > 0 && !utf8.RuneStart(reason[i]) {
		i--
	}
	return reason[:i]
}
