// Package fanout turns row changes into operation scoped notification streams.
//
// Every stream replays the rows that currently match, sends an empty heartbeat frame
// and then delivers the live changes of its kinds, sending a heartbeat whenever it
// has been idle for its interval.
package fanout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/log"
	"github.com/slok/opsdesk/internal/metrics"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/storage"
	"github.com/slok/opsdesk/internal/view"
)

// Heartbeat is the frame sent at the end of the replay and on idle intervals.
const Heartbeat = ""

// ErrSkip is returned by a stream resolver for changes the stream doesn't show.
var ErrSkip = errors.New("skip change")

// Conn is the session side of a stream.
type Conn interface {
	// Send sends a text frame to the session.
	Send(ctx context.Context, frame string) error
	// Receive blocks until the session sends a text frame. io.EOF means the session
	// is gone.
	Receive(ctx context.Context) (string, error)
}

// Subscriber subscribes to row changes.
type Subscriber interface {
	Subscribe(kinds ...changefeed.Kind) *changefeed.Subscription
}

// EngineConfig is the configuration of the fanout engine.
type EngineConfig struct {
	Repository      storage.Repository
	Subscriber      Subscriber
	Streams         map[string]Stream
	MetricsRecorder metrics.Recorder
	Logger          log.Logger
}

func (c *EngineConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Subscriber == nil {
		return fmt.Errorf("subscriber is required")
	}
	if c.Streams == nil {
		c.Streams = Catalog()
	}
	if c.MetricsRecorder == nil {
		c.MetricsRecorder = metrics.Noop
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "fanout.Engine"})
	return nil
}

// Engine serves notification streams.
type Engine struct {
	repo    storage.Repository
	sub     Subscriber
	streams map[string]Stream
	metrics metrics.Recorder
	logger  log.Logger
}

// NewEngine returns a new fanout engine.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Engine{
		repo:    cfg.Repository,
		sub:     cfg.Subscriber,
		streams: cfg.Streams,
		metrics: cfg.MetricsRecorder,
		logger:  cfg.Logger,
	}, nil
}

// Stream returns a stream of the catalog by name.
func (e *Engine) Stream(name string) (Stream, error) {
	s, ok := e.streams[name]
	if !ok {
		return Stream{}, fmt.Errorf("stream %q: %w", name, model.ErrNotFound)
	}
	return s, nil
}

// Authorize checks the identity can open the stream.
func (e *Engine) Authorize(name string, id model.Identity) error {
	s, err := e.Stream(name)
	if err != nil {
		return err
	}
	if s.AdminOnly && !id.Admin {
		return fmt.Errorf("stream %q is admin only: %w", name, model.ErrPermissionDenied)
	}
	if !s.AdminOnly && !s.Global && id.CurrentOperationID == 0 {
		return model.ErrMustJoinOperation
	}
	return nil
}

// Serve runs a stream until the session goes away or the context ends. The returned
// error wraps model.ErrStreamFatal when the stream failed resolving or sending.
func (e *Engine) Serve(ctx context.Context, name string, id model.Identity, conn Conn) error {
	if err := e.Authorize(name, id); err != nil {
		return err
	}
	s := e.streams[name]

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ctx = e.logger.SetValuesOnCtx(ctx, log.Kv{"stream": name, "session": ulid.Make().String(), "operator": id.Username})
	logger := e.logger.WithCtxValues(ctx)

	// Subscribe before replaying so nothing that changes meanwhile is lost.
	sub := e.sub.Subscribe(s.Kinds...)
	defer sub.Close()

	e.metrics.StreamOpened(name)
	defer e.metrics.StreamClosed(name)
	logger.Debugf("Stream opened")

	sess := &session{
		stream:  s,
		scope:   Scope{OperationID: id.CurrentOperationID, AllOperations: s.AdminOnly || s.Global},
		viewing: map[int64]bool{},
		conn:    conn,
	}

	if s.Replay != nil {
		items, err := s.Replay(ctx, e.repo, sess.scope)
		if err != nil {
			return fmt.Errorf("could not replay %q: %w: %w", name, model.ErrStreamFatal, err)
		}
		for _, it := range items {
			if err := e.send(ctx, sess, it); err != nil {
				return err
			}
		}
	}
	if err := conn.Send(ctx, Heartbeat); err != nil {
		return e.sendErr(err)
	}

	frames := make(chan string)
	closed := make(chan error, 1)
	go func() {
		for {
			f, err := conn.Receive(ctx)
			if err != nil {
				closed <- err
				return
			}
			select {
			case frames <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	timer := time.NewTimer(s.Interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Debugf("Stream context done")
			return nil

		case err := <-closed:
			if !errors.Is(err, io.EOF) {
				logger.Debugf("Session receive failed: %s", err)
			}
			logger.Debugf("Session closed")
			return nil

		case f := <-frames:
			if s.ViewFilter {
				sess.control(f)
			}

		case <-sub.Ready():
			sent := false
			for {
				c, ok := sub.TryNext()
				if !ok {
					break
				}
				delivered, err := e.deliver(ctx, sess, c)
				if err != nil {
					logger.Errorf("Stream failed on %s: %s", c, err)
					return err
				}
				sent = sent || delivered
			}
			if sent {
				resetTimer(timer, s.Interval)
			}

		case <-timer.C:
			if err := conn.Send(ctx, Heartbeat); err != nil {
				return e.sendErr(err)
			}
			timer.Reset(s.Interval)
		}
	}
}

// deliver resolves a change and sends it if the session should see it.
func (e *Engine) deliver(ctx context.Context, sess *session, c changefeed.Change) (bool, error) {
	it, err := sess.stream.Resolve(ctx, e.repo, c)
	if err != nil {
		// Rows deleted before we could read them are skipped.
		if errors.Is(err, model.ErrNotFound) || errors.Is(err, ErrSkip) {
			return false, nil
		}
		return false, fmt.Errorf("could not resolve %s: %w: %w", c, model.ErrStreamFatal, err)
	}
	if !sess.visible(it) {
		return false, nil
	}
	if err := e.send(ctx, sess, it); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) send(ctx context.Context, sess *session, it Item) error {
	b, err := json.Marshal(it.Object)
	if err != nil {
		return fmt.Errorf("could not encode event: %w: %w", model.ErrStreamFatal, err)
	}
	if err := sess.conn.Send(ctx, string(b)); err != nil {
		return e.sendErr(err)
	}
	e.metrics.StreamEventSent(sess.stream.Name)
	return nil
}

func (e *Engine) sendErr(err error) error {
	return fmt.Errorf("could not send frame: %w: %w", model.ErrStreamFatal, err)
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

// Scope is what a session is allowed to see.
type Scope struct {
	OperationID int64
	// AllOperations sessions see the rows of every operation.
	AllOperations bool
}

// Item is a resolved row ready to be sent.
type Item struct {
	Object view.Object
	// OperationID is the operation owning the row, 0 for rows shared by every operation.
	OperationID int64
	// CallbackID is used by the view filter.
	CallbackID int64
}

// session is the state of one open stream, only touched by its serving goroutine.
type session struct {
	stream  Stream
	scope   Scope
	viewing map[int64]bool
	conn    Conn
}

func (s *session) visible(it Item) bool {
	if !s.scope.AllOperations && it.OperationID != 0 && it.OperationID != s.scope.OperationID {
		return false
	}
	if s.stream.ViewFilter && !s.viewing[it.CallbackID] {
		return false
	}
	return true
}

// control applies a view filter frame, "a<id>" adds and "r<id>" removes a callback.
// Anything else is ignored.
func (s *session) control(frame string) {
	if len(frame) < 2 {
		return
	}
	id, err := strconv.ParseInt(frame[1:], 10, 64)
	if err != nil {
		return
	}
	switch frame[0] {
	case 'a':
		s.viewing[id] = true
	case 'r':
		delete(s.viewing, id)
	}
}
