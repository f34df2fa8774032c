// Package api serves the operator and agent HTTP endpoints and the notification
// streams over websockets.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/slok/opsdesk/internal/app/clear"
	"github.com/slok/opsdesk/internal/app/issue"
	"github.com/slok/opsdesk/internal/app/nexttask"
	"github.com/slok/opsdesk/internal/app/respond"
	"github.com/slok/opsdesk/internal/app/tasks"
	"github.com/slok/opsdesk/internal/fanout"
	"github.com/slok/opsdesk/internal/log"
	"github.com/slok/opsdesk/internal/model"
)

// Issuer issues tasks.
type Issuer interface {
	Run(ctx context.Context, req issue.Request) (*issue.Result, error)
}

// Clearer clears submitted tasks.
type Clearer interface {
	Run(ctx context.Context, req clear.Request) ([]model.Task, error)
}

// TaskQuerier answers task queries.
type TaskQuerier interface {
	List(ctx context.Context, req tasks.ListRequest) ([]model.Task, error)
	Get(ctx context.Context, req tasks.GetRequest) (*tasks.GetResponse, error)
	Comment(ctx context.Context, req tasks.CommentRequest) (*model.Task, error)
}

// NextTasker hands tasks to agents.
type NextTasker interface {
	Run(ctx context.Context, req nexttask.Request) (*nexttask.Response, error)
}

// Responder stores agent responses.
type Responder interface {
	Run(ctx context.Context, req respond.Request) (*model.Response, error)
}

// StreamServer serves notification streams.
type StreamServer interface {
	Authorize(name string, id model.Identity) error
	Serve(ctx context.Context, name string, id model.Identity, conn fanout.Conn) error
}

// HandlerConfig is the configuration of the API handler.
type HandlerConfig struct {
	Issuer        Issuer
	Clearer       Clearer
	Tasks         TaskQuerier
	NextTask      NextTasker
	Responder     Responder
	Streams       StreamServer
	Authenticator Authenticator
	// MetricsHandler serves /metrics, promhttp default handler if missing.
	MetricsHandler http.Handler
	// AgentPollRate is the next task polls allowed per second and callback.
	AgentPollRate  rate.Limit
	AgentPollBurst int
	Logger         log.Logger
}

func (c *HandlerConfig) defaults() error {
	if c.Issuer == nil {
		return fmt.Errorf("issuer is required")
	}
	if c.Clearer == nil {
		return fmt.Errorf("clearer is required")
	}
	if c.Tasks == nil {
		return fmt.Errorf("tasks is required")
	}
	if c.NextTask == nil {
		return fmt.Errorf("next task is required")
	}
	if c.Responder == nil {
		return fmt.Errorf("responder is required")
	}
	if c.Streams == nil {
		return fmt.Errorf("streams is required")
	}
	if c.Authenticator == nil {
		return fmt.Errorf("authenticator is required")
	}
	if c.MetricsHandler == nil {
		c.MetricsHandler = promhttp.Handler()
	}
	if c.AgentPollRate == 0 {
		c.AgentPollRate = 10
	}
	if c.AgentPollBurst == 0 {
		c.AgentPollBurst = 20
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "api.Handler"})
	return nil
}

type handler struct {
	issuer    Issuer
	clearer   Clearer
	tasks     TaskQuerier
	nextTask  NextTasker
	responder Responder
	streams   StreamServer
	auth      Authenticator
	limiter   *callbackLimiter
	validate  *validator.Validate
	logger    log.Logger
}

// NewHandler returns the HTTP handler of the API.
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	h := &handler{
		issuer:    cfg.Issuer,
		clearer:   cfg.Clearer,
		tasks:     cfg.Tasks,
		nextTask:  cfg.NextTask,
		responder: cfg.Responder,
		streams:   cfg.Streams,
		auth:      cfg.Authenticator,
		limiter:   newCallbackLimiter(cfg.AgentPollRate, cfg.AgentPollBurst),
		validate:  validator.New(),
		logger:    cfg.Logger,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))

	agent := r.Group("/api/v1/agent")
	agent.GET("/callbacks/:id/nexttask", h.getNextTask)
	agent.POST("/tasks/:id/responses", h.postResponse)

	op := r.Group("/api/v1", h.authMiddleware())
	op.POST("/callbacks/:id/tasks", h.postTask)
	op.GET("/callbacks/:id/tasks", h.listCallbackTasks)
	op.POST("/callbacks/:id/tasks/clear", h.postClear)
	op.GET("/tasks", h.listTasks)
	op.GET("/tasks/:id", h.getTask)
	op.POST("/tasks/:id/comment", h.postComment)
	op.DELETE("/tasks/:id/comment", h.deleteComment)
	op.GET("/ws/*stream", h.stream)

	return r, nil
}

// ServerConfig is the configuration of the API server.
type ServerConfig struct {
	ListenAddress   string
	Handler         http.Handler
	ShutdownTimeout time.Duration
	Logger          log.Logger
}

func (c *ServerConfig) defaults() error {
	if c.Handler == nil {
		return fmt.Errorf("handler is required")
	}
	if c.ListenAddress == "" {
		c.ListenAddress = ":7443"
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "api.Server"})
	return nil
}

// Server serves the API until its context ends.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
	logger          log.Logger
}

// NewServer returns a new API server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Server{
		srv: &http.Server{
			Addr:              cfg.ListenAddress,
			Handler:           cfg.Handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          cfg.Logger,
	}, nil
}

// Run listens until the context is done and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	// Hijacked websocket connections are not closed by shutdown, their streams end with ctx.
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }

	errC := make(chan error, 1)
	go func() {
		s.logger.Infof("Listening on %s", s.srv.Addr)
		errC <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("could not serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Infof("Shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("could not shutdown: %w", err)
	}
	return nil
}
