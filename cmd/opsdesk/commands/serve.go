package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gin-gonic/gin"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/slok/opsdesk/internal/api"
	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/fanout"
	"github.com/slok/opsdesk/internal/metrics"
	"github.com/slok/opsdesk/internal/transform"
)

type ServeCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	listenAddress   string
	authFile        string
	agentPollRate   float64
	agentPollBurst  int
	shutdownTimeout time.Duration
}

// NewServeCommand returns the serve command.
func NewServeCommand(rootCmd *RootCommand, app *kingpin.Application) *ServeCommand {
	c := &ServeCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("serve", "Serve the operator and agent API, the notification streams and the transforms watcher.")
	c.Cmd.Flag("listen-address", "Address the API listens on.").Envar("OPSDESK_LISTEN_ADDRESS").Default(":7443").StringVar(&c.listenAddress)
	c.Cmd.Flag("auth-file", "YAML file with the operator API tokens.").Envar("OPSDESK_AUTH_FILE").Required().StringVar(&c.authFile)
	c.Cmd.Flag("agent-poll-rate", "Next task polls allowed per second and callback.").Default("10").Float64Var(&c.agentPollRate)
	c.Cmd.Flag("agent-poll-burst", "Next task polls burst per callback.").Default("20").IntVar(&c.agentPollBurst)
	c.Cmd.Flag("shutdown-timeout", "Time to wait for in flight requests on shutdown.").Default("10s").DurationVar(&c.shutdownTimeout)

	return c
}

func (c ServeCommand) Name() string { return c.Cmd.FullCommand() }

func (c ServeCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger
	if !c.rootCmd.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := api.LoadTokenFile(c.authFile)
	if err != nil {
		return err
	}

	hub := changefeed.NewHub()
	repo, err := c.rootCmd.newRepository(ctx, hub)
	if err != nil {
		return err
	}
	defer repo.Close()

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.NewPrometheus(promReg)

	svcs, err := c.rootCmd.newServices(ctx, repo, rec)
	if err != nil {
		return err
	}

	streams, err := fanout.NewEngine(fanout.EngineConfig{
		Repository:      repo,
		Subscriber:      hub,
		MetricsRecorder: rec,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("could not create fanout engine: %w", err)
	}

	handler, err := api.NewHandler(api.HandlerConfig{
		Issuer:         svcs.issue,
		Clearer:        svcs.clear,
		Tasks:          svcs.tasks,
		NextTask:       svcs.nextTask,
		Responder:      svcs.respond,
		Streams:        streams,
		Authenticator:  api.NewTokenAuthenticator(tokens, repo),
		MetricsHandler: promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}),
		AgentPollRate:  rate.Limit(c.agentPollRate),
		AgentPollBurst: c.agentPollBurst,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("could not create API handler: %w", err)
	}

	server, err := api.NewServer(api.ServerConfig{
		ListenAddress:   c.listenAddress,
		Handler:         handler,
		ShutdownTimeout: c.shutdownTimeout,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("could not create API server: %w", err)
	}

	// The watcher needs the definitions directory even when the file doesn't exist yet.
	if err := os.MkdirAll(filepath.Dir(c.rootCmd.TransformsFile), 0755); err != nil {
		return fmt.Errorf("could not create transforms dir: %w", err)
	}
	watcher, err := transform.NewWatcher(transform.WatcherConfig{
		Source: svcs.definitions,
		OnChange: func(ctx context.Context) {
			if err := svcs.registry.Refresh(ctx); err != nil {
				logger.Errorf("Could not reload transform definitions, keeping the previous ones: %s", err)
				return
			}
			logger.Infof("Transform definitions reloaded")
		},
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create transforms watcher: %w", err)
	}

	var g run.Group

	// API.
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error { return server.Run(ctx) },
			func(_ error) { cancel() },
		)
	}

	// Transform definitions hot reload.
	{
		ctx, cancel := context.WithCancel(ctx)
		g.Add(
			func() error { return watcher.Run(ctx) },
			func(_ error) { cancel() },
		)
	}

	return g.Run()
}
