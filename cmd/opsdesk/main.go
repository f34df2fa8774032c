package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/slok/opsdesk/cmd/opsdesk/commands"
	"github.com/slok/opsdesk/internal/log"
	loglogrus "github.com/slok/opsdesk/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("opsdesk", "Operator tasking and notification server for C2 callbacks.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	serveCmd := commands.NewServeCommand(rootCmd, app)
	seedCmd := commands.NewSeedCommand(rootCmd, app)
	transformListCmd := commands.NewTransformListCommand(rootCmd, app)

	// Task subcommands share the acting operator.
	taskCmd := commands.NewTaskCommand(app)
	taskIssueCmd := commands.NewTaskIssueCommand(rootCmd, taskCmd)
	taskClearCmd := commands.NewTaskClearCommand(rootCmd, taskCmd)
	taskListCmd := commands.NewTaskListCommand(rootCmd, taskCmd)
	taskShowCmd := commands.NewTaskShowCommand(rootCmd, taskCmd)
	taskCommentCmd := commands.NewTaskCommentCommand(rootCmd, taskCmd)

	agentCmd := commands.NewAgentCommand(app)
	agentNextCmd := commands.NewAgentNextCommand(rootCmd, agentCmd)
	agentRespondCmd := commands.NewAgentRespondCommand(rootCmd, agentCmd)

	cmds := map[string]commands.Command{
		serveCmd.Name():         serveCmd,
		seedCmd.Name():          seedCmd,
		transformListCmd.Name(): transformListCmd,
		taskIssueCmd.Name():     taskIssueCmd,
		taskClearCmd.Name():     taskClearCmd,
		taskListCmd.Name():      taskListCmd,
		taskShowCmd.Name():      taskShowCmd,
		taskCommentCmd.Name():   taskCommentCmd,
		agentNextCmd.Name():     agentNextCmd,
		agentRespondCmd.Name():  agentRespondCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr
	rootCmd.SetDefaults()

	// Printer commands don't log unless --debug, logs would mix with their output.
	printerCommands := map[string]bool{
		"transform list": true,
		"task issue":     true,
		"task clear":     true,
		"task list":      true,
		"task show":      true,
		"task comment":   true,
		"agent next":     true,
	}
	if printerCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(*rootCmd)

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // Stdout is kept for command output.
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled")

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
