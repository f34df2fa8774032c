package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/opsdesk/internal/app/tasks"
	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/metrics"
)

type TaskShowCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
	taskCmd *TaskCommand

	taskID int64
	format string
}

// NewTaskShowCommand returns the task show command.
func NewTaskShowCommand(rootCmd *RootCommand, taskCmd *TaskCommand) *TaskShowCommand {
	c := &TaskShowCommand{rootCmd: rootCmd, taskCmd: taskCmd}

	c.Cmd = taskCmd.Cmd.Command("show", "Show a task with its responses.")
	c.Cmd.Arg("id", "Task ID.").Required().Int64Var(&c.taskID)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TaskShowCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskShowCommand) Run(ctx context.Context) error {
	repo, err := c.rootCmd.newRepository(ctx, changefeed.NoopPublisher)
	if err != nil {
		return err
	}
	defer repo.Close()

	id, err := c.taskCmd.identity(ctx, repo)
	if err != nil {
		return err
	}

	svcs, err := c.rootCmd.newServices(ctx, repo, metrics.Noop)
	if err != nil {
		return err
	}

	res, err := svcs.tasks.Get(ctx, tasks.GetRequest{Identity: id, TaskID: c.taskID})
	if err != nil {
		return fmt.Errorf("could not get task: %w", err)
	}

	return newPrinter(c.rootCmd.Stdout, c.format).PrintTask(res.Task, res.Responses)
}
