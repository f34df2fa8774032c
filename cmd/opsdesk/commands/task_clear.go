package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/opsdesk/internal/app/clear"
	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/metrics"
)

type TaskClearCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
	taskCmd *TaskCommand

	callbackID int64
	selector   string
	format     string
}

// NewTaskClearCommand returns the task clear command.
func NewTaskClearCommand(rootCmd *RootCommand, taskCmd *TaskCommand) *TaskClearCommand {
	c := &TaskClearCommand{rootCmd: rootCmd, taskCmd: taskCmd}

	c.Cmd = taskCmd.Cmd.Command("clear", "Remove submitted tasks of a callback before an agent picks them.")
	c.Cmd.Flag("callback", "Callback ID.").Short('c').Required().Int64Var(&c.callbackID)
	c.Cmd.Arg("selector", `"all", a task ID, or empty for the last submitted task.`).StringVar(&c.selector)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TaskClearCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskClearCommand) Run(ctx context.Context) error {
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

	cleared, err := svcs.clear.Run(ctx, clear.Request{
		Identity:   id,
		CallbackID: c.callbackID,
		Selector:   c.selector,
	})
	if err != nil {
		return fmt.Errorf("could not clear tasks: %w", err)
	}

	return newPrinter(c.rootCmd.Stdout, c.format).PrintTasks(cleared)
}
