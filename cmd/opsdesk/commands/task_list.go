package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/opsdesk/internal/app/tasks"
	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/metrics"
)

type TaskListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
	taskCmd *TaskCommand

	callbackID    int64
	notCompleted  bool
	search        string
	commented     bool
	commentSearch string
	format        string
}

// NewTaskListCommand returns the task list command.
func NewTaskListCommand(rootCmd *RootCommand, taskCmd *TaskCommand) *TaskListCommand {
	c := &TaskListCommand{rootCmd: rootCmd, taskCmd: taskCmd}

	c.Cmd = taskCmd.Cmd.Command("list", "List the tasks of a callback or of the current operation.")
	c.Cmd.Flag("callback", "Callback ID, the current operation if missing.").Short('c').Int64Var(&c.callbackID)
	c.Cmd.Flag("not-completed", "Only tasks not processed yet.").BoolVar(&c.notCompleted)
	c.Cmd.Flag("search", "Match a substring of the params.").StringVar(&c.search)
	c.Cmd.Flag("commented", "Only commented tasks.").BoolVar(&c.commented)
	c.Cmd.Flag("comment-search", "Match a substring of the comment.").StringVar(&c.commentSearch)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TaskListCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskListCommand) Run(ctx context.Context) error {
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

	ts, err := svcs.tasks.List(ctx, tasks.ListRequest{
		Identity:      id,
		CallbackID:    c.callbackID,
		NotCompleted:  c.notCompleted,
		Search:        c.search,
		Commented:     c.commented,
		CommentSearch: c.commentSearch,
	})
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}

	return newPrinter(c.rootCmd.Stdout, c.format).PrintTasks(ts)
}
