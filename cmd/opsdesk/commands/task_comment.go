package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/opsdesk/internal/app/tasks"
	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/metrics"
)

type TaskCommentCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
	taskCmd *TaskCommand

	taskID  int64
	comment string
	format  string
}

// NewTaskCommentCommand returns the task comment command.
func NewTaskCommentCommand(rootCmd *RootCommand, taskCmd *TaskCommand) *TaskCommentCommand {
	c := &TaskCommentCommand{rootCmd: rootCmd, taskCmd: taskCmd}

	c.Cmd = taskCmd.Cmd.Command("comment", "Set the comment of a task, an empty comment removes it.")
	c.Cmd.Arg("id", "Task ID.").Required().Int64Var(&c.taskID)
	c.Cmd.Arg("comment", "Comment.").StringVar(&c.comment)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TaskCommentCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskCommentCommand) Run(ctx context.Context) error {
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

	task, err := svcs.tasks.Comment(ctx, tasks.CommentRequest{Identity: id, TaskID: c.taskID, Comment: c.comment})
	if err != nil {
		return fmt.Errorf("could not comment task: %w", err)
	}

	return newPrinter(c.rootCmd.Stdout, c.format).PrintTask(*task, nil)
}
