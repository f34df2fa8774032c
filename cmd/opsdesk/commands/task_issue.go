package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/opsdesk/internal/app/issue"
	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/metrics"
	"github.com/slok/opsdesk/internal/utils/toggle"
)

type TaskIssueCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
	taskCmd *TaskCommand

	callbackID  int64
	command     string
	params      string
	toggles     []string
	attachments map[string]string
	test        bool
	format      string
}

// NewTaskIssueCommand returns the task issue command.
func NewTaskIssueCommand(rootCmd *RootCommand, taskCmd *TaskCommand) *TaskIssueCommand {
	c := &TaskIssueCommand{rootCmd: rootCmd, taskCmd: taskCmd}

	c.Cmd = taskCmd.Cmd.Command("issue", "Issue a task to a callback.")
	c.Cmd.Flag("callback", "Callback ID.").Short('c').Required().Int64Var(&c.callbackID)
	c.Cmd.Flag("command", "Command to issue.").Required().StringVar(&c.command)
	c.Cmd.Flag("params", "Command params.").StringVar(&c.params)
	c.Cmd.Flag("toggle", "Turn a command transform on or off by order (e.g. 2=false).").StringsVar(&c.toggles)
	c.Cmd.Flag("attach", "Attach a file to a file upload param (KEY=PATH).").StringMapVar(&c.attachments)
	c.Cmd.Flag("test", "Run the transforms without creating the task.").BoolVar(&c.test)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TaskIssueCommand) Name() string { return c.Cmd.FullCommand() }

func (c TaskIssueCommand) Run(ctx context.Context) error {
	toggles, err := toggle.Parse(c.toggles)
	if err != nil {
		return fmt.Errorf("invalid toggles: %w", err)
	}

	attachments := map[string]issue.Attachment{}
	for key, path := range c.attachments {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("could not read attachment %q: %w", key, err)
		}
		attachments[key] = issue.Attachment{Filename: filepath.Base(path), Data: data}
	}

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

	res, err := svcs.issue.Run(ctx, issue.Request{
		Identity:    id,
		CallbackID:  c.callbackID,
		Command:     c.command,
		Params:      c.params,
		Toggles:     toggles,
		Attachments: attachments,
		Test:        c.test,
	})
	if err != nil {
		var ierr *issue.Error
		if errors.As(err, &ierr) {
			return fmt.Errorf("could not issue %q with params %q: %w", ierr.Cmd, ierr.Params, err)
		}
		return fmt.Errorf("could not issue task: %w", err)
	}

	p := newPrinter(c.rootCmd.Stdout, c.format)
	if c.test {
		return p.PrintTestOutput(res.Command, res.Params, res.Trace)
	}
	return p.PrintTask(*res.Task, nil)
}
