package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/opsdesk/internal/app/nexttask"
	"github.com/slok/opsdesk/internal/app/respond"
	"github.com/slok/opsdesk/internal/changefeed"
	"github.com/slok/opsdesk/internal/metrics"
)

// NewAgentCommand returns the agent parent command, used to act as a callback
// without a running server.
func NewAgentCommand(app *kingpin.Application) *kingpin.CmdClause {
	return app.Command("agent", "Act as a callback agent.")
}

type AgentNextCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	callbackID int64
}

// NewAgentNextCommand returns the agent next command.
func NewAgentNextCommand(rootCmd *RootCommand, agentCmd *kingpin.CmdClause) *AgentNextCommand {
	c := &AgentNextCommand{rootCmd: rootCmd}

	c.Cmd = agentCmd.Command("next", "Claim the next task of a callback and print the agent message.")
	c.Cmd.Flag("callback", "Callback ID.").Short('c').Required().Int64Var(&c.callbackID)

	return c
}

func (c AgentNextCommand) Name() string { return c.Cmd.FullCommand() }

func (c AgentNextCommand) Run(ctx context.Context) error {
	repo, err := c.rootCmd.newRepository(ctx, changefeed.NoopPublisher)
	if err != nil {
		return err
	}
	defer repo.Close()

	svcs, err := c.rootCmd.newServices(ctx, repo, metrics.Noop)
	if err != nil {
		return err
	}

	res, err := svcs.nextTask.Run(ctx, nexttask.Request{CallbackID: c.callbackID})
	if err != nil {
		return fmt.Errorf("could not get next task: %w", err)
	}

	fmt.Fprintln(c.rootCmd.Stdout, string(res.Body))
	return nil
}

type AgentRespondCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	taskID   int64
	response string
}

// NewAgentRespondCommand returns the agent respond command.
func NewAgentRespondCommand(rootCmd *RootCommand, agentCmd *kingpin.CmdClause) *AgentRespondCommand {
	c := &AgentRespondCommand{rootCmd: rootCmd}

	c.Cmd = agentCmd.Command("respond", "Post a response to a task, read from stdin when missing.")
	c.Cmd.Arg("id", "Task ID.").Required().Int64Var(&c.taskID)
	c.Cmd.Arg("response", "Response.").StringVar(&c.response)

	return c
}

func (c AgentRespondCommand) Name() string { return c.Cmd.FullCommand() }

func (c AgentRespondCommand) Run(ctx context.Context) error {
	response := c.response
	if response == "" {
		b, err := io.ReadAll(c.rootCmd.Stdin)
		if err != nil {
			return fmt.Errorf("could not read response: %w", err)
		}
		response = string(b)
	}
	if response == "" {
		return fmt.Errorf("response is required")
	}

	repo, err := c.rootCmd.newRepository(ctx, changefeed.NoopPublisher)
	if err != nil {
		return err
	}
	defer repo.Close()

	svcs, err := c.rootCmd.newServices(ctx, repo, metrics.Noop)
	if err != nil {
		return err
	}

	resp, err := svcs.respond.Run(ctx, respond.Request{TaskID: c.taskID, Response: response})
	if err != nil {
		return fmt.Errorf("could not respond task: %w", err)
	}

	c.rootCmd.Logger.Infof("Response %d stored", resp.ID)
	return nil
}
