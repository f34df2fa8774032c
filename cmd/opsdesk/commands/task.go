package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/opsdesk/internal/api"
	"github.com/slok/opsdesk/internal/model"
	"github.com/slok/opsdesk/internal/storage/sqlite"
)

// TaskCommand is the parent command for tasking subcommands. Tasking subcommands
// act as an operator directly on the database.
type TaskCommand struct {
	Cmd *kingpin.CmdClause

	operator string
}

// NewTaskCommand returns the task parent command.
func NewTaskCommand(app *kingpin.Application) *TaskCommand {
	c := &TaskCommand{}

	c.Cmd = app.Command("task", "Issue and inspect tasks.")
	c.Cmd.Flag("operator", "Username of the operator acting.").Envar("OPSDESK_OPERATOR").Required().StringVar(&c.operator)

	return c
}

func (c *TaskCommand) identity(ctx context.Context, repo *sqlite.Repository) (model.Identity, error) {
	id, err := api.IdentityFor(ctx, repo, c.operator)
	if err != nil {
		return model.Identity{}, fmt.Errorf("could not resolve operator: %w", err)
	}
	return *id, nil
}
