package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"
)

type TransformListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	format string
}

// NewTransformListCommand returns the transform list command.
func NewTransformListCommand(rootCmd *RootCommand, app *kingpin.Application) *TransformListCommand {
	c := &TransformListCommand{rootCmd: rootCmd}

	transformCmd := app.Command("transform", "Inspect transform functions.")
	c.Cmd = transformCmd.Command("list", "List the registered command and load transforms.")
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TransformListCommand) Name() string { return c.Cmd.FullCommand() }

func (c TransformListCommand) Run(ctx context.Context) error {
	reg, _, err := c.rootCmd.newRegistry(ctx)
	if err != nil {
		return err
	}

	return newPrinter(c.rootCmd.Stdout, c.format).PrintTransforms(reg.Names())
}
