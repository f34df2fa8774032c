package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/opsdesk/internal/changefeed"
	storageio "github.com/slok/opsdesk/internal/storage/io"
)

type SeedCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	file string
}

// NewSeedCommand returns the seed command.
func NewSeedCommand(rootCmd *RootCommand, app *kingpin.Application) *SeedCommand {
	c := &SeedCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("seed", "Load operators, operations, payload types, commands and callbacks from a YAML file.")
	c.Cmd.Flag("file", "Seed YAML file.").Short('f').Required().StringVar(&c.file)

	return c
}

func (c SeedCommand) Name() string { return c.Cmd.FullCommand() }

func (c SeedCommand) Run(ctx context.Context) error {
	path, err := filepath.Abs(c.file)
	if err != nil {
		return fmt.Errorf("invalid seed path: %w", err)
	}

	seed, err := storageio.NewSeedYAMLRepository(os.DirFS(filepath.Dir(path))).GetSeed(ctx, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("could not load seed: %w", err)
	}

	repo, err := c.rootCmd.newRepository(ctx, changefeed.NoopPublisher)
	if err != nil {
		return err
	}
	defer repo.Close()

	seeder, err := storageio.NewSeeder(storageio.SeederConfig{Repository: repo, Logger: c.rootCmd.Logger})
	if err != nil {
		return fmt.Errorf("could not create seeder: %w", err)
	}

	res, err := seeder.Seed(ctx, seed)
	if err != nil {
		return fmt.Errorf("could not seed: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Seeded %d operators, %d operations, %d payload types, %d commands, %d transforms, %d payloads and %d callbacks\n",
		res.Operators, res.Operations, res.PayloadTypes, res.Commands, res.Transforms, res.Payloads, res.Callbacks)
	return nil
}
