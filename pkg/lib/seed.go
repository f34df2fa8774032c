package lib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	storageio "github.com/slok/opsdesk/internal/storage/io"
)

// SeedResult counts the rows a seed created.
type SeedResult struct {
	Operators    int
	Operations   int
	PayloadTypes int
	Commands     int
	Transforms   int
	Payloads     int
	Callbacks    int
}

// SeedFile loads a YAML seed file with operators, operations, payload types,
// commands and callbacks.
//
// Returns [ErrNotValid] if the seed references unknown rows and [ErrAlreadyExists]
// if a row was already seeded.
func (c *Client) SeedFile(ctx context.Context, path string) (*SeedResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid seed path: %w", err)
	}

	seed, err := storageio.NewSeedYAMLRepository(os.DirFS(filepath.Dir(abs))).GetSeed(ctx, filepath.Base(abs))
	if err != nil {
		return nil, mapError(err)
	}

	seeder, err := storageio.NewSeeder(storageio.SeederConfig{Repository: c.repo, Logger: c.logger})
	if err != nil {
		return nil, fmt.Errorf("could not create seeder: %w", err)
	}

	res, err := seeder.Seed(ctx, seed)
	if err != nil {
		return nil, mapError(err)
	}

	return &SeedResult{
		Operators:    res.Operators,
		Operations:   res.Operations,
		PayloadTypes: res.PayloadTypes,
		Commands:     res.Commands,
		Transforms:   res.Transforms,
		Payloads:     res.Payloads,
		Callbacks:    res.Callbacks,
	}, nil
}
