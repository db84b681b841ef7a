package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func useCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:      "use",
		Usage:     "Mark memories as used, reinforcing them against decay",
		ArgsUsage: "<memory-id>...",
		Flags:     globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			args := c.Args().Slice()
			if len(args) == 0 {
				return goerr.New("at least one memory ID is required")
			}

			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}

			mem, err := cfg.newMemory(ctx, repo)
			if err != nil {
				return err
			}

			ids := make([]model.MemoryID, len(args))
			for i, arg := range args {
				ids[i] = model.MemoryID(arg)
			}

			updated, err := mem.IncrementAccess(ctx, ids)
			if err != nil {
				return err
			}

			fmt.Printf("reinforced %d of %d memories\n", updated, len(ids))
			return nil
		},
	}
}
