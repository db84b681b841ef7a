package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func indexCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, gatewayFlags(&cfg)...)

	return &cli.Command{
		Name:      "index",
		Usage:     "Index a folder of documents for retrieval",
		ArgsUsage: "<dir>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			dir := c.Args().First()
			if dir == "" {
				return goerr.New("directory argument is required")
			}

			ctx, err := cfg.setup(ctx)
			if err != nil {
				return err
			}

			repo, err := cfg.newRepository()
			if err != nil {
				return err
			}

			ret, err := cfg.newRetrieval(ctx, repo)
			if err != nil {
				return err
			}

			report, err := ret.IndexFolder(ctx, dir)
			if err != nil {
				return err
			}

			fmt.Printf("indexed %d, skipped %d unchanged, failed %d\n",
				report.Indexed, report.Skipped, report.Failed)
			return nil
		},
	}
}
