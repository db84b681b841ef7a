package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/urfave/cli/v3"
)

func consolidateCommand() *cli.Command {
	var (
		cfg    config
		cutoff float64
	)

	flags := []cli.Flag{
		&cli.FloatFlag{
			Name:        "cutoff",
			Usage:       "Decay strength below which records are consolidated",
			Value:       memory.DefaultConsolidateCutoff,
			Destination: &cutoff,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, archiveFlags(&cfg)...)

	return &cli.Command{
		Name:  "consolidate",
		Usage: "Promote decayed memories into facts and forget the originals",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
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

			report, err := mem.Consolidate(ctx, memory.ConsolidateOptions{Cutoff: cutoff})
			if err != nil {
				return err
			}

			fmt.Printf("promoted %d facts, forgot %d memories\n",
				len(report.Promoted), len(report.Forgotten))
			for _, fact := range report.Promoted {
				fmt.Printf("  fact %s: %s\n", fact.ID, fact.Content)
			}
			return nil
		},
	}
}
