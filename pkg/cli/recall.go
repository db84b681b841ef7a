package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/engram/pkg/usecase/memory"
	"github.com/urfave/cli/v3"
)

func recallCommand() *cli.Command {
	var (
		cfg   config
		limit int64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Maximum number of memories to show",
			Value:       20,
			Destination: &limit,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "recall",
		Usage: "List memories ranked by current relevance",
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

			decayed, err := mem.LoadWithDecay(ctx)
			if err != nil {
				return err
			}

			ranked := memory.SortByRelevance(decayed)
			if int64(len(ranked)) > limit {
				ranked = ranked[:limit]
			}

			if len(ranked) == 0 {
				fmt.Println("no memories stored")
				return nil
			}

			for _, rec := range ranked {
				fmt.Printf("%s  weight=%.2f decay=%.2f uses=%d [%s]\n  %s\n",
					rec.ID, rec.RelevanceWeight, rec.Decay, rec.AccessCount,
					rec.Source, rec.Content)
			}
			return nil
		},
	}
}
