package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func statusCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "status",
		Usage: "Summarize the memory stores",
		Flags: globalFlags(&cfg),
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

			summary, err := mem.Summary(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("episodic memories: %d\n", summary.EpisodicCount)
			fmt.Printf("semantic facts:    %d\n", summary.SemanticCount)
			fmt.Printf("indexed documents: %d\n", summary.DocumentCount)
			fmt.Printf("forgotten records: %d\n", summary.ForgottenCount)
			fmt.Printf("average decay:     %.2f\n", summary.AverageDecay)
			fmt.Printf("average confidence: %.2f\n", summary.AverageConfidence)
			fmt.Printf("self-model version: %s\n", summary.SelfModelVersion)
			return nil
		},
	}
}
