package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func rememberCommand() *cli.Command {
	var (
		cfg        config
		source     string
		confidence float64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "source",
			Aliases:     []string{"s"},
			Usage:       "Origin of the memory (observation, interaction, realization, diagnostic)",
			Value:       string(model.SourceObservation),
			Destination: &source,
		},
		&cli.FloatFlag{
			Name:        "confidence",
			Usage:       "Confidence in the memory, 0 to 1",
			Value:       1.0,
			Destination: &confidence,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:      "remember",
		Usage:     "Store a new memory record",
		ArgsUsage: "<content>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			content := c.Args().First()
			if content == "" {
				return goerr.New("content argument is required")
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

			rec, err := mem.Append(ctx, content, model.Source(source), confidence, nil)
			if err != nil {
				return err
			}

			fmt.Printf("remembered %s\n", rec.ID)
			return nil
		},
	}
}
