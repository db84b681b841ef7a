package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/engram/pkg/usecase/retrieval"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func searchCommand() *cli.Command {
	var (
		cfg       config
		topK      int64
		threshold float64
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "top-k",
			Aliases:     []string{"k"},
			Usage:       "Maximum number of documents to return",
			Value:       retrieval.DefaultTopK,
			Destination: &topK,
		},
		&cli.FloatFlag{
			Name:        "threshold",
			Usage:       "Minimum cosine similarity, exclusive",
			Value:       retrieval.DefaultThreshold,
			Destination: &threshold,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, gatewayFlags(&cfg)...)

	return &cli.Command{
		Name:      "search",
		Usage:     "Find indexed documents similar to a query",
		ArgsUsage: "<query>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			query := c.Args().First()
			if query == "" {
				return goerr.New("query argument is required")
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

			result, err := ret.Retrieve(ctx, query, retrieval.RetrieveOptions{
				TopK:      int(topK),
				Threshold: threshold,
			})
			if err != nil {
				return err
			}

			if result.Status == retrieval.StatusDegraded {
				fmt.Printf("retrieval degraded: %s\n", result.Hint)
				return nil
			}
			if len(result.Documents) == 0 {
				fmt.Println("no matching documents")
				return nil
			}

			for _, doc := range result.Documents {
				fmt.Printf("%.3f  %s  %s\n", doc.Similarity, doc.Filename, doc.Path)
			}
			return nil
		},
	}
}
