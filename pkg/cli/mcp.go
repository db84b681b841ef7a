package cli

import (
	"context"

	"github.com/m-mizutani/engram/pkg/service/mcp"
	"github.com/urfave/cli/v3"
)

func mcpCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, gatewayFlags(&cfg)...)

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the memory engine as MCP tools over stdio",
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

			ret, err := cfg.newRetrieval(ctx, repo)
			if err != nil {
				return err
			}

			server, err := mcp.NewServer(mem, ret)
			if err != nil {
				return err
			}

			return server.Run(ctx)
		},
	}
}
