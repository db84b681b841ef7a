// Package cli is the command line surface of the memory engine.
package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "engram",
		Usage: "Adaptive memory and retrieval engine",
		Commands: []*cli.Command{
			rememberCommand(),
			recallCommand(),
			useCommand(),
			consolidateCommand(),
			indexCommand(),
			searchCommand(),
			selfCommand(),
			statusCommand(),
			chatCommand(),
			mcpCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
