package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/engram/pkg/usecase/chat"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, gatewayFlags(&cfg)...)
	flags = append(flags, archiveFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive conversation backed by the memory stores",
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

			gateway, err := cfg.newGateway(ctx)
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

			session, err := chat.New(chat.NewInput{
				Memory:    mem,
				Retrieval: ret,
				Gateway:   gateway,
			})
			if err != nil {
				return err
			}

			return runREPL(ctx, session)
		},
	}
}

// runREPL reads lines until EOF or "exit", sending each through the
// session with a spinner while waiting on the model.
func runREPL(ctx context.Context, session *chat.Session) error {
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("engram chat (exit or Ctrl-D to quit)")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		sp.Suffix = " thinking..."
		sp.Start()
		reply, err := session.Send(ctx, line)
		sp.Stop()

		if err != nil {
			fmt.Printf("error: %s\n", err.Error())
			continue
		}

		if reply.Hint != "" {
			fmt.Printf("(note: %s)\n", reply.Hint)
		}
		fmt.Println(reply.Text)
	}
}
