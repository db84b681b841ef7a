package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/engram/pkg/model"
	"github.com/urfave/cli/v3"
)

func selfCommand() *cli.Command {
	var (
		cfg         config
		identity    string
		drives      []string
		constraints []string
		showHistory bool
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "identity",
			Usage:       "Replace the identity statement",
			Destination: &identity,
		},
		&cli.StringSliceFlag{
			Name:        "drive",
			Usage:       "Replace the active drives (repeatable)",
			Destination: &drives,
		},
		&cli.StringSliceFlag{
			Name:        "constraint",
			Usage:       "Replace the constraints (repeatable)",
			Destination: &constraints,
		},
		&cli.BoolFlag{
			Name:        "history",
			Usage:       "Show prior self-model snapshots",
			Destination: &showHistory,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "self",
		Usage: "Show or update the self-model",
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

			update := &model.SelfModelUpdate{}
			changed := false
			if identity != "" {
				update.Identity = &identity
				changed = true
			}
			if len(drives) > 0 {
				update.ActiveDrives = drives
				changed = true
			}
			if len(constraints) > 0 {
				update.Constraints = constraints
				changed = true
			}

			if changed {
				if _, err := mem.UpdateSelfModel(ctx, update); err != nil {
					return err
				}
			}

			current, history, err := mem.SelfModel(ctx)
			if err != nil {
				return err
			}

			printSelfModel(current)
			if showHistory {
				for i := len(history) - 1; i >= 0; i-- {
					fmt.Printf("\n--- snapshot %s ---\n", history[i].Version)
					printSelfModel(history[i])
				}
			}
			return nil
		},
	}
}

func printSelfModel(m *model.SelfModel) {
	fmt.Printf("version:     %s\n", m.Version)
	fmt.Printf("identity:    %s\n", m.Identity)
	fmt.Printf("drives:      %s\n", strings.Join(m.ActiveDrives, "; "))
	fmt.Printf("constraints: %s\n", strings.Join(m.Constraints, "; "))
	for k, v := range m.InternalState {
		fmt.Printf("state.%s: %.2f\n", k, v)
	}
}
