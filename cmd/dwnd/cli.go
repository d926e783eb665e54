package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/hookdeck/dwn-go/internal/config"
	"github.com/hookdeck/dwn-go/internal/version"
)

// NewCommand builds the dwnd CLI: a single "serve" command plus flags that
// override the equivalent config fields/env vars, in the teacher's
// override-then-fall-back-to-config style.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:    "dwnd",
		Usage:   "DWN storage and eventing core",
		Version: version.Version(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Sources: cli.EnvVars("CONFIG"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the dwnd server",
				Action: serveAction,
			},
		},
		Action: serveAction,
	}
}

func serveAction(ctx context.Context, c *cli.Command) error {
	cfg, err := config.Parse(c.String("config"))
	if err != nil {
		return err
	}
	return New(cfg).Run(ctx)
}
