package main

import (
	"fmt"

	"github.com/AlexanderGeorgiev0105/egov-portal/internal/utils"

	"github.com/urfave/cli/v2"
)

var nanoidCommand = &cli.Command{
	Name:  "nanoid",
	Usage: "Print entity ids for fixtures and seed data",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Value:   1,
		},
		&cli.IntFlag{
			Name:    "size",
			Aliases: []string{"s"},
			Usage:   "Id length",
			Value:   utils.IDSize,
		},
	},
	Action: func(c *cli.Context) error {
		if c.Int("count") < 1 {
			return fmt.Errorf("count must be positive")
		}
		for range c.Int("count") {
			fmt.Fprintln(c.App.Writer, utils.NanoIDSize(c.Int("size")))
		}
		return nil
	},
}
