package main

import (
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/moisture/cmd/moisture/console"
)

var configCmd = cli.Command{
	Name:  "config",
	Usage: "print the effective configuration",
	Action: func(c *cli.Context) error {
		console.Printf("%s", getConfig(c))
		return nil
	},
}
