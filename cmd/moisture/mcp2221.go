package main

import (
	"strconv"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/moisture/adapter"
	"github.com/mklimuk/moisture/cmd/moisture/console"
)

var mcp2221Cmd = cli.Command{
	Name:  "mcp2221",
	Usage: "MCP2221 bridge maintenance",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:  "index",
			Value: -1,
			Usage: "bridge index as listed by 'usb detect' when several are connected",
		},
	},
	Subcommands: cli.Commands{
		&mcp2221StatusCmd,
		&mcp2221ReleaseCmd,
		&mcp2221SpeedCmd,
	},
}

func bridge(c *cli.Context) *adapter.MCP2221 {
	return adapter.NewMCP2221(adapter.WithDeviceIndex(c.Int("index")))
}

func printYAML(v any) error {
	enc := yaml.NewEncoder(console.Writer())
	defer func() { _ = enc.Close() }()
	err := enc.Encode(v)
	if err != nil {
		return console.Exit(1, "encoding error: %s", console.Red(err))
	}
	return nil
}

var mcp2221StatusCmd = cli.Command{
	Name: "status",
	Action: func(c *cli.Context) error {
		status, err := bridge(c).Status(c.Context)
		if err != nil {
			return console.Exit(1, "adapter communication error: %s", console.Red(err))
		}
		return printYAML(status)
	},
}

var mcp2221ReleaseCmd = cli.Command{
	Name:  "release",
	Usage: "cancel the current transfer and free the bus",
	Action: func(c *cli.Context) error {
		status, err := bridge(c).ReleaseBus(c.Context)
		if err != nil {
			return console.Exit(1, "adapter communication error: %s", console.Red(err))
		}
		return printYAML(status)
	},
}

var mcp2221SpeedCmd = cli.Command{
	Name:      "speed",
	Usage:     "set the bus clock",
	ArgsUsage: "<hz>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return console.Exit(2, "expected exactly one argument: the bus speed in Hz")
		}
		hz, err := strconv.Atoi(c.Args().First())
		if err != nil || hz <= 0 {
			return console.Exit(2, "invalid bus speed %q", c.Args().First())
		}
		err = bridge(c).SetSpeed(c.Context, hz)
		if err != nil {
			return console.Exit(1, "could not set bus speed: %s", console.Red(err))
		}
		console.PInfof(console.PictoChip, "bus speed set to %s Hz", console.Green(hz))
		return nil
	},
}
