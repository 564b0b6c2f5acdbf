package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/moisture/chirp"
	"github.com/mklimuk/moisture/cmd/moisture/console"
)

var addressCmd = cli.Command{
	Name:    "address",
	Aliases: []string{"addr"},
	Usage:   "query or change the sensor bus address",
	Subcommands: cli.Commands{
		&addressGetCmd,
		&addressSetCmd,
	},
}

var addressGetCmd = cli.Command{
	Name: "get",
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *chirp.Sensor) error {
			addr, err := s.ReadAddress(ctx)
			if err != nil {
				return console.Exit(1, "error reading address: %s", console.Red(err))
			}
			console.PInfof(console.PictoPin, "%s", console.White(fmt.Sprintf("%#x", addr)))
			if addr != s.Address() {
				console.Warnf("sensor reports %#x while talking on %#x; power cycle it to apply the change", addr, s.Address())
			}
			return nil
		})
	},
}

var addressSetCmd = cli.Command{
	Name:      "set",
	ArgsUsage: "<new address>",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "no-reset",
			Usage: "do not restart the sensor; the new address applies after the next power cycle",
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "do not ask for confirmation",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return console.Exit(2, "expected exactly one argument: the new address")
		}
		addr, err := parseAddress(c.Args().First())
		if err != nil {
			return console.Exit(2, "%s", console.Red(err))
		}
		current := getConfig(c).Address
		if !c.Bool("yes") {
			ok, err := console.Confirm(fmt.Sprintf("change sensor address from %#x to %#x?", current, addr))
			if err != nil {
				return console.Exit(1, "prompt error: %s", console.Red(err))
			}
			if !ok {
				console.Printf("aborted\n")
				return nil
			}
		}
		return withSensor(c, func(ctx context.Context, s *chirp.Sensor) error {
			verified, err := s.SetAddress(ctx, addr, !c.Bool("no-reset"))
			if err != nil {
				return console.Exit(1, "error changing address: %s", console.Red(err))
			}
			if !verified {
				return console.Exit(1, "address written but the sensor did not confirm %#x", addr)
			}
			console.PInfof(console.PictoPin, "sensor now answers on %s", console.Green(fmt.Sprintf("%#x", s.Address())))
			return nil
		})
	},
}
