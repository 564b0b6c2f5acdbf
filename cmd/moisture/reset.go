package main

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/moisture/chirp"
	"github.com/mklimuk/moisture/cmd/moisture/console"
)

var resetCmd = cli.Command{
	Name:  "reset",
	Usage: "restart the sensor firmware",
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *chirp.Sensor) error {
			err := s.Reset(ctx)
			if err != nil {
				return console.Exit(1, "reset error: %s", console.Red(err))
			}
			console.PInfof(console.PictoChip, "sensor %#x restarted", s.Address())
			return nil
		})
	},
}
