package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/moisture/chirp"
	"github.com/mklimuk/moisture/cmd/moisture/console"
)

var readCmd = cli.Command{
	Name:  "read",
	Usage: "read a single sensor register",
	Subcommands: cli.Commands{
		&readCapacitanceCmd,
		&readTemperatureCmd,
		&readLightCmd,
		&readVersionCmd,
		&readAllCmd,
	},
}

var readCapacitanceCmd = cli.Command{
	Name:    "capacitance",
	Aliases: []string{"cap"},
	Usage:   "raw moisture reading (higher means wetter)",
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *chirp.Sensor) error {
			v, err := s.Capacitance(ctx)
			if err != nil {
				return console.Exit(1, "error reading capacitance: %s", console.Red(err))
			}
			console.PInfof(console.PictoMoisture, "%s", console.White(v))
			return nil
		})
	},
}

var readTemperatureCmd = cli.Command{
	Name:    "temperature",
	Aliases: []string{"temp"},
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "raw", Usage: "print the register value (°C x10)"},
	},
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *chirp.Sensor) error {
			v, err := s.Temperature(ctx)
			if err != nil {
				return console.Exit(1, "error reading temperature: %s", console.Red(err))
			}
			if c.Bool("raw") {
				console.PInfof(console.PictoThermometer, "%s", console.White(v))
				return nil
			}
			console.PInfof(console.PictoThermometer, "%s°C", console.White(fmt.Sprintf("%.1f", chirp.Celsius(v))))
			return nil
		})
	},
}

var readLightCmd = cli.Command{
	Name:  "light",
	Usage: "light level (lower means brighter)",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "trigger",
			Usage: "start a new measurement and wait for it instead of reading the last result",
		},
	},
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *chirp.Sensor) error {
			v, err := s.Light(ctx, c.Bool("trigger"))
			if err != nil {
				return console.Exit(1, "error reading light: %s", console.Red(err))
			}
			console.PInfof(console.PictoLight, "%s", console.White(v))
			return nil
		})
	},
}

var readVersionCmd = cli.Command{
	Name:  "version",
	Usage: "sensor firmware version",
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *chirp.Sensor) error {
			v, err := s.Version(ctx)
			if err != nil {
				return console.Exit(1, "error reading firmware version: %s", console.Red(err))
			}
			console.PInfof(console.PictoChip, "%s (%#x)", console.White(chirp.FirmwareVersion(v)), v)
			return nil
		})
	},
}

var readAllCmd = cli.Command{
	Name:  "all",
	Usage: "capacitance, temperature and optionally light",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "light", Aliases: []string{"l"}, Usage: "include a triggered light measurement"},
	},
	Action: func(c *cli.Context) error {
		return withSensor(c, func(ctx context.Context, s *chirp.Sensor) error {
			r, err := s.Measure(ctx, c.Bool("light"))
			if err != nil {
				return console.Exit(1, "error reading sensor: %s", console.Red(err))
			}
			printReading(r)
			return nil
		})
	},
}

func printReading(r chirp.Reading) {
	line := fmt.Sprintf("%s %s  %s %s°C",
		console.PictoMoisture, console.White(r.Capacitance),
		console.PictoThermometer, console.White(fmt.Sprintf("%.1f", r.Celsius())))
	if r.HasLight {
		line += fmt.Sprintf("  %s %s", console.PictoLight, console.White(r.Light))
	}
	console.Printf("%s %s  %s\n", console.Cyan(r.Time.Format("15:04:05")), console.Bold(fmt.Sprintf("%#x", r.Address)), line)
}

var registersCmd = cli.Command{
	Name:  "registers",
	Usage: "print the sensor register map",
	Action: func(c *cli.Context) error {
		w := tabwriter.NewWriter(console.Writer(), 8, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "REGISTER\tNAME\tACCESS\tWIDTH\tSIGNED\n")
		for _, r := range chirp.Registers {
			access := "r"
			if r.Write {
				access = "w"
			}
			_, _ = fmt.Fprintf(w, "0x%02x\t%s\t%s\t%d\t%t\n", r.Selector, r.Name, access, r.Width, r.Signed)
		}
		return w.Flush()
	},
}
