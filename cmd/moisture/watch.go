package main

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/moisture/chirp"
	"github.com/mklimuk/moisture/cmd/moisture/console"
	"github.com/mklimuk/moisture/export"
	"github.com/mklimuk/moisture/monitor"
)

var watchCmd = cli.Command{
	Name:  "watch",
	Usage: "poll the sensor periodically",
	Flags: []cli.Flag{
		&cli.DurationFlag{Name: "interval", Aliases: []string{"i"}, Usage: "polling interval (overrides config)"},
		&cli.BoolFlag{Name: "light", Aliases: []string{"l"}, Usage: "include a triggered light measurement"},
		&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "stop after n readings"},
		&cli.BoolFlag{Name: "influx", Usage: "export readings to InfluxDB (requires influx config)"},
	},
	Action: func(c *cli.Context) error {
		cfg := getConfig(c)
		interval := cfg.Watch.Interval
		if c.IsSet("interval") {
			interval = c.Duration("interval")
		}
		light := cfg.Watch.Light || c.Bool("light")

		sinks := []monitor.Sink{monitor.SinkFunc(func(ctx context.Context, r chirp.Reading) error {
			printReading(r)
			return nil
		})}
		if c.Bool("influx") {
			if !cfg.Influx.Enabled() {
				return console.Exit(2, "influx export requested but influx url or bucket is not configured")
			}
			influx := export.NewInflux(export.InfluxConfig{
				URL:         cfg.Influx.URL,
				Token:       cfg.Influx.Token,
				Org:         cfg.Influx.Org,
				Bucket:      cfg.Influx.Bucket,
				Measurement: cfg.Influx.Measurement,
				Tags:        cfg.Influx.Tags,
			})
			defer influx.Close()
			sinks = append(sinks, influx)
		}

		return withSensor(c, func(ctx context.Context, s *chirp.Sensor) error {
			m := monitor.New(s, sinks,
				monitor.WithInterval(interval),
				monitor.WithLight(light),
				monitor.WithLimit(c.Int("count")),
			)
			slog.Info("watching sensor", "address", s.Address(), "interval", interval, "light", light)
			err := m.Run(ctx)
			if err != nil {
				return console.Exit(1, "%s", console.Red(err))
			}
			stats := m.Stats()
			slog.Info("watch finished", "readings", stats.Readings, "measure_errors", stats.MeasureErrors, "sink_errors", stats.SinkErrors)
			return nil
		})
	},
}
