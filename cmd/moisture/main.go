package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	chlog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/moisture/cmd/moisture/console"
	"github.com/mklimuk/moisture/pkg/config"
	"github.com/mklimuk/moisture/snsctx"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp()
	app.Name = "moisture"
	app.EnableBashCompletion = true
	app.Version = fmt.Sprintf("%s-%s-%s", config.Version, config.Date, config.Commit)
	app.Usage = "I2C soil moisture sensor cli"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to YAML config file",
			EnvVars: []string{"MOISTURE_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "adapter",
			Aliases: []string{"a"},
			Usage:   "bus adapter: mcp2221, generic or nanopi",
		},
		&cli.StringFlag{
			Name:    "device",
			Aliases: []string{"d"},
			Usage:   "i2c device (e.g. /dev/i2c-1) or gobot bus number",
		},
		&cli.StringFlag{
			Name:  "addr",
			Usage: "sensor address in hex (default 0x20)",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "enable verbose logging and bus frame dumps",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "disable colored output",
		},
	}
	app.Before = func(c *cli.Context) error {
		verbose := c.Bool("verbose")
		charm := chlog.NewWithOptions(os.Stderr, chlog.Options{
			ReportCaller:    verbose,
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
		})
		charm.SetColorProfile(termenv.TrueColor)
		charm.SetLevel(chlog.InfoLevel)
		if verbose {
			charm.SetLevel(chlog.DebugLevel)
		}
		slog.SetDefault(slog.New(charm))
		console.NoColor(c.Bool("no-color"))

		cfg, err := loadConfig(c)
		if err != nil {
			return console.Exit(2, "configuration error: %s", console.Red(err))
		}
		c.App.Metadata[metaConfig] = cfg
		c.Context = snsctx.SetVerbose(c.Context, verbose)
		return nil
	}
	app.Commands = cli.Commands{
		&readCmd,
		&addressCmd,
		&resetCmd,
		&watchCmd,
		&registersCmd,
		&configCmd,
		&usbCmd,
		&mcp2221Cmd,
	}
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		var exerr cli.ExitCoder
		if errors.As(err, &exerr) {
			log.Printf("unexpected error: %v", err)
			return exerr.ExitCode()
		}
		slog.Error("unexpected error", "error", err)
		return 1
	}
	return 0
}
