package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"

	"github.com/mklimuk/moisture"
	"github.com/mklimuk/moisture/adapter"
	"github.com/mklimuk/moisture/chirp"
	"github.com/mklimuk/moisture/cmd/moisture/console"
	"github.com/mklimuk/moisture/i2c"
	"github.com/mklimuk/moisture/pkg/config"
)

const metaConfig = "config"

// loadConfig reads the config file (if any) and applies global flag overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return cfg, err
		}
	}
	if c.IsSet("adapter") {
		cfg.Adapter = c.String("adapter")
	}
	if c.IsSet("device") {
		cfg.Device = c.String("device")
	}
	if c.IsSet("addr") {
		addr, err := parseAddress(c.String("addr"))
		if err != nil {
			return cfg, err
		}
		cfg.Address = addr
	}
	return cfg, cfg.Validate()
}

func getConfig(c *cli.Context) config.Config {
	cfg, ok := c.App.Metadata[metaConfig].(config.Config)
	if !ok {
		return config.Default()
	}
	return cfg
}

// parseAddress accepts a 7-bit sensor address in hex, with or without 0x prefix.
func parseAddress(s string) (byte, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if !chirp.ValidAddress(byte(v)) {
		return 0, fmt.Errorf("address %#x out of range %#x-%#x", v, chirp.MinAddress, chirp.MaxAddress)
	}
	return byte(v), nil
}

// gobotBusNumber extracts the bus number from "/dev/i2c-N" or "N"; -1 selects the default bus.
func gobotBusNumber(dev string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(dev, "/dev/i2c-"))
	if err != nil || n < 0 {
		return -1
	}
	return n
}

func openBus(ctx context.Context, cfg config.Config) (moisture.I2CBus, func(), error) {
	switch cfg.Adapter {
	case config.AdapterMCP2221:
		a := adapter.NewMCP2221()
		err := a.Init(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("adapter initialization error: %w", err)
		}
		return a, func() {}, nil
	case config.AdapterGeneric:
		bus, err := i2c.NewGenericBus(cfg.Device)
		if err != nil {
			return nil, nil, fmt.Errorf("adapter initialization error: %w", err)
		}
		return bus, func() {
			err := bus.Close()
			if err != nil {
				console.Errorf("error closing bus: %s", console.Red(err))
			}
		}, nil
	case config.AdapterNanoPi:
		npi := nanopi.NewNeoAdaptor()
		err := npi.Connect()
		if err != nil {
			return nil, nil, fmt.Errorf("adaptor connect error: %w", err)
		}
		bus := i2c.NewGobotBus(npi, gobotBusNumber(cfg.Device))
		return bus, func() {
			if err := bus.Close(); err != nil {
				console.Errorf("error closing bus: %s", console.Red(err))
			}
			_ = npi.Finalize()
		}, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownAdapter, cfg.Adapter)
}

func newSensor(cfg config.Config, bus moisture.I2CBus) *chirp.Sensor {
	return chirp.NewSensor(bus,
		chirp.WithAddress(cfg.Address),
		chirp.WithReadDelay(cfg.Delays.Read),
		chirp.WithLightDelay(cfg.Delays.Light),
		chirp.WithResetDelay(cfg.Delays.Reset),
	)
}

// withSensor opens the configured bus, runs fn against the sensor and closes the bus.
func withSensor(c *cli.Context, fn func(ctx context.Context, s *chirp.Sensor) error) error {
	cfg := getConfig(c)
	bus, closeBus, err := openBus(c.Context, cfg)
	if err != nil {
		return console.Exit(1, "%s", console.Red(err))
	}
	defer closeBus()
	return fn(c.Context, newSensor(cfg, bus))
}
