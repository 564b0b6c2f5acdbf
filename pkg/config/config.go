// Package config holds the moisture tool configuration file model and the
// build metadata injected by the dev tool.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Set at build time with -ldflags "-X".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const (
	AdapterMCP2221 = "mcp2221"
	AdapterGeneric = "generic"
	AdapterNanoPi  = "nanopi"
)

var ErrUnknownAdapter = errors.New("unknown adapter")

type Config struct {
	Adapter string `yaml:"adapter"`
	Device  string `yaml:"device"`
	// Address is the sensor bus address (7-bit).
	Address uint8  `yaml:"address"`
	Delays  Delays `yaml:"delays"`
	Watch   Watch  `yaml:"watch"`
	Influx  Influx `yaml:"influx"`
}

type Delays struct {
	Read  time.Duration `yaml:"read"`
	Light time.Duration `yaml:"light"`
	Reset time.Duration `yaml:"reset"`
}

type Watch struct {
	Interval time.Duration `yaml:"interval"`
	Light    bool          `yaml:"light"`
}

type Influx struct {
	URL         string            `yaml:"url"`
	Token       string            `yaml:"token"`
	Org         string            `yaml:"org"`
	Bucket      string            `yaml:"bucket"`
	Measurement string            `yaml:"measurement"`
	Tags        map[string]string `yaml:"tags"`
}

// Enabled reports whether readings should be exported to InfluxDB.
func (i Influx) Enabled() bool {
	return i.URL != "" && i.Bucket != ""
}

func Default() Config {
	return Config{
		Adapter: AdapterMCP2221,
		Device:  "/dev/i2c-1",
		Address: 0x20,
		Delays: Delays{
			Read:  20 * time.Millisecond,
			Light: 3 * time.Second,
			Reset: time.Second,
		},
		Watch: Watch{
			Interval: time.Minute,
		},
		Influx: Influx{
			Measurement: "soil",
		},
	}
}

// Load reads the YAML file at path on top of the defaults. Unknown keys are
// rejected so that typos do not go unnoticed.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("could not decode config: %w", err)
	}
	err = cfg.Validate()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Adapter {
	case AdapterMCP2221, AdapterGeneric, AdapterNanoPi:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAdapter, c.Adapter)
	}
	if c.Address < 0x01 || c.Address > 0x7F {
		return fmt.Errorf("sensor address %#x out of range 0x01-0x7f", c.Address)
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %s", c.Watch.Interval)
	}
	return nil
}

// String renders the configuration as YAML with the InfluxDB token masked.
func (c Config) String() string {
	if c.Influx.Token != "" {
		c.Influx.Token = "****"
	}
	out, err := yaml.Marshal(c)
	if err != nil {
		return err.Error()
	}
	return string(out)
}
