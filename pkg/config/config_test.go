package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.False(t, cfg.Influx.Enabled())
}

func TestParse_Overrides(t *testing.T) {
	cfg, err := Parse([]byte(`
adapter: generic
device: /dev/i2c-0
address: 0x21
delays:
  light: 5s
watch:
  interval: 30s
  light: true
influx:
  url: http://localhost:8086
  bucket: garden
  tags:
    bed: tomatoes
`))
	require.NoError(t, err)
	assert.Equal(t, AdapterGeneric, cfg.Adapter)
	assert.Equal(t, "/dev/i2c-0", cfg.Device)
	assert.Equal(t, uint8(0x21), cfg.Address)
	assert.Equal(t, 5*time.Second, cfg.Delays.Light)
	// untouched keys keep their defaults
	assert.Equal(t, 20*time.Millisecond, cfg.Delays.Read)
	assert.Equal(t, time.Second, cfg.Delays.Reset)
	assert.Equal(t, 30*time.Second, cfg.Watch.Interval)
	assert.True(t, cfg.Watch.Light)
	assert.True(t, cfg.Influx.Enabled())
	assert.Equal(t, "soil", cfg.Influx.Measurement)
	assert.Equal(t, map[string]string{"bed": "tomatoes"}, cfg.Influx.Tags)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		given string
	}{
		{"unknown key", "adress: 0x21"},
		{"unknown adapter", "adapter: ftdi"},
		{"address zero", "address: 0"},
		{"address too high", "address: 0x80"},
		{"bad duration", "delays: {read: fast}"},
		{"zero interval", "watch: {interval: 0s}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.given))
			assert.Error(t, err)
		})
	}
	_, err := Parse([]byte("adapter: ftdi"))
	assert.ErrorIs(t, err, ErrUnknownAdapter)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moisture.yaml")
	require.NoError(t, os.WriteFile(path, []byte("adapter: nanopi\ndevice: \"0\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, AdapterNanoPi, cfg.Adapter)
	assert.Equal(t, "0", cfg.Device)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfig_StringMasksToken(t *testing.T) {
	cfg := Default()
	cfg.Influx.Token = "secret"
	out := cfg.String()
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "adapter: mcp2221")
}
