// Package i2c provides moisture.I2CBus implementations for buses exposed by
// the host (Linux /dev/i2c-N through periph.io, single board computers
// through gobot).
package i2c

import (
	"context"
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/mklimuk/moisture"
	"github.com/mklimuk/moisture/snsctx"
)

var _ moisture.I2CBus = &GenericBus{}

type GenericBus struct {
	bus i2c.BusCloser
}

// NewGenericBus initializes the host drivers and opens the bus by name,
// e.g. "/dev/i2c-1", "I2C1" or "1". An empty name opens the first bus found.
func NewGenericBus(dev string) (*GenericBus, error) {
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	for _, driver := range state.Loaded {
		slog.Debug("host driver loaded", "driver", driver.String())
	}
	bus, err := i2creg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("could not open i2c bus %q: %w", dev, err)
	}
	return &GenericBus{
		bus: bus,
	}, nil
}

func (b *GenericBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	err := b.bus.Tx(uint16(address), nil, buffer)
	if err != nil {
		return fmt.Errorf("could not read from i2c bus %x: %w", address, err)
	}
	if snsctx.IsVerbose(ctx) {
		snsctx.Logger(ctx).Debug("i2c read", "addr", fmt.Sprintf("%#x", address), "data", fmt.Sprintf("% x", buffer))
	}
	return nil
}

func (b *GenericBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	if snsctx.IsVerbose(ctx) {
		snsctx.Logger(ctx).Debug("i2c write", "addr", fmt.Sprintf("%#x", address), "data", fmt.Sprintf("% x", buffer))
	}
	err := b.bus.Tx(uint16(address), buffer, nil)
	if err != nil {
		return fmt.Errorf("could not write to i2c bus %x: %w", address, err)
	}
	return nil
}

// Release is a no-op; the kernel driver owns bus recovery.
func (b *GenericBus) Release(ctx context.Context) error {
	return nil
}

// SetSpeed changes the bus clock, in Hz.
func (b *GenericBus) SetSpeed(hz int64) error {
	err := b.bus.SetSpeed(physic.Frequency(hz) * physic.Hertz)
	if err != nil {
		return fmt.Errorf("could not set i2c bus speed to %d Hz: %w", hz, err)
	}
	return nil
}

func (b *GenericBus) String() string {
	return b.bus.String()
}

func (b *GenericBus) Close() error {
	return b.bus.Close()
}
