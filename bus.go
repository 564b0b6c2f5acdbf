// Package moisture holds the transport contracts shared by the soil moisture
// sensor driver and the I2C adapters that carry its traffic.
package moisture

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

// AddressableReader requests len(buffer) bytes from the device at address.
type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

// AddressableWriter sends buffer as a single write transaction to the device at address.
// An empty buffer is a valid transaction (address only).
type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

type I2CBus interface {
	AddressableReader
	AddressableWriter
}
