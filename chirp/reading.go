package chirp

import (
	"fmt"
	"time"
)

// Reading is a single snapshot of the sensor values.
type Reading struct {
	Time        time.Time
	Address     byte
	Capacitance uint16
	// Temperature in degrees Celsius multiplied by 10.
	Temperature int16
	Light       uint16
	HasLight    bool
}

// Celsius returns the temperature in degrees Celsius.
func (r Reading) Celsius() float32 {
	return Celsius(r.Temperature)
}

// Celsius converts a raw temperature register value.
func Celsius(raw int16) float32 {
	return float32(raw) / 10
}

// FirmwareVersion is the raw version register; 0x22 means 2.2.
type FirmwareVersion byte

func (v FirmwareVersion) Major() int {
	return int(v >> 4)
}

func (v FirmwareVersion) Minor() int {
	return int(v & 0x0F)
}

func (v FirmwareVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}
