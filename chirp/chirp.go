// Package chirp implements a driver for the I2C capacitive soil moisture sensor
// (Chirp firmware, https://github.com/Miceuz/i2c-moisture-sensor).
//
// Typical usage:
//
//	s := chirp.NewSensor(bus)
//	_ = s.Reset(ctx)
//	time.Sleep(time.Second) // the sensor needs 0.5-1s to boot after reset
//	c, err := s.Capacitance(ctx)
//
// Light measurement is two-phase: StartLightMeasurement, wait at least 3 seconds,
// then Light(ctx, false). Light(ctx, true) does all three in one blocking call.
package chirp

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mklimuk/moisture"
)

type Sensor struct {
	mx sync.Mutex

	transport moisture.I2CBus
	address   byte
	config    Opts
	log       *slog.Logger
	buf       []byte
}

func NewSensor(transport moisture.I2CBus, opts ...Opt) *Sensor {
	config := defaultOpts()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Sleep == nil {
		config.Sleep = Sleep
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	l := config.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Sensor{
		transport: transport,
		address:   config.Address,
		config:    config,
		log:       l.With("sensor", "chirp"),
		buf:       make([]byte, 2),
	}
}

// Address returns the cached bus address. It does not query the device.
func (s *Sensor) Address() byte {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.address
}

// Reset restarts the sensor firmware. The caller must give the sensor 0.5-1s
// to boot before the next request.
func (s *Sensor) Reset(ctx context.Context) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.write(ctx, s.address, regReset)
}

// Begin initializes the sensor. At the moment it only performs a Reset.
func (s *Sensor) Begin(ctx context.Context) error {
	return s.Reset(ctx)
}

// Capacitance returns the raw moisture reading. More moisture gives a higher
// value; a dry sensor in free air reads about 290-310 at 5V supply.
func (s *Sensor) Capacitance(ctx context.Context) (uint16, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.readUint16(ctx, regCapacitance)
}

// StartLightMeasurement triggers a light measurement. The result is available
// through Light no sooner than 3 seconds later.
func (s *Sensor) StartLightMeasurement(ctx context.Context) error {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.write(ctx, s.address, regMeasureLight)
}

// Light returns the light level; lower means brighter, 65535 is a dark room.
// With autoTrigger set the measurement is started first and the call blocks
// for the light delay. Reading while the measurement is still in progress
// returns the previous result, and darkness makes the measurement slower.
func (s *Sensor) Light(ctx context.Context, autoTrigger bool) (uint16, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.light(ctx, autoTrigger)
}

func (s *Sensor) light(ctx context.Context, autoTrigger bool) (uint16, error) {
	if autoTrigger {
		err := s.write(ctx, s.address, regMeasureLight)
		if err != nil {
			return 0, err
		}
		err = s.config.Sleep(ctx, s.config.LightDelay)
		if err != nil {
			return 0, fmt.Errorf("chirp: light measurement wait interrupted: %w", err)
		}
	}
	return s.readUint16(ctx, regLight)
}

// Temperature returns degrees Celsius multiplied by 10.
func (s *Sensor) Temperature(ctx context.Context) (int16, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	raw, err := s.readUint16(ctx, regTemperature)
	if err != nil {
		return 0, err
	}
	return int16(raw), nil
}

// Version returns the raw firmware version byte, see FirmwareVersion.
func (s *Sensor) Version(ctx context.Context) (byte, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.readByte(ctx, s.address, regVersion)
}

// ReadAddress asks the sensor for the address it answers on. Useful to check
// a previous SetAddress without reset once the sensor has been power cycled.
func (s *Sensor) ReadAddress(ctx context.Context) (byte, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.readByte(ctx, s.address, regGetAddress)
}

// SetAddress moves the sensor to addr (1..127, not validated). With reset set
// the sensor is restarted so that the new address takes effect immediately.
// The driver switches to addr once the address write (and reset) went through,
// even if the read-back does not confirm it; the returned flag carries the
// verification result.
func (s *Sensor) SetAddress(ctx context.Context, addr byte, reset bool) (bool, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	old := s.address
	err := s.write(ctx, old, regSetAddress, addr)
	if err != nil {
		return false, err
	}
	if reset {
		err = s.write(ctx, old, regReset)
		if err != nil {
			return false, err
		}
		err = s.config.Sleep(ctx, s.config.ResetDelay)
		if err != nil {
			return false, fmt.Errorf("chirp: reset wait interrupted: %w", err)
		}
	}
	s.address = addr
	s.log.Debug("sensor address changed", "old", fmt.Sprintf("%#x", old), "new", fmt.Sprintf("%#x", addr), "reset", reset)
	got, err := s.readByte(ctx, addr, regGetAddress)
	if err != nil {
		return false, err
	}
	if got != addr {
		s.log.Warn("sensor address verification failed", "expected", fmt.Sprintf("%#x", addr), "got", fmt.Sprintf("%#x", got))
		return false, nil
	}
	return true, nil
}

// Measure collects capacitance, temperature and, if withLight is set, an
// auto-triggered light reading.
func (s *Sensor) Measure(ctx context.Context, withLight bool) (Reading, error) {
	s.mx.Lock()
	defer s.mx.Unlock()
	r := Reading{Address: s.address}
	var err error
	r.Capacitance, err = s.readUint16(ctx, regCapacitance)
	if err != nil {
		return Reading{}, err
	}
	raw, err := s.readUint16(ctx, regTemperature)
	if err != nil {
		return Reading{}, err
	}
	r.Temperature = int16(raw)
	if withLight {
		r.Light, err = s.light(ctx, true)
		if err != nil {
			return Reading{}, err
		}
		r.HasLight = true
	}
	r.Time = s.config.Clock()
	return r, nil
}

func (s *Sensor) write(ctx context.Context, addr byte, reg byte, payload ...byte) error {
	err := s.transport.WriteToAddr(ctx, addr, append([]byte{reg}, payload...))
	if err != nil {
		return fmt.Errorf("chirp: could not write register %#x at %#x: %w", reg, addr, err)
	}
	return nil
}

// read sets the register pointer, waits for the sensor to prepare the data
// and reads len(resp) bytes.
func (s *Sensor) read(ctx context.Context, addr byte, reg byte, resp []byte) error {
	err := s.write(ctx, addr, reg)
	if err != nil {
		return err
	}
	err = s.config.Sleep(ctx, s.config.ReadDelay)
	if err != nil {
		return fmt.Errorf("chirp: register %#x read interrupted: %w", reg, err)
	}
	err = s.transport.ReadFromAddr(ctx, addr, resp)
	if err != nil {
		return fmt.Errorf("chirp: could not read register %#x at %#x: %w", reg, addr, err)
	}
	return nil
}

func (s *Sensor) readUint16(ctx context.Context, reg byte) (uint16, error) {
	err := s.read(ctx, s.address, reg, s.buf[:2])
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(s.buf[:2]), nil
}

func (s *Sensor) readByte(ctx context.Context, addr byte, reg byte) (byte, error) {
	err := s.read(ctx, addr, reg, s.buf[:1])
	if err != nil {
		return 0, err
	}
	return s.buf[0], nil
}
