package chirp

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockI2CBus is a mock implementation of moisture.I2CBus using testify/mock
type MockI2CBus struct {
	mock.Mock
}

func (m *MockI2CBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	return args.Error(0)
}

func (m *MockI2CBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, len(buffer))
	if data, ok := args.Get(0).([]byte); ok && len(data) <= len(buffer) {
		copy(buffer, data)
	}
	return args.Error(1)
}

func (m *MockI2CBus) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type event struct {
	kind  string
	addr  byte
	data  []byte
	delay time.Duration
}

func write(addr byte, data ...byte) event {
	return event{kind: "write", addr: addr, data: data}
}

func read(addr byte, data ...byte) event {
	return event{kind: "read", addr: addr, data: data}
}

func sleep(d time.Duration) event {
	return event{kind: "sleep", delay: d}
}

// recordingBus logs every transaction and delay on a single timeline and
// answers reads from a queue of primed responses.
type recordingBus struct {
	events    []event
	responses [][]byte
	writeErr  error
	readErr   error
}

func (b *recordingBus) prime(responses ...[]byte) {
	b.responses = append(b.responses, responses...)
}

func (b *recordingBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	if b.writeErr != nil {
		return b.writeErr
	}
	b.events = append(b.events, write(address, append([]byte(nil), buffer...)...))
	return nil
}

func (b *recordingBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	if b.readErr != nil {
		return b.readErr
	}
	if len(b.responses) > 0 {
		copy(buffer, b.responses[0])
		b.responses = b.responses[1:]
	}
	b.events = append(b.events, read(address, append([]byte(nil), buffer...)...))
	return nil
}

func (b *recordingBus) Release(ctx context.Context) error {
	return nil
}

func (b *recordingBus) sleep(ctx context.Context, d time.Duration) error {
	b.events = append(b.events, sleep(d))
	return ctx.Err()
}

func newRecordedSensor(opts ...Opt) (*Sensor, *recordingBus) {
	bus := &recordingBus{}
	opts = append([]Opt{WithSleep(bus.sleep)}, opts...)
	return NewSensor(bus, opts...), bus
}
