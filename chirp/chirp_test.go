package chirp

import (
	"context"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/moisture"
)

func TestSensor_Capacitance(t *testing.T) {
	sensor, bus := newRecordedSensor()
	bus.prime([]byte{0x01, 0x2C})

	c, err := sensor.Capacitance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint16(300), c)
	assert.Equal(t, []event{
		write(DefaultAddress, 0x00),
		sleep(DefaultReadDelay),
		read(DefaultAddress, 0x01, 0x2C),
	}, bus.events)
}

func TestSensor_Temperature(t *testing.T) {
	tests := []struct {
		given    []byte
		expected int16
	}{
		{[]byte{0xFF, 0x9C}, -100},
		{[]byte{0x00, 0xD7}, 215},
		{[]byte{0x00, 0x00}, 0},
		{[]byte{0x80, 0x00}, -32768},
		{[]byte{0x7F, 0xFF}, 32767},
	}
	for _, test := range tests {
		t.Run(hex.EncodeToString(test.given), func(t *testing.T) {
			sensor, bus := newRecordedSensor()
			bus.prime(test.given)
			temp, err := sensor.Temperature(context.Background())
			require.NoError(t, err)
			assert.Equal(t, test.expected, temp)
			assert.Equal(t, write(DefaultAddress, 0x05), bus.events[0])
		})
	}
}

func TestSensor_SetAddressWithReset(t *testing.T) {
	sensor, bus := newRecordedSensor()
	bus.prime([]byte{0x21})

	ok, err := sensor.SetAddress(context.Background(), 0x21, true)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, byte(0x21), sensor.Address())
	assert.Equal(t, []event{
		write(0x20, 0x01, 0x21),
		write(0x20, 0x06),
		sleep(DefaultResetDelay),
		write(0x21, 0x02),
		sleep(DefaultReadDelay),
		read(0x21, 0x21),
	}, bus.events)
}

func TestSensor_SetAddressWithoutReset(t *testing.T) {
	sensor, bus := newRecordedSensor(WithAddress(0x30))
	bus.prime([]byte{0x31})

	ok, err := sensor.SetAddress(context.Background(), 0x31, false)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []event{
		write(0x30, 0x01, 0x31),
		write(0x31, 0x02),
		sleep(DefaultReadDelay),
		read(0x31, 0x31),
	}, bus.events)
}

func TestSensor_SetAddressVerificationMismatch(t *testing.T) {
	sensor, bus := newRecordedSensor()
	bus.prime([]byte{0x22})

	ok, err := sensor.SetAddress(context.Background(), 0x21, true)
	require.NoError(t, err)
	assert.False(t, ok)
	// the new address is committed regardless of the verification outcome
	assert.Equal(t, byte(0x21), sensor.Address())
}

func TestSensor_SetAddressWriteFailure(t *testing.T) {
	sensor, bus := newRecordedSensor()
	bus.writeErr = moisture.ErrBusBusy

	ok, err := sensor.SetAddress(context.Background(), 0x21, true)
	assert.ErrorIs(t, err, moisture.ErrBusBusy)
	assert.False(t, ok)
	assert.Equal(t, byte(DefaultAddress), sensor.Address())
}

func TestSensor_SetAddressReadBackFailure(t *testing.T) {
	sensor, bus := newRecordedSensor()
	bus.readErr = errors.New("nack")

	ok, err := sensor.SetAddress(context.Background(), 0x21, false)
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Equal(t, byte(0x21), sensor.Address())
}

func TestSensor_LightAutoTrigger(t *testing.T) {
	sensor, bus := newRecordedSensor()
	bus.prime([]byte{0xFF, 0xFF})

	l, err := sensor.Light(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, uint16(65535), l)
	assert.Equal(t, []event{
		write(DefaultAddress, 0x03),
		sleep(DefaultLightDelay),
		write(DefaultAddress, 0x04),
		sleep(DefaultReadDelay),
		read(DefaultAddress, 0xFF, 0xFF),
	}, bus.events)
}

func TestSensor_LightTwoPhase(t *testing.T) {
	sensor, bus := newRecordedSensor()
	ctx := context.Background()
	bus.prime([]byte{0x12, 0x34})

	require.NoError(t, sensor.StartLightMeasurement(ctx))
	l, err := sensor.Light(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), l)
	assert.Equal(t, []event{
		write(DefaultAddress, 0x03),
		write(DefaultAddress, 0x04),
		sleep(DefaultReadDelay),
		read(DefaultAddress, 0x12, 0x34),
	}, bus.events)
}

func TestSensor_Version(t *testing.T) {
	sensor, bus := newRecordedSensor()
	bus.prime([]byte{0x22})

	v, err := sensor.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, byte(0x22), v)
	assert.Equal(t, "2.2", FirmwareVersion(v).String())
	assert.Equal(t, []event{
		write(DefaultAddress, 0x07),
		sleep(DefaultReadDelay),
		read(DefaultAddress, 0x22),
	}, bus.events)
}

func TestSensor_ReadAddress(t *testing.T) {
	sensor, bus := newRecordedSensor(WithAddress(0x21))
	bus.prime([]byte{0x21})

	addr, err := sensor.ReadAddress(context.Background())
	require.NoError(t, err)
	assert.Equal(t, byte(0x21), addr)
	assert.Equal(t, []event{
		write(0x21, 0x02),
		sleep(DefaultReadDelay),
		read(0x21, 0x21),
	}, bus.events)
}

func TestSensor_Reset(t *testing.T) {
	sensor, bus := newRecordedSensor(WithAddress(0x42))

	require.NoError(t, sensor.Begin(context.Background()))
	assert.Equal(t, []event{write(0x42, 0x06)}, bus.events)
}

func TestSensor_CustomDelays(t *testing.T) {
	sensor, bus := newRecordedSensor(WithReadDelay(5*time.Millisecond), WithLightDelay(time.Second))
	bus.prime([]byte{0x00, 0x10})

	_, err := sensor.Light(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, sleep(time.Second), bus.events[1])
	assert.Equal(t, sleep(5*time.Millisecond), bus.events[3])
}

func TestSensor_Measure(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sensor, bus := newRecordedSensor(WithClock(func() time.Time { return now }))
	bus.prime([]byte{0x01, 0xA4}, []byte{0x00, 0xD7}, []byte{0x0B, 0xB8})

	r, err := sensor.Measure(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, Reading{
		Time:        now,
		Address:     DefaultAddress,
		Capacitance: 420,
		Temperature: 215,
		Light:       3000,
		HasLight:    true,
	}, r)
	assert.InDelta(t, 21.5, r.Celsius(), 0.001)
}

func TestSensor_MeasureWithoutLight(t *testing.T) {
	sensor, bus := newRecordedSensor()
	bus.prime([]byte{0x01, 0x2C}, []byte{0xFF, 0x9C})

	r, err := sensor.Measure(context.Background(), false)
	require.NoError(t, err)
	assert.False(t, r.HasLight)
	assert.Equal(t, uint16(300), r.Capacitance)
	assert.Equal(t, int16(-100), r.Temperature)
	assert.Len(t, bus.events, 6)
}

func TestSensor_TransportErrors(t *testing.T) {
	bus := new(MockI2CBus)
	sensor := NewSensor(bus, WithSleep(func(ctx context.Context, d time.Duration) error { return nil }))
	ctx := context.Background()

	bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), []byte{regVersion}).
		Return(moisture.ErrBusBusy).Once()
	v, err := sensor.Version(ctx)
	assert.ErrorIs(t, err, moisture.ErrBusBusy)
	assert.Zero(t, v)

	readErr := errors.New("invalid data size byte")
	bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), []byte{regCapacitance}).
		Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(DefaultAddress), 2).
		Return([]byte{0x01, 0x2C}, readErr).Once()
	c, err := sensor.Capacitance(ctx)
	assert.ErrorIs(t, err, readErr)
	assert.Zero(t, c)

	bus.AssertExpectations(t)
}

func TestSensor_ContextCancelled(t *testing.T) {
	bus := new(MockI2CBus)
	sensor := NewSensor(bus)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bus.On("WriteToAddr", mock.Anything, byte(DefaultAddress), []byte{regCapacitance}).Return(nil).Once()
	_, err := sensor.Capacitance(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	bus.AssertNotCalled(t, "ReadFromAddr", mock.Anything, mock.Anything, mock.Anything)
}

func TestSleep(t *testing.T) {
	ctx := context.Background()
	start := time.Now()
	assert.NoError(t, Sleep(ctx, 10*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	assert.NoError(t, Sleep(ctx, 0))

	ctx, cancel := context.WithTimeout(ctx, 5*time.Millisecond)
	defer cancel()
	start = time.Now()
	assert.ErrorIs(t, Sleep(ctx, time.Minute), context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
