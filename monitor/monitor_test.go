package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/moisture/chirp"
)

func TestMonitor_Limit(t *testing.T) {
	count := 0
	sensor := chirp.NewMockSoilSensor(func(ctx context.Context, withLight bool) (chirp.Reading, error) {
		count++
		return chirp.Reading{Capacitance: uint16(300 + count), HasLight: withLight}, nil
	})
	var got []chirp.Reading
	sink := SinkFunc(func(ctx context.Context, r chirp.Reading) error {
		got = append(got, r)
		return nil
	})
	m := New(sensor, []Sink{sink}, WithInterval(time.Millisecond), WithLimit(3), WithLight(true))

	require.NoError(t, m.Run(context.Background()))
	require.Len(t, got, 3)
	assert.Equal(t, uint16(301), got[0].Capacitance)
	assert.Equal(t, uint16(303), got[2].Capacitance)
	assert.True(t, got[0].HasLight)
	assert.Equal(t, Stats{Readings: 3}, m.Stats())
}

func TestMonitor_ContinuesAfterErrors(t *testing.T) {
	calls := 0
	sensor := chirp.NewMockSoilSensor(func(ctx context.Context, withLight bool) (chirp.Reading, error) {
		calls++
		if calls%2 == 1 {
			return chirp.Reading{}, errors.New("nack")
		}
		return chirp.Reading{Capacitance: 300}, nil
	})
	failing := SinkFunc(func(ctx context.Context, r chirp.Reading) error {
		return errors.New("influx down")
	})
	written := 0
	counting := SinkFunc(func(ctx context.Context, r chirp.Reading) error {
		written++
		return nil
	})
	m := New(sensor, []Sink{failing, counting}, WithInterval(time.Millisecond), WithLimit(2))

	require.NoError(t, m.Run(context.Background()))
	assert.Equal(t, 4, calls)
	assert.Equal(t, 2, written)
	assert.Equal(t, Stats{Readings: 2, MeasureErrors: 2, SinkErrors: 2}, m.Stats())
}

func TestMonitor_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sensor := chirp.NewMockSoilSensor(func(ctx context.Context, withLight bool) (chirp.Reading, error) {
		cancel()
		return chirp.Reading{}, ctx.Err()
	})
	m := New(sensor, nil, WithInterval(time.Hour))

	done := make(chan error)
	go func() {
		done <- m.Run(ctx)
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancellation")
	}
	assert.Equal(t, Stats{}, m.Stats())
}

func TestMonitor_InvalidInterval(t *testing.T) {
	m := New(chirp.NewMockSoilSensor(nil), nil, WithInterval(0))
	assert.Error(t, m.Run(context.Background()))
}
