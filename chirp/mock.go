package chirp

import (
	"context"
)

// MeasureBehaviorFunc produces a reading for MockSoilSensor.
type MeasureBehaviorFunc func(ctx context.Context, withLight bool) (Reading, error)

// MockSoilSensor stands in for Sensor wherever only Measure is needed and no
// hardware is available.
//
// Example usage:
//
//	sensor := NewMockSoilSensor(func(ctx context.Context, withLight bool) (Reading, error) {
//		return Reading{Capacitance: 420, Temperature: 215}, nil
//	})
type MockSoilSensor struct {
	behavior MeasureBehaviorFunc
}

func NewMockSoilSensor(behavior MeasureBehaviorFunc) *MockSoilSensor {
	return &MockSoilSensor{behavior: behavior}
}

// Measure returns the reading produced by the behavior function.
func (m *MockSoilSensor) Measure(ctx context.Context, withLight bool) (Reading, error) {
	return m.behavior(ctx, withLight)
}
