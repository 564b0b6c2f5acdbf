// Package monitor polls a soil sensor periodically and hands the readings to sinks.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mklimuk/moisture/chirp"
)

// Source is implemented by chirp.Sensor and chirp.MockSoilSensor.
type Source interface {
	Measure(ctx context.Context, withLight bool) (chirp.Reading, error)
}

type Sink interface {
	Write(ctx context.Context, r chirp.Reading) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, r chirp.Reading) error

func (f SinkFunc) Write(ctx context.Context, r chirp.Reading) error {
	return f(ctx, r)
}

type Opts struct {
	Interval time.Duration
	Light    bool
	// Limit stops the monitor after that many successful readings; 0 means no limit.
	Limit  int
	Logger *slog.Logger
}

type Opt func(*Opts)

func WithInterval(d time.Duration) Opt {
	return func(o *Opts) {
		o.Interval = d
	}
}

func WithLight(light bool) Opt {
	return func(o *Opts) {
		o.Light = light
	}
}

func WithLimit(n int) Opt {
	return func(o *Opts) {
		o.Limit = n
	}
}

func WithLogger(l *slog.Logger) Opt {
	return func(o *Opts) {
		o.Logger = l
	}
}

type Stats struct {
	Readings      int
	MeasureErrors int
	SinkErrors    int
}

type Monitor struct {
	source Source
	sinks  []Sink
	config Opts
	log    *slog.Logger
	stats  Stats
}

func New(source Source, sinks []Sink, opts ...Opt) *Monitor {
	config := Opts{
		Interval: time.Minute,
	}
	for _, opt := range opts {
		opt(&config)
	}
	l := config.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Monitor{
		source: source,
		sinks:  sinks,
		config: config,
		log:    l,
	}
}

// Run polls immediately and then on every interval tick until ctx is done or
// the reading limit is reached. Failed measurements and sink writes are logged
// and the loop carries on.
func (m *Monitor) Run(ctx context.Context) error {
	if m.config.Interval <= 0 {
		return fmt.Errorf("monitor: invalid interval %s", m.config.Interval)
	}
	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()
	for {
		m.poll(ctx)
		if m.config.Limit > 0 && m.stats.Readings >= m.config.Limit {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (m *Monitor) poll(ctx context.Context) {
	r, err := m.source.Measure(ctx, m.config.Light)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return
		}
		m.stats.MeasureErrors++
		m.log.Error("measurement failed", "error", err)
		return
	}
	m.stats.Readings++
	m.log.Debug("reading", "capacitance", r.Capacitance, "temperature", r.Celsius(), "light", r.Light)
	for _, sink := range m.sinks {
		err = sink.Write(ctx, r)
		if err != nil {
			m.stats.SinkErrors++
			m.log.Error("could not write reading", "error", err)
		}
	}
}

// Stats returns the counters collected so far. It is not safe to call while Run is active.
func (m *Monitor) Stats() Stats {
	return m.stats
}
