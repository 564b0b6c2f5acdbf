package chirp

import (
	"context"
	"log/slog"
	"time"
)

// Device timings. The read delay is not in any datasheet; the firmware needs it
// to prepare the response after the register pointer is written.
const (
	DefaultReadDelay  = 20 * time.Millisecond
	DefaultLightDelay = 3 * time.Second
	DefaultResetDelay = time.Second
)

// SleepFunc blocks for d or until ctx is done, whichever comes first.
type SleepFunc func(ctx context.Context, d time.Duration) error

type Opts struct {
	Address    byte
	ReadDelay  time.Duration
	LightDelay time.Duration
	ResetDelay time.Duration
	Sleep      SleepFunc
	Clock      func() time.Time
	Logger     *slog.Logger
}

type Opt func(*Opts)

func WithAddress(address byte) Opt {
	return func(o *Opts) {
		o.Address = address
	}
}

func WithReadDelay(delay time.Duration) Opt {
	return func(o *Opts) {
		o.ReadDelay = delay
	}
}

func WithLightDelay(delay time.Duration) Opt {
	return func(o *Opts) {
		o.LightDelay = delay
	}
}

func WithResetDelay(delay time.Duration) Opt {
	return func(o *Opts) {
		o.ResetDelay = delay
	}
}

// WithSleep replaces the delay implementation, e.g. with a no-op in tests.
func WithSleep(sleep SleepFunc) Opt {
	return func(o *Opts) {
		o.Sleep = sleep
	}
}

func WithClock(clock func() time.Time) Opt {
	return func(o *Opts) {
		o.Clock = clock
	}
}

func WithLogger(l *slog.Logger) Opt {
	return func(o *Opts) {
		o.Logger = l
	}
}

func defaultOpts() Opts {
	return Opts{
		Address:    DefaultAddress,
		ReadDelay:  DefaultReadDelay,
		LightDelay: DefaultLightDelay,
		ResetDelay: DefaultResetDelay,
		Sleep:      Sleep,
		Clock:      time.Now,
	}
}

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
