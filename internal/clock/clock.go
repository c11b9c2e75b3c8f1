// Package clock drives the CPU and the scheduler, and paces them to
// real time.
package clock

import (
	"context"
	"time"

	"github.com/thelolagemann/sm83/internal/scheduler"
	"github.com/thelolagemann/sm83/pkg/log"
)

const (
	// Frequency is the DMG clock rate in Hz.
	Frequency = 4194304
	// FrameCycles is the number of cycles between pacing points.
	FrameCycles = 70224
)

// Stepper executes one instruction and returns the clock cycles it
// took.
type Stepper interface {
	Step() uint8
}

// halter is implemented by steppers that can report being halted,
// letting the clock skip straight to the next scheduled event.
type halter interface {
	Halted() bool
}

// Opt configures a Clock.
type Opt func(c *Clock)

// Speed sets the emulation speed as a multiple of real hardware.
// Zero or less runs unpaced.
func Speed(speed float64) Opt {
	return func(c *Clock) {
		c.speed = speed
	}
}

// WithLogger sets the logger the measured frequency is reported to.
func WithLogger(l log.Logger) Opt {
	return func(c *Clock) {
		c.log = l
	}
}

// OnFrame sets a function called at every pacing point, from the
// goroutine running the clock.
func OnFrame(fn func()) Opt {
	return func(c *Clock) {
		c.onFrame = fn
	}
}

// Clock steps a Stepper and ticks a Scheduler with the cycles each
// step returns.
type Clock struct {
	cpu   Stepper
	sched *scheduler.Scheduler

	speed   float64
	log     log.Logger
	onFrame func()

	// frequency reporting
	reportCycles uint64
	reportStart  time.Time
}

// New returns a Clock running at normal speed.
func New(cpu Stepper, sched *scheduler.Scheduler, opts ...Opt) *Clock {
	c := &Clock{
		cpu:   cpu,
		sched: sched,
		speed: 1,
		log:   log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Step executes a single instruction and ticks the scheduler,
// returning the cycles elapsed. A halted CPU first skips ahead to
// the next scheduled event, and is then stepped so that it can
// wake on any interrupt the event requested.
func (c *Clock) Step() uint64 {
	var skipped uint64
	if h, ok := c.cpu.(halter); ok && h.Halted() {
		skipped = c.sched.Skip()
	}
	cycles := uint64(c.cpu.Step())
	c.sched.Tick(cycles)
	return skipped + cycles
}

// Frame steps until at least FrameCycles cycles have elapsed and
// returns the cycles run.
func (c *Clock) Frame() uint64 {
	var cycles uint64
	for cycles < FrameCycles {
		cycles += c.Step()
	}
	return cycles
}

// Run steps the CPU until ctx is cancelled, sleeping at the end of
// every frame so that emulated time keeps pace with real time. It
// returns the context's error.
func (c *Clock) Run(ctx context.Context) error {
	start := time.Now()
	c.reportStart = start
	var emulated time.Duration

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		cycles := c.Frame()
		if c.onFrame != nil {
			c.onFrame()
		}
		c.report(cycles)

		if c.speed <= 0 {
			continue
		}
		emulated += time.Duration(float64(cycles) / (Frequency * c.speed) * float64(time.Second))
		if ahead := emulated - time.Since(start); ahead > 0 {
			timer := time.NewTimer(ahead)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
}

// report logs the measured clock frequency once per second.
func (c *Clock) report(cycles uint64) {
	c.reportCycles += cycles
	elapsed := time.Since(c.reportStart)
	if elapsed < time.Second {
		return
	}
	c.log.Debugf("clock: frequency %.2fMHz", float64(c.reportCycles)/elapsed.Seconds()/1e6)
	c.reportCycles = 0
	c.reportStart = time.Now()
}
