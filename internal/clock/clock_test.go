package clock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/thelolagemann/sm83/internal/scheduler"
)

// nopCPU takes 4 cycles per step, and can be halted.
type nopCPU struct {
	steps  int
	halted bool
}

func (n *nopCPU) Step() uint8 {
	n.steps++
	return 4
}

func (n *nopCPU) Halted() bool { return n.halted }

func TestClock_Step(t *testing.T) {
	s := scheduler.NewScheduler()
	cpu := &nopCPU{}
	c := New(cpu, s)

	if n := c.Step(); n != 4 || s.Cycle() != 4 {
		t.Errorf("expected 4 cycles, got %d (scheduler at %d)", n, s.Cycle())
	}
	if n := c.Frame(); n != FrameCycles {
		t.Errorf("expected a frame to be %d cycles, got %d", FrameCycles, n)
	}
	if cpu.steps != 1+FrameCycles/4 {
		t.Errorf("unexpected step count %d", cpu.steps)
	}
}

func TestClock_Halted(t *testing.T) {
	s := scheduler.NewScheduler()
	fired := false
	s.RegisterEvent(scheduler.TimerTick, func() { fired = true })
	s.ScheduleEvent(scheduler.TimerTick, 1000)

	cpu := &nopCPU{halted: true}
	c := New(cpu, s)
	if n := c.Step(); n != 1004 || !fired {
		t.Errorf("expected a halted step to skip to the event, got %d cycles", n)
	}
	if cpu.steps != 1 {
		t.Errorf("expected the CPU to be stepped once after skipping, got %d", cpu.steps)
	}

	// nothing scheduled, so only the CPU step counts
	if n := c.Step(); n != 4 || cpu.steps != 2 {
		t.Errorf("expected a plain step when nothing is scheduled, got %d cycles", n)
	}
}

func TestClock_Run(t *testing.T) {
	frames := 0
	ctx, cancel := context.WithCancel(context.Background())
	c := New(&nopCPU{}, scheduler.NewScheduler(), OnFrame(func() {
		frames++
		if frames == 3 {
			cancel()
		}
	}))

	start := time.Now()
	err := c.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if frames != 3 {
		t.Errorf("expected 3 frames, got %d", frames)
	}
	// two full frames are paced at ~16.7ms each
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("expected the clock to be paced, ran 3 frames in %s", elapsed)
	}
}

func TestClock_Unpaced(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	frames := 0
	c := New(&nopCPU{}, scheduler.NewScheduler(), Speed(0), OnFrame(func() { frames++ }))
	_ = c.Run(ctx)
	if frames < 10 {
		t.Errorf("expected an unpaced clock to run many frames, got %d", frames)
	}
}
