package scheduler

import (
	"reflect"
	"testing"
)

func TestScheduler_Order(t *testing.T) {
	s := NewScheduler()
	var fired []EventType
	for e := DividerTick; e < eventTypes; e++ {
		e := e
		s.RegisterEvent(e, func() { fired = append(fired, e) })
	}

	s.ScheduleEvent(DisplayLine, 30)
	s.ScheduleEvent(DividerTick, 10)
	s.ScheduleEvent(TimerTick, 20)
	s.ScheduleEvent(SerialTransfer, 20)

	s.Tick(9)
	if len(fired) != 0 {
		t.Fatalf("expected nothing to fire yet, got %v", fired)
	}
	s.Tick(11)
	want := []EventType{DividerTick, TimerTick, SerialTransfer}
	if !reflect.DeepEqual(fired, want) {
		t.Errorf("expected %v, got %v", want, fired)
	}
	if n, ok := s.Until(DisplayLine); !ok || n != 10 {
		t.Errorf("expected DisplayLine in 10 cycles, got %d %v", n, ok)
	}
	if s.Cycle() != 20 {
		t.Errorf("expected cycle 20, got %d", s.Cycle())
	}
}

func TestScheduler_Reschedule(t *testing.T) {
	s := NewScheduler()
	count := 0
	s.RegisterEvent(DividerTick, func() {
		count++
		s.ScheduleEvent(DividerTick, 256)
	})
	s.ScheduleEvent(DividerTick, 256)

	s.Tick(1024)
	if count != 4 {
		t.Errorf("expected 4 ticks, got %d", count)
	}

	// scheduling again replaces the pending event
	s.ScheduleEvent(DividerTick, 10)
	s.ScheduleEvent(DividerTick, 100)
	s.Tick(50)
	if count != 4 {
		t.Errorf("expected the replaced event not to fire, got %d", count)
	}
}

func TestScheduler_Deschedule(t *testing.T) {
	s := NewScheduler()
	fired := false
	s.RegisterEvent(TimerTick, func() { fired = true })
	s.ScheduleEvent(TimerTick, 5)
	s.ScheduleEvent(DividerTick, 3)
	s.DescheduleEvent(TimerTick)
	s.DescheduleEvent(TimerTick)

	s.Tick(10)
	if fired {
		t.Errorf("expected descheduled event not to fire")
	}
	if _, ok := s.Until(TimerTick); ok {
		t.Errorf("expected TimerTick not to be scheduled")
	}
}

func TestScheduler_Skip(t *testing.T) {
	s := NewScheduler()
	if s.Skip() != 0 {
		t.Errorf("expected empty scheduler not to skip")
	}
	fired := false
	s.RegisterEvent(SerialTransfer, func() { fired = true })
	s.ScheduleEvent(SerialTransfer, 4096)
	if n := s.Skip(); n != 4096 || !fired {
		t.Errorf("expected to skip 4096 cycles and fire, got %d %v", n, fired)
	}
	if s.String() != "" {
		t.Errorf("expected empty list, got %s", s)
	}
}

func TestScheduler_CoarseTicks(t *testing.T) {
	s := NewScheduler()
	count := 0
	var at []uint64
	s.RegisterEvent(TimerTick, func() {
		count++
		at = append(at, s.Cycle())
		s.ScheduleEvent(TimerTick, 16)
	})
	s.ScheduleEvent(TimerTick, 16)

	for i := 0; i < 10; i++ {
		s.Tick(24)
	}
	if count != 15 {
		t.Errorf("expected 15 events in 240 cycles, got %d", count)
	}
	for i, c := range at {
		if want := uint64(16 * (i + 1)); c != want {
			t.Errorf("event %d: expected to run at cycle %d, got %d", i, want, c)
		}
	}
	if s.Cycle() != 240 {
		t.Errorf("expected cycle 240, got %d", s.Cycle())
	}
	if n, ok := s.Until(TimerTick); !ok || n != 16 {
		t.Errorf("expected next event in 16 cycles, got %d %v", n, ok)
	}
}
