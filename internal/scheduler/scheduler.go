// Package scheduler runs callbacks at absolute cycle counts, so
// that peripherals only do work when their registers change
// rather than on every clock cycle.
package scheduler

import (
	"fmt"
	"strings"
)

// Scheduler is a simple event scheduler that can be used to schedule events
// to be executed at a specific cycle.
//
// The scheduler is a linked list of events, sorted by the cycle at which
// they should be executed. When the scheduler is ticked, every event due
// at or before the new cycle count is removed from the list and its
// handler called, in cycle order. Events of equal cycle run in the
// order they were scheduled.
type Scheduler struct {
	cycles uint64
	root   *Event

	handlers [eventTypes]func()
	events   [eventTypes]Event // preallocated, one per type
}

// NewScheduler returns a Scheduler at cycle 0 with nothing pending.
func NewScheduler() *Scheduler {
	s := &Scheduler{}
	for i := range s.events {
		s.events[i].eventType = EventType(i)
	}
	return s
}

// Cycle returns the number of cycles the scheduler has been
// ticked by.
func (s *Scheduler) Cycle() uint64 {
	return s.cycles
}

// RegisterEvent sets the handler called when an event of the
// given type fires. Handlers are registered once, which keeps
// scheduling free of allocations.
func (s *Scheduler) RegisterEvent(eventType EventType, fn func()) {
	s.handlers[eventType] = fn
}

// Tick advances the scheduler by c cycles, running every event
// that falls due. While a handler runs, Cycle reports the cycle
// its event was due at, so a handler that reschedules itself
// keeps its period however coarse the tick. If the new cycle is
// also due it runs again within the same Tick.
func (s *Scheduler) Tick(c uint64) {
	target := s.cycles + c
	for s.root != nil && s.root.cycle <= target {
		s.cycles = s.root.cycle
		s.pop()
	}
	s.cycles = target
}

// pop removes the first event and runs its handler.
func (s *Scheduler) pop() {
	event := s.root
	s.root = event.next
	event.next = nil
	event.scheduled = false

	if fn := s.handlers[event.eventType]; fn != nil {
		fn()
	}
}

// ScheduleEvent schedules the event to fire after the given number
// of cycles from now, replacing any pending event of the same type.
func (s *Scheduler) ScheduleEvent(eventType EventType, cycles uint64) {
	s.DescheduleEvent(eventType)

	this := &s.events[eventType]
	this.cycle = s.cycles + cycles
	this.scheduled = true

	// find the first event that fires strictly later
	link := &s.root
	for *link != nil && (*link).cycle <= this.cycle {
		link = &(*link).next
	}
	this.next = *link
	*link = this
}

// DescheduleEvent removes the pending event of the given type,
// if any.
func (s *Scheduler) DescheduleEvent(eventType EventType) {
	this := &s.events[eventType]
	if !this.scheduled {
		return
	}
	for link := &s.root; *link != nil; link = &(*link).next {
		if *link == this {
			*link = this.next
			break
		}
	}
	this.next = nil
	this.scheduled = false
}

// Until returns the cycles remaining before the event of the given
// type fires, and false if it is not scheduled.
func (s *Scheduler) Until(eventType EventType) (uint64, bool) {
	this := &s.events[eventType]
	if !this.scheduled {
		return 0, false
	}
	if this.cycle < s.cycles {
		return 0, true
	}
	return this.cycle - s.cycles, true
}

// Next returns the cycles until the earliest pending event, and
// false if nothing is scheduled.
func (s *Scheduler) Next() (uint64, bool) {
	if s.root == nil {
		return 0, false
	}
	return s.Until(s.root.eventType)
}

// Skip jumps the cycle counter straight to the next pending event
// and runs it, returning the number of cycles skipped. It is used
// while the CPU is halted, as nothing but an event can wake it.
func (s *Scheduler) Skip() uint64 {
	n, ok := s.Next()
	if !ok {
		return 0
	}
	s.Tick(n)
	return n
}

func (s *Scheduler) String() string {
	var b strings.Builder
	for event := s.root; event != nil; event = event.next {
		fmt.Fprintf(&b, "%s:%d->", event.eventType, event.cycle)
	}
	return b.String()
}
