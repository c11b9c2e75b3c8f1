// Package timer provides the DIV register and the programmable
// TIMA/TMA/TAC timer, both driven by scheduler events.
package timer

import (
	"github.com/thelolagemann/sm83/internal/interrupts"
	"github.com/thelolagemann/sm83/internal/io"
	"github.com/thelolagemann/sm83/internal/scheduler"
	"github.com/thelolagemann/sm83/internal/types"
)

// DividerPeriod is the number of clock cycles between increments
// of DIV (16384 Hz).
const DividerPeriod = 256

// periods are the TIMA increment periods selected by TAC bits 0-1.
var periods = [4]uint64{1024, 16, 64, 256}

// Divider is the DIV register. It counts up every 256 cycles, and
// any write resets it to 0.
type Divider struct {
	div   uint8
	sched *scheduler.Scheduler
}

// NewDivider registers the divider with the scheduler and starts it.
func NewDivider(s *scheduler.Scheduler) *Divider {
	d := &Divider{sched: s}
	s.RegisterEvent(scheduler.DividerTick, d.tick)
	s.ScheduleEvent(scheduler.DividerTick, DividerPeriod)
	return d
}

func (d *Divider) tick() {
	d.div++
	d.sched.ScheduleEvent(scheduler.DividerTick, DividerPeriod)
}

// Read implements io.Device.
func (d *Divider) Read(uint16) uint8 {
	return d.div
}

// Write implements io.Device. The value is ignored.
func (d *Divider) Write(uint16, uint8) {
	d.div = 0
	d.sched.ScheduleEvent(scheduler.DividerTick, DividerPeriod)
}

// Load implements types.Stater.
func (d *Divider) Load(s *types.State) {
	d.div = s.Read8()
	d.sched.ScheduleEvent(scheduler.DividerTick, uint64(s.Read16()))
}

// Save implements types.Stater.
func (d *Divider) Save(s *types.State) {
	remaining, _ := d.sched.Until(scheduler.DividerTick)
	s.Write8(d.div)
	s.Write16(uint16(remaining))
}

// Controller is the programmable timer at 0xFF05 - 0xFF07. While
// enabled, TIMA increments at the rate selected by TAC, and on
// overflow is reloaded from TMA and a Timer interrupt is requested.
type Controller struct {
	tima, tma, tac uint8

	sched *scheduler.Scheduler
	irq   *interrupts.Service
}

// NewController returns a new timer controller.
func NewController(s *scheduler.Scheduler, irq *interrupts.Service) *Controller {
	c := &Controller{sched: s, irq: irq}
	s.RegisterEvent(scheduler.TimerTick, c.tick)
	return c
}

// Enabled reports whether TAC bit 2 is set.
func (c *Controller) Enabled() bool {
	return c.tac&types.Bit2 != 0
}

func (c *Controller) period() uint64 {
	return periods[c.tac&0b11]
}

func (c *Controller) tick() {
	c.tima++
	if c.tima == 0 {
		c.tima = c.tma
		c.irq.Request(interrupts.TimerFlag)
	}
	c.sched.ScheduleEvent(scheduler.TimerTick, c.period())
}

// Read implements io.Device.
func (c *Controller) Read(offset uint16) uint8 {
	switch offset {
	case 0:
		return c.tima
	case 1:
		return c.tma
	case 2:
		return c.tac | 0xF8
	}
	return 0xFF
}

// Write implements io.Device.
func (c *Controller) Write(offset uint16, value uint8) {
	switch offset {
	case 0:
		c.tima = value
	case 1:
		c.tma = value
	case 2:
		old := c.tac
		c.tac = value & 0x07
		if old == c.tac {
			return
		}
		if c.Enabled() {
			c.sched.ScheduleEvent(scheduler.TimerTick, c.period())
		} else {
			c.sched.DescheduleEvent(scheduler.TimerTick)
		}
	}
}

// Attach maps the divider and controller onto the bus.
func Attach(b *io.Bus, d *Divider, c *Controller) {
	b.Attach(types.DIV, 1, d)
	b.Attach(types.TIMA, types.TimerRegister, c)
}

var _ types.Stater = (*Controller)(nil)

// Load implements types.Stater.
func (c *Controller) Load(s *types.State) {
	c.tima = s.Read8()
	c.tma = s.Read8()
	c.tac = s.Read8()
	remaining := uint64(s.Read16())
	if c.Enabled() {
		c.sched.ScheduleEvent(scheduler.TimerTick, remaining)
	} else {
		c.sched.DescheduleEvent(scheduler.TimerTick)
	}
}

// Save implements types.Stater.
func (c *Controller) Save(s *types.State) {
	remaining, _ := c.sched.Until(scheduler.TimerTick)
	s.Write8(c.tima)
	s.Write8(c.tma)
	s.Write8(c.tac)
	s.Write16(uint16(remaining))
}
