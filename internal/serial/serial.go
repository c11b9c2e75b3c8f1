// Package serial implements the link port registers SB and SC.
package serial

import (
	"github.com/thelolagemann/sm83/internal/interrupts"
	"github.com/thelolagemann/sm83/internal/io"
	"github.com/thelolagemann/sm83/internal/scheduler"
	"github.com/thelolagemann/sm83/internal/types"
)

const (
	ticksPerBit = 512
	// TransferCycles is the length of an internally clocked
	// transfer of one byte (8192 Hz).
	TransferCycles = 8 * ticksPerBit
)

// Controller is the serial controller at 0xFF01 - 0xFF02.
//
// Writing SC with bits 7 and 0 set starts a transfer clocked by
// this side of the cable. Once it completes the attached Device
// receives the byte from SB, SB is replaced by the byte sent
// back, SC bit 7 clears and a Serial interrupt is requested.
// Transfers clocked by the other side never start, as no partner
// Game Boy is emulated.
type Controller struct {
	data    uint8 // SB
	control uint8 // SC

	device Device
	irq    *interrupts.Service
	s      *scheduler.Scheduler
}

// NewController creates a new Controller. By default the
// controller behaves as if nothing is plugged in; use Attach to
// connect a Device.
func NewController(s *scheduler.Scheduler, irq *interrupts.Service) *Controller {
	c := &Controller{
		device: nullDevice{},
		irq:    irq,
		s:      s,
	}
	s.RegisterEvent(scheduler.SerialTransfer, c.complete)
	return c
}

// Attach attaches a Device to the Controller. A nil Device
// unplugs the cable.
func (c *Controller) Attach(d Device) {
	if d == nil {
		d = nullDevice{}
	}
	c.device = d
}

// Map attaches SB and SC to the bus.
func (c *Controller) Map(b *io.Bus) {
	b.Attach(types.SB, 2, c)
}

// Transferring reports whether a transfer is in progress.
func (c *Controller) Transferring() bool {
	return c.control&types.Bit7 != 0
}

func (c *Controller) complete() {
	c.data = c.device.Transfer(c.data)
	c.control &^= types.Bit7
	c.irq.Request(interrupts.SerialFlag)
}

// Read implements io.Device.
func (c *Controller) Read(offset uint16) uint8 {
	switch offset {
	case 0:
		return c.data
	case 1:
		return c.control | 0x7E // bits 1-6 are unused
	}
	return 0xFF
}

// Write implements io.Device.
func (c *Controller) Write(offset uint16, value uint8) {
	switch offset {
	case 0:
		c.data = value
	case 1:
		c.control = value & 0x81
		if c.control == 0x81 {
			c.s.ScheduleEvent(scheduler.SerialTransfer, TransferCycles)
		} else {
			c.s.DescheduleEvent(scheduler.SerialTransfer)
		}
	}
}

var _ types.Stater = (*Controller)(nil)

// Load implements the types.Stater interface.
func (c *Controller) Load(s *types.State) {
	c.data = s.Read8()
	c.control = s.Read8()
	remaining := uint64(s.Read16())
	if c.control == 0x81 {
		c.s.ScheduleEvent(scheduler.SerialTransfer, remaining)
	} else {
		c.s.DescheduleEvent(scheduler.SerialTransfer)
	}
}

// Save implements the types.Stater interface.
func (c *Controller) Save(s *types.State) {
	remaining, _ := c.s.Until(scheduler.SerialTransfer)
	s.Write8(c.data)
	s.Write8(c.control)
	s.Write16(uint16(remaining))
}
