package cpu

import "github.com/thelolagemann/sm83/internal/interrupts"

// action is a change to IME deferred until the instruction after
// the one that requested it has completed.
type action = uint8

const (
	actionNone action = iota
	actionEnable
	actionDisable
)

// IME returns the interrupt master enable flag.
func (c *CPU) IME() bool {
	return c.ime
}

// Interrupt requests the given source and, if IME is set,
// dispatches the highest priority pending interrupt immediately.
// It returns the clock cycles spent, 0 when nothing was
// dispatched. With IME clear the request is ignored.
func (c *CPU) Interrupt(source interrupts.Source) uint8 {
	if !c.ime {
		return 0
	}
	c.irq.Request(source)
	if !c.irq.HasInterrupts() {
		return 0
	}
	c.mode = ModeNormal
	return c.executeInterrupt()
}

// executeInterrupt pushes PC and jumps to the vector of the highest
// priority pending interrupt, clearing its request bit and IME, and
// leaves any halt. It returns the 20 clock cycles the dispatch takes.
func (c *CPU) executeInterrupt() uint8 {
	vector := c.irq.Vector()
	if vector == 0 {
		return 0
	}

	c.ime = false
	c.pending = actionNone
	c.mode = ModeNormal
	c.pushStack(c.PC)
	c.PC = vector

	return 20
}
