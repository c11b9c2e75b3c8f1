// Package cpu implements the Sharp SM83 processor: the register
// file, the base and 0xCB prefixed instruction tables, and the
// interrupt dispatch logic.
package cpu

import (
	"github.com/thelolagemann/sm83/internal/interrupts"
	"github.com/thelolagemann/sm83/pkg/log"
)

const (
	// ClockSpeed is the clock speed of the CPU in Hz.
	ClockSpeed = 4194304
)

type mode = uint8

const (
	// ModeNormal is the normal CPU mode.
	ModeNormal mode = iota
	// ModeHalt is entered by HALT, and left when an interrupt
	// is both requested and enabled.
	ModeHalt
	// ModeStop is entered by STOP, and left in the same way
	// as ModeHalt.
	ModeStop
	// ModeHaltBug is entered when HALT executes with IME clear
	// and an interrupt already pending. The next opcode byte is
	// read twice.
	ModeHaltBug
)

// Bus is the memory the CPU executes against.
type Bus interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Tracer receives every instruction before it executes. CB
// prefixed instructions report their opcode as 0xCB00|op.
type Tracer interface {
	Trace(pc uint16, opcode uint16, name string)
}

// CPU represents the SM83 CPU. It is responsible for executing instructions.
type CPU struct {
	// PC is the program counter, it points to the next instruction to be executed.
	PC uint16
	// SP is the stack pointer, it points to the top of the stack.
	SP uint16
	// Registers contains the 8-bit registers, as well as the 16-bit register pairs.
	Registers

	bus Bus
	irq *interrupts.Service

	ime      bool   // interrupt master enable
	pending  action // deferred EI/DI, applied after the next instruction
	applying action // the deferred change landing after the current instruction
	mode     mode

	extra uint8 // M-cycles added by a taken branch

	log      log.Logger
	tracer   Tracer
	reported [256]bool // illegal opcodes already logged
}

// NewCPU creates a new CPU executing against the given bus. The
// CPU starts as if no boot ROM were present, with PC at 0x0100
// and SP at 0xFFFE; see Reset.
func NewCPU(b Bus, irq *interrupts.Service, l log.Logger) *CPU {
	if l == nil {
		l = log.NewNullLogger()
	}
	if irq == nil {
		irq = interrupts.NewService()
	}
	c := &CPU{
		bus: b,
		irq: irq,
		log: l,
	}
	// create register pairs
	c.AF = &RegisterPair{&c.A, &c.F}
	c.BC = &RegisterPair{&c.B, &c.C}
	c.DE = &RegisterPair{&c.D, &c.E}
	c.HL = &RegisterPair{&c.H, &c.L}

	c.Reset(false)
	return c
}

// Reset clears the registers and interrupt state. With a boot ROM
// mapped execution starts at 0x0000, otherwise at 0x0100.
func (c *CPU) Reset(bootROM bool) {
	c.A, c.F, c.B, c.C, c.D, c.E, c.H, c.L = 0, 0, 0, 0, 0, 0, 0, 0
	c.SP = 0xFFFE
	c.PC = 0x0100
	if bootROM {
		c.PC = 0x0000
	}
	c.ime = false
	c.pending = actionNone
	c.mode = ModeNormal
}

// SkipBoot loads the register values the DMG boot ROM leaves
// behind when it hands over to the cartridge.
func (c *CPU) SkipBoot() {
	c.AF.SetUint16(0x01B0)
	c.BC.SetUint16(0x0013)
	c.DE.SetUint16(0x00D8)
	c.HL.SetUint16(0x014D)
	c.SP = 0xFFFE
	c.PC = 0x0100
}

// AttachTracer installs a Tracer, or removes it when t is nil.
func (c *CPU) AttachTracer(t Tracer) {
	c.tracer = t
}

// Halted returns true while the CPU is halted or stopped.
func (c *CPU) Halted() bool {
	return c.mode == ModeHalt || c.mode == ModeStop
}

// Step executes a single instruction, then services any pending
// interrupt, and returns the number of clock cycles consumed.
func (c *CPU) Step() uint8 {
	switch c.mode {
	case ModeHalt, ModeStop:
		// the CPU idles for one M-cycle at a time until an
		// interrupt is both requested and enabled, regardless
		// of IME
		if !c.irq.HasInterrupts() {
			return 4
		}
		c.mode = ModeNormal
		if c.ime {
			return 4 + c.executeInterrupt()
		}
		return 4
	}

	c.applying = c.pending
	c.pending = actionNone

	pc := c.PC
	cycles := c.runInstruction(pc, c.readInstruction())

	if c.applying != actionNone {
		c.ime = c.applying == actionEnable
		c.applying = actionNone
	}

	if c.ime && c.irq.HasInterrupts() {
		cycles += c.executeInterrupt()
	}

	return cycles
}

// readInstruction reads the next opcode from memory.
func (c *CPU) readInstruction() uint8 {
	value := c.bus.Read(c.PC)
	if c.mode == ModeHaltBug {
		// PC fails to increment after HALT
		c.mode = ModeNormal
		return value
	}
	c.PC++
	return value
}

// readOperand reads the next operand from memory.
func (c *CPU) readOperand() uint8 {
	value := c.bus.Read(c.PC)
	c.PC++
	return value
}

// readOperand16 reads a little endian 16-bit operand.
func (c *CPU) readOperand16() uint16 {
	low := c.readOperand()
	high := c.readOperand()
	return uint16(high)<<8 | uint16(low)
}

// readByte reads a byte from memory.
func (c *CPU) readByte(addr uint16) uint8 {
	return c.bus.Read(addr)
}

// writeByte writes the given value to the given address.
func (c *CPU) writeByte(addr uint16, val uint8) {
	c.bus.Write(addr, val)
}

// branch records the extra M-cycles of a taken branch.
func (c *CPU) branch(mCycles uint8) {
	c.extra += mCycles
}

// runInstruction decodes and executes the opcode, returning the
// clock cycles it took.
func (c *CPU) runInstruction(pc uint16, opcode uint8) uint8 {
	instruction := InstructionSet[opcode]
	traced := uint16(opcode)

	// do we need to run a CB instruction?
	if opcode == 0xCB {
		cb := c.readOperand()
		instruction = InstructionSetCB[cb]
		traced = 0xCB00 | uint16(cb)
	}

	if c.tracer != nil {
		c.tracer.Trace(pc, traced, instruction.name)
	}

	c.extra = 0
	instruction.fn(c)

	return (instruction.cycles + c.extra) * 4
}
