package cpu

import (
	"fmt"
)

// Instruction is an entry of an instruction table.
type Instruction struct {
	name   string
	cycles uint8 // M-cycles, excluding any taken branch
	fn     func(*CPU)
}

// Name returns the mnemonic of the instruction.
func (i Instruction) Name() string {
	return i.name
}

// Cycles returns the M-cycles the instruction takes when no branch
// is taken. CB prefixed instructions include the prefix.
func (i Instruction) Cycles() uint8 {
	return i.cycles
}

// InstructionOption configures an Instruction as it is defined.
type InstructionOption func(*Instruction)

// Cycles sets the M-cycle cost of an instruction. The default is 1
// for the base set and 2 for the CB set.
func Cycles(n uint8) InstructionOption {
	return func(i *Instruction) {
		i.cycles = n
	}
}

// InstructionSet holds the 256 base opcodes.
var InstructionSet [256]Instruction

// InstructionSetCB holds the 256 opcodes reached through the 0xCB
// prefix.
var InstructionSetCB [256]Instruction

// DefineInstruction defines the instruction in the InstructionSet,
// with the provided opcode.
func DefineInstruction(opcode uint8, name string, fn func(*CPU), opts ...InstructionOption) {
	instruction := Instruction{
		name:   name,
		cycles: 1,
		fn:     fn,
	}
	for _, opt := range opts {
		opt(&instruction)
	}

	InstructionSet[opcode] = instruction
}

// DefineInstructionCB defines the instruction in the InstructionSetCB,
// with the provided opcode.
func DefineInstructionCB(opcode uint8, name string, fn func(*CPU), opts ...InstructionOption) {
	instruction := Instruction{
		name:   name,
		cycles: 2,
		fn:     fn,
	}
	for _, opt := range opts {
		opt(&instruction)
	}

	InstructionSetCB[opcode] = instruction
}

// illegalOpcodes are the unassigned slots of the base table. They
// execute as a NOP.
var illegalOpcodes = []uint8{
	0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD,
}

func init() {
	DefineInstruction(0x00, "NOP", func(c *CPU) {})
	DefineInstruction(0x10, "STOP", func(c *CPU) {
		c.readOperand() // STOP is followed by a padding byte
		c.mode = ModeStop
	})
	DefineInstruction(0x27, "DAA", func(c *CPU) { c.decimalAdjust() })
	DefineInstruction(0x2F, "CPL", func(c *CPU) {
		c.A = 0xFF ^ c.A
		c.setFlag(FlagSubtract)
		c.setFlag(FlagHalfCarry)
	})
	DefineInstruction(0x37, "SCF", func(c *CPU) {
		c.setFlag(FlagCarry)
		c.clearFlag(FlagSubtract)
		c.clearFlag(FlagHalfCarry)
	})
	DefineInstruction(0x3F, "CCF", func(c *CPU) {
		if c.isFlagSet(FlagCarry) {
			c.clearFlag(FlagCarry)
		} else {
			c.setFlag(FlagCarry)
		}
		c.clearFlag(FlagSubtract)
		c.clearFlag(FlagHalfCarry)
	})
	DefineInstruction(0x76, "HALT", func(c *CPU) {
		// an EI just before HALT counts as IME set
		ime := c.ime || c.applying == actionEnable
		if !ime && c.irq.HasInterrupts() {
			c.mode = ModeHaltBug
		} else {
			c.mode = ModeHalt
		}
	})
	DefineInstruction(0xF3, "DI", func(c *CPU) { c.pending = actionDisable })
	DefineInstruction(0xFB, "EI", func(c *CPU) { c.pending = actionEnable })
	DefineInstruction(0xCB, "PREFIX CB", func(c *CPU) {})

	for _, opcode := range illegalOpcodes {
		op := opcode
		DefineInstruction(op, fmt.Sprintf("ILLEGAL %02X", op), func(c *CPU) { c.illegal(op) })
	}
}

// decimalAdjust adjusts A to a valid BCD value after an addition or
// subtraction of two BCD values, using the flags left by it.
//
//	DAA
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Not affected.
//	H - Reset.
//	C - Set or reset according to operation.
func (c *CPU) decimalAdjust() {
	carry := c.isFlagSet(FlagCarry)
	if !c.isFlagSet(FlagSubtract) {
		if carry || c.A > 0x99 {
			c.A += 0x60
			carry = true
		}
		if c.isFlagSet(FlagHalfCarry) || c.A&0x0F > 0x09 {
			c.A += 0x06
		}
	} else {
		if carry {
			c.A -= 0x60
		}
		if c.isFlagSet(FlagHalfCarry) {
			c.A -= 0x06
		}
	}
	c.setFlags(c.A == 0, c.isFlagSet(FlagSubtract), false, carry)
}

// illegal handles an unassigned opcode. Real hardware locks up;
// here execution carries on as if it were a NOP.
func (c *CPU) illegal(opcode uint8) {
	if c.reported[opcode] {
		return
	}
	c.reported[opcode] = true
	c.log.Debugf("cpu: illegal opcode %02X at %04X, treating as NOP", opcode, c.PC-1)
}
