package cpu

import (
	"fmt"
)

// call pushes the address of the next instruction onto the stack and jumps to
// the given address.
//
//	CALL nn
//	nn = 16-bit immediate value
func (c *CPU) call(address uint16) {
	c.pushStack(c.PC)
	c.PC = address
}

// callConditional reads the target address, then calls it if the
// given condition is true.
//
//	CALL cc, nn
//	cc = NZ, Z, NC, C
//	nn = 16-bit immediate value
func (c *CPU) callConditional(condition bool) {
	address := c.readOperand16()
	if condition {
		c.call(address)
		c.branch(3)
	}
}

// jumpRelative jumps to the address relative to the PC after the
// offset byte.
//
//	JR e
//	e = 8-bit signed immediate value
func (c *CPU) jumpRelative(offset uint8) {
	c.PC = uint16(int32(c.PC) + int32(int8(offset)))
}

// jumpRelativeConditional reads the offset, then jumps if the given
// condition is true.
//
//	JR cc, e
//	cc = NZ, Z, NC, C
//	e = 8-bit signed immediate value
func (c *CPU) jumpRelativeConditional(condition bool) {
	offset := c.readOperand()
	if condition {
		c.jumpRelative(offset)
		c.branch(1)
	}
}

// jumpAbsoluteConditional reads the target address, then jumps to
// it if the given condition is true.
//
//	JP cc, nn
//	cc = NZ, Z, NC, C
//	nn = 16-bit immediate value
func (c *CPU) jumpAbsoluteConditional(condition bool) {
	address := c.readOperand16()
	if condition {
		c.PC = address
		c.branch(1)
	}
}

// ret pops the top two bytes off the stack and jumps to that address.
//
//	RET
func (c *CPU) ret() {
	c.PC = c.popStack()
}

// retConditional pops the top two bytes off the stack and jumps to that
// address if the given condition is true.
//
//	RET cc
//	cc = NZ, Z, NC, C
func (c *CPU) retConditional(condition bool) {
	if condition {
		c.ret()
		c.branch(3)
	}
}

// retInterrupt returns and sets IME with no delay.
//
//	RETI
func (c *CPU) retInterrupt() {
	c.ret()
	c.ime = true
}

// condition tests one of the four branch conditions, indexed as
// encoded in bits 3-4 of the opcode: NZ, Z, NC, C.
func (c *CPU) condition(cc uint8) bool {
	switch cc {
	case 0:
		return !c.isFlagSet(FlagZero)
	case 1:
		return c.isFlagSet(FlagZero)
	case 2:
		return !c.isFlagSet(FlagCarry)
	default:
		return c.isFlagSet(FlagCarry)
	}
}

var conditionNames = [4]string{"NZ", "Z", "NC", "C"}

func init() {
	DefineInstruction(0x18, "JR r8", func(c *CPU) { c.jumpRelative(c.readOperand()) }, Cycles(3))
	DefineInstruction(0xC3, "JP a16", func(c *CPU) { c.PC = c.readOperand16() }, Cycles(4))
	DefineInstruction(0xE9, "JP HL", func(c *CPU) { c.PC = c.HL.Uint16() })
	DefineInstruction(0xCD, "CALL a16", func(c *CPU) { c.call(c.readOperand16()) }, Cycles(6))
	DefineInstruction(0xC9, "RET", func(c *CPU) { c.ret() }, Cycles(4))
	DefineInstruction(0xD9, "RETI", func(c *CPU) { c.retInterrupt() }, Cycles(4))

	for cc := uint8(0); cc < 4; cc++ {
		cond := cc
		DefineInstruction(0x20+cc<<3, fmt.Sprintf("JR %s, r8", conditionNames[cc]), func(c *CPU) {
			c.jumpRelativeConditional(c.condition(cond))
		}, Cycles(2))
		DefineInstruction(0xC2+cc<<3, fmt.Sprintf("JP %s, a16", conditionNames[cc]), func(c *CPU) {
			c.jumpAbsoluteConditional(c.condition(cond))
		}, Cycles(3))
		DefineInstruction(0xC4+cc<<3, fmt.Sprintf("CALL %s, a16", conditionNames[cc]), func(c *CPU) {
			c.callConditional(c.condition(cond))
		}, Cycles(3))
		DefineInstruction(0xC0+cc<<3, fmt.Sprintf("RET %s", conditionNames[cc]), func(c *CPU) {
			c.retConditional(c.condition(cond))
		}, Cycles(2))
	}

	// 0xC7, 0xCF, ... 0xFF: RST
	for i := uint8(0); i < 8; i++ {
		address := uint16(i) * 8
		DefineInstruction(0xC7+i<<3, fmt.Sprintf("RST %02XH", address), func(c *CPU) {
			c.call(address)
		}, Cycles(4))
	}
}
