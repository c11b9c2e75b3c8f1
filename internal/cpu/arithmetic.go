package cpu

import "fmt"

// increment the given value and set the flags accordingly.
//
//	INC n
//	n = 8-bit value
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Not affected.
func (c *CPU) increment(value uint8) uint8 {
	incremented := value + 0x01
	c.setFlags(incremented == 0, false, value&0xF == 0xF, c.isFlagSet(FlagCarry))
	return incremented
}

// decrement the given value and set the flags accordingly.
//
//	DEC n
//	n = 8-bit value
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	C - Not affected.
func (c *CPU) decrement(value uint8) uint8 {
	decremented := value - 0x01
	c.setFlags(decremented == 0, true, value&0xF == 0x0, c.isFlagSet(FlagCarry))
	return decremented
}

// addUint16 is a helper function for adding two uint16 values together and
// setting the flags accordingly.
//
// Used by:
//
//	ADD HL, nn
//
// Flags affected:
//
//	Z - Not affected.
//	N - Reset.
//	H - Set if carry from bit 11.
//	C - Set if carry from bit 15.
func (c *CPU) addUint16(a, b uint16) uint16 {
	sum := uint32(a) + uint32(b)
	c.setFlags(c.isFlagSet(FlagZero), false, (a&0xFFF)+(b&0xFFF) > 0xFFF, sum > 0xFFFF)
	return uint16(sum)
}

// addSPSigned returns SP plus the next operand read as a signed
// byte. The carries come from adding the operand's unsigned value
// to the low byte of SP.
//
// Used by:
//
//	ADD SP, r8
//	LD HL, SP+r8
//
// Flags affected:
//
//	Z - Reset.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Set if carry from bit 7.
func (c *CPU) addSPSigned() uint16 {
	value := c.readOperand()
	result := uint16(int32(c.SP) + int32(int8(value)))

	c.setFlags(
		false,
		false,
		(c.SP&0xF)+uint16(value&0xF) > 0xF,
		(c.SP&0xFF)+uint16(value) > 0xFF,
	)
	return result
}

// pushStack pushes a 16 bit value onto the stack, high byte first.
func (c *CPU) pushStack(value uint16) {
	c.SP--
	c.writeByte(c.SP, uint8(value>>8))
	c.SP--
	c.writeByte(c.SP, uint8(value))
}

// popStack pops a 16 bit value off the stack, low byte first.
func (c *CPU) popStack() uint16 {
	low := uint16(c.readByte(c.SP))
	c.SP++
	high := uint16(c.readByte(c.SP))
	c.SP++
	return high<<8 | low
}

// pushNN pushes the two registers onto the stack.
//
//	PUSH nn
//	nn = BC, DE, HL, AF
//
// Flags affected:
//
//	Z - Not affected.
//	N - Not affected.
//	H - Not affected.
//	C - Not affected.
func (c *CPU) pushNN(register *RegisterPair) {
	c.pushStack(register.Uint16())
}

// popNN pops the two registers off the stack.
//
//	POP nn
//	nn = BC, DE, HL, AF
//
// Flags affected:
//
//	Z - Not affected.
//	N - Not affected.
//	H - Not affected.
//	C - Not affected.
//
// POP AF sets the flags from the popped low byte.
func (c *CPU) popNN(register *RegisterPair) {
	register.SetUint16(c.popStack())
}

func init() {
	// 0x04 - 0x3D: INC r and DEC r
	for j := uint8(0); j < 8; j++ {
		inc, dec := 0x04+j<<3, 0x05+j<<3
		if j == 6 {
			DefineInstruction(inc, "INC (HL)", func(c *CPU) {
				c.writeByte(c.HL.Uint16(), c.increment(c.readByte(c.HL.Uint16())))
			}, Cycles(3))
			DefineInstruction(dec, "DEC (HL)", func(c *CPU) {
				c.writeByte(c.HL.Uint16(), c.decrement(c.readByte(c.HL.Uint16())))
			}, Cycles(3))
			continue
		}
		reg := j
		DefineInstruction(inc, fmt.Sprintf("INC %s", registerNames[j]), func(c *CPU) {
			r := c.registerIndex(reg)
			*r = c.increment(*r)
		})
		DefineInstruction(dec, fmt.Sprintf("DEC %s", registerNames[j]), func(c *CPU) {
			r := c.registerIndex(reg)
			*r = c.decrement(*r)
		})
	}

	DefineInstruction(0x03, "INC BC", func(c *CPU) { c.BC.SetUint16(c.BC.Uint16() + 1) }, Cycles(2))
	DefineInstruction(0x13, "INC DE", func(c *CPU) { c.DE.SetUint16(c.DE.Uint16() + 1) }, Cycles(2))
	DefineInstruction(0x23, "INC HL", func(c *CPU) { c.HL.SetUint16(c.HL.Uint16() + 1) }, Cycles(2))
	DefineInstruction(0x33, "INC SP", func(c *CPU) { c.SP++ }, Cycles(2))
	DefineInstruction(0x0B, "DEC BC", func(c *CPU) { c.BC.SetUint16(c.BC.Uint16() - 1) }, Cycles(2))
	DefineInstruction(0x1B, "DEC DE", func(c *CPU) { c.DE.SetUint16(c.DE.Uint16() - 1) }, Cycles(2))
	DefineInstruction(0x2B, "DEC HL", func(c *CPU) { c.HL.SetUint16(c.HL.Uint16() - 1) }, Cycles(2))
	DefineInstruction(0x3B, "DEC SP", func(c *CPU) { c.SP-- }, Cycles(2))

	DefineInstruction(0x09, "ADD HL, BC", func(c *CPU) { c.HL.SetUint16(c.addUint16(c.HL.Uint16(), c.BC.Uint16())) }, Cycles(2))
	DefineInstruction(0x19, "ADD HL, DE", func(c *CPU) { c.HL.SetUint16(c.addUint16(c.HL.Uint16(), c.DE.Uint16())) }, Cycles(2))
	DefineInstruction(0x29, "ADD HL, HL", func(c *CPU) { c.HL.SetUint16(c.addUint16(c.HL.Uint16(), c.HL.Uint16())) }, Cycles(2))
	DefineInstruction(0x39, "ADD HL, SP", func(c *CPU) { c.HL.SetUint16(c.addUint16(c.HL.Uint16(), c.SP)) }, Cycles(2))
	DefineInstruction(0xE8, "ADD SP, r8", func(c *CPU) { c.SP = c.addSPSigned() }, Cycles(4))

	DefineInstruction(0xC1, "POP BC", func(c *CPU) { c.popNN(c.BC) }, Cycles(3))
	DefineInstruction(0xD1, "POP DE", func(c *CPU) { c.popNN(c.DE) }, Cycles(3))
	DefineInstruction(0xE1, "POP HL", func(c *CPU) { c.popNN(c.HL) }, Cycles(3))
	DefineInstruction(0xF1, "POP AF", func(c *CPU) {
		c.popNN(c.AF)
		c.F &= 0xF0
	}, Cycles(3))
	DefineInstruction(0xC5, "PUSH BC", func(c *CPU) { c.pushNN(c.BC) }, Cycles(4))
	DefineInstruction(0xD5, "PUSH DE", func(c *CPU) { c.pushNN(c.DE) }, Cycles(4))
	DefineInstruction(0xE5, "PUSH HL", func(c *CPU) { c.pushNN(c.HL) }, Cycles(4))
	DefineInstruction(0xF5, "PUSH AF", func(c *CPU) { c.pushNN(c.AF) }, Cycles(4))
}
