package cpu

import (
	"fmt"
)

// loadRegister8 loads the next operand into the given Register.
//
//	LD n, d8
//	n = A, B, C, D, E, H, L
//	d8 = 8-bit immediate value
func (c *CPU) loadRegister8(reg *Register) {
	*reg = c.readOperand()
}

// loadMemoryToRegister loads the value at the given memory address into the
// given Register.
//
//	LD n, (HL)
//	n = A, B, C, D, E, H, L
func (c *CPU) loadMemoryToRegister(reg *Register, address uint16) {
	*reg = c.readByte(address)
}

// loadRegisterToMemory loads the value of the given Register into the given
// memory address.
//
//	LD (HL), n
//	n = A, B, C, D, E, H, L
func (c *CPU) loadRegisterToMemory(reg Register, address uint16) {
	c.writeByte(address, reg)
}

// loadRegisterToHardware loads the value of the given Register into the
// high page. (e.g. LD (0xFF00 + n), A)
//
//	LD (0xFF00 + n), A
//	n = C, 8 bit immediate value
func (c *CPU) loadRegisterToHardware(reg Register, address uint8) {
	c.writeByte(0xFF00+uint16(address), reg)
}

// loadHardwareToRegister loads a value from the high page into the
// given Register.
//
//	LD A, (0xFF00 + n)
//	n = C, 8 bit immediate value
func (c *CPU) loadHardwareToRegister(reg *Register, address uint8) {
	*reg = c.readByte(0xFF00 + uint16(address))
}

// loadRegister16 loads the next two operands into the given Register pair.
//
//	LD nn, d16
//	nn = BC, DE, HL
//	d16 = 16-bit immediate value
func (c *CPU) loadRegister16(reg *RegisterPair) {
	*reg.Low = c.readOperand()
	*reg.High = c.readOperand()
}

func init() {
	// 0x40 - 0x7F: LD r, r'
	for i := uint8(0); i < 8; i++ {
		for j := uint8(0); j < 8; j++ {
			opcode := 0x40 + i<<3 + j
			if opcode == 0x76 {
				continue // HALT
			}
			name := fmt.Sprintf("LD %s, %s", registerNames[i], registerNames[j])
			dst, src := i, j
			switch {
			case i == 6:
				DefineInstruction(opcode, name, func(c *CPU) {
					c.loadRegisterToMemory(*c.registerIndex(src), c.HL.Uint16())
				}, Cycles(2))
			case j == 6:
				DefineInstruction(opcode, name, func(c *CPU) {
					c.loadMemoryToRegister(c.registerIndex(dst), c.HL.Uint16())
				}, Cycles(2))
			default:
				DefineInstruction(opcode, name, func(c *CPU) {
					*c.registerIndex(dst) = *c.registerIndex(src)
				})
			}
		}

		// 0x06, 0x0E, ... 0x3E: LD r, d8
		name := fmt.Sprintf("LD %s, d8", registerNames[i])
		if i == 6 {
			DefineInstruction(0x36, name, func(c *CPU) {
				c.writeByte(c.HL.Uint16(), c.readOperand())
			}, Cycles(3))
			continue
		}
		dst := i
		DefineInstruction(0x06+i<<3, name, func(c *CPU) { c.loadRegister8(c.registerIndex(dst)) }, Cycles(2))
	}

	DefineInstruction(0x01, "LD BC, d16", func(c *CPU) { c.loadRegister16(c.BC) }, Cycles(3))
	DefineInstruction(0x11, "LD DE, d16", func(c *CPU) { c.loadRegister16(c.DE) }, Cycles(3))
	DefineInstruction(0x21, "LD HL, d16", func(c *CPU) { c.loadRegister16(c.HL) }, Cycles(3))
	DefineInstruction(0x31, "LD SP, d16", func(c *CPU) { c.SP = c.readOperand16() }, Cycles(3))

	DefineInstruction(0x02, "LD (BC), A", func(c *CPU) { c.loadRegisterToMemory(c.A, c.BC.Uint16()) }, Cycles(2))
	DefineInstruction(0x12, "LD (DE), A", func(c *CPU) { c.loadRegisterToMemory(c.A, c.DE.Uint16()) }, Cycles(2))
	DefineInstruction(0x22, "LD (HL+), A", func(c *CPU) {
		c.loadRegisterToMemory(c.A, c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() + 1)
	}, Cycles(2))
	DefineInstruction(0x32, "LD (HL-), A", func(c *CPU) {
		c.loadRegisterToMemory(c.A, c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() - 1)
	}, Cycles(2))
	DefineInstruction(0x0A, "LD A, (BC)", func(c *CPU) { c.loadMemoryToRegister(&c.A, c.BC.Uint16()) }, Cycles(2))
	DefineInstruction(0x1A, "LD A, (DE)", func(c *CPU) { c.loadMemoryToRegister(&c.A, c.DE.Uint16()) }, Cycles(2))
	DefineInstruction(0x2A, "LD A, (HL+)", func(c *CPU) {
		c.loadMemoryToRegister(&c.A, c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() + 1)
	}, Cycles(2))
	DefineInstruction(0x3A, "LD A, (HL-)", func(c *CPU) {
		c.loadMemoryToRegister(&c.A, c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() - 1)
	}, Cycles(2))

	DefineInstruction(0x08, "LD (a16), SP", func(c *CPU) {
		address := c.readOperand16()
		c.writeByte(address, uint8(c.SP&0xFF))
		c.writeByte(address+1, uint8(c.SP>>8))
	}, Cycles(5))

	DefineInstruction(0xE0, "LDH (a8), A", func(c *CPU) { c.loadRegisterToHardware(c.A, c.readOperand()) }, Cycles(3))
	DefineInstruction(0xF0, "LDH A, (a8)", func(c *CPU) { c.loadHardwareToRegister(&c.A, c.readOperand()) }, Cycles(3))
	DefineInstruction(0xE2, "LD (C), A", func(c *CPU) { c.loadRegisterToHardware(c.A, c.C) }, Cycles(2))
	DefineInstruction(0xF2, "LD A, (C)", func(c *CPU) { c.loadHardwareToRegister(&c.A, c.C) }, Cycles(2))
	DefineInstruction(0xEA, "LD (a16), A", func(c *CPU) { c.loadRegisterToMemory(c.A, c.readOperand16()) }, Cycles(4))
	DefineInstruction(0xFA, "LD A, (a16)", func(c *CPU) { c.loadMemoryToRegister(&c.A, c.readOperand16()) }, Cycles(4))

	DefineInstruction(0xF8, "LD HL, SP+r8", func(c *CPU) { c.HL.SetUint16(c.addSPSigned()) }, Cycles(3))
	DefineInstruction(0xF9, "LD SP, HL", func(c *CPU) { c.SP = c.HL.Uint16() }, Cycles(2))
}
