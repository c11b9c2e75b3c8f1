package cpu

import (
	"fmt"
)

// defineCBRegisterOp defines a read-modify-write CB instruction
// for the register field j. (HL) takes 4 M-cycles.
func defineCBRegisterOp(opcode uint8, name string, j uint8, op func(c *CPU, v uint8) uint8) {
	if j == 6 {
		DefineInstructionCB(opcode, fmt.Sprintf("%s (HL)", name), func(c *CPU) {
			c.writeByte(c.HL.Uint16(), op(c, c.readByte(c.HL.Uint16())))
		}, Cycles(4))
		return
	}
	DefineInstructionCB(opcode, fmt.Sprintf("%s %s", name, registerNames[j]), func(c *CPU) {
		reg := c.registerIndex(j)
		*reg = op(c, *reg)
	})
}

func init() {
	shifts := []struct {
		name string
		op   func(c *CPU, v uint8) uint8
	}{
		{"RLC", (*CPU).rotateLeftCarry},
		{"RRC", (*CPU).rotateRightCarry},
		{"RL", (*CPU).rotateLeftThroughCarry},
		{"RR", (*CPU).rotateRightThroughCarry},
		{"SLA", (*CPU).shiftLeftArithmetic},
		{"SRA", (*CPU).shiftRightArithmetic},
		{"SWAP", (*CPU).swap},
		{"SRL", (*CPU).shiftRightLogical},
	}

	// 0x00 - 0x3F: rotates, shifts and swap
	for i, s := range shifts {
		for j := uint8(0); j < 8; j++ {
			defineCBRegisterOp(uint8(i)<<3+j, s.name, j, s.op)
		}
	}

	// 0x40 - 0xFF: BIT, RES and SET for each bit and register
	for b := uint8(0); b < 8; b++ {
		for j := uint8(0); j < 8; j++ {
			bit, reg := b, j

			// BIT only reads, so (HL) costs 3 M-cycles
			name := fmt.Sprintf("BIT %d, %s", bit, registerNames[reg])
			if reg == 6 {
				DefineInstructionCB(0x40+bit<<3+reg, name, func(c *CPU) {
					c.testBit(c.readByte(c.HL.Uint16()), bit)
				}, Cycles(3))
			} else {
				DefineInstructionCB(0x40+bit<<3+reg, name, func(c *CPU) {
					c.testBit(*c.registerIndex(reg), bit)
				})
			}

			defineCBRegisterOp(0x80+bit<<3+reg, fmt.Sprintf("RES %d,", bit), reg, func(_ *CPU, v uint8) uint8 {
				return resetBit(v, bit)
			})
			defineCBRegisterOp(0xC0+bit<<3+reg, fmt.Sprintf("SET %d,", bit), reg, func(_ *CPU, v uint8) uint8 {
				return setBit(v, bit)
			})
		}
	}
}
