package cpu

import "fmt"

// and performs a bitwise AND operation on n and the A Register.
//
//	AND n
//	n = d8, B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set.
//	C - Reset.
func (c *CPU) and(n uint8) {
	c.A &= n
	c.setFlags(c.A == 0, false, true, false)
}

// or performs a bitwise OR operation on n and the A Register.
//
//	OR n
//	n = d8, B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Reset.
func (c *CPU) or(n uint8) {
	c.A |= n
	c.setFlags(c.A == 0, false, false, false)
}

// xor performs a bitwise XOR operation on n and the A Register.
//
//	XOR n
//	n = d8, B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Reset.
func (c *CPU) xor(n uint8) {
	c.A ^= n
	c.setFlags(c.A == 0, false, false, false)
}

// compare compares n to the A Register.
//
//	CP n
//	n = d8, B, C, D, E, H, L, (HL), A
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if no borrow from bit 4.
//	C - Set if no borrow.
func (c *CPU) compare(n uint8) {
	c.sub(c.A, n, false)
}

// add is a helper function for adding two bytes together and
// setting the flags accordingly.
//
// Used by:
//
//	ADD A, n
//	ADC A, n
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Set if carry from bit 7.
func (c *CPU) add(a, b uint8, shouldCarry bool) uint8 {
	carry := uint16(0)
	if shouldCarry && c.isFlagSet(FlagCarry) {
		carry = 1
	}
	sum := uint16(a) + uint16(b) + carry
	sumHalf := uint16(a&0xF) + uint16(b&0xF) + carry

	c.setFlags(uint8(sum) == 0, false, sumHalf > 0xF, sum > 0xFF)
	return uint8(sum)
}

// sub is a helper function for subtracting two bytes together and
// setting the flags accordingly.
//
// Used by:
//
//	SUB A, n
//	SBC A, n
//	CP n
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if no borrow from bit 4.
//	C - Set if no borrow.
func (c *CPU) sub(a, b uint8, shouldCarry bool) uint8 {
	carry := int16(0)
	if shouldCarry && c.isFlagSet(FlagCarry) {
		carry = 1
	}
	diff := int16(a) - int16(b) - carry
	diffHalf := int16(a&0xF) - int16(b&0xF) - carry

	c.setFlags(uint8(diff) == 0, true, diffHalf < 0, diff < 0)
	return uint8(diff)
}

func init() {
	// 0x80 - 0xBF: the eight ALU operations against each register
	// field, in the order the opcode encodes them
	ops := []struct {
		name string
		fn   func(c *CPU, n uint8)
	}{
		{"ADD A,", func(c *CPU, n uint8) { c.A = c.add(c.A, n, false) }},
		{"ADC A,", func(c *CPU, n uint8) { c.A = c.add(c.A, n, true) }},
		{"SUB", func(c *CPU, n uint8) { c.A = c.sub(c.A, n, false) }},
		{"SBC A,", func(c *CPU, n uint8) { c.A = c.sub(c.A, n, true) }},
		{"AND", func(c *CPU, n uint8) { c.and(n) }},
		{"XOR", func(c *CPU, n uint8) { c.xor(n) }},
		{"OR", func(c *CPU, n uint8) { c.or(n) }},
		{"CP", func(c *CPU, n uint8) { c.compare(n) }},
	}

	for i, op := range ops {
		op := op
		for j := uint8(0); j < 8; j++ {
			opcode := 0x80 + uint8(i)<<3 + j
			name := fmt.Sprintf("%s %s", op.name, registerNames[j])
			if j == 6 {
				DefineInstruction(opcode, name, func(c *CPU) {
					op.fn(c, c.readByte(c.HL.Uint16()))
				}, Cycles(2))
				continue
			}
			reg := j
			DefineInstruction(opcode, name, func(c *CPU) {
				op.fn(c, *c.registerIndex(reg))
			})
		}

		// 0xC6, 0xCE, ... 0xFE: the same operations with an immediate
		DefineInstruction(0xC6+uint8(i)<<3, fmt.Sprintf("%s d8", op.name), func(c *CPU) {
			op.fn(c, c.readOperand())
		}, Cycles(2))
	}
}
