package cpu

import "github.com/thelolagemann/sm83/internal/types"

// The rotate helpers below take the operand and return the result,
// leaving the register or (HL) write-back and the cycle cost to the
// table entry that calls them. They set Z from the result, clear N
// and H, and load C with the bit rotated out.

// rotateLeftCarry is RLC: bit 7 moves to both bit 0 and C.
func (c *CPU) rotateLeftCarry(n uint8) uint8 {
	out := n >> 7
	result := n<<1 | out
	c.setFlags(result == 0, false, false, out == 1)
	return result
}

// rotateRightCarry is RRC: bit 0 moves to both bit 7 and C.
func (c *CPU) rotateRightCarry(n uint8) uint8 {
	out := n & types.Bit0
	result := n>>1 | out<<7
	c.setFlags(result == 0, false, false, out == 1)
	return result
}

// rotateLeftThroughCarry is RL, a 9-bit rotate with C as bit 8.
func (c *CPU) rotateLeftThroughCarry(n uint8) uint8 {
	result := n<<1 | c.carryBit()
	c.setFlags(result == 0, false, false, n&types.Bit7 != 0)
	return result
}

// rotateRightThroughCarry is RR, a 9-bit rotate with C above bit 7.
func (c *CPU) rotateRightThroughCarry(n uint8) uint8 {
	result := n>>1 | c.carryBit()<<7
	c.setFlags(result == 0, false, false, n&types.Bit0 != 0)
	return result
}

// carryBit returns the carry flag as 0 or 1.
func (c *CPU) carryBit() uint8 {
	if c.isFlagSet(FlagCarry) {
		return 1
	}
	return 0
}

func init() {
	// the accumulator forms always reset Z, unlike their CB forms
	accumulator := []struct {
		opcode uint8
		name   string
		op     func(*CPU, uint8) uint8
	}{
		{0x07, "RLCA", (*CPU).rotateLeftCarry},
		{0x0F, "RRCA", (*CPU).rotateRightCarry},
		{0x17, "RLA", (*CPU).rotateLeftThroughCarry},
		{0x1F, "RRA", (*CPU).rotateRightThroughCarry},
	}
	for _, a := range accumulator {
		op := a.op
		DefineInstruction(a.opcode, a.name, func(c *CPU) {
			c.A = op(c, c.A)
			c.clearFlag(FlagZero)
		})
	}
}
