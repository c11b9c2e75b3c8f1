package cpu

import "github.com/thelolagemann/sm83/internal/types"

// shiftLeftArithmetic is SLA. Bit 7 goes to C and bit 0 is cleared.
func (c *CPU) shiftLeftArithmetic(n uint8) uint8 {
	result := n << 1
	c.setFlags(result == 0, false, false, n&types.Bit7 != 0)
	return result
}

// shiftRightArithmetic is SRA. Bit 0 goes to C and bit 7 keeps
// its value, so the sign of n is preserved.
func (c *CPU) shiftRightArithmetic(n uint8) uint8 {
	result := uint8(int8(n) >> 1)
	c.setFlags(result == 0, false, false, n&types.Bit0 != 0)
	return result
}

// shiftRightLogical is SRL. Bit 0 goes to C and bit 7 is cleared.
func (c *CPU) shiftRightLogical(n uint8) uint8 {
	result := n >> 1
	c.setFlags(result == 0, false, false, n&types.Bit0 != 0)
	return result
}

// swap exchanges the nibbles of n; only Z can end up set.
func (c *CPU) swap(n uint8) uint8 {
	c.setFlags(n == 0, false, false, false)
	return n<<4 | n>>4
}
