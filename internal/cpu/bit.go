package cpu

// testBit tests the bit at the given position in the given value.
//
//	BIT n, r
//	n = 0-7
//	r = A, B, C, D, E, H, L, (HL)
//
// Flags affected:
//
//	Z - Set if bit n of Register r is 0.
//	N - Reset.
//	H - Set.
//	C - Not affected.
func (c *CPU) testBit(value uint8, position uint8) {
	c.setFlags(value&(1<<position) == 0, false, true, c.isFlagSet(FlagCarry))
}

// setBit returns value with the bit at the given position set. No
// flags are affected.
//
//	SET n, r
func setBit(value uint8, position uint8) uint8 {
	return value | (1 << position)
}

// resetBit returns value with the bit at the given position cleared.
// No flags are affected.
//
//	RES n, r
func resetBit(value uint8, position uint8) uint8 {
	return value &^ (1 << position)
}
