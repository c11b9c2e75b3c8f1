package cpu

import "fmt"

// Register represents an 8-bit register.
type Register = uint8

// RegisterPair represents a pair of 8-bit registers addressed as a
// single 16-bit value, with High holding the most significant byte.
type RegisterPair struct {
	High *Register
	Low  *Register
}

// Uint16 returns the value of the RegisterPair as an uint16.
func (r *RegisterPair) Uint16() uint16 {
	return uint16(*r.High)<<8 | uint16(*r.Low)
}

// SetUint16 sets the value of the RegisterPair to the given value.
func (r *RegisterPair) SetUint16(value uint16) {
	*r.High = uint8(value >> 8)
	*r.Low = uint8(value)
}

// Registers contains the 8-bit registers, and the four pairs
// that view them as 16-bit values. Only the upper nibble of F
// is ever set.
type Registers struct {
	A Register
	F Register
	B Register
	C Register
	D Register
	E Register
	H Register
	L Register

	AF *RegisterPair
	BC *RegisterPair
	DE *RegisterPair
	HL *RegisterPair
}

// Register8 names an 8-bit register for external access.
type Register8 uint8

const (
	RegA Register8 = iota
	RegF
	RegB
	RegC
	RegD
	RegE
	RegH
	RegL
)

func (r Register8) String() string {
	if int(r) < len(register8Names) {
		return register8Names[r]
	}
	return fmt.Sprintf("Register8(%d)", uint8(r))
}

var register8Names = [...]string{"A", "F", "B", "C", "D", "E", "H", "L"}

// Register16 names a 16-bit register for external access.
type Register16 uint8

const (
	RegAF Register16 = iota
	RegBC
	RegDE
	RegHL
	RegSP
	RegPC
)

func (r Register16) String() string {
	if int(r) < len(register16Names) {
		return register16Names[r]
	}
	return fmt.Sprintf("Register16(%d)", uint8(r))
}

var register16Names = [...]string{"AF", "BC", "DE", "HL", "SP", "PC"}

// ReadRegister returns the value of an 8-bit register.
func (c *CPU) ReadRegister(reg Register8) uint8 {
	return *c.register8(reg)
}

// WriteRegister sets an 8-bit register. Writes to F drop the low
// nibble.
func (c *CPU) WriteRegister(reg Register8, value uint8) {
	if reg == RegF {
		value &= 0xF0
	}
	*c.register8(reg) = value
}

func (c *CPU) register8(reg Register8) *Register {
	switch reg {
	case RegA:
		return &c.A
	case RegF:
		return &c.F
	case RegB:
		return &c.B
	case RegC:
		return &c.C
	case RegD:
		return &c.D
	case RegE:
		return &c.E
	case RegH:
		return &c.H
	case RegL:
		return &c.L
	}
	panic(fmt.Sprintf("invalid register: %d", reg))
}

// ReadRegister16 returns the value of a 16-bit register.
func (c *CPU) ReadRegister16(reg Register16) uint16 {
	switch reg {
	case RegAF:
		return c.AF.Uint16()
	case RegBC:
		return c.BC.Uint16()
	case RegDE:
		return c.DE.Uint16()
	case RegHL:
		return c.HL.Uint16()
	case RegSP:
		return c.SP
	case RegPC:
		return c.PC
	}
	panic(fmt.Sprintf("invalid register: %d", reg))
}

// WriteRegister16 sets a 16-bit register. Writes to AF drop the low
// nibble of F.
func (c *CPU) WriteRegister16(reg Register16, value uint16) {
	switch reg {
	case RegAF:
		c.AF.SetUint16(value & 0xFFF0)
	case RegBC:
		c.BC.SetUint16(value)
	case RegDE:
		c.DE.SetUint16(value)
	case RegHL:
		c.HL.SetUint16(value)
	case RegSP:
		c.SP = value
	case RegPC:
		c.PC = value
	default:
		panic(fmt.Sprintf("invalid register: %d", reg))
	}
}

// registerIndex returns a Register pointer for the 3-bit register
// field used by the opcode encoding (B, C, D, E, H, L, -, A). Index
// 6 selects (HL) and is handled by the callers.
func (c *CPU) registerIndex(index uint8) *Register {
	switch index {
	case 0:
		return &c.B
	case 1:
		return &c.C
	case 2:
		return &c.D
	case 3:
		return &c.E
	case 4:
		return &c.H
	case 5:
		return &c.L
	case 7:
		return &c.A
	}
	panic(fmt.Sprintf("invalid register index: %d", index))
}

// registerNames is indexed by the opcode register field.
var registerNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}
