// Package interrupts provides the interrupt request (IF) and
// interrupt enable (IE) registers.
package interrupts

import (
	"github.com/thelolagemann/sm83/internal/io"
	"github.com/thelolagemann/sm83/internal/types"
)

// Source is one of the five interrupt sources, expressed as its
// bit in the IF and IE registers.
type Source = uint8

const (
	// VBlankFlag is the VBlank interrupt flag (bit 0),
	// which is requested every time the display enters
	// the vertical blanking period.
	VBlankFlag Source = types.Bit0
	// LCDFlag is the LCD interrupt flag (bit 1), which
	// is requested by the LCD STAT register (types.STAT),
	// when certain conditions are met.
	LCDFlag Source = types.Bit1
	// TimerFlag is the Timer interrupt flag (bit 2),
	// which is requested when the timer overflows,
	// (types.TIMA > 0xFF).
	TimerFlag Source = types.Bit2
	// SerialFlag is the Serial interrupt flag (bit 3),
	// which is requested when a serial transfer is
	// completed.
	SerialFlag Source = types.Bit3
	// JoypadFlag is the Joypad interrupt Flag (bit 4),
	// which is requested when a button is pressed.
	JoypadFlag Source = types.Bit4

	// mask covers the five implemented sources.
	mask = 0x1F
)

// Vector returns the handler address of a single source, or 0 if
// the value is not exactly one source.
func Vector(source Source) uint16 {
	switch source {
	case VBlankFlag:
		return 0x0040
	case LCDFlag:
		return 0x0048
	case TimerFlag:
		return 0x0050
	case SerialFlag:
		return 0x0058
	case JoypadFlag:
		return 0x0060
	}
	return 0
}

// Name returns a short name for the source.
func Name(source Source) string {
	switch source {
	case VBlankFlag:
		return "VBlank"
	case LCDFlag:
		return "LCD"
	case TimerFlag:
		return "Timer"
	case SerialFlag:
		return "Serial"
	case JoypadFlag:
		return "Joypad"
	}
	return "unknown"
}

// Service is the interrupt service, used to request
// interrupts and to get the current interrupt vector.
//
// When an interrupt is requested, the corresponding bit
// in the Flag register is set. When an interrupt is
// enabled, the corresponding bit in the Enable register
// is set. When an interrupt is requested and enabled,
// and the CPU's IME is set, the CPU will jump to the
// interrupt vector, and the corresponding bit in the
// Flag register will be cleared.
//
// Sources are serviced in fixed priority order, Joypad
// first and VBlank last.
type Service struct {
	Flag   uint8 // interrupt Flag (types.IF)
	Enable uint8 // interrupt Enable (types.IE)
}

// NewService returns a new Service.
func NewService() *Service {
	return &Service{}
}

// Attach maps the IF and IE registers onto the bus.
func (s *Service) Attach(b *io.Bus) {
	b.Attach(types.IF, 1, &io.DeviceFunc{
		ReadFunc: func(uint16) uint8 {
			return s.Flag | 0xE0 // the upper 3 bits are always set
		},
		WriteFunc: func(_ uint16, v uint8) {
			s.Flag = v & mask // only the first 5 bits are used
		},
	})
	b.Attach(types.IE, 1, &io.DeviceFunc{
		ReadFunc: func(uint16) uint8 {
			return s.Enable
		},
		WriteFunc: func(_ uint16, v uint8) {
			s.Enable = v
		},
	})
}

// HasInterrupts returns true if there are any interrupts
// that are requested and enabled.
func (s *Service) HasInterrupts() bool {
	return s.Enable&s.Flag&mask != 0
}

// Request requests the specified interrupt, by setting
// the corresponding bit in the Flag register.
func (s *Service) Request(flag Source) {
	s.Flag |= flag & mask
}

// Pending returns the highest priority source that is both
// requested and enabled, or 0 if there is none.
func (s *Service) Pending() Source {
	pending := s.Enable & s.Flag & mask
	for i := 4; i >= 0; i-- {
		if flag := uint8(1 << i); pending&flag != 0 {
			return flag
		}
	}
	return 0
}

// Vector returns the vector of the highest priority pending
// interrupt, or 0 if no interrupt is pending. This function
// will also clear the corresponding bit in the Flag register.
func (s *Service) Vector() uint16 {
	flag := s.Pending()
	if flag == 0 {
		return 0
	}
	s.Flag &^= flag
	return Vector(flag)
}

var _ types.Stater = (*Service)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - Flag (uint8)
//   - Enable (uint8)
func (s *Service) Load(st *types.State) {
	s.Flag = st.Read8()
	s.Enable = st.Read8()
}

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - Flag (uint8)
//   - Enable (uint8)
func (s *Service) Save(st *types.State) {
	st.Write8(s.Flag)
	st.Write8(s.Enable)
}
