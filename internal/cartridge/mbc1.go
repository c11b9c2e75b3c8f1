package cartridge

import (
	"github.com/thelolagemann/sm83/internal/io"
	"github.com/thelolagemann/sm83/internal/types"
)

// MemoryBankedCartridge1 represents an MBC1 cartridge, with up to
// 2MB of ROM and 32kB of RAM.
//
//	0000-1FFF  RAM enable (0x0A in the low nibble)
//	2000-3FFF  ROM bank, low 5 bits (0 selects 1)
//	4000-5FFF  RAM bank, or ROM bank bits 5-6
//	6000-7FFF  banking mode
type MemoryBankedCartridge1 struct {
	rom []byte
	ram []byte

	bank1      uint8 // 5 bits
	bank2      uint8 // 2 bits
	mode       bool  // advanced banking: bank2 also applies to 0000-3FFF and RAM
	ramEnabled bool

	romBanks int
	ramBanks int
	header   Header
	external *io.DeviceFunc
}

func newMBC1(rom []byte, h Header) *MemoryBankedCartridge1 {
	m := &MemoryBankedCartridge1{
		rom:      rom,
		ram:      make([]byte, h.RAMSize),
		bank1:    1,
		romBanks: (len(rom) + romBankSize - 1) / romBankSize,
		ramBanks: int(h.RAMSize) / ramBankSize,
		header:   h,
	}
	if m.romBanks < 2 {
		m.romBanks = 2
	}
	m.external = &io.DeviceFunc{
		ReadFunc: func(offset uint16) uint8 {
			if i, ok := m.ramOffset(offset); ok {
				return m.ram[i]
			}
			return 0xFF
		},
		WriteFunc: func(offset uint16, value uint8) {
			if i, ok := m.ramOffset(offset); ok {
				m.ram[i] = value
			}
		},
	}
	return m
}

// romOffset returns the image offset of address within bank.
func (m *MemoryBankedCartridge1) romOffset(bank uint8, address uint16) int {
	return int(bank)%m.romBanks*romBankSize + int(address&0x3FFF)
}

// Read returns the value from the selected ROM bank.
func (m *MemoryBankedCartridge1) Read(address uint16) uint8 {
	if address < romBankSize {
		bank := uint8(0)
		if m.mode {
			bank = m.bank2 << 5
		}
		return romByte(m.rom, m.romOffset(bank, address))
	}
	return romByte(m.rom, m.romOffset(m.bank2<<5|m.bank1, address))
}

// Write updates the banking registers.
func (m *MemoryBankedCartridge1) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		m.bank1 = value & 0x1F
		if m.bank1 == 0 {
			m.bank1 = 1
		}
	case address < 0x6000:
		m.bank2 = value & 0x03
	default:
		m.mode = value&0x01 == 0x01
	}
}

// RAM returns the external RAM device.
func (m *MemoryBankedCartridge1) RAM() io.Device {
	return m.external
}

// ramOffset returns the offset into ram for an access to
// 0xA000+offset, and false while RAM is disabled or absent.
func (m *MemoryBankedCartridge1) ramOffset(offset uint16) (int, bool) {
	if !m.ramEnabled || len(m.ram) == 0 {
		return 0, false
	}
	bank := 0
	if m.mode && m.ramBanks > 1 {
		bank = int(m.bank2) % m.ramBanks
	}
	return (bank*ramBankSize + int(offset)) % len(m.ram), true
}

// Header returns the cartridge header.
func (m *MemoryBankedCartridge1) Header() Header {
	return m.header
}

var _ types.Stater = (*MemoryBankedCartridge1)(nil)

// Load implements types.Stater.
func (m *MemoryBankedCartridge1) Load(s *types.State) {
	m.bank1 = s.Read8()
	m.bank2 = s.Read8()
	m.mode = s.ReadBool()
	m.ramEnabled = s.ReadBool()
	s.ReadData(m.ram)
}

// Save implements types.Stater.
func (m *MemoryBankedCartridge1) Save(s *types.State) {
	s.Write8(m.bank1)
	s.Write8(m.bank2)
	s.WriteBool(m.mode)
	s.WriteBool(m.ramEnabled)
	s.WriteData(m.ram)
}
