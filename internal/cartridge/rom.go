package cartridge

import (
	"github.com/thelolagemann/sm83/internal/io"
	"github.com/thelolagemann/sm83/internal/ram"
	"github.com/thelolagemann/sm83/internal/types"
)

// ROMCartridge represents a ROM cartridge. This cartridge type is the simplest
// cartridge type and has no MBC. Some carry up to 8kB of RAM.
type ROMCartridge struct {
	rom    []byte
	ram    *ram.RAM
	header Header
}

func newROMCartridge(rom []byte, h Header) *ROMCartridge {
	size := h.RAMSize
	if size > ramBankSize {
		size = ramBankSize
	}
	return &ROMCartridge{
		rom:    rom,
		ram:    ram.NewRAM(int(size)),
		header: h,
	}
}

// Read returns the value at the given address.
func (r *ROMCartridge) Read(address uint16) uint8 {
	return romByte(r.rom, int(address))
}

// Write is ignored.
func (r *ROMCartridge) Write(uint16, uint8) {}

// RAM returns the external RAM, which reads 0xFF when absent.
func (r *ROMCartridge) RAM() io.Device {
	return r.ram
}

// Header returns the cartridge header.
func (r *ROMCartridge) Header() Header {
	return r.header
}

// Load implements types.Stater.
func (r *ROMCartridge) Load(s *types.State) {
	r.ram.Load(s)
}

// Save implements types.Stater.
func (r *ROMCartridge) Save(s *types.State) {
	r.ram.Save(s)
}
