// Package cartridge provides the game ROM and external RAM devices
// for ROM only and MBC1 cartridges.
package cartridge

import (
	"errors"
	"fmt"

	"github.com/thelolagemann/sm83/internal/io"
	"github.com/thelolagemann/sm83/internal/types"
	"github.com/thelolagemann/sm83/pkg/log"
)

// ErrTooSmall is returned for images too short to hold a header.
var ErrTooSmall = errors.New("cartridge: rom too small")

const (
	romBankSize = 0x4000
	ramBankSize = 0x2000
)

// Cartridge is a game cartridge. It is itself the device mapped
// at 0x0000 - 0x7FFF, where writes control banking; RAM returns
// the device for 0xA000 - 0xBFFF.
type Cartridge interface {
	io.Device
	types.Stater

	RAM() io.Device
	Header() Header
}

// New parses the header of rom and returns the matching cartridge.
// Types other than ROM only and MBC1 are run as ROM only.
func New(rom []byte, l log.Logger) (Cartridge, error) {
	if len(rom) < 0x150 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooSmall, len(rom))
	}
	if l == nil {
		l = log.NewNullLogger()
	}

	header := parseHeader(rom[0x100:0x150])
	l.Infof("cartridge: %s", header.String())
	if !header.Valid() {
		l.Infof("cartridge: header checksum mismatch (%02X != %02X)", header.checksum, header.HeaderChecksum)
	}

	switch header.CartridgeType {
	case ROM, ROMRAM, ROMRAMBATT:
		return newROMCartridge(rom, header), nil
	case MBC1, MBC1RAM, MBC1RAMBATT:
		return newMBC1(rom, header), nil
	}

	l.Infof("cartridge: %s is not supported, running as ROM only", header.CartridgeType)
	return newROMCartridge(rom, header), nil
}

// Map attaches the cartridge ROM and RAM to the bus.
func Map(b *io.Bus, c Cartridge) {
	b.Attach(types.ROMStart, types.ROMSize, c)
	b.Attach(types.ExtRAMStart, types.ExtRAMSize, c.RAM())
}

// romByte returns rom[i], or 0xFF past the end of the image.
func romByte(rom []byte, i int) uint8 {
	if i < len(rom) {
		return rom[i]
	}
	return 0xFF
}
