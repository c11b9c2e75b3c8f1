package cartridge

import (
	"fmt"
	"strings"
)

// Flag is the CGB compatibility byte at 0x0143.
type Flag uint8

const (
	FlagOnlyDMG Flag = iota
	FlagSupportsCGB
	FlagOnlyCGB
)

var ramSizes = map[uint8]uint{
	0x00: 0,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// Type is the cartridge type byte at 0x0147.
type Type uint8

const (
	ROM         Type = 0x00
	MBC1        Type = 0x01
	MBC1RAM     Type = 0x02
	MBC1RAMBATT Type = 0x03
	MBC2        Type = 0x05
	MBC2BATT    Type = 0x06
	ROMRAM      Type = 0x08
	ROMRAMBATT  Type = 0x09
	MBC3        Type = 0x11
	MBC5        Type = 0x19
)

var typeNames = map[Type]string{
	ROM:         "ROM",
	MBC1:        "MBC1",
	MBC1RAM:     "MBC1+RAM",
	MBC1RAMBATT: "MBC1+RAM+BATTERY",
	MBC2:        "MBC2",
	MBC2BATT:    "MBC2+BATTERY",
	ROMRAM:      "ROM+RAM",
	ROMRAMBATT:  "ROM+RAM+BATTERY",
	MBC3:        "MBC3",
	MBC5:        "MBC5",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(0x%02X)", uint8(t))
}

// Header represents the header of a cartridge, located at the
// address space 0x0100-0x014F. It is only used for logging; the
// emulated hardware never checks it.
type Header struct {
	// 0x0134-0x0143 - Title of the game
	Title string
	// 0x0143 - CGB support. In older cartridges this byte was part
	// of the title.
	CartridgeGBMode Flag
	SGBFlag         bool
	CartridgeType   Type
	ROMSize         uint
	RAMSize         uint
	MaskROMVersion  uint8
	HeaderChecksum  uint8
	GlobalChecksum  uint16

	// computed header checksum
	checksum uint8
}

// parseHeader parses the 0x50 bytes at 0x0100-0x014F.
func parseHeader(header []byte) Header {
	h := Header{}

	switch header[0x43] {
	case 0x80:
		h.CartridgeGBMode = FlagSupportsCGB
	case 0xC0:
		h.CartridgeGBMode = FlagOnlyCGB
	default:
		h.CartridgeGBMode = FlagOnlyDMG
	}

	title := header[0x34:0x44]
	if h.CartridgeGBMode != FlagOnlyDMG {
		title = header[0x34:0x43]
	}
	h.Title = strings.TrimRight(string(title), "\x00 ")

	h.SGBFlag = header[0x46] == 0x03
	h.CartridgeType = Type(header[0x47])
	// 32kB x (1 << n)
	h.ROMSize = (32 * 1024) * (1 << (header[0x48] & 0x0F))
	h.RAMSize = ramSizes[header[0x49]]
	h.MaskROMVersion = header[0x4C]
	h.HeaderChecksum = header[0x4D]
	h.GlobalChecksum = uint16(header[0x4E])<<8 | uint16(header[0x4F])

	for _, b := range header[0x34:0x4D] {
		h.checksum = h.checksum - b - 1
	}
	return h
}

// Valid reports whether the header checksum matches the header
// bytes, as checked by the boot ROM.
func (h *Header) Valid() bool {
	return h.checksum == h.HeaderChecksum
}

// Hardware returns the models the cartridge targets.
func (h *Header) Hardware() string {
	switch h.CartridgeGBMode {
	case FlagSupportsCGB:
		return "DMG/CGB"
	case FlagOnlyCGB:
		return "CGB"
	default:
		return "DMG"
	}
}

func (h *Header) String() string {
	return fmt.Sprintf("%s | %s | Mode: %s | ROM Size: %dkB | RAM Size: %dkB", h.Title, h.CartridgeType, h.Hardware(), h.ROMSize/1024, h.RAMSize/1024)
}
