// Package boot maps a 256 byte DMG boot ROM over the start of the
// cartridge, and removes it again once the boot program writes to
// the BDIS register.
package boot

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/thelolagemann/sm83/internal/io"
	"github.com/thelolagemann/sm83/internal/ram"
	"github.com/thelolagemann/sm83/internal/types"
	"github.com/thelolagemann/sm83/pkg/log"
)

// ErrInvalidSize is returned by Load for anything other than a
// 256 byte image.
var ErrInvalidSize = errors.New("boot: invalid boot rom size")

// ROM is a read-only boot program mapped at 0x0000 - 0x00FF.
type ROM struct {
	raw      [types.BootROMSize]byte
	checksum string
}

// Load copies b into a new ROM.
func Load(b []byte) (*ROM, error) {
	if len(b) != types.BootROMSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSize, len(b))
	}

	r := &ROM{}
	copy(r.raw[:], b)
	sum := md5.Sum(b)
	r.checksum = hex.EncodeToString(sum[:])
	return r, nil
}

// Read returns the byte at the given offset.
func (r *ROM) Read(offset uint16) uint8 {
	if int(offset) >= len(r.raw) {
		return 0xFF
	}
	return r.raw[offset]
}

// Write is ignored.
func (r *ROM) Write(uint16, uint8) {}

// ReadBlock implements io.BlockReader.
func (r *ROM) ReadBlock(offset uint16, p []byte) {
	copy(p, r.raw[offset:])
}

// Checksum returns the MD5 checksum of the boot rom.
func (r *ROM) Checksum() string {
	if r == nil {
		return ""
	}
	return r.checksum
}

// Model returns the model the boot rom belongs to, identified by
// its checksum.
func (r *ROM) Model() string {
	if r == nil {
		return "none"
	}
	if model, ok := knownChecksums[r.checksum]; ok {
		return model
	}
	return "unknown"
}

var knownChecksums = map[string]string{
	DMG0: "Game Boy (DMG-0)",
	DMG:  "Game Boy (DMG-01)",
	MGB:  "Game Boy Pocket",
	SGB:  "Super Game Boy",
	SGB2: "Super Game Boy 2",
}

const (
	// DMG0 is the early boot ROM of Japanese launch units. It
	// flashes the screen on a failed logo check instead of
	// locking up.
	DMG0 = "a8f84a0ac44da5d3f0ee19f9cea80a8c"
	// DMG is the boot ROM of most DMG-01 units.
	DMG = "32fbbd84168d3482956eb3c5051637f5"
	// MGB leaves 0xFF in A rather than 0x01.
	MGB = "71a378e71ff30b2d8a1f02bf5c7896aa"
	// SGB sends the cartridge header to the SNES instead of
	// scrolling the logo.
	SGB = "d574d4f9c12f305074798f54c091a8b4"
	// SGB2 leaves 0xFF in A, as MGB does.
	SGB2 = "e0430bca9925fb9882148fd2dc2418c1"
)

// Latch is the BDIS register at 0xFF50, a single byte of RAM
// watched for writes. The first non-zero write detaches the boot
// ROM from the bus; the register then reads 0xFF and ignores writes.
type Latch struct {
	bus      *io.Bus
	rom      *ROM
	reg      *ram.RAM
	disabled bool
	log      log.Logger
}

// NewLatch maps BDIS onto b and watches it for the write that
// removes rom. A nil rom gives a latch that starts out disabled.
func NewLatch(b *io.Bus, rom *ROM, l log.Logger) *Latch {
	if l == nil {
		l = log.NewNullLogger()
	}
	latch := &Latch{bus: b, rom: rom, reg: ram.NewRAM(1), disabled: rom == nil, log: l}
	latch.settle()
	b.Attach(types.BDIS, 1, latch.reg)
	b.WatchWrite(types.BDIS, latch.written)
	return latch
}

// settle puts back the value BDIS reads as.
func (l *Latch) settle() {
	v := uint8(0xFE)
	if l.disabled {
		v = 0xFF
	}
	l.reg.Bytes()[0] = v
}

func (l *Latch) written(_ uint16, value uint8) {
	if !l.disabled && value != 0 {
		l.disabled = true
		l.bus.Detach(l.rom)
		l.log.Debugf("boot: %s boot rom unmapped", l.rom.Model())
	}
	l.settle()
}

// Disabled reports whether the boot ROM has been unmapped.
func (l *Latch) Disabled() bool {
	return l.disabled
}

// Load implements types.Stater. The boot ROM mapping follows the
// restored latch, in either direction.
func (l *Latch) Load(s *types.State) {
	disabled := s.ReadBool() || l.rom == nil
	switch {
	case disabled && !l.disabled:
		l.bus.Detach(l.rom)
	case !disabled && l.disabled:
		l.bus.Attach(types.BootROMStart, types.BootROMSize, l.rom)
	}
	l.disabled = disabled
	l.settle()
}

// Save implements types.Stater.
func (l *Latch) Save(s *types.State) {
	s.WriteBool(l.disabled)
}
