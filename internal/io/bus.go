package io

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/thelolagemann/sm83/pkg/log"
)

// AddressSpace is the size of the 16-bit address space.
const AddressSpace = 0x10000

// Mapping is a device attached to the range [Start, Start+Length).
type Mapping struct {
	Start  uint16
	Length int
	Device Device
}

// End returns the last address covered by the mapping.
func (m Mapping) End() uint16 {
	return m.Start + uint16(m.Length-1)
}

func (m Mapping) String() string {
	return fmt.Sprintf("%04X-%04X %T", m.Start, m.End(), m.Device)
}

// Bus routes reads and writes to attached devices.
//
// Mappings are kept in attach order and replayed into a 64K
// lookup table on every Attach and Detach, so that routing a
// single access costs one table lookup. When mappings overlap
// the most recently attached one owns the address. Addresses
// that no mapping covers read as 0x00 and ignore writes.
type Bus struct {
	mappings []Mapping
	raw      [AddressSpace]uint16 // index into mappings + 1, 0 = unmapped

	log log.Logger
}

// NewBus returns an empty Bus.
func NewBus(l log.Logger) *Bus {
	if l == nil {
		l = log.NewNullLogger()
	}
	return &Bus{log: l}
}

// Attach maps the device over [start, start+length). A range that
// runs past 0xFFFF is clipped, and a zero length is ignored.
// Attaching a device to a range it already occupies does not
// create a second mapping, but does make it the newest one.
func (b *Bus) Attach(start uint16, length int, d Device) {
	if length <= 0 || d == nil {
		return
	}
	if int(start)+length > AddressSpace {
		length = AddressSpace - int(start)
	}

	m := Mapping{Start: start, Length: length, Device: d}
	for i, existing := range b.mappings {
		if existing.Start == m.Start && existing.Length == m.Length && sameDevice(existing.Device, d) {
			b.mappings = append(b.mappings[:i], b.mappings[i+1:]...)
			break
		}
	}
	for _, existing := range b.mappings {
		if existing.Start <= m.End() && m.Start <= existing.End() {
			b.log.Debugf("bus: %s overlaps %s", m, existing)
		}
	}

	b.mappings = append(b.mappings, m)
	b.rebuild()
}

// Detach removes every mapping of the device. Addresses it owned
// fall back to any earlier mapping still covering them.
func (b *Bus) Detach(d Device) {
	kept := b.mappings[:0]
	for _, m := range b.mappings {
		if !sameDevice(m.Device, d) {
			kept = append(kept, m)
		}
	}
	for i := len(kept); i < len(b.mappings); i++ {
		b.mappings[i] = Mapping{}
	}
	b.mappings = kept
	b.rebuild()
}

// sameDevice compares devices by identity. Devices whose dynamic
// type is not comparable never match, rather than panicking.
func sameDevice(a, b Device) bool {
	if a == nil || b == nil {
		return false
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}

// rebuild replays the mappings into the lookup table.
func (b *Bus) rebuild() {
	b.raw = [AddressSpace]uint16{}
	for i, m := range b.mappings {
		for a := 0; a < m.Length; a++ {
			b.raw[int(m.Start)+a] = uint16(i + 1)
		}
	}
}

// Mappings returns a copy of the current mappings in attach order.
func (b *Bus) Mappings() []Mapping {
	out := make([]Mapping, len(b.mappings))
	copy(out, b.mappings)
	return out
}

// WatchWrite registers fn with the device owning address, which
// must implement WriteWatcher. fn is called with the device-local
// offset after each write lands. It reports whether the watch was
// registered.
func (b *Bus) WatchWrite(address uint16, fn func(offset uint16, value uint8)) bool {
	i := b.raw[address]
	if i == 0 {
		return false
	}
	m := &b.mappings[i-1]
	w, ok := m.Device.(WriteWatcher)
	if !ok {
		return false
	}
	w.WatchWrite(address-m.Start, fn)
	return true
}

// Read returns the value at the given address.
func (b *Bus) Read(address uint16) uint8 {
	i := b.raw[address]
	if i == 0 {
		return 0x00
	}
	m := &b.mappings[i-1]
	return m.Device.Read(address - m.Start)
}

// Write writes the value to the given address.
func (b *Bus) Write(address uint16, value uint8) {
	i := b.raw[address]
	if i == 0 {
		return
	}
	m := &b.mappings[i-1]
	m.Device.Write(address-m.Start, value)
}

// single returns the mapping owning every address of the run, if
// there is exactly one and the run does not wrap.
func (b *Bus) single(address uint16, length int) (*Mapping, bool) {
	if length == 0 || int(address)+length > AddressSpace {
		return nil, false
	}
	i := b.raw[address]
	if i == 0 {
		return nil, false
	}
	for a := 1; a < length; a++ {
		if b.raw[int(address)+a] != i {
			return nil, false
		}
	}
	return &b.mappings[i-1], true
}

// ReadBlock reads length bytes starting at address, wrapping at
// 0xFFFF. A run crossing mapping boundaries is read from each
// owner at its own offset.
func (b *Bus) ReadBlock(address uint16, length int) []byte {
	p := make([]byte, length)
	if m, ok := b.single(address, length); ok {
		if br, ok := m.Device.(BlockReader); ok {
			br.ReadBlock(address-m.Start, p)
			return p
		}
	}
	for n := range p {
		p[n] = b.Read(address + uint16(n))
	}
	return p
}

// WriteBlock writes p starting at address, wrapping at 0xFFFF.
func (b *Bus) WriteBlock(address uint16, p []byte) {
	if m, ok := b.single(address, len(p)); ok {
		if bw, ok := m.Device.(BlockWriter); ok {
			bw.WriteBlock(address-m.Start, p)
			return
		}
	}
	for n, v := range p {
		b.Write(address+uint16(n), v)
	}
}

func (b *Bus) String() string {
	var sb strings.Builder
	for _, m := range b.mappings {
		sb.WriteString(m.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
