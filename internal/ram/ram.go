// Package ram provides fixed size memory devices for the bus.
package ram

import "github.com/thelolagemann/sm83/internal/types"

// RAM is a fixed size block of read/write memory. Offsets outside
// the block read as 0xFF and ignore writes.
type RAM struct {
	data    []byte
	watches map[uint16][]func(offset uint16, value uint8)
}

// NewRAM returns a new zeroed RAM of the given size.
func NewRAM(size int) *RAM {
	return &RAM{
		data: make([]byte, size),
	}
}

// Size returns the size of the RAM in bytes.
func (r *RAM) Size() int {
	return len(r.data)
}

// Read returns the value at the given offset.
func (r *RAM) Read(offset uint16) uint8 {
	if int(offset) >= len(r.data) {
		return 0xFF
	}
	return r.data[offset]
}

// Write writes the value to the given offset, then notifies any
// watcher of that offset.
func (r *RAM) Write(offset uint16, value uint8) {
	if int(offset) >= len(r.data) {
		return
	}
	r.data[offset] = value
	for _, fn := range r.watches[offset] {
		fn(offset, value)
	}
}

// ReadBlock copies len(p) bytes starting at offset into p.
func (r *RAM) ReadBlock(offset uint16, p []byte) {
	n := 0
	if int(offset) < len(r.data) {
		n = copy(p, r.data[offset:])
	}
	for ; n < len(p); n++ {
		p[n] = 0xFF
	}
}

// WriteBlock copies p into the RAM starting at offset. Watched
// offsets inside the run are notified in address order.
func (r *RAM) WriteBlock(offset uint16, p []byte) {
	if int(offset) >= len(r.data) {
		return
	}
	n := copy(r.data[offset:], p)
	if len(r.watches) == 0 {
		return
	}
	for i := 0; i < n; i++ {
		o := offset + uint16(i)
		for _, fn := range r.watches[o] {
			fn(o, p[i])
		}
	}
}

// WatchWrite registers fn to be called after every write to offset.
func (r *RAM) WatchWrite(offset uint16, fn func(offset uint16, value uint8)) {
	if r.watches == nil {
		r.watches = make(map[uint16][]func(uint16, uint8))
	}
	r.watches[offset] = append(r.watches[offset], fn)
}

// Bytes returns the backing slice. Changes made through it bypass
// any watches.
func (r *RAM) Bytes() []byte {
	return r.data
}

var _ types.Stater = (*RAM)(nil)

// Load implements the types.Stater interface.
func (r *RAM) Load(s *types.State) {
	s.ReadData(r.data)
}

// Save implements the types.Stater interface.
func (r *RAM) Save(s *types.State) {
	s.WriteData(r.data)
}
