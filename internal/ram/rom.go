package ram

// ROM is read only memory. Writes are ignored.
type ROM struct {
	data []byte
}

// NewROM returns a ROM holding a copy of b.
func NewROM(b []byte) *ROM {
	data := make([]byte, len(b))
	copy(data, b)
	return &ROM{data: data}
}

// Size returns the size of the ROM in bytes.
func (r *ROM) Size() int {
	return len(r.data)
}

// Read returns the byte at the given offset, or 0xFF past the end.
func (r *ROM) Read(offset uint16) uint8 {
	if int(offset) >= len(r.data) {
		return 0xFF
	}
	return r.data[offset]
}

// Write is a no-op.
func (r *ROM) Write(uint16, uint8) {}

// ReadBlock copies len(p) bytes starting at offset into p.
func (r *ROM) ReadBlock(offset uint16, p []byte) {
	n := 0
	if int(offset) < len(r.data) {
		n = copy(p, r.data[offset:])
	}
	for ; n < len(p); n++ {
		p[n] = 0xFF
	}
}
