package ppu

// Tile is an 8x8 block of 2 bit colour numbers, indexed [y][x].
type Tile [8][8]uint8

// decodeTile decodes the 16 byte, 2 bits per pixel encoding used
// in VRAM: each row is a low bit plane byte followed by a high one,
// with the leftmost pixel in bit 7.
func decodeTile(b []byte) Tile {
	var t Tile
	for y := 0; y < 8; y++ {
		lo, hi := b[y*2], b[y*2+1]
		for x := 0; x < 8; x++ {
			t[y][x] = (lo>>(7-x))&1 | ((hi>>(7-x))&1)<<1
		}
	}
	return t
}

// tileAddress returns the VRAM offset of tile n. With unsigned
// addressing tiles 0-255 start at 0x8000, otherwise n is signed
// and tile 0 sits at 0x9000.
func tileAddress(n uint8, unsigned bool) int {
	if unsigned {
		return int(n) * 16
	}
	return 0x1000 + int(int8(n))*16
}
