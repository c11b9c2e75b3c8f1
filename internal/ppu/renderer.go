package ppu

import "github.com/thelolagemann/sm83/internal/types"

// frame is the state a frame is rendered from, copied out of the
// PPU when it enters VBlank.
type frame struct {
	vram     [types.VRAMSize]byte
	lcdc     uint8
	scx, scy uint8
	bgp      uint8
}

// render decodes the background of f into img.
//
// The background is the 32x32 tile map selected by LCDC bit 3,
// scrolled by SCX/SCY and wrapping at 256 pixels. Colour numbers
// are translated through BGP. With the LCD or the background
// disabled the frame is blank.
func render(f *frame, img *Image) {
	if f.lcdc&types.Bit7 == 0 || f.lcdc&types.Bit0 == 0 {
		*img = Image{}
		return
	}

	mapBase := 0x1800
	if f.lcdc&types.Bit3 != 0 {
		mapBase = 0x1C00
	}
	unsigned := f.lcdc&types.Bit4 != 0

	var shades [4]uint8
	for i := range shades {
		shades[i] = f.bgp >> (i * 2) & 0b11
	}

	var tiles [256]*Tile
	for y := 0; y < ScreenHeight; y++ {
		bgY := uint8(y) + f.scy
		for x := 0; x < ScreenWidth; x++ {
			bgX := uint8(x) + f.scx
			n := f.vram[mapBase+int(bgY/8)*32+int(bgX/8)]
			if tiles[n] == nil {
				addr := tileAddress(n, unsigned)
				t := decodeTile(f.vram[addr : addr+16])
				tiles[n] = &t
			}
			img[x][y] = shades[tiles[n][bgY%8][bgX%8]]
		}
	}
}

// renderer draws every frame received on jobs to out, until jobs is
// closed.
func renderer(jobs <-chan *frame, out Output, done chan<- struct{}) {
	defer close(done)
	img := &Image{}
	for f := range jobs {
		render(f, img)
		out.WriteImage(img)
	}
}
