package ppu

const (
	// ScreenWidth is the width of the screen in pixels.
	ScreenWidth = 160
	// ScreenHeight is the height of the screen in pixels.
	ScreenHeight = 144
)

// Image is a frame of palette indices, indexed [x][y].
type Image [ScreenWidth][ScreenHeight]uint8

// Palette holds 16 colours as 0xRRGGBB. The first four are the
// shades selected by BGP.
type Palette [16]uint32

// DefaultPalette is passed to every Output when a PPU is created.
var DefaultPalette = Palette{
	0x0FBC9B,
	0x0FAC8B,
	0x306230,
	0x0F380F,
	0xFFFFFF,
	0xB0B0B0,
	0x808080,
	0x404040,
	0x000000,
	0xFF0000,
	0x00FF00,
	0x0000FF,
	0xFFFF00,
	0xFF00FF,
	0x00FFFF,
	0xFF0088,
}

// RGB splits a palette entry into its components.
func (p *Palette) RGB(index uint8) (r, g, b uint8) {
	c := p[index&0xF]
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Output receives rendered frames. WriteImage is called from the
// render goroutine, one frame at a time; the image must not be
// retained after it returns.
type Output interface {
	SetPalette(p Palette)
	WriteImage(img *Image)
}

// Discard is an Output that drops every frame.
var Discard Output = discard{}

type discard struct{}

func (discard) SetPalette(Palette) {}
func (discard) WriteImage(*Image) {}
