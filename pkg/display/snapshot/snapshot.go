// Package snapshot periodically writes the current frame to a PNG
// file, scaled up with nearest neighbour sampling.
package snapshot

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"

	"github.com/thelolagemann/sm83/internal/joypad"
	"github.com/thelolagemann/sm83/internal/ppu"
	"github.com/thelolagemann/sm83/pkg/display"
)

// Snapshot is a display.Driver writing every Nth frame to a file.
type Snapshot struct {
	Path  string
	Every int
	Scale int

	palette [16]color.RGBA
	frames  int
	frame   *image.RGBA
	scaled  *image.RGBA
	err     error
}

// New returns a Snapshot writing to path.
func New(path string, every, scale int) *Snapshot {
	return &Snapshot{Path: path, Every: every, Scale: scale}
}

// SetPalette implements ppu.Output.
func (s *Snapshot) SetPalette(p ppu.Palette) {
	for i := range s.palette {
		r, g, b := p.RGB(uint8(i))
		s.palette[i] = color.RGBA{R: r, G: g, B: b, A: 0xFF}
	}
}

// WriteImage implements ppu.Output.
func (s *Snapshot) WriteImage(img *ppu.Image) {
	s.frames++
	if s.Every > 1 && s.frames%s.Every != 0 {
		return
	}
	if err := s.write(img); err != nil && s.err == nil {
		s.err = err
	}
}

// Err returns the first error encountered writing a frame.
func (s *Snapshot) Err() error {
	return s.err
}

func (s *Snapshot) write(img *ppu.Image) error {
	if s.frame == nil {
		s.frame = image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight))
	}
	for x := range img {
		for y, c := range img[x] {
			s.frame.SetRGBA(x, y, s.palette[c&0xF])
		}
	}

	out := s.frame
	if s.Scale > 1 {
		if s.scaled == nil {
			s.scaled = image.NewRGBA(image.Rect(0, 0, ppu.ScreenWidth*s.Scale, ppu.ScreenHeight*s.Scale))
		}
		draw.NearestNeighbor.Scale(s.scaled, s.scaled.Bounds(), s.frame, s.frame.Bounds(), draw.Src, nil)
		out = s.scaled
	}

	// write to a temporary file and rename, so readers never see
	// a partial image
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".snapshot-*.png")
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := png.Encode(tmp, out); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}

// Start implements display.Driver.
func (s *Snapshot) Start(chan<- joypad.Event) error {
	if s.Path == "" {
		return fmt.Errorf("snapshot: no path given")
	}
	return nil
}

// Stop implements display.Driver.
func (s *Snapshot) Stop() error {
	return s.err
}

var driver = &Snapshot{}

func init() {
	display.Install("png", driver, []display.DriverOption{
		{
			Name:        "path",
			Default:     "frame.png",
			Value:       &driver.Path,
			Description: "file the latest frame is written to",
			Type:        "string",
		},
		{
			Name:        "every",
			Default:     60,
			Value:       &driver.Every,
			Description: "write one frame out of every N",
			Type:        "int",
		},
		{
			Name:        "scale",
			Default:     3,
			Value:       &driver.Scale,
			Description: "scale factor of the written image",
			Type:        "int",
		},
	})
}
