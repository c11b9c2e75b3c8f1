// Package terminal draws frames to an ANSI terminal using
// truecolor half block characters, two pixels per cell.
package terminal

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/xxhash"

	"github.com/thelolagemann/sm83/internal/joypad"
	"github.com/thelolagemann/sm83/internal/ppu"
	"github.com/thelolagemann/sm83/pkg/display"
)

// releaseAfter is how long a key counts as held. Terminals do not
// report key releases.
const releaseAfter = 150 * time.Millisecond

// Terminal is a display.Driver writing to a terminal.
type Terminal struct {
	out   io.Writer
	in    *os.File
	size  func() (cols, rows int)
	input bool

	palette ppu.Palette
	last    uint64
	buf     bytes.Buffer
	restore func()
}

// New returns a Terminal drawing to out, sized by size. Input is
// not read.
func New(out io.Writer, size func() (cols, rows int)) *Terminal {
	return &Terminal{out: out, size: size}
}

func stdoutSize() (int, int) {
	cols, rows, err := winsize(int(os.Stdout.Fd()))
	if err != nil {
		return ppu.ScreenWidth, ppu.ScreenHeight/2 + 1
	}
	return cols, rows
}

// SetPalette implements ppu.Output.
func (t *Terminal) SetPalette(p ppu.Palette) {
	t.palette = p
	t.last = 0
}

// WriteImage implements ppu.Output. A frame identical to the last
// one drawn is skipped.
func (t *Terminal) WriteImage(img *ppu.Image) {
	h := xxhash.New()
	for x := range img {
		h.Write(img[x][:])
	}
	sum := h.Sum64()
	if sum == t.last {
		return
	}
	t.last = sum

	cols, rows := t.size()
	rows-- // leave the last line free so the terminal doesn't scroll
	if cols > ppu.ScreenWidth {
		cols = ppu.ScreenWidth
	}
	if rows > ppu.ScreenHeight/2 {
		rows = ppu.ScreenHeight / 2
	}
	if cols <= 0 || rows <= 0 {
		return
	}

	t.buf.Reset()
	t.buf.WriteString("\x1b[H")
	for row := 0; row < rows; row++ {
		top := 2 * row * ppu.ScreenHeight / (2 * rows)
		bottom := (2*row + 1) * ppu.ScreenHeight / (2 * rows)
		fg, bg := -1, -1
		for col := 0; col < cols; col++ {
			x := col * ppu.ScreenWidth / cols
			if c := int(img[x][top]); c != fg {
				r, g, b := t.palette.RGB(uint8(c))
				fmt.Fprintf(&t.buf, "\x1b[38;2;%d;%d;%dm", r, g, b)
				fg = c
			}
			if c := int(img[x][bottom]); c != bg {
				r, g, b := t.palette.RGB(uint8(c))
				fmt.Fprintf(&t.buf, "\x1b[48;2;%d;%d;%dm", r, g, b)
				bg = c
			}
			t.buf.WriteString("▀")
		}
		t.buf.WriteString("\x1b[0m\r\n")
	}
	t.out.Write(t.buf.Bytes())
}

// Start clears the screen and, when enabled, reads keys from
// stdin.
func (t *Terminal) Start(input chan<- joypad.Event) error {
	io.WriteString(t.out, "\x1b[2J\x1b[?25l")
	if !t.input || t.in == nil {
		return nil
	}

	restore, err := makeRaw(int(t.in.Fd()))
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	t.restore = restore
	go readKeys(bufio.NewReader(t.in), input)
	return nil
}

// Stop restores the cursor and the terminal mode.
func (t *Terminal) Stop() error {
	io.WriteString(t.out, "\x1b[0m\x1b[?25h\r\n")
	if t.restore != nil {
		t.restore()
		t.restore = nil
	}
	return nil
}

var keys = map[byte]joypad.Button{
	'z':  joypad.ButtonA,
	'x':  joypad.ButtonB,
	'\r': joypad.ButtonStart,
	' ':  joypad.ButtonSelect,
	'w':  joypad.ButtonUp,
	'a':  joypad.ButtonLeft,
	's':  joypad.ButtonDown,
	'd':  joypad.ButtonRight,
}

var arrows = map[byte]joypad.Button{
	'A': joypad.ButtonUp,
	'B': joypad.ButtonDown,
	'C': joypad.ButtonRight,
	'D': joypad.ButtonLeft,
}

// readKeys translates key presses into button events, releasing
// each button once its key stops repeating.
func readKeys(r io.ByteReader, input chan<- joypad.Event) {
	held := make(map[joypad.Button]*time.Timer)
	send := func(e joypad.Event) {
		select {
		case input <- e:
		default:
		}
	}

	for {
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		button, ok := keys[b]
		if b == 0x1b {
			// ESC [ X
			if next, _ := r.ReadByte(); next != '[' {
				continue
			}
			code, _ := r.ReadByte()
			button, ok = arrows[code]
		}
		if !ok {
			continue
		}

		if timer, seen := held[button]; seen {
			// a stopped timer has already released the button
			if !timer.Reset(releaseAfter) {
				send(joypad.Event{Button: button, Pressed: true})
			}
			continue
		}
		send(joypad.Event{Button: button, Pressed: true})
		held[button] = time.AfterFunc(releaseAfter, func() {
			send(joypad.Event{Button: button})
		})
	}
}

var driver = &Terminal{out: os.Stdout, in: os.Stdin, size: stdoutSize}

func init() {
	display.Install("terminal", driver, []display.DriverOption{
		{
			Name:        "input",
			Default:     true,
			Value:       &driver.input,
			Description: "read joypad input from the terminal",
			Type:        "bool",
		},
	})
}
