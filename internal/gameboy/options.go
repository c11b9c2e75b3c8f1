package gameboy

import (
	"io"

	"github.com/thelolagemann/sm83/internal/cpu"
	"github.com/thelolagemann/sm83/internal/ppu"
	"github.com/thelolagemann/sm83/internal/serial"
	"github.com/thelolagemann/sm83/pkg/log"
)

// Opt is a function that modifies a GameBoy
// instance before it is assembled.
type Opt func(gb *GameBoy)

// WithBootROM sets the boot ROM for the emulator. Execution then
// starts at 0x0000 with cleared registers, rather than at 0x0100
// with the values the boot ROM would leave behind.
func WithBootROM(rom []byte) Opt {
	return func(gb *GameBoy) {
		gb.bootImage = rom
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(l log.Logger) Opt {
	return func(gb *GameBoy) {
		gb.log = l
	}
}

// WithOutput sets where rendered frames are sent.
func WithOutput(out ppu.Output) Opt {
	return func(gb *GameBoy) {
		gb.output = out
	}
}

// WithSerialWriter connects the serial port to w, which receives
// every byte transferred with the internal clock.
func WithSerialWriter(w io.Writer) Opt {
	return func(gb *GameBoy) {
		gb.link = serial.NewWriterDevice(w)
	}
}

// WithSerialDevice connects the serial port to d.
func WithSerialDevice(d serial.Device) Opt {
	return func(gb *GameBoy) {
		gb.link = d
	}
}

// WithTracer attaches t to the CPU.
func WithTracer(t cpu.Tracer) Opt {
	return func(gb *GameBoy) {
		gb.tracer = t
	}
}

// Speed sets the emulation speed as a multiple of real hardware.
// Zero or less runs as fast as possible.
func Speed(speed float64) Opt {
	return func(gb *GameBoy) {
		gb.speed = speed
	}
}

// WithState restores a state written by SaveState once the
// GameBoy is assembled.
func WithState(b []byte) Opt {
	return func(gb *GameBoy) {
		gb.state = b
	}
}
