// Package gameboy assembles the CPU, the bus and the peripherals
// into a runnable DMG.
package gameboy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"

	"github.com/thelolagemann/sm83/internal/boot"
	"github.com/thelolagemann/sm83/internal/cartridge"
	"github.com/thelolagemann/sm83/internal/clock"
	"github.com/thelolagemann/sm83/internal/cpu"
	"github.com/thelolagemann/sm83/internal/interrupts"
	sio "github.com/thelolagemann/sm83/internal/io"
	"github.com/thelolagemann/sm83/internal/joypad"
	"github.com/thelolagemann/sm83/internal/ppu"
	"github.com/thelolagemann/sm83/internal/ram"
	"github.com/thelolagemann/sm83/internal/scheduler"
	"github.com/thelolagemann/sm83/internal/serial"
	"github.com/thelolagemann/sm83/internal/timer"
	"github.com/thelolagemann/sm83/internal/types"
	"github.com/thelolagemann/sm83/pkg/log"
)

const (
	// ClockSpeed is the clock speed of the Game Boy.
	ClockSpeed = clock.Frequency
	// CyclesPerFrame is the number of clock cycles per frame.
	CyclesPerFrame = ppu.CyclesPerFrame
)

// stateVersion prefixes every saved state.
const stateVersion = 1

// GameBoy represents a Game Boy. It contains all the components of the Game Boy.
// It is the main entry point for the emulator.
type GameBoy struct {
	CPU        *cpu.CPU
	Bus        *sio.Bus
	Interrupts *interrupts.Service
	Scheduler  *scheduler.Scheduler
	Divider    *timer.Divider
	Timer      *timer.Controller
	Serial     *serial.Controller
	Joypad     *joypad.State
	PPU        *ppu.PPU
	Cartridge  cartridge.Cartridge
	Boot       *boot.Latch

	wram *ram.RAM
	hram *ram.RAM

	clock *clock.Clock
	input chan joypad.Event

	log log.Logger

	// set by options
	bootImage []byte
	output    ppu.Output
	link      serial.Device
	tracer    cpu.Tracer
	speed     float64
	state     []byte
}

// New returns a GameBoy running rom. Close must be called once it
// is no longer needed.
func New(rom []byte, opts ...Opt) (*GameBoy, error) {
	gb := &GameBoy{
		speed: 1,
		input: make(chan joypad.Event, 16),
	}
	for _, opt := range opts {
		opt(gb)
	}
	if gb.log == nil {
		gb.log = log.NewNullLogger()
	}

	cart, err := cartridge.New(rom, gb.log)
	if err != nil {
		return nil, err
	}
	var bootROM *boot.ROM
	if gb.bootImage != nil {
		if bootROM, err = boot.Load(gb.bootImage); err != nil {
			return nil, err
		}
		gb.log.Infof("boot: using %s boot rom", bootROM.Model())
	}

	gb.Bus = sio.NewBus(gb.log)
	gb.Interrupts = interrupts.NewService()
	gb.Scheduler = scheduler.NewScheduler()
	gb.CPU = cpu.NewCPU(gb.Bus, gb.Interrupts, gb.log)
	gb.Divider = timer.NewDivider(gb.Scheduler)
	gb.Timer = timer.NewController(gb.Scheduler, gb.Interrupts)
	gb.Serial = serial.NewController(gb.Scheduler, gb.Interrupts)
	gb.Serial.Attach(gb.link)
	gb.Joypad = joypad.New(gb.Interrupts)
	gb.PPU = ppu.New(gb.Scheduler, gb.Interrupts, gb.output, gb.log)
	gb.Cartridge = cart
	gb.wram = ram.NewRAM(types.WRAMSize)
	gb.hram = ram.NewRAM(types.HRAMSize)

	// the boot rom is attached after the cartridge so that it
	// shadows the first 256 bytes until the latch removes it
	cartridge.Map(gb.Bus, cart)
	if bootROM != nil {
		gb.Bus.Attach(types.BootROMStart, types.BootROMSize, bootROM)
	}
	gb.Boot = boot.NewLatch(gb.Bus, bootROM, gb.log)
	gb.PPU.Map(gb.Bus)
	gb.Bus.Attach(types.WRAMStart, types.WRAMSize, gb.wram)
	gb.Bus.Attach(types.EchoStart, types.EchoSize, gb.wram)
	gb.Bus.Attach(types.P1, 1, gb.Joypad)
	gb.Serial.Map(gb.Bus)
	timer.Attach(gb.Bus, gb.Divider, gb.Timer)
	gb.Bus.Attach(types.HRAMStart, types.HRAMSize, gb.hram)
	gb.Interrupts.Attach(gb.Bus)

	if bootROM != nil {
		gb.CPU.Reset(true)
	} else {
		gb.CPU.SkipBoot()
	}
	if gb.tracer != nil {
		gb.CPU.AttachTracer(gb.tracer)
	}

	gb.clock = clock.New(gb.CPU, gb.Scheduler,
		clock.Speed(gb.speed),
		clock.WithLogger(gb.log),
		clock.OnFrame(gb.drainInput),
	)

	if gb.state != nil {
		if err := gb.LoadState(bytes.NewReader(gb.state)); err != nil {
			gb.Close()
			return nil, err
		}
	}

	gb.log.Debugf("bus:\n%s", gb.Bus)
	return gb, nil
}

// Input returns the channel button events are delivered on. Events
// are applied between frames on the goroutine running the GameBoy.
func (gb *GameBoy) Input() chan<- joypad.Event {
	return gb.input
}

func (gb *GameBoy) drainInput() {
	for {
		select {
		case e := <-gb.input:
			gb.Joypad.Handle(e)
		default:
			return
		}
	}
}

// Step executes a single instruction and returns the cycles taken.
func (gb *GameBoy) Step() uint64 {
	return gb.clock.Step()
}

// Frame runs a frame's worth of cycles, applying pending input
// first.
func (gb *GameBoy) Frame() uint64 {
	gb.drainInput()
	return gb.clock.Frame()
}

// Run emulates until ctx is cancelled, paced to the configured
// speed.
func (gb *GameBoy) Run(ctx context.Context) error {
	gb.log.Infof("running %s", gb.Cartridge.Header().Title)
	return gb.clock.Run(ctx)
}

// Close stops the render goroutine.
func (gb *GameBoy) Close() {
	gb.PPU.Close()
}

// staters returns the components saved to a state, in order.
func (gb *GameBoy) staters() []types.Stater {
	return []types.Stater{
		gb.CPU,
		gb.Divider,
		gb.Timer,
		gb.Serial,
		gb.Joypad,
		gb.PPU,
		gb.wram,
		gb.hram,
		gb.Cartridge,
		gb.Boot,
	}
}

// SaveState writes the machine state to w, brotli compressed.
func (gb *GameBoy) SaveState(w io.Writer) error {
	s := types.NewState()
	s.Write8(stateVersion)
	for _, st := range gb.staters() {
		st.Save(s)
	}

	bw := brotli.NewWriterLevel(w, brotli.DefaultCompression)
	if _, err := bw.Write(s.Bytes()); err != nil {
		return fmt.Errorf("gameboy: writing state: %w", err)
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("gameboy: writing state: %w", err)
	}
	return nil
}

// LoadState restores a state written by SaveState. A state that
// ends early returns an error wrapping types.ErrStateTruncated,
// leaving the machine partially restored.
func (gb *GameBoy) LoadState(r io.Reader) error {
	raw, err := io.ReadAll(brotli.NewReader(r))
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("gameboy: %w: %v", types.ErrStateTruncated, err)
	} else if err != nil {
		return fmt.Errorf("gameboy: reading state: %w", err)
	}
	s := types.StateFromBytes(raw)
	if v := s.Read8(); s.Err() == nil && v != stateVersion {
		return fmt.Errorf("gameboy: unsupported state version %d", v)
	}
	for _, st := range gb.staters() {
		st.Load(s)
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("gameboy: %w", err)
	}
	gb.log.Debugf("gameboy: state loaded (%d bytes)", len(raw))
	return nil
}
