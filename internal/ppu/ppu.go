// Package ppu implements the display peripheral: video RAM, the
// LCD registers at 0xFF40 - 0xFF4B and the line counter that
// drives the VBlank interrupt. Frames are rendered on a separate
// goroutine from a copy of video RAM taken at the start of VBlank.
package ppu

import (
	"sync/atomic"

	"github.com/thelolagemann/sm83/internal/interrupts"
	"github.com/thelolagemann/sm83/internal/io"
	"github.com/thelolagemann/sm83/internal/ram"
	"github.com/thelolagemann/sm83/internal/scheduler"
	"github.com/thelolagemann/sm83/internal/types"
	"github.com/thelolagemann/sm83/pkg/log"
)

const (
	// CyclesPerLine is the length of a scanline in clock cycles.
	CyclesPerLine = 456
	// Lines is the number of lines per frame, including VBlank.
	Lines = 154
	// VBlankLine is the first line of the vertical blanking period.
	VBlankLine = ScreenHeight
	// CyclesPerFrame is the length of a frame in clock cycles.
	CyclesPerFrame = CyclesPerLine * Lines
)

// register offsets from LCDC
const (
	regLCDC = iota
	regSTAT
	regSCY
	regSCX
	regLY
	regLYC
	regDMA
	regBGP
	regOBP0
	regOBP1
	regWY
	regWX
)

const (
	// ModeHBlank is reported in STAT while a visible line is drawn.
	// The drawing modes are not emulated separately.
	ModeHBlank = iota
	// ModeVBlank is reported in STAT for lines 144-153.
	ModeVBlank
)

// PPU is the display peripheral.
type PPU struct {
	vram *ram.RAM
	regs [types.LCDRegisters]uint8

	sched *scheduler.Scheduler
	irq   *interrupts.Service
	log   log.Logger

	jobs    chan *frame
	done    chan struct{}
	frames  uint64
	dropped atomic.Uint64
	closed  bool
}

// New returns a PPU that renders to out, which is given the
// DefaultPalette before anything else. The registers start at the
// values the boot ROM leaves behind. Close must be called to stop
// the render goroutine.
func New(s *scheduler.Scheduler, irq *interrupts.Service, out Output, l log.Logger) *PPU {
	if out == nil {
		out = Discard
	}
	if l == nil {
		l = log.NewNullLogger()
	}
	p := &PPU{
		vram:  ram.NewRAM(types.VRAMSize),
		sched: s,
		irq:   irq,
		log:   l,
		jobs:  make(chan *frame, 1),
		done:  make(chan struct{}),
	}
	p.regs[regLCDC] = 0x91
	p.regs[regBGP] = 0xFC

	out.SetPalette(DefaultPalette)
	go renderer(p.jobs, out, p.done)

	s.RegisterEvent(scheduler.DisplayLine, p.line)
	s.ScheduleEvent(scheduler.DisplayLine, CyclesPerLine)
	return p
}

// Map attaches video RAM and the LCD registers to the bus.
func (p *PPU) Map(b *io.Bus) {
	b.Attach(types.VRAMStart, types.VRAMSize, p.vram)
	b.Attach(types.LCDC, types.LCDRegisters, p)
}

// VRAM returns the video RAM device.
func (p *PPU) VRAM() *ram.RAM {
	return p.vram
}

// LY returns the current line.
func (p *PPU) LY() uint8 {
	return p.regs[regLY]
}

// Frames returns the number of frames published.
func (p *PPU) Frames() uint64 {
	return p.frames
}

// Dropped returns the number of frames discarded because the
// render goroutine was still busy with an earlier one.
func (p *PPU) Dropped() uint64 {
	return p.dropped.Load()
}

// line advances LY.
func (p *PPU) line() {
	p.sched.ScheduleEvent(scheduler.DisplayLine, CyclesPerLine)

	ly := p.regs[regLY] + 1
	if ly == Lines {
		ly = 0
	}
	p.regs[regLY] = ly

	stat := p.regs[regSTAT] &^ 0b111
	if ly == p.regs[regLYC] {
		stat |= types.Bit2
		if stat&types.Bit6 != 0 {
			p.irq.Request(interrupts.LCDFlag)
		}
	}
	if ly >= VBlankLine {
		stat |= ModeVBlank
	}
	p.regs[regSTAT] = stat

	if ly == VBlankLine {
		p.irq.Request(interrupts.VBlankFlag)
		if stat&types.Bit4 != 0 {
			p.irq.Request(interrupts.LCDFlag)
		}
		p.publish()
	}
}

// publish hands a copy of the frame state to the render goroutine,
// dropping it if the previous frame has not been picked up yet.
func (p *PPU) publish() {
	if p.closed {
		return
	}
	f := &frame{
		lcdc: p.regs[regLCDC],
		scx:  p.regs[regSCX],
		scy:  p.regs[regSCY],
		bgp:  p.regs[regBGP],
	}
	p.vram.ReadBlock(0, f.vram[:])

	p.frames++
	select {
	case p.jobs <- f:
	default:
		if n := p.dropped.Add(1); n&(n-1) == 0 {
			p.log.Debugf("ppu: render goroutine busy, %d frames dropped", n)
		}
	}
}

// Close stops the render goroutine, waiting for the frame in
// flight to be written.
func (p *PPU) Close() {
	if p.closed {
		return
	}
	p.closed = true
	close(p.jobs)
	<-p.done
}

// Read implements io.Device for the LCD registers.
func (p *PPU) Read(offset uint16) uint8 {
	if int(offset) >= len(p.regs) {
		return 0xFF
	}
	if offset == regSTAT {
		return p.regs[regSTAT] | 0x80
	}
	return p.regs[offset]
}

// Write implements io.Device for the LCD registers. LY is read
// only, and the low 3 bits of STAT are owned by the PPU.
func (p *PPU) Write(offset uint16, value uint8) {
	switch offset {
	case regLY:
	case regSTAT:
		p.regs[regSTAT] = p.regs[regSTAT]&0b111 | value&0x78
	default:
		if int(offset) < len(p.regs) {
			p.regs[offset] = value
		}
	}
}

var _ types.Stater = (*PPU)(nil)

// Load implements types.Stater.
func (p *PPU) Load(s *types.State) {
	p.vram.Load(s)
	s.ReadData(p.regs[:])
	p.sched.ScheduleEvent(scheduler.DisplayLine, uint64(s.Read16()))
}

// Save implements types.Stater.
func (p *PPU) Save(s *types.State) {
	remaining, _ := p.sched.Until(scheduler.DisplayLine)
	p.vram.Save(s)
	s.WriteData(p.regs[:])
	s.Write16(uint16(remaining))
}
