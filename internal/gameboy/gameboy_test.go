package gameboy

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/thelolagemann/sm83/internal/interrupts"
	"github.com/thelolagemann/sm83/internal/joypad"
	"github.com/thelolagemann/sm83/internal/types"
)

// testROM returns a 32 KiB ROM only image with program placed at
// the entry point.
func testROM(program ...byte) []byte {
	rom := make([]byte, 0x8000)
	copy(rom[0x100:], program)
	copy(rom[0x134:], "TEST")
	return rom
}

// serialHello writes 'H' to the serial port and spins.
var serialHello = []byte{
	0x3E, 'H',  // LD A, 'H'
	0xE0, 0x01, // LDH (SB), A
	0x3E, 0x81, // LD A, 0x81
	0xE0, 0x02, // LDH (SC), A
	0x18, 0xFE, // JR -2
}

func newTestGameBoy(t *testing.T, rom []byte, opts ...Opt) *GameBoy {
	t.Helper()
	gb, err := New(rom, opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(gb.Close)
	return gb
}

func TestNew(t *testing.T) {
	if _, err := New(make([]byte, 0x20)); err == nil {
		t.Errorf("expected an error for a short rom")
	}
	if _, err := New(testROM(), WithBootROM(make([]byte, 10))); err == nil {
		t.Errorf("expected an error for a bad boot rom")
	}

	gb := newTestGameBoy(t, testROM())
	if gb.CPU.PC != 0x0100 || gb.CPU.AF.Uint16() != 0x01B0 {
		t.Errorf("expected post boot registers, got PC=0x%04X AF=0x%04X", gb.CPU.PC, gb.CPU.AF.Uint16())
	}
	if gb.Cartridge.Header().Title != "TEST" {
		t.Errorf("unexpected title %q", gb.Cartridge.Header().Title)
	}
}

func TestGameBoy_Memory(t *testing.T) {
	gb := newTestGameBoy(t, testROM())

	gb.Bus.Write(0xC010, 0x42)
	if v := gb.Bus.Read(0xE010); v != 0x42 {
		t.Errorf("expected echo ram to mirror wram, read 0x%02X", v)
	}
	gb.Bus.Write(0xFDFF, 0x24)
	if v := gb.Bus.Read(0xDDFF); v != 0x24 {
		t.Errorf("expected writes to echo ram to reach wram, read 0x%02X", v)
	}
	gb.Bus.Write(0xFF80, 0x99)
	if v := gb.Bus.Read(0xFF80); v != 0x99 {
		t.Errorf("expected hram to be writable, read 0x%02X", v)
	}
	gb.Bus.Write(0x9800, 0x01)
	if gb.PPU.VRAM().Read(0x1800) != 0x01 {
		t.Errorf("expected vram to be mapped at 0x8000")
	}
	gb.Bus.Write(types.IE, 0x1F)
	if gb.Interrupts.Enable != 0x1F {
		t.Errorf("expected IE to be mapped")
	}
}

func TestGameBoy_BootROM(t *testing.T) {
	image := make([]byte, 256)
	copy(image, []byte{
		0x3E, 0x01, // LD A, 1
		0xE0, 0x50, // LDH (BDIS), A
	})
	gb := newTestGameBoy(t, testROM(), WithBootROM(image))

	if gb.CPU.PC != 0 {
		t.Fatalf("expected execution to start at 0x0000, got 0x%04X", gb.CPU.PC)
	}
	if v := gb.Bus.Read(0x0000); v != 0x3E {
		t.Fatalf("expected boot rom at 0x0000, read 0x%02X", v)
	}
	gb.Step()
	gb.Step()
	if !gb.Boot.Disabled() {
		t.Errorf("expected the boot rom to be disabled")
	}
	if v := gb.Bus.Read(0x0000); v != 0x00 {
		t.Errorf("expected the cartridge at 0x0000, read 0x%02X", v)
	}
}

func TestGameBoy_Serial(t *testing.T) {
	var out bytes.Buffer
	gb := newTestGameBoy(t, testROM(serialHello...), WithSerialWriter(&out))

	gb.Frame()
	if out.String() != "H" {
		t.Errorf("expected serial output %q, got %q", "H", out.String())
	}
	if gb.Interrupts.Flag&interrupts.SerialFlag == 0 {
		t.Errorf("expected a serial interrupt to be requested")
	}
	if gb.Interrupts.Flag&interrupts.VBlankFlag == 0 {
		t.Errorf("expected a vblank interrupt after a frame")
	}
}

func TestGameBoy_Input(t *testing.T) {
	gb := newTestGameBoy(t, testROM(0x18, 0xFE))

	gb.Input() <- joypad.Event{Button: joypad.ButtonStart, Pressed: true}
	gb.Frame()
	if gb.Interrupts.Flag&interrupts.JoypadFlag == 0 {
		t.Errorf("expected a joypad interrupt")
	}
	gb.Bus.Write(types.P1, 0x10) // select action buttons
	if v := gb.Bus.Read(types.P1); v&0x08 != 0 {
		t.Errorf("expected start to read as pressed, got 0x%02X", v)
	}
}

func TestGameBoy_Run(t *testing.T) {
	var out bytes.Buffer
	gb := newTestGameBoy(t, testROM(serialHello...), Speed(0), WithSerialWriter(&out))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := gb.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected the deadline to end the run, got %v", err)
	}
	if gb.PPU.Frames() == 0 {
		t.Errorf("expected at least one frame")
	}
}

func TestGameBoy_FramePacing(t *testing.T) {
	gb := newTestGameBoy(t, testROM(0xC3, 0x00, 0x01)) // JP 0x0100

	var cycles uint64
	for i := 0; i < 60; i++ {
		cycles += gb.Frame()
	}
	if cycles != 60*70224 {
		t.Fatalf("expected 60 frames of cycles, got %d", cycles)
	}
	if gb.PPU.Frames() != 60 {
		t.Errorf("expected the display to publish 60 frames, got %d", gb.PPU.Frames())
	}
}

func TestGameBoy_State(t *testing.T) {
	rom := testROM(serialHello...)
	gb := newTestGameBoy(t, rom)
	gb.Frame()
	gb.CPU.B = 0x77
	gb.Bus.Write(0xC123, 0x5A)
	gb.Bus.Write(0x8010, 0xA5)
	gb.Bus.Write(types.TAC, 0x05)

	var buf bytes.Buffer
	if err := gb.SaveState(&buf); err != nil {
		t.Fatal(err)
	}
	saved := buf.Bytes()

	restored := newTestGameBoy(t, rom, WithState(saved))
	if restored.CPU.B != 0x77 || restored.CPU.PC != gb.CPU.PC {
		t.Errorf("expected cpu registers to be restored")
	}
	if restored.Bus.Read(0xC123) != 0x5A {
		t.Errorf("expected wram to be restored")
	}
	if restored.Bus.Read(0x8010) != 0xA5 {
		t.Errorf("expected vram to be restored")
	}
	if restored.Bus.Read(types.TAC) != 0xFD {
		t.Errorf("expected the timer to be restored")
	}
	if restored.Bus.Read(types.DIV) != gb.Bus.Read(types.DIV) {
		t.Errorf("expected the divider to be restored")
	}

	t.Run("truncated", func(t *testing.T) {
		raw, err := readAll(saved)
		if err != nil {
			t.Fatal(err)
		}
		var short bytes.Buffer
		w := brotli.NewWriter(&short)
		w.Write(raw[:len(raw)/2])
		w.Close()
		truncated := short.Bytes()

		if err := gb.LoadState(bytes.NewReader(truncated)); !errors.Is(err, types.ErrStateTruncated) {
			t.Errorf("expected ErrStateTruncated, got %v", err)
		}
		if _, err := New(rom, WithState(truncated)); err == nil {
			t.Errorf("expected New to fail with a truncated state")
		}
	})
}

func readAll(compressed []byte) ([]byte, error) {
	var out bytes.Buffer
	_, err := out.ReadFrom(brotli.NewReader(bytes.NewReader(compressed)))
	return out.Bytes(), err
}
