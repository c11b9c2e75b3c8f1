package boot

import (
	"errors"
	"testing"

	"github.com/thelolagemann/sm83/internal/io"
	"github.com/thelolagemann/sm83/internal/ram"
	"github.com/thelolagemann/sm83/internal/types"
)

func TestLoad(t *testing.T) {
	if _, err := Load(make([]byte, 255)); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
	if _, err := Load(make([]byte, 2304)); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("expected ErrInvalidSize for a CGB sized image, got %v", err)
	}

	b := make([]byte, 256)
	b[0] = 0x31
	r, err := Load(b)
	if err != nil {
		t.Fatal(err)
	}
	b[0] = 0x00
	if r.Read(0) != 0x31 {
		t.Errorf("expected ROM to hold a copy of the image")
	}
	if r.Model() != "unknown" {
		t.Errorf("expected unknown model, got %s", r.Model())
	}
	if len(r.Checksum()) != 32 {
		t.Errorf("expected md5 hex checksum, got %q", r.Checksum())
	}

	var none *ROM
	if none.Model() != "none" {
		t.Errorf("expected nil ROM model to be none")
	}
}

func TestLatch(t *testing.T) {
	bus := io.NewBus(nil)
	cart := ram.NewROM([]byte{0xAA, 0xBB})
	bus.Attach(0x0000, 2, cart)

	image := make([]byte, 256)
	image[0] = 0x31
	rom, err := Load(image)
	if err != nil {
		t.Fatal(err)
	}
	bus.Attach(0x0000, types.BootROMSize, rom)

	latch := NewLatch(bus, rom, nil)

	if v := bus.Read(0x0000); v != 0x31 {
		t.Fatalf("expected boot rom to be mapped, read 0x%02X", v)
	}

	bus.Write(types.BDIS, 0x00)
	if latch.Disabled() {
		t.Errorf("expected a zero write to be ignored")
	}
	if v := bus.Read(types.BDIS); v != 0xFE {
		t.Errorf("expected BDIS to read 0xFE while enabled, got 0x%02X", v)
	}

	bus.Write(types.BDIS, 0x01)
	if !latch.Disabled() {
		t.Errorf("expected latch to be disabled")
	}
	if v := bus.Read(0x0000); v != 0xAA {
		t.Errorf("expected cartridge to be revealed, read 0x%02X", v)
	}
	if v := bus.Read(types.BDIS); v != 0xFF {
		t.Errorf("expected BDIS to read 0xFF, got 0x%02X", v)
	}

	t.Run("state", func(t *testing.T) {
		s := types.NewState()
		latch.Save(s)

		other := io.NewBus(nil)
		other.Attach(0x0000, 2, cart)
		other.Attach(0x0000, types.BootROMSize, rom)
		restored := NewLatch(other, rom, nil)
		restored.Load(types.StateFromBytes(s.Bytes()))
		if !restored.Disabled() || other.Read(0x0000) != 0xAA {
			t.Errorf("expected restored latch to unmap the boot rom")
		}
	})
	t.Run("state enabled", func(t *testing.T) {
		s := types.NewState()
		NewLatch(io.NewBus(nil), rom, nil).Save(s)

		// latch was disabled above, restoring an enabled one maps
		// the boot rom back in
		latch.Load(types.StateFromBytes(s.Bytes()))
		if latch.Disabled() {
			t.Errorf("expected latch to be enabled")
		}
		if v := bus.Read(0x0000); v != 0x31 {
			t.Errorf("expected boot rom to be mapped again, read 0x%02X", v)
		}
		if v := bus.Read(types.BDIS); v != 0xFE {
			t.Errorf("expected BDIS to read 0xFE, got 0x%02X", v)
		}
		bus.Write(types.BDIS, 0x11)
		if !latch.Disabled() || bus.Read(0x0000) != 0xAA {
			t.Errorf("expected the latch to work after restoring")
		}
	})
}
