package cpu

import (
	"fmt"
	"testing"

	"github.com/thelolagemann/sm83/internal/interrupts"
	"github.com/thelolagemann/sm83/internal/types"
)

// testBus is a flat 64K memory.
type testBus struct {
	mem [0x10000]uint8
}

func (b *testBus) Read(address uint16) uint8 { return b.mem[address] }

func (b *testBus) Write(address uint16, value uint8) { b.mem[address] = value }

// load copies program into memory starting at address.
func (b *testBus) load(address uint16, program ...uint8) {
	for i, v := range program {
		b.mem[address+uint16(i)] = v
	}
}

func newTestCPU() (*CPU, *testBus) {
	b := &testBus{}
	return NewCPU(b, interrupts.NewService(), nil), b
}

// testInstruction runs fn against a fresh CPU with the opcode placed
// at PC (0x0100). fn is responsible for calling Step.
func testInstruction(t *testing.T, name string, opcode uint8, fn func(t *testing.T, c *CPU, b *testBus)) {
	t.Helper()
	t.Run(fmt.Sprintf("0x%02X %s", opcode, name), func(t *testing.T) {
		if got := InstructionSet[opcode].Name(); got != name {
			t.Errorf("expected opcode 0x%02X to be %s, got %s", opcode, name, got)
		}
		c, b := newTestCPU()
		b.load(0x100, opcode)
		fn(t, c, b)
	})
}

// testInstructionCB is testInstruction for the CB prefixed set.
func testInstructionCB(t *testing.T, name string, opcode uint8, fn func(t *testing.T, c *CPU, b *testBus)) {
	t.Helper()
	t.Run(fmt.Sprintf("0xCB%02X %s", opcode, name), func(t *testing.T) {
		if got := InstructionSetCB[opcode].Name(); got != name {
			t.Errorf("expected opcode 0xCB%02X to be %s, got %s", opcode, name, got)
		}
		c, b := newTestCPU()
		b.load(0x100, 0xCB, opcode)
		fn(t, c, b)
	})
}

func TestNewCPU(t *testing.T) {
	c, _ := newTestCPU()
	if c.PC != 0x0100 {
		t.Errorf("expected PC to be 0x0100, got 0x%04X", c.PC)
	}
	if c.SP != 0xFFFE {
		t.Errorf("expected SP to be 0xFFFE, got 0x%04X", c.SP)
	}

	c.Reset(true)
	if c.PC != 0x0000 {
		t.Errorf("expected PC to be 0x0000 with a boot ROM, got 0x%04X", c.PC)
	}

	c.SkipBoot()
	if c.AF.Uint16() != 0x01B0 || c.HL.Uint16() != 0x014D {
		t.Errorf("unexpected post boot registers AF=%04X HL=%04X", c.AF.Uint16(), c.HL.Uint16())
	}
}

func TestRegisters(t *testing.T) {
	c, _ := newTestCPU()

	c.WriteRegister(RegF, 0xFF)
	if c.F != 0xF0 {
		t.Errorf("expected F low nibble to be masked, got 0x%02X", c.F)
	}
	c.WriteRegister16(RegAF, 0x12FF)
	if c.A != 0x12 || c.F != 0xF0 {
		t.Errorf("expected AF to be 0x12F0, got 0x%04X", c.AF.Uint16())
	}
	c.WriteRegister16(RegBC, 0xBEEF)
	if c.ReadRegister(RegB) != 0xBE || c.ReadRegister(RegC) != 0xEF {
		t.Errorf("expected B=BE C=EF, got B=%02X C=%02X", c.B, c.C)
	}
	c.WriteRegister(RegL, 0x34)
	c.WriteRegister(RegH, 0x12)
	if v := c.ReadRegister16(RegHL); v != 0x1234 {
		t.Errorf("expected HL to be 0x1234, got 0x%04X", v)
	}
	for r := RegAF; r <= RegPC; r++ {
		c.WriteRegister16(r, 0x4560)
		if v := c.ReadRegister16(r); v != 0x4560 {
			t.Errorf("%s: expected 0x4560, got 0x%04X", r, v)
		}
	}

	defer func() {
		if recover() == nil {
			t.Errorf("expected invalid register to panic")
		}
	}()
	c.ReadRegister(Register8(42))
}

func TestCPU_Interrupt(t *testing.T) {
	t.Run("vblank", func(t *testing.T) {
		c, b := newTestCPU()
		c.irq.Enable = 0xFF
		c.irq.Flag = interrupts.VBlankFlag
		c.ime = true
		c.PC = 0x1234

		cycles := c.Interrupt(interrupts.VBlankFlag)
		if cycles != 20 {
			t.Errorf("expected 20 cycles, got %d", cycles)
		}
		if c.PC != 0x0040 {
			t.Errorf("expected PC to be 0x0040, got 0x%04X", c.PC)
		}
		if c.SP != 0xFFFC || b.mem[0xFFFD] != 0x12 || b.mem[0xFFFC] != 0x34 {
			t.Errorf("expected 0x1234 pushed, got SP=%04X [%02X %02X]", c.SP, b.mem[0xFFFD], b.mem[0xFFFC])
		}
		if c.irq.Flag&interrupts.VBlankFlag != 0 {
			t.Errorf("expected VBlank request to be cleared")
		}
		if c.IME() {
			t.Errorf("expected IME to be cleared")
		}
	})
	t.Run("ignored when disabled", func(t *testing.T) {
		c, _ := newTestCPU()
		c.irq.Enable = 0xFF
		if cycles := c.Interrupt(interrupts.TimerFlag); cycles != 0 {
			t.Errorf("expected no dispatch, got %d cycles", cycles)
		}
		if c.PC != 0x0100 {
			t.Errorf("expected PC to be unchanged, got 0x%04X", c.PC)
		}
	})
	t.Run("priority", func(t *testing.T) {
		c, _ := newTestCPU()
		c.irq.Enable = 0xFF
		c.irq.Flag = interrupts.VBlankFlag | interrupts.SerialFlag
		c.ime = true
		c.Interrupt(interrupts.TimerFlag)
		if c.PC != 0x0058 {
			t.Errorf("expected serial vector 0x0058, got 0x%04X", c.PC)
		}
		if c.irq.Flag != interrupts.VBlankFlag|interrupts.TimerFlag {
			t.Errorf("expected VBlank and Timer to stay pending, got 0x%02X", c.irq.Flag)
		}
	})
	t.Run("serviced after step", func(t *testing.T) {
		c, b := newTestCPU()
		b.load(0x100, 0x00)
		c.irq.Enable = interrupts.TimerFlag
		c.irq.Request(interrupts.TimerFlag)
		c.ime = true
		if cycles := c.Step(); cycles != 24 {
			t.Errorf("expected NOP plus dispatch to take 24 cycles, got %d", cycles)
		}
		if c.PC != 0x0050 {
			t.Errorf("expected PC to be 0x0050, got 0x%04X", c.PC)
		}
		// the return address is the instruction after the NOP
		if b.mem[0xFFFC] != 0x01 || b.mem[0xFFFD] != 0x01 {
			t.Errorf("expected 0x0101 pushed, got %02X%02X", b.mem[0xFFFD], b.mem[0xFFFC])
		}
	})
}

func TestCPU_DeferredIME(t *testing.T) {
	t.Run("EI", func(t *testing.T) {
		c, b := newTestCPU()
		b.load(0x100, 0xFB, 0x00, 0x00) // EI, NOP, NOP
		c.irq.Enable = interrupts.VBlankFlag
		c.irq.Request(interrupts.VBlankFlag)

		c.Step()
		if c.IME() || c.PC != 0x101 {
			t.Fatalf("expected IME to stay clear after EI, PC=%04X", c.PC)
		}
		c.Step()
		if c.PC != 0x0040 {
			t.Errorf("expected PC to be 0x0040, got 0x%04X", c.PC)
		}
	})
	t.Run("DI", func(t *testing.T) {
		c, b := newTestCPU()
		b.load(0x100, 0xF3, 0x00) // DI, NOP
		c.ime = true

		c.Step()
		if !c.IME() {
			t.Errorf("expected IME to stay set after DI")
		}
		c.Step()
		if c.IME() {
			t.Errorf("expected IME to be cleared after the instruction following DI")
		}
	})
	t.Run("EI then DI", func(t *testing.T) {
		c, b := newTestCPU()
		b.load(0x100, 0xFB, 0xF3, 0x00) // EI, DI, NOP
		c.irq.Enable = interrupts.VBlankFlag
		c.irq.Request(interrupts.VBlankFlag)

		// the EI lands after DI runs, before DI's own change does
		c.Step()
		c.Step()
		if c.PC != 0x0040 {
			t.Errorf("expected dispatch to 0x0040 after DI, got 0x%04X", c.PC)
		}
		if b.mem[0xFFFC] != 0x02 || b.mem[0xFFFD] != 0x01 {
			t.Errorf("expected 0x0102 pushed, got %02X%02X", b.mem[0xFFFD], b.mem[0xFFFC])
		}
		if c.IME() {
			t.Errorf("expected IME to be clear inside the handler")
		}
	})
	t.Run("RETI", func(t *testing.T) {
		c, b := newTestCPU()
		b.load(0x100, 0xD9)
		b.load(0xFFFC, 0x00, 0x02)
		c.SP = 0xFFFC

		c.Step()
		if !c.IME() {
			t.Errorf("expected RETI to set IME immediately")
		}
		if c.PC != 0x0200 {
			t.Errorf("expected PC to be 0x0200, got 0x%04X", c.PC)
		}
	})
}

func TestCPU_Halt(t *testing.T) {
	t.Run("wake", func(t *testing.T) {
		c, b := newTestCPU()
		b.load(0x100, 0x76, 0x3C) // HALT, INC A
		c.irq.Enable = interrupts.TimerFlag

		c.Step()
		if !c.Halted() {
			t.Fatalf("expected CPU to be halted")
		}
		for i := 0; i < 10; i++ {
			if cycles := c.Step(); cycles != 4 {
				t.Errorf("expected halted step to take 4 cycles, got %d", cycles)
			}
		}
		if c.PC != 0x0101 {
			t.Errorf("expected PC to stay at 0x0101, got 0x%04X", c.PC)
		}

		c.irq.Request(interrupts.TimerFlag)
		c.Step()
		if c.Halted() {
			t.Errorf("expected pending interrupt to wake the CPU")
		}
		c.Step()
		if c.A != 1 {
			t.Errorf("expected INC A to run after waking, A=%d", c.A)
		}
	})
	t.Run("halt bug", func(t *testing.T) {
		c, b := newTestCPU()
		b.load(0x100, 0x76, 0x3C, 0x00) // HALT, INC A, NOP
		c.irq.Enable = interrupts.TimerFlag
		c.irq.Request(interrupts.TimerFlag)

		c.Step() // HALT
		c.Step() // INC A, PC stays put
		c.Step() // INC A
		if c.A != 2 {
			t.Errorf("expected INC A to execute twice, A=%d", c.A)
		}
		if c.PC != 0x0102 {
			t.Errorf("expected PC to be 0x0102, got 0x%04X", c.PC)
		}
	})
	t.Run("ei halt", func(t *testing.T) {
		c, b := newTestCPU()
		b.load(0x100, 0xFB, 0x76, 0x00) // EI, HALT, NOP
		b.load(0x40, 0xC5, 0xC1, 0xD9)  // PUSH BC, POP BC, RETI
		c.irq.Enable = interrupts.VBlankFlag
		c.irq.Request(interrupts.VBlankFlag)

		c.Step() // EI
		c.Step() // HALT, then dispatch
		if c.PC != 0x0040 || c.Halted() {
			t.Fatalf("expected dispatch to 0x0040, PC=0x%04X halted=%v", c.PC, c.Halted())
		}
		c.Step() // PUSH BC
		if c.PC != 0x0041 || c.SP != 0xFFFA {
			t.Errorf("expected PUSH BC to run once, PC=0x%04X SP=0x%04X", c.PC, c.SP)
		}
		c.Step() // POP BC
		c.Step() // RETI
		if c.PC != 0x0102 || !c.IME() {
			t.Errorf("expected RETI to return past HALT with IME set, PC=0x%04X", c.PC)
		}
	})
	t.Run("stop", func(t *testing.T) {
		c, b := newTestCPU()
		b.load(0x100, 0x10, 0x00)
		c.Step()
		if !c.Halted() || c.PC != 0x0102 {
			t.Errorf("expected STOP to consume its padding byte and stop, PC=%04X", c.PC)
		}
	})
}

func TestCPU_Illegal(t *testing.T) {
	for _, opcode := range illegalOpcodes {
		c, b := newTestCPU()
		b.load(0x100, opcode)
		before := c.Registers
		if cycles := c.Step(); cycles != 4 {
			t.Errorf("0x%02X: expected 4 cycles, got %d", opcode, cycles)
		}
		if c.PC != 0x0101 {
			t.Errorf("0x%02X: expected PC to be 0x0101, got 0x%04X", opcode, c.PC)
		}
		if c.Registers.A != before.A || c.Registers.F != before.F {
			t.Errorf("0x%02X: expected registers to be unchanged", opcode)
		}
	}
}

type recordingTracer struct {
	pcs     []uint16
	opcodes []uint16
	names   []string
}

func (r *recordingTracer) Trace(pc uint16, opcode uint16, name string) {
	r.pcs = append(r.pcs, pc)
	r.opcodes = append(r.opcodes, opcode)
	r.names = append(r.names, name)
}

func TestCPU_Tracer(t *testing.T) {
	c, b := newTestCPU()
	b.load(0x100, 0x00, 0xCB, 0x37)
	tr := &recordingTracer{}
	c.AttachTracer(tr)
	c.Step()
	c.Step()

	if len(tr.names) != 2 {
		t.Fatalf("expected 2 traced instructions, got %d", len(tr.names))
	}
	if tr.names[0] != "NOP" || tr.pcs[0] != 0x100 {
		t.Errorf("unexpected first trace %s at %04X", tr.names[0], tr.pcs[0])
	}
	if tr.opcodes[1] != 0xCB37 || tr.names[1] != "SWAP A" || tr.pcs[1] != 0x101 {
		t.Errorf("unexpected CB trace %04X %s at %04X", tr.opcodes[1], tr.names[1], tr.pcs[1])
	}
}

func TestCPU_State(t *testing.T) {
	c, _ := newTestCPU()
	c.AF.SetUint16(0x12F0)
	c.BC.SetUint16(0x3456)
	c.DE.SetUint16(0x789A)
	c.HL.SetUint16(0xBCDE)
	c.SP = 0xC000
	c.PC = 0x4000
	c.ime = true
	c.irq.Enable = 0x05

	s := types.NewState()
	c.Save(s)

	other, _ := newTestCPU()
	other.Load(types.StateFromBytes(s.Bytes()))
	if other.AF.Uint16() != 0x12F0 || other.BC.Uint16() != 0x3456 || other.DE.Uint16() != 0x789A || other.HL.Uint16() != 0xBCDE {
		t.Errorf("registers were not restored")
	}
	if other.SP != 0xC000 || other.PC != 0x4000 || !other.IME() || other.irq.Enable != 0x05 {
		t.Errorf("expected SP/PC/IME/IE to be restored")
	}
}
