package types

// HardwareAddress represents the address of a hardware
// register of the Game Boy. The hardware IO are mapped
// to memory addresses 0xFF00 - 0xFF7F & 0xFFFF.
type HardwareAddress = uint16

const (
	// P1 is the address of the P1 hardware register. The P1
	// hardware register is used to select the input keys to
	// be read by the CPU, and to read the state of the joypad.
	P1 HardwareAddress = 0xFF00
	// SB is the address of the SB hardware register. The SB
	// hardware register is used to transfer data between the
	// CPU and the serial port.
	SB HardwareAddress = 0xFF01
	// SC is the address of the SC hardware register. The SC
	// hardware register is used to control the serial port.
	SC HardwareAddress = 0xFF02
	// DIV is the address of the DIV hardware register. The DIV
	// hardware register is incremented at a rate of 16384Hz, and
	// is reset to 0 by any write.
	DIV HardwareAddress = 0xFF04
	// TIMA is the address of the TIMA hardware register. The TIMA
	// hardware register is incremented at a rate specified by the TAC
	// hardware register. When TIMA overflows, it is reset to the value
	// specified by the TMA hardware register, and a timer interrupt is
	// requested.
	TIMA HardwareAddress = 0xFF05
	// TMA is the address of the TMA hardware register. The TMA
	// hardware register is loaded into TIMA when it overflows.
	TMA HardwareAddress = 0xFF06
	// TAC is the address of the TAC hardware register. The TAC
	// hardware register is used to control the timer.
	//
	//  Bit 2  : Timer Enable
	//  Bit 1-0: Input Clock Select
	//     00: 4096 Hz, 01: 262144 Hz, 10: 65536 Hz, 11: 16384 Hz
	TAC HardwareAddress = 0xFF07
	// IF is the address of the IF hardware register. The IF
	// hardware register is used to request interrupts. Writing a 1
	// to a bit in IF requests an interrupt, and writing a 0 clears
	// the request.
	//
	//  Bit 0: V-Blank Interrupt Request (INT 40h)  (1=Request)
	//  Bit 1: LCD STAT Interrupt Request (INT 48h) (1=Request)
	//  Bit 2: Timer Interrupt Request (INT 50h)    (1=Request)
	//  Bit 3: Serial Interrupt Request (INT 58h)   (1=Request)
	//  Bit 4: Joypad Interrupt Request (INT 60h)   (1=Request)
	IF HardwareAddress = 0xFF0F
	// LCDC is the address of the LCD control register, the first
	// of the twelve LCD registers ending at WX.
	LCDC HardwareAddress = 0xFF40
	// STAT is the address of the LCD status register.
	STAT HardwareAddress = 0xFF41
	// SCY is the background scroll Y position.
	SCY HardwareAddress = 0xFF42
	// SCX is the background scroll X position.
	SCX HardwareAddress = 0xFF43
	// LY is the current scanline, 0-153. It is read only.
	LY HardwareAddress = 0xFF44
	// LYC is compared with LY, setting STAT bit 2 on a match.
	LYC HardwareAddress = 0xFF45
	// DMA starts an OAM DMA transfer. Not emulated.
	DMA HardwareAddress = 0xFF46
	// BGP is the background palette data.
	BGP HardwareAddress = 0xFF47
	// OBP0 is object palette 0.
	OBP0 HardwareAddress = 0xFF48
	// OBP1 is object palette 1.
	OBP1 HardwareAddress = 0xFF49
	// WY is the window Y position.
	WY HardwareAddress = 0xFF4A
	// WX is the window X position plus 7.
	WX HardwareAddress = 0xFF4B
	// BDIS is the address of the boot ROM disable register.
	// Writing a non-zero value unmaps the boot ROM, revealing the
	// cartridge underneath. The write cannot be undone.
	BDIS HardwareAddress = 0xFF50
	// IE is the address of the IE hardware register. The IE
	// hardware register is used to enable interrupts. Its layout
	// matches IF.
	IE HardwareAddress = 0xFFFF
)

// Memory map regions. Sizes are untyped so they can be used as
// both lengths and array sizes.
const (
	BootROMStart uint16 = 0x0000
	ROMStart     uint16 = 0x0000
	VRAMStart    uint16 = 0x8000
	ExtRAMStart  uint16 = 0xA000
	WRAMStart    uint16 = 0xC000
	EchoStart    uint16 = 0xE000
	HRAMStart    uint16 = 0xFF80

	BootROMSize = 0x0100
	ROMSize     = 0x8000
	VRAMSize    = 0x2000
	ExtRAMSize  = 0x2000
	WRAMSize    = 0x2000
	EchoSize    = 0x1E00
	HRAMSize    = 0x007F

	LCDRegisters  = 12
	TimerRegister = 3
)
