package serial

import "io"

// Device is the peer on the other end of the link cable. Transfer
// is called with the byte shifted out of SB once all 8 bits have
// been clocked, and returns the byte shifted in.
type Device interface {
	Transfer(out uint8) (in uint8)
}

// nullDevice is an unplugged cable: every bit reads as 1.
type nullDevice struct{}

func (nullDevice) Transfer(uint8) uint8 { return 0xFF }

// writerDevice copies every byte sent to an io.Writer, and
// otherwise behaves as an unplugged cable. Test ROMs report
// their results this way.
type writerDevice struct {
	w io.Writer
}

// NewWriterDevice returns a Device that writes transferred bytes
// to w.
func NewWriterDevice(w io.Writer) Device {
	return writerDevice{w: w}
}

func (d writerDevice) Transfer(out uint8) uint8 {
	_, _ = d.w.Write([]byte{out})
	return 0xFF
}
