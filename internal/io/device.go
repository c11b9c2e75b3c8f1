// Package io provides the address bus of the machine and the
// contract implemented by every device attached to it.
package io

// Device is an addressable peripheral. Offsets are local to the
// device, so a device attached at 0xC000 sees a read of 0xC010
// as Read(0x0010).
//
// Devices are compared by identity when re-attaching and detaching,
// so they should be pointer types. A value whose type cannot be
// compared is never matched, and so can't be detached.
type Device interface {
	Read(offset uint16) uint8
	Write(offset uint16, value uint8)
}

// BlockReader is implemented by devices that can serve a run of
// bytes in one call.
type BlockReader interface {
	ReadBlock(offset uint16, p []byte)
}

// BlockWriter is implemented by devices that can accept a run of
// bytes in one call.
type BlockWriter interface {
	WriteBlock(offset uint16, p []byte)
}

// WriteWatcher is implemented by devices that can notify a callback
// after a write lands on a specific offset.
type WriteWatcher interface {
	WatchWrite(offset uint16, fn func(offset uint16, value uint8))
}

// DeviceFunc adapts a pair of functions into a Device.
type DeviceFunc struct {
	ReadFunc  func(offset uint16) uint8
	WriteFunc func(offset uint16, value uint8)
}

// Read calls ReadFunc, or returns 0xFF when it is nil.
func (d *DeviceFunc) Read(offset uint16) uint8 {
	if d.ReadFunc == nil {
		return 0xFF
	}
	return d.ReadFunc(offset)
}

// Write calls WriteFunc when it is set.
func (d *DeviceFunc) Write(offset uint16, value uint8) {
	if d.WriteFunc != nil {
		d.WriteFunc(offset, value)
	}
}
