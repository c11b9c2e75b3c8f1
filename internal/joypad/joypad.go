// Package joypad provides an implementation of the Game Boy
// joypad. The joypad is used to read the state of the buttons
// and the direction keys.
package joypad

import (
	"github.com/thelolagemann/sm83/internal/interrupts"
	"github.com/thelolagemann/sm83/internal/types"
)

// Button represents a physical button on the Game Boy.
type Button = uint8

const (
	// ButtonA is the A button.
	ButtonA Button = iota
	// ButtonB is the B button.
	ButtonB
	// ButtonSelect is the Select button.
	ButtonSelect
	// ButtonStart is the Start button.
	ButtonStart
	// ButtonRight is the Right button.
	ButtonRight
	// ButtonLeft is the Left button.
	ButtonLeft
	// ButtonUp is the Up button.
	ButtonUp
	// ButtonDown is the Down button.
	ButtonDown
)

// State is the P1 register. Select either action or direction
// buttons by writing to the register, and then read out bits 0-3
// to get the state of the buttons.
//
//	Bit 5 - P15 Select Button Keys      (0=Select)
//	Bit 4 - P14 Select Direction Keys   (0=Select)
//	Bit 3 - P13 Input Down  or Start    (0=Pressed) (Read Only)
//	Bit 2 - P12 Input Up    or Select   (0=Pressed) (Read Only)
//	Bit 1 - P11 Input Left  or Button B (0=Pressed) (Read Only)
//	Bit 0 - P10 Input Right or Button A (0=Pressed) (Read Only)
//
// State is not safe for concurrent use; input from other
// goroutines should be delivered as Events.
type State struct {
	pressed  uint8 // bit n set while Button n is held
	selected uint8 // bits 4-5 as last written

	irq *interrupts.Service
}

// New returns a joypad with no buttons held and neither row
// selected.
func New(irq *interrupts.Service) *State {
	return &State{irq: irq, selected: 0x30}
}

// Read implements io.Device.
func (s *State) Read(uint16) uint8 {
	v := uint8(0)
	if s.selected&types.Bit4 == 0 {
		v |= s.pressed >> 4 & 0xF
	}
	if s.selected&types.Bit5 == 0 {
		v |= s.pressed & 0xF
	}
	return 0xC0 | s.selected | (^v & 0xF)
}

// Write implements io.Device. Only the select bits are writable.
func (s *State) Write(_ uint16, value uint8) {
	s.selected = value & 0x30
}

// Event is a button transition.
type Event struct {
	Button  Button
	Pressed bool
}

// Handle applies an Event.
func (s *State) Handle(e Event) {
	if e.Pressed {
		s.Press(e.Button)
	} else {
		s.Release(e.Button)
	}
}

// Press presses a button and requests a Joypad interrupt.
func (s *State) Press(button Button) {
	s.pressed |= 1 << button
	s.irq.Request(interrupts.JoypadFlag)
}

// Release releases a button.
func (s *State) Release(button Button) {
	s.pressed &^= 1 << button
}

var _ types.Stater = (*State)(nil)

// Load implements types.Stater.
func (s *State) Load(st *types.State) {
	s.pressed = st.Read8()
	s.selected = st.Read8() & 0x30
}

// Save implements types.Stater.
func (s *State) Save(st *types.State) {
	st.Write8(s.pressed)
	st.Write8(s.selected)
}
