package scheduler

// EventType identifies a recurring event. At most one event of
// each type is pending at a time.
type EventType uint8

const (
	// DividerTick increments DIV.
	DividerTick EventType = iota
	// TimerTick increments TIMA.
	TimerTick
	// DisplayLine advances LY to the next line.
	DisplayLine
	// SerialTransfer completes an internally clocked transfer.
	SerialTransfer

	eventTypes
)

var eventNames = [eventTypes]string{
	DividerTick:    "DividerTick",
	TimerTick:      "TimerTick",
	DisplayLine:    "DisplayLine",
	SerialTransfer: "SerialTransfer",
}

func (e EventType) String() string {
	if e < eventTypes {
		return eventNames[e]
	}
	return "Unknown"
}

// Event is a node of the pending list.
type Event struct {
	cycle     uint64
	eventType EventType
	scheduled bool
	next      *Event
}
