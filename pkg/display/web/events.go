package web

// Type is the first byte of every message sent to a client.
type Type = uint8

const (
	// Frame carries a new frame: [Frame, slot, brotli data...]. The
	// client stores the decompressed frame in cache slot and shows it.
	Frame Type = iota
	// FrameCache repeats a cached frame: [FrameCache, slot].
	FrameCache
	// FrameSync replaces the client's state entirely:
	//
	//	[FrameSync, palette (16 x RGB), current slot, count,
	//	 count x (slot, length uint32 LE, brotli data...)]
	//
	// It is sent to new clients, and to any client that missed a
	// message.
	FrameSync
	// ServerInfo reports the connected clients and frames dropped
	// for slow clients: [ServerInfo, clients, dropped uint32 LE].
	ServerInfo
)

// Closing is sent by a client that is about to disconnect. Every
// other client message is a button event, [button, state], with a
// non-zero state for a press.
const Closing = 255
