package web

import (
	"encoding/binary"
	"sync/atomic"
	"time"

	"github.com/thelolagemann/sm83/internal/joypad"
	"github.com/thelolagemann/sm83/pkg/log"
)

// message is a broadcast. Frames are replaced by a FrameSync for
// clients that are out of step with the cache.
type message struct {
	data  []byte
	frame bool
}

type hub struct {
	clients map[*Client]bool
	cache   *cache
	palette []byte
	input   chan<- joypad.Event

	broadcast            chan message
	register, unregister chan *Client
	setPalette           chan []byte
	done                 chan struct{}

	connected atomic.Int32
	dropped   atomic.Uint32

	log log.Logger
}

func newHub(c *cache, palette []byte, input chan<- joypad.Event, l log.Logger) *hub {
	return &hub{
		clients:    make(map[*Client]bool),
		cache:      c,
		palette:    palette,
		input:      input,
		broadcast:  make(chan message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		setPalette: make(chan []byte),
		done:       make(chan struct{}),
		log:        l,
	}
}

func (h *hub) run() {
	t := time.NewTicker(time.Second)
	defer t.Stop()

	for {
		select {
		case c := <-h.register:
			h.clients[c] = false // not yet in sync
			h.connected.Store(int32(len(h.clients)))
			h.log.Debugf("web: %s connected", c.remoteAddr)
		case c := <-h.unregister:
			// is this client still registered
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.connected.Store(int32(len(h.clients)))
				h.log.Debugf("web: %s disconnected", c.remoteAddr)
			}
		case p := <-h.setPalette:
			h.palette = p
			for c := range h.clients {
				h.clients[c] = false
			}
		case msg := <-h.broadcast:
			var resync []byte
			for c, synced := range h.clients {
				data := msg.data
				if msg.frame && !synced {
					if resync == nil {
						resync = h.sync(msg.data[1])
					}
					data = resync
				}
				select {
				case c.send <- data:
					if msg.frame {
						h.clients[c] = true
					}
				default:
					// slow client, drop the message and resync later
					h.clients[c] = false
					h.dropped.Add(1)
				}
			}
		case <-t.C:
			info := []byte{ServerInfo, uint8(len(h.clients))}
			info = binary.LittleEndian.AppendUint32(info, h.dropped.Load())
			for c := range h.clients {
				select {
				case c.send <- info:
				default:
				}
			}
		case <-h.done:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.connected.Store(0)
			return
		}
	}
}

// sync builds a FrameSync message showing slot.
func (h *hub) sync(slot uint8) []byte {
	msg := append([]byte{FrameSync}, h.palette...)
	msg = append(msg, slot)
	return h.cache.appendEntries(msg)
}

// send delivers msg to the hub unless it has stopped.
func (h *hub) send(msg message) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// press forwards a button event without blocking the client.
func (h *hub) press(e joypad.Event) {
	select {
	case h.input <- e:
	default:
	}
}
