package web

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/thelolagemann/sm83/internal/joypad"
)

const writeWait = 5 * time.Second

// Client is a connected websocket.
type Client struct {
	hub        *hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
}

func (c *Client) readPump() {
	// deferred function to handle unregistering client
	// and closing connection
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return // connection closed
		}
		if len(message) == 0 {
			continue
		}
		if message[0] == Closing {
			return
		}
		if len(message) < 2 || message[0] > joypad.ButtonDown {
			continue
		}

		c.hub.press(joypad.Event{Button: message[0], Pressed: message[1] != 0})
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
			return
		}
	}

	// hub closed the channel
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
