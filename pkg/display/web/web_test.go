package web

import (
	"bytes"
	"encoding/binary"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gorilla/websocket"

	"github.com/thelolagemann/sm83/internal/joypad"
	"github.com/thelolagemann/sm83/internal/ppu"
)

func newTestServer(t *testing.T) (*Web, *websocket.Conn, chan joypad.Event) {
	t.Helper()
	input := make(chan joypad.Event, 4)
	w := New("")
	w.SetPalette(ppu.DefaultPalette)
	srv := httptest.NewServer(w.start(input))
	t.Cleanup(func() {
		w.Stop()
		srv.Close()
	})

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })

	deadline := time.Now().Add(time.Second)
	for w.Clients() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client was never registered")
		}
		time.Sleep(time.Millisecond)
	}
	return w, conn, input
}

// readFrame skips ServerInfo messages.
func readFrame(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatal(err)
		}
		if msg[0] != ServerInfo {
			return msg
		}
	}
}

func decompress(t *testing.T, data []byte) []byte {
	t.Helper()
	out, err := io.ReadAll(brotli.NewReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestWeb_Frames(t *testing.T) {
	w, conn, _ := newTestServer(t)

	img := &ppu.Image{}
	img[3][1] = 2
	w.WriteImage(img)

	// a new client is sent everything it needs first
	msg := readFrame(t, conn)
	if msg[0] != FrameSync {
		t.Fatalf("expected a FrameSync, got type %d", msg[0])
	}
	if !bytes.Equal(msg[1:4], []byte{0x0F, 0xBC, 0x9B}) {
		t.Errorf("expected the palette to lead the sync, got % X", msg[1:4])
	}
	slot, count := msg[49], msg[50]
	if count != 1 || msg[51] != slot {
		t.Fatalf("expected a single cached frame in slot %d, got count %d", slot, count)
	}
	length := binary.LittleEndian.Uint32(msg[52:])
	pixels := decompress(t, msg[56:56+length])
	if len(pixels) != ppu.ScreenWidth*ppu.ScreenHeight || pixels[1*ppu.ScreenWidth+3] != 2 {
		t.Errorf("expected row major palette indices")
	}

	// a repeated frame is a cache reference
	w.WriteImage(img)
	if msg := readFrame(t, conn); !bytes.Equal(msg, []byte{FrameCache, slot}) {
		t.Errorf("expected a cache reference to slot %d, got % X", slot, msg)
	}

	img[0][0] = 1
	w.WriteImage(img)
	msg = readFrame(t, conn)
	if msg[0] != Frame || msg[1] == slot {
		t.Fatalf("expected a new frame in a new slot, got % X", msg[:2])
	}
	if pixels := decompress(t, msg[2:]); pixels[0] != 1 {
		t.Errorf("expected the new frame to be sent")
	}
}

func TestWeb_Input(t *testing.T) {
	_, conn, input := newTestServer(t)

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{joypad.ButtonStart, 1}); err != nil {
		t.Fatal(err)
	}
	conn.WriteMessage(websocket.BinaryMessage, []byte{42, 1}) // not a button
	conn.WriteMessage(websocket.BinaryMessage, []byte{joypad.ButtonStart, 0})

	for _, want := range []joypad.Event{
		{Button: joypad.ButtonStart, Pressed: true},
		{Button: joypad.ButtonStart},
	} {
		select {
		case got := <-input:
			if got != want {
				t.Errorf("expected %+v, got %+v", want, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("expected %+v", want)
		}
	}
}

func TestWeb_Closing(t *testing.T) {
	w, conn, _ := newTestServer(t)
	conn.WriteMessage(websocket.BinaryMessage, []byte{Closing})

	deadline := time.Now().Add(2 * time.Second)
	for w.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected the client to be unregistered")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestCache(t *testing.T) {
	c := newCache(2)
	if c.index(1) != -1 {
		t.Errorf("expected an empty cache to miss")
	}
	a := c.add(1, []byte{1})
	b := c.add(2, []byte{2})
	if c.index(1) != a || c.index(2) != b {
		t.Errorf("expected both frames to be cached")
	}
	c.add(3, []byte{3})
	if c.index(1) != -1 {
		t.Errorf("expected the oldest frame to be evicted")
	}
	if msg := c.appendEntries(nil); msg[0] != 2 {
		t.Errorf("expected two entries, got %d", msg[0])
	}
}
