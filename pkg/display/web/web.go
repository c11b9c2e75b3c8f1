// Package web serves frames to browsers over a websocket. Frames
// are sent as brotli compressed palette indices, and repeated
// frames as a reference into a cache the clients keep in step.
package web

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/andybalholm/brotli"
	"github.com/cespare/xxhash"
	"github.com/gorilla/websocket"

	"github.com/thelolagemann/sm83/internal/joypad"
	"github.com/thelolagemann/sm83/internal/ppu"
	"github.com/thelolagemann/sm83/pkg/display"
	"github.com/thelolagemann/sm83/pkg/log"
)

// CacheSize is the number of frames clients are expected to keep.
const CacheSize = 16

// Web is a display.Driver serving a websocket endpoint.
type Web struct {
	Addr             string
	CompressionLevel int

	palette []byte
	cache   *cache
	hub     *hub
	srv     *http.Server
	pixels  []byte
	log     log.Logger
	stop    sync.Once
}

// New returns a Web driver listening on addr once started.
func New(addr string) *Web {
	return &Web{Addr: addr, CompressionLevel: brotli.DefaultCompression}
}

// SetLogger sets the logger client connections are reported to.
func (w *Web) SetLogger(l log.Logger) {
	w.log = l
}

// SetPalette implements ppu.Output.
func (w *Web) SetPalette(p ppu.Palette) {
	palette := make([]byte, 0, 48)
	for i := range p {
		r, g, b := p.RGB(uint8(i))
		palette = append(palette, r, g, b)
	}
	w.palette = palette
	if w.hub != nil {
		select {
		case w.hub.setPalette <- palette:
		case <-w.hub.done:
		}
	}
}

// WriteImage implements ppu.Output.
func (w *Web) WriteImage(img *ppu.Image) {
	if w.hub == nil {
		return
	}

	// row major, the order clients draw in
	if w.pixels == nil {
		w.pixels = make([]byte, ppu.ScreenWidth*ppu.ScreenHeight)
	}
	for y := 0; y < ppu.ScreenHeight; y++ {
		for x := 0; x < ppu.ScreenWidth; x++ {
			w.pixels[y*ppu.ScreenWidth+x] = img[x][y]
		}
	}

	hash := xxhash.Sum64(w.pixels)
	if slot := w.cache.index(hash); slot >= 0 {
		w.hub.send(message{data: []byte{FrameCache, uint8(slot)}, frame: true})
		return
	}

	data, err := w.compress(w.pixels)
	if err != nil {
		w.log.Errorf("web: compressing frame: %v", err)
		return
	}
	slot := w.cache.add(hash, data)
	w.hub.send(message{data: append([]byte{Frame, uint8(slot)}, data...), frame: true})
}

func (w *Web) compress(p []byte) ([]byte, error) {
	var buf bytes.Buffer
	bw := brotli.NewWriterLevel(&buf, w.CompressionLevel)
	if _, err := bw.Write(p); err != nil {
		return nil, err
	}
	if err := bw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024 * 16,
	WriteBufferSize: 1024 * 16,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handler upgrades every request to a websocket client.
func (w *Web) handler() http.Handler {
	return http.HandlerFunc(func(wr http.ResponseWriter, r *http.Request) {
		wr.Header().Set("Access-Control-Allow-Origin", "*")

		// upgrade the connection to a websocket connection
		conn, err := upgrader.Upgrade(wr, r, nil)
		if err != nil {
			w.log.Debugf("web: upgrade from %s: %v", r.RemoteAddr, err)
			return
		}

		c := &Client{
			hub:        w.hub,
			conn:       conn,
			send:       make(chan []byte, 16),
			remoteAddr: r.RemoteAddr,
		}
		select {
		case w.hub.register <- c:
		case <-w.hub.done:
			conn.Close()
			return
		}

		// spawn read/write pumps
		go c.readPump()
		go c.writePump()
	})
}

// start creates the hub and returns the handler serving clients.
func (w *Web) start(input chan<- joypad.Event) http.Handler {
	if w.log == nil {
		w.log = log.NewNullLogger()
	}
	if w.palette == nil {
		w.SetPalette(ppu.DefaultPalette)
	}
	w.cache = newCache(CacheSize)
	w.hub = newHub(w.cache, w.palette, input, w.log)
	go w.hub.run()
	return w.handler()
}

// Start implements display.Driver. It returns once the listener
// is open.
func (w *Web) Start(input chan<- joypad.Event) error {
	ln, err := net.Listen("tcp", w.Addr)
	if err != nil {
		return fmt.Errorf("web: %w", err)
	}
	w.srv = &http.Server{Handler: w.start(input)}
	w.log.Infof("web: serving on ws://%s/", ln.Addr())

	go func() {
		if err := w.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.log.Errorf("web: %v", err)
		}
	}()
	return nil
}

// Stop implements display.Driver.
func (w *Web) Stop() error {
	if w.hub != nil {
		w.stop.Do(func() { close(w.hub.done) })
	}
	if w.srv != nil {
		return w.srv.Close()
	}
	return nil
}

// Clients returns the number of connected clients.
func (w *Web) Clients() int {
	if w.hub == nil {
		return 0
	}
	return int(w.hub.connected.Load())
}

var driver = New(":8090")

func init() {
	display.Install("web", driver, []display.DriverOption{
		{
			Name:        "addr",
			Default:     ":8090",
			Value:       &driver.Addr,
			Description: "address the websocket server listens on",
			Type:        "string",
		},
		{
			Name:        "compression",
			Default:     brotli.DefaultCompression,
			Value:       &driver.CompressionLevel,
			Description: "brotli compression level of frames (0-11)",
			Type:        "int",
		},
	})
}
