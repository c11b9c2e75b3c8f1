// Package profile provides CPU tracers: an instruction counter
// that can chart the hottest instructions, and a logging tracer.
package profile

import (
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/thelolagemann/sm83/internal/cpu"
	"github.com/thelolagemann/sm83/pkg/log"
)

// Entry is the execution count of one instruction.
type Entry struct {
	Opcode uint16
	Name   string
	Count  uint64
}

// Counter counts executions per instruction. It is not safe for
// concurrent use; read it once the CPU has stopped.
type Counter struct {
	counts [512]uint64 // base opcodes, then 0xCB prefixed
	names  [512]string
	total  uint64
}

var _ cpu.Tracer = (*Counter)(nil)

// Trace implements cpu.Tracer.
func (c *Counter) Trace(_ uint16, opcode uint16, name string) {
	i := opcode & 0xFF
	if opcode>>8 == 0xCB {
		i += 256
	}
	c.counts[i]++
	c.names[i] = name
	c.total++
}

// Total returns the number of instructions traced.
func (c *Counter) Total() uint64 {
	return c.total
}

// Top returns the n most executed instructions, most executed
// first. Ties are ordered by opcode.
func (c *Counter) Top(n int) []Entry {
	var entries []Entry
	for i, count := range c.counts {
		if count == 0 {
			continue
		}
		op := uint16(i)
		if i >= 256 {
			op = 0xCB00 | uint16(i-256)
		}
		entries = append(entries, Entry{Opcode: op, Name: c.names[i], Count: count})
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].Count != entries[b].Count {
			return entries[a].Count > entries[b].Count
		}
		return entries[a].Opcode < entries[b].Opcode
	})
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

// WritePlot draws a bar chart of the n most executed instructions
// and writes it to w as a PNG.
func (c *Counter) WritePlot(w io.Writer, n int) error {
	top := c.Top(n)
	if len(top) == 0 {
		return fmt.Errorf("profile: nothing traced")
	}

	values := make(plotter.Values, len(top))
	names := make([]string, len(top))
	for i, e := range top {
		values[i] = float64(e.Count)
		names[i] = e.Name
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Instructions (%d traced)", c.total)
	p.Y.Label.Text = "Executions"

	bars, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	p.Add(bars)
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = 1.2
	p.X.Tick.Label.XAlign = draw.XRight

	canvas := vgimg.New(vg.Points(float64(60+len(top)*24)), vg.Points(360))
	p.Draw(draw.New(canvas))
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(w); err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	return nil
}

// Logger is a cpu.Tracer writing every instruction at debug level.
type Logger struct {
	Log log.Logger
}

// Trace implements cpu.Tracer.
func (l Logger) Trace(pc uint16, opcode uint16, name string) {
	l.Log.Debugf("%04X: %04X %s", pc, opcode, name)
}

// Tracers fans each instruction out to every tracer in ts.
type Tracers []cpu.Tracer

// Trace implements cpu.Tracer.
func (ts Tracers) Trace(pc uint16, opcode uint16, name string) {
	for _, t := range ts {
		t.Trace(pc, opcode, name)
	}
}
