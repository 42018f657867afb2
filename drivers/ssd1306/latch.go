package ssd1306

import (
	"image/color"
	"sync"

	"oledblink-go/x/mathx"

	"tinygo.org/x/drivers"
)

// Latch is a drivers.I2C that remembers the first failed transaction.
// Once latched it stops forwarding and every Tx returns that error, so a
// driver that drops per-command errors still cannot hide a dead bus.
type Latch struct {
	mu  sync.Mutex
	bus drivers.I2C
	err error
}

func NewLatch(bus drivers.I2C) *Latch { return &Latch{bus: bus} }

func (l *Latch) Tx(addr uint16, w, r []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	if err := l.bus.Tx(addr, w, r); err != nil {
		l.err = err
	}
	return l.err
}

// Err returns the latched error, nil while the bus is healthy.
func (l *Latch) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Panel is a configured display: a frame buffer plus a flush.
type Panel interface {
	drivers.Displayer
	ClearBuffer()
	FillRectangle(x, y, width, height int16, c color.RGBA) error
}

// frameDevice is the method set latched needs from a driver.
type frameDevice interface {
	Size() (w, h int16)
	SetPixel(x, y int16, c color.RGBA)
	ClearBuffer()
	FillRectangle(x, y, width, height int16, c color.RGBA) error
	Display() error
}

// latchedPanel reports bus failures through Display even when dev
// swallows them, and keeps FillRectangle to the buffer.
type latchedPanel struct {
	dev frameDevice
	bus *Latch
}

func latched(dev frameDevice, bus *Latch) *latchedPanel {
	return &latchedPanel{dev: dev, bus: bus}
}

func (p *latchedPanel) Size() (w, h int16)                { return p.dev.Size() }
func (p *latchedPanel) SetPixel(x, y int16, c color.RGBA) { p.dev.SetPixel(x, y, c) }
func (p *latchedPanel) ClearBuffer()                      { p.dev.ClearBuffer() }

// FillRectangle clips to the panel. A fill that blanks the whole panel
// only clears the buffer: some drivers flush on that case.
func (p *latchedPanel) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	dw, dh := p.dev.Size()
	x0, x1, okx := mathx.ClipSpan(x, width, dw)
	y0, y1, oky := mathx.ClipSpan(y, height, dh)
	if !okx || !oky {
		return nil
	}
	if x0 == 0 && y0 == 0 && x1 == dw && y1 == dh && !lit(c) {
		p.dev.ClearBuffer()
		return nil
	}
	return p.dev.FillRectangle(x0, y0, x1-x0, y1-y0, c)
}

func (p *latchedPanel) Display() error {
	if err := p.dev.Display(); err != nil {
		return err
	}
	return p.bus.Err()
}
