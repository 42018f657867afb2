// Package ssd1306sim models the SSD1306 command/data protocol as seen on
// the I2C bus. A Panel implements tinygo drivers.I2C, so it can stand in
// for the real bus under the driver in tests and desktop tools.
package ssd1306sim

import (
	"errors"
	"sync"

	"oledblink-go/drivers/ssd1306"
	"oledblink-go/x/mathx"
)

var (
	ErrNACK    = errors.New("ssd1306sim: address not acknowledged")
	ErrControl = errors.New("ssd1306sim: bad control byte")
	ErrRead    = errors.New("ssd1306sim: reads not supported")
)

// Panel is one controller with its GDDRAM. Width is the column count and
// Height the number of COM rows; GDDRAM is always 8 pages deep like the
// real part, rows beyond Height are simply not shown.
type Panel struct {
	mu sync.Mutex

	addr  uint16
	w, h  int
	ram   [][]byte // [page][col]
	fail  error
	stats Stats

	on, invert, allOn bool
	mode              byte
	mux               int
	colLo, colHi      int
	pageLo, pageHi    int
	col, page         int

	op   byte
	args []byte
	need int
}

// Stats counts bus traffic.
type Stats struct {
	Tx        int // transactions addressed to the panel
	Commands  int // command bytes, arguments included
	DataBytes int
	Frames    int // data writes that wrapped the full window
}

const pages = 8

func New(addr uint16, width, height int) *Panel {
	p := &Panel{addr: addr, w: width, h: height}
	p.ram = make([][]byte, pages)
	for i := range p.ram {
		p.ram[i] = make([]byte, width)
	}
	p.reset()
	return p
}

func (p *Panel) reset() {
	p.on, p.invert, p.allOn = false, false, false
	p.mode = ssd1306.AddrPage
	p.mux = 64
	p.colLo, p.colHi = 0, p.w-1
	p.pageLo, p.pageHi = 0, pages-1
	p.col, p.page = 0, 0
	p.need = 0
}

// Fail makes every following transaction return err. nil restores the bus.
func (p *Panel) Fail(err error) {
	p.mu.Lock()
	p.fail = err
	p.mu.Unlock()
}

// Tx implements drivers.I2C. An empty write only checks that the address ACKs.
func (p *Panel) Tx(addr uint16, w, r []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if addr != p.addr {
		return ErrNACK
	}
	if p.fail != nil {
		return p.fail
	}
	p.stats.Tx++
	if len(r) > 0 {
		return ErrRead
	}
	if len(w) == 0 {
		return nil
	}
	switch w[0] {
	case ssd1306.ControlCommand:
		for _, b := range w[1:] {
			p.command(b)
		}
	case ssd1306.ControlData:
		for _, b := range w[1:] {
			p.data(b)
		}
	default:
		return ErrControl
	}
	return nil
}

func (p *Panel) command(b byte) {
	p.stats.Commands++
	if p.need > 0 {
		p.args = append(p.args, b)
		p.need--
		if p.need == 0 {
			p.exec(p.op, p.args)
		}
		return
	}
	if n := ssd1306.ArgCount(b); n > 0 {
		p.op, p.args, p.need = b, p.args[:0], n
		return
	}
	p.exec(b, nil)
}

func (p *Panel) exec(op byte, a []byte) {
	switch {
	case op == ssd1306.DisplayOff:
		p.on = false
	case op == ssd1306.DisplayOn:
		p.on = true
	case op == ssd1306.NormalDisplay:
		p.invert = false
	case op == ssd1306.InvertDisplay:
		p.invert = true
	case op == ssd1306.DisplayAllOnResume:
		p.allOn = false
	case op == ssd1306.DisplayAllOn:
		p.allOn = true
	case op == ssd1306.MemoryMode:
		p.mode = a[0] & 0x03
	case op == ssd1306.SetMultiplex:
		p.mux = int(a[0]&0x3F) + 1
	case op == ssd1306.ColumnAddr:
		p.colLo, p.colHi = int(a[0]&0x7F), int(a[1]&0x7F)
		p.col = p.colLo
	case op == ssd1306.PageAddr:
		p.pageLo, p.pageHi = int(a[0]&0x07), int(a[1]&0x07)
		p.page = p.pageLo
	case mathx.Between(op, 0xB0, 0xB7):
		p.page = int(op & 0x07)
	case op <= 0x0F:
		p.col = p.col&0xF0 | int(op)
	case mathx.Between(op, 0x10, 0x1F):
		p.col = p.col&0x0F | int(op&0x0F)<<4
	}
}

func (p *Panel) data(b byte) {
	p.stats.DataBytes++
	if p.col < p.w {
		p.ram[p.page][p.col] = b
	}
	switch p.mode {
	case ssd1306.AddrHorizontal:
		if p.col++; p.col > p.colHi {
			p.col = p.colLo
			if p.page++; p.page > p.pageHi {
				p.page = p.pageLo
				p.stats.Frames++
			}
		}
	case ssd1306.AddrVertical:
		if p.page++; p.page > p.pageHi {
			p.page = p.pageLo
			if p.col++; p.col > p.colHi {
				p.col = p.colLo
				p.stats.Frames++
			}
		}
	default:
		if p.col++; p.col >= p.w {
			p.col = 0
		}
	}
}

// On reports whether the display is switched on.
func (p *Panel) On() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.on
}

// Stats returns a snapshot of the traffic counters.
func (p *Panel) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// RAM returns a copy of the first Height/8 pages of GDDRAM in the same
// page-major layout the driver uses.
func (p *Panel) RAM() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]byte, 0, p.w*p.h/8)
	for pg := 0; pg < p.h/8; pg++ {
		out = append(out, p.ram[pg]...)
	}
	return out
}

// Lit reports what the pixel at (x, y) shows, taking display on/off,
// inversion, entire-display-on and the multiplex ratio into account.
func (p *Panel) Lit(x, y int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lit(x, y)
}

func (p *Panel) lit(x, y int) bool {
	if !p.on || x < 0 || y < 0 || x >= p.w || y >= p.h || y >= p.mux {
		return false
	}
	if p.allOn {
		return true
	}
	v := p.ram[y/8][x]&(1<<uint(y%8)) != 0
	return v != p.invert
}

// Snapshot renders the visible panel into dst (w*h bools, row-major).
func (p *Panel) Snapshot(dst []bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			if i := y*p.w + x; i < len(dst) {
				dst[i] = p.lit(x, y)
			}
		}
	}
}

// Size returns the visible panel size.
func (p *Panel) Size() (w, h int) { return p.w, p.h }
