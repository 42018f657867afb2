// Package ssd1306 drives an SSD1306 monochrome OLED controller over I2C.
//
// The driver keeps a 1 bpp frame buffer in controller layout: byte
// x + page*width holds rows page*8 .. page*8+7 of column x, LSB on top.
// Drawing only touches the buffer; Display copies the whole buffer to
// GDDRAM in one horizontal-addressing window.
//
//	d, _ := ssd1306.New(bus, ssd1306.Config{Width: 128, Height: 32})
//	if err := d.Init(); err != nil { ... }
//	d.SetPixel(0, 0, color.RGBA{255, 255, 255, 255})
//	err := d.Display()
//
// Open is the entry point for bring-up. TinyGo builds run the panel on
// tinygo.org/x/drivers/ssd1306 behind a Latch; host builds, which cannot
// link that package, use Device.
package ssd1306

import (
	"errors"
	"image/color"

	"oledblink-go/x/mathx"

	"tinygo.org/x/drivers"
)

var ErrGeometry = errors.New("ssd1306: width and height must be positive, height a multiple of 8")

// Config fixes the panel. Address defaults to 0x3C when zero.
type Config struct {
	Address uint16
	Width   int16
	Height  int16
}

// Transport frames commands and pixel data for the controller.
type Transport interface {
	Command(cmds ...byte) error
	Data(p []byte) error
}

// Device is one panel and its frame buffer.
type Device struct {
	t      Transport
	width  int16
	height int16
	buf    []byte
}

// New binds a panel on an already configured I2C bus. No bus traffic.
func New(bus drivers.I2C, cfg Config) (*Device, error) {
	addr := cfg.Address
	if addr == 0 {
		addr = Address
	}
	return NewWithTransport(NewI2C(bus, addr), cfg)
}

// NewWithTransport binds a panel behind an explicit transport.
func NewWithTransport(t Transport, cfg Config) (*Device, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Height%8 != 0 {
		return nil, ErrGeometry
	}
	return &Device{
		t:      t,
		width:  cfg.Width,
		height: cfg.Height,
		buf:    make([]byte, int(cfg.Width)*int(cfg.Height)/8),
	}, nil
}

// Init runs the power-up sequence and switches the panel on. Transport
// errors are returned unchanged.
func (d *Device) Init() error {
	comPins := byte(0x12)
	if d.height == 32 {
		comPins = 0x02
	}
	return d.t.Command(
		DisplayOff,
		SetClockDiv, 0x80,
		SetMultiplex, byte(d.height-1),
		SetDispOffset, 0x00,
		SetStartLine|0x00,
		ChargePump, 0x14,
		MemoryMode, AddrHorizontal,
		SegRemap|0x01,
		ComScanDec,
		SetComPins, comPins,
		SetContrast, 0x8F,
		SetPrecharge, 0xF1,
		SetVComDetect, 0x40,
		DisplayAllOnResume,
		NormalDisplay,
		DeactivateScroll,
		DisplayOn,
	)
}

// Size returns the panel dimensions in pixels.
func (d *Device) Size() (x, y int16) { return d.width, d.height }

// Buffer exposes the frame buffer in controller layout.
func (d *Device) Buffer() []byte { return d.buf }

// ClearBuffer turns every buffered pixel off.
func (d *Device) ClearBuffer() {
	for i := range d.buf {
		d.buf[i] = 0
	}
}

func lit(c color.RGBA) bool { return c.R != 0 || c.G != 0 || c.B != 0 }

// SetPixel sets one buffered pixel. Coordinates outside the panel are
// ignored.
func (d *Device) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return
	}
	i := int(x) + int(y/8)*int(d.width)
	if lit(c) {
		d.buf[i] |= 1 << uint(y%8)
	} else {
		d.buf[i] &^= 1 << uint(y%8)
	}
}

// GetPixel reports whether a buffered pixel is on.
func (d *Device) GetPixel(x, y int16) bool {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return false
	}
	return d.buf[int(x)+int(y/8)*int(d.width)]&(1<<uint(y%8)) != 0
}

// FillRectangle fills the part of the rectangle that lies on the panel.
// It works a page at a time with a bit mask instead of per pixel.
func (d *Device) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0, x1, okx := mathx.ClipSpan(x, width, d.width)
	y0, y1, oky := mathx.ClipSpan(y, height, d.height)
	if !okx || !oky {
		return nil
	}
	on := lit(c)
	for page := y0 / 8; page*8 < y1; page++ {
		top := mathx.Max(y0, page*8) - page*8
		bot := mathx.Min(y1, page*8+8) - page*8
		mask := byte(0xFF<<uint(top)) & byte(0xFF>>uint(8-bot))
		row := d.buf[int(page)*int(d.width):]
		for col := x0; col < x1; col++ {
			if on {
				row[col] |= mask
			} else {
				row[col] &^= mask
			}
		}
	}
	return nil
}

// Display writes the whole frame buffer to the panel.
func (d *Device) Display() error {
	pages := d.height / 8
	if err := d.t.Command(ColumnAddr, 0, byte(d.width-1), PageAddr, 0, byte(pages-1)); err != nil {
		return err
	}
	return d.t.Data(d.buf)
}
