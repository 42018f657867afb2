//go:build tinygo

package ssd1306

import (
	"tinygo.org/x/drivers"
	tinyssd "tinygo.org/x/drivers/ssd1306"
)

// Open configures the panel with the tinygo.org/x/drivers SSD1306 driver.
// Its Configure drops per-command bus errors, so the bus is latched and
// checked once the sequence has been sent.
func Open(bus drivers.I2C, cfg Config) (Panel, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Height%8 != 0 {
		return nil, ErrGeometry
	}
	if cfg.Address == 0 {
		cfg.Address = Address
	}
	l := NewLatch(bus)
	dev := tinyssd.NewI2C(l)
	dev.Configure(tinyssd.Config{
		Address:  cfg.Address,
		Width:    cfg.Width,
		Height:   cfg.Height,
		VccState: tinyssd.SWITCHCAPVCC,
	})
	if err := l.Err(); err != nil {
		return nil, err
	}
	return latched(dev, l), nil
}

// FlushTx is the number of bus transactions one Display costs: the
// six-command window reset, then the whole buffer in one write.
func FlushTx(bufLen uint32) uint32 { return 7 }
