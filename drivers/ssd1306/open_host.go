//go:build !tinygo

package ssd1306

import (
	"oledblink-go/x/mathx"

	"tinygo.org/x/drivers"
)

// Open builds and initialises a Device. Host builds cannot link
// tinygo.org/x/drivers/ssd1306, whose SPI half imports machine.
func Open(bus drivers.I2C, cfg Config) (Panel, error) {
	d, err := New(bus, cfg)
	if err != nil {
		return nil, err
	}
	if err := d.Init(); err != nil {
		return nil, err
	}
	return d, nil
}

// FlushTx is the number of bus transactions one Display costs: the
// window command, then the buffer in DataChunk pieces.
func FlushTx(bufLen uint32) uint32 { return mathx.CeilDiv(bufLen, DataChunk) + 1 }
