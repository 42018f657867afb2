//go:build rp2040

package provider

import (
	"device/rp"
	"io"
	"machine"

	"oledblink-go/errcode"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

func resetBits(g Gate) uint32 {
	switch g {
	case GateIOBank0:
		return rp.RESETS_RESET_IO_BANK0
	case GatePadsBank0:
		return rp.RESETS_RESET_PADS_BANK0
	case GateTimer:
		return rp.RESETS_RESET_TIMER
	case GateI2C0:
		return rp.RESETS_RESET_I2C0
	case GateI2C1:
		return rp.RESETS_RESET_I2C1
	case GateUART0:
		return rp.RESETS_RESET_UART0
	case GateUART1:
		return rp.RESETS_RESET_UART1
	}
	return 0
}

func unreset(bits uint32) {
	rp.RESETS.RESET.ClearBits(bits)
	for !rp.RESETS.RESET_DONE.HasBits(bits) {
	}
}

func timerHi() uint32 { return rp.TIMER.TIMERAWH.Get() }
func timerLo() uint32 { return rp.TIMER.TIMERAWL.Get() }

func (rp2Backend) OpenUART(id string, tx, rx int, baud uint32) (io.Writer, error) {
	var hw *uartx.UART
	switch id {
	case "uart0":
		hw = uartx.UART0
	case "uart1":
		hw = uartx.UART1
	default:
		return nil, errcode.UnknownBus
	}
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: baud,
		TX:       machine.Pin(tx),
		RX:       machine.Pin(rx),
	}); err != nil {
		return nil, err
	}
	return hw, nil
}
