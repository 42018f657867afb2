//go:build rp2350

package provider

import (
	"device/rp"
	"io"
	"machine"

	"oledblink-go/errcode"
)

// RP2350 has two timers; the counter uses TIMER0.
func resetBits(g Gate) uint32 {
	switch g {
	case GateIOBank0:
		return rp.RESETS_RESET_IO_BANK0
	case GatePadsBank0:
		return rp.RESETS_RESET_PADS_BANK0
	case GateTimer:
		return rp.RESETS_RESET_TIMER0
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

func timerHi() uint32 { return rp.TIMER0.TIMERAWH.Get() }
func timerLo() uint32 { return rp.TIMER0.TIMERAWL.Get() }

// uartx is used on rp2040 only; rp2350 goes through machine.UART.
func (rp2Backend) OpenUART(id string, tx, rx int, baud uint32) (io.Writer, error) {
	var hw *machine.UART
	switch id {
	case "uart0":
		hw = machine.UART0
	case "uart1":
		hw = machine.UART1
	default:
		return nil, errcode.UnknownBus
	}
	if err := hw.Configure(machine.UARTConfig{
		BaudRate: baud,
		TX:       machine.Pin(tx),
		RX:       machine.Pin(rx),
	}); err != nil {
		return nil, err
	}
	return hw, nil
}
