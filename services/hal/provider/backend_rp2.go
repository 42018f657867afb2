//go:build rp2040 || rp2350

package provider

import (
	"machine"

	"oledblink-go/errcode"
	"oledblink-go/services/hal/clocks"
	"oledblink-go/services/hal/halerr"

	"tinygo.org/x/drivers"
)

func newBackend() Backend { return rp2Backend{} }

// rp2Backend drives RP2040/RP2350 registers. XOSC and both PLLs are
// started by the TinyGo runtime before main, so ApplyClocks checks the
// running tree against the derived one instead of reprogramming it.
type rp2Backend struct{}

// ApplyClocks relies on the runtime's PLL_SYS choice. Checked against
// TinyGo 0.39, which locks PLL_SYS at 1500 MHz / 6 / 2 = 125 MHz on rp2040
// and 1500 MHz / 5 / 2 = 150 MHz on rp2350. A later TinyGo that moves
// either default makes boot stop here with code=clock_init; update
// Board.SysHz in setups to match.
func (rp2Backend) ApplyClocks(cfg clocks.Config) error {
	if got := machine.CPUFrequency(); got != cfg.SysHz {
		return &errcode.E{C: errcode.ClockInit, Op: "rp2.clocks", Msg: "running sys clock differs from board SysHz"}
	}
	return nil
}

func (rp2Backend) Unreset(g Gate) error {
	bits := resetBits(g)
	if bits == 0 {
		return halerr.ErrUnsupported
	}
	unreset(bits)
	return nil
}

func (rp2Backend) SetPinFunc(pin int, fn PinFunc) error {
	switch fn {
	case FuncI2C:
		machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinI2C})
		return nil
	case FuncUART:
		machine.Pin(pin).Configure(machine.PinConfig{Mode: machine.PinUART})
		return nil
	}
	return halerr.ErrUnsupported
}

func (rp2Backend) OpenI2C(id string, sda, scl int, hz uint32) (drivers.I2C, error) {
	var hw *machine.I2C
	switch id {
	case "i2c0":
		hw = machine.I2C0
	case "i2c1":
		hw = machine.I2C1
	default:
		return nil, errcode.UnknownBus
	}
	err := hw.Configure(machine.I2CConfig{
		Frequency: hz,
		SDA:       machine.Pin(sda),
		SCL:       machine.Pin(scl),
	})
	if err != nil {
		return nil, err
	}
	return hw, nil
}

func (rp2Backend) Counter() Counter { return rp2Timer{} }

// rp2Timer reads the 64-bit 1 MHz timer through the raw (unlatched)
// registers, re-reading the high word until it is stable.
type rp2Timer struct{}

func (rp2Timer) Micros() uint64 {
	hi := timerHi()
	for {
		lo := timerLo()
		next := timerHi()
		if next == hi {
			return uint64(hi)<<32 | uint64(lo)
		}
		hi = next
	}
}
