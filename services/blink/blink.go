// Package blink brings the board from reset to a running render loop:
// clocks, reset gates, the diagnostic UART, I²C pins, the bus, the panel,
// then the loop.
// Each step runs once and any failure ends bring-up.
package blink

import (
	"image/color"
	"io"

	"oledblink-go/drivers/ssd1306"
	"oledblink-go/errcode"
	"oledblink-go/services/diag"
	"oledblink-go/services/hal"
	"oledblink-go/services/hal/clocks"
	"oledblink-go/services/hal/provider"
	"oledblink-go/services/hal/provider/setups"
	"oledblink-go/services/render"
	"oledblink-go/x/conv"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont/proggy"
)

const owner = "blink"

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
)

// Run performs bring-up and then runs the loop. It returns only on error.
func Run(reg *provider.Registry, board setups.Board, plan setups.ResourcePlan) error {
	l, err := Setup(reg, board, plan)
	if err != nil {
		return err
	}
	return l.Run()
}

// Setup performs bring-up and returns a loop ready to show its first
// frame. Nothing is drawn or flushed before it returns.
func Setup(reg *provider.Registry, board setups.Board, plan setups.ResourcePlan) (*render.Loop, error) {
	bus, timer, err := OpenBus(reg, board, plan)
	if err != nil {
		return nil, err
	}

	// 5) Panel.
	dp := plan.Display
	dev, err := ssd1306.Open(bus, ssd1306.Config{Address: dp.Addr, Width: dp.Width, Height: dp.Height})
	if err != nil {
		return nil, errcode.Wrap(errcode.DisplayInit, "blink.display_init", err)
	}
	var hex [4]byte
	println("[boot] ssd1306", string(conv.U8Hex(hex[:], uint8(dp.Addr))), "up")

	// 6) Loop.
	text := render.Text(dp.Text, 0, 0, render.BaselineTop, render.Style{Font: &proggy.TinySZ8pt7b, Color: white})
	clear := render.Rect(0, 0, dp.ClearWidth, dp.ClearHeight, black)
	return render.NewLoop(dev, timer, text, clear, dp.DwellMs), nil
}

// OpenBus runs the clock, reset, UART, pin and bus steps of bring-up and
// returns the display bus with a timer over the chip's counter. When the
// plan names a diagnostic UART it is opened first and attached to diag.
func OpenBus(reg *provider.Registry, board setups.Board, plan setups.ResourcePlan) (drivers.I2C, *hal.Timer, error) {
	if err := plan.Validate(); err != nil {
		return nil, nil, errcode.Wrap(errcode.Error, "blink.plan", err)
	}

	// 1) Clock tree. Nothing else may be touched if this fails.
	cfg, err := clocks.Derive(board.XtalHz, board.SysHz)
	if err != nil {
		return nil, nil, err
	}
	if err := reg.ApplyClocks(cfg); err != nil {
		return nil, nil, err
	}
	println("[boot]", board.Name, "xtal_hz", board.XtalHz, "sys_hz", cfg.SysHz)

	// 2) Reset gates.
	busGate, ok := provider.I2CGate(plan.I2C.ID)
	if !ok {
		return nil, nil, &errcode.E{C: errcode.UnknownBus, Op: "blink.gates", Msg: plan.I2C.ID}
	}
	gates := []provider.Gate{provider.GateIOBank0, provider.GatePadsBank0, provider.GateTimer}
	if id := plan.Diag.ID; id != "" {
		g, ok := provider.UARTGate(id)
		if !ok {
			return nil, nil, &errcode.E{C: errcode.UnknownBus, Op: "blink.gates", Msg: id}
		}
		gates = append(gates, g)
	}
	for _, g := range append(gates, busGate) {
		if err := reg.Unreset(owner, g); err != nil {
			return nil, nil, err
		}
	}

	bank, err := reg.Pins(owner)
	if err != nil {
		return nil, nil, err
	}

	// 3) Diagnostic UART, so later failures reach it.
	if plan.Diag.ID != "" {
		w, err := openDiag(reg, bank, plan.Diag)
		if err != nil {
			return nil, nil, err
		}
		diag.Attach(w)
		_, _ = io.WriteString(w, "[boot] "+board.Name+" "+plan.Diag.ID+" up\r\n")
	}

	// 4) I²C pins.
	sda, err := claimPin(bank, plan.I2C.SDA, provider.FuncI2C)
	if err != nil {
		return nil, nil, err
	}
	scl, err := claimPin(bank, plan.I2C.SCL, provider.FuncI2C)
	if err != nil {
		return nil, nil, err
	}

	// Bus and timer.
	bus, err := reg.OpenI2C(owner, plan.I2C, sda, scl)
	if err != nil {
		return nil, nil, err
	}
	cnt, err := reg.Counter(owner)
	if err != nil {
		return nil, nil, err
	}
	return bus, hal.NewTimer(cnt), nil
}

func openDiag(reg *provider.Registry, bank *provider.Bank, p setups.UARTPlan) (io.Writer, error) {
	tx, err := claimPin(bank, p.TX, provider.FuncUART)
	if err != nil {
		return nil, err
	}
	rx, err := claimPin(bank, p.RX, provider.FuncUART)
	if err != nil {
		return nil, err
	}
	return reg.OpenUART(owner, p, tx, rx)
}

func claimPin(bank *provider.Bank, n int, fn provider.PinFunc) (*provider.PinHandle, error) {
	h, err := bank.Take(n)
	if err != nil {
		return nil, err
	}
	if err := h.Reconfigure(fn); err != nil {
		return nil, err
	}
	return h, nil
}
