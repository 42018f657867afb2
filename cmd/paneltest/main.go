// cmd/paneltest/main.go
package main

import (
	"image/color"
	"time"

	"oledblink-go/drivers/ssd1306"
	"oledblink-go/services/blink"
	"oledblink-go/services/diag"
	"oledblink-go/services/hal"
	"oledblink-go/services/hal/provider"
	"oledblink-go/services/hal/provider/setups"
	"oledblink-go/services/render"
	"oledblink-go/x/conv"
	"oledblink-go/x/mathx"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont/proggy"
)

// ---------- Configuration ----------

const (
	// Pattern timing
	patternDwellMs = 1000

	// A flush may take this many times its ideal wire time.
	flushSlack = 3

	// Cycles: 0 = loop forever
	cyclesToRun = 0

	// 7-bit scan range, reserved addresses excluded.
	scanLo = 0x08
	scanHi = 0x77
)

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
)

// ---------- Helpers ----------

func hex8(b uint8) string {
	var buf [4]byte
	return string(conv.U8Hex(buf[:], b))
}

// scan tries every address with a one-byte read and returns those that ACK.
func scan(bus drivers.I2C) []uint16 {
	var r [1]byte
	found := make([]uint16, 0, 4)
	for a := uint16(scanLo); a <= scanHi; a++ {
		if bus.Tx(a, nil, r[:]) == nil {
			found = append(found, a)
		}
	}
	return found
}

func checkerboard(d ssd1306.Panel, cell int16) {
	w, h := d.Size()
	for y := int16(0); y < h; y++ {
		for x := int16(0); x < w; x++ {
			c := black
			if (x/cell+y/cell)%2 == 0 {
				c = white
			}
			d.SetPixel(x, y, c)
		}
	}
}

// wireUs is the ideal bus time of one flush: every byte costs nine clocks,
// each transaction adds an address byte plus start/stop.
func wireUs(d ssd1306.Panel, hz uint32) uint32 {
	w, h := d.Size()
	n := uint32(w) * uint32(h) / 8
	tx := ssd1306.FlushTx(n)
	bits := (n+tx*2+7)*9 + tx*2
	return mathx.CeilDiv(bits*1000, mathx.RoundDiv(hz, 1000))
}

// timedFlush flushes and reports whether it fitted the budget.
func timedFlush(d ssd1306.Panel, t *hal.Timer, name string, budgetUs uint32) bool {
	start := t.NowUs()
	err := d.Display()
	took := t.NowUs() - start
	if err != nil {
		println("[paneltest]", name, "flush error:", err.Error())
		return false
	}
	println("[paneltest]", name, "flush_us", took)
	return took <= uint64(budgetUs)
}

// ---------- Main ----------

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)

	board, plan := setups.SelectedBoard, setups.SelectedPlan
	reg, err := provider.Take(board)
	if err != nil {
		diag.Fatal("paneltest", err)
	}
	bus, timer, err := blink.OpenBus(reg, board, plan)
	if err != nil {
		diag.Fatal("paneltest", err)
	}

	found := scan(bus)
	seen := false
	for _, a := range found {
		println("[paneltest] ack", hex8(uint8(a)))
		seen = seen || a == plan.Display.Addr
	}
	if !seen {
		println("[paneltest] [FAIL] no device at", hex8(uint8(plan.Display.Addr)))
	}

	dp := plan.Display
	dev, err := ssd1306.Open(bus, ssd1306.Config{Address: dp.Addr, Width: dp.Width, Height: dp.Height})
	if err != nil {
		diag.Fatal("paneltest", err)
	}

	text := render.Text(dp.Text, 0, 0, render.BaselineTop, render.Style{Font: &proggy.TinySZ8pt7b, Color: white})
	patterns := []struct {
		name string
		draw func()
	}{
		{"full", func() { dev.FillRectangle(0, 0, dp.Width, dp.Height, white) }},
		{"checker", func() { checkerboard(dev, 4) }},
		{"text", func() { dev.ClearBuffer(); text.Draw(dev) }},
		{"blank", func() { dev.ClearBuffer() }},
	}

	budget := flushSlack * wireUs(dev, plan.I2C.Hz)
	println("[paneltest] flush budget_us", budget)

	cycle := 0
	for {
		cycle++
		println("=== paneltest: cycle", cycle, "===")
		pass := seen
		for _, p := range patterns {
			p.draw()
			pass = timedFlush(dev, timer, p.name, budget) && pass
			timer.DelayMs(patternDwellMs)
		}
		if pass {
			println("[PASS] panel acked, all patterns flushed within budget")
		} else {
			println("[FAIL] see above")
		}

		if cyclesToRun > 0 && cycle >= cyclesToRun {
			println("completed", cycle, "cycles; halting")
			return
		}
	}
}
