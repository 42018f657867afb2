//go:build linux

// Command oled-linux drives an SSD1306 panel from a Linux I²C bus
// (/dev/i2c-*) with the same render loop the firmware runs.
//
// Logging goes through glog: -v=1 logs every frame, -logtostderr=false
// writes log files instead of stderr.
package main

import (
	"context"
	"flag"
	"image/color"
	"os"
	"os/signal"
	"syscall"
	"time"

	"oledblink-go/drivers/ssd1306"
	"oledblink-go/errcode"
	"oledblink-go/services/hal"
	"oledblink-go/services/hal/provider/setups"
	"oledblink-go/services/render"
	"oledblink-go/x/mathx"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont/proggy"
)

type options struct {
	addr    uint16
	height  int16
	text    string
	dwellMs uint32
}

func main() {
	dp := setups.SelectedPlan.Display
	busName := flag.String("bus", "", "I²C bus name or number; empty picks the first")
	addr := flag.Uint("addr", uint(dp.Addr), "7-bit panel address")
	height := flag.Int("height", int(dp.Height), "panel rows: 32 or 64")
	text := flag.String("text", dp.Text, "line to show")
	dwell := flag.Uint("dwell", uint(dp.DwellMs), "milliseconds per state")
	khz := flag.Int64("khz", int64(setups.SelectedPlan.I2C.Hz/1000), "bus speed in kHz")
	_ = flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	o := options{addr: uint16(*addr), height: int16(*height), text: *text, dwellMs: uint32(*dwell)}
	if err := run(*busName, *khz, o); err != nil {
		glog.Exitf("oled-linux: code=%s: %v", errcode.Of(err), err)
	}
}

func run(busName string, khz int64, o options) error {
	if _, err := host.Init(); err != nil {
		return err
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return err
	}
	defer bus.Close()
	khz = mathx.Clamp(khz, 10, 1000)
	if err := bus.SetSpeed(physic.Frequency(khz) * physic.KiloHertz); err != nil {
		// Many kernels fix the rate in the device tree.
		glog.Warningf("bus speed unchanged: %v", err)
	}
	glog.Infof("bus %s open, panel at %#02x", bus, o.addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return drive(ctx, bus, newClock(), o)
}

// drive runs the render loop until ctx ends, then leaves the panel dark.
func drive(ctx context.Context, bus drivers.I2C, clk hal.Micros, o options) error {
	dp := setups.SelectedPlan.Display
	dev, err := ssd1306.Open(bus, ssd1306.Config{Address: o.addr, Width: dp.Width, Height: o.height})
	if err != nil {
		return errcode.Wrap(errcode.DisplayInit, "linux.display_init", err)
	}

	white, black := color.RGBA{255, 255, 255, 255}, color.RGBA{0, 0, 0, 255}
	loop := render.NewLoop(dev, hal.NewTimer(clk),
		render.Text(o.text, 0, 0, render.BaselineTop, render.Style{Font: &proggy.TinySZ8pt7b, Color: white}),
		render.Rect(0, 0, dp.ClearWidth, dp.ClearHeight, black),
		o.dwellMs)

	for ctx.Err() == nil {
		state := loop.State()
		if err := loop.Step(); err != nil {
			return err
		}
		glog.V(1).Infof("frame %d state %s", loop.Frames(), state)
	}

	dev.ClearBuffer()
	glog.Infof("stopping after %d frames", loop.Frames())
	return dev.Display()
}

// clock counts host microseconds and naps on each read so the busy-wait
// dwell stays cheap.
type clock struct{ epoch time.Time }

func newClock() *clock { return &clock{epoch: time.Now()} }

func (c *clock) Micros() uint64 {
	time.Sleep(time.Millisecond)
	return uint64(time.Since(c.epoch).Microseconds())
}
