//go:build !tinygo

// Command oledsim runs the firmware's bring-up and render loop on the
// desktop against a simulated SSD1306, shown in a window. -v=1 logs the
// recorded hardware events.
package main

import (
	"errors"
	"flag"
	"image"
	"os"
	"strings"
	"time"

	"oledblink-go/drivers/ssd1306/ssd1306sim"
	"oledblink-go/services/blink"
	"oledblink-go/services/hal/provider"
	"oledblink-go/services/hal/provider/setups"
	"oledblink-go/services/render"

	"github.com/golang/glog"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	scale := flag.Int("scale", 4, "window pixels per panel pixel")
	headless := flag.Bool("headless", false, "run without a window and print frames")
	frames := flag.Int("frames", 4, "frames to run in headless mode")
	fast := flag.Bool("fast", false, "skip the dwell between frames")
	_ = flag.Set("logtostderr", "true")
	flag.Parse()
	defer glog.Flush()

	board, plan := setups.SelectedBoard, setups.SelectedPlan
	panel := ssd1306sim.New(plan.Display.Addr, int(plan.Display.Width), int(plan.Display.Height))

	var clock provider.Counter = newSleepyClock()
	if *fast {
		clock = &skipClock{}
	}
	be := &provider.HostBackend{Bus: panel, Clock: clock}
	loop, err := blink.Setup(provider.New(be, board), board, plan)
	if err != nil {
		glog.Exitf("bring-up failed: %v", err)
	}
	if glog.V(1) {
		for _, ev := range be.Snapshot() {
			glog.Infof("hal %s", ev)
		}
	}
	glog.Infof("panel up board=%s addr=%#02x on=%v", board.Name, plan.Display.Addr, panel.On())

	if *headless {
		for i := 0; i < *frames; i++ {
			state := loop.State()
			if err := loop.Step(); err != nil {
				glog.Exitf("frame %d: %v", i, err)
			}
			glog.Infof("frame %d state=%s stats=%+v", i, state, panel.Stats())
			os.Stdout.WriteString(ascii(panel))
		}
		return
	}

	g := &game{panel: panel, scale: *scale, errc: make(chan error, 1)}
	go func() { g.errc <- runLoop(loop) }()

	w, h := panel.Size()
	ebiten.SetWindowTitle("oledsim " + board.Name)
	ebiten.SetWindowSize(w*g.scale, h*g.scale)
	ebiten.SetTPS(30)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		glog.Exitf("window: %v", err)
	}
}

func runLoop(l *render.Loop) error {
	err := l.Run()
	glog.Errorf("render loop stopped after %d frames: %v", l.Frames(), err)
	return err
}

// ascii renders the visible panel, '#' for lit pixels.
func ascii(p *ssd1306sim.Panel) string {
	w, h := p.Size()
	px := make([]bool, w*h)
	p.Snapshot(px)
	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if px[y*w+x] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// game copies the simulated panel into an ebiten image every frame.
type game struct {
	panel *ssd1306sim.Panel
	scale int
	errc  chan error

	px    []bool
	img   *image.RGBA
	fbImg *ebiten.Image
}

func (g *game) Update() error {
	select {
	case err := <-g.errc:
		return err
	default:
		return nil
	}
}

// Lit pixels use the pale blue of common 0.91" modules.
func (g *game) Draw(screen *ebiten.Image) {
	w, h := g.panel.Size()
	if g.img == nil {
		g.px = make([]bool, w*h)
		g.img = image.NewRGBA(image.Rect(0, 0, w, h))
		g.fbImg = ebiten.NewImage(w, h)
	}
	g.panel.Snapshot(g.px)
	dst := g.img.Pix
	for i, on := range g.px {
		j := i * 4
		if on {
			dst[j+0], dst[j+1], dst[j+2] = 0x9C, 0xD8, 0xFF
		} else {
			dst[j+0], dst[j+1], dst[j+2] = 0x08, 0x08, 0x10
		}
		dst[j+3] = 0xFF
	}
	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.panel.Size()
}

// sleepyClock is the host counter, yielding briefly on each read so the
// busy-wait dwell does not pin a core.
type sleepyClock struct{ epoch time.Time }

func newSleepyClock() *sleepyClock { return &sleepyClock{epoch: time.Now()} }

func (c *sleepyClock) Micros() uint64 {
	time.Sleep(500 * time.Microsecond)
	return uint64(time.Since(c.epoch).Microseconds())
}

// skipClock jumps a whole second per read so every dwell ends at once.
type skipClock struct{ now uint64 }

func (c *skipClock) Micros() uint64 { c.now += 1_000_000; return c.now }
