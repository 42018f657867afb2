package provider

import (
	"errors"
	"strings"
	"testing"

	"oledblink-go/errcode"
	"oledblink-go/services/hal/clocks"
	"oledblink-go/services/hal/halerr"
	"oledblink-go/services/hal/provider/setups"
)

const owner = "blink"

func picoClocks(t *testing.T) clocks.Config {
	t.Helper()
	cfg, err := clocks.Derive(setups.SelectedBoard.XtalHz, setups.SelectedBoard.SysHz)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	return cfg
}

// ready returns a registry with clocks applied and every gate released.
func ready(t *testing.T) (*Registry, *HostBackend) {
	t.Helper()
	be := &HostBackend{}
	r := New(be, setups.SelectedBoard)
	if err := r.ApplyClocks(picoClocks(t)); err != nil {
		t.Fatalf("apply clocks: %v", err)
	}
	for _, g := range []Gate{GateIOBank0, GatePadsBank0, GateTimer, GateI2C0, GateI2C1, GateUART0, GateUART1} {
		if err := r.Unreset(owner, g); err != nil {
			t.Fatalf("unreset %s: %v", g, err)
		}
	}
	return r, be
}

func takeAs(t *testing.T, bank *Bank, fn PinFunc, pins ...int) []*PinHandle {
	t.Helper()
	hs := make([]*PinHandle, 0, len(pins))
	for _, n := range pins {
		h, err := bank.Take(n)
		if err != nil {
			t.Fatalf("take %d: %v", n, err)
		}
		if err := h.Reconfigure(fn); err != nil {
			t.Fatalf("reconfigure %d: %v", n, err)
		}
		hs = append(hs, h)
	}
	return hs
}

func i2cPins(t *testing.T, r *Registry, sda, scl int) (*PinHandle, *PinHandle) {
	t.Helper()
	bank, err := r.Pins(owner)
	if err != nil {
		t.Fatalf("pins: %v", err)
	}
	a, err := bank.Take(sda)
	if err != nil {
		t.Fatalf("take %d: %v", sda, err)
	}
	b, err := bank.Take(scl)
	if err != nil {
		t.Fatalf("take %d: %v", scl, err)
	}
	if err := a.Reconfigure(FuncI2C); err != nil {
		t.Fatal(err)
	}
	if err := b.Reconfigure(FuncI2C); err != nil {
		t.Fatal(err)
	}
	return a, b
}

func TestTakeOnce(t *testing.T) {
	r, err := Take(setups.SelectedBoard)
	if err != nil || r == nil {
		t.Fatalf("first take: %v", err)
	}
	if _, err := Take(setups.SelectedBoard); errcode.Of(err) != errcode.AlreadyTaken {
		t.Fatalf("second take: got %v", err)
	}
}

func TestClaimsRequireClocks(t *testing.T) {
	be := &HostBackend{}
	r := New(be, setups.SelectedBoard)
	if err := r.Unreset(owner, GateIOBank0); errcode.Of(err) != errcode.ClockInit {
		t.Fatalf("unreset before clocks: %v", err)
	}
	if _, err := r.OpenI2C(owner, setups.SelectedPlan.I2C, nil, nil); errcode.Of(err) != errcode.ClockInit {
		t.Fatalf("open before clocks: %v", err)
	}
	if n := len(be.Snapshot()); n != 0 {
		t.Fatalf("backend touched %d times", n)
	}
}

func TestApplyClocksBackendFailure(t *testing.T) {
	be := &HostBackend{ClockErr: errors.New("pll")}
	r := New(be, setups.SelectedBoard)
	err := r.ApplyClocks(picoClocks(t))
	if errcode.Of(err) != errcode.ClockInit {
		t.Fatalf("got %v", err)
	}
	if _, ok := r.Clocks(); ok {
		t.Fatal("clocks recorded after failure")
	}
}

func TestApplyClocksTwice(t *testing.T) {
	r, _ := ready(t)
	if err := r.ApplyClocks(picoClocks(t)); errcode.Of(err) != errcode.AlreadyTaken {
		t.Fatalf("got %v", err)
	}
}

func TestGateOwnership(t *testing.T) {
	r, be := ready(t)
	n := len(be.Snapshot())

	if err := r.Unreset(owner, GateI2C1); err != nil {
		t.Fatalf("repeat by owner: %v", err)
	}
	if got := len(be.Snapshot()); got != n {
		t.Fatalf("repeat unreset reached backend")
	}
	if err := r.Unreset("other", GateI2C1); errcode.Of(err) != errcode.GateInUse {
		t.Fatalf("foreign unreset: %v", err)
	}
	if err := r.Unreset("", GateTimer); err == nil {
		t.Fatal("empty owner accepted")
	}
}

func TestPinsNeedGates(t *testing.T) {
	r := New(&HostBackend{}, setups.SelectedBoard)
	if err := r.ApplyClocks(picoClocks(t)); err != nil {
		t.Fatal(err)
	}
	if err := r.Unreset(owner, GateIOBank0); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Pins(owner); errcode.Of(err) != errcode.GateNotReleased {
		t.Fatalf("pads still in reset: %v", err)
	}
	if err := r.Unreset(owner, GatePadsBank0); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Pins("other"); errcode.Of(err) != errcode.GateNotReleased {
		t.Fatalf("foreign owner: %v", err)
	}
	if _, err := r.Pins(owner); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Pins(owner); errcode.Of(err) != errcode.AlreadyTaken {
		t.Fatalf("second bank: %v", err)
	}
}

func TestPinTakeAndReconfigure(t *testing.T) {
	r, _ := ready(t)
	bank, err := r.Pins(owner)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		pin  int
		want errcode.Code
	}{
		{14, errcode.OK},
		{14, errcode.PinInUse},
		{-1, errcode.UnknownPin},
		{30, errcode.UnknownPin},
	}
	for _, tt := range tests {
		_, err := bank.Take(tt.pin)
		if got := errcode.Of(err); got != tt.want {
			t.Errorf("take %d: got %s want %s", tt.pin, got, tt.want)
		}
	}

	h, err := bank.Take(15)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Reconfigure(FuncNone); errcode.Of(err) != errcode.InvalidPin {
		t.Fatalf("reconfigure none: %v", err)
	}
	if err := h.Reconfigure(FuncI2C); err != nil {
		t.Fatal(err)
	}
	if err := h.Reconfigure(FuncI2C); errcode.Of(err) != errcode.PinInUse {
		t.Fatalf("second reconfigure: %v", err)
	}
	if h.Pin() != 15 || h.Func() != FuncI2C {
		t.Fatalf("handle state: pin %d func %s", h.Pin(), h.Func())
	}
}

func TestOpenI2C(t *testing.T) {
	r, be := ready(t)
	sda, scl := i2cPins(t, r, 14, 15)
	plan := setups.I2CPlan{ID: "i2c1", SDA: 14, SCL: 15, Hz: 400_000}

	bus, err := r.OpenI2C(owner, plan, sda, scl)
	if err != nil || bus == nil {
		t.Fatalf("open: %v", err)
	}
	if sda.Owner() != "i2c1" || scl.Owner() != "i2c1" {
		t.Fatalf("pins not moved into bus: %q %q", sda.Owner(), scl.Owner())
	}
	ev := be.Snapshot()
	if last := ev[len(ev)-1]; last != "i2c i2c1 sda=14 scl=15 hz=400000" {
		t.Fatalf("last event %q", last)
	}
	if _, err := r.OpenI2C(owner, plan, sda, scl); errcode.Of(err) != errcode.BusInUse {
		t.Fatalf("second open: %v", err)
	}
}

func TestOpenI2CRejectsWrongPins(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		sda, scl int
		want     errcode.Code
	}{
		{"wrong controller", "i2c0", 14, 15, errcode.InvalidPin},
		{"swapped roles", "i2c1", 15, 14, errcode.InvalidPin},
		{"unknown bus", "i2c7", 14, 15, errcode.UnknownBus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := ready(t)
			a, b := i2cPins(t, r, tt.sda, tt.scl)
			plan := setups.I2CPlan{ID: tt.id, SDA: tt.sda, SCL: tt.scl, Hz: 400_000}
			_, err := r.OpenI2C(owner, plan, a, b)
			if got := errcode.Of(err); got != tt.want {
				t.Fatalf("got %v want %s", err, tt.want)
			}
		})
	}
}

func TestOpenI2CRejectsUnconfiguredPin(t *testing.T) {
	r, _ := ready(t)
	bank, _ := r.Pins(owner)
	a, _ := bank.Take(14)
	b, _ := bank.Take(15)
	if err := a.Reconfigure(FuncI2C); err != nil {
		t.Fatal(err)
	}
	_, err := r.OpenI2C(owner, setups.I2CPlan{ID: "i2c1", Hz: 400_000}, a, b)
	if errcode.Of(err) != errcode.InvalidPin {
		t.Fatalf("got %v", err)
	}
}

func TestOpenI2CNeedsGate(t *testing.T) {
	r := New(&HostBackend{}, setups.SelectedBoard)
	if err := r.ApplyClocks(picoClocks(t)); err != nil {
		t.Fatal(err)
	}
	for _, g := range []Gate{GateIOBank0, GatePadsBank0} {
		if err := r.Unreset(owner, g); err != nil {
			t.Fatal(err)
		}
	}
	a, b := i2cPins(t, r, 14, 15)
	_, err := r.OpenI2C(owner, setups.I2CPlan{ID: "i2c1", Hz: 400_000}, a, b)
	if errcode.Of(err) != errcode.GateNotReleased {
		t.Fatalf("got %v", err)
	}
}

func TestEventOrder(t *testing.T) {
	r, be := ready(t)
	a, b := i2cPins(t, r, 14, 15)
	if _, err := r.OpenI2C(owner, setups.I2CPlan{ID: "i2c1", Hz: 400_000}, a, b); err != nil {
		t.Fatal(err)
	}
	got := strings.Join(be.Snapshot(), "|")
	want := strings.Join([]string{
		"clocks 125000000",
		"unreset io_bank0", "unreset pads_bank0", "unreset timer", "unreset i2c0", "unreset i2c1",
		"unreset uart0", "unreset uart1",
		"pinfunc 14 i2c", "pinfunc 15 i2c",
		"i2c i2c1 sda=14 scl=15 hz=400000",
	}, "|")
	if got != want {
		t.Fatalf("events\n got %s\nwant %s", got, want)
	}
}

func TestCounterNeedsTimerGate(t *testing.T) {
	r := New(&HostBackend{}, setups.SelectedBoard)
	if err := r.ApplyClocks(picoClocks(t)); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Counter(owner); errcode.Of(err) != errcode.GateNotReleased {
		t.Fatalf("got %v", err)
	}
	if err := r.Unreset(owner, GateTimer); err != nil {
		t.Fatal(err)
	}
	c, err := r.Counter(owner)
	if err != nil {
		t.Fatal(err)
	}
	a := c.Micros()
	if b := c.Micros(); b < a {
		t.Fatalf("counter went backwards: %d -> %d", a, b)
	}
	if again, err := r.Counter(owner); again != nil || errcode.Of(err) != errcode.AlreadyTaken {
		t.Fatalf("second counter: %v, %v", again, err)
	}
}

func TestUnresetUnknownGate(t *testing.T) {
	r, _ := ready(t)
	if err := r.Unreset(owner, gateCount); !errors.Is(err, halerr.ErrUnknownGate) {
		t.Fatalf("got %v", err)
	}
}

func TestOpenUART(t *testing.T) {
	r, be := ready(t)
	bank, err := r.Pins(owner)
	if err != nil {
		t.Fatal(err)
	}
	p := takeAs(t, bank, FuncUART, 0, 1)
	plan := setups.UARTPlan{ID: "uart0", TX: 0, RX: 1, Baud: 115_200}

	w, err := r.OpenUART(owner, plan, p[0], p[1])
	if err != nil || w == nil {
		t.Fatalf("open: %v", err)
	}
	if p[0].Owner() != "uart0" || p[1].Owner() != "uart0" {
		t.Fatalf("pins not moved into uart: %q %q", p[0].Owner(), p[1].Owner())
	}
	ev := be.Snapshot()
	if last := ev[len(ev)-1]; last != "uart uart0 tx=0 rx=1 baud=115200" {
		t.Fatalf("last event %q", last)
	}
	if _, err := r.OpenUART(owner, plan, p[0], p[1]); errcode.Of(err) != errcode.BusInUse {
		t.Fatalf("second open: %v", err)
	}
}

func TestOpenUARTRejectsWrongPins(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		fn     PinFunc
		tx, rx int
		want   errcode.Code
	}{
		{"wrong controller", "uart1", FuncUART, 0, 1, errcode.InvalidPin},
		{"swapped roles", "uart0", FuncUART, 1, 0, errcode.InvalidPin},
		{"cts/rts pins", "uart0", FuncUART, 2, 3, errcode.InvalidPin},
		{"muxed as i2c", "uart0", FuncI2C, 0, 1, errcode.InvalidPin},
		{"uart1 on gp4", "uart1", FuncUART, 4, 5, errcode.OK},
		{"uart0 on gp12", "uart0", FuncUART, 12, 13, errcode.OK},
		{"unknown uart", "uart2", FuncUART, 0, 1, errcode.UnknownBus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := ready(t)
			bank, err := r.Pins(owner)
			if err != nil {
				t.Fatal(err)
			}
			p := takeAs(t, bank, tt.fn, tt.tx, tt.rx)
			plan := setups.UARTPlan{ID: tt.id, TX: tt.tx, RX: tt.rx, Baud: 115_200}
			_, err = r.OpenUART(owner, plan, p[0], p[1])
			if got := errcode.Of(err); got != tt.want {
				t.Fatalf("got %v want %s", err, tt.want)
			}
		})
	}
}

func TestOpenUARTNeedsGate(t *testing.T) {
	r := New(&HostBackend{}, setups.SelectedBoard)
	if err := r.ApplyClocks(picoClocks(t)); err != nil {
		t.Fatal(err)
	}
	for _, g := range []Gate{GateIOBank0, GatePadsBank0} {
		if err := r.Unreset(owner, g); err != nil {
			t.Fatal(err)
		}
	}
	bank, err := r.Pins(owner)
	if err != nil {
		t.Fatal(err)
	}
	p := takeAs(t, bank, FuncUART, 0, 1)
	_, err = r.OpenUART(owner, setups.UARTPlan{ID: "uart0", TX: 0, RX: 1, Baud: 115_200}, p[0], p[1])
	if errcode.Of(err) != errcode.GateNotReleased {
		t.Fatalf("got %v", err)
	}
}

// GP0/GP1 are valid for both UART0 and I2C0; whichever claims them first
// keeps them.
func TestUARTAndI2CShareNoPins(t *testing.T) {
	r, be := ready(t)
	bank, err := r.Pins(owner)
	if err != nil {
		t.Fatal(err)
	}
	p := takeAs(t, bank, FuncUART, 0, 1)
	if _, err := r.OpenUART(owner, setups.UARTPlan{ID: "uart0", TX: 0, RX: 1, Baud: 115_200}, p[0], p[1]); err != nil {
		t.Fatal(err)
	}
	n := len(be.Snapshot())
	for _, pin := range []int{0, 1} {
		if _, err := bank.Take(pin); errcode.Of(err) != errcode.PinInUse {
			t.Fatalf("take %d for i2c0: %v", pin, err)
		}
	}
	if err := p[0].Reconfigure(FuncI2C); errcode.Of(err) != errcode.PinInUse {
		t.Fatalf("remux uart pin: %v", err)
	}
	if _, err := r.OpenI2C(owner, setups.I2CPlan{ID: "i2c0", SDA: 0, SCL: 1, Hz: 400_000}, p[0], p[1]); errcode.Of(err) != errcode.InvalidPin {
		t.Fatalf("i2c0 over uart pins: %v", err)
	}
	if got := len(be.Snapshot()); got != n {
		t.Fatalf("backend touched after conflict: %q", be.Snapshot()[n:])
	}
}
