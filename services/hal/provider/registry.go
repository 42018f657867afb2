// Package provider owns the chip's peripherals: clock application, reset
// gates, GPIO pins, the I²C and UART controllers and the timer. Every resource is handed out once;
// a second claim fails instead of aliasing hardware.
//
// Hardware effects go through a backend chosen at build time: the RP2040
// backend drives registers via TinyGo's machine package, the host backend
// records effects for tests and tools.
package provider

import (
	"io"
	"sync"
	"sync/atomic"

	"oledblink-go/errcode"
	"oledblink-go/services/hal/clocks"
	"oledblink-go/services/hal/halerr"
	"oledblink-go/services/hal/provider/setups"
	"oledblink-go/x/timex"

	"tinygo.org/x/drivers"
)

// Counter is a free-running microsecond counter.
type Counter interface {
	Micros() uint64
}

// Backend performs the hardware side of each claim. Implementations do not
// track ownership; the Registry does.
type Backend interface {
	ApplyClocks(cfg clocks.Config) error
	Unreset(g Gate) error
	SetPinFunc(pin int, fn PinFunc) error
	OpenI2C(id string, sda, scl int, hz uint32) (drivers.I2C, error)
	OpenUART(id string, tx, rx int, baud uint32) (io.Writer, error)
	Counter() Counter
}

// ---- Reset gates ----

type Gate uint8

const (
	GateIOBank0 Gate = iota
	GatePadsBank0
	GateTimer
	GateI2C0
	GateI2C1
	GateUART0
	GateUART1
	gateCount
)

func (g Gate) String() string {
	switch g {
	case GateIOBank0:
		return "io_bank0"
	case GatePadsBank0:
		return "pads_bank0"
	case GateTimer:
		return "timer"
	case GateI2C0:
		return "i2c0"
	case GateI2C1:
		return "i2c1"
	case GateUART0:
		return "uart0"
	case GateUART1:
		return "uart1"
	default:
		return "unknown"
	}
}

// ---- Pin functions ----

type PinFunc uint8

const (
	FuncNone PinFunc = iota
	FuncI2C
	FuncUART
)

func (f PinFunc) String() string {
	switch f {
	case FuncI2C:
		return "i2c"
	case FuncUART:
		return "uart"
	}
	return "none"
}

// ---- Registry ----

// Registry is the single owner of peripheral state.
type Registry struct {
	mu sync.Mutex
	be Backend

	clk   *clocks.Config
	gates [gateCount]string // gate -> owner ("" = still in reset)
	pins  map[int]*PinHandle
	buses map[string]string // bus or uart id -> owner
	bank  bool
	timer bool
	board setups.Board
}

var taken atomic.Bool

// Take returns the process-wide Registry bound to the platform backend.
// It succeeds once; later calls fail with errcode.AlreadyTaken.
func Take(board setups.Board) (*Registry, error) {
	if !taken.CompareAndSwap(false, true) {
		return nil, &errcode.E{C: errcode.AlreadyTaken, Op: "provider.take"}
	}
	return New(newBackend(), board), nil
}

// New builds an unguarded Registry over an explicit backend (tests, tools).
func New(be Backend, board setups.Board) *Registry {
	return &Registry{
		be:    be,
		pins:  make(map[int]*PinHandle),
		buses: make(map[string]string),
		board: board,
	}
}

// ApplyClocks makes a derived clock tree effective. It must succeed before
// any other claim.
func (r *Registry) ApplyClocks(cfg clocks.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clk != nil {
		return &errcode.E{C: errcode.AlreadyTaken, Op: "provider.clocks"}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := r.be.ApplyClocks(cfg); err != nil {
		return errcode.Wrap(errcode.ClockInit, "provider.clocks", err)
	}
	c := cfg
	r.clk = &c
	println("[hal] clocks sys_hz", cfg.SysHz, "usb_hz", cfg.USBHz)
	return nil
}

// Clocks returns the applied clock tree.
func (r *Registry) Clocks() (clocks.Config, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clk == nil {
		return clocks.Config{}, false
	}
	return *r.clk, true
}

// Unreset releases a peripheral from reset on behalf of owner. Repeating
// the call for the same owner is a no-op.
func (r *Registry) Unreset(owner string, g Gate) error {
	const op = "provider.unreset"
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clk == nil {
		return &errcode.E{C: errcode.ClockInit, Op: op, Msg: "clocks not applied"}
	}
	if g >= gateCount {
		return errcode.Wrap(errcode.Error, op, halerr.ErrUnknownGate)
	}
	if owner == "" {
		return &errcode.E{C: errcode.Error, Op: op, Msg: "empty owner"}
	}
	switch cur := r.gates[g]; {
	case cur == owner:
		return nil
	case cur != "":
		return &errcode.E{C: errcode.GateInUse, Op: op, Msg: g.String() + " held by " + cur}
	}
	if err := r.be.Unreset(g); err != nil {
		return errcode.Wrap(errcode.Error, op, err)
	}
	r.gates[g] = owner
	return nil
}

func (r *Registry) heldBy(g Gate, owner string) bool {
	return owner != "" && r.gates[g] == owner
}

// ---- Pins ----

// Bank hands out pin handles. Obtained once per Registry.
type Bank struct {
	r     *Registry
	owner string
}

// Pins returns the GPIO bank. IO_BANK0 and PADS_BANK0 must have been
// released from reset by the same owner.
func (r *Registry) Pins(owner string) (*Bank, error) {
	const op = "provider.pins"
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.heldBy(GateIOBank0, owner) || !r.heldBy(GatePadsBank0, owner) {
		return nil, &errcode.E{C: errcode.GateNotReleased, Op: op, Msg: "io/pads bank"}
	}
	if r.bank {
		return nil, &errcode.E{C: errcode.AlreadyTaken, Op: op}
	}
	r.bank = true
	return &Bank{r: r, owner: owner}, nil
}

// Take issues the handle for pin n. Each pin is issued once.
func (b *Bank) Take(n int) (*PinHandle, error) {
	const op = "provider.pin_take"
	r := b.r
	r.mu.Lock()
	defer r.mu.Unlock()
	if n < r.board.GPIOMin || n > r.board.GPIOMax {
		return nil, &errcode.E{C: errcode.UnknownPin, Op: op}
	}
	if _, inUse := r.pins[n]; inUse {
		return nil, &errcode.E{C: errcode.PinInUse, Op: op}
	}
	h := &PinHandle{r: r, n: n}
	r.pins[n] = h
	return h, nil
}

// PinHandle is one physical pin. It can be reconfigured once, then its
// ownership moves into the peripheral that consumes it.
type PinHandle struct {
	r     *Registry
	n     int
	fn    PinFunc
	owner string // consuming peripheral, "" while free
}

func (h *PinHandle) Pin() int      { return h.n }
func (h *PinHandle) Func() PinFunc { return h.fn }
func (h *PinHandle) Owner() string { return h.owner }

// Reconfigure switches the pin to fn. A pin already reconfigured or
// already owned by a peripheral is rejected.
func (h *PinHandle) Reconfigure(fn PinFunc) error {
	const op = "provider.pin_reconfigure"
	r := h.r
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.fn != FuncNone || h.owner != "" {
		return &errcode.E{C: errcode.PinInUse, Op: op}
	}
	if fn == FuncNone {
		return &errcode.E{C: errcode.InvalidPin, Op: op}
	}
	if err := r.be.SetPinFunc(h.n, fn); err != nil {
		return errcode.Wrap(errcode.Error, op, err)
	}
	h.fn = fn
	return nil
}

// ---- I²C ----

// i2cIndex maps an RP2040 GPIO to its I²C controller: pairs alternate
// between I2C0 and I2C1, SDA on the even pin of each pair.
func i2cIndex(pin int) int { return (pin / 2) % 2 }

// I2CGate returns the reset gate of the I²C controller named id.
func I2CGate(id string) (Gate, bool) {
	g, _, ok := i2cGate(id)
	return g, ok
}

func i2cGate(id string) (Gate, int, bool) {
	switch id {
	case "i2c0":
		return GateI2C0, 0, true
	case "i2c1":
		return GateI2C1, 1, true
	}
	return 0, 0, false
}

// OpenI2C brings up an I²C controller on two reconfigured pins. The pins'
// ownership transfers to the bus. The bus does not scan for devices.
func (r *Registry) OpenI2C(owner string, p setups.I2CPlan, sda, scl *PinHandle) (drivers.I2C, error) {
	const op = "provider.i2c_open"
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clk == nil {
		return nil, &errcode.E{C: errcode.ClockInit, Op: op, Msg: "clocks not applied"}
	}
	g, idx, ok := i2cGate(p.ID)
	if !ok {
		return nil, &errcode.E{C: errcode.UnknownBus, Op: op, Msg: p.ID}
	}
	if !r.heldBy(g, owner) {
		return nil, &errcode.E{C: errcode.GateNotReleased, Op: op, Msg: g.String()}
	}
	if cur, inUse := r.buses[p.ID]; inUse {
		return nil, &errcode.E{C: errcode.BusInUse, Op: op, Msg: p.ID + " held by " + cur}
	}
	if sda == nil || scl == nil || sda.r != r || scl.r != r {
		return nil, &errcode.E{C: errcode.InvalidPin, Op: op, Msg: "foreign handle"}
	}
	for _, h := range [...]*PinHandle{sda, scl} {
		if h.fn != FuncI2C || h.owner != "" || i2cIndex(h.n) != idx {
			return nil, &errcode.E{C: errcode.InvalidPin, Op: op, Msg: p.ID}
		}
	}
	if sda.n%2 != 0 || scl.n%2 != 1 {
		return nil, &errcode.E{C: errcode.InvalidPin, Op: op, Msg: "sda/scl swapped"}
	}
	if p.Hz == 0 || p.Hz > r.clk.PeriHz/10 {
		return nil, &errcode.E{C: errcode.Error, Op: op, Msg: "rate"}
	}

	bus, err := r.be.OpenI2C(p.ID, sda.n, scl.n, p.Hz)
	if err != nil {
		return nil, errcode.Wrap(errcode.Error, op, err)
	}
	sda.owner, scl.owner = p.ID, p.ID
	r.buses[p.ID] = owner
	println("[hal]", p.ID, "sda", sda.n, "scl", scl.n, "hz", p.Hz, "bit_ns", timex.PeriodFromHz(p.Hz))
	return bus, nil
}

// ---- UART ----

// uartIndex maps an RP2040 GPIO to its UART controller. Pins come in
// groups of four (TX, RX, CTS, RTS) starting at GP0 and alternate
// between UART0 and UART1 every eight pins, offset by four.
func uartIndex(pin int) int { return ((pin + 4) / 8) % 2 }

// UARTGate returns the reset gate of the UART controller named id.
func UARTGate(id string) (Gate, bool) {
	g, _, ok := uartGate(id)
	return g, ok
}

func uartGate(id string) (Gate, int, bool) {
	switch id {
	case "uart0":
		return GateUART0, 0, true
	case "uart1":
		return GateUART1, 1, true
	}
	return 0, 0, false
}

// OpenUART brings up a UART controller on two pins reconfigured for
// FuncUART. As with OpenI2C the pins move to the controller.
func (r *Registry) OpenUART(owner string, p setups.UARTPlan, tx, rx *PinHandle) (io.Writer, error) {
	const op = "provider.uart_open"
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.clk == nil {
		return nil, &errcode.E{C: errcode.ClockInit, Op: op, Msg: "clocks not applied"}
	}
	g, idx, ok := uartGate(p.ID)
	if !ok {
		return nil, &errcode.E{C: errcode.UnknownBus, Op: op, Msg: p.ID}
	}
	if !r.heldBy(g, owner) {
		return nil, &errcode.E{C: errcode.GateNotReleased, Op: op, Msg: g.String()}
	}
	if cur, inUse := r.buses[p.ID]; inUse {
		return nil, &errcode.E{C: errcode.BusInUse, Op: op, Msg: p.ID + " held by " + cur}
	}
	if tx == nil || rx == nil || tx.r != r || rx.r != r {
		return nil, &errcode.E{C: errcode.InvalidPin, Op: op, Msg: "foreign handle"}
	}
	for _, h := range [...]*PinHandle{tx, rx} {
		if h.fn != FuncUART || h.owner != "" || uartIndex(h.n) != idx {
			return nil, &errcode.E{C: errcode.InvalidPin, Op: op, Msg: p.ID}
		}
	}
	if tx.n%4 != 0 || rx.n%4 != 1 {
		return nil, &errcode.E{C: errcode.InvalidPin, Op: op, Msg: "tx/rx swapped"}
	}
	if p.Baud == 0 {
		return nil, &errcode.E{C: errcode.Error, Op: op, Msg: "baud"}
	}

	w, err := r.be.OpenUART(p.ID, tx.n, rx.n, p.Baud)
	if err != nil {
		return nil, errcode.Wrap(errcode.Error, op, err)
	}
	tx.owner, rx.owner = p.ID, p.ID
	r.buses[p.ID] = owner
	println("[hal]", p.ID, "tx", tx.n, "rx", rx.n, "baud", p.Baud)
	return w, nil
}

// ---- Timer ----

// Counter returns the free-running microsecond counter. The TIMER gate must
// be released by owner, and the counter is handed out once.
func (r *Registry) Counter(owner string) (Counter, error) {
	const op = "provider.counter"
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.heldBy(GateTimer, owner) {
		return nil, &errcode.E{C: errcode.GateNotReleased, Op: op, Msg: "timer"}
	}
	if r.timer {
		return nil, &errcode.E{C: errcode.AlreadyTaken, Op: op}
	}
	r.timer = true
	return r.be.Counter(), nil
}
