//go:build !rp2040 && !rp2350

package provider

import (
	"io"
	"sync"
	"time"

	"oledblink-go/services/hal/clocks"
	"oledblink-go/x/conv"

	"tinygo.org/x/drivers"
)

func newBackend() Backend { return &HostBackend{} }

// HostBackend records every hardware effect in order. Bus transactions are
// forwarded to Bus when set, otherwise absorbed by an inert HostI2C.
// UART writes go to UART, or nowhere.
type HostBackend struct {
	mu     sync.Mutex
	Events []string

	Bus      drivers.I2C
	UART     io.Writer
	ClockErr error
	Clock    Counter
}

func (h *HostBackend) record(ev string) {
	h.mu.Lock()
	h.Events = append(h.Events, ev)
	h.mu.Unlock()
}

// Snapshot returns a copy of the recorded events.
func (h *HostBackend) Snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.Events...)
}

func (h *HostBackend) ApplyClocks(cfg clocks.Config) error {
	if h.ClockErr != nil {
		return h.ClockErr
	}
	h.record("clocks " + conv.Dec(int64(cfg.SysHz)))
	return nil
}

func (h *HostBackend) Unreset(g Gate) error {
	h.record("unreset " + g.String())
	return nil
}

func (h *HostBackend) SetPinFunc(pin int, fn PinFunc) error {
	h.record("pinfunc " + conv.Dec(int64(pin)) + " " + fn.String())
	return nil
}

func (h *HostBackend) OpenI2C(id string, sda, scl int, hz uint32) (drivers.I2C, error) {
	h.record("i2c " + id + " sda=" + conv.Dec(int64(sda)) + " scl=" + conv.Dec(int64(scl)) +
		" hz=" + conv.Dec(int64(hz)))
	if h.Bus != nil {
		return h.Bus, nil
	}
	return &HostI2C{}, nil
}

func (h *HostBackend) OpenUART(id string, tx, rx int, baud uint32) (io.Writer, error) {
	h.record("uart " + id + " tx=" + conv.Dec(int64(tx)) + " rx=" + conv.Dec(int64(rx)) +
		" baud=" + conv.Dec(int64(baud)))
	if h.UART != nil {
		return h.UART, nil
	}
	return io.Discard, nil
}

func (h *HostBackend) Counter() Counter {
	if h.Clock != nil {
		return h.Clock
	}
	return newMonotonic()
}

// HostI2C implements tinygo drivers.I2C and keeps the last transaction.
type HostI2C struct {
	mu     sync.Mutex
	Count  int
	LastTx struct {
		Addr uint16
		W    []byte
		Rn   int
	}
}

func (b *HostI2C) Tx(addr uint16, w, r []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Count++
	b.LastTx.Addr = addr
	b.LastTx.W = append([]byte(nil), w...)
	b.LastTx.Rn = len(r)
	return nil
}

// monotonic counts microseconds since creation from the host clock.
type monotonic struct{ epoch time.Time }

func newMonotonic() *monotonic { return &monotonic{epoch: time.Now()} }

func (m *monotonic) Micros() uint64 { return uint64(time.Since(m.epoch).Microseconds()) }
