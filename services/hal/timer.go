// Package hal holds the small pieces of runtime glue that sit above the
// peripheral provider: the blocking delay used by the render loop.
package hal

import "oledblink-go/x/timex"

// Micros is a free-running microsecond counter.
type Micros interface {
	Micros() uint64
}

// Timer busy-waits on a counter. It never sleeps or yields, so a delay
// holds the core for its full length.
type Timer struct {
	c Micros
}

func NewTimer(c Micros) *Timer { return &Timer{c: c} }

// NowUs returns the current counter value.
func (t *Timer) NowUs() uint64 { return t.c.Micros() }

// DelayMs returns once at least ms milliseconds of counter time have
// elapsed. DelayMs(0) returns immediately.
func (t *Timer) DelayMs(ms uint32) {
	if ms == 0 {
		return
	}
	want := timex.MsToUs(ms)
	start := t.c.Micros()
	for timex.ElapsedUs(start, t.c.Micros()) < want {
	}
}
