// Package render runs the two-state display loop: show a line of text,
// wait, blank the panel, wait, repeat.
package render

import (
	"errors"

	"oledblink-go/errcode"

	"tinygo.org/x/drivers"
)

var errUnknownKind = errors.New("render: unknown primitive kind")

type State uint8

const (
	ShowingText State = iota
	Cleared
)

func (s State) String() string {
	if s == Cleared {
		return "cleared"
	}
	return "showing_text"
}

// Delayer blocks for a number of milliseconds.
type Delayer interface {
	DelayMs(ms uint32)
}

// Loop alternates between two primitives with a fixed dwell. Text is drawn
// over whatever the previous frame left; only the clear primitive blanks.
type Loop struct {
	d       drivers.Displayer
	delay   Delayer
	text    Primitive
	clear   Primitive
	dwellMs uint32

	state  State
	frames uint32
}

func NewLoop(d drivers.Displayer, delay Delayer, text, clear Primitive, dwellMs uint32) *Loop {
	return &Loop{d: d, delay: delay, text: text, clear: clear, dwellMs: dwellMs}
}

func (l *Loop) State() State   { return l.state }
func (l *Loop) Frames() uint32 { return l.frames }

// Step draws the current state's primitive, flushes, waits one dwell and
// moves to the other state. On error the state is left unchanged.
func (l *Loop) Step() error {
	p := l.text
	if l.state == Cleared {
		p = l.clear
	}
	if err := p.Draw(l.d); err != nil {
		return errcode.Wrap(errcode.Error, "render.draw", err)
	}
	if err := l.d.Display(); err != nil {
		return errcode.Wrap(errcode.Flush, "render.flush", err)
	}
	l.frames++
	l.delay.DelayMs(l.dwellMs)
	if l.state == ShowingText {
		l.state = Cleared
	} else {
		l.state = ShowingText
	}
	return nil
}

// Run steps forever and returns only the first error.
func (l *Loop) Run() error {
	println("[render] loop start dwell_ms", l.dwellMs)
	for {
		if err := l.Step(); err != nil {
			println("[render] stopped after", l.frames, "frames")
			return err
		}
	}
}
