package errcode

import "errors"

// Code is a stable, log-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Clock and reset bring-up.
	ClockInit       Code = "clock_init"
	GateInUse       Code = "gate_in_use"
	GateNotReleased Code = "gate_not_released"
	AlreadyTaken    Code = "already_taken"

	// Pins and buses.
	UnknownPin Code = "unknown_pin"
	PinInUse   Code = "pin_in_use"
	InvalidPin Code = "invalid_pin"
	UnknownBus Code = "unknown_bus"
	BusInUse   Code = "bus_in_use"
	Timeout    Code = "timeout"

	// Display.
	DisplayInit Code = "display_init"
	Flush       Code = "flush"

	Error Code = "error" // generic fallback
)

// E keeps the failing operation and a cause next to a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap returns nil for a nil cause, otherwise an *E carrying c and op.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	return Error
}

// OpOf returns the operation recorded by the outermost *E, or "".
func OpOf(err error) string {
	var e *E
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}
