// Package diag reports fatal conditions. Every error in the firmware is
// fatal: Fatal writes one [fatal] record to the console and to every
// attached writer, then halts.
package diag

import (
	"io"

	"oledblink-go/errcode"
)

// Hooks for tests. halt must not return on real targets.
var (
	halt  = haltForever
	sinks []func(string)
)

// Attach adds w as a sink for fatal records. Bring-up attaches the
// diagnostic UART once the registry has opened it.
func Attach(w io.Writer) {
	if w == nil {
		return
	}
	sinks = append(sinks, func(s string) { _, _ = io.WriteString(w, s) })
}

// Record renders the single-line fatal record for op and err.
//
//	[fatal] op=blink code=display_init at=blink.display_init err=...
func Record(op string, err error) string {
	s := "[fatal] op=" + op + " code=" + string(errcode.Of(err))
	if at := errcode.OpOf(err); at != "" {
		s += " at=" + at
	}
	if err != nil {
		s += " err=" + err.Error()
	}
	return s
}

// Fatal emits the record for err and halts. A nil err still halts; the
// render loop never returns without one.
func Fatal(op string, err error) {
	rec := Record(op, err)
	println(rec)
	for _, w := range sinks {
		w(rec + "\r\n")
	}
	halt()
}
