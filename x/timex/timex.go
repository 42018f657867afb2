// Package timex holds counter and period arithmetic shared by the
// provider and the busy-wait timer.
package timex

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return uint64(1_000_000_000 / uint64(freqHz))
}

// MsToUs converts milliseconds to counter microseconds.
func MsToUs(ms uint32) uint64 { return uint64(ms) * 1000 }

// ElapsedUs returns the distance between two reads of a free-running
// microsecond counter. Unsigned subtraction keeps it correct across wrap.
func ElapsedUs(start, now uint64) uint64 { return now - start }
