//go:build rp2350

package setups

// SelectedBoard is the RP2350A Pico 2. Same crystal and pin range as the
// Pico; TinyGo runs it at 150 MHz.
var SelectedBoard = Board{
	Name:    "pico2",
	GPIOMin: 0,
	GPIOMax: 29,
	XtalHz:  12_000_000,
	SysHz:   150_000_000,
}
