//go:build !rp2350

package setups

// SelectedBoard is the RP2040 Pico: 12 MHz crystal, GP0..GP29, and the
// 125 MHz system clock the TinyGo runtime starts it at.
var SelectedBoard = Board{
	Name:    "pico",
	GPIOMin: 0,
	GPIOMax: 29,
	XtalHz:  12_000_000,
	SysHz:   125_000_000,
}
