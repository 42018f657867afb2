// Package clocks derives the RP2040 clock tree from a crystal frequency.
//
// Derivation is pure arithmetic so it can be checked on the host. The
// provider makes a derived Config effective on the chip.
package clocks

import (
	"oledblink-go/errcode"
)

// RP2040 PLL and oscillator limits (datasheet §2.15, §2.18).
const (
	XtalMinHz = 1_000_000
	XtalMaxHz = 15_000_000

	VCOMinHz = 750_000_000
	VCOMaxHz = 1_600_000_000

	FBDivMin   = 16
	FBDivMax   = 320
	PostDivMin = 1
	PostDivMax = 7

	USBHz = 48_000_000
)

// PLL is one PLL parameter set. Output = xtal/RefDiv*FBDiv/(PostDiv1*PostDiv2).
type PLL struct {
	RefDiv   uint32
	FBDiv    uint32
	PostDiv1 uint32
	PostDiv2 uint32
}

// VCOHz returns the VCO frequency for a given reference.
func (p PLL) VCOHz(xtalHz uint32) uint64 {
	if p.RefDiv == 0 {
		return 0
	}
	return uint64(xtalHz/p.RefDiv) * uint64(p.FBDiv)
}

// OutHz returns the PLL output frequency for a given reference.
func (p PLL) OutHz(xtalHz uint32) uint32 {
	d := uint64(p.PostDiv1) * uint64(p.PostDiv2)
	if d == 0 {
		return 0
	}
	return uint32(p.VCOHz(xtalHz) / d)
}

// Config is a validated clock tree. SysHz is never zero in a Config
// returned without error.
type Config struct {
	XtalHz uint32
	SysHz  uint32
	USBHz  uint32
	RefHz  uint32
	PeriHz uint32

	PLLSys PLL
	PLLUSB PLL
}

// Derive computes PLL settings for the system clock (sysHz) and the fixed
// 48 MHz USB clock from the crystal frequency.
func Derive(xtalHz, sysHz uint32) (Config, error) {
	const op = "clocks.derive"
	if xtalHz < XtalMinHz || xtalHz > XtalMaxHz {
		return Config{}, &errcode.E{C: errcode.ClockInit, Op: op, Msg: "crystal out of range"}
	}
	if sysHz == 0 {
		return Config{}, &errcode.E{C: errcode.ClockInit, Op: op, Msg: "zero system clock"}
	}
	sys, ok := findPLL(xtalHz, sysHz)
	if !ok {
		return Config{}, &errcode.E{C: errcode.ClockInit, Op: op, Msg: "sys pll cannot lock"}
	}
	usb, ok := findPLL(xtalHz, USBHz)
	if !ok {
		return Config{}, &errcode.E{C: errcode.ClockInit, Op: op, Msg: "usb pll cannot lock"}
	}
	cfg := Config{
		XtalHz: xtalHz,
		SysHz:  sys.OutHz(xtalHz),
		USBHz:  usb.OutHz(xtalHz),
		RefHz:  xtalHz,
		PLLSys: sys,
		PLLUSB: usb,
	}
	cfg.PeriHz = cfg.SysHz
	return cfg, cfg.Validate()
}

// Validate rechecks every PLL constraint and the non-zero system clock.
func (c Config) Validate() error {
	const op = "clocks.validate"
	if c.SysHz == 0 {
		return &errcode.E{C: errcode.ClockInit, Op: op, Msg: "zero system clock"}
	}
	for _, p := range [...]PLL{c.PLLSys, c.PLLUSB} {
		if !pllValid(c.XtalHz, p) {
			return &errcode.E{C: errcode.ClockInit, Op: op, Msg: "pll out of range"}
		}
	}
	return nil
}

func pllValid(xtalHz uint32, p PLL) bool {
	if p.RefDiv != 1 {
		return false
	}
	if p.FBDiv < FBDivMin || p.FBDiv > FBDivMax {
		return false
	}
	if p.PostDiv1 < PostDivMin || p.PostDiv1 > PostDivMax ||
		p.PostDiv2 < PostDivMin || p.PostDiv2 > p.PostDiv1 {
		return false
	}
	vco := p.VCOHz(xtalHz)
	return vco >= VCOMinHz && vco <= VCOMaxHz
}

// findPLL searches FBDIV from high to low, then POSTDIV1 and POSTDIV2
// (POSTDIV2 <= POSTDIV1) for an exact match, preferring the highest VCO.
func findPLL(xtalHz, outHz uint32) (PLL, bool) {
	for fb := uint32(FBDivMax); fb >= FBDivMin; fb-- {
		vco := uint64(xtalHz) * uint64(fb)
		if vco < VCOMinHz || vco > VCOMaxHz {
			continue
		}
		for pd1 := uint32(PostDivMax); pd1 >= PostDivMin; pd1-- {
			for pd2 := pd1; pd2 >= PostDivMin; pd2-- {
				if vco%uint64(pd1*pd2) == 0 && vco/uint64(pd1*pd2) == uint64(outHz) {
					return PLL{RefDiv: 1, FBDiv: fb, PostDiv1: pd1, PostDiv2: pd2}, true
				}
			}
		}
	}
	return PLL{}, false
}
