package setups

import "oledblink-go/services/hal/halerr"

// Board describes what the SoC and carrier provide: GPIO range and the
// crystal/system clock pair used to derive the clock tree.
// It must not include wiring choices (pins) or display parameters.
type Board struct {
	Name             string
	GPIOMin, GPIOMax int
	XtalHz           uint32
	SysHz            uint32
}

// ResourcePlan specifies wiring and operating parameters chosen by a setup.
// Providers consume this plan to instantiate resource owners.
type ResourcePlan struct {
	I2C     I2CPlan
	Display DisplayPlan
	Diag    UARTPlan
}

type I2CPlan struct {
	ID  string // "i2c0" or "i2c1"
	SDA int    // GPIO number
	SCL int    // GPIO number
	Hz  uint32 // bus frequency
}

// DisplayPlan fixes the panel and what the render loop shows on it.
type DisplayPlan struct {
	Addr          uint16
	Width, Height int16
	// Clear rectangle bounds. These may exceed the panel; drawing clips.
	ClearWidth, ClearHeight int16
	DwellMs                 uint32
	Text                    string
}

type UARTPlan struct {
	ID   string // "uart0" or "uart1"; empty disables the UART diagnostic sink
	TX   int
	RX   int
	Baud uint32
}

// Validate checks the plan against limits the bring-up relies on.
func (p ResourcePlan) Validate() error {
	if p.I2C.ID == "" {
		return halerr.ErrNoI2CPlan
	}
	if p.I2C.Hz == 0 || p.I2C.Hz > 1_000_000 {
		return halerr.ErrInvalidRate
	}
	d := p.Display
	if d.Addr == 0 {
		return halerr.ErrMissingAddr
	}
	if d.Width <= 0 || d.Height <= 0 || d.Height%8 != 0 || d.ClearWidth <= 0 || d.ClearHeight <= 0 {
		return halerr.ErrInvalidGeom
	}
	if d.DwellMs == 0 {
		return halerr.ErrInvalidDwell
	}
	if p.Diag.ID != "" && p.Diag.Baud == 0 {
		return halerr.ErrInvalidRate
	}
	return p.checkPins()
}

// checkPins rejects a plan that assigns one GPIO to two functions.
func (p ResourcePlan) checkPins() error {
	pins := []int{p.I2C.SDA, p.I2C.SCL}
	if p.Diag.ID != "" {
		pins = append(pins, p.Diag.TX, p.Diag.RX)
	}
	for i, a := range pins {
		for _, b := range pins[i+1:] {
			if a == b {
				return halerr.ErrPinConflict
			}
		}
	}
	return nil
}
