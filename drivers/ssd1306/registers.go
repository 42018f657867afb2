package ssd1306

// Default 7-bit I2C address (SA0 low). 0x3D with SA0 high.
const Address = 0x3C

// Control bytes: Co=0, D/C# selects command or GDDRAM data.
const (
	ControlCommand = 0x00
	ControlData    = 0x40
)

// Fundamental and configuration commands used by this driver.
const (
	SetContrast        = 0x81
	DisplayAllOnResume = 0xA4
	DisplayAllOn       = 0xA5
	NormalDisplay      = 0xA6
	InvertDisplay      = 0xA7
	DisplayOff         = 0xAE
	DisplayOn          = 0xAF

	DeactivateScroll = 0x2E

	MemoryMode    = 0x20
	ColumnAddr    = 0x21
	PageAddr      = 0x22
	SetStartLine  = 0x40
	SegRemap      = 0xA0
	SetMultiplex  = 0xA8
	ComScanInc    = 0xC0
	ComScanDec    = 0xC8
	SetDispOffset = 0xD3
	SetComPins    = 0xDA

	SetClockDiv   = 0xD5
	SetPrecharge  = 0xD9
	SetVComDetect = 0xDB
	ChargePump    = 0x8D
)

// Memory addressing modes for MemoryMode.
const (
	AddrHorizontal = 0x00
	AddrVertical   = 0x01
	AddrPage       = 0x02
)

// ArgCount returns how many argument bytes follow command c.
func ArgCount(c byte) int {
	switch c {
	case ColumnAddr, PageAddr:
		return 2
	case SetContrast, MemoryMode, SetMultiplex, SetDispOffset, SetComPins,
		SetClockDiv, SetPrecharge, SetVComDetect, ChargePump:
		return 1
	}
	return 0
}
