//go:build !oled_pico_i2c0

package setups

// Raspberry Pi Pico with a 128x32 SSD1306 on I2C1 (GP14 SDA, GP15 SCL).
// UART0 on GP0/GP1 carries fatal records.
var SelectedPlan = ResourcePlan{
	I2C: I2CPlan{ID: "i2c1", SDA: 14, SCL: 15, Hz: 400_000},
	Display: DisplayPlan{
		Addr:        0x3C,
		Width:       128,
		Height:      32,
		ClearWidth:  128,
		ClearHeight: 64,
		DwellMs:     1500,
		Text:        "Hello World.",
	},
	Diag: UARTPlan{ID: "uart0", TX: 0, RX: 1, Baud: 115_200},
}
