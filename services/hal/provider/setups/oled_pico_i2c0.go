//go:build oled_pico_i2c0

package setups

// Pico with the panel on I2C0 (GP4 SDA, GP5 SCL). UART0 stays on GP0/GP1.
var SelectedPlan = ResourcePlan{
	I2C: I2CPlan{ID: "i2c0", SDA: 4, SCL: 5, Hz: 400_000},
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
