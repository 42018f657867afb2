package main

import (
	"time"

	"oledblink-go/services/blink"
	"oledblink-go/services/diag"
	"oledblink-go/services/hal/provider"
	"oledblink-go/services/hal/provider/setups"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("boot")

	reg, err := provider.Take(setups.SelectedBoard)
	if err != nil {
		diag.Fatal("provider", err)
	}
	diag.Fatal("blink", blink.Run(reg, setups.SelectedBoard, setups.SelectedPlan))
}
