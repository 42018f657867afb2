//go:build rp2040 || rp2350

package diag

import "time"

// Sleeping instead of spinning keeps USB-CDC serviced so the record
// reaches the host.
func haltForever() {
	for {
		time.Sleep(time.Hour)
	}
}
