package ssd1306

import "tinygo.org/x/drivers"

// DataChunk is the number of GDDRAM bytes sent per I2C transaction.
const DataChunk = 16

// I2CInterface prefixes every write with the control byte. Each call is a
// blocking bus transaction; bus errors are returned as is.
type I2CInterface struct {
	bus     drivers.I2C
	Address uint16
	cmd     [1 + 31]byte
	data    [1 + DataChunk]byte
}

func NewI2C(bus drivers.I2C, addr uint16) *I2CInterface {
	return &I2CInterface{bus: bus, Address: addr}
}

// Command sends cmds in one transaction after a 0x00 control byte.
func (t *I2CInterface) Command(cmds ...byte) error {
	w := t.cmd[:0]
	if len(cmds)+1 > len(t.cmd) {
		w = make([]byte, 0, len(cmds)+1)
	}
	w = append(w, ControlCommand)
	w = append(w, cmds...)
	return t.bus.Tx(t.Address, w, nil)
}

// Data sends p after a 0x40 control byte, DataChunk bytes per transaction.
func (t *I2CInterface) Data(p []byte) error {
	t.data[0] = ControlData
	for len(p) > 0 {
		n := copy(t.data[1:], p)
		if err := t.bus.Tx(t.Address, t.data[:1+n], nil); err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}
